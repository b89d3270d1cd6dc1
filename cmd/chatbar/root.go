package main

import (
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"chatbar/internal/chat"
	"chatbar/internal/config"
	"chatbar/internal/home"
	"chatbar/internal/logger"
	"chatbar/internal/store"
	"chatbar/internal/tui"
	"chatbar/internal/version"
)

// options are the persistent flags shared by every command. A flag only
// overrides the config file when it was set explicitly.
type options struct {
	configPath string
	store      string
	dataDir    string
	hooksDir   string
	exportDir  string
	fuzzy      bool
	debug      bool
}

func (o *options) addFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&o.configPath, "config", config.DefaultPath(), "config file path")
	f.StringVar(&o.store, "store", "", "store backend: diskv | sqlite | memory")
	f.StringVar(&o.dataDir, "data-dir", "", "directory holding the store")
	f.StringVar(&o.hooksDir, "hooks-dir", "", "directory containing JS hook files")
	f.StringVar(&o.exportDir, "export-dir", "", "default export directory")
	f.BoolVar(&o.fuzzy, "fuzzy", false, "fuzzy search in the sidebar")
	f.BoolVar(&o.debug, "debug", false, "write debug records to the log file")
}

// config loads the config file and applies explicitly set flags.
func (o *options) config(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store = o.store
	}
	if flags.Changed("data-dir") {
		cfg.DataDir = o.dataDir
	}
	if flags.Changed("hooks-dir") {
		cfg.HooksDir = o.hooksDir
	}
	if flags.Changed("export-dir") {
		cfg.ExportDir = o.exportDir
	}
	if flags.Changed("fuzzy") {
		cfg.FuzzySearch = o.fuzzy
	}
	if flags.Changed("debug") {
		cfg.Debug = o.debug
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if cfg.LogFile != "" {
		if err := logger.Init(cfg.LogFile); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
	logger.SetDebug(cfg.Debug)
	return cfg, nil
}

// session is an open store plus the state loaded from it.
type session struct {
	cfg  config.Config
	kv   store.KV
	home *home.Home
}

func (o *options) open(cmd *cobra.Command) (*session, error) {
	cfg, err := o.config(cmd)
	if err != nil {
		return nil, err
	}
	kv, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Store, err)
	}
	h, err := home.Load(kv)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("load state: %w", err)
	}
	logger.Debug("session opened", "component", "cli", "store", cfg.Store, "conversations", len(h.Conversations()))
	return &session{cfg: cfg, kv: kv, home: h}, nil
}

func (s *session) Close() error { return s.kv.Close() }

func newRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "chatbar",
		Short: "Terminal sidebar for chat conversations",
		Long: `chatbar keeps chat conversations organized: grouped by recency,
filed into colored folders, renamed, starred and moved around from a
terminal sidebar or from the subcommands below.`,
		Version:       version.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			if !isTerminal() {
				printBuckets(cmd.OutOrStdout(), s.home)
				return nil
			}
			p := tea.NewProgram(tui.New(s.home, s.cfg), tea.WithAltScreen())
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("tui error: %w", err)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Close()
		},
	}
	root.SetVersionTemplate(version.Template("chatbar"))
	o.addFlags(root)

	addList(root, o)
	addNew(root, o)
	addRename(root, o)
	addDelete(root, o)
	addFolder(root, o)
	addMove(root, o)
	addExport(root, o)
	addImport(root, o)
	addDump(root, o)
	addRestore(root, o)
	addVersion(root)
	return root
}

func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// printBuckets is the non-interactive rendition of the sidebar.
func printBuckets(w io.Writer, h *home.Home) {
	groups := chat.Bucket(h.Conversations(), h.Now())
	if len(h.Conversations()) == 0 {
		fmt.Fprintln(w, "No Chats Yet")
		return
	}
	for _, f := range h.Folders(chat.FolderChat) {
		fmt.Fprintf(w, "[%s] %s\n", f.Color, f.Name)
		for _, c := range h.FolderConversations(f.ID) {
			fmt.Fprintf(w, "  %s\t%s\n", c.ID, chat.OneLine(c.Name))
		}
	}
	for _, g := range groups {
		fmt.Fprintln(w, g.Label)
		for _, c := range g.Conversations {
			fmt.Fprintf(w, "  %s\t%s\n", c.ID, chat.OneLine(c.Name))
		}
	}
}

func addVersion(topLevel *cobra.Command) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprint(cmd.OutOrStdout(), version.Template("chatbar"))
		},
	})
}
