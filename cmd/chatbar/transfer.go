package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"chatbar/internal/chat"
	"chatbar/internal/config"
	"chatbar/internal/home"
	"chatbar/internal/logger"
	"chatbar/internal/store"
	"chatbar/internal/tui"
	"chatbar/internal/zipper"
)

func exportPath(cfg config.Config, ext string) string {
	dir := cfg.ExportDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, "chatbar-"+time.Now().Format("20060102-150405")+ext)
}

func addExport(topLevel *cobra.Command, o *options) {
	var markdown bool
	cmd := &cobra.Command{
		Use:   "export [path]",
		Short: "Export conversations and folders to a zip archive (or markdown)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			cs, fs := s.home.Conversations(), s.home.Folders("")
			ext := ".zip"
			if markdown {
				ext = ".md"
			}
			path := exportPath(s.cfg, ext)
			if len(args) == 1 {
				path = args[0]
			}
			progress := func(cur, total int) {
				logger.Debug("export progress", "component", "export", "current", cur, "total", total)
			}
			if markdown {
				if err := writeMarkdownFile(path, cs, fs, progress); err != nil {
					return err
				}
			} else if err := zipper.ExportWithProgress(path, cs, fs, progress); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d conversations, %d folders -> %s\n", len(cs), len(fs), path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "write a markdown transcript instead of a zip")
	topLevel.AddCommand(cmd)
}

func writeMarkdownFile(path string, cs []chat.Conversation, fs []chat.Folder, progress func(int, int)) error {
	if err := config.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := chat.WriteMarkdownWithProgress(f, cs, fs, progress); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func addImport(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "import <path>",
		Short: "Merge an exported archive or history.json into the store",
		Long: `Imported conversations and folders replace stored ones with the same id;
everything else is appended. With the sqlite store a backup of the database
is taken first (see "chatbar restore").`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hist, err := zipper.Read(args[0])
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Store == config.StoreSQLite {
				db := store.SQLitePath(cfg)
				if _, err := os.Stat(db); err == nil {
					bak, err := store.Backup(db, store.BackupSuffix(time.Now()))
					if err != nil {
						return fmt.Errorf("backup before import: %w", err)
					}
					fmt.Fprintf(out, "backup: %s\n", bak)
				}
			}
			kv, err := store.Open(cfg)
			if err != nil {
				return err
			}
			defer kv.Close()
			h, err := home.Load(kv)
			if err != nil {
				return err
			}
			r, err := h.Merge(hist.History, hist.Folders)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "imported %s: %d added, %d replaced, %d folders added, %d folders replaced\n",
				args[0], r.Added, r.Replaced, r.FoldersAdded, r.FoldersReplaced)
			return nil
		},
	})
}

func addDump(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "dump [conversation]...",
		Short: "Print conversations as markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			cs := s.home.Conversations()
			if len(args) > 0 {
				var picked []chat.Conversation
				for _, ref := range args {
					c, err := findConversation(s.home, ref)
					if err != nil {
						return err
					}
					picked = append(picked, c)
				}
				cs = picked
			}
			return chat.WriteMarkdown(cmd.OutOrStdout(), cs, s.home.Folders(""))
		},
	})
}

func addRestore(topLevel *cobra.Command, o *options) {
	var list bool
	cmd := &cobra.Command{
		Use:   "restore [suffix]",
		Short: "Restore the sqlite store from a backup",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := o.config(cmd)
			if err != nil {
				return err
			}
			if cfg.Store != config.StoreSQLite {
				return errors.New(`restore works on the sqlite store only (use --store sqlite)`)
			}
			db := store.SQLitePath(cfg)
			out := cmd.OutOrStdout()
			suffix := ""
			if len(args) == 1 {
				suffix = strings.TrimPrefix(args[0], filepath.Base(db)+".bak-")
			}
			if suffix == "" {
				infos, err := store.ListBackups(db)
				if err != nil {
					return err
				}
				if list || !isTerminal() {
					tbl := uitable.New()
					tbl.Separator = "  "
					tbl.AddRow(bold("SUFFIX"), bold("TAKEN"), bold("SIZE"))
					for _, b := range infos {
						tbl.AddRow(b.Suffix, humanize.Time(b.ModTime), humanize.Bytes(uint64(b.Size)))
					}
					fmt.Fprintln(out, tbl)
					return nil
				}
				final, err := tea.NewProgram(tui.NewRestore(infos, db)).Run()
				if err != nil {
					return err
				}
				if rm, ok := final.(tui.RestoreModel); ok {
					suffix = rm.Selected()
				}
				if suffix == "" {
					fmt.Fprintln(out, "nothing restored")
					return nil
				}
			}
			if err := store.RestoreBackup(db, suffix); err != nil {
				return err
			}
			logger.Info("restored backup", "component", "cli", "db", db, "suffix", suffix)
			fmt.Fprintf(out, "restored %s from backup %s\n", db, suffix)
			return nil
		},
	}
	cmd.Flags().BoolVar(&list, "list", false, "list backups instead of picking one")
	topLevel.AddCommand(cmd)
}
