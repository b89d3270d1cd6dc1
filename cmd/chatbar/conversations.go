package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"chatbar/internal/chat"
	"chatbar/internal/home"
)

var (
	bold    = color.New(color.Bold).SprintFunc()
	heading = color.New(color.Bold, color.Underline).SprintFunc()
	star    = color.New(color.FgYellow).SprintFunc()
	faint   = color.New(color.Faint).SprintFunc()
)

// findConversation resolves ref as an exact id or a unique id prefix.
func findConversation(h *home.Home, ref string) (chat.Conversation, error) {
	if c, ok := h.Conversation(ref); ok {
		return c, nil
	}
	var hits []chat.Conversation
	for _, c := range h.Conversations() {
		if strings.HasPrefix(c.ID, ref) {
			hits = append(hits, c)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return chat.Conversation{}, fmt.Errorf("%w: %s", home.ErrUnknownConversation, ref)
	}
	return chat.Conversation{}, fmt.Errorf("conversation %q is ambiguous (%d matches)", ref, len(hits))
}

func conversationTable(w io.Writer, h *home.Home, cs []chat.Conversation) {
	now := h.Now()
	tbl := uitable.New()
	tbl.MaxColWidth = 48
	tbl.Separator = "  "
	tbl.AddRow(bold("ID"), bold("NAME"), bold("FOLDER"), bold("LAST USED"), bold("MSGS"))
	for _, c := range cs {
		name := chat.OneLine(c.Name)
		if c.Favorite {
			name = star("★ ") + name
		}
		folder := ""
		if f, ok := h.Folder(c.FolderID); ok {
			folder = f.Name
		}
		used := ""
		if !c.LastUsedDate.IsZero() {
			used = humanize.RelTime(c.LastUsedDate, now, "ago", "from now")
		}
		tbl.AddRow(c.ID, name, folder, used, len(c.Messages))
	}
	fmt.Fprintln(w, tbl)
}

func addList(topLevel *cobra.Command, o *options) {
	var (
		search string
		all    bool
	)
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List conversations the way the sidebar groups them",
		Example: `
chatbar list
chatbar list --all
chatbar list --search invoice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			out := cmd.OutOrStdout()
			h := s.home
			cs := chat.Filter(h.Conversations(), search, s.cfg.FuzzySearch)
			if all {
				conversationTable(out, h, cs)
				return nil
			}
			if len(h.Conversations()) == 0 {
				fmt.Fprintln(out, "No Chats Yet")
				return nil
			}
			for _, f := range h.Folders(chat.FolderChat) {
				in := chat.InFolder(cs, f.ID)
				if search != "" && len(in) == 0 {
					continue
				}
				fmt.Fprintln(out, heading(f.Name)+" "+faint(fmt.Sprintf("(%s)", f.Color)))
				if len(in) > 0 {
					conversationTable(out, h, in)
				}
			}
			for _, g := range chat.Bucket(cs, h.Now()) {
				fmt.Fprintln(out, heading(g.Label))
				conversationTable(out, h, g.Conversations)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "only conversations matching this term")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "flat table of every conversation, not just the recent buckets")
	topLevel.AddCommand(cmd)
}

func addNew(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "new [name]",
		Short: "Start a new conversation and select it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := s.home.HandleNewConversation()
			if err != nil {
				return err
			}
			if len(args) == 1 && strings.TrimSpace(args[0]) != "" {
				if c, err = s.home.HandleUpdateConversation(c, chat.ConversationUpdate{Key: chat.KeyName, Value: args[0]}); err != nil {
					return err
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), c.ID)
			return nil
		},
	})
}

func addRename(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "rename <conversation> <name>",
		Short: "Rename a conversation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(args[1]) == "" {
				return errors.New("name must not be blank")
			}
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := findConversation(s.home, args[0])
			if err != nil {
				return err
			}
			_, err = s.home.HandleUpdateConversation(c, chat.ConversationUpdate{Key: chat.KeyName, Value: args[1]})
			return err
		},
	})
}

func addDelete(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:     "delete <conversation>...",
		Aliases: []string{"rm"},
		Short:   "Delete conversations",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			for _, ref := range args {
				c, err := findConversation(s.home, ref)
				if err != nil {
					return err
				}
				if err := s.home.HandleDeleteConversation(c); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", c.ID)
			}
			return nil
		},
	})
}

func addMove(topLevel *cobra.Command, o *options) {
	topLevel.AddCommand(&cobra.Command{
		Use:   "move <conversation> <folder|->",
		Short: "Drop a conversation into a folder, or out of it with -",
		Long: `Moves a conversation exactly as dropping it on a folder in the sidebar
does: the folder's chat counter goes up and its name is rewritten with the
new count. Moving to - takes the conversation out of its folder.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			c, err := findConversation(s.home, args[0])
			if err != nil {
				return err
			}
			payload, err := chat.EncodeDragPayload(c)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if args[1] == "-" {
				if _, err := s.home.DropOnRoot(payload); err != nil {
					return err
				}
				fmt.Fprintf(out, "moved %s out of its folder\n", c.ID)
				return nil
			}
			f, err := findFolder(s.home, args[1])
			if err != nil {
				return err
			}
			if f, err = s.home.DropOnFolder(payload, f.ID); err != nil {
				return err
			}
			fmt.Fprintf(out, "moved %s to %s\n", c.ID, f.Name)
			return nil
		},
	})
}
