package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"chatbar/internal/chat"
	"chatbar/internal/home"
)

var swatches = map[chat.Color]*color.Color{
	chat.ColorRed:    color.New(color.FgRed),
	chat.ColorPurple: color.New(color.FgMagenta),
	chat.ColorBlue:   color.New(color.FgBlue),
	chat.ColorGreen:  color.New(color.FgGreen),
	chat.ColorYellow: color.New(color.FgYellow),
}

func colorName(c chat.Color) string {
	if sw, ok := swatches[c]; ok {
		return sw.Sprint(c.String())
	}
	return faint(c.String())
}

// findFolder resolves ref as an id, a unique id prefix or an exact name.
func findFolder(h *home.Home, ref string) (chat.Folder, error) {
	if f, ok := h.Folder(ref); ok {
		return f, nil
	}
	var hits []chat.Folder
	for _, f := range h.Folders("") {
		if strings.HasPrefix(f.ID, ref) || f.Name == ref {
			hits = append(hits, f)
		}
	}
	switch len(hits) {
	case 1:
		return hits[0], nil
	case 0:
		return chat.Folder{}, fmt.Errorf("%w: %s", home.ErrUnknownFolder, ref)
	}
	return chat.Folder{}, fmt.Errorf("folder %q is ambiguous (%d matches)", ref, len(hits))
}

func addFolder(topLevel *cobra.Command, o *options) {
	folder := &cobra.Command{
		Use:   "folder",
		Short: "Create, rename, delete and color folders",
	}

	folder.AddCommand(&cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List folders",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			tbl := uitable.New()
			tbl.Separator = "  "
			tbl.AddRow(bold("ID"), bold("NAME"), bold("TYPE"), bold("CHATS"), bold("COLOR"))
			for _, f := range s.home.Folders("") {
				tbl.AddRow(f.ID, f.Name, string(f.Type), len(s.home.FolderConversations(f.ID)), colorName(f.Color))
			}
			fmt.Fprintln(cmd.OutOrStdout(), tbl)
			return nil
		},
	})

	var typ string
	create := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a folder and print its id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ft := chat.FolderType(typ)
			if ft != chat.FolderChat && ft != chat.FolderPrompt {
				return fmt.Errorf("unknown folder type %q (want chat or prompt)", typ)
			}
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			f, err := s.home.HandleCreateFolder(args[0], ft)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), f.ID)
			return nil
		},
	}
	create.Flags().StringVar(&typ, "type", string(chat.FolderChat), "folder type: chat | prompt")
	folder.AddCommand(create)

	folder.AddCommand(&cobra.Command{
		Use:   "rename <folder> <name>",
		Short: "Rename a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			f, err := findFolder(s.home, args[0])
			if err != nil {
				return err
			}
			return s.home.HandleUpdateFolder(f.ID, args[1])
		},
	})

	folder.AddCommand(&cobra.Command{
		Use:   "delete <folder>",
		Short: "Delete a folder; its conversations move back to the list",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			f, err := findFolder(s.home, args[0])
			if err != nil {
				return err
			}
			return s.home.HandleDeleteFolder(f.ID)
		},
	})

	names := make([]string, 0, len(chat.Palette))
	for _, c := range chat.Palette {
		names = append(names, c.String())
	}
	folder.AddCommand(&cobra.Command{
		Use:       "color <folder> <color>",
		Short:     "Tag a folder with a color (" + strings.Join(names, ", ") + ")",
		Args:      cobra.ExactArgs(2),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := chat.ParseColor(args[1])
			if err != nil {
				return err
			}
			s, err := o.open(cmd)
			if err != nil {
				return err
			}
			defer s.Close()
			f, err := findFolder(s.home, args[0])
			if err != nil {
				return err
			}
			return s.home.SetFolderColor(f.ID, c)
		},
	})

	topLevel.AddCommand(folder)
}
