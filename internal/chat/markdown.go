package chat

import (
	"fmt"
	"io"
	"strings"
	"time"
)

const (
	maxTitle   = 120
	maxMessage = 120
)

// WriteMarkdown dumps conversations as a markdown transcript, one section per
// conversation separated by rules. Titles are kept to one line; anything that
// had to be shortened is repeated in full inside a <details> block.
func WriteMarkdown(w io.Writer, conversations []Conversation, folders []Folder) error {
	return WriteMarkdownWithProgress(w, conversations, folders, nil)
}

// WriteMarkdownWithProgress is WriteMarkdown calling progress(cur, total)
// after each conversation.
func WriteMarkdownWithProgress(w io.Writer, conversations []Conversation, folders []Folder, progress func(int, int)) error {
	names := make(map[string]string, len(folders))
	for _, f := range folders {
		names[f.ID] = f.Name
	}
	ew := &errWriter{w: w}
	total := len(conversations)
	for i, c := range conversations {
		writeConversation(ew, c, names)
		if i != total-1 {
			ew.printf("---\n\n")
		}
		if ew.err != nil {
			return ew.err
		}
		if progress != nil {
			progress(i+1, total)
		}
	}
	return ew.err
}

// ConversationMarkdown renders a single conversation the way WriteMarkdown does.
func ConversationMarkdown(c Conversation, folderName string) string {
	var b strings.Builder
	writeConversation(&errWriter{w: &b}, c, map[string]string{c.FolderID: folderName})
	return b.String()
}

func writeConversation(w *errWriter, c Conversation, folders map[string]string) {
	full := strings.TrimSpace(c.Name)
	title, changed, truncated := CleanOneLine(full, maxTitle)
	if title == "" {
		title = c.ID
	}
	w.printf("# %s\n\n", title)
	w.printf("- ID: %s\n", c.ID)
	if !c.LastUsedDate.IsZero() {
		w.printf("- Last used: %s\n", c.LastUsedDate.Local().Format(time.RFC3339))
	}
	if name := folders[c.FolderID]; c.FolderID != "" && name != "" {
		w.printf("- Folder: %s\n", name)
	}
	if c.Favorite {
		w.printf("- Favorite: yes\n")
	}
	w.printf("\n")
	if changed || truncated {
		writeDetails(w, title, full)
	}

	if len(c.Messages) == 0 {
		return
	}
	w.printf("## Messages\n\n")
	for _, m := range c.Messages {
		full := strings.TrimSpace(m.Content)
		line, changed, truncated := CleanOneLine(full, maxMessage)
		if line == "" {
			line = "(empty)"
		}
		w.printf("- **%s**: %s\n", m.Role, line)
		if changed || truncated {
			writeDetails(w, line, full)
		}
	}
	w.printf("\n")
}

func writeDetails(w *errWriter, summary, body string) {
	w.printf("\n<details><summary>%s</summary>\n\n", escapeHTML(summary))
	w.printf("```\n%s\n```\n\n", body)
	w.printf("</details>\n\n")
}

var htmlReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"\"", "&quot;",
	"'", "&#39;",
)

func escapeHTML(s string) string { return htmlReplacer.Replace(s) }

type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
