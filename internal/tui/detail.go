package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"chatbar/internal/chat"
	"chatbar/internal/hooks"
	"chatbar/internal/logger"
)

// renderDetailMarkdown builds the markdown shown in the detail viewport.
func renderDetailMarkdown(c chat.Conversation, folderName string, env *hooks.Env, now time.Time) string {
	b := &strings.Builder{}
	title := c.Name
	if title == "" {
		title = c.ID
	}
	if c.Favorite {
		title = "★ " + title
	}
	fmt.Fprintf(b, "# %s\n\n", title)
	if !c.LastUsedDate.IsZero() {
		fmt.Fprintf(b, "- Last used: %s\n", humanize.RelTime(c.LastUsedDate, now, "ago", "from now"))
	}
	if folderName != "" {
		fmt.Fprintf(b, "- Folder: %s\n", folderName)
	}
	fmt.Fprintf(b, "- Messages: %d\n", len(c.Messages))

	head, secs := env.DetailSections(c)
	if head != "" {
		fmt.Fprintf(b, "\n## %s\n\n", head)
	}
	for _, s := range secs {
		if s.Heading != "" {
			fmt.Fprintf(b, "\n## %s\n\n", s.Heading)
		}
		if s.Body != "" {
			fmt.Fprintf(b, "%s\n\n", s.Body)
		}
	}
	if len(secs) > 0 {
		logger.Debug("detail sections from hooks", "component", "hooks", "id", c.ID, "sections", len(secs))
	}

	if len(c.Messages) == 0 {
		fmt.Fprintf(b, "\n_No messages yet._\n")
		return b.String()
	}
	fmt.Fprintf(b, "\n---\n")
	for _, msg := range c.Messages {
		fmt.Fprintf(b, "\n### %s\n\n", roleLabel(msg.Role))
		if msg.Content != "" {
			fmt.Fprintf(b, "%s\n", msg.Content)
		}
	}
	return b.String()
}

func roleLabel(r chat.Role) string {
	switch r {
	case chat.RoleUser:
		return "🧑 User"
	case chat.RoleAssistant:
		return "🤖 Assistant"
	case chat.RoleSystem:
		return "⚙ System"
	}
	return string(r)
}

// refreshDetail re-renders the selected conversation into the viewport.
func (m *Model) refreshDetail() {
	c, ok := m.home.Selected()
	if !ok {
		m.detailID = ""
		m.vp.SetContent("")
		return
	}
	md := renderDetailMarkdown(c, m.folderName(c.FolderID), m.hooks, m.home.Now())
	out := md
	if m.md != nil {
		if s, err := m.md.Render(md); err == nil {
			out = s
		} else {
			logger.Warn("render detail", "component", "tui", "err", err)
		}
	}
	m.vp.SetContent(out)
	if c.ID != m.detailID {
		m.vp.GotoTop()
	}
	m.detailID = c.ID
}

func (m Model) folderName(id string) string {
	if id == "" {
		return ""
	}
	if f, ok := m.home.Folder(id); ok {
		return f.Name
	}
	return ""
}
