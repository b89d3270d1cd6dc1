package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"chatbar/internal/chat"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"})
	nameStyle     = lipgloss.NewStyle().Bold(true)
	previewStyle  = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("10"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dropStyle     = lipgloss.NewStyle().Reverse(true)
	confirmStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	detailBorder  = lipgloss.NewStyle().BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).PaddingLeft(1)
)

// folderColors maps palette tags to terminal background colors.
var folderColors = map[chat.Color]lipgloss.Color{
	chat.ColorRed:    lipgloss.Color("1"),
	chat.ColorPurple: lipgloss.Color("5"),
	chat.ColorBlue:   lipgloss.Color("4"),
	chat.ColorGreen:  lipgloss.Color("2"),
	chat.ColorYellow: lipgloss.Color("3"),
}

func folderStyle(c chat.Color) lipgloss.Style {
	bg, ok := folderColors[c]
	if !ok {
		return lipgloss.NewStyle()
	}
	return lipgloss.NewStyle().Background(bg).Foreground(lipgloss.Color("0"))
}

// swatch renders one palette entry; the cleared entry shows as a dotted box.
func swatch(c chat.Color, active bool) string {
	label := "  "
	if c == chat.ColorNone {
		label = "∅ "
	}
	s := folderStyle(c).Render(label)
	if active {
		return "[" + s + "]"
	}
	return " " + s + " "
}

// fit truncates s to w terminal cells.
func fit(s string, w int) string {
	if w <= 0 {
		return ""
	}
	return runewidth.Truncate(s, w, "…")
}
