package tui

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"chatbar/internal/store"
)

// RestoreModel picks one sqlite backup to restore.
type RestoreModel struct {
	entries  []store.BackupInfo
	dbPath   string
	idx      int
	quitting bool
	selected string
	msg      string
	keys     keymap
}

func NewRestore(infos []store.BackupInfo, dbPath string) RestoreModel {
	return RestoreModel{entries: infos, dbPath: dbPath, keys: newKeymap()}
}

func (m RestoreModel) Init() tea.Cmd { return nil }

func (m RestoreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	km, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(km, m.keys.quit), key.Matches(km, m.keys.cancel):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(km, m.keys.up):
		if m.idx > 0 {
			m.idx--
		}
	case key.Matches(km, m.keys.down):
		if m.idx < len(m.entries)-1 {
			m.idx++
		}
	case key.Matches(km, m.keys.enter):
		if len(m.entries) > 0 {
			m.selected = m.entries[m.idx].Suffix
		}
		return m, tea.Quit
	case km.String() == "o":
		dir := filepath.Dir(m.dbPath)
		if err := openDir(dir); err != nil {
			m.msg = "open failed: " + err.Error()
		} else {
			m.msg = "opened: " + dir
		}
	}
	return m, nil
}

func (m RestoreModel) View() string {
	if m.quitting {
		return ""
	}
	sel := lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	b := &strings.Builder{}
	fmt.Fprintf(b, "Restore %s from backup\n", filepath.Base(m.dbPath))
	fmt.Fprintf(b, "Directory: %s\n", filepath.Dir(m.dbPath))
	b.WriteString("Quit any running chatbar before restoring!\n")
	b.WriteString("Use ↑/↓ or j/k to navigate, Enter to restore, o to open folder, q to quit.\n\n")
	if len(m.entries) == 0 {
		b.WriteString("  no backups found\n")
	}
	for i, e := range m.entries {
		line := fmt.Sprintf("%s  %s  (%s)", e.ModTime.Format("2006-01-02 15:04:05"), e.Suffix, humanize.Bytes(uint64(e.Size)))
		if i == m.idx {
			b.WriteString(sel.Render("> "+line) + "\n")
		} else {
			b.WriteString("  " + line + "\n")
		}
	}
	if m.msg != "" {
		b.WriteString("\n" + m.msg + "\n")
	}
	return b.String()
}

// Selected returns the chosen backup suffix, or "" if the picker was quit.
func (m RestoreModel) Selected() string { return m.selected }

func openDir(dir string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", dir).Start()
	case "windows":
		return exec.Command("explorer", dir).Start()
	default:
		return exec.Command("xdg-open", dir).Start()
	}
}
