package tui

import (
	"strings"
	"testing"
	"time"

	"chatbar/internal/store"
)

func TestRestorePicker(t *testing.T) {
	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	infos := []store.BackupInfo{
		{Path: "/tmp/state.db.bak-20240501-120000", Suffix: "20240501-120000", ModTime: at, Size: 2048},
		{Path: "/tmp/state.db.bak-20240430-120000", Suffix: "20240430-120000", ModTime: at.AddDate(0, 0, -1), Size: 1024},
	}
	m := NewRestore(infos, "/tmp/state.db")
	if v := m.View(); !strings.Contains(v, "state.db") || !strings.Contains(v, "> 2024-05-01 12:00:00") {
		t.Fatalf("view:\n%s", v)
	}

	next, _ := m.Update(keyMsg("j"))
	m = next.(RestoreModel)
	next, _ = m.Update(keyMsg("j"))
	m = next.(RestoreModel)
	next, cmd := m.Update(keyMsg("enter"))
	m = next.(RestoreModel)
	if m.Selected() != "20240430-120000" {
		t.Fatalf("selected %q", m.Selected())
	}
	if cmd == nil {
		t.Fatal("enter should quit")
	}
}

func TestRestorePickerQuit(t *testing.T) {
	m := NewRestore(nil, "/tmp/state.db")
	if !strings.Contains(m.View(), "no backups found") {
		t.Fatalf("view:\n%s", m.View())
	}
	next, _ := m.Update(keyMsg("q"))
	m = next.(RestoreModel)
	if m.Selected() != "" || m.View() != "" {
		t.Fatal("quit should select nothing and clear the view")
	}
}
