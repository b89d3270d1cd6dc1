package zipper

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"chatbar/internal/chat"
)

func TestExportRead(t *testing.T) {
	root := t.TempDir()
	at := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	cs := []chat.Conversation{
		{ID: "c1", Name: "one", LastUsedDate: at, FolderID: "f1", Messages: []chat.Message{{Role: chat.RoleUser, Content: "hi"}}},
		{ID: "c2", Name: "two", LastUsedDate: at},
	}
	fs := []chat.Folder{{ID: "f1", Name: "Work", Type: chat.FolderChat, ChatsNumber: 1, Color: chat.ColorRed}}

	zipPath := filepath.Join(root, "out", "archive.zip")
	var progressed int
	if err := ExportWithProgress(zipPath, cs, fs, func(cur, total int) { progressed = cur }); err != nil {
		t.Fatalf("export: %v", err)
	}
	if progressed != 2 {
		t.Fatalf("progress %d", progressed)
	}

	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	zr.Close()
	if !names[ManifestName] || !names[HistoryName] {
		t.Fatalf("archive entries %v", names)
	}

	m, err := ReadManifest(zipPath)
	if err != nil || m.Conversations != 2 || m.Folders != 1 {
		t.Fatalf("manifest %+v %v", m, err)
	}

	h, err := Read(zipPath)
	if err != nil {
		t.Fatal(err)
	}
	if h.Version != HistoryVersion || len(h.History) != 2 || len(h.Folders) != 1 {
		t.Fatalf("history %+v", h)
	}
	if h.History[0].FolderID != "f1" || !h.History[0].LastUsedDate.Equal(at) || h.Folders[0].Color != chat.ColorRed {
		t.Fatalf("fields lost: %+v %+v", h.History[0], h.Folders[0])
	}
}

func TestReadPlainJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "export.json")
	body := `{"version":4,"history":[{"id":"c1","name":"x","messages":[],"lastUsedDate":"2024-01-01T00:00:00Z"}],"folders":[{"id":"f","name":"F"}]}`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	h, err := Read(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(h.History) != 1 || h.Folders[0].Type != chat.FolderChat {
		t.Fatalf("unexpected %+v", h)
	}
}

func TestReadArchiveWithoutHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.zip")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	zw := zip.NewWriter(f)
	_ = writeJSON(zw, ManifestName, Manifest{Version: 1})
	zw.Close()
	f.Close()
	if _, err := Read(path); !errors.Is(err, ErrNoHistory) {
		t.Fatalf("expected ErrNoHistory, got %v", err)
	}
}
