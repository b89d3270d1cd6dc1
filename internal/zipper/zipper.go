// Package zipper writes and reads sidebar archives: a zip holding a manifest
// and the conversation history with its folders.
package zipper

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"chatbar/internal/chat"
)

const (
	ManifestName = "chatbar-manifest.json"
	HistoryName  = "history.json"

	// HistoryVersion is the version field of history.json.
	HistoryVersion = 4
)

type Manifest struct {
	Version       int       `json:"version"`
	ExportedAt    time.Time `json:"exportedAt"`
	Conversations int       `json:"conversations"`
	Folders       int       `json:"folders"`
}

// History is the payload shared by archives and plain JSON exports.
type History struct {
	Version int                 `json:"version"`
	History []chat.Conversation `json:"history"`
	Folders []chat.Folder       `json:"folders"`
}

// ProgressCallback is called with (current, total) as conversations are written.
type ProgressCallback func(current, total int)

func Export(zipPath string, conversations []chat.Conversation, folders []chat.Folder) error {
	return ExportWithProgress(zipPath, conversations, folders, nil)
}

// ExportWithProgress writes the archive to zipPath, creating parent dirs.
func ExportWithProgress(zipPath string, conversations []chat.Conversation, folders []chat.Folder, progress ProgressCallback) error {
	if err := os.MkdirAll(filepath.Dir(zipPath), 0o755); err != nil {
		return err
	}
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	m := Manifest{Version: 1, ExportedAt: time.Now().UTC(), Conversations: len(conversations), Folders: len(folders)}
	if err := writeJSON(zw, ManifestName, m); err != nil {
		return err
	}
	if conversations == nil {
		conversations = []chat.Conversation{}
	}
	if folders == nil {
		folders = []chat.Folder{}
	}
	if err := writeJSON(zw, HistoryName, History{Version: HistoryVersion, History: conversations, Folders: folders}); err != nil {
		return err
	}
	if progress != nil {
		progress(len(conversations), len(conversations))
	}
	return zw.Close()
}

func writeJSON(zw *zip.Writer, name string, v any) error {
	w, err := zw.Create(name)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var ErrNoHistory = errors.New("archive has no " + HistoryName)

// Read loads a History from a zip archive or a bare .json export.
func Read(path string) (History, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		b, err := os.ReadFile(path)
		if err != nil {
			return History{}, err
		}
		return decodeHistory(b)
	}
	zr, err := zip.OpenReader(path)
	if err != nil {
		return History{}, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if filepath.Base(f.Name) != HistoryName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return History{}, err
		}
		b, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return History{}, err
		}
		return decodeHistory(b)
	}
	return History{}, ErrNoHistory
}

// ReadManifest returns the manifest of a zip archive.
func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	zr, err := zip.OpenReader(path)
	if err != nil {
		return m, err
	}
	defer zr.Close()
	for _, f := range zr.File {
		if filepath.Base(f.Name) != ManifestName {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return m, err
		}
		defer rc.Close()
		return m, json.NewDecoder(rc).Decode(&m)
	}
	return m, fmt.Errorf("archive has no %s", ManifestName)
}

func decodeHistory(b []byte) (History, error) {
	var h History
	if err := json.Unmarshal(b, &h); err != nil {
		return h, fmt.Errorf("parse history: %w", err)
	}
	for i := range h.Folders {
		if h.Folders[i].Type == "" {
			h.Folders[i].Type = chat.FolderChat
		}
	}
	return h, nil
}
