package store

import (
	"encoding/json"
	"errors"
	"fmt"

	"chatbar/internal/chat"
	"chatbar/internal/logger"
)

func loadJSON(kv KV, key string, out any) (bool, error) {
	raw, err := kv.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return true, nil
}

func saveJSON(kv KV, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return kv.Set(key, b)
}

// LoadConversations reads the conversation history; a missing key is an
// empty history.
func LoadConversations(kv KV) ([]chat.Conversation, error) {
	var out []chat.Conversation
	if _, err := loadJSON(kv, KeyConversations, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func SaveConversations(kv KV, cs []chat.Conversation) error {
	if cs == nil {
		cs = []chat.Conversation{}
	}
	return saveJSON(kv, KeyConversations, cs)
}

func LoadFolders(kv KV) ([]chat.Folder, error) {
	var out []chat.Folder
	if _, err := loadJSON(kv, KeyFolders, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func SaveFolders(kv KV, fs []chat.Folder) error {
	if fs == nil {
		fs = []chat.Folder{}
	}
	return saveJSON(kv, KeyFolders, fs)
}

// LoadSelected returns the persisted selected conversation id, or "".
func LoadSelected(kv KV) (string, error) {
	var sel struct {
		ID string `json:"id"`
	}
	if _, err := loadJSON(kv, KeySelected, &sel); err != nil {
		return "", err
	}
	return sel.ID, nil
}

func SaveSelected(kv KV, id string) error {
	if id == "" {
		return kv.Delete(KeySelected)
	}
	return saveJSON(kv, KeySelected, struct {
		ID string `json:"id"`
	}{id})
}

// SetFolderColor reads the whole folder collection, swaps the color of the
// folder with folderID and writes the collection back. The last writer wins;
// a concurrent change to another folder made between the read and the write
// is lost. An unknown id rewrites the collection unchanged.
func SetFolderColor(kv KV, folderID string, color chat.Color) error {
	folders, err := LoadFolders(kv)
	if err != nil {
		return err
	}
	found := false
	for i := range folders {
		if folders[i].ID == folderID {
			folders[i].Color = color
			found = true
		}
	}
	if !found {
		logger.Warn("color for unknown folder", "component", "store", "folder", folderID)
	}
	return SaveFolders(kv, folders)
}
