package home

import (
	"chatbar/internal/chat"
	"chatbar/internal/logger"
)

// ImportResult counts what Merge did.
type ImportResult struct {
	Added, Replaced               int
	FoldersAdded, FoldersReplaced int
}

// Merge folds imported conversations and folders into the current state.
// Items whose id already exists replace the stored copy in place; new ones
// are appended in import order. Each collection is swapped in only after
// it is written.
func (h *Home) Merge(conversations []chat.Conversation, folders []chat.Folder) (ImportResult, error) {
	var r ImportResult
	cs := h.cloneConversations()
	at := make(map[string]int, len(cs))
	for i, c := range cs {
		at[c.ID] = i
	}
	for _, c := range conversations {
		if i, ok := at[c.ID]; ok {
			cs[i] = c
			r.Replaced++
			continue
		}
		at[c.ID] = len(cs)
		cs = append(cs, c)
		r.Added++
	}
	fs := h.cloneFolders()
	fat := make(map[string]int, len(fs))
	for i, f := range fs {
		fat[f.ID] = i
	}
	for _, f := range folders {
		if i, ok := fat[f.ID]; ok {
			fs[i] = f
			r.FoldersReplaced++
			continue
		}
		fat[f.ID] = len(fs)
		fs = append(fs, f)
		r.FoldersAdded++
	}
	if err := h.saveConversations(cs); err != nil {
		return ImportResult{}, err
	}
	if err := h.saveFolders(fs); err != nil {
		return ImportResult{}, err
	}
	logger.Info("merged import", "component", "home",
		"added", r.Added, "replaced", r.Replaced,
		"foldersAdded", r.FoldersAdded, "foldersReplaced", r.FoldersReplaced)
	return r, nil
}
