// Package home owns the sidebar's application state: conversations, folders
// and the current selection. Views hold a *Home and call its handlers; every
// handler is synchronous and persists through the key-value store before it
// returns.
package home

import (
	"errors"
	"fmt"
	"time"

	"chatbar/internal/chat"
	"chatbar/internal/logger"
	"chatbar/internal/store"
)

var (
	ErrStreaming           = errors.New("a message is streaming")
	ErrUnknownConversation = errors.New("unknown conversation")
	ErrUnknownFolder       = errors.New("unknown folder")
)

type Home struct {
	kv  store.KV
	now func() time.Time

	conversations []chat.Conversation
	folders       []chat.Folder
	selectedID    string

	// MessageIsStreaming blocks selection changes while a reply is arriving.
	MessageIsStreaming bool
	SearchTerm         string
}

// Option customizes a Home.
type Option func(*Home)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Home) { h.now = now }
}

// Load reads conversations, folders and the selection from kv.
func Load(kv store.KV, opts ...Option) (*Home, error) {
	h := &Home{kv: kv, now: time.Now}
	for _, o := range opts {
		o(h)
	}
	if err := h.Reload(); err != nil {
		return nil, err
	}
	return h, nil
}

// Reload re-reads everything from the store, dropping in-memory state.
func (h *Home) Reload() error {
	cs, err := store.LoadConversations(h.kv)
	if err != nil {
		return err
	}
	fs, err := store.LoadFolders(h.kv)
	if err != nil {
		return err
	}
	sel, err := store.LoadSelected(h.kv)
	if err != nil {
		return err
	}
	h.conversations, h.folders, h.selectedID = cs, fs, sel
	if h.indexOf(sel) < 0 {
		h.selectedID = ""
	}
	return nil
}

// Now is the clock the views bucket against.
func (h *Home) Now() time.Time { return h.now() }

// Conversations returns the conversation list in store order.
func (h *Home) Conversations() []chat.Conversation {
	return append([]chat.Conversation(nil), h.conversations...)
}

// Folders returns folders of the given type, or all when typ is "".
func (h *Home) Folders(typ chat.FolderType) []chat.Folder {
	var out []chat.Folder
	for _, f := range h.folders {
		if typ == "" || f.Type == typ {
			out = append(out, f)
		}
	}
	return out
}

func (h *Home) Folder(id string) (chat.Folder, bool) {
	if i := h.folderIndex(id); i >= 0 {
		return h.folders[i], true
	}
	return chat.Folder{}, false
}

func (h *Home) Conversation(id string) (chat.Conversation, bool) {
	if i := h.indexOf(id); i >= 0 {
		return h.conversations[i], true
	}
	return chat.Conversation{}, false
}

// FolderConversations lists the conversations assigned to folder id.
func (h *Home) FolderConversations(id string) []chat.Conversation {
	return chat.InFolder(h.conversations, id)
}

// Selected returns the selected conversation, if any.
func (h *Home) Selected() (chat.Conversation, bool) {
	if h.selectedID == "" {
		return chat.Conversation{}, false
	}
	return h.Conversation(h.selectedID)
}

func (h *Home) indexOf(id string) int {
	for i, c := range h.conversations {
		if c.ID == id {
			return i
		}
	}
	return -1
}

func (h *Home) folderIndex(id string) int {
	for i, f := range h.folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// saveConversations persists cs and only then makes it the in-memory list,
// so a failed write leaves h matching the store.
func (h *Home) saveConversations(cs []chat.Conversation) error {
	if err := store.SaveConversations(h.kv, cs); err != nil {
		return fmt.Errorf("save conversations: %w", err)
	}
	h.conversations = cs
	return nil
}

func (h *Home) saveFolders(fs []chat.Folder) error {
	if err := store.SaveFolders(h.kv, fs); err != nil {
		return fmt.Errorf("save folders: %w", err)
	}
	h.folders = fs
	return nil
}

func (h *Home) cloneConversations() []chat.Conversation {
	return append([]chat.Conversation(nil), h.conversations...)
}

func (h *Home) cloneFolders() []chat.Folder {
	return append([]chat.Folder(nil), h.folders...)
}

// HandleSelectConversation makes c the selected conversation.
func (h *Home) HandleSelectConversation(c chat.Conversation) error {
	if h.MessageIsStreaming {
		return ErrStreaming
	}
	if h.indexOf(c.ID) < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownConversation, c.ID)
	}
	h.selectedID = c.ID
	logger.Debug("select conversation", "component", "home", "id", c.ID)
	return store.SaveSelected(h.kv, c.ID)
}

// HandleUpdateConversation applies one field update to the stored copy of c.
func (h *Home) HandleUpdateConversation(c chat.Conversation, u chat.ConversationUpdate) (chat.Conversation, error) {
	i := h.indexOf(c.ID)
	if i < 0 {
		return c, fmt.Errorf("%w: %s", ErrUnknownConversation, c.ID)
	}
	updated, err := u.Apply(h.conversations[i])
	if err != nil {
		return c, err
	}
	cs := h.cloneConversations()
	cs[i] = updated
	if err := h.saveConversations(cs); err != nil {
		return c, err
	}
	logger.Debug("update conversation", "component", "home", "id", c.ID, "key", string(u.Key))
	return updated, nil
}

// HandleDeleteConversation removes c. Deleting the selected conversation
// selects the last remaining one.
func (h *Home) HandleDeleteConversation(c chat.Conversation) error {
	i := h.indexOf(c.ID)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownConversation, c.ID)
	}
	cs := h.cloneConversations()
	cs = append(cs[:i], cs[i+1:]...)
	if err := h.saveConversations(cs); err != nil {
		return err
	}
	logger.Info("delete conversation", "component", "home", "id", c.ID)
	if h.selectedID != c.ID {
		return nil
	}
	h.selectedID = ""
	if n := len(h.conversations); n > 0 {
		h.selectedID = h.conversations[n-1].ID
	}
	return store.SaveSelected(h.kv, h.selectedID)
}

// HandleNewConversation appends an empty conversation and selects it.
func (h *Home) HandleNewConversation() (chat.Conversation, error) {
	c := chat.NewConversation("", h.now())
	if err := h.saveConversations(append(h.cloneConversations(), c)); err != nil {
		return chat.Conversation{}, err
	}
	h.selectedID = c.ID
	return c, store.SaveSelected(h.kv, c.ID)
}

// HandleCreateFolder appends a new folder.
func (h *Home) HandleCreateFolder(name string, typ chat.FolderType) (chat.Folder, error) {
	f := chat.NewFolder(name, typ)
	if err := h.saveFolders(append(h.cloneFolders(), f)); err != nil {
		return chat.Folder{}, err
	}
	logger.Info("create folder", "component", "home", "id", f.ID, "name", name)
	return f, nil
}

// HandleUpdateFolder renames folder id.
func (h *Home) HandleUpdateFolder(id, name string) error {
	i := h.folderIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownFolder, id)
	}
	fs := h.cloneFolders()
	fs[i].Name = name
	return h.saveFolders(fs)
}

// HandleDeleteFolder removes folder id and moves its conversations back to
// the root list.
func (h *Home) HandleDeleteFolder(id string) error {
	i := h.folderIndex(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownFolder, id)
	}
	fs := h.cloneFolders()
	if err := h.saveFolders(append(fs[:i], fs[i+1:]...)); err != nil {
		return err
	}
	cs := h.cloneConversations()
	moved := 0
	for j := range cs {
		if cs[j].FolderID == id {
			cs[j].FolderID = ""
			moved++
		}
	}
	logger.Info("delete folder", "component", "home", "id", id, "released", moved)
	if moved == 0 {
		return nil
	}
	return h.saveConversations(cs)
}

// SetFolderColor persists color for folder id with a whole-collection
// read-modify-write against the store, then reloads folders from it.
func (h *Home) SetFolderColor(id string, color chat.Color) error {
	if err := store.SetFolderColor(h.kv, id, color); err != nil {
		return err
	}
	fs, err := store.LoadFolders(h.kv)
	if err != nil {
		return err
	}
	h.folders = fs
	return nil
}
