package home

import (
	"errors"
	"testing"
	"time"

	"chatbar/internal/chat"
	"chatbar/internal/store"
)

var fixedNow = time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

func newHome(t *testing.T, cs []chat.Conversation, fs []chat.Folder) (*Home, store.KV) {
	t.Helper()
	kv := store.NewMemory()
	if err := store.SaveConversations(kv, cs); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveFolders(kv, fs); err != nil {
		t.Fatal(err)
	}
	h, err := Load(kv, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	return h, kv
}

func fixture() ([]chat.Conversation, []chat.Folder) {
	cs := []chat.Conversation{
		{ID: "c1", Name: "one", LastUsedDate: fixedNow},
		{ID: "c2", Name: "two", LastUsedDate: fixedNow},
		{ID: "c3", Name: "three", LastUsedDate: fixedNow, FolderID: "f1"},
	}
	fs := []chat.Folder{
		{ID: "f1", Name: "Personal Projects", Type: chat.FolderChat},
		{ID: "p1", Name: "Prompts", Type: chat.FolderPrompt},
	}
	return cs, fs
}

func TestSelectPersistsAndRespectsStreaming(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)

	if err := h.HandleSelectConversation(cs[1]); err != nil {
		t.Fatal(err)
	}
	if sel, _ := store.LoadSelected(kv); sel != "c2" {
		t.Fatalf("selection not persisted: %q", sel)
	}

	h.MessageIsStreaming = true
	if err := h.HandleSelectConversation(cs[0]); !errors.Is(err, ErrStreaming) {
		t.Fatalf("expected ErrStreaming, got %v", err)
	}
	if sel, _ := h.Selected(); sel.ID != "c2" {
		t.Fatalf("selection changed while streaming: %s", sel.ID)
	}

	h.MessageIsStreaming = false
	if err := h.HandleSelectConversation(chat.Conversation{ID: "nope"}); !errors.Is(err, ErrUnknownConversation) {
		t.Fatalf("expected ErrUnknownConversation, got %v", err)
	}
}

func TestUpdateConversationKeepsLastUsedDate(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)

	got, err := h.HandleUpdateConversation(cs[0], chat.ConversationUpdate{Key: chat.KeyName, Value: "renamed"})
	if err != nil {
		t.Fatal(err)
	}
	if got.Name != "renamed" || !got.LastUsedDate.Equal(fixedNow) {
		t.Fatalf("unexpected %+v", got)
	}
	stored, _ := store.LoadConversations(kv)
	if stored[0].Name != "renamed" {
		t.Fatalf("rename not persisted: %+v", stored[0])
	}
}

func TestDeleteSelectedConversationSelectsLast(t *testing.T) {
	cs, fs := fixture()
	h, _ := newHome(t, cs, fs)
	_ = h.HandleSelectConversation(cs[0])

	if err := h.HandleDeleteConversation(cs[0]); err != nil {
		t.Fatal(err)
	}
	if len(h.Conversations()) != 2 {
		t.Fatalf("expected 2 conversations, got %d", len(h.Conversations()))
	}
	if sel, ok := h.Selected(); !ok || sel.ID != "c3" {
		t.Fatalf("expected c3 selected, got %+v %v", sel, ok)
	}

	// deleting an unselected one leaves the selection alone
	if err := h.HandleDeleteConversation(cs[1]); err != nil {
		t.Fatal(err)
	}
	if sel, _ := h.Selected(); sel.ID != "c3" {
		t.Fatalf("selection moved: %s", sel.ID)
	}
	if err := h.HandleDeleteConversation(cs[2]); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.Selected(); ok {
		t.Fatal("expected no selection on empty list")
	}
}

func TestNewConversationIsSelectedAndToday(t *testing.T) {
	h, _ := newHome(t, nil, nil)
	c, err := h.HandleNewConversation()
	if err != nil {
		t.Fatal(err)
	}
	if sel, _ := h.Selected(); sel.ID != c.ID {
		t.Fatalf("new conversation not selected")
	}
	groups := chat.Bucket(h.Conversations(), h.Now())
	if len(groups) != 1 || groups[0].Label != chat.LabelToday {
		t.Fatalf("expected new conversation under Today, got %+v", groups)
	}
}

func TestFoldersByType(t *testing.T) {
	cs, fs := fixture()
	h, _ := newHome(t, cs, fs)
	if got := h.Folders(chat.FolderChat); len(got) != 1 || got[0].ID != "f1" {
		t.Fatalf("chat folders %+v", got)
	}
	if got := h.Folders(""); len(got) != 2 {
		t.Fatalf("all folders %+v", got)
	}
	if got := h.FolderConversations("f1"); len(got) != 1 || got[0].ID != "c3" {
		t.Fatalf("folder conversations %+v", got)
	}
}

func TestCreateRenameDeleteFolder(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)

	f, err := h.HandleCreateFolder("New folder", chat.FolderChat)
	if err != nil {
		t.Fatal(err)
	}
	if err := h.HandleUpdateFolder(f.ID, "Work"); err != nil {
		t.Fatal(err)
	}
	stored, _ := store.LoadFolders(kv)
	if stored[len(stored)-1].Name != "Work" {
		t.Fatalf("rename not persisted %+v", stored)
	}

	if err := h.HandleDeleteFolder("f1"); err != nil {
		t.Fatal(err)
	}
	if _, ok := h.Folder("f1"); ok {
		t.Fatal("folder still present")
	}
	c3, _ := h.Conversation("c3")
	if c3.FolderID != "" {
		t.Fatalf("conversation still points at deleted folder: %q", c3.FolderID)
	}
	if err := h.HandleDeleteFolder("f1"); !errors.Is(err, ErrUnknownFolder) {
		t.Fatalf("expected ErrUnknownFolder, got %v", err)
	}
}

func TestDropOnFolderAssignsAndMangles(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)

	payload, _ := chat.EncodeDragPayload(cs[0])
	f, err := h.DropOnFolder(payload, "f1")
	if err != nil {
		t.Fatal(err)
	}
	if f.Name != "Personal Projects (1 chats)" || f.ChatsNumber != 1 {
		t.Fatalf("first drop: %+v", f)
	}
	if c, _ := h.Conversation("c1"); c.FolderID != "f1" {
		t.Fatalf("conversation not moved: %+v", c)
	}

	payload, _ = chat.EncodeDragPayload(cs[1])
	if f, err = h.DropOnFolder(payload, "f1"); err != nil {
		t.Fatal(err)
	}
	if f.Name != "Personal Proj(2 chats)" || f.ChatsNumber != 2 {
		t.Fatalf("second drop: %+v", f)
	}

	stored, _ := store.LoadFolders(kv)
	if stored[0].Name != "Personal Proj(2 chats)" || stored[0].ChatsNumber != 2 {
		t.Fatalf("folder not persisted: %+v", stored[0])
	}
	// today's list no longer shows the moved conversations
	for _, g := range chat.Bucket(h.Conversations(), h.Now()) {
		if len(g.Conversations) != 0 {
			t.Fatalf("expected no root conversations, got %+v", g)
		}
	}
}

func TestDropOnFolderErrors(t *testing.T) {
	cs, fs := fixture()
	h, _ := newHome(t, cs, fs)
	payload, _ := chat.EncodeDragPayload(cs[0])
	if _, err := h.DropOnFolder(payload, "missing"); !errors.Is(err, ErrUnknownFolder) {
		t.Fatalf("expected ErrUnknownFolder, got %v", err)
	}
	if _, err := h.DropOnFolder(nil, "f1"); !errors.Is(err, chat.ErrEmptyPayload) {
		t.Fatalf("expected ErrEmptyPayload, got %v", err)
	}
	if f, _ := h.Folder("f1"); f.ChatsNumber != 0 {
		t.Fatalf("failed drop must not bump counter, got %d", f.ChatsNumber)
	}
}

func TestDropOnRootClearsFolder(t *testing.T) {
	cs, fs := fixture()
	h, _ := newHome(t, cs, fs)
	payload, _ := chat.EncodeDragPayload(cs[2])
	c, err := h.DropOnRoot(payload)
	if err != nil {
		t.Fatal(err)
	}
	if c.FolderID != "" {
		t.Fatalf("folder not cleared: %q", c.FolderID)
	}
}

func TestSetFolderColorReloads(t *testing.T) {
	cs, fs := fixture()
	h, _ := newHome(t, cs, fs)
	if err := h.SetFolderColor("f1", chat.ColorGreen); err != nil {
		t.Fatal(err)
	}
	if f, _ := h.Folder("f1"); f.Color != chat.ColorGreen {
		t.Fatalf("color not applied: %+v", f)
	}
}

func TestReloadDropsStaleSelection(t *testing.T) {
	cs, fs := fixture()
	kv := store.NewMemory()
	_ = store.SaveConversations(kv, cs)
	_ = store.SaveFolders(kv, fs)
	_ = store.SaveSelected(kv, "gone")
	h, err := Load(kv)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := h.Selected(); ok {
		t.Fatal("selection of a missing conversation should be dropped")
	}
}

func TestMergeReplacesAndAppends(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)

	r, err := h.Merge(
		[]chat.Conversation{{ID: "c2", Name: "two v2"}, {ID: "c9", Name: "nine"}},
		[]chat.Folder{{ID: "f9", Name: "Imported", Type: chat.FolderChat}},
	)
	if err != nil {
		t.Fatal(err)
	}
	if r.Added != 1 || r.Replaced != 1 || r.FoldersAdded != 1 || r.FoldersReplaced != 0 {
		t.Fatalf("unexpected result %+v", r)
	}
	stored, _ := store.LoadConversations(kv)
	if len(stored) != 4 || stored[1].Name != "two v2" || stored[3].ID != "c9" {
		t.Fatalf("unexpected stored list %+v", stored)
	}
}

var errDiskFull = errors.New("disk full")

// failingKV fails Set for the listed keys and passes everything else through.
type failingKV struct {
	store.KV
	fail map[string]bool
}

func (f *failingKV) Set(key string, value []byte) error {
	if f.fail[key] {
		return errDiskFull
	}
	return f.KV.Set(key, value)
}

func newFailingHome(t *testing.T, keys ...string) (*Home, *failingKV) {
	t.Helper()
	cs, fs := fixture()
	_, kv := newHome(t, cs, fs)
	fkv := &failingKV{KV: kv, fail: map[string]bool{}}
	h, err := Load(fkv, WithClock(func() time.Time { return fixedNow }))
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range keys {
		fkv.fail[k] = true
	}
	return h, fkv
}

// assertInSync fails when the in-memory state differs from what is stored.
func assertInSync(t *testing.T, h *Home, kv store.KV) {
	t.Helper()
	cs, _ := store.LoadConversations(kv)
	if got := h.Conversations(); len(got) != len(cs) {
		t.Fatalf("conversations: memory %d, stored %d", len(got), len(cs))
	}
	for i, c := range h.Conversations() {
		if c.ID != cs[i].ID || c.Name != cs[i].Name || c.FolderID != cs[i].FolderID {
			t.Fatalf("conversation %d: memory %+v, stored %+v", i, c, cs[i])
		}
	}
	fs, _ := store.LoadFolders(kv)
	if got := h.Folders(""); len(got) != len(fs) {
		t.Fatalf("folders: memory %d, stored %d", len(got), len(fs))
	}
	for i, f := range h.Folders("") {
		if f != fs[i] {
			t.Fatalf("folder %d: memory %+v, stored %+v", i, f, fs[i])
		}
	}
}

func TestFailedWritesLeaveStateUnchanged(t *testing.T) {
	cs, _ := fixture()
	payload, _ := chat.EncodeDragPayload(cs[0])
	tests := []struct {
		name string
		keys []string
		op   func(h *Home) error
	}{
		{"delete conversation", []string{store.KeyConversations}, func(h *Home) error {
			return h.HandleDeleteConversation(cs[0])
		}},
		{"update conversation", []string{store.KeyConversations}, func(h *Home) error {
			_, err := h.HandleUpdateConversation(cs[0], chat.ConversationUpdate{Key: chat.KeyName, Value: "renamed"})
			return err
		}},
		{"new conversation", []string{store.KeyConversations}, func(h *Home) error {
			_, err := h.HandleNewConversation()
			return err
		}},
		{"create folder", []string{store.KeyFolders}, func(h *Home) error {
			_, err := h.HandleCreateFolder("Work", chat.FolderChat)
			return err
		}},
		{"rename folder", []string{store.KeyFolders}, func(h *Home) error {
			return h.HandleUpdateFolder("f1", "Renamed")
		}},
		{"delete folder", []string{store.KeyFolders}, func(h *Home) error {
			return h.HandleDeleteFolder("f1")
		}},
		{"drop on folder", []string{store.KeyConversations}, func(h *Home) error {
			_, err := h.DropOnFolder(payload, "f1")
			return err
		}},
		{"merge", []string{store.KeyConversations}, func(h *Home) error {
			_, err := h.Merge([]chat.Conversation{{ID: "c9", Name: "nine"}}, nil)
			return err
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, kv := newFailingHome(t, tt.keys...)
			before := h.Conversations()
			if err := tt.op(h); !errors.Is(err, errDiskFull) {
				t.Fatalf("expected errDiskFull, got %v", err)
			}
			if len(h.Conversations()) != len(before) {
				t.Fatalf("conversations changed: %d -> %d", len(before), len(h.Conversations()))
			}
			assertInSync(t, h, kv)
		})
	}
}

func TestDropOnFolderFailedFolderWriteKeepsCounter(t *testing.T) {
	cs, _ := fixture()
	h, kv := newFailingHome(t, store.KeyFolders)
	payload, _ := chat.EncodeDragPayload(cs[0])

	f, err := h.DropOnFolder(payload, "f1")
	if !errors.Is(err, errDiskFull) {
		t.Fatalf("expected errDiskFull, got %v", err)
	}
	if f.Name != "Personal Projects" || f.ChatsNumber != 0 {
		t.Fatalf("returned folder was renamed: %+v", f)
	}
	if mem, _ := h.Folder("f1"); mem.Name != "Personal Projects" || mem.ChatsNumber != 0 {
		t.Fatalf("in-memory folder was renamed: %+v", mem)
	}
	assertInSync(t, h, kv)

	// the retry after the disk recovers starts from the first drop again
	delete(kv.fail, store.KeyFolders)
	if f, err = h.DropOnFolder(payload, "f1"); err != nil {
		t.Fatal(err)
	}
	if f.Name != "Personal Projects (1 chats)" || f.ChatsNumber != 1 {
		t.Fatalf("retried drop: %+v", f)
	}
	assertInSync(t, h, kv)
}

func TestMergeDuplicateNewIDReplaces(t *testing.T) {
	cs, fs := fixture()
	h, kv := newHome(t, cs, fs)
	r, err := h.Merge([]chat.Conversation{{ID: "c9", Name: "first"}, {ID: "c9", Name: "second"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if r.Added != 1 || r.Replaced != 1 {
		t.Fatalf("unexpected result %+v", r)
	}
	stored, _ := store.LoadConversations(kv)
	if len(stored) != 4 || stored[3].Name != "second" {
		t.Fatalf("unexpected stored list %+v", stored)
	}
}
