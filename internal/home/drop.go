package home

import (
	"fmt"

	"chatbar/internal/chat"
	"chatbar/internal/logger"
)

// HandleDrop assigns the conversation carried by payload to folder.
func (h *Home) HandleDrop(payload []byte, folder chat.Folder) (chat.Conversation, error) {
	c, err := chat.DecodeDragPayload(payload)
	if err != nil {
		return c, err
	}
	return h.HandleUpdateConversation(c, chat.ConversationUpdate{Key: chat.KeyFolderID, Value: folder.ID})
}

// DropOnFolder is a drop onto a folder row: the conversation moves into the
// folder, then the folder's chat counter is bumped and its name rewritten
// with chat.ApplyDrop. The counter goes up on every drop, including a
// conversation that was already in the folder.
func (h *Home) DropOnFolder(payload []byte, folderID string) (chat.Folder, error) {
	i := h.folderIndex(folderID)
	if i < 0 {
		return chat.Folder{}, fmt.Errorf("%w: %s", ErrUnknownFolder, folderID)
	}
	c, err := h.HandleDrop(payload, h.folders[i])
	if err != nil {
		return h.folders[i], err
	}
	fs := h.cloneFolders()
	fs[i] = chat.ApplyDrop(fs[i])
	if err := h.saveFolders(fs); err != nil {
		return h.folders[i], err
	}
	f := fs[i]
	logger.Info("drop on folder", "component", "home", "conversation", c.ID, "folder", f.ID, "chats", f.ChatsNumber)
	return f, nil
}

// DropOnRoot is a drop onto the conversation list: the conversation leaves
// whatever folder it was in. Folder counters are not decremented.
func (h *Home) DropOnRoot(payload []byte) (chat.Conversation, error) {
	c, err := chat.DecodeDragPayload(payload)
	if err != nil {
		return c, err
	}
	return h.HandleUpdateConversation(c, chat.ConversationUpdate{Key: chat.KeyFolderID, Value: nil})
}
