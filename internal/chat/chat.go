package chat

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is one chat thread. FolderID is a weak reference: the folder
// may have been deleted without the conversation being rewritten.
type Conversation struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Messages     []Message `json:"messages"`
	LastUsedDate time.Time `json:"lastUsedDate"`
	FolderID     string    `json:"folderId,omitempty"`
	Favorite     bool      `json:"favorite,omitempty"`
}

// Preview returns the first message's content, or "" for an empty thread.
func (c Conversation) Preview() string {
	if len(c.Messages) == 0 {
		return ""
	}
	return c.Messages[0].Content
}

type FolderType string

const (
	FolderChat   FolderType = "chat"
	FolderPrompt FolderType = "prompt"
)

type Folder struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Type        FolderType `json:"type"`
	ChatsNumber int        `json:"chatsNumber,omitempty"` // 0 means never dropped on
	Color       Color      `json:"color,omitempty"`
}

// Color is a folder tag from the fixed palette. The zero value means cleared.
type Color string

const (
	ColorNone   Color = ""
	ColorRed    Color = "red"
	ColorPurple Color = "purple"
	ColorBlue   Color = "blue"
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
)

// Palette lists the selectable colors in picker order, reset last.
var Palette = []Color{ColorRed, ColorPurple, ColorBlue, ColorGreen, ColorYellow, ColorNone}

var ErrInvalidColor = errors.New("invalid folder color")

// ParseColor accepts a palette name; "", "none" and "reset" clear the color.
func ParseColor(s string) (Color, error) {
	switch c := Color(strings.ToLower(strings.TrimSpace(s))); c {
	case "none", "reset", ColorNone:
		return ColorNone, nil
	case ColorRed, ColorPurple, ColorBlue, ColorGreen, ColorYellow:
		return c, nil
	}
	return ColorNone, fmt.Errorf("%w: %q", ErrInvalidColor, s)
}

func (c Color) String() string {
	if c == ColorNone {
		return "none"
	}
	return string(c)
}

// UpdateKey names the conversation field a ConversationUpdate targets.
type UpdateKey string

const (
	KeyName     UpdateKey = "name"
	KeyFavorite UpdateKey = "favorite"
	KeyFolderID UpdateKey = "folderId"
)

type ConversationUpdate struct {
	Key   UpdateKey
	Value any
}

var ErrInvalidUpdate = errors.New("invalid conversation update")

// Apply returns c with the update applied.
func (u ConversationUpdate) Apply(c Conversation) (Conversation, error) {
	switch u.Key {
	case KeyName:
		s, ok := u.Value.(string)
		if !ok {
			return c, fmt.Errorf("%w: name must be a string", ErrInvalidUpdate)
		}
		c.Name = s
	case KeyFavorite:
		b, ok := u.Value.(bool)
		if !ok {
			return c, fmt.Errorf("%w: favorite must be a bool", ErrInvalidUpdate)
		}
		c.Favorite = b
	case KeyFolderID:
		switch v := u.Value.(type) {
		case string:
			c.FolderID = v
		case nil:
			c.FolderID = ""
		default:
			return c, fmt.Errorf("%w: folderId must be a string", ErrInvalidUpdate)
		}
	default:
		return c, fmt.Errorf("%w: unknown key %q", ErrInvalidUpdate, u.Key)
	}
	return c, nil
}

const DefaultConversationName = "New Conversation"

func NewConversation(name string, now time.Time) Conversation {
	if strings.TrimSpace(name) == "" {
		name = DefaultConversationName
	}
	return Conversation{
		ID:           uuid.New().String(),
		Name:         name,
		Messages:     []Message{},
		LastUsedDate: now,
	}
}

func NewFolder(name string, typ FolderType) Folder {
	if typ == "" {
		typ = FolderChat
	}
	return Folder{ID: uuid.New().String(), Name: name, Type: typ}
}

// EncodeDragPayload serializes the conversation carried by a drag.
func EncodeDragPayload(c Conversation) ([]byte, error) {
	return json.Marshal(c)
}

var ErrEmptyPayload = errors.New("empty drag payload")

func DecodeDragPayload(data []byte) (Conversation, error) {
	var c Conversation
	if len(data) == 0 {
		return c, ErrEmptyPayload
	}
	if err := json.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("decode drag payload: %w", err)
	}
	if c.ID == "" {
		return c, fmt.Errorf("decode drag payload: missing conversation id")
	}
	return c, nil
}
