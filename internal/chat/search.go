package chat

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

// searchText is the text a search term is matched against.
func searchText(c Conversation) string {
	var b strings.Builder
	b.WriteString(c.Name)
	for _, m := range c.Messages {
		b.WriteByte(' ')
		b.WriteString(m.Content)
	}
	return b.String()
}

type conversationSource []Conversation

func (s conversationSource) String(i int) string { return searchText(s[i]) }
func (s conversationSource) Len() int            { return len(s) }

// Filter returns the conversations matching term. With fuzzy off, a
// conversation matches when its name or any message contains term
// (case-insensitive) and input order is kept. With fuzzy on, matches come
// back best first.
func Filter(conversations []Conversation, term string, fuzzyMatch bool) []Conversation {
	term = strings.TrimSpace(term)
	if term == "" {
		return conversations
	}
	if fuzzyMatch {
		matches := fuzzy.FindFrom(term, conversationSource(conversations))
		out := make([]Conversation, 0, len(matches))
		for _, m := range matches {
			out = append(out, conversations[m.Index])
		}
		return out
	}
	q := strings.ToLower(term)
	out := make([]Conversation, 0, len(conversations))
	for _, c := range conversations {
		if strings.Contains(strings.ToLower(searchText(c)), q) {
			out = append(out, c)
		}
	}
	return out
}

// InFolder returns the conversations assigned to folderID, in list order.
func InFolder(conversations []Conversation, folderID string) []Conversation {
	var out []Conversation
	for _, c := range conversations {
		if c.FolderID != "" && c.FolderID == folderID {
			out = append(out, c)
		}
	}
	return out
}
