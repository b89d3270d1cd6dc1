package tui

import (
	"chatbar/internal/chat"
)

type rowKind int

const (
	rowFolder rowKind = iota
	rowFolderConversation
	rowRoot // drop target for "out of any folder", only while moving
	rowHeader
	rowConversation
	rowEmpty
)

type row struct {
	kind   rowKind
	folder chat.Folder
	conv   chat.Conversation
	label  string
}

func (r row) selectable() bool {
	switch r.kind {
	case rowFolder, rowFolderConversation, rowRoot, rowConversation:
		return true
	}
	return false
}

func (r row) key() string {
	switch r.kind {
	case rowFolder:
		return "f:" + r.folder.ID
	case rowFolderConversation, rowConversation:
		return "c:" + r.conv.ID
	case rowRoot:
		return "root"
	}
	return ""
}

const (
	emptyTitle = "No Chats Yet"
	emptyHint  = "Click the button above to start a new chat"
	noResults  = "No results"
)

// buildRows lays out the sidebar: chat folders (with their conversations
// when open), the drop-to-root target while moving, then the recency
// buckets of folderless conversations.
func (m Model) buildRows() []row {
	all := m.home.Conversations()
	filtered := chat.Filter(all, m.home.SearchTerm, m.cfg.FuzzySearch)

	var rows []row
	for _, f := range m.home.Folders(chat.FolderChat) {
		rows = append(rows, row{kind: rowFolder, folder: f})
		if !m.open[f.ID] {
			continue
		}
		for _, c := range chat.InFolder(filtered, f.ID) {
			rows = append(rows, row{kind: rowFolderConversation, folder: f, conv: c})
		}
	}
	if m.carrying != nil {
		rows = append(rows, row{kind: rowRoot})
	}
	for _, g := range chat.Bucket(filtered, m.home.Now()) {
		rows = append(rows, row{kind: rowHeader, label: g.Label})
		for _, c := range g.Conversations {
			rows = append(rows, row{kind: rowConversation, conv: c})
		}
	}
	switch {
	case len(all) == 0:
		rows = append(rows, row{kind: rowEmpty, label: emptyTitle})
	case len(filtered) == 0:
		rows = append(rows, row{kind: rowEmpty, label: noResults})
	}
	return rows
}

// rebuild recomputes rows and keeps the cursor on the same item when it
// still exists.
func (m *Model) rebuild() {
	prev := ""
	if m.cursor >= 0 && m.cursor < len(m.rows) {
		prev = m.rows[m.cursor].key()
	}
	m.rows = m.buildRows()
	if prev != "" {
		for i, r := range m.rows {
			if r.key() == prev {
				m.cursor = i
				return
			}
		}
	}
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	for i := m.cursor; i < len(m.rows); i++ {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
	for i := m.cursor; i >= 0 && i < len(m.rows); i-- {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
}

func (m *Model) moveCursor(delta int) {
	for i := m.cursor + delta; i >= 0 && i < len(m.rows); i += delta {
		if m.rows[i].selectable() {
			m.cursor = i
			return
		}
	}
}

// focus puts the cursor on the row with the given key, if present.
func (m *Model) focus(k string) {
	for i, r := range m.rows {
		if r.key() == k {
			m.cursor = i
			return
		}
	}
}

func (m Model) current() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	r := m.rows[m.cursor]
	return r, r.selectable()
}
