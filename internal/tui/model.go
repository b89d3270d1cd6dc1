package tui

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"chatbar/internal/chat"
	"chatbar/internal/config"
	"chatbar/internal/home"
	"chatbar/internal/hooks"
	"chatbar/internal/logger"
	"chatbar/internal/zipper"
)

type mode int

const (
	modeBrowse mode = iota
	modeSearch
	modeRenameConversation
	modeDeleteConversation
	modeRenameFolder
	modeDeleteFolder
	modePalette
)

const sidebarWidth = 38

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

type Model struct {
	cfg   config.Config
	home  *home.Home
	hooks *hooks.Env
	keys  keymap

	help   help.Model
	vp     viewport.Model
	spin   spinner.Model
	input  textinput.Model
	search textinput.Model
	md     *glamour.TermRenderer

	width, height int
	loading       bool
	showSidebar   bool
	mode          mode
	status        string

	rows   []row
	cursor int
	open   map[string]bool

	// target is the folder or conversation id the current mode acts on.
	target     string
	paletteIdx int

	// carrying holds the drag payload of a conversation being moved.
	carrying     []byte
	carryingName string

	detailID string
}

type hooksLoadedMsg struct {
	env *hooks.Env
	err error
}

type exportDoneMsg struct {
	path  string
	total int
	err   error
}

func New(h *home.Home, cfg config.Config) Model {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	in := textinput.New()
	in.CharLimit = 200
	in.Prompt = ""
	se := textinput.New()
	se.Placeholder = "Search..."
	se.CharLimit = 200
	se.Prompt = "/ "
	m := Model{
		cfg:         cfg,
		home:        h,
		keys:        newKeymap(),
		help:        help.New(),
		vp:          viewport.New(0, 0),
		spin:        sp,
		input:       in,
		search:      se,
		loading:     true,
		showSidebar: true,
		open:        map[string]bool{},
	}
	m.rebuild()
	if c, ok := h.Selected(); ok {
		m.focus("c:" + c.ID)
	}
	m.refreshDetail()
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(loadHooksCmd(m.cfg.HooksDir), m.spin.Tick)
}

func loadHooksCmd(dir string) tea.Cmd {
	return func() tea.Msg {
		env, err := hooks.LoadDir(dir)
		return hooksLoadedMsg{env: env, err: err}
	}
}

func exportCmd(conversations []chat.Conversation, folders []chat.Folder, zipPath string) tea.Cmd {
	return func() tea.Msg {
		err := zipper.Export(zipPath, conversations, folders)
		return exportDoneMsg{path: zipPath, total: len(conversations), err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		m.refreshDetail()
		return m, nil
	case hooksLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "hooks: " + msg.err.Error()
			logger.Warn("load hooks", "component", "hooks", "err", msg.err)
			return m, nil
		}
		m.hooks = msg.env
		if n := len(m.hooks.Loaded()); n > 0 {
			m.status = fmt.Sprintf("%d hook scripts loaded", n)
		}
		m.rebuild()
		m.refreshDetail()
		return m, nil
	case exportDoneMsg:
		if msg.err != nil {
			m.status = "export failed: " + msg.err.Error()
			return m, nil
		}
		if ap, err := filepath.Abs(msg.path); err == nil {
			msg.path = ap
		}
		m.status = fmt.Sprintf("exported %d conversations to %s", msg.total, msg.path)
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeRenameConversation, modeRenameFolder:
			return m.updateRename(msg)
		case modeDeleteConversation, modeDeleteFolder:
			return m.updateConfirm(msg)
		case modePalette:
			return m.updatePalette(msg)
		}
		if m.carrying != nil {
			return m.updateCarrying(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r, ok := m.current()
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.pageDown):
		m.vp.HalfViewDown()
	case key.Matches(msg, m.keys.pageUp):
		m.vp.HalfViewUp()
	case key.Matches(msg, m.keys.help):
		m.help.ShowAll = !m.help.ShowAll
	case key.Matches(msg, m.keys.sidebar):
		m.showSidebar = !m.showSidebar
		m.resize()
		m.refreshDetail()
	case key.Matches(msg, m.keys.cancel):
		if m.home.SearchTerm != "" {
			m.search.SetValue("")
			m.setSearch("")
		}
		m.status = ""
	case key.Matches(msg, m.keys.search):
		m.mode = modeSearch
		m.search.SetValue(m.home.SearchTerm)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.newChat):
		c, err := m.home.HandleNewConversation()
		if err != nil {
			m.status = "new chat failed: " + err.Error()
			break
		}
		m.rebuild()
		m.focus("c:" + c.ID)
		m.refreshDetail()
		m.status = "new chat"
	case key.Matches(msg, m.keys.newFolder):
		f, err := m.home.HandleCreateFolder("New folder", chat.FolderChat)
		if err != nil {
			m.status = "new folder failed: " + err.Error()
			break
		}
		m.rebuild()
		m.focus("f:" + f.ID)
		m.status = "folder created"
	case key.Matches(msg, m.keys.refresh):
		if err := m.home.Reload(); err != nil {
			m.status = "reload failed: " + err.Error()
			break
		}
		m.rebuild()
		m.refreshDetail()
		m.loading = true
		return m, tea.Batch(loadHooksCmd(m.cfg.HooksDir), m.spin.Tick)
	case key.Matches(msg, m.keys.export):
		dir := m.cfg.ExportDir
		if dir == "" {
			dir = "."
		}
		zipPath := filepath.Join(dir, "chatbar-"+time.Now().Format("20060102-150405")+".zip")
		m.status = "exporting..."
		return m, exportCmd(m.home.Conversations(), m.home.Folders(""), zipPath)
	case !ok:
		return m, nil
	case key.Matches(msg, m.keys.enter):
		m.activate(r)
	case key.Matches(msg, m.keys.rename):
		if !m.startRename(r) {
			return m, nil
		}
		cmd := m.input.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.del):
		m.startDelete(r)
	case key.Matches(msg, m.keys.favorite):
		if r.kind == rowConversation || r.kind == rowFolderConversation {
			m.update(r.conv, chat.ConversationUpdate{Key: chat.KeyFavorite, Value: !r.conv.Favorite})
		}
	case key.Matches(msg, m.keys.color):
		if r.kind == rowFolder {
			m.mode = modePalette
			m.target = r.folder.ID
			m.paletteIdx = paletteIndex(r.folder.Color)
		}
	case key.Matches(msg, m.keys.move):
		m.pickUp(r)
	case key.Matches(msg, m.keys.copy):
		if r.kind == rowConversation || r.kind == rowFolderConversation {
			md := chat.ConversationMarkdown(r.conv, m.folderName(r.conv.FolderID))
			if err := copyToClipboard(md); err != nil {
				m.status = "copy failed: " + err.Error()
			} else {
				m.status = "copied " + r.conv.Name
			}
		}
	}
	return m, nil
}

// activate is enter on a row: conversations get selected, folders toggle.
func (m *Model) activate(r row) {
	switch r.kind {
	case rowFolder:
		m.open[r.folder.ID] = !m.open[r.folder.ID]
		m.rebuild()
	case rowConversation, rowFolderConversation:
		if err := m.home.HandleSelectConversation(r.conv); err != nil {
			if errors.Is(err, home.ErrStreaming) {
				m.status = "wait for the reply to finish"
			} else {
				m.status = err.Error()
			}
			return
		}
		m.refreshDetail()
	}
}

func (m *Model) update(c chat.Conversation, u chat.ConversationUpdate) bool {
	if _, err := m.home.HandleUpdateConversation(c, u); err != nil {
		m.status = "update failed: " + err.Error()
		return false
	}
	m.rebuild()
	m.refreshDetail()
	return true
}

func (m *Model) startRename(r row) bool {
	switch r.kind {
	case rowFolder:
		m.mode = modeRenameFolder
		m.target = r.folder.ID
		m.input.SetValue(r.folder.Name)
	case rowConversation, rowFolderConversation:
		m.mode = modeRenameConversation
		m.target = r.conv.ID
		m.input.SetValue(r.conv.Name)
	default:
		return false
	}
	m.input.CursorEnd()
	return true
}

func (m *Model) startDelete(r row) {
	switch r.kind {
	case rowFolder:
		m.mode = modeDeleteFolder
		m.target = r.folder.ID
		m.status = fmt.Sprintf("Delete folder %q? y/N", r.folder.Name)
	case rowConversation, rowFolderConversation:
		m.mode = modeDeleteConversation
		m.target = r.conv.ID
		m.status = fmt.Sprintf("Delete %q? y/N", r.conv.Name)
	}
}

func (m *Model) endMode() {
	m.mode = modeBrowse
	m.target = ""
	m.input.Blur()
	m.input.SetValue("")
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.mode = modeBrowse
		m.search.Blur()
		return m, nil
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.search.Blur()
		m.search.SetValue("")
		m.setSearch("")
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if v := m.search.Value(); v != m.home.SearchTerm {
		m.setSearch(v)
	}
	return m, cmd
}

// setSearch applies a search term. Folders open while a term is set and
// all close again when it is cleared.
func (m *Model) setSearch(term string) {
	was := m.home.SearchTerm
	m.home.SearchTerm = term
	if term != "" || was != "" {
		for _, f := range m.home.Folders("") {
			m.open[f.ID] = term != ""
		}
	}
	m.rebuild()
}

func (m Model) updateRename(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.endMode()
		m.status = "rename canceled"
		return m, nil
	case tea.KeyEnter:
		v := m.input.Value()
		if m.mode == modeRenameFolder {
			if err := m.home.HandleUpdateFolder(m.target, v); err != nil {
				m.status = "rename failed: " + err.Error()
			} else {
				m.status = "folder renamed"
			}
		} else if strings.TrimSpace(v) != "" {
			if c, ok := m.home.Conversation(m.target); ok && m.update(c, chat.ConversationUpdate{Key: chat.KeyName, Value: v}) {
				m.status = "renamed"
			}
		}
		m.endMode()
		m.rebuild()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		if m.mode == modeDeleteFolder {
			if err := m.home.HandleDeleteFolder(m.target); err != nil {
				m.status = "delete failed: " + err.Error()
			} else {
				delete(m.open, m.target)
				m.status = "folder deleted"
			}
		} else if c, ok := m.home.Conversation(m.target); ok {
			if err := m.home.HandleDeleteConversation(c); err != nil {
				m.status = "delete failed: " + err.Error()
			} else {
				m.status = "deleted " + c.Name
			}
		}
		m.endMode()
		m.rebuild()
		m.refreshDetail()
	case "n", "N", "esc":
		m.endMode()
		m.status = "canceled"
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}

func paletteIndex(c chat.Color) int {
	for i, p := range chat.Palette {
		if p == c {
			return i
		}
	}
	return len(chat.Palette) - 1
}

func (m Model) updatePalette(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()
	switch s {
	case "esc", "c":
		m.endMode()
		return m, nil
	case "left", "h":
		m.paletteIdx = (m.paletteIdx + len(chat.Palette) - 1) % len(chat.Palette)
		return m, nil
	case "right", "l", "tab":
		m.paletteIdx = (m.paletteIdx + 1) % len(chat.Palette)
		return m, nil
	case "enter":
	case "1", "2", "3", "4", "5", "6":
		m.paletteIdx = int(s[0] - '1')
	case "ctrl+c":
		return m, tea.Quit
	default:
		return m, nil
	}
	color := chat.Palette[m.paletteIdx]
	if err := m.home.SetFolderColor(m.target, color); err != nil {
		m.status = "color failed: " + err.Error()
	} else {
		m.status = "folder color: " + color.String()
	}
	m.endMode()
	m.rebuild()
	return m, nil
}

func (m *Model) pickUp(r row) {
	if r.kind != rowConversation && r.kind != rowFolderConversation {
		return
	}
	payload, err := chat.EncodeDragPayload(r.conv)
	if err != nil {
		m.status = "move failed: " + err.Error()
		return
	}
	m.carrying = payload
	m.carryingName = r.conv.Name
	m.status = fmt.Sprintf("Moving %q: pick a folder and press enter, esc cancels", r.conv.Name)
	m.rebuild()
}

func (m Model) updateCarrying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.cancel):
		m.carrying = nil
		m.status = "move canceled"
		m.rebuild()
	case key.Matches(msg, m.keys.up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.enter), key.Matches(msg, m.keys.move):
		m.drop()
	}
	return m, nil
}

// drop releases the carried conversation on the row under the cursor.
func (m *Model) drop() {
	r, ok := m.current()
	if !ok {
		return
	}
	payload := m.carrying
	switch r.kind {
	case rowFolder, rowFolderConversation:
		m.open[r.folder.ID] = true
		f, err := m.home.DropOnFolder(payload, r.folder.ID)
		if err != nil {
			m.status = "move failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("moved %q to %s", m.carryingName, f.Name)
		}
	case rowRoot, rowConversation:
		if _, err := m.home.DropOnRoot(payload); err != nil {
			m.status = "move failed: " + err.Error()
		} else {
			m.status = fmt.Sprintf("moved %q out of its folder", m.carryingName)
		}
	}
	m.carrying = nil
	m.carryingName = ""
	m.rebuild()
	m.refreshDetail()
}

func (m *Model) sidebarWidth() int {
	if !m.showSidebar {
		return 0
	}
	w := sidebarWidth
	if m.width > 0 && m.width/2 < w {
		w = m.width / 2
	}
	return w
}

func (m *Model) resize() {
	dw := m.width - m.sidebarWidth() - 3
	if dw < 10 {
		dw = 10
	}
	dh := m.height - 3
	if dh < 1 {
		dh = 1
	}
	m.vp.Width, m.vp.Height = dw, dh
	m.help.Width = m.width
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(dw))
	if err != nil {
		logger.Warn("glamour renderer", "component", "tui", "err", err)
		m.md = nil
		return
	}
	m.md = r
}

func (m Model) View() string {
	body := m.detailView()
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebarView(), detailBorder.Render(body))
	}
	foot := m.help.View(m.keys)
	if m.status != "" {
		foot = statusStyle.Render(m.status) + "\n" + foot
	}
	return body + "\n" + foot
}

func (m Model) detailView() string {
	if m.detailID == "" {
		return headerStyle.Render("Select a conversation")
	}
	if m.vp.Height == 0 {
		return ""
	}
	return m.vp.View()
}

func (m Model) sidebarView() string {
	w := m.sidebarWidth()
	var lines []string
	title := m.cfg.Title
	if m.loading {
		title += " " + m.spin.View()
	}
	lines = append(lines, titleStyle.Render(fit(title, w)))
	switch {
	case m.mode == modeSearch:
		lines = append(lines, m.search.View())
	case m.home.SearchTerm != "":
		lines = append(lines, fit("/ "+m.home.SearchTerm, w))
	default:
		lines = append(lines, headerStyle.Render(fit("/ Search...", w)))
	}
	lines = append(lines, fit("[n] New chat  [N] New folder", w), "")

	cursorLine := 0
	for i, r := range m.rows {
		if i == m.cursor {
			cursorLine = len(lines)
		}
		lines = append(lines, m.renderRow(i, r, w)...)
	}

	if m.height > 0 {
		avail := m.height - 3
		if avail > 0 && len(lines) > avail {
			start := 0
			if cursorLine >= avail-1 {
				start = cursorLine - avail + 2
			}
			end := start + avail
			if end > len(lines) {
				end = len(lines)
			}
			lines = lines[start:end]
		}
	}
	return lipgloss.NewStyle().Width(w).Render(strings.Join(lines, "\n"))
}

func (m Model) renderRow(i int, r row, w int) []string {
	atCursor := i == m.cursor
	marker := "  "
	if atCursor {
		marker = cursorStyle.Render("› ")
	}
	wrap := func(s string) string {
		if atCursor && m.carrying != nil {
			return dropStyle.Render(s)
		}
		return s
	}
	switch r.kind {
	case rowHeader:
		return []string{"", headerStyle.Render(fit(r.label, w))}
	case rowEmpty:
		if r.label == emptyTitle {
			return []string{"", nameStyle.Render(fit(emptyTitle, w)), previewStyle.Width(w).Render(emptyHint)}
		}
		return []string{"", previewStyle.Render(fit(r.label, w))}
	case rowRoot:
		return []string{marker + wrap(fit("⤒ Move out of folder", w-2))}
	case rowFolder:
		return m.renderFolder(r.folder, atCursor, marker, wrap, w)
	}
	return m.renderConversation(r, atCursor, marker, wrap, w)
}

func (m Model) renderFolder(f chat.Folder, atCursor bool, marker string, wrap func(string) string, w int) []string {
	caret := "▸ "
	if m.open[f.ID] {
		caret = "▾ "
	}
	avail := w - 4
	var label string
	switch {
	case atCursor && m.mode == modeRenameFolder:
		label = m.input.View()
	case atCursor && m.mode == modeDeleteFolder:
		label = folderStyle(f.Color).Render(fit(f.Name, avail-10)) + " " + confirmStyle.Render("delete?")
	default:
		label = folderStyle(f.Color).Render(fit(f.Name, avail))
	}
	out := []string{marker + wrap(caret+label)}
	if atCursor && m.mode == modePalette {
		var b strings.Builder
		b.WriteString("    ")
		for j, c := range chat.Palette {
			b.WriteString(swatch(c, j == m.paletteIdx))
		}
		out = append(out, b.String())
	}
	return out
}

func (m Model) renderConversation(r row, atCursor bool, marker string, wrap func(string) string, w int) []string {
	c := r.conv
	indent := ""
	if r.kind == rowFolderConversation {
		indent = "  "
	}
	glyph := "💬 "
	if c.Favorite {
		glyph = "★ "
	}
	name := c.Name
	if t, ok := m.hooks.RowTitle(c); ok {
		name = t
	}
	avail := w - 2 - len(indent) - 3
	var title string
	switch {
	case atCursor && m.mode == modeRenameConversation:
		title = m.input.View()
	case atCursor && m.mode == modeDeleteConversation:
		title = nameStyle.Render(fit(name, avail-8)) + " " + confirmStyle.Render("delete?")
	default:
		st := nameStyle
		if sel, ok := m.home.Selected(); ok && sel.ID == c.ID {
			st = selectedStyle
		}
		title = st.Render(fit(name, avail))
	}
	out := []string{marker + indent + wrap(glyph+title)}
	if p := chat.OneLine(c.Preview()); p != "" {
		out = append(out, "  "+indent+"   "+previewStyle.Render(fit(p, avail)))
	}
	return out
}
