// Package tui is the Bubble Tea interface over lists, notes and tasks.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tableflip.dev/ordo/pkg/app"
	"tableflip.dev/ordo/pkg/cache"
	"tableflip.dev/ordo/pkg/glyph"
	"tableflip.dev/ordo/pkg/item"
)

type pane int

const (
	paneLists pane = iota
	paneItems
)

type mode int

const (
	modeNormal mode = iota
	modeInsert
	modeEdit
)

// Model is the root Bubble Tea model.
type Model struct {
	ctx  context.Context
	svc  *app.Service
	keys keyMap

	lists     *cache.Cache
	child     *cache.Cache
	childKind item.Kind

	focus      pane
	listCursor int
	itemCursor int

	mode    mode
	input   textinput.Model
	editing string

	status string
	err    error
	width  int
	height int

	// watch forwards cache events into the program.
	watch     bool
	listening map[<-chan cache.Event]bool
}

type listsMsg struct {
	lists *cache.Cache
	err   error
}

type childMsg struct {
	child *cache.Cache
	err   error
}

type eventMsg struct {
	ev     cache.Event
	ch     <-chan cache.Event
	closed bool
	scope  item.Scope
}

type doneMsg struct {
	status string
	err    error
	// reloadChild is set when the selected list may have changed.
	reloadChild bool
}

// New builds the model over svc.
func New(ctx context.Context, svc *app.Service) *Model {
	in := textinput.New()
	in.Prompt = "› "
	in.CharLimit = 512
	in.Cursor.SetMode(cursor.CursorStatic)
	return &Model{
		ctx:       ctx,
		svc:       svc,
		keys:      defaultKeys(),
		childKind: item.KindTask,
		input:     in,
		watch:     true,
		listening: make(map[<-chan cache.Event]bool),
	}
}

func (m *Model) Init() tea.Cmd {
	return m.loadLists
}

func (m *Model) loadLists() tea.Msg {
	c, err := m.svc.Lists(m.ctx)
	return listsMsg{lists: c, err: err}
}

func (m *Model) loadChild() tea.Cmd {
	list, ok := m.selectedList()
	if !ok {
		m.child = nil
		m.itemCursor = 0
		return nil
	}
	kind := m.childKind
	return func() tea.Msg {
		c, err := m.svc.Children(m.ctx, list.ID, kind)
		return childMsg{child: c, err: err}
	}
}

func (m *Model) listen(c *cache.Cache) tea.Cmd {
	if !m.watch || c == nil || m.listening[c.Events()] {
		return nil
	}
	m.listening[c.Events()] = true
	return waitForEvent(c.Scope(), c.Events())
}

func waitForEvent(scope item.Scope, ch <-chan cache.Event) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-ch
		return eventMsg{ev: ev, ch: ch, closed: !ok, scope: scope}
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case listsMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.lists = msg.lists
		m.clamp()
		return m, tea.Batch(m.listen(m.lists), m.loadChild())

	case childMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.child = msg.child
		m.clamp()
		return m, m.listen(m.child)

	case eventMsg:
		if msg.closed {
			delete(m.listening, msg.ch)
			return m, nil
		}
		m.clamp()
		var cmds []tea.Cmd
		if msg.ev.Action == cache.ActionRollback && msg.ev.Err != nil {
			m.err = msg.ev.Err
		}
		if msg.scope.Kind == item.KindList && msg.ev.Action != cache.ActionReorder {
			cmds = append(cmds, m.loadChild())
		}
		cmds = append(cmds, waitForEvent(msg.scope, msg.ch))
		return m, tea.Batch(cmds...)

	case doneMsg:
		m.status = msg.status
		m.err = msg.err
		m.clamp()
		if msg.reloadChild {
			return m, m.loadChild()
		}
		return m, nil

	case tea.KeyMsg:
		if m.mode != modeNormal {
			return m.updateInput(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

func (m *Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Down):
		return m, m.moveCursor(1)
	case key.Matches(msg, m.keys.Up):
		return m, m.moveCursor(-1)
	case key.Matches(msg, m.keys.MoveDown):
		return m, m.reorder(1)
	case key.Matches(msg, m.keys.MoveUp):
		return m, m.reorder(-1)
	case key.Matches(msg, m.keys.Switch):
		if m.childKind == item.KindTask {
			m.childKind = item.KindNote
		} else {
			m.childKind = item.KindTask
		}
		m.itemCursor = 0
		return m, m.loadChild()
	case key.Matches(msg, m.keys.Right):
		if m.lists != nil && m.lists.Len() > 0 {
			m.focus = paneItems
		}
		return m, nil
	case key.Matches(msg, m.keys.Left):
		m.focus = paneLists
		return m, nil
	case key.Matches(msg, m.keys.Add):
		if m.focus == paneItems && m.child == nil {
			return m, nil
		}
		m.mode = modeInsert
		m.input.SetValue("")
		m.input.Placeholder = "new " + string(m.focusedKind())
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		m.mode = modeEdit
		m.editing = it.ID
		m.input.SetValue(it.Text())
		m.input.CursorEnd()
		return m, m.input.Focus()
	case key.Matches(msg, m.keys.Toggle):
		it, ok := m.selected()
		if !ok || m.focus != paneItems || it.Kind != item.KindTask {
			return m, nil
		}
		c := m.child
		return m, m.run(func() (string, error) {
			_, err := c.SetCompleted(m.ctx, it.ID, !it.Payload.Completed)
			return "updated " + it.Text(), err
		}, false)
	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.focus == paneLists {
			return m, m.run(func() (string, error) {
				return "deleted " + it.Text(), m.svc.DeleteList(m.ctx, it.ID)
			}, true)
		}
		c := m.child
		return m, m.run(func() (string, error) {
			return "deleted " + it.Text(), c.Delete(m.ctx, it.ID)
		}, false)
	case key.Matches(msg, m.keys.Refresh):
		return m, m.run(func() (string, error) {
			return "refreshed", m.svc.Refresh(m.ctx)
		}, true)
	}
	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.mode = modeNormal
		m.input.Blur()
		return m, nil
	case key.Matches(msg, m.keys.Submit):
		text := m.input.Value()
		c := m.focusedCache()
		submitted, id := m.mode, m.editing
		m.mode = modeNormal
		m.editing = ""
		m.input.Blur()
		if c == nil {
			return m, nil
		}
		if submitted == modeInsert {
			reload := c == m.lists
			return m, m.run(func() (string, error) {
				created, err := c.Insert(m.ctx, text)
				return "added " + created.Text(), err
			}, reload)
		}
		return m, m.run(func() (string, error) {
			updated, err := c.UpdateContent(m.ctx, id, text)
			return "updated " + updated.Text(), err
		}, false)
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run performs a store operation off the UI goroutine.
func (m *Model) run(op func() (string, error), reloadChild bool) tea.Cmd {
	return func() tea.Msg {
		status, err := op()
		if err != nil {
			status = ""
		}
		return doneMsg{status: status, err: err, reloadChild: reloadChild}
	}
}

func (m *Model) moveCursor(delta int) tea.Cmd {
	if m.focus == paneLists {
		prev := m.listCursor
		m.listCursor += delta
		m.clamp()
		if m.listCursor != prev {
			m.itemCursor = 0
			return m.loadChild()
		}
		return nil
	}
	m.itemCursor += delta
	m.clamp()
	return nil
}

// reorder drags the selected row by delta. The cursor follows the row.
func (m *Model) reorder(delta int) tea.Cmd {
	c := m.focusedCache()
	if c == nil {
		return nil
	}
	it, ok := m.selected()
	if !ok {
		return nil
	}
	dst := m.cursor() + delta
	if dst < 0 || dst >= c.Len() {
		return nil
	}
	m.setCursor(dst)
	return m.run(func() (string, error) {
		return "", c.MoveTo(m.ctx, it.ID, dst)
	}, false)
}

func (m *Model) focusedCache() *cache.Cache {
	if m.focus == paneLists {
		return m.lists
	}
	return m.child
}

func (m *Model) focusedKind() item.Kind {
	if m.focus == paneLists {
		return item.KindList
	}
	return m.childKind
}

func (m *Model) cursor() int {
	if m.focus == paneLists {
		return m.listCursor
	}
	return m.itemCursor
}

func (m *Model) setCursor(i int) {
	if m.focus == paneLists {
		m.listCursor = i
	} else {
		m.itemCursor = i
	}
}

func (m *Model) selectedList() (item.Item, bool) {
	if m.lists == nil {
		return item.Item{}, false
	}
	items := m.lists.Snapshot()
	if m.listCursor < 0 || m.listCursor >= len(items) {
		return item.Item{}, false
	}
	return items[m.listCursor], true
}

func (m *Model) selected() (item.Item, bool) {
	if m.focus == paneLists {
		return m.selectedList()
	}
	if m.child == nil {
		return item.Item{}, false
	}
	items := m.child.Snapshot()
	if m.itemCursor < 0 || m.itemCursor >= len(items) {
		return item.Item{}, false
	}
	return items[m.itemCursor], true
}

func (m *Model) clamp() {
	clampTo := func(i, n int) int {
		if i >= n {
			i = n - 1
		}
		if i < 0 {
			i = 0
		}
		return i
	}
	if m.lists != nil {
		m.listCursor = clampTo(m.listCursor, m.lists.Len())
	}
	if m.child != nil {
		m.itemCursor = clampTo(m.itemCursor, m.child.Len())
	}
}

func (m *Model) View() string {
	if m.lists == nil {
		if m.err != nil {
			return errorStyle.Render(m.err.Error()) + "\n"
		}
		return faintStyle.Render("loading…") + "\n"
	}

	width := m.width
	if width <= 0 {
		width = 80
	}
	left := width / 3
	right := width - left - 4

	listPane := m.renderPane("Lists", m.lists.Snapshot(), m.listCursor, m.focus == paneLists, left)
	title := plural(m.childKind)
	var children []item.Item
	if list, ok := m.selectedList(); ok {
		title = fmt.Sprintf("%s · %s", list.Text(), title)
		if m.child != nil {
			children = m.child.Snapshot()
		}
	}
	itemPane := m.renderPane(title, children, m.itemCursor, m.focus == paneItems, right)

	var b strings.Builder
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, listPane, itemPane))
	b.WriteString("\n")
	switch {
	case m.mode != modeNormal:
		b.WriteString(m.input.View())
	case m.err != nil:
		b.WriteString(errorStyle.Render(humanError(m.err)))
	case m.status != "":
		b.WriteString(faintStyle.Render(m.status))
	default:
		b.WriteString(faintStyle.Render(m.helpLine()))
	}
	b.WriteString("\n")
	return b.String()
}

func (m *Model) renderPane(title string, items []item.Item, cursor int, focused bool, width int) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	if len(items) == 0 {
		b.WriteString(faintStyle.Render("none"))
	}
	for i, it := range items {
		line := fmt.Sprintf("%s %s", glyph.For(it), it.Text())
		switch {
		case focused && i == cursor:
			line = selectedStyle.Render(line)
		case it.Payload.Completed:
			line = doneStyle.Render(line)
		}
		b.WriteString(line)
		if i < len(items)-1 {
			b.WriteString("\n")
		}
	}
	style := paneStyle
	if focused {
		style = focusedPaneStyle
	}
	if width > 4 {
		style = style.Width(width)
	}
	return style.Render(b.String())
}

func (m *Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, b := range m.keys.help() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " · ")
}

func humanError(err error) string {
	switch {
	case errors.Is(err, item.ErrValidation):
		return err.Error()
	case errors.Is(err, item.ErrTransient):
		return "store unavailable, reloaded: " + err.Error()
	default:
		return err.Error()
	}
}

func plural(k item.Kind) string {
	s := string(k) + "s"
	return strings.ToUpper(s[:1]) + s[1:]
}
