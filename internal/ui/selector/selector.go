// Package selector is a Bubble Tea field that picks one record from a remote,
// searchable list. It owns its dropdown state, debounces typing and
// keeps the current selection labelled even when the record is not on the
// first page the backend returns
package selector

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"erpick/internal/picker"
	"erpick/internal/ui/views"
)

// DefaultVisibleRows is the dropdown height when none is configured
const DefaultVisibleRows = 8

// Field is what a form needs from a selector, whatever its option type
type Field interface {
	Name() string
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	HandleKey(msg tea.KeyMsg) (tea.Cmd, bool)
	View() string
	Focus()
	Blur() tea.Cmd
	Focused() bool
	IsOpen() bool
	Value() picker.Value
	SetValue(v picker.Value) tea.Cmd
	Label() string
	SetDisabled(disabled bool) tea.Cmd
	Disabled() bool
	KeyMap() KeyMap
	Close()
}

// ChangedMsg is sent once each time the user picks a row
type ChangedMsg struct {
	Field string
	Value picker.Value
	Label string
}

// FetchFailedMsg reports a failed option fetch. The list is already empty
// when it arrives
type FetchFailedMsg struct {
	Field string
	Err   error
}

type debounceMsg struct {
	field string
	gen   uint64
}

type resultMsg[T picker.Keyed] struct {
	field string
	res   picker.Result[T]
}

type focusInputMsg struct {
	field string
}

// Config describes one selector
type Config[T picker.Keyed] struct {
	Name        string // routes messages; unique per form
	Title       string
	Placeholder string // label of the "no selection" row; empty hides the row
	Search      picker.SearchFunc[T]
	Lookup      picker.LookupFunc[T]
	Label       picker.LabelFunc[T]
	Value       picker.Value
	Debounce    time.Duration
	FocusDelay  time.Duration // zero focuses the search input immediately
	VisibleRows int
	Styles      *views.Styles
	Logger      *zap.Logger
	Context     context.Context
}

type row[T picker.Keyed] struct {
	none bool
	item T
}

// Model is a selector over options of type T
type Model[T picker.Keyed] struct {
	name        string
	title       string
	placeholder string
	label       picker.LabelFunc[T]
	ctrl        *picker.Controller[T]
	ctx         context.Context
	focusDelay  time.Duration
	visibleRows int
	styles      *views.Styles
	keys        KeyMap

	input    textinput.Model
	value    picker.Value
	started  bool
	focused  bool
	disabled bool
	cursor   int
	offset   int
}

// New creates a selector. It panics when cfg.Search is nil
func New[T picker.Keyed](cfg Config[T]) *Model[T] {
	ctrl := picker.New(cfg.Search, cfg.Lookup, picker.Options{
		Name:   cfg.Name,
		Delay:  cfg.Debounce,
		Logger: cfg.Logger,
	})

	label := cfg.Label
	if label == nil {
		label = func(v T) string { return v.Key() }
	}
	rows := cfg.VisibleRows
	if rows <= 0 {
		rows = DefaultVisibleRows
	}
	styles := cfg.Styles
	if styles == nil {
		styles = views.NewStyles()
	}
	ctx := cfg.Context
	if ctx == nil {
		ctx = context.Background()
	}
	focusDelay := cfg.FocusDelay
	if focusDelay < 0 {
		focusDelay = 0
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "type to search"
	ti.CharLimit = 128
	ti.Cursor.SetMode(cursor.CursorStatic)

	return &Model[T]{
		name:        cfg.Name,
		title:       cfg.Title,
		placeholder: cfg.Placeholder,
		label:       label,
		ctrl:        ctrl,
		ctx:         ctx,
		focusDelay:  focusDelay,
		visibleRows: rows,
		styles:      styles,
		keys:        DefaultKeyMap(),
		input:       ti,
		value:       cfg.Value,
	}
}

// Name identifies the field in messages
func (m *Model[T]) Name() string { return m.name }

// Init mounts the selector: it loads the default page and resolves the
// initial value
func (m *Model[T]) Init() tea.Cmd {
	if m.started {
		return nil
	}
	m.started = true
	return m.fetch(m.ctrl.Start(m.ctx, m.value))
}

// Update handles the selector's own messages. Messages addressed to other
// fields are ignored
func (m *Model[T]) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case debounceMsg:
		if msg.field != m.name {
			return nil
		}
		if req, ok := m.ctrl.Fire(msg.gen); ok {
			return m.fetch(req)
		}
		return nil

	case resultMsg[T]:
		if msg.field != m.name || !m.ctrl.Apply(msg.res) {
			return nil
		}
		m.resetCursor()
		if msg.res.Err != nil {
			field, err := m.name, msg.res.Err
			return func() tea.Msg { return FetchFailedMsg{Field: field, Err: err} }
		}
		return nil

	case focusInputMsg:
		if msg.field == m.name && m.IsOpen() {
			return m.input.Focus()
		}
		return nil

	case tea.KeyMsg:
		cmd, _ := m.HandleKey(msg)
		return cmd
	}

	if m.IsOpen() {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return cmd
	}
	return nil
}

// HandleKey processes a key and reports whether it was consumed. While the
// list is open every key except ctrl+c is consumed
func (m *Model[T]) HandleKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if m.disabled || m.ctrl.Phase() == picker.PhaseUnmounted {
		return nil, false
	}
	if !m.IsOpen() {
		if m.focused && key.Matches(msg, m.keys.Open) {
			return m.open(), true
		}
		return nil, false
	}

	switch {
	case msg.Type == tea.KeyCtrlC:
		return nil, false
	case key.Matches(msg, m.keys.Close):
		return m.close(), true
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.visibleRows)
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.visibleRows)
	case key.Matches(msg, m.keys.Home):
		m.move(-len(m.rows()))
	case key.Matches(msg, m.keys.End):
		m.move(len(m.rows()))
	case key.Matches(msg, m.keys.Select):
		return m.choose(), true
	default:
		return m.typeKey(msg), true
	}
	return nil, true
}

func (m *Model[T]) open() tea.Cmd {
	var cmds []tea.Cmd
	if !m.started {
		cmds = append(cmds, m.Init())
	}
	m.ctrl.SetOpen(true)
	m.resetCursor()

	field := m.name
	if m.focusDelay == 0 {
		cmds = append(cmds, func() tea.Msg { return focusInputMsg{field: field} })
	} else {
		cmds = append(cmds, tea.Tick(m.focusDelay, func(time.Time) tea.Msg {
			return focusInputMsg{field: field}
		}))
	}
	return tea.Batch(cmds...)
}

// close hides the list and clears the search. A filtered list is replaced
// by the default page again
func (m *Model[T]) close() tea.Cmd {
	m.ctrl.SetOpen(false)
	m.input.Blur()
	m.input.Reset()
	m.cursor, m.offset = 0, 0
	if req, ok := m.ctrl.Reset(); ok {
		return m.fetch(req)
	}
	return nil
}

func (m *Model[T]) choose() tea.Cmd {
	rows := m.rows()
	if m.cursor < 0 || m.cursor >= len(rows) {
		return nil
	}
	r := rows[m.cursor]

	v := picker.None()
	label := m.placeholder
	if !r.none {
		v = picker.Selected(r.item.Key())
		label = m.label(r.item)
	}
	m.value = v

	refetch := m.close()
	// The chosen row is on the current page, so this only records it as the
	// preloaded option and never needs a fetch of its own
	if req, ok := m.ctrl.Preload(v); ok {
		refetch = m.fetch(req)
	}

	changed := ChangedMsg{Field: m.name, Value: v, Label: label}
	return tea.Batch(func() tea.Msg { return changed }, refetch)
}

func (m *Model[T]) typeKey(msg tea.KeyMsg) tea.Cmd {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	query := m.input.Value()
	if query == before {
		return cmd
	}

	ticket := m.ctrl.SetQuery(query)
	m.cursor, m.offset = 0, 0
	field, gen := m.name, ticket.Gen
	return tea.Batch(cmd, tea.Tick(m.ctrl.Delay(), func(time.Time) tea.Msg {
		return debounceMsg{field: field, gen: gen}
	}))
}

// fetch runs req off the update loop. Execute only reads the immutable
// fetch functions, so the controller is safe to share with the command
func (m *Model[T]) fetch(req picker.Request) tea.Cmd {
	ctrl, field := m.ctrl, m.name
	return func() tea.Msg {
		return resultMsg[T]{field: field, res: ctrl.Execute(req)}
	}
}

func (m *Model[T]) rows() []row[T] {
	opts := m.ctrl.Options()
	out := make([]row[T], 0, len(opts)+1)
	if m.placeholder != "" && len(opts) > 0 && m.ctrl.ShownQuery() == "" {
		out = append(out, row[T]{none: true})
	}
	for _, o := range opts {
		out = append(out, row[T]{item: o})
	}
	return out
}

// resetCursor puts the cursor on the current value in unfiltered lists and
// on the first row otherwise
func (m *Model[T]) resetCursor() {
	m.cursor, m.offset = 0, 0
	if m.ctrl.ShownQuery() != "" {
		return
	}
	for i, r := range m.rows() {
		if (r.none && !m.value.IsSet()) || (!r.none && m.value.IsSet() && r.item.Key() == m.value.ID()) {
			m.cursor = i
			break
		}
	}
	m.scroll()
}

func (m *Model[T]) move(delta int) {
	n := len(m.rows())
	if n == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= n {
		m.cursor = n - 1
	}
	m.scroll()
}

func (m *Model[T]) scroll() {
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+m.visibleRows {
		m.offset = m.cursor - m.visibleRows + 1
	}
}

// View renders the field line and, when open, the dropdown below it
func (m *Model[T]) View() string {
	s := m.styles
	title := s.Label.Render(m.title)
	if m.focused {
		title = s.FocusedLabel.Render(m.title)
	}

	var value string
	if m.value.IsSet() {
		value = s.Value.Render(m.Label())
	} else {
		value = s.Placeholder.Render(m.Label())
	}
	arrow := " ▾"
	if m.IsOpen() {
		arrow = " ▴"
	}

	line := title + value + s.Dim.Render(arrow)
	if m.disabled {
		return s.Dim.Render(views.StripANSI(line))
	}
	if !m.IsOpen() {
		return line
	}
	return line + "\n" + s.Dropdown.Render(m.renderList())
}

func (m *Model[T]) renderList() string {
	s := m.styles
	var b strings.Builder
	b.WriteString(s.Input.Render(m.input.View()))
	b.WriteString("\n")

	st := m.ctrl.State()
	rows := m.rows()
	query := m.ctrl.ShownQuery()
	switch {
	case !st.Initialized || st.Loading:
		b.WriteString(s.StatusLoading.Render("Loading..."))
		return b.String()
	case len(rows) == 0 && query != "":
		b.WriteString(s.Dim.Render(`No results for "` + query + `"`))
		return b.String()
	case len(rows) == 0:
		b.WriteString(s.Dim.Render("No data"))
		return b.String()
	}

	end := m.offset + m.visibleRows
	if end > len(rows) {
		end = len(rows)
	}
	lines := make([]string, 0, end-m.offset+2)
	if m.offset > 0 {
		lines = append(lines, s.Scroll.Render("↑ more"))
	}
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(rows[i], i == m.cursor))
	}
	if end < len(rows) {
		lines = append(lines, s.Scroll.Render("↓ more"))
	}
	if total := m.ctrl.Total(); total > len(m.ctrl.Options()) {
		lines = append(lines, s.Dim.Render(fmt.Sprintf("%d of %d, type to narrow", len(m.ctrl.Options()), total)))
	}
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func (m *Model[T]) renderRow(r row[T], cursor bool) string {
	mark := "  "
	text := m.placeholder
	if r.none {
		if !m.value.IsSet() {
			mark = "✓ "
		}
	} else {
		text = m.label(r.item)
		if m.value.IsSet() && r.item.Key() == m.value.ID() {
			mark = "✓ "
		}
	}
	if cursor {
		return m.styles.CursorRow.Render(mark + text)
	}
	if r.none {
		return m.styles.Placeholder.Render(mark + text)
	}
	return m.styles.Row.Render(mark + text)
}

// Focus marks the field as the form's active field
func (m *Model[T]) Focus() { m.focused = true }

// Blur leaves the field, closing the list if it is open
func (m *Model[T]) Blur() tea.Cmd {
	m.focused = false
	if m.IsOpen() {
		return m.close()
	}
	return nil
}

// Focused reports whether the field is active
func (m *Model[T]) Focused() bool { return m.focused }

// IsOpen reports whether the dropdown is showing
func (m *Model[T]) IsOpen() bool { return m.ctrl.State().Open }

// Value returns the current selection
func (m *Model[T]) Value() picker.Value { return m.value }

// SetValue changes the selection from outside. The option for a new id is
// fetched if it is not already loaded
func (m *Model[T]) SetValue(v picker.Value) tea.Cmd {
	m.value = v
	if !m.started {
		return nil
	}
	if req, ok := m.ctrl.Preload(v); ok {
		return m.fetch(req)
	}
	return nil
}

// Label is the display text of the current selection. Until the selected
// option is resolved the raw id is shown
func (m *Model[T]) Label() string {
	if !m.value.IsSet() {
		if m.placeholder != "" {
			return m.placeholder
		}
		return "-"
	}
	if item, ok := m.ctrl.Find(m.value.ID()); ok {
		return m.label(item)
	}
	return m.value.ID()
}

// Selected returns the selected option when it is known
func (m *Model[T]) Selected() (T, bool) {
	if !m.value.IsSet() {
		var zero T
		return zero, false
	}
	return m.ctrl.Find(m.value.ID())
}

// SetDisabled enables or disables the field. Disabling closes the list
func (m *Model[T]) SetDisabled(disabled bool) tea.Cmd {
	m.disabled = disabled
	if disabled && m.IsOpen() {
		return m.close()
	}
	return nil
}

// Disabled reports whether the field refuses input
func (m *Model[T]) Disabled() bool { return m.disabled }

// KeyMap returns the field's bindings
func (m *Model[T]) KeyMap() KeyMap { return m.keys }

// Close unmounts the field. Fetches still in flight are cancelled and their
// results dropped
func (m *Model[T]) Close() {
	m.ctrl.Close()
	m.input.Blur()
}

// State exposes the controller state for rendering decisions and tests
func (m *Model[T]) State() picker.State { return m.ctrl.State() }

// Phase exposes the lifecycle stage
func (m *Model[T]) Phase() picker.Phase { return m.ctrl.Phase() }

// Options returns the loaded options
func (m *Model[T]) Options() []T { return m.ctrl.Options() }
