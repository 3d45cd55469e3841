package selector

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"erpick/internal/picker"
	"erpick/internal/ui/views"
)

type customer struct {
	ID   int
	Name string
}

func (c customer) Key() string { return strconv.Itoa(c.ID) }

func customerLabel(c customer) string { return c.Name }

type backend struct {
	mu       sync.Mutex
	items    []customer
	searches []string
	failNext error
}

func newBackend(n int) *backend {
	b := &backend{}
	for i := 1; i <= n; i++ {
		b.items = append(b.items, customer{ID: i, Name: "Customer " + strconv.Itoa(i)})
	}
	b.items = append(b.items, customer{ID: 42, Name: "ACME Trading"})
	return b
}

func (b *backend) search(_ context.Context, q string) (picker.Page[customer], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searches = append(b.searches, q)
	if b.failNext != nil {
		err := b.failNext
		b.failNext = nil
		return picker.Page[customer]{}, err
	}
	var out []customer
	for _, c := range b.items {
		if q == "" || strings.Contains(strings.ToLower(c.Name), strings.ToLower(q)) {
			out = append(out, c)
		}
	}
	total := len(out)
	if len(out) > 5 {
		out = out[:5]
	}
	return picker.Page[customer]{Data: out, Total: total}, nil
}

func (b *backend) lookup(_ context.Context, id string) (customer, error) {
	for _, c := range b.items {
		if c.Key() == id {
			return c, nil
		}
	}
	return customer{}, errors.New("not found")
}

func (b *backend) searchLog() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.searches...)
}

func newSelector(b *backend, opts ...func(*Config[customer])) *Model[customer] {
	cfg := Config[customer]{
		Name:        "customer",
		Title:       "Customer",
		Placeholder: "All customers",
		Search:      b.search,
		Label:       customerLabel,
		Debounce:    5 * time.Millisecond,
	}
	for _, o := range opts {
		o(&cfg)
	}
	return New(cfg)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "space":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// collect runs cmd and flattens batches into the resulting messages
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// settle feeds the messages produced by cmd back into m until nothing is
// left. Messages meant for the host are returned
func settle(t *testing.T, m *Model[customer], cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var out []tea.Msg
	queue := collect(cmd)
	for i := 0; len(queue) > 0; i++ {
		require.Less(t, i, 100, "message loop does not settle")
		msg := queue[0]
		queue = queue[1:]
		switch msg.(type) {
		case ChangedMsg, FetchFailedMsg:
			out = append(out, msg)
			continue
		}
		queue = append(queue, collect(m.Update(msg))...)
	}
	return out
}

func press(t *testing.T, m *Model[customer], k string) []tea.Msg {
	t.Helper()
	cmd, consumed := m.HandleKey(keyMsg(k))
	require.True(t, consumed, "key %q not consumed", k)
	return settle(t, m, cmd)
}

func openSelector(t *testing.T, m *Model[customer]) {
	t.Helper()
	m.Focus()
	press(t, m, "enter")
	require.True(t, m.IsOpen())
}

func typeQuery(t *testing.T, m *Model[customer], q string) {
	t.Helper()
	var cmds []tea.Cmd
	for _, r := range q {
		cmd, consumed := m.HandleKey(keyMsg(string(r)))
		require.True(t, consumed)
		cmds = append(cmds, cmd)
	}
	settle(t, m, tea.Batch(cmds...))
}

func plainView(m *Model[customer]) string {
	return views.StripANSI(m.View())
}

func TestEndToEndSearchAndSelect(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b)
	settle(t, m, m.Init())
	require.Len(t, m.Options(), 5)

	openSelector(t, m)
	typeQuery(t, m, "ACME")

	// Four keystrokes, one search
	assert.Equal(t, []string{"", "ACME"}, b.searchLog())
	require.Len(t, m.Options(), 1)
	assert.Contains(t, plainView(m), "ACME Trading")
	assert.NotContains(t, plainView(m), "Customer 1")

	out := press(t, m, "enter")
	require.Len(t, out, 1)
	changed, ok := out[0].(ChangedMsg)
	require.True(t, ok)
	assert.Equal(t, "customer", changed.Field)
	assert.Equal(t, picker.Selected("42"), changed.Value)
	assert.Equal(t, "ACME Trading", changed.Label)

	assert.False(t, m.IsOpen())
	assert.Equal(t, "ACME Trading", m.Label())

	// Closing a filtered list reloads the default page with the choice on top
	assert.Equal(t, []string{"", "ACME", ""}, b.searchLog())
	assert.Equal(t, "42", m.Options()[0].Key())
	assert.Len(t, m.Options(), 6)
}

func TestOpensOnlyWhenFocusedAndEnabled(t *testing.T) {
	m := newSelector(newBackend(3))
	settle(t, m, m.Init())

	_, consumed := m.HandleKey(keyMsg("enter"))
	assert.False(t, consumed, "unfocused field ignores keys")

	m.Focus()
	m.SetDisabled(true)
	_, consumed = m.HandleKey(keyMsg("enter"))
	assert.False(t, consumed)
	assert.False(t, m.IsOpen())

	m.SetDisabled(false)
	press(t, m, "space")
	assert.True(t, m.IsOpen())
}

func TestDisablingClosesTheList(t *testing.T) {
	m := newSelector(newBackend(3))
	settle(t, m, m.Init())
	openSelector(t, m)

	settle(t, m, m.SetDisabled(true))
	assert.False(t, m.IsOpen())
	assert.True(t, m.Disabled())
}

func TestOpenListConsumesNavigation(t *testing.T) {
	m := newSelector(newBackend(20))
	settle(t, m, m.Init())
	m.Focus()

	_, consumed := m.HandleKey(keyMsg("down"))
	assert.False(t, consumed, "closed list lets the form navigate")

	openSelector(t, m)
	for _, k := range []string{"down", "down", "up", "q"} {
		_, consumed = m.HandleKey(keyMsg(k))
		assert.True(t, consumed, k)
	}
	_, consumed = m.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.False(t, consumed, "ctrl+c still reaches the host")
}

func TestCursorMovesAndSelects(t *testing.T) {
	m := newSelector(newBackend(20))
	settle(t, m, m.Init())
	openSelector(t, m)

	// Row 0 is the placeholder, rows 1.. are options
	press(t, m, "down")
	press(t, m, "down")
	out := press(t, m, "enter")
	require.Len(t, out, 1)
	assert.Equal(t, picker.Selected("2"), out[0].(ChangedMsg).Value)
}

func TestPlaceholderRowSelectsNone(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) {
		c.Value = picker.Selected("3")
		c.Lookup = b.lookup
	})
	settle(t, m, m.Init())
	openSelector(t, m)

	// The cursor starts on the current value
	press(t, m, "up")
	press(t, m, "up")
	press(t, m, "up")
	out := press(t, m, "enter")
	require.Len(t, out, 1)
	changed := out[0].(ChangedMsg)
	assert.False(t, changed.Value.IsSet())
	assert.Equal(t, "all", changed.Value.Domain())
	assert.Equal(t, "All customers", m.Label())
}

func TestPlaceholderRowOnlyInUnfilteredList(t *testing.T) {
	m := newSelector(newBackend(20))
	settle(t, m, m.Init())
	openSelector(t, m)
	rows := m.rows()
	require.Len(t, rows, 6)
	assert.True(t, rows[0].none)

	typeQuery(t, m, "Customer 1")
	rows = m.rows()
	require.NotEmpty(t, rows)
	assert.False(t, rows[0].none)
}

func TestEscClosesAndRestoresDefaultPage(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b)
	settle(t, m, m.Init())
	openSelector(t, m)
	typeQuery(t, m, "Customer 2")

	press(t, m, "esc")
	assert.False(t, m.IsOpen())
	assert.Equal(t, "", m.State().Query)
	assert.Equal(t, []string{"", "Customer 2", ""}, b.searchLog())
	assert.Len(t, m.Options(), 5)
}

func TestEscWithoutFilterDoesNotRefetch(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b)
	settle(t, m, m.Init())
	openSelector(t, m)

	press(t, m, "esc")
	assert.Equal(t, []string{""}, b.searchLog())
}

func TestEmptyStates(t *testing.T) {
	t.Run("loading", func(t *testing.T) {
		m := newSelector(newBackend(3))
		initCmd := m.Init()
		m.Focus()
		cmd, _ := m.HandleKey(keyMsg("enter"))
		settle(t, m, cmd)
		assert.Contains(t, plainView(m), "Loading...")

		settle(t, m, initCmd)
		assert.NotContains(t, plainView(m), "Loading...")
	})

	t.Run("no results for query", func(t *testing.T) {
		m := newSelector(newBackend(3))
		settle(t, m, m.Init())
		openSelector(t, m)
		typeQuery(t, m, "zzz")
		assert.Contains(t, plainView(m), `No results for "zzz"`)
	})

	t.Run("no data", func(t *testing.T) {
		b := &backend{}
		m := newSelector(b)
		settle(t, m, m.Init())
		openSelector(t, m)
		view := plainView(m)
		assert.Contains(t, view, "No data")
		assert.NotContains(t, view, "No results")
	})
}

func TestPreloadedValueIsLabelled(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) {
		c.Value = picker.Selected("42")
		c.Lookup = b.lookup
	})
	assert.Equal(t, "42", m.Label(), "raw id until resolved")

	settle(t, m, m.Init())
	assert.Equal(t, "ACME Trading", m.Label())
	assert.Equal(t, "42", m.Options()[0].Key())

	item, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "ACME Trading", item.Name)
}

func TestSetValueResolvesNewID(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) { c.Lookup = b.lookup })
	settle(t, m, m.Init())

	settle(t, m, m.SetValue(picker.Selected("42")))
	assert.Equal(t, "ACME Trading", m.Label())

	assert.Nil(t, m.SetValue(picker.Selected("2")), "already loaded")
	assert.Equal(t, "Customer 2", m.Label())
}

func TestTypingBeforeInitResultKeepsValue(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) {
		c.Value = picker.Selected("42")
		c.Lookup = b.lookup
	})
	initCmd := m.Init()
	openSelector(t, m)
	typeQuery(t, m, "Cust")

	settle(t, m, initCmd)
	assert.Equal(t, "ACME Trading", m.Label())

	press(t, m, "esc")
	assert.Equal(t, "42", m.Options()[0].Key())
	item, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "ACME Trading", item.Name)
}

func TestClosingBeforeInitResultKeepsValue(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) {
		c.Value = picker.Selected("42")
		c.Lookup = b.lookup
	})
	initCmd := m.Init()
	openSelector(t, m)
	_, consumed := m.HandleKey(keyMsg("C"))
	require.True(t, consumed)
	press(t, m, "esc")

	settle(t, m, initCmd)
	assert.Equal(t, "ACME Trading", m.Label())
	assert.Equal(t, "42", m.Options()[0].Key())
}

func TestClearedValueLeavesDefaultPage(t *testing.T) {
	b := newBackend(20)
	m := newSelector(b, func(c *Config[customer]) {
		c.Value = picker.Selected("42")
		c.Lookup = b.lookup
	})
	settle(t, m, m.Init())
	require.Equal(t, "42", m.Options()[0].Key())

	assert.Nil(t, m.SetValue(picker.None()))
	openSelector(t, m)
	typeQuery(t, m, "Cust")
	press(t, m, "esc")

	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, optionKeys(m))
	assert.Equal(t, "All customers", m.Label())
}

func optionKeys(m *Model[customer]) []string {
	var out []string
	for _, o := range m.Options() {
		out = append(out, o.Key())
	}
	return out
}

func TestFetchFailureReported(t *testing.T) {
	b := newBackend(3)
	b.failNext = errors.New("503")
	m := newSelector(b)

	out := settle(t, m, m.Init())
	require.Len(t, out, 1)
	failed := out[0].(FetchFailedMsg)
	assert.Equal(t, "customer", failed.Field)
	assert.Empty(t, m.Options())
	assert.False(t, m.State().Loading)
}

func TestCloseDropsLateResults(t *testing.T) {
	b := newBackend(3)
	m := newSelector(b)
	initCmd := m.Init()
	m.Close()

	settle(t, m, initCmd)
	assert.Empty(t, m.Options())
	assert.Equal(t, picker.PhaseUnmounted, m.Phase())

	m.Focus()
	_, consumed := m.HandleKey(keyMsg("enter"))
	assert.False(t, consumed)
}

func TestIgnoresMessagesForOtherFields(t *testing.T) {
	m := newSelector(newBackend(3))
	settle(t, m, m.Init())

	assert.Nil(t, m.Update(debounceMsg{field: "warehouse", gen: 1}))
	assert.Nil(t, m.Update(focusInputMsg{field: "warehouse"}))
	assert.Nil(t, m.Update(resultMsg[customer]{field: "warehouse"}))
	assert.Len(t, m.Options(), 4)
}

func TestModelSatisfiesField(t *testing.T) {
	var f Field = newSelector(newBackend(1))
	assert.Equal(t, "customer", f.Name())
	assert.NotEmpty(t, f.KeyMap().ShortHelp())
}
