package ui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"erpick/internal/attachment"
	"erpick/internal/config"
	"erpick/internal/domain"
	"erpick/internal/eventbus"
	"erpick/internal/invoice"
	"erpick/internal/picker"
	"erpick/internal/ui/commands"
	"erpick/internal/ui/handlers"
	"erpick/internal/ui/input"
	inputtypes "erpick/internal/ui/input/types"
	"erpick/internal/ui/selector"
	"erpick/internal/ui/state"
	"erpick/internal/ui/views"
)

// Field names, also used as the Field of selector messages and events
const (
	FieldPartner   = "partner"
	FieldWarehouse = "warehouse"
	FieldCurrency  = "currency"
	FieldItem      = "item"
)

// DefaultStatusTTL is how long success messages stay in the status line
const DefaultStatusTTL = 4 * time.Second

// Sources are the backend calls behind the selectors. Lookups are optional
type Sources struct {
	Customers       picker.SearchFunc[domain.Customer]
	CustomerLookup  picker.LookupFunc[domain.Customer]
	Vendors         picker.SearchFunc[domain.Vendor]
	VendorLookup    picker.LookupFunc[domain.Vendor]
	Warehouses      picker.SearchFunc[domain.Warehouse]
	WarehouseLookup picker.LookupFunc[domain.Warehouse]
	Currencies      picker.SearchFunc[domain.Currency]
	CurrencyLookup  picker.LookupFunc[domain.Currency]
	Items           picker.SearchFunc[domain.Item]
}

// Initial holds header values to preselect, in their domain form ("" or
// "all" for none)
type Initial struct {
	PartnerID    string
	WarehouseID  string
	CurrencyCode string
}

// Options configures a new form
type Options struct {
	Config      *config.Config
	Kind        domain.DocumentKind // overrides Config.Document.Kind when set
	Initial     Initial
	Sources     Sources
	Documents   commands.Submitter
	Attachments *attachment.Set
	Bus         eventbus.EventBus
	Logger      *zap.Logger
	Context     context.Context
	Now         func() time.Time
}

// Model is the document entry form
type Model struct {
	bus eventbus.EventBus
	log *zap.Logger
	now func() time.Time

	state *state.DocumentState

	// Header and item pickers, in focus order. focus == len(fields) means
	// the lines table has focus
	partner   selector.Field
	warehouse *selector.Model[domain.Warehouse]
	currency  *selector.Model[domain.Currency]
	items     *selector.Model[domain.Item]
	fields    []selector.Field
	focus     int

	width     int
	height    int
	help      help.Model
	keys      formKeys
	pending   *domain.Document // awaiting confirmation
	statusTTL time.Duration
	statusSeq int

	inPagerMode bool

	renderer     *views.Renderer
	helpRenderer *HelpRenderer
	results      *handlers.ResultHandler
	cmdExecutor  *commands.Executor
	inputHandler *input.Handler
	attachments  *attachment.Set
	helpOps      *HelpOps

	// Program reference for terminal management
	program *tea.Program
}

// NewModel creates the form. It fails when a required search or service is
// missing or the configured percentages do not parse
func NewModel(opts Options) (*Model, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	kind := opts.Kind
	if kind == "" {
		kind = domain.DocumentKind(cfg.Document.Kind)
	}
	if kind != domain.KindSales && kind != domain.KindPurchase {
		return nil, fmt.Errorf("unknown document kind %q", kind)
	}
	if opts.Documents == nil || opts.Attachments == nil {
		return nil, errors.New("document and attachment services are required")
	}
	src := opts.Sources
	if src.Warehouses == nil || src.Currencies == nil || src.Items == nil {
		return nil, errors.New("warehouse, currency and item searches are required")
	}

	discount, err := invoice.ParsePercent(cfg.Document.DiscountPercent)
	if err != nil {
		return nil, fmt.Errorf("document discount: %w", err)
	}
	tax, err := invoice.ParsePercent(cfg.Document.TaxPercent)
	if err != nil {
		return nil, fmt.Errorf("document tax: %w", err)
	}

	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	styles := views.NewStyles()
	base := fieldBase{
		debounce:   time.Duration(cfg.Picker.DebounceMillis) * time.Millisecond,
		focusDelay: time.Duration(cfg.Picker.FocusDelayMillis) * time.Millisecond,
		rows:       cfg.Picker.VisibleRows,
		styles:     styles,
		log:        log,
		ctx:        ctx,
	}

	var partner selector.Field
	switch kind {
	case domain.KindPurchase:
		if src.Vendors == nil {
			return nil, errors.New("vendor search is required for purchases")
		}
		partner = selector.New(withBase(base, selector.Config[domain.Vendor]{
			Name:        FieldPartner,
			Title:       kind.PartnerLabel(),
			Placeholder: "(none)",
			Search:      src.Vendors,
			Lookup:      src.VendorLookup,
			Label:       domain.VendorLabel,
			Value:       picker.ParseDomain(opts.Initial.PartnerID),
		}))
	default:
		if src.Customers == nil {
			return nil, errors.New("customer search is required for sales")
		}
		partner = selector.New(withBase(base, selector.Config[domain.Customer]{
			Name:        FieldPartner,
			Title:       kind.PartnerLabel(),
			Placeholder: "(none)",
			Search:      src.Customers,
			Lookup:      src.CustomerLookup,
			Label:       domain.CustomerLabel,
			Value:       picker.ParseDomain(opts.Initial.PartnerID),
		}))
	}

	warehouse := selector.New(withBase(base, selector.Config[domain.Warehouse]{
		Name:        FieldWarehouse,
		Title:       "Warehouse",
		Placeholder: "(none)",
		Search:      src.Warehouses,
		Lookup:      src.WarehouseLookup,
		Label:       domain.WarehouseLabel,
		Value:       picker.ParseDomain(opts.Initial.WarehouseID),
	}))
	currency := selector.New(withBase(base, selector.Config[domain.Currency]{
		Name:        FieldCurrency,
		Title:       "Currency",
		Placeholder: "(default)",
		Search:      src.Currencies,
		Lookup:      src.CurrencyLookup,
		Label:       domain.CurrencyLabel,
		Value:       picker.ParseDomain(opts.Initial.CurrencyCode),
	}))
	items := selector.New(withBase(base, selector.Config[domain.Item]{
		Name:   FieldItem,
		Title:  "Add item",
		Search: src.Items,
		Label:  domain.ItemLabel,
	}))

	docState := state.NewDocumentState(kind, cfg.Document.MaxLines, discount, tax)

	m := &Model{
		bus:          opts.Bus,
		log:          log,
		now:          now,
		state:        docState,
		partner:      partner,
		warehouse:    warehouse,
		currency:     currency,
		items:        items,
		fields:       []selector.Field{partner, warehouse, currency, items},
		help:         help.New(),
		keys:         newFormKeys(),
		statusTTL:    DefaultStatusTTL,
		renderer:     views.NewRenderer(styles),
		helpRenderer: NewHelpRenderer(),
		results:      handlers.NewResultHandler(docState),
		cmdExecutor:  commands.NewExecutor(ctx, opts.Bus, opts.Documents, opts.Attachments, log),
		inputHandler: input.New(),
		attachments:  opts.Attachments,
	}
	m.fields[0].Focus()
	return m, nil
}

type fieldBase struct {
	debounce   time.Duration
	focusDelay time.Duration
	rows       int
	styles     *views.Styles
	log        *zap.Logger
	ctx        context.Context
}

func withBase[T picker.Keyed](b fieldBase, cfg selector.Config[T]) selector.Config[T] {
	cfg.Debounce = b.debounce
	cfg.FocusDelay = b.focusDelay
	cfg.VisibleRows = b.rows
	cfg.Styles = b.styles
	cfg.Logger = b.log.With(zap.String("field", cfg.Name))
	cfg.Context = b.ctx
	return cfg
}

// SetProgram sets the program reference for terminal management
func (m *Model) SetProgram(p *tea.Program) {
	m.program = p
	m.helpOps = NewHelpOps(p)
}

// Init mounts every field
func (m *Model) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.fields))
	for _, f := range m.fields {
		cmds = append(cmds, f.Init())
	}
	return tea.Batch(cmds...)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg)

	case selector.ChangedMsg:
		return m, m.handleChanged(msg)

	case selector.FetchFailedMsg:
		m.publish(eventbus.FetchFailedEvent{Resource: msg.Field, Err: msg.Err})
		m.results.Handle(msg)
		return m, nil

	case commands.SubmittedMsg:
		m.results.Handle(msg)
		if msg.Err != nil {
			return m, nil
		}
		return m, tea.Batch(m.syncFields(), m.expireStatus())

	case commands.AttachmentUploadedMsg, commands.AttachmentRemovedMsg:
		m.results.Handle(msg)
		return m, m.expireStatus()

	case helpPagerMsg:
		if msg.err != nil {
			m.log.Warn("help pager failed, showing inline help", zap.Error(msg.err))
			m.help.ShowAll = true
		}
		return m, nil

	case pauseRenderingMsg:
		m.inPagerMode = true
		return m, nil

	case resumeRenderingMsg:
		m.inPagerMode = false
		return m, nil

	case clearStatusMsg:
		if msg.seq == m.statusSeq && !m.state.StatusIsError {
			m.state.ClearStatus()
		}
		return m, nil
	}

	// Everything else belongs to the fields; each ignores what is not its own
	cmds := make([]tea.Cmd, 0, len(m.fields))
	for _, f := range m.fields {
		cmds = append(cmds, f.Update(msg))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	if m.inputHandler.CurrentMode() == inputtypes.ModeNormal && m.focus < len(m.fields) {
		if cmd, consumed := m.fields[m.focus].HandleKey(msg); consumed {
			return cmd
		}
	}

	actions, cmd := m.inputHandler.HandleKey(msg, m)
	cmds := []tea.Cmd{cmd}
	for _, action := range actions {
		cmds = append(cmds, m.processAction(action))
	}
	if m.inputHandler.CurrentMode() != inputtypes.ModeConfirmSubmit {
		m.pending = nil
	}
	return tea.Batch(cmds...)
}

// processAction processes an action from the input handler
func (m *Model) processAction(action inputtypes.Action) tea.Cmd {
	switch a := action.(type) {
	case inputtypes.FocusAction:
		return m.moveFocus(a.Delta)

	case inputtypes.NavigateAction:
		if !m.linesFocused() {
			switch a.Direction {
			case "up":
				return m.moveFocus(-1)
			case "down":
				return m.moveFocus(1)
			}
			return nil
		}
		m.state.MoveCursor(a.Direction)

	case inputtypes.QuantityAction:
		if !m.linesFocused() {
			m.state.SetStatus("Tab to the lines table to edit quantities", true)
			return nil
		}
		m.state.ChangeQuantity(a.Delta)

	case inputtypes.RemoveLineAction:
		if !m.linesFocused() {
			m.state.SetStatus("Tab to the lines table to remove a line", true)
			return nil
		}
		m.state.RemoveLine()
		return m.syncFields()

	case inputtypes.SubmitTextAction:
		if a.Mode == inputtypes.ModeAttach {
			return m.attach(a.Text)
		}

	case inputtypes.RequestSubmitAction:
		m.requestSubmit()

	case inputtypes.ConfirmSubmitAction:
		return m.submit()

	case inputtypes.RemoveAttachmentAction:
		return m.removeLastAttachment()

	case inputtypes.NewDocumentAction:
		return m.newDocument()

	case inputtypes.ToggleHelpAction:
		return m.showHelp()

	case inputtypes.QuitAction:
		m.Close()
		return tea.Quit
	}
	return nil
}

func (m *Model) handleChanged(msg selector.ChangedMsg) tea.Cmd {
	m.log.Debug("selection changed",
		zap.String("field", msg.Field),
		zap.String("value", msg.Value.Domain()))
	m.publish(eventbus.SelectionChangedEvent{Field: msg.Field, ID: msg.Value.ID(), Label: msg.Label})

	if msg.Field != FieldItem || !msg.Value.IsSet() {
		return nil
	}
	item, ok := m.items.Selected()
	if !ok {
		return nil
	}
	if err := m.state.AddItem(item); err != nil {
		m.state.SetStatus(err.Error(), true)
	} else {
		m.state.SetStatus("Added "+item.Name, false)
	}
	return tea.Batch(m.items.SetValue(picker.None()), m.syncFields(), m.expireStatus())
}

func (m *Model) requestSubmit() {
	doc, err := m.state.Build(m.header(), m.attachments.IDs(), m.now())
	if err != nil {
		m.state.SetStatus(m.describeBuildError(err), true)
		return
	}
	m.state.ClearStatus()
	m.pending = &doc
	m.inputHandler.SetMode(inputtypes.ModeConfirmSubmit, m)
}

func (m *Model) describeBuildError(err error) string {
	switch {
	case errors.Is(err, state.ErrMissingPartner):
		return m.state.Kind.PartnerLabel() + " is required"
	case errors.Is(err, state.ErrMissingStore):
		return "Warehouse is required"
	case errors.Is(err, invoice.ErrNoLines):
		return "Add at least one item"
	default:
		return err.Error()
	}
}

func (m *Model) submit() tea.Cmd {
	if m.pending == nil {
		return nil
	}
	doc := *m.pending
	m.pending = nil
	m.state.Busy = "Submitting..."
	m.state.ClearStatus()
	return m.cmdExecutor.ExecuteSubmit(doc)
}

func (m *Model) attach(path string) tea.Cmd {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, rest)
		}
	}
	m.state.Busy = "Uploading " + filepath.Base(path) + "..."
	return m.cmdExecutor.ExecuteUpload(path)
}

func (m *Model) removeLastAttachment() tea.Cmd {
	items := m.attachments.Items()
	if len(items) == 0 {
		return nil
	}
	last := items[len(items)-1]
	m.state.Busy = "Removing " + last.Filename + "..."
	return m.cmdExecutor.ExecuteRemoveAttachment(last.ID)
}

// newDocument starts over. Warehouse and currency are kept since
// consecutive entries usually share them
func (m *Model) newDocument() tea.Cmd {
	m.state.Reset()
	m.attachments.Reset()
	m.pending = nil
	cmds := []tea.Cmd{m.partner.SetValue(picker.None()), m.syncFields()}
	if m.focus < len(m.fields) {
		cmds = append(cmds, m.fields[m.focus].Blur())
	}
	m.focus = 0
	m.fields[0].Focus()
	return tea.Batch(cmds...)
}

func (m *Model) showHelp() tea.Cmd {
	if m.helpOps == nil || m.program == nil {
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}
	return m.fetchHelpPager(m.helpRenderer.RenderHelpContent(m.state.Kind))
}

// fetchHelpPager returns a command that shows help using ov pager
func (m *Model) fetchHelpPager(helpContent string) tea.Cmd {
	return func() tea.Msg {
		m.program.Send(pauseRenderingMsg{})
		err := m.helpOps.ShowHelpInPager(helpContent)
		m.program.Send(resumeRenderingMsg{})
		return helpPagerMsg{err: err}
	}
}

// syncFields applies the document state to the fields: everything locks
// after submit and the item picker is capped at the line limit
func (m *Model) syncFields() tea.Cmd {
	locked := m.state.Submitted()
	cmds := []tea.Cmd{
		m.partner.SetDisabled(locked),
		m.warehouse.SetDisabled(locked),
		m.currency.SetDisabled(locked),
		m.items.SetDisabled(locked || m.state.AtCapacity()),
	}
	if m.focus < len(m.fields) && m.fields[m.focus].Disabled() {
		cmds = append(cmds, m.fields[m.focus].Blur())
		m.focus = len(m.fields)
	}
	return tea.Batch(cmds...)
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	var cmd tea.Cmd
	if m.focus < len(m.fields) {
		cmd = m.fields[m.focus].Blur()
	}
	total := len(m.fields) + 1
	next := m.focus
	for i := 0; i < total; i++ {
		next = ((next+delta)%total + total) % total
		if next == len(m.fields) || !m.fields[next].Disabled() {
			break
		}
	}
	m.focus = next
	if m.focus < len(m.fields) {
		m.fields[m.focus].Focus()
	}
	return cmd
}

// expireStatus schedules the removal of a success message
func (m *Model) expireStatus() tea.Cmd {
	if m.statusTTL <= 0 || m.state.StatusMessage == "" || m.state.StatusIsError {
		return nil
	}
	m.statusSeq++
	seq := m.statusSeq
	return tea.Tick(m.statusTTL, func(time.Time) tea.Msg { return clearStatusMsg{seq: seq} })
}

func (m *Model) header() state.Header {
	return state.Header{
		PartnerID:    m.partner.Value().ID(),
		WarehouseID:  m.warehouse.Value().ID(),
		CurrencyCode: m.currency.Value().ID(),
	}
}

func (m *Model) linesFocused() bool {
	return m.focus == len(m.fields)
}

func (m *Model) publish(e eventbus.DomainEvent) {
	if m.bus != nil {
		m.bus.Publish(e)
	}
}

// Close unmounts every field so late fetch results are dropped
func (m *Model) Close() {
	for _, f := range m.fields {
		f.Close()
	}
}

// LineCount implements inputtypes.Context
func (m *Model) LineCount() int { return len(m.state.Lines) }

// CurrentLine implements inputtypes.Context
func (m *Model) CurrentLine() int { return m.state.CurrentLine }

// AttachmentCount implements inputtypes.Context
func (m *Model) AttachmentCount() int { return m.attachments.Len() }

// Submitted implements inputtypes.Context
func (m *Model) Submitted() bool { return m.state.Submitted() }

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.inPagerMode {
		return ""
	}

	vs := views.ViewState{
		Width:         m.width,
		Height:        m.height,
		Title:         m.state.Kind.Title(),
		Status:        string(m.state.Status),
		DocumentID:    m.state.DocumentID,
		CurrentLine:   m.state.CurrentLine,
		LinesFocused:  m.linesFocused(),
		Busy:          m.state.Busy,
		StatusMessage: m.state.StatusMessage,
		StatusIsError: m.state.StatusIsError,
	}
	for _, f := range m.fields {
		vs.Fields = append(vs.Fields, f.View())
	}
	if m.state.AtCapacity() && !m.state.Submitted() {
		vs.FieldHint = fmt.Sprintf("Line limit reached (%d lines)", m.state.MaxLines)
	}

	totals, err := m.state.Totals()
	switch {
	case err == nil:
		vs.Totals = m.totalRows(totals)
	case !errors.Is(err, invoice.ErrNoLines):
		vs.TotalsError = err.Error()
	}
	for i, l := range m.state.Lines {
		amount := l.Quantity.Mul(l.Item.Price)
		if err == nil {
			amount = totals.Lines[i].Net
		}
		vs.Lines = append(vs.Lines, views.LineView{
			Description: domain.ItemLabel(l.Item),
			Unit:        l.Item.Unit,
			Quantity:    l.Quantity.String(),
			UnitPrice:   formatMoney(l.Item.Price),
			Discount:    l.DiscountPercent.String(),
			Amount:      formatMoney(amount),
		})
	}

	for _, a := range m.attachments.Items() {
		vs.Attachments = append(vs.Attachments, a.Filename+" ("+strconv.FormatInt(a.Size, 10)+" B)")
	}

	switch m.inputHandler.CurrentMode() {
	case inputtypes.ModeAttach:
		vs.InputPrompt = m.inputHandler.Prompt()
		if ti := m.inputHandler.TextInput(); ti != nil {
			vs.TextInput = ti.View()
		}
	case inputtypes.ModeConfirmSubmit:
		vs.ConfirmText = m.confirmText()
	}

	if m.focus < len(m.fields) && m.fields[m.focus].IsOpen() {
		vs.HelpText = m.help.View(m.fields[m.focus].KeyMap())
	} else {
		vs.HelpText = m.help.View(m.keys)
	}

	return m.renderer.Render(vs)
}

func (m *Model) totalRows(t invoice.Totals) []views.TotalRow {
	rows := []views.TotalRow{{Label: "Subtotal", Value: formatMoney(t.Subtotal)}}
	if !m.state.DiscountPercent.IsZero() {
		rows = append(rows, views.TotalRow{
			Label: "Discount " + m.state.DiscountPercent.String() + "%",
			Value: "-" + formatMoney(t.DocumentDiscount),
		})
	}
	if !m.state.TaxPercent.IsZero() {
		rows = append(rows, views.TotalRow{
			Label: "PPN " + m.state.TaxPercent.String() + "%",
			Value: formatMoney(t.Tax),
		})
	}
	label := "Grand total"
	if code := m.currency.Value().ID(); code != "" {
		label += " (" + code + ")"
	}
	return append(rows, views.TotalRow{Label: label, Value: formatMoney(t.GrandTotal), Grand: true})
}

func (m *Model) confirmText() string {
	if m.pending == nil {
		return ""
	}
	return fmt.Sprintf("Submit %s?\n\n%s: %s\nLines: %d\nGrand total: %s\n\n[y] submit   [n] cancel",
		m.state.Kind.Title(),
		m.state.Kind.PartnerLabel(), m.partner.Label(),
		len(m.pending.Lines),
		formatMoney(m.pending.GrandTotal))
}

// formatMoney renders two decimals with thousands separators
func formatMoney(d decimal.Decimal) string {
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	intPart, frac, _ := strings.Cut(strings.TrimPrefix(s, "-"), ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteByte('.')
	b.WriteString(frac)
	return b.String()
}
