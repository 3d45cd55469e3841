package picker

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// DefaultDelay is the idle window between the last keystroke and the fetch
const DefaultDelay = 300 * time.Millisecond

// Phase is the lifecycle stage of a picker
type Phase int

const (
	PhaseInitializing Phase = iota
	PhaseReady
	PhaseUnmounted
)

func (p Phase) String() string {
	switch p {
	case PhaseInitializing:
		return "initializing"
	case PhaseReady:
		return "ready"
	case PhaseUnmounted:
		return "unmounted"
	default:
		return "unknown"
	}
}

// State is the search state owned by one picker
type State struct {
	Query       string
	Open        bool
	Loading     bool
	Initialized bool
}

// Request describes a fetch that is ready to run
type Request struct {
	Gen       uint64
	Query     string
	PreloadID string // set when the preloaded option must be resolved too
	ctx       context.Context
}

// Context is cancelled when the request is superseded
func (r Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// Result is the outcome of executing a Request
type Result[T Keyed] struct {
	Gen       uint64
	Query     string
	PreloadID string
	Options   []T
	Total     int
	Preloaded *T
	Err       error
}

// Options configures a Controller
type Options struct {
	Name   string
	Delay  time.Duration
	Logger *zap.Logger
}

// Controller turns keystrokes into fetches and fetch results into the option
// list. Every state change happens on the caller's goroutine; only Execute is
// meant to run elsewhere and it touches nothing but the immutable fetchers
type Controller[T Keyed] struct {
	search SearchFunc[T]
	lookup LookupFunc[T]
	delay  time.Duration
	log    *zap.Logger

	slot   Slot
	parent context.Context

	phase      Phase
	state      State
	options    []T
	total      int
	shownQuery string // query that produced options

	preloadID string
	preloaded *T
	// pending is the selected id still waiting for its option. Every
	// request carries it until a result resolves it, so a superseded
	// request does not lose the label
	pending string
}

// New creates a controller. search is required; lookup may be nil
func New[T Keyed](search SearchFunc[T], lookup LookupFunc[T], opts Options) *Controller[T] {
	if search == nil {
		panic("picker: nil SearchFunc")
	}
	if opts.Delay <= 0 {
		opts.Delay = DefaultDelay
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Name != "" {
		log = log.With(zap.String("picker", opts.Name))
	}

	return &Controller[T]{
		search: search,
		lookup: lookup,
		delay:  opts.Delay,
		log:    log,
		parent: context.Background(),
		phase:  PhaseInitializing,
	}
}

// Start begins the first fetch: the default page plus, when preload is a real
// selection, the preloaded option. The request runs without debounce
func (c *Controller[T]) Start(ctx context.Context, preload Value) Request {
	if ctx != nil {
		c.parent = ctx
	}
	t := c.slot.Replace(c.parent)
	c.state.Loading = true

	if preload.IsSet() {
		c.pending = preload.ID()
	}
	return Request{Gen: t.Gen, PreloadID: c.pending, ctx: t.ctx}
}

// Delay returns the debounce window
func (c *Controller[T]) Delay() time.Duration {
	return c.delay
}

// SetQuery records a new query and retires whatever was pending. The caller
// schedules Fire(ticket.Gen) after Delay
func (c *Controller[T]) SetQuery(query string) Ticket {
	c.state.Query = query
	return c.slot.Replace(c.parent)
}

// Fire is called when a debounce window elapses. It returns the request to
// run, or false when the ticket has been superseded in the meantime
func (c *Controller[T]) Fire(gen uint64) (Request, bool) {
	if !c.slot.Current(gen) {
		return Request{}, false
	}
	// The fetch gets its own generation; the next SetQuery cancels it
	t := c.slot.Replace(c.parent)
	c.state.Loading = true
	return Request{Gen: t.Gen, Query: c.state.Query, PreloadID: c.pending, ctx: t.ctx}, true
}

// Execute runs the fetches described by req. It blocks and is safe to call
// from any goroutine
func (c *Controller[T]) Execute(req Request) Result[T] {
	ctx := req.Context()
	res := Result[T]{Gen: req.Gen, Query: req.Query, PreloadID: req.PreloadID}

	var item *T
	if req.PreloadID != "" && c.lookup != nil {
		v, err := c.lookup(ctx, req.PreloadID)
		if err != nil {
			c.log.Debug("preload lookup failed, falling back to page scan",
				zap.String("id", req.PreloadID), zap.Error(err))
		} else {
			item = &v
		}
	}

	page, err := c.search(ctx, req.Query)
	if err != nil {
		res.Err = err
		res.Preloaded = item
		return res
	}
	res.Options = page.Data
	res.Total = page.Total

	if item == nil && req.PreloadID != "" {
		if i := IndexOf(page.Data, req.PreloadID); i >= 0 {
			v := page.Data[i]
			item = &v
		}
	}
	res.Preloaded = item
	return res
}

// Apply installs res if it belongs to the current generation. Stale results
// and results arriving after Close are dropped and Apply returns false
func (c *Controller[T]) Apply(res Result[T]) bool {
	if !c.slot.Current(res.Gen) {
		c.log.Debug("dropping stale result",
			zap.Uint64("gen", res.Gen), zap.String("query", res.Query))
		return false
	}
	defer func() {
		c.state.Loading = false
		c.state.Initialized = true
		c.phase = PhaseReady
	}()

	if res.PreloadID != "" && res.PreloadID == c.pending {
		switch {
		case res.Preloaded != nil:
			c.preloadID, c.preloaded = res.PreloadID, res.Preloaded
			c.pending = ""
		case res.Err == nil && res.Query == "":
			// Neither the lookup nor the default page know the id
			c.preloadID, c.preloaded = res.PreloadID, nil
			c.pending = ""
		}
	}

	c.shownQuery = res.Query
	if res.Err != nil {
		c.log.Warn("option fetch failed", zap.String("query", res.Query), zap.Error(res.Err))
		c.options = nil
		c.total = 0
		return true
	}

	options := res.Options
	if res.Query == "" && c.preloaded != nil {
		options = MergePreload(options, *c.preloaded)
	}
	c.options = options
	c.total = res.Total
	return true
}

// Preload makes v the selection whose option joins default pages. None
// drops the previous one. It returns a request only when v is a real
// selection that is neither known nor already being resolved
func (c *Controller[T]) Preload(v Value) (Request, bool) {
	if !v.IsSet() {
		c.preloadID, c.preloaded, c.pending = "", nil, ""
		return Request{}, false
	}
	if c.phase == PhaseUnmounted || v.ID() == c.preloadID || v.ID() == c.pending {
		return Request{}, false
	}
	if i := IndexOf(c.options, v.ID()); i >= 0 {
		item := c.options[i]
		c.preloadID, c.preloaded, c.pending = v.ID(), &item, ""
		return Request{}, false
	}

	c.preloadID, c.preloaded, c.pending = "", nil, v.ID()
	t := c.slot.Replace(c.parent)
	c.state.Loading = true
	return Request{Gen: t.Gen, Query: c.state.Query, PreloadID: c.pending, ctx: t.ctx}, true
}

// Reset clears the query. If the list was filtered, or a filtered fetch was
// pending, it returns the request that reloads the default page
func (c *Controller[T]) Reset() (Request, bool) {
	filtered := c.state.Query != "" || c.shownQuery != ""
	c.state.Query = ""
	if !filtered || c.phase == PhaseUnmounted {
		return Request{}, false
	}

	t := c.slot.Replace(c.parent)
	c.state.Loading = true
	return Request{Gen: t.Gen, PreloadID: c.pending, ctx: t.ctx}, true
}

// SetOpen records whether the dropdown is showing
func (c *Controller[T]) SetOpen(open bool) {
	c.state.Open = open
}

// Close unmounts the controller. In-flight fetches are cancelled and their
// results will be dropped
func (c *Controller[T]) Close() {
	c.slot.Close()
	c.phase = PhaseUnmounted
	c.state.Loading = false
	c.state.Open = false
}

// State returns a copy of the search state
func (c *Controller[T]) State() State {
	return c.state
}

// Phase returns the lifecycle stage
func (c *Controller[T]) Phase() Phase {
	return c.phase
}

// Options returns the current option list
func (c *Controller[T]) Options() []T {
	return c.options
}

// Total is the backend's total count for the shown query
func (c *Controller[T]) Total() int {
	return c.total
}

// ShownQuery is the query that produced the current options
func (c *Controller[T]) ShownQuery() string {
	return c.shownQuery
}

// Find returns the option with the given key, looking at the preloaded
// option as well as the current list
func (c *Controller[T]) Find(key string) (T, bool) {
	if i := IndexOf(c.options, key); i >= 0 {
		return c.options[i], true
	}
	if c.preloaded != nil && (*c.preloaded).Key() == key {
		return *c.preloaded, true
	}
	var zero T
	return zero, false
}
