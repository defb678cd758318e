package chart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultWidth  = 900
	DefaultHeight = 460
)

// DefaultMargin leaves room for the axes and their titles.
var DefaultMargin = Margin{Top: 28, Right: 28, Bottom: 54, Left: 74}

var (
	ErrClosed     = errors.New("chart controller closed")
	ErrSuperseded = errors.New("draw superseded by a newer draw")
)

// Surface is the host side of a chart: a container whose content the controller replaces
// wholesale, a caption line, and the floating tooltip.
type Surface interface {
	// Width is the current container width in pixels, 0 when unknown.
	Width() float64
	// Commit swaps the container content for scene; nil empties it.
	Commit(scene *Scene)
	SetNote(text string)
	MoveFocus(f Focus)
	ShowTooltip(t Tooltip)
}

// Options configures one chart instance.
type Options struct {
	Source       string
	DefaultWidth float64
	Height       float64
	Margin       Margin
	ResizeQuiet  time.Duration
	Render       RenderOptions
}

func (o Options) withDefaults() Options {
	if o.DefaultWidth <= 0 {
		o.DefaultWidth = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Margin == (Margin{}) {
		o.Margin = DefaultMargin
	}
	if o.ResizeQuiet <= 0 {
		o.ResizeQuiet = DefaultResizeQuiet
	}
	return o
}

// Deps are the collaborators of a Controller. Loader and Surface are required.
type Deps struct {
	Surface  Surface
	Loader   Loader
	Resolver ColumnResolver
	Logger   *slog.Logger
	// OnDraw, when set, is called after every scheduled (debounced) draw.
	OnDraw func(error)
}

// Controller owns one chart: its surface, tooltip state and resize debouncer. Each draw
// rebuilds everything from the source; nothing is cached between draws.
type Controller struct {
	id       string
	opts     Options
	surface  Surface
	loader   Loader
	resolver ColumnResolver
	log      *slog.Logger
	onDraw   func(error)
	debounce *Debouncer

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	gen     uint64
	scene   *Scene
	hover   bool
	tooltip Tooltip
	closed  bool
}

func NewController(deps Deps, opts Options) *Controller {
	if deps.Resolver == nil {
		deps.Resolver = DefaultResolver()
	}
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	opts = opts.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		id:       uuid.NewString()[:8],
		opts:     opts,
		surface:  deps.Surface,
		loader:   deps.Loader,
		resolver: deps.Resolver,
		onDraw:   deps.OnDraw,
		ctx:      ctx,
		cancel:   cancel,
	}
	c.log = deps.Logger.With("chart", c.id)
	c.debounce = NewDebouncer(opts.ResizeQuiet, c.scheduledDraw)
	return c
}

// ID is unique per controller and suffixes every element id of its scenes.
func (c *Controller) ID() string { return c.id }

// Scene returns the last committed scene, nil after a failed draw.
func (c *Controller) Scene() *Scene {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scene
}

// Draw clears the surface, loads the source and commits a new scene. On failure the
// caption carries the diagnostic and the container stays empty.
func (c *Controller) Draw(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	c.gen++
	gen := c.gen
	c.scene = nil
	c.hover = false
	c.tooltip = Tooltip{}
	c.surface.Commit(nil)
	c.surface.SetNote("")
	c.surface.ShowTooltip(c.tooltip)
	c.mu.Unlock()

	start := time.Now()
	table, err := c.loader.Load(WithLoadKey(ctx, fmt.Sprintf("%s/%d", c.id, gen)), c.opts.Source)
	var sc *Scene
	if err == nil {
		sc, err = c.build(table)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.closed {
		c.log.Debug("chart.draw_discarded", "generation", gen)
		return ErrSuperseded
	}
	if err != nil {
		c.surface.SetNote(Diagnostic(err))
		c.log.Error("chart.draw_failed", "source", c.opts.Source, "error", err)
		return err
	}
	c.scene = sc
	c.surface.Commit(sc)
	c.surface.SetNote(sc.Caption)
	c.log.Info("chart.drawn",
		"source", c.opts.Source,
		"points", len(sc.Series),
		"width", sc.Layout.Width,
		"elapsed", time.Since(start).Round(time.Millisecond))
	return nil
}

// build runs detection, aggregation and layout for one table.
func (c *Controller) build(table Table) (*Scene, error) {
	if len(table.Rows) == 0 {
		return nil, &OpError{Op: "chart.draw", Kind: KindEmpty, Path: c.opts.Source, Err: ErrEmpty}
	}
	cols := c.resolver.Resolve(table.Headers)
	series := Aggregate(table.Rows, cols)
	c.log.Debug("chart.aggregated",
		"year_column", cols.Year,
		"value_column", cols.Value,
		"rows", len(table.Rows),
		"points", len(series))
	if len(series) == 0 {
		return nil, &OpError{Op: "chart.draw", Kind: KindNoData, Path: c.opts.Source, Err: ErrNoData}
	}

	width := c.surface.Width()
	if width <= 0 {
		width = c.opts.DefaultWidth
	}
	ro := c.opts.Render
	ro.IDSuffix = "-" + c.id
	if ro.YLabel == "" && !cols.Counting() {
		ro.YLabel = cols.Value
	}
	return Renderer{Options: ro}.Build(series, Layout{Width: width, Height: c.opts.Height, Margin: c.opts.Margin})
}

// Resize schedules a redraw once resize events have been quiet for the configured period.
func (c *Controller) Resize() { c.Schedule() }

// Schedule queues a debounced redraw; a burst of calls yields one draw.
func (c *Controller) Schedule() { c.debounce.Trigger() }

func (c *Controller) scheduledDraw() {
	err := c.Draw(c.ctx)
	if err != nil && !errors.Is(err, ErrSuperseded) && !errors.Is(err, ErrClosed) {
		c.log.Warn("chart.redraw_failed", "error", err)
	}
	if c.onDraw != nil {
		c.onDraw(err)
	}
}

// PointerEnter shows the focus marker and tooltip.
func (c *Controller) PointerEnter() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		return
	}
	c.hover = true
	f := c.scene.Focus()
	f.Visible = true
	c.applyFocus(f)
}

// PointerMove focuses the point nearest to x, in plot coordinates.
func (c *Controller) PointerMove(x float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		return
	}
	f := c.scene.FocusAt(x)
	f.Visible = c.hover
	c.applyFocus(f)
}

// PointerLeave hides the focus marker and tooltip.
func (c *Controller) PointerLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		return
	}
	c.hover = false
	f := c.scene.Focus()
	f.Visible = false
	c.applyFocus(f)
}

// FocusYear pins the focus marker on a year, as if the pointer rested on it.
func (c *Controller) FocusYear(year int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scene == nil {
		return false
	}
	f, ok := c.scene.FocusYear(year)
	if !ok {
		return false
	}
	c.hover = true
	c.applyFocus(f)
	return true
}

func (c *Controller) applyFocus(f Focus) {
	c.scene.ApplyFocus(f)
	c.surface.MoveFocus(f)
	c.tooltip = c.scene.TooltipFor(f)
	c.surface.ShowTooltip(c.tooltip)
}

// Tooltip returns the floating tooltip state.
func (c *Controller) Tooltip() Tooltip {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tooltip
}

// Close cancels pending redraws and in-flight loads. The controller is unusable afterwards.
func (c *Controller) Close() {
	c.debounce.Stop()
	c.cancel()
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	c.tooltip = Tooltip{}
	c.surface.ShowTooltip(c.tooltip)
}
