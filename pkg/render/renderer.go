package render

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wfstudio/wfrender/pkg/asset"
	"github.com/wfstudio/wfrender/pkg/compose"
	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/fonts"
	"github.com/wfstudio/wfrender/pkg/glyph"
	"github.com/wfstudio/wfrender/pkg/observability"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// TimePolicy decides what Render does with an out-of-range clock.
type TimePolicy int

const (
	// TimeReject fails the render with INVALID_TIME.
	TimeReject TimePolicy = iota
	// TimeClamp limits each component to its range and logs a warning.
	TimeClamp
)

// String returns the policy name used in config files.
func (p TimePolicy) String() string {
	if p == TimeClamp {
		return "clamp"
	}
	return "reject"
}

// ParseTimePolicy parses "reject" or "clamp". Empty means reject.
func ParseTimePolicy(s string) (TimePolicy, error) {
	switch s {
	case "", "reject":
		return TimeReject, nil
	case "clamp":
		return TimeClamp, nil
	}
	return TimeReject, errors.New(errors.ErrCodeInvalidInput, "unknown time policy %q (want reject or clamp)", s)
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger widget failures are reported to.
func WithLogger(l *log.Logger) Option { return func(r *Renderer) { r.logger = l } }

// WithSize sets the canvas size. Non-positive dimensions keep the default.
func WithSize(width, height int) Option {
	return func(r *Renderer) {
		if width > 0 && height > 0 {
			r.width, r.height = width, height
		}
	}
}

// WithTimePolicy sets how out-of-range clocks are handled.
func WithTimePolicy(p TimePolicy) Option { return func(r *Renderer) { r.policy = p } }

// WithHooks overrides the globally registered render hooks.
func WithHooks(h observability.RenderHooks) Option { return func(r *Renderer) { r.hooks = h } }

// Renderer turns a scene document and render state into a canvas. One
// Renderer may be shared by goroutines; its caches are synchronized.
type Renderer struct {
	assets  *asset.Store
	glyphs  *glyph.Loader
	widgets *WidgetRenderer

	logger *log.Logger
	hooks  observability.RenderHooks
	width  int
	height int
	policy TimePolicy
}

// New returns a Renderer reading images from assets. The builtin glyph
// sets of package fonts are always available.
func New(assets *asset.Store, opts ...Option) *Renderer {
	r := &Renderer{
		assets: assets,
		width:  compose.DefaultWidth,
		height: compose.DefaultHeight,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	r.glyphs = glyph.NewLoader(assets, r.logger)
	fonts.Register(r.glyphs)
	r.widgets = NewWidgetRenderer(assets, r.glyphs)
	return r
}

// Size returns the canvas size.
func (r *Renderer) Size() (width, height int) { return r.width, r.height }

// Glyphs returns the renderer's glyph loader.
func (r *Renderer) Glyphs() *glyph.Loader { return r.glyphs }

// Widgets returns the renderer's widget renderer.
func (r *Renderer) Widgets() *WidgetRenderer { return r.widgets }

// Invalidate drops the cached image for name and every cached glyph set,
// for callers that replace assets while rendering.
func (r *Renderer) Invalidate(name string) {
	r.assets.Invalidate(name)
	r.glyphs.Clear()
}

// Reset drops every cached image and glyph set.
func (r *Renderer) Reset() {
	r.assets.Clear()
	r.glyphs.Clear()
}

// Render draws doc at state. See RenderContext.
func (r *Renderer) Render(doc *scene.Document, state scene.State) (*compose.Canvas, error) {
	return r.RenderContext(context.Background(), doc, state)
}

// RenderContext draws doc at state onto a new transparent canvas.
//
// The document and the clock are checked before anything is allocated: a
// malformed document fails with MALFORMED_SCENE and an out-of-range clock
// with INVALID_TIME (unless the renderer clamps). After that nothing fails
// the render: a missing background leaves the canvas transparent and a
// widget that cannot be drawn is logged and skipped.
//
// ctx is handed to the render hooks only; a render is not cancellable.
// state.Values is never modified.
func (r *Renderer) RenderContext(ctx context.Context, doc *scene.Document, state scene.State) (*compose.Canvas, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	clock, err := r.checkClock(state.Time)
	if err != nil {
		return nil, err
	}
	state.Time = clock

	hooks := r.hooks
	if hooks == nil {
		hooks = observability.Render()
	}
	name := doc.Name()
	hooks.OnRenderStart(ctx, name)
	start := time.Now()

	c := compose.NewCanvas(r.width, r.height)
	if doc.Background != "" {
		if img, err := r.assets.Resolve(doc.Background); err != nil {
			r.logger.Warn("background omitted", "name", doc.Background, "err", err)
			hooks.OnWidgetSkipped("background", err)
		} else {
			compose.Fill(c, img)
		}
	}

	values := state.Derived()
	drawn := 0
	for i, w := range doc.Widgets {
		if err := r.drawWidget(c, w, values, clock); err != nil {
			logf := r.logger.Warn
			if !errors.IsSoft(err) {
				logf = r.logger.Error
			}
			logf("widget skipped", "index", i, "widget", w.Label(), "code", errors.GetCode(err), "err", err)
			hooks.OnWidgetSkipped(w.Label(), err)
			continue
		}
		drawn++
	}

	hooks.OnRenderComplete(ctx, name, drawn, time.Since(start), nil)
	return c, nil
}

func (r *Renderer) checkClock(c scene.Clock) (scene.Clock, error) {
	err := c.Validate()
	if err == nil {
		return c, nil
	}
	if r.policy != TimeClamp {
		return c, err
	}
	clamped := c.Clamp()
	r.logger.Warn("clock out of range, clamped", "time", c.String(), "clamped", clamped.String())
	return clamped, nil
}

// drawWidget dispatches one widget. A panic inside a widget is converted to
// an INTERNAL_ERROR so the remaining widgets still render.
func (r *Renderer) drawWidget(c *compose.Canvas, w scene.Widget, values map[scene.Kind]string, t scene.Clock) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.New(errors.ErrCodeInternal, "widget panicked: %v", p)
		}
	}()
	switch w := w.(type) {
	case *scene.DigitWidget:
		_, err = r.widgets.DrawDigits(c, w, values[w.Kind])
	case *scene.HandsWidget:
		err = r.widgets.DrawHands(c, w, t)
	default:
		err = errors.New(errors.ErrCodeUnsupported, "unsupported widget %T", w)
	}
	return err
}
