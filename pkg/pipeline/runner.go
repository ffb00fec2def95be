package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wfstudio/wfrender/pkg/cache"
	"github.com/wfstudio/wfrender/pkg/compose"
	"github.com/wfstudio/wfrender/pkg/io"
	"github.com/wfstudio/wfrender/pkg/observability"
	"github.com/wfstudio/wfrender/pkg/render"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the renderer, cache and logger - it
// doesn't store pipeline results. Multiple goroutines can safely use the
// same Runner with different options.
type Runner struct {
	Renderer *render.Renderer
	Cache    cache.Cache
	Keyer    cache.Keyer
	Logger   *log.Logger
}

// NewRunner creates a runner drawing with renderer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(renderer *render.Renderer, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Renderer: renderer,
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
	}
}

// Execute renders one frame of doc with caching.
func (r *Runner) Execute(ctx context.Context, doc *scene.Document, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	state, err := opts.State()
	if err != nil {
		return nil, err
	}
	sceneHash, err := r.SceneHash(doc)
	if err != nil {
		return nil, err
	}

	key := r.Keyer.FrameKey(sceneHash, opts.FrameKeyOpts(state))
	result := &Result{SceneHash: sceneHash, FrameKey: key, Clock: state.Time, Format: opts.Format}

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			observability.Cache().OnCacheHit(ctx, "frame")
			result.Data = data
			result.Stats.Bytes = len(data)
			result.CacheInfo.FrameHit = true
			opts.Logger.Debug("frame cache hit", "time", state.Time, "bytes", len(data))
			return result, nil
		} else if err != nil {
			opts.Logger.Warn("frame cache read failed", "err", err)
		}
		observability.Cache().OnCacheMiss(ctx, "frame")
	}

	renderStart := time.Now()
	canvas, err := r.Renderer.RenderContext(ctx, doc, state)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Canvas = canvas
	result.Stats.Widgets = len(doc.Widgets)
	result.Stats.RenderTime = time.Since(renderStart)

	encodeStart := time.Now()
	data, err := Encode(canvas, opts)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	result.Data = data
	result.Stats.EncodeTime = time.Since(encodeStart)
	result.Stats.Bytes = len(data)

	opts.Logger.Debug("rendered frame",
		"time", state.Time,
		"format", opts.Format,
		"bytes", len(data),
		"render", result.Stats.RenderTime,
		"encode", result.Stats.EncodeTime)

	ttl := cache.TTLFrame
	if opts.Width != 0 {
		ttl = cache.TTLPreview
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		opts.Logger.Warn("frame cache write failed", "err", err)
	} else {
		observability.Cache().OnCacheSet(ctx, "frame", len(data))
	}
	return result, nil
}

// ExecuteBatch renders one frame per entry of times with at most workers
// renders in flight. Results are in the order of times. The first error
// stops the remaining frames from starting and is returned.
func (r *Runner) ExecuteBatch(ctx context.Context, doc *scene.Document, opts Options, times []string, workers int) ([]*Result, error) {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]*Result, len(times))
	jobs := make(chan int)
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	for w := 0; w < min(workers, len(times)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				o := opts
				o.Time = times[i]
				res, err := r.Execute(ctx, doc, o)
				if err != nil {
					errOnce.Do(func() {
						firstErr = fmt.Errorf("frame %s: %w", times[i], err)
						cancel()
					})
					continue
				}
				results[i] = res
			}
		}()
	}

feed:
	for i := range times {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// SceneHash hashes the scene's file encoding together with the canvas
// size, so equal scenes share cache entries across processes.
func (r *Runner) SceneHash(doc *scene.Document) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	w, h := r.Renderer.Size()
	fmt.Fprintf(&buf, "%dx%d\n", w, h)
	if err := io.WriteScene(&buf, doc); err != nil {
		return "", err
	}
	return cache.Hash(buf.Bytes()), nil
}

// Encode resizes canvas to the requested output size, if any, and encodes
// it in opts.Format.
func Encode(canvas *compose.Canvas, opts Options) ([]byte, error) {
	out := canvas
	if opts.Width > 0 && opts.Height > 0 && (opts.Width != canvas.Width() || opts.Height != canvas.Height()) {
		out = compose.Downscale(canvas, opts.Width, opts.Height)
	}
	format := opts.Format
	if format == "" {
		format = DefaultFormat
	}
	var buf bytes.Buffer
	if err := out.Encode(&buf, format); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
