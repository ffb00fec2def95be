// Package pipeline provides the render pipeline shared by the CLI commands
// and the preview server.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. State: Build the render state from a time and value overrides
//  2. Render: Draw the scene with a [render.Renderer]
//  3. Encode: Resize for the requested output size and encode to PNG/JPEG
//
// Encoded frames are cached under a key derived from the scene, the state,
// the output options and an asset fingerprint, so a hit skips stages 2-3.
//
// # Usage
//
//	runner := pipeline.NewRunner(renderer, cache, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Time:   "10:08:36",
//	    Values: map[string]string{"heartrate": "99"},
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile("out.png", result.Data, 0644)
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/wfstudio/wfrender/pkg/cache"
	"github.com/wfstudio/wfrender/pkg/compose"
	"github.com/wfstudio/wfrender/pkg/errors"
	"github.com/wfstudio/wfrender/pkg/render"
	"github.com/wfstudio/wfrender/pkg/scene"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Server
// =============================================================================

const (
	// DefaultWidth is the canvas width of the target watch.
	DefaultWidth = compose.DefaultWidth

	// DefaultHeight is the canvas height of the target watch.
	DefaultHeight = compose.DefaultHeight

	// DefaultPreviewWidth is the width of exported preview images.
	DefaultPreviewWidth = 272

	// DefaultPreviewHeight is the height of exported preview images.
	DefaultPreviewHeight = 324

	// DefaultFormat is the default output encoding.
	DefaultFormat = FormatPNG

	// DefaultWorkers bounds parallel frame rendering in batch mode.
	DefaultWorkers = 4

	// MaxOutputSize bounds each side of a resized output.
	MaxOutputSize = 4096
)

// Format constants for output formats.
const (
	FormatPNG  = compose.FormatPNG
	FormatJPEG = compose.FormatJPEG
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatJPEG: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for one frame.
// This struct supports JSON serialization for server requests.
type Options struct {
	// State options
	Time       string            `json:"time,omitempty"` // HH:MM or HH:MM:SS; empty means now
	Values     map[string]string `json:"values,omitempty"`
	NoDefaults bool              `json:"no_defaults,omitempty"` // don't seed the editor's sample values
	TimePolicy string            `json:"time_policy,omitempty"` // reject (default) or clamp

	// Output options
	Format  string `json:"format,omitempty"`
	Width   int    `json:"width,omitempty"`  // output size; 0 keeps the canvas size
	Height  int    `json:"height,omitempty"` //
	Preview bool   `json:"preview,omitempty"`
	Refresh bool   `json:"refresh,omitempty"` // skip cache lookups

	// AssetsVersion is mixed into cache keys; see AssetFingerprint.
	AssetsVersion string `json:"-"`

	// Runtime options (not serialized)
	Logger *log.Logger      `json:"-"`
	Now    func() time.Time `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// SceneHash is the content hash of the rendered scene.
	SceneHash string

	// FrameKey is the cache key of the frame. It covers the scene, the
	// time, the values, the output options and the assets.
	FrameKey string

	// Clock is the time the frame shows after clamping.
	Clock scene.Clock

	// Canvas is the full-size render. It is nil on a cache hit.
	Canvas *compose.Canvas

	// Data is the encoded frame.
	Data []byte

	// Format is the encoding of Data.
	Format string

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// ContentType returns the MIME type of Data.
func (r *Result) ContentType() string {
	return compose.ContentType(r.Format)
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Widgets    int
	RenderTime time.Duration
	EncodeTime time.Duration
	Bytes      int
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	FrameHit bool // Whether the encoded frame came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, jpeg)", format)
	}
	return nil
}

// ValidateSize checks an output size. Both zero means the canvas size;
// otherwise each side must be at most MaxOutputSize.
func ValidateSize(width, height int) error {
	if width < 0 || height < 0 || (width == 0) != (height == 0) {
		return errors.New(errors.ErrCodeInvalidInput, "invalid size %dx%d (set both or neither)", width, height)
	}
	if width > MaxOutputSize || height > MaxOutputSize {
		return errors.New(errors.ErrCodeInvalidInput, "size %dx%d exceeds %d per side", width, height, MaxOutputSize)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks fields and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Format == "" {
		o.Format = DefaultFormat
	}
	if o.Format == "jpg" {
		o.Format = FormatJPEG
	}
	if err := ValidateFormat(o.Format); err != nil {
		return err
	}
	if o.Preview && o.Width == 0 && o.Height == 0 {
		o.Width, o.Height = DefaultPreviewWidth, DefaultPreviewHeight
	}
	if err := ValidateSize(o.Width, o.Height); err != nil {
		return err
	}
	if _, err := render.ParseTimePolicy(o.TimePolicy); err != nil {
		return err
	}
	if o.Time != "" {
		if _, err := scene.SplitClock(o.Time); err != nil {
			return err
		}
	}
	for k := range o.Values {
		if _, ok := scene.ParseKind(k); !ok {
			if s := scene.SuggestKind(k); s != "" {
				return errors.New(errors.ErrCodeInvalidInput, "unknown value kind %q (did you mean %q?)", k, s)
			}
			return errors.New(errors.ErrCodeInvalidInput, "unknown value kind %q", k)
		}
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	o.validated = true
	return nil
}

// Policy returns the parsed time policy. Invalid names were rejected by
// ValidateAndSetDefaults and read as reject here.
func (o *Options) Policy() render.TimePolicy {
	p, _ := render.ParseTimePolicy(o.TimePolicy)
	return p
}

// State builds the render state: the requested or current time, the
// editor's sample values unless NoDefaults, then Values on top.
func (o *Options) State() (scene.State, error) {
	var clock scene.Clock
	if o.Time == "" {
		now := time.Now
		if o.Now != nil {
			now = o.Now
		}
		clock = scene.ClockOf(now())
	} else {
		c, err := scene.SplitClock(o.Time)
		if err != nil {
			return scene.State{}, err
		}
		clock = c
	}
	if o.Policy() == render.TimeClamp {
		clock = clock.Clamp()
	} else if err := clock.Validate(); err != nil {
		return scene.State{}, err
	}

	state := scene.State{Time: clock, Values: map[scene.Kind]string{}}
	if !o.NoDefaults {
		state = scene.NewState(clock)
	}
	for k, v := range o.Values {
		if !state.SetNamed(k, v) {
			return scene.State{}, errors.New(errors.ErrCodeInvalidInput, "unknown value kind %q", k)
		}
	}
	return state, nil
}

// FrameKeyOpts returns cache key options for a frame at state.
func (o *Options) FrameKeyOpts(state scene.State) cache.FrameKeyOpts {
	values := make(map[string]string, len(state.Values))
	for k, v := range state.Values {
		if !k.TimeDerived() {
			values[k.String()] = v
		}
	}
	return cache.FrameKeyOpts{
		Time:   state.Time.String(),
		Values: values,
		Format: o.Format,
		Width:  o.Width,
		Height: o.Height,
		Assets: o.AssetsVersion,
	}
}
