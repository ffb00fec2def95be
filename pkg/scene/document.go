package scene

import (
	"github.com/wfstudio/wfrender/pkg/errors"
)

// Document is a watch-face scene: an optional background and the ordered
// widget list. Renderers treat it as read-only.
type Document struct {
	// Background is the asset name of the background image; empty for none.
	Background string

	// Widgets in paint order.
	Widgets []Widget

	// Unsupported holds scene items no widget type covers, in file order.
	// They are never drawn and are written back after the widgets.
	Unsupported []map[string]any

	// Meta carries top-level scene-file fields the renderer ignores
	// (name, author, deviceId, preview, ...).
	Meta map[string]any
}

// Name returns the scene's "name" metadata, or "" when unset.
func (d *Document) Name() string {
	if s, ok := d.Meta["name"].(string); ok {
		return s
	}
	return ""
}

// Hands returns the document's analog hands widget, or nil.
func (d *Document) Hands() *HandsWidget {
	for _, w := range d.Widgets {
		if h, ok := w.(*HandsWidget); ok {
			return h
		}
	}
	return nil
}

// Validate reports the first structural problem in d as a MALFORMED_SCENE
// error. A nil document is malformed.
func (d *Document) Validate() error {
	if d == nil {
		return errors.New(errors.ErrCodeMalformedScene, "scene document is nil")
	}
	if d.Background != "" {
		if err := errors.ValidateAssetName(d.Background); err != nil {
			return errors.Wrap(errors.ErrCodeMalformedScene, err, "background")
		}
	}

	hands := 0
	for i, w := range d.Widgets {
		switch w := w.(type) {
		case nil:
			return errors.New(errors.ErrCodeMalformedScene, "widget %d is nil", i)
		case *DigitWidget:
			if w == nil {
				return errors.New(errors.ErrCodeMalformedScene, "widget %d is nil", i)
			}
			if err := validateDigit(w); err != nil {
				return errors.Wrap(errors.ErrCodeMalformedScene, err, "widget %d (%s)", i, w.Label())
			}
		case *HandsWidget:
			if w == nil {
				return errors.New(errors.ErrCodeMalformedScene, "widget %d is nil", i)
			}
			hands++
			if hands > 1 {
				return errors.New(errors.ErrCodeMalformedScene, "widget %d: a scene has at most one hands widget", i)
			}
			if err := validateHands(w); err != nil {
				return errors.Wrap(errors.ErrCodeMalformedScene, err, "widget %d (hands)", i)
			}
		default:
			return errors.New(errors.ErrCodeMalformedScene, "widget %d has unsupported type %T", i, w)
		}
	}
	return nil
}

func validateDigit(w *DigitWidget) error {
	if !w.Kind.Valid() {
		return errors.New(errors.ErrCodeInvalidInput, "unknown kind %d", int(w.Kind))
	}
	switch w.Align {
	case AlignLeft, AlignCenter, AlignRight:
	default:
		return errors.New(errors.ErrCodeInvalidInput, "unknown alignment %d", int(w.Align))
	}
	if w.Box.W < 0 || w.Box.H < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "negative box size %dx%d", w.Box.W, w.Box.H)
	}
	if w.Font != "" {
		if err := errors.ValidateAssetName(w.Font); err != nil {
			return err
		}
	}
	return nil
}

func validateHands(w *HandsWidget) error {
	for _, sh := range w.Hands() {
		if err := errors.ValidateAssetName(sh.Hand.Image); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidAssetName, err, "%s hand", sh.Slot)
		}
	}
	return nil
}
