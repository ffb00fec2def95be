package scene

import "image"

// Widget is one paintable element of a Document. It is implemented only by
// *DigitWidget and *HandsWidget; renderers switch over the concrete type.
type Widget interface {
	// Label names the widget in logs and errors (e.g. "heartrate", "hands").
	Label() string

	widget()
}

// Rect is an integer bounding box in canvas pixels.
type Rect struct {
	X, Y int
	W, H int
}

// DigitWidget renders the display string of its Kind as a row of glyph images.
type DigitWidget struct {
	Kind  Kind
	Box   Rect
	Align Align

	// Font is the glyph set name. Glyph folders are searched under
	// widgets/<kind>/<font>, widgets/<kind>, fonts/<font> and <font>.
	Font string

	// Extra carries scene-file attributes the renderer does not interpret
	// (fgcolor, fontnum, style, ...) so documents survive a round trip.
	Extra map[string]any
}

// Label returns the kind name.
func (w *DigitWidget) Label() string { return w.Kind.String() }

func (*DigitWidget) widget() {}

// Hand is one analog sub-hand. A nil Pivot means the image's geometric
// center; a nil Anchor means the canvas center.
type Hand struct {
	Image  string
	Pivot  *image.Point
	Anchor *image.Point
}

// present reports whether the hand has an image to draw.
func (h *Hand) present() bool {
	return h != nil && h.Image != ""
}

// HandsWidget is the analog clock: up to three optional sub-hands sharing
// one widget slot in the paint order.
type HandsWidget struct {
	Hour   *Hand
	Minute *Hand
	Second *Hand

	// Extra carries scene-file attributes the renderer does not interpret.
	Extra map[string]any
}

// Label returns "hands".
func (*HandsWidget) Label() string { return "hands" }

func (*HandsWidget) widget() {}

// HandSlot identifies one of the three sub-hands.
type HandSlot int

// Sub-hand slots in paint order.
const (
	SlotHour HandSlot = iota
	SlotMinute
	SlotSecond
)

// String returns the slot name.
func (s HandSlot) String() string {
	switch s {
	case SlotHour:
		return "hour"
	case SlotMinute:
		return "minute"
	case SlotSecond:
		return "second"
	default:
		return "unknown"
	}
}

// Hands returns the configured sub-hands in paint order (hour, minute,
// second), skipping slots without an image.
func (w *HandsWidget) Hands() []SlotHand {
	var out []SlotHand
	for _, sh := range []SlotHand{{SlotHour, w.Hour}, {SlotMinute, w.Minute}, {SlotSecond, w.Second}} {
		if sh.Hand.present() {
			out = append(out, sh)
		}
	}
	return out
}

// SlotHand pairs a sub-hand with its slot.
type SlotHand struct {
	Slot HandSlot
	Hand *Hand
}
