package scene

import (
	"image"
	"testing"

	"github.com/wfstudio/wfrender/pkg/errors"
)

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v; want %v", k.String(), got, ok, k)
		}
	}

	if k, ok := ParseKind("HeartRate"); !ok || k != KindHeartRate {
		t.Errorf("ParseKind should be case-insensitive, got %v %v", k, ok)
	}
	if _, ok := ParseKind("altitude"); ok {
		t.Error("ParseKind(altitude) should fail")
	}
	if len(Kinds()) != 15 {
		t.Errorf("len(Kinds()) = %d, want 15", len(Kinds()))
	}
}

func TestSuggestKind(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"heartrat", "heartrate"},
		{"stpe", "step"},
		{"batery", "battery"},
		{"completely-different", ""},
	}
	for _, tt := range tests {
		if got := SuggestKind(tt.in); got != tt.want {
			t.Errorf("SuggestKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTimeDerived(t *testing.T) {
	derived := map[Kind]bool{KindTime: true, KindHour: true, KindMin: true, KindSecond: true, KindAPM: true}
	for _, k := range Kinds() {
		if k.TimeDerived() != derived[k] {
			t.Errorf("%v.TimeDerived() = %v, want %v", k, k.TimeDerived(), derived[k])
		}
	}
}

func TestParseAlign(t *testing.T) {
	tests := []struct {
		in   string
		want Align
		ok   bool
	}{
		{"", AlignLeft, true},
		{"left", AlignLeft, true},
		{"Center", AlignCenter, true},
		{"right", AlignRight, true},
		{"justify", 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseAlign(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ParseAlign(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestParseClock(t *testing.T) {
	tests := []struct {
		in      string
		want    Clock
		wantErr bool
	}{
		{"03:00:00", Clock{3, 0, 0}, false},
		{"10:08", Clock{10, 8, 0}, false},
		{"23:59:59", Clock{23, 59, 59}, false},
		{"25:00:00", Clock{}, true},
		{"12:60", Clock{}, true},
		{"noon", Clock{}, true},
		{"1:2:3:4", Clock{}, true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseClock(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if err != nil {
			if !errors.Is(err, errors.ErrCodeInvalidTime) {
				t.Errorf("ParseClock(%q) code = %v, want INVALID_TIME", tt.in, errors.GetCode(err))
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParseClock(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSplitClock(t *testing.T) {
	got, err := SplitClock("25:61")
	if err != nil || got != (Clock{Hour: 25, Minute: 61}) {
		t.Errorf("SplitClock(25:61) = %v, %v", got, err)
	}
	if _, err := SplitClock("x:1"); !errors.Is(err, errors.ErrCodeInvalidTime) {
		t.Errorf("SplitClock(x:1) err = %v, want INVALID_TIME", err)
	}
}

func TestClockClamp(t *testing.T) {
	got := Clock{Hour: 25, Minute: -3, Second: 61}.Clamp()
	want := Clock{Hour: 23, Minute: 0, Second: 59}
	if got != want {
		t.Errorf("Clamp() = %v, want %v", got, want)
	}
	if err := (Clock{Hour: 25}).Validate(); err == nil {
		t.Error("hour 25 should not validate")
	}
}

func TestStateDerived(t *testing.T) {
	s := State{Time: Clock{Hour: 7, Minute: 5, Second: 9}, Values: map[Kind]string{
		KindTime:      "99:99",
		KindHeartRate: "128",
	}}

	got := s.Derived()
	want := map[Kind]string{
		KindTime:      "07:05",
		KindHour:      "07",
		KindMin:       "05",
		KindSecond:    "09",
		KindAPM:       "AM",
		KindHeartRate: "128",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("Derived()[%v] = %q, want %q", k, got[k], v)
		}
	}

	// The caller's map is untouched.
	if s.Values[KindTime] != "99:99" {
		t.Errorf("Derived() mutated Values: %q", s.Values[KindTime])
	}

	s.Time.Hour = 12
	if got := s.Derived()[KindAPM]; got != "PM" {
		t.Errorf("apm at 12:00 = %q, want PM", got)
	}
}

func TestStateSet(t *testing.T) {
	var s State
	s.Set(KindStep, "16772")
	if s.Values[KindStep] != "16772" {
		t.Errorf("Set did not store value")
	}
	if !s.SetNamed("battery", "85%") || s.Values[KindBattery] != "85%" {
		t.Error("SetNamed(battery) failed")
	}
	if s.SetNamed("altitude", "100") {
		t.Error("SetNamed(altitude) should report false")
	}
}

func TestDocumentValidate(t *testing.T) {
	pt := image.Pt(5, 20)
	tests := []struct {
		name    string
		doc     *Document
		wantErr bool
	}{
		{"nil document", nil, true},
		{"empty", &Document{}, false},
		{"digit and hands", &Document{
			Background: "files0.png",
			Widgets: []Widget{
				&DigitWidget{Kind: KindHeartRate, Box: Rect{10, 10, 50, 20}, Font: "g19"},
				&HandsWidget{Hour: &Hand{Image: "hour.png", Pivot: &pt}},
			},
		}, false},
		{"duplicate kinds allowed", &Document{Widgets: []Widget{
			&DigitWidget{Kind: KindStep}, &DigitWidget{Kind: KindStep},
		}}, false},
		{"two hands widgets", &Document{Widgets: []Widget{&HandsWidget{}, &HandsWidget{}}}, true},
		{"nil widget", &Document{Widgets: []Widget{nil}}, true},
		{"bad kind", &Document{Widgets: []Widget{&DigitWidget{Kind: Kind(99)}}}, true},
		{"bad align", &Document{Widgets: []Widget{&DigitWidget{Align: Align(7)}}}, true},
		{"negative box", &Document{Widgets: []Widget{&DigitWidget{Box: Rect{W: -1}}}}, true},
		{"traversal background", &Document{Background: "../etc/passwd"}, true},
		{"traversal hand", &Document{Widgets: []Widget{&HandsWidget{Second: &Hand{Image: "../s.png"}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, errors.ErrCodeMalformedScene) {
				t.Errorf("Validate() code = %v, want MALFORMED_SCENE", errors.GetCode(err))
			}
		})
	}
}

func TestHandsOrder(t *testing.T) {
	w := &HandsWidget{
		Second: &Hand{Image: "s.png"},
		Hour:   &Hand{Image: "h.png"},
		Minute: &Hand{}, // no image: skipped
	}
	hands := w.Hands()
	if len(hands) != 2 {
		t.Fatalf("Hands() returned %d, want 2", len(hands))
	}
	if hands[0].Slot != SlotHour || hands[1].Slot != SlotSecond {
		t.Errorf("Hands() order = %v, %v", hands[0].Slot, hands[1].Slot)
	}
}

func TestDefaultDigitWidget(t *testing.T) {
	w := DefaultDigitWidget(KindWeather)
	if w.Align != AlignCenter || w.Font != "g23" || w.Box != (Rect{200, 85, 64, 16}) {
		t.Errorf("DefaultDigitWidget(weather) = %+v", w)
	}
	if len(DefaultValues()) != len(Kinds()) {
		t.Error("DefaultValues should cover every kind")
	}
}
