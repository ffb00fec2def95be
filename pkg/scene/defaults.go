package scene

// DefaultValues returns the preview values the editor shows before any live
// reading is supplied.
func DefaultValues() map[Kind]string {
	return map[Kind]string{
		KindTime:      "10:08",
		KindDate:      "09/21",
		KindWeek:      "TUE",
		KindDay:       "21",
		KindSecond:    "36",
		KindHour:      "10",
		KindMin:       "08",
		KindYear:      "2023",
		KindHeartRate: "128",
		KindCalorie:   "327",
		KindDistance:  "10.22",
		KindStep:      "16772",
		KindBattery:   "85%",
		KindWeather:   "25oC",
		KindAPM:       "PM",
	}
}

// DefaultClock is the preview time used when none is given (10:08:36).
var DefaultClock = Clock{Hour: 10, Minute: 8, Second: 36}

type layoutDefault struct {
	box   Rect
	align Align
	font  string
}

// defaultLayouts are the authoring defaults for a 320x385 canvas.
var defaultLayouts = map[Kind]layoutDefault{
	KindTime:      {Rect{24, 261, 173, 51}, AlignLeft, "g13"},
	KindDate:      {Rect{79, 333, 84, 24}, AlignLeft, "g14"},
	KindWeek:      {Rect{181, 333, 59, 24}, AlignLeft, "week"},
	KindDay:       {Rect{135, 291, 51, 32}, AlignLeft, "g15"},
	KindSecond:    {Rect{219, 261, 77, 51}, AlignLeft, "g24"},
	KindHour:      {Rect{16, 46, 133, 104}, AlignLeft, "g16"},
	KindMin:       {Rect{16, 150, 136, 104}, AlignLeft, "g17"},
	KindYear:      {Rect{99, 265, 64, 21}, AlignLeft, "g18"},
	KindHeartRate: {Rect{203, 250, 40, 16}, AlignLeft, "g19"},
	KindCalorie:   {Rect{48, 337, 67, 28}, AlignLeft, "g20"},
	KindDistance:  {Rect{72, 202, 37, 16}, AlignLeft, "distance"},
	KindStep:      {Rect{48, 269, 80, 28}, AlignLeft, "g21"},
	KindBattery:   {Rect{203, 292, 59, 16}, AlignLeft, "g22"},
	KindWeather:   {Rect{200, 85, 64, 16}, AlignCenter, "g23"},
	KindAPM:       {Rect{101, 296, 37, 16}, AlignLeft, "apm"},
}

// DefaultDigitWidget returns the authoring default layout for kind. These
// are starting positions for new widgets, not something the renderer applies.
func DefaultDigitWidget(kind Kind) *DigitWidget {
	d, ok := defaultLayouts[kind]
	if !ok {
		return &DigitWidget{Kind: kind, Box: Rect{W: 50, H: 20}, Font: kind.String()}
	}
	return &DigitWidget{Kind: kind, Box: d.box, Align: d.align, Font: d.font}
}
