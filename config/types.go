package config

// Scene describes what the demo draws and how fast.
//
// Durations are Go duration strings ("500ms", "2s").
//
// Defaults (when fields are omitted/zero):
//   - fps: 60
//   - canvas: id "main", 320x240
//   - background: "black"
//   - watchdog: "0s" (stalled loops are left alone)
type Scene struct {
	FPS        float64      `json:"fps,omitempty"`
	Canvas     CanvasConfig `json:"canvas"`
	Background string       `json:"background,omitempty"`

	// Overlay draws the measured frame rate in the top-left corner.
	Overlay bool `json:"overlay,omitempty"`

	// Watchdog, when non-zero, is how often the demo checks for a stalled or
	// failed frame loop and restarts it.
	Watchdog string `json:"watchdog,omitempty"`

	Objects []ObjectConfig `json:"objects"`
}

type CanvasConfig struct {
	ID         string `json:"id,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	FullScreen bool   `json:"fullscreen,omitempty"`
}

// ObjectConfig is one entry of the objects list. Type is the object kind tag
// ("canvas shape", "math", "comp" or anything else).
type ObjectConfig struct {
	Type string     `json:"type"`
	Data DataConfig `json:"data"`
}

// DataConfig mirrors object.Data. Pointer fields distinguish an omitted field
// (null) from an explicit zero.
type DataConfig struct {
	X          *float64 `json:"x,omitempty"`
	Y          *float64 `json:"y,omitempty"`
	W          *float64 `json:"w,omitempty"`
	H          *float64 `json:"h,omitempty"`
	R          *float64 `json:"r,omitempty"`
	Fill       *string  `json:"fill,omitempty"`
	Thickness  *float64 `json:"thickness,omitempty"`
	Stroke     *string  `json:"stroke,omitempty"`
	StartAngle *float64 `json:"startAngle,omitempty"`
	EndAngle   *float64 `json:"endAngle,omitempty"`

	// Shape names the draw hook: rect, square, circle or arc.
	Shape string `json:"shape,omitempty"`

	// Hue, when set, cycles the fill color around the HSV wheel at this many
	// degrees per second, replacing fill.
	Hue *float64 `json:"hue,omitempty"`
}
