// Package config loads demo scenes from YAML or JSON files and hot-reloads
// them on change.
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"framekit/canvas"
	"framekit/hal"
	"framekit/object"
)

const (
	DefaultFPS        = 60
	DefaultWidth      = 320
	DefaultHeight     = 240
	DefaultCanvasID   = "main"
	DefaultBackground = "black"
)

var ErrInvalidScene = errors.New("config: invalid scene")

// Load reads and validates the scene at path.
func Load(path string) (*Scene, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, b)
}

// Parse decodes a scene. The path extension selects YAML (.yaml, .yml) or
// JSON. Unknown fields are rejected. The result has defaults applied and is
// validated.
func Parse(path string, data []byte) (*Scene, error) {
	jb, err := toJSON(path, data)
	if err != nil {
		return nil, err
	}

	var s Scene
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("%w: trailing data", ErrInvalidScene)
		}
		return nil, err
	}

	var set struct {
		FPS *float64 `json:"fps"`
	}
	if err := json.Unmarshal(jb, &set); err != nil {
		return nil, err
	}
	if set.FPS == nil {
		s.FPS = DefaultFPS
	}
	s.ApplyDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// ApplyDefaults fills omitted fields. The frame rate is defaulted by Parse,
// which can tell an omitted fps from an explicit zero.
func (s *Scene) ApplyDefaults() {
	if s.Canvas.ID == "" {
		s.Canvas.ID = DefaultCanvasID
	}
	if s.Canvas.Width == 0 {
		s.Canvas.Width = DefaultWidth
	}
	if s.Canvas.Height == 0 {
		s.Canvas.Height = DefaultHeight
	}
	if strings.TrimSpace(s.Background) == "" {
		s.Background = DefaultBackground
	}
}

// Validate reports the first problem found.
func (s *Scene) Validate() error {
	if !(s.FPS > 0) || math.IsInf(s.FPS, 0) {
		return fmt.Errorf("%w: fps must be > 0, got %v", ErrInvalidScene, s.FPS)
	}
	if s.Canvas.Width <= 0 || s.Canvas.Height <= 0 ||
		s.Canvas.Width > hal.MaxDimension || s.Canvas.Height > hal.MaxDimension {
		return fmt.Errorf("%w: canvas size %dx%d", ErrInvalidScene, s.Canvas.Width, s.Canvas.Height)
	}
	if _, err := canvas.ParseColor(s.Background); err != nil {
		return fmt.Errorf("%w: background: %v", ErrInvalidScene, err)
	}
	if _, err := ParseDuration("watchdog", s.Watchdog); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScene, err)
	}

	for i, o := range s.Objects {
		path := fmt.Sprintf("objects[%d]", i)
		if strings.TrimSpace(o.Type) == "" {
			return fmt.Errorf("%w: %s: type is required", ErrInvalidScene, path)
		}
		if object.Kind(o.Type) != object.KindShape {
			continue
		}
		if o.Data.Shape != "" {
			if _, ok := object.Hook(o.Data.Shape); !ok {
				return fmt.Errorf("%w: %s: unknown shape %q", ErrInvalidScene, path, o.Data.Shape)
			}
		}
		for field, style := range map[string]*string{"fill": o.Data.Fill, "stroke": o.Data.Stroke} {
			if style == nil {
				continue
			}
			if _, err := canvas.ParseColor(*style); err != nil {
				return fmt.Errorf("%w: %s.%s: %v", ErrInvalidScene, path, field, err)
			}
		}
	}
	return nil
}

// WatchdogInterval returns the parsed watchdog duration; zero disables it.
func (s *Scene) WatchdogInterval() time.Duration {
	d, _ := ParseDuration("watchdog", s.Watchdog)
	return d
}

// ObjectData converts the entry to object data bound to ctx.
func (o ObjectConfig) ObjectData(ctx canvas.Context) object.Data {
	d := object.Data{
		X:          object.FromPtr(o.Data.X),
		Y:          object.FromPtr(o.Data.Y),
		W:          object.FromPtr(o.Data.W),
		H:          object.FromPtr(o.Data.H),
		R:          object.FromPtr(o.Data.R),
		Fill:       object.FromPtr(o.Data.Fill),
		Stroke:     object.FromPtr(o.Data.Stroke),
		Thickness:  object.FromPtr(o.Data.Thickness),
		StartAngle: object.FromPtr(o.Data.StartAngle),
		EndAngle:   object.FromPtr(o.Data.EndAngle),
		Ctx:        ctx,
	}
	if hook, ok := object.Hook(o.Data.Shape); ok {
		d.Draw = hook
	}
	return d
}

// Build creates the object described by the entry.
func (o ObjectConfig) Build(ctx canvas.Context) object.Object {
	return object.New(object.Kind(o.Type), o.ObjectData(ctx))
}

// ParseDuration parses a Go duration string; empty means zero.
func ParseDuration(field, raw string) (time.Duration, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", field, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: duration must be >= 0", field)
	}
	return d, nil
}
