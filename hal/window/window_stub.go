//go:build !cgo

package window

import (
	"context"
	"errors"

	"framekit/canvas"
	"framekit/hal"
)

var errNoCgo = errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")

func Run(_ context.Context, _ hal.Driver, c *canvas.Canvas, fb *hal.MemFramebuffer, cfg Config) error {
	if err := cfg.withDefaults().validate(c, fb); err != nil {
		return err
	}
	return errNoCgo
}

type Screen struct{}

func (Screen) ScreenSize() (int, int) { return 0, 0 }
