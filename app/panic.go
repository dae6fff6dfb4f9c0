package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"framekit/canvas"
	"framekit/internal/logx"
	"framekit/kernel"
)

const (
	panicLineHeight = 10
	panicBaseline   = 8
	panicGlyphWidth = 6
)

type textMeasurer interface {
	MeasureText(text string) int
}

// onPanic records a recovered callback panic and paints it over the canvas.
// The loop that panicked is left Failed for the watchdog.
func (s *System) onPanic(info kernel.PanicInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := info
	s.lastPanic = &p
	s.log.Error("frame callback panic", logx.String("source", info.Source), logx.Any("panic", fmt.Sprint(info.Value)))

	if ctx := s.cv.Context(); ctx != nil {
		s.paintPanic(ctx, info)
	}
}

// paintPanic draws the panic screen. The context that panicked may panic
// again; that is logged and the screen is left as is.
func (s *System) paintPanic(ctx canvas.Context, info kernel.PanicInfo) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("panic screen failed", logx.Any("panic", fmt.Sprint(r)))
		}
	}()
	drawPanic(ctx, info)
	_ = s.fb.Present()
}

func drawPanic(ctx canvas.Context, info kernel.PanicInfo) {
	canvas.Background("white", ctx)
	tc, ok := ctx.(canvas.TextContext)
	if !ok {
		return
	}

	glyph := panicGlyphWidth
	if m, ok := ctx.(textMeasurer); ok {
		if w := m.MeasureText("0"); w > 0 {
			glyph = w
		}
	}
	c := ctx.Canvas()
	cols := c.Width / glyph
	if cols <= 0 {
		cols = 1
	}

	tc.SetFillStyle("black")
	y := 0
	for _, line := range panicLines(info) {
		for len(line) > 0 {
			if y+panicLineHeight > c.Height {
				return
			}
			chunk, rest := takeRunes(line, cols)
			tc.FillText(chunk, 0, float64(y+panicBaseline))
			y += panicLineHeight
			line = strings.TrimLeft(rest, " ")
		}
	}
}

func panicLines(info kernel.PanicInfo) []string {
	lines := []string{
		"panic:",
		"source: " + info.Source,
		fmt.Sprintf("value: %v", info.Value),
	}
	if len(info.Stack) == 0 {
		return append(lines, "stack: unavailable")
	}
	lines = append(lines, "stack:")
	for _, line := range strings.Split(string(info.Stack), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// takeRunes splits s after n runes.
func takeRunes(s string, n int) (prefix, rest string) {
	if n <= 0 || s == "" {
		return "", s
	}
	i, count := 0, 0
	for i < len(s) && count < n {
		_, size := utf8.DecodeRuneInString(s[i:])
		i += size
		count++
	}
	return s[:i], s[i:]
}
