package canvas

import (
	"image/color"
	"testing"
)

func TestParseColor(t *testing.T) {
	tests := []struct {
		in   string
		want color.RGBA
	}{
		{"red", color.RGBA{255, 0, 0, 255}},
		{"  Black ", color.RGBA{0, 0, 0, 255}},
		{"transparent", color.RGBA{}},
		{"#f00", color.RGBA{255, 0, 0, 255}},
		{"#00ff7f", color.RGBA{0, 255, 127, 255}},
		{"#0000ff80", color.RGBA{0, 0, 255, 128}},
		{"#fff8", color.RGBA{255, 255, 255, 136}},
		{"rgb(10, 20, 30)", color.RGBA{10, 20, 30, 255}},
		{"rgba(10,20,30,0.5)", color.RGBA{10, 20, 30, 128}},
		{"rgb(100%, 0%, 0%)", color.RGBA{255, 0, 0, 255}},
		{"hsl(120, 100%, 50%)", color.RGBA{0, 255, 0, 255}},
		{"hsl(0deg 100% 50% / 50%)", color.RGBA{255, 0, 0, 128}},
	}
	for _, tt := range tests {
		got, err := ParseColor(tt.in)
		if err != nil {
			t.Fatalf("ParseColor(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseColor(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseColorErrors(t *testing.T) {
	for _, in := range []string{"", "chartreuse-ish", "#12", "#12345", "#gggggg", "rgb(1,2)", "rgb(a,b,c)", "hsl(x,1%,1%)"} {
		if _, err := ParseColor(in); err == nil {
			t.Fatalf("ParseColor(%q) succeeded", in)
		}
	}
}

func TestColorString(t *testing.T) {
	if got := ColorString(color.RGBA{255, 0, 16, 255}); got != "#ff0010" {
		t.Fatalf("opaque = %q", got)
	}
	if got := ColorString(color.RGBA{1, 2, 3, 0}); got != "rgba(1,2,3,0.000)" {
		t.Fatalf("translucent = %q", got)
	}
}
