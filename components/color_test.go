package components

import (
	"math"
	"testing"
)

func TestColorFromSize(t *testing.T) {
	tests := []struct {
		name    string
		size    float64
		r, g, b float64 // 0-255 space
	}{
		{"large", 5, 0, -150, 255},
		{"small", 0.1, 100.5, 80.5, 0},
		{"one", 1, 105, 85, 0},
		{"two", 2, 50, 30, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ColorFromSize(tt.size)
			want := RGB(tt.r, tt.g, tt.b)
			if math.Abs(got.R-want.R) > 1e-9 || math.Abs(got.G-want.G) > 1e-9 || math.Abs(got.B-want.B) > 1e-9 {
				t.Errorf("ColorFromSize(%v) = %+v, want %+v", tt.size, got, want)
			}
		})
	}
}

func TestColorFromSizeRedNeverNegative(t *testing.T) {
	for s := 0.0; s < 20; s += 0.25 {
		c := ColorFromSize(s)
		if c.R < 0 {
			t.Fatalf("size %v produced negative red %v", s, c.R)
		}
		if c.B < 0 || c.B > 1 {
			t.Fatalf("size %v produced blue %v outside [0,1]", s, c.B)
		}
	}
}

func TestRGBA8Clamps(t *testing.T) {
	r, g, b, a := ColorFromSize(5).RGBA8(2)
	if r != 0 || g != 0 || b != 255 || a != 255 {
		t.Errorf("RGBA8 = (%d, %d, %d, %d), want (0, 0, 255, 255)", r, g, b, a)
	}
}
