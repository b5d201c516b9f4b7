package audio

import "time"

// clip describes a synthesized stand-in for a recorded sample.
type clip struct {
	freq     float64       // base tone in Hz
	duration time.Duration // length of one play when not looping
}

var clips = map[string]clip{
	"woosh01":     {freq: 180, duration: 1500 * time.Millisecond},
	"explosion01": {freq: 55, duration: 1200 * time.Millisecond},
	"cast01":      {freq: 660, duration: 400 * time.Millisecond},
	"music01":     {freq: 220, duration: 8 * time.Second},
}

// Clips returns the names of the known clips.
func Clips() []string {
	return []string{"cast01", "explosion01", "music01", "woosh01"}
}
