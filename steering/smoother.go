package steering

import "gonum.org/v1/gonum/spatial/r3"

// Smoother averages the last N velocities so heading changes are gradual.
type Smoother struct {
	history []r3.Vec
	next    int
	filled  bool
}

// NewSmoother keeps count samples (at least one).
func NewSmoother(count int) *Smoother {
	if count < 1 {
		count = 1
	}
	return &Smoother{history: make([]r3.Vec, count)}
}

// Calculate records v and returns the running average.
func (s *Smoother) Calculate(v r3.Vec) r3.Vec {
	s.history[s.next] = v
	s.next++
	if s.next == len(s.history) {
		s.next = 0
		s.filled = true
	}

	n := s.next
	if s.filled {
		n = len(s.history)
	}
	var sum r3.Vec
	for _, h := range s.history[:n] {
		sum = r3.Add(sum, h)
	}
	return r3.Scale(1/float64(n), sum)
}
