package gesture

// Matcher tracks progress through one template.
type Matcher struct {
	template Template
	cursor   int
	faults   int
}

// NewMatcher starts a matcher at the beginning of t.
func NewMatcher(t Template) *Matcher {
	return &Matcher{template: t}
}

// Template returns the template being matched.
func (m *Matcher) Template() Template { return m.template }

// Cursor returns the number of steps matched so far.
func (m *Matcher) Cursor() int { return m.cursor }

// Faults returns the current fault count.
func (m *Matcher) Faults() int { return m.faults }

// Progress returns the matched fraction of the template.
func (m *Matcher) Progress() float64 {
	return float64(m.cursor) / float64(len(m.template.Steps))
}

// Feed advances the matcher by one step and reports whether the template is
// now complete. Zero steps are ignored. A step that repeats the last accepted
// one is tolerated without a fault. A complete matcher stays complete until
// Reset.
func (m *Matcher) Feed(d Direction) bool {
	steps := m.template.Steps
	if len(steps) == 0 {
		return false
	}
	if m.cursor == len(steps) {
		return true
	}
	if d.Zero() {
		return false
	}

	switch {
	case d == steps[m.cursor]:
		m.cursor++
		if m.faults > 0 {
			m.faults--
		}
	case m.cursor > 0 && d != steps[m.cursor-1]:
		m.faults++
		if m.faults > m.template.MaxTries {
			m.Reset()
		}
	}
	return m.cursor == len(steps)
}

// Reset moves the cursor back to the start and clears faults.
func (m *Matcher) Reset() {
	m.cursor = 0
	m.faults = 0
}
