package telemetry

// LifetimeStats tracks one actor from spawn to deletion.
type LifetimeStats struct {
	Label     string
	BirthTick int32
	KillTick  int32 // -1 while alive
}

// LifetimeTracker manages per-actor lifetime statistics.
type LifetimeTracker struct {
	stats map[uint64]*LifetimeStats
}

// NewLifetimeTracker creates a new lifetime tracker.
func NewLifetimeTracker() *LifetimeTracker {
	return &LifetimeTracker{
		stats: make(map[uint64]*LifetimeStats),
	}
}

// Register starts tracking an actor.
func (lt *LifetimeTracker) Register(id uint64, birthTick int32, label string) {
	lt.stats[id] = &LifetimeStats{Label: label, BirthTick: birthTick, KillTick: -1}
}

// Get returns the lifetime stats for an actor, or nil if not found.
func (lt *LifetimeTracker) Get(id uint64) *LifetimeStats {
	return lt.stats[id]
}

// RecordKill stamps the first kill tick.
func (lt *LifetimeTracker) RecordKill(id uint64, tick int32) {
	if s := lt.stats[id]; s != nil && s.KillTick < 0 {
		s.KillTick = tick
	}
}

// Remove stops tracking an actor and returns its age in seconds at kill
// time (or now, if it was never killed).
func (lt *LifetimeTracker) Remove(id uint64, currentTick int32, dt float64) (float64, bool) {
	s := lt.stats[id]
	if s == nil {
		return 0, false
	}
	delete(lt.stats, id)
	end := s.KillTick
	if end < 0 {
		end = currentTick
	}
	return float64(end-s.BirthTick) * dt, true
}

// Count returns the number of tracked actors.
func (lt *LifetimeTracker) Count() int {
	return len(lt.stats)
}

// CountByLabel returns the tracked actors per label.
func (lt *LifetimeTracker) CountByLabel() map[string]int {
	out := make(map[string]int)
	for _, s := range lt.stats {
		out[s.Label]++
	}
	return out
}
