// Package telemetry tracks actor population, lifecycle events and per-phase
// tick timing in fixed windows, and writes them out as CSV.
package telemetry

// EventType identifies telemetry events.
type EventType uint8

const (
	EventSpawn EventType = iota
	EventKill
	EventDelete
	EventExplosion
	EventShot
	EventCast
	EventCastUnrecognized
)

func (t EventType) String() string {
	switch t {
	case EventSpawn:
		return "spawn"
	case EventKill:
		return "kill"
	case EventDelete:
		return "delete"
	case EventExplosion:
		return "explosion"
	case EventShot:
		return "shot"
	case EventCast:
		return "cast"
	case EventCastUnrecognized:
		return "cast_unrecognized"
	default:
		return "unknown"
	}
}

// Event is one lifecycle or gameplay occurrence.
type Event struct {
	Type    EventType
	Tick    int32
	ActorID uint64
	Label   string // actor kind or gesture name
}

// NewSpawnEvent records an actor entering the map.
func NewSpawnEvent(tick int32, id uint64, label string) Event {
	return Event{Type: EventSpawn, Tick: tick, ActorID: id, Label: label}
}

// NewKillEvent records an actor leaving the alive state.
func NewKillEvent(tick int32, id uint64, label string) Event {
	return Event{Type: EventKill, Tick: tick, ActorID: id, Label: label}
}

// NewDeleteEvent records an actor being swept from the map.
func NewDeleteEvent(tick int32, id uint64, label string) Event {
	return Event{Type: EventDelete, Tick: tick, ActorID: id, Label: label}
}

// NewCastEvent records a gesture match reaching the bridge.
func NewCastEvent(tick int32, name string, recognized bool) Event {
	t := EventCast
	if !recognized {
		t = EventCastUnrecognized
	}
	return Event{Type: t, Tick: tick, Label: name}
}
