package game

import (
	"log/slog"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/pthm-cable/conjure/components"
	"github.com/pthm-cable/conjure/gesture"
	"github.com/pthm-cable/conjure/render"
	"github.com/pthm-cable/conjure/telemetry"
)

// MessageKind identifies a player intent.
type MessageKind uint8

const (
	MsgForward MessageKind = iota
	MsgBackward
	MsgFire
	MsgCast
	MsgThrow
)

func (k MessageKind) String() string {
	switch k {
	case MsgForward:
		return "forward"
	case MsgBackward:
		return "backward"
	case MsgFire:
		return "fire"
	case MsgCast:
		return "cast"
	case MsgThrow:
		return "throw"
	default:
		return "unknown"
	}
}

// Message is one queued player intent. Casts carry the recognizer's matches
// and the pose of the casting hand; throws carry the hand velocity.
type Message struct {
	Kind MessageKind

	// Scale multiplies movement; zero counts as one.
	Scale float64

	Matches     []gesture.Match
	Position    r3.Vec
	Orientation quat.Number
	Anchor      render.Anchor
	Velocity    r3.Vec
}

// Recipe turns a recognized gesture into actors.
type Recipe func(p *Player, msg Message, match gesture.Match)

// Bridge queues player intents from input and applies them once per tick.
type Bridge struct {
	queue   []Message
	recipes map[string]Recipe
}

// NewBridge returns a bridge with the circle and square recipes.
func NewBridge() *Bridge {
	b := &Bridge{recipes: make(map[string]Recipe)}
	b.Register("circle", castGun)
	b.Register("square", castBox)
	return b
}

// Register binds a gesture name to a recipe, replacing any previous one.
func (b *Bridge) Register(name string, r Recipe) {
	b.recipes[name] = r
}

// Post queues a message for the next Drain.
func (b *Bridge) Post(msg Message) {
	b.queue = append(b.queue, msg)
}

// Pending returns the number of queued messages.
func (b *Bridge) Pending() int { return len(b.queue) }

// Drain applies every queued message to p and empties the queue. Messages
// posted by recipes wait for the next Drain.
func (b *Bridge) Drain(p *Player) int {
	msgs := b.queue
	b.queue = nil
	for _, msg := range msgs {
		b.apply(p, msg)
	}
	return len(msgs)
}

func (b *Bridge) apply(p *Player, msg Message) {
	m := p.actor.m
	scale := msg.Scale
	if scale == 0 {
		scale = 1
	}
	switch msg.Kind {
	case MsgForward:
		p.Move(scale)
	case MsgBackward:
		p.Move(-scale)
	case MsgFire:
		if p.Fire() {
			m.emit(telemetry.Event{Type: telemetry.EventShot, Tick: m.tick, ActorID: p.actor.ID, Label: LabelPlayer})
		}
	case MsgCast:
		if len(msg.Matches) == 0 {
			return
		}
		match := msg.Matches[0]
		recipe, ok := b.recipes[match.Name]
		if !ok {
			slog.Warn("unrecognized_spawn_request", "name", match.Name, "size", match.Size)
			m.emit(telemetry.NewCastEvent(m.tick, match.Name, false))
			return
		}
		recipe(p, msg, match)
		m.emit(telemetry.NewCastEvent(m.tick, match.Name, true))
	case MsgThrow:
		throw(p, msg)
	}
}

// castGun attaches a reversed gun to the casting hand.
func castGun(p *Player, msg Message, match gesture.Match) {
	g := NewGun(p.actor.m, GunOptions{
		SpawnOptions: SpawnOptions{
			Size:        match.Size,
			Position:    msg.Position,
			Orientation: msg.Orientation,
			Filter:      components.FilterPlayer,
		},
		AttachedTo: msg.Anchor,
		Caster:     p.actor,
		Reverse:    true,
	})
	p.addGun(g)
}

// castBox drops a free box shaped by the stroke, moving with the player.
func castBox(p *Player, msg Message, match gesture.Match) {
	pos, vel := msg.Position, p.actor.Velocity()
	a := NewActor(p.actor.m, ActorConfig{
		Label:       LabelBox,
		Shape:       components.Shape{Kind: components.ShapeBox, Size: match.Size, Width: match.Width, Height: match.Height},
		Position:    &pos,
		Velocity:    &vel,
		Orientation: msg.Orientation,
	})
	p.actor.m.AddObstacle(a)
}

// throw launches a small sphere from the hand.
func throw(p *Player, msg Message) {
	m := p.actor.m
	pos, vel := msg.Position, msg.Velocity
	life := m.cfg.Actor.ThrowLifespan
	NewActor(m, ActorConfig{
		Label:    LabelThrown,
		Position: &pos,
		Velocity: &vel,
		Lifespan: &life,
	})
}
