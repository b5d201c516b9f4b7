package components

// Collision groups. Masks list the groups a member accepts contacts from.
const (
	GroupWorld  uint16 = 1
	GroupPlayer uint16 = 2
	GroupAgent  uint16 = 4

	MaskAll    uint16 = 0xFFFF
	MaskPlayer uint16 = GroupWorld | GroupAgent
	MaskAgent  uint16 = GroupWorld | GroupPlayer
)

// CollisionFilter is a group/mask pair. The zero value is treated as FilterWorld.
type CollisionFilter struct {
	Group uint16
	Mask  uint16
}

var (
	// FilterWorld is used by static geometry and free projectiles.
	FilterWorld = CollisionFilter{Group: GroupWorld, Mask: MaskAll}
	// FilterPlayer is used by the player body and the player's projectiles.
	FilterPlayer = CollisionFilter{Group: GroupPlayer, Mask: MaskPlayer}
	// FilterAgent is used by AI agents, drivers and their projectiles.
	FilterAgent = CollisionFilter{Group: GroupAgent, Mask: MaskAgent}
	// FilterNone never collides with anything.
	FilterNone = CollisionFilter{Group: GroupWorld, Mask: 0}
)

// OrDefault returns FilterWorld for the zero value and f otherwise.
func (f CollisionFilter) OrDefault() CollisionFilter {
	if f == (CollisionFilter{}) {
		return FilterWorld
	}
	return f
}

// Accepts reports whether bodies carrying f and o generate contacts.
func (f CollisionFilter) Accepts(o CollisionFilter) bool {
	return f.Mask&o.Group != 0 && o.Mask&f.Group != 0
}
