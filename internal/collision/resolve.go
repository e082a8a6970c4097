package collision

import "mech-arena/server/internal/coords"

// SafeMovement adjusts desired so that shape, anchored at start, ends up
// outside every solid obstacle it may collide with. Obstacles are visited
// once in order; each overlap removes the penetration along the
// minimum-penetration axis and the next obstacle is tested from the
// corrected position. Movement parallel to a surface is kept, which yields
// sliding.
func SafeMovement(start, desired coords.WorldPos, shape Shape, obstacles []Shape) coords.WorldPos {
	safe := desired
	test := shape.MovedTo(start.Add(desired))
	for _, obstacle := range obstacles {
		if !obstacle.Response.Solid() || !test.CanCollideWith(obstacle) {
			continue
		}
		m, ok := AABBvsAABB(test.Box, obstacle.Box)
		if !ok {
			continue
		}
		safe = safe.Add(m.Separation())
		test = shape.MovedTo(start.Add(safe))
	}
	return safe
}

// Separation returns the translation that moves a out of b, ignoring
// filters and responses.
func Separation(a, b Shape) (coords.WorldPos, bool) {
	m, ok := AABBvsAABB(a.Box, b.Box)
	if !ok {
		return coords.WorldPos{}, false
	}
	return m.Separation(), true
}

// Contact is one overlap between a moving shape and an obstacle.
type Contact struct {
	Index    int
	Manifold Manifold
	Response Response
	Layer    Layer
}

// Contacts lists every obstacle that overlaps shape and agrees to collide
// with it, in obstacle order.
func Contacts(shape Shape, obstacles []Shape) []Contact {
	var out []Contact
	for i, obstacle := range obstacles {
		if !shape.CanCollideWith(obstacle) {
			continue
		}
		m, ok := AABBvsAABB(shape.Box, obstacle.Box)
		if !ok {
			continue
		}
		out = append(out, Contact{Index: i, Manifold: m, Response: obstacle.Response, Layer: obstacle.Layer})
	}
	return out
}

// Action is what the host should do about a contact.
type Action struct {
	// Correction moves the colliding shape.
	Correction coords.WorldPos
	// Push moves the obstacle.
	Push      coords.WorldPos
	Damage    bool
	Triggered bool
}

// Respond maps a contact to an action. Every Response value is handled
// here and nowhere else.
func Respond(c Contact) Action {
	sep := c.Manifold.Separation()
	switch c.Response {
	case ResponseBlock:
		return Action{Correction: sep}
	case ResponseDamage:
		return Action{Correction: sep, Damage: true}
	case ResponsePush:
		half := sep.Scale(0.5)
		return Action{Correction: half, Push: half.Scale(-1)}
	case ResponseTrigger:
		return Action{Triggered: true}
	case ResponseNone:
		return Action{}
	default:
		return Action{}
	}
}

// ShouldCauseRunOverDamage reports whether a body moving with velocity
// from position is driving into target fast enough to hurt it.
func ShouldCauseRunOverDamage(velocity, position, target coords.WorldPos, minSpeed float64) bool {
	speed := velocity.Magnitude()
	if speed < minSpeed || speed == 0 {
		return false
	}
	toTarget := target.Sub(position)
	if toTarget.IsZero() {
		return false
	}
	return velocity.Normalize().Dot(toTarget.Normalize()) > 0.5
}
