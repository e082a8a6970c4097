// Package collision implements the discrete narrow phase: AABB overlap,
// penetration manifolds, layer filtering and the sliding safe-movement
// solver. It does not sweep shapes, so a large enough single-tick
// displacement can pass through a thin obstacle.
package collision

import (
	"math"

	"mech-arena/server/internal/coords"
)

// AABB is an axis-aligned box. Min <= Max holds on both axes for every
// box built through NewAABB, FromCenter or Expand.
type AABB struct {
	Min coords.WorldPos `json:"min"`
	Max coords.WorldPos `json:"max"`
}

// NewAABB orders the corners so the box is never inverted.
func NewAABB(a, b coords.WorldPos) AABB {
	return AABB{
		Min: coords.World(math.Min(a.X, b.X), math.Min(a.Y, b.Y)),
		Max: coords.World(math.Max(a.X, b.X), math.Max(a.Y, b.Y)),
	}
}

// FromCenter builds a box from its centre and half extents.
func FromCenter(center coords.WorldPos, halfW, halfH float64) AABB {
	halfW = math.Abs(halfW)
	halfH = math.Abs(halfH)
	return AABB{
		Min: coords.World(center.X-halfW, center.Y-halfH),
		Max: coords.World(center.X+halfW, center.Y+halfH),
	}
}

// Intersects reports strict overlap; boxes that only share an edge do not
// intersect.
func (b AABB) Intersects(o AABB) bool {
	return b.Min.X < o.Max.X && b.Max.X > o.Min.X &&
		b.Min.Y < o.Max.Y && b.Max.Y > o.Min.Y
}

// ContainsPoint is inclusive of the boundary.
func (b AABB) ContainsPoint(p coords.WorldPos) bool {
	return p.X >= b.Min.X && p.X <= b.Max.X && p.Y >= b.Min.Y && p.Y <= b.Max.Y
}

func (b AABB) Center() coords.WorldPos {
	return coords.World((b.Min.X+b.Max.X)/2, (b.Min.Y+b.Max.Y)/2)
}

// Size returns width and height.
func (b AABB) Size() (float64, float64) {
	return b.Max.X - b.Min.X, b.Max.Y - b.Min.Y
}

// Expand grows the box by amount on every side. Negative amounts shrink it
// but never past its centre.
func (b AABB) Expand(amount float64) AABB {
	w, h := b.Size()
	if amount < 0 {
		amount = math.Max(amount, -math.Min(w, h)/2)
	}
	return AABB{
		Min: coords.World(b.Min.X-amount, b.Min.Y-amount),
		Max: coords.World(b.Max.X+amount, b.Max.Y+amount),
	}
}

func (b AABB) Translate(d coords.WorldPos) AABB {
	return AABB{Min: b.Min.Add(d), Max: b.Max.Add(d)}
}

// Manifold describes how two overlapping boxes interpenetrate. Normal is a
// unit axis pointing from the first box toward the second; moving the
// first box by -Normal*Depth separates them.
type Manifold struct {
	Normal  coords.WorldPos `json:"normal"`
	Depth   float64         `json:"depth"`
	Contact coords.WorldPos `json:"contact"`
}

// Separation is the translation that moves the first box out of the second.
func (m Manifold) Separation() coords.WorldPos {
	return m.Normal.Scale(-m.Depth)
}

// AABBvsAABB computes the minimum-penetration manifold for a against b.
// ok is false when the boxes do not intersect.
func AABBvsAABB(a, b AABB) (Manifold, bool) {
	if !a.Intersects(b) {
		return Manifold{}, false
	}

	overlapX := math.Min(a.Max.X-b.Min.X, b.Max.X-a.Min.X)
	overlapY := math.Min(a.Max.Y-b.Min.Y, b.Max.Y-a.Min.Y)
	ac, bc := a.Center(), b.Center()

	var m Manifold
	if overlapX < overlapY {
		m.Depth = overlapX
		m.Normal = coords.World(axisSign(ac.X, bc.X), 0)
	} else {
		m.Depth = overlapY
		m.Normal = coords.World(0, axisSign(ac.Y, bc.Y))
	}
	m.Contact = coords.World(
		(math.Min(a.Max.X, b.Max.X)+math.Max(a.Min.X, b.Min.X))/2,
		(math.Min(a.Max.Y, b.Max.Y)+math.Max(a.Min.Y, b.Min.Y))/2,
	)
	return m, true
}

func axisSign(from, to float64) float64 {
	if from < to {
		return 1
	}
	return -1
}
