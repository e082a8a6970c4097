package collision

import "mech-arena/server/internal/coords"

// Response is the closed set of reactions a shape requests from whatever
// runs into it.
type Response int

const (
	ResponseBlock Response = iota
	ResponseDamage
	ResponsePush
	ResponseTrigger
	ResponseNone
)

func (r Response) String() string {
	switch r {
	case ResponseBlock:
		return "block"
	case ResponseDamage:
		return "damage"
	case ResponsePush:
		return "push"
	case ResponseTrigger:
		return "trigger"
	case ResponseNone:
		return "none"
	default:
		return "unknown"
	}
}

// Solid reports whether a response stops movement.
func (r Response) Solid() bool {
	switch r {
	case ResponseBlock, ResponseDamage, ResponsePush:
		return true
	case ResponseTrigger, ResponseNone:
		return false
	default:
		return false
	}
}

// Anchor says which point of the box a shape's position refers to.
type Anchor int

const (
	AnchorCenter Anchor = iota
	AnchorTopLeft
)

// Shape is a box with its collision category and policy.
type Shape struct {
	Box      AABB
	Layer    Layer
	Response Response
	Filter   Filter
	Anchor   Anchor
}

// PlayerShape is a square of half extent radius centred on position.
func PlayerShape(position coords.WorldPos, radius float64) Shape {
	return Shape{
		Box:      FromCenter(position, radius, radius),
		Layer:    LayerPlayer,
		Response: ResponseBlock,
		Filter:   PlayerFilter(),
		Anchor:   AnchorCenter,
	}
}

// StructureShape covers sizeTiles x sizeTiles tiles from its top-left base.
func StructureShape(base coords.WorldPos, sizeTiles int) Shape {
	edge := float64(sizeTiles) * coords.TileSize
	return Shape{
		Box:      AABB{Min: base, Max: base.Add(coords.World(edge, edge))},
		Layer:    LayerStructure,
		Response: ResponseBlock,
		Filter:   StructureFilter(),
		Anchor:   AnchorTopLeft,
	}
}

// WallShape covers a run of static wall tiles.
func WallShape(region coords.TileRegion) Shape {
	return Shape{
		Box:      AABB{Min: region.Min.ToWorld(), Max: region.Max.Offset(1, 1).ToWorld()},
		Layer:    LayerWorld,
		Response: ResponseBlock,
		Filter:   WorldFilter(),
		Anchor:   AnchorTopLeft,
	}
}

// ProjectileShape is a small damaging box centred on position.
func ProjectileShape(position coords.WorldPos, radius float64) Shape {
	return Shape{
		Box:      FromCenter(position, radius, radius),
		Layer:    LayerProjectile,
		Response: ResponseDamage,
		Filter:   ProjectileFilter(),
		Anchor:   AnchorCenter,
	}
}

// Position returns the anchored point of the box.
func (s Shape) Position() coords.WorldPos {
	switch s.Anchor {
	case AnchorTopLeft:
		return s.Box.Min
	default:
		return s.Box.Center()
	}
}

// MovedTo returns a copy of s re-anchored at position with the same size.
func (s Shape) MovedTo(position coords.WorldPos) Shape {
	w, h := s.Box.Size()
	switch s.Anchor {
	case AnchorTopLeft:
		s.Box = AABB{Min: position, Max: position.Add(coords.World(w, h))}
	default:
		s.Box = FromCenter(position, w/2, h/2)
	}
	return s
}

func (s Shape) CanCollideWith(o Shape) bool {
	return s.Filter.CanCollideWith(o.Filter)
}
