package collision

// Layer is a collision category.
type Layer uint8

const (
	LayerPlayer Layer = iota
	LayerStructure
	LayerProjectile
	LayerPickup
	LayerWorld
)

func (l Layer) String() string {
	switch l {
	case LayerPlayer:
		return "player"
	case LayerStructure:
		return "structure"
	case LayerProjectile:
		return "projectile"
	case LayerPickup:
		return "pickup"
	case LayerWorld:
		return "world"
	default:
		return "unknown"
	}
}

func (l Layer) bit() uint32 {
	return 1 << uint32(l)
}

// Filter pairs the layers a shape belongs to with the layers it accepts.
type Filter struct {
	Layers uint32
	Mask   uint32
}

// NewFilter builds a filter from explicit layer lists.
func NewFilter(layers []Layer, mask []Layer) Filter {
	var f Filter
	for _, l := range layers {
		f.Layers |= l.bit()
	}
	for _, l := range mask {
		f.Mask |= l.bit()
	}
	return f
}

// CanCollideWith requires both shapes to accept each other.
func (f Filter) CanCollideWith(o Filter) bool {
	return f.Mask&o.Layers != 0 && o.Mask&f.Layers != 0
}

func PlayerFilter() Filter {
	return NewFilter([]Layer{LayerPlayer}, []Layer{LayerStructure, LayerWorld})
}

func StructureFilter() Filter {
	return NewFilter([]Layer{LayerStructure}, []Layer{LayerPlayer, LayerStructure})
}

func ProjectileFilter() Filter {
	return NewFilter([]Layer{LayerProjectile}, []Layer{LayerStructure, LayerWorld})
}

// WorldFilter is used by static geometry such as exterior walls.
func WorldFilter() Filter {
	return NewFilter([]Layer{LayerWorld}, []Layer{LayerPlayer, LayerProjectile})
}

// PickupFilter never collides; pickups are found through spatial queries.
func PickupFilter() Filter {
	return NewFilter([]Layer{LayerPickup}, nil)
}
