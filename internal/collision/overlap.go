package collision

import (
	"math"

	"mech-arena/server/internal/coords"
)

// Body is a circular mover used when pushing bodies apart after movement.
type Body struct {
	Position coords.WorldPos
	Radius   float64
}

// Bounds limits body centres to [Radius, Width-Radius] x [Radius, Height-Radius].
type Bounds struct {
	Width  float64
	Height float64
}

// ArenaBounds covers the whole arena.
func ArenaBounds() Bounds {
	return Bounds{Width: coords.ArenaWidth, Height: coords.ArenaHeight}
}

// Clamp limits value to the range [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// CircleBoxOverlap reports whether a circle strictly overlaps box.
func CircleBoxOverlap(center coords.WorldPos, radius float64, box AABB) bool {
	closestX := Clamp(center.X, box.Min.X, box.Max.X)
	closestY := Clamp(center.Y, box.Min.Y, box.Max.Y)
	dx := center.X - closestX
	dy := center.Y - closestY
	return dx*dx+dy*dy < radius*radius
}

func (b Bounds) clamp(body *Body) {
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	body.Position.X = Clamp(body.Position.X, body.Radius, b.Width-body.Radius)
	body.Position.Y = Clamp(body.Position.Y, body.Radius, b.Height-body.Radius)
}

// PushOutOfObstacles nudges body out of every solid obstacle it overlaps.
func PushOutOfObstacles(body *Body, obstacles []Shape, bounds Bounds) {
	if body == nil {
		return
	}
	for _, obs := range obstacles {
		if !obs.Response.Solid() || !CircleBoxOverlap(body.Position, body.Radius, obs.Box) {
			continue
		}
		box := obs.Box
		closestX := Clamp(body.Position.X, box.Min.X, box.Max.X)
		closestY := Clamp(body.Position.Y, box.Min.Y, box.Max.Y)
		dx := body.Position.X - closestX
		dy := body.Position.Y - closestY
		distSq := dx*dx + dy*dy

		if distSq == 0 {
			// Centre is inside the box: leave through the nearest face.
			left := math.Abs(body.Position.X - box.Min.X)
			right := math.Abs(box.Max.X - body.Position.X)
			top := math.Abs(body.Position.Y - box.Min.Y)
			bottom := math.Abs(box.Max.Y - body.Position.Y)

			minDist := left
			direction := 0
			if right < minDist {
				minDist = right
				direction = 1
			}
			if top < minDist {
				minDist = top
				direction = 2
			}
			if bottom < minDist {
				direction = 3
			}

			switch direction {
			case 0:
				body.Position.X = box.Min.X - body.Radius
			case 1:
				body.Position.X = box.Max.X + body.Radius
			case 2:
				body.Position.Y = box.Min.Y - body.Radius
			case 3:
				body.Position.Y = box.Max.Y + body.Radius
			}
		} else {
			dist := math.Sqrt(distSq)
			if dist < body.Radius {
				overlap := body.Radius - dist
				body.Position.X += dx / dist * overlap
				body.Position.Y += dy / dist * overlap
			}
		}
		bounds.clamp(body)
	}
}

// ResolveOverlaps separates overlapping bodies pairwise while keeping them
// out of obstacles and inside bounds. It runs a few relaxation passes and
// stops early once nothing moves.
func ResolveOverlaps(bodies []*Body, obstacles []Shape, bounds Bounds) {
	if len(bodies) < 2 {
		for _, b := range bodies {
			PushOutOfObstacles(b, obstacles, bounds)
		}
		return
	}

	const iterations = 4
	for iter := 0; iter < iterations; iter++ {
		adjusted := false
		for i := 0; i < len(bodies); i++ {
			a := bodies[i]
			if a == nil {
				continue
			}
			for j := i + 1; j < len(bodies); j++ {
				b := bodies[j]
				if b == nil {
					continue
				}

				dx := b.Position.X - a.Position.X
				dy := b.Position.Y - a.Position.Y
				distSq := dx*dx + dy*dy
				minDist := a.Radius + b.Radius

				// Coincident bodies split along +X.
				dist, nx, ny := 0.0, 1.0, 0.0
				if distSq > 0 {
					dist = math.Sqrt(distSq)
					nx, ny = dx/dist, dy/dist
				}
				if dist >= minDist {
					continue
				}

				overlap := (minDist - dist) / 2
				a.Position.X -= nx * overlap
				a.Position.Y -= ny * overlap
				b.Position.X += nx * overlap
				b.Position.Y += ny * overlap

				bounds.clamp(a)
				bounds.clamp(b)
				PushOutOfObstacles(a, obstacles, bounds)
				PushOutOfObstacles(b, obstacles, bounds)
				adjusted = true
			}
		}
		if !adjusted {
			break
		}
	}
}
