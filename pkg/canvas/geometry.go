// Package canvas implements the direct-manipulation layer of the automation
// editor: pointer geometry, block dragging, connection drawing and the
// controller composing them over a graph.Store.
package canvas

import (
	"math"

	"github.com/wendrick1998/supabase-conecta-brasil-sub002/pkg/models"
)

// DefaultGridSize is the snapping step used when none is configured.
const DefaultGridSize = 20

// Point is a pointer coordinate in viewport space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is the on-screen rectangle of the canvas element.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether p lies inside r. Empty rectangles contain every point.
func (r Rect) Contains(p Point) bool {
	if r.Width <= 0 || r.Height <= 0 {
		return true
	}

	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// Viewport describes the mounted canvas element.
type Viewport interface {
	Bounds() Rect
	Scroll() Point
}

// StaticViewport is a Viewport snapshot, typically reported by the client
// alongside each pointer event.
type StaticViewport struct {
	Rect   Rect  `json:"rect"`
	Offset Point `json:"scroll"`
}

func (v StaticViewport) Bounds() Rect  { return v.Rect }
func (v StaticViewport) Scroll() Point { return v.Offset }

// SnapFunc adjusts a canvas-local position, for example onto a grid.
type SnapFunc func(models.Position) models.Position

// SnapToGrid rounds positions to the nearest multiple of size. A non-positive
// size disables snapping and returns nil.
func SnapToGrid(size float64) SnapFunc {
	if size <= 0 {
		return nil
	}

	return func(p models.Position) models.Position {
		return models.Position{
			X: math.Round(p.X/size) * size,
			Y: math.Round(p.Y/size) * size,
		}
	}
}

// ToCanvas converts a viewport pointer into a canvas-local position clamped to
// be non-negative, then applies snap when given. An unmounted (nil) viewport
// yields the origin.
func ToCanvas(pointer Point, viewport Viewport, snap SnapFunc) models.Position {
	if viewport == nil {
		return models.Position{}
	}

	local := toLocal(pointer, viewport)

	return place(models.Position{X: local.X, Y: local.Y}, snap)
}

// place clamps position to the canvas origin and applies snap when given.
func place(position models.Position, snap SnapFunc) models.Position {
	position = models.Position{
		X: math.Max(0, position.X),
		Y: math.Max(0, position.Y),
	}

	if snap != nil {
		position = snap(position)
	}

	return position
}

func toLocal(pointer Point, viewport Viewport) Point {
	bounds := viewport.Bounds()
	scroll := viewport.Scroll()

	return Point{
		X: pointer.X - bounds.X + scroll.X,
		Y: pointer.Y - bounds.Y + scroll.Y,
	}
}
