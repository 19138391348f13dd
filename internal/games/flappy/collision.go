package flappy

import (
	"math"

	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Collide reports whether mask a placed at (ax, ay) and mask b placed at
// (bx, by) share at least one opaque pixel. Bounding boxes are compared
// first; the mask overlap is the authoritative test.
func Collide(a *core.Mask, ax, ay int, b *core.Mask, bx, by int) bool {
	if !a.Bounds(ax, ay).Intersects(b.Bounds(bx, by)) {
		return false
	}
	_, _, ok := a.Overlap(b, bx-ax, by-ay)
	return ok
}

// pixel snaps a world coordinate to the pixel grid, rounding halves to even.
func pixel(v float64) int {
	return int(math.RoundToEven(v))
}
