package flappy

import (
	"math/rand"

	"github.com/vovakirdan/flappy-evo/internal/config"
)

// Pipe is a paired top/bottom barrier with a gap between them.
type Pipe struct {
	X      float64 // Left edge, decreases every tick
	Height int     // Gap anchor: bottom edge of the top barrier
	Top    int     // Y of the top barrier sprite
	Bottom int     // Y of the bottom barrier sprite (bottom edge of the gap)
	Passed bool    // Set once when a bird gets past X; never reset
}

// NewPipe creates a pipe at x with a gap anchor drawn uniformly from
// [MinHeight, MaxHeight).
func NewPipe(x float64, rng *rand.Rand, cfg config.PipeConfig, sprites *Sprites) Pipe {
	height := cfg.MinHeight + rng.Intn(cfg.MaxHeight-cfg.MinHeight)
	return Pipe{
		X:      x,
		Height: height,
		Top:    height - sprites.PipeTop.Height(),
		Bottom: height + int(cfg.Gap),
	}
}

// Move shifts the pipe left by speed.
func (p *Pipe) Move(speed float64) {
	p.X -= speed
}

// GapTop returns the y of the upper gap edge.
func (p Pipe) GapTop() float64 {
	return float64(p.Height)
}

// GapBottom returns the y of the lower gap edge.
func (p Pipe) GapBottom() float64 {
	return float64(p.Bottom)
}

// Offscreen reports whether the right edge has crossed the left boundary.
func (p Pipe) Offscreen(width int) bool {
	return p.X+float64(width) < 0
}

// Collide reports whether the bird's current frame overlaps either barrier.
func (p Pipe) Collide(b *Bird, sprites *Sprites) bool {
	bx, by := pixel(b.X), pixel(b.Y)
	px := pixel(p.X)
	birdMask := sprites.Bird(b.Frame())

	return Collide(birdMask, bx, by, sprites.PipeTop, px, p.Top) ||
		Collide(birdMask, bx, by, sprites.PipeBottom, px, p.Bottom)
}
