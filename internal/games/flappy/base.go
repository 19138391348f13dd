package flappy

// BaseWidth is the width of one ground tile.
const BaseWidth = 672

// Base is the scrolling ground: two tiles that leapfrog each other.
// It is decoration only and has no effect on the simulation.
type Base struct {
	X1, X2 float64
}

// NewBase places the two tiles side by side.
func NewBase() Base {
	return Base{X1: 0, X2: BaseWidth}
}

// Move scrolls both tiles left and wraps whichever left the screen.
func (b *Base) Move(speed float64) {
	b.X1 -= speed
	b.X2 -= speed

	if b.X1+BaseWidth < 0 {
		b.X1 = b.X2 + BaseWidth
	}
	if b.X2+BaseWidth < 0 {
		b.X2 = b.X1 + BaseWidth
	}
}
