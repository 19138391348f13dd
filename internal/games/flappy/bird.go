package flappy

import "github.com/vovakirdan/flappy-evo/internal/config"

// noseDiveTilt pins the wings in the level pose once the bird points down this far.
const noseDiveTilt = -80

// Bird is one agent's kinematic state. X is fixed for the whole episode;
// pipes move instead.
type Bird struct {
	X         float64
	Y         float64
	Vel       float64 // Velocity set by the last impulse
	TickCount int     // Ticks since the last impulse
	Height    float64 // Y at the last impulse, reference for the tilt rule
	Tilt      float64 // Degrees, positive = nose up

	frame    int // Current animation frame, selects the collision mask
	imgCount int

	cfg config.BirdConfig
}

// NewBird places a bird at the configured start position.
func NewBird(cfg config.BirdConfig) Bird {
	return Bird{
		X:      cfg.StartX,
		Y:      cfg.StartY,
		Height: cfg.StartY,
		cfg:    cfg,
	}
}

// Jump applies an impulse.
func (b *Bird) Jump() {
	b.Vel = b.cfg.JumpVelocity
	b.TickCount = 0
	b.Height = b.Y
}

// Move integrates one tick and returns the applied displacement.
func (b *Bird) Move() float64 {
	b.TickCount++
	t := float64(b.TickCount)

	d := b.Vel*t + b.cfg.Accel*t*t
	if d >= b.cfg.TerminalDisplacement {
		d = b.cfg.TerminalDisplacement
	}
	if d < 0 {
		d -= b.cfg.RiseBonus
	}

	b.Y += d

	if d < 0 || b.Y < b.Height+b.cfg.TiltWindow {
		if b.Tilt < b.cfg.MaxRotation {
			b.Tilt = b.cfg.MaxRotation
		}
	} else if b.Tilt > b.cfg.MinTilt {
		b.Tilt -= b.cfg.RotationVelocity
	}

	return d
}

// Animate advances the wing animation by one tick. Frames cycle
// up, level, down, level every AnimationTime ticks.
func (b *Bird) Animate() {
	at := b.cfg.AnimationTime
	b.imgCount++

	switch {
	case b.imgCount < at:
		b.frame = 0
	case b.imgCount < at*2:
		b.frame = 1
	case b.imgCount < at*3:
		b.frame = 2
	case b.imgCount < at*4:
		b.frame = 1
	case b.imgCount == at*4+1:
		b.frame = 0
		b.imgCount = 0
	}

	if b.Tilt <= noseDiveTilt {
		b.frame = 1
		b.imgCount = at * 2
	}
}

// Frame returns the current animation frame.
func (b *Bird) Frame() int {
	return b.frame
}
