package flappy

import (
	"math/rand"
	"testing"

	"github.com/vovakirdan/flappy-evo/internal/config"
	"github.com/vovakirdan/flappy-evo/internal/core"
)

func TestNewPipeGeometry(t *testing.T) {
	cfg := config.Default().Pipes
	sprites := DefaultSprites()
	rng := rand.New(rand.NewSource(1))

	for i := 0; i < 500; i++ {
		p := NewPipe(600, rng, cfg, sprites)
		if p.Height < 50 || p.Height >= 450 {
			t.Fatalf("gap anchor %d outside [50, 450)", p.Height)
		}
		if p.Top != p.Height-PipeHeight {
			t.Errorf("Top = %d, expected %d", p.Top, p.Height-PipeHeight)
		}
		if p.Bottom != p.Height+200 {
			t.Errorf("Bottom = %d, expected %d", p.Bottom, p.Height+200)
		}
		if p.Passed {
			t.Error("new pipe should not be passed")
		}
	}
}

func TestPipeMoveAndOffscreen(t *testing.T) {
	p := Pipe{X: 10}
	p.Move(5)
	if p.X != 5 {
		t.Errorf("X = %v after move, expected 5", p.X)
	}
	if p.Offscreen(PipeWidth) {
		t.Error("pipe still overlapping the screen reported offscreen")
	}
	p.X = -PipeWidth
	if p.Offscreen(PipeWidth) {
		t.Error("right edge exactly at 0 is not offscreen")
	}
	p.X = -PipeWidth - 1
	if !p.Offscreen(PipeWidth) {
		t.Error("pipe past the left edge should be offscreen")
	}
}

func fixedPipe(x float64, height, gap int) Pipe {
	return Pipe{X: x, Height: height, Top: height - PipeHeight, Bottom: height + gap}
}

func TestPipeCollide(t *testing.T) {
	sprites := DefaultSprites()
	pipe := fixedPipe(230, 300, 200)

	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"inside the gap", 230, 350, false},
		{"into the top cap", 230, 280, true},
		{"into the bottom cap", 230, 470, true},
		{"far to the right", 500, 100, false},
		// Bounding boxes share the corner but the bird is transparent there.
		{"box overlap without pixels", 230 + 100, 500 - 46, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b := NewBird(config.Default().Bird)
			b.X, b.Y = tc.x, tc.y
			if got := pipe.Collide(&b, sprites); got != tc.want {
				t.Errorf("Collide() = %v, expected %v", got, tc.want)
			}
		})
	}
}

func TestCollideBoxOverlapIsNotEnough(t *testing.T) {
	sprites := DefaultSprites()
	bird := sprites.Bird(0)
	pipe := sprites.PipeBottom

	ax, ay := 330, 454
	bx, by := 230, 500
	if !bird.Bounds(ax, ay).Intersects(pipe.Bounds(bx, by)) {
		t.Fatal("test setup: bounding boxes should intersect")
	}
	if Collide(bird, ax, ay, pipe, bx, by) {
		t.Error("Collide() = true for transparent corner overlap")
	}
}

func TestCollideDependsOnlyOnRelativeOffset(t *testing.T) {
	sprites := DefaultSprites()
	bird := sprites.Bird(1)
	top := sprites.PipeTop

	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 300; i++ {
		ax, ay := rng.Intn(400), rng.Intn(700)
		bx, by := ax+rng.Intn(240)-170, ay+rng.Intn(760)-700
		k, m := rng.Intn(200)-100, rng.Intn(200)-100

		moveBird := Collide(bird, ax+k, ay+m, top, bx, by)
		movePipe := Collide(bird, ax, ay, top, bx-k, by-m)
		if moveBird != movePipe {
			t.Fatalf("offset (%d,%d): moving bird = %v, moving pipe = %v", k, m, moveBird, movePipe)
		}
	}
}

func TestCollideAgreesWithMaskOverlap(t *testing.T) {
	a := core.NewMask(4, 4)
	a.Set(3, 3, true)
	b := core.NewMask(4, 4)
	b.Set(0, 0, true)

	if !Collide(a, 0, 0, b, 3, 3) {
		t.Error("single shared pixel should collide")
	}
	if Collide(a, 0, 0, b, 4, 3) {
		t.Error("adjacent pixels should not collide")
	}
}
