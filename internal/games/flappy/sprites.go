package flappy

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"
	"sync"

	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Sprite dimensions in pixels (art is drawn at 2x).
const (
	BirdWidth     = 68
	BirdHeight    = 48
	PipeWidth     = 104
	PipeHeight    = 640
	pipeCapHeight = 48
	pipeInset     = 4
	spriteScale   = 2
	birdFrames    = 3
)

// Sprites holds the collision masks for every animation frame and both
// barrier halves. Masks are never mutated after construction, so one set
// may be shared by concurrent episodes.
type Sprites struct {
	Birds      [birdFrames]*core.Mask
	PipeTop    *core.Mask // Cap at the bottom edge, facing the gap
	PipeBottom *core.Mask // Cap at the top edge, facing the gap
}

var (
	defaultSprites     *Sprites
	defaultSpritesOnce sync.Once
)

// DefaultSprites returns the built-in silhouettes.
func DefaultSprites() *Sprites {
	defaultSpritesOnce.Do(func() {
		s := &Sprites{}
		for i := range s.Birds {
			s.Birds[i] = birdSilhouette(i)
		}
		s.PipeBottom = pipeSilhouette()
		s.PipeTop = s.PipeBottom.FlipVertical()
		defaultSprites = s
	})
	return defaultSprites
}

// birdSilhouette draws the bird body with the wing in one of three poses:
// 0 = up, 1 = level, 2 = down.
func birdSilhouette(frame int) *core.Mask {
	m := core.NewMask(BirdWidth, BirdHeight)
	m.FillEllipse(32, 26, 28, 20)
	m.FillRect(core.NewRect(54, 24, 14, 10)) // beak
	m.FillRect(core.NewRect(0, 18, 6, 12))   // tail

	wingY := [birdFrames]float64{14, 26, 38}
	m.FillEllipse(22, wingY[frame], 14, 9)
	return m
}

// pipeSilhouette draws a bottom pipe: a full-width cap over a narrower body.
func pipeSilhouette() *core.Mask {
	m := core.NewMask(PipeWidth, PipeHeight)
	m.FillRect(core.NewRect(0, 0, PipeWidth, pipeCapHeight))
	m.FillRect(core.NewRect(pipeInset, pipeCapHeight, PipeWidth-2*pipeInset, PipeHeight-pipeCapHeight))
	return m
}

// LoadSprites reads bird1.png, bird2.png, bird3.png and pipe.png from dir,
// scales them 2x and thresholds their alpha channel into masks.
func LoadSprites(dir string) (*Sprites, error) {
	s := &Sprites{}
	for i := range s.Birds {
		m, err := loadMask(filepath.Join(dir, fmt.Sprintf("bird%d.png", i+1)))
		if err != nil {
			return nil, err
		}
		s.Birds[i] = m
	}

	pipe, err := loadMask(filepath.Join(dir, "pipe.png"))
	if err != nil {
		return nil, err
	}
	s.PipeBottom = pipe
	s.PipeTop = pipe.FlipVertical()

	h := s.Birds[0].Height()
	for i, b := range s.Birds {
		if b.Height() != h {
			return nil, fmt.Errorf("flappy: bird%d.png height %d differs from bird1.png height %d", i+1, b.Height(), h)
		}
	}
	return s, nil
}

func loadMask(path string) (*core.Mask, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("flappy: open sprite: %w", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("flappy: decode %s: %w", path, err)
	}
	return core.MaskFromImage(img).Scale(spriteScale), nil
}

// Bird returns the mask for an animation frame.
func (s *Sprites) Bird(frame int) *core.Mask {
	return s.Birds[core.Clamp(frame, 0, birdFrames-1)]
}

// BirdHeight returns the height shared by every bird frame.
func (s *Sprites) BirdHeight() int {
	return s.Birds[0].Height()
}

// PipeWidth returns the barrier width.
func (s *Sprites) PipeWidth() int {
	return s.PipeBottom.Width()
}
