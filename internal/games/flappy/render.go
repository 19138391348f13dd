package flappy

import (
	"fmt"
	"math"

	"github.com/vovakirdan/flappy-evo/internal/core"
)

// Glyphs used by Render.
const (
	LeadBirdChar  = '◉'
	BirdChar      = '●'
	DiveBirdChar  = '▼'
	PipeChar      = '█'
	PipeCapTop    = '▄'
	PipeCapBottom = '▀'
	GroundChar    = '▓'
	GroundAltChar = '▒'
)

// groundStripe is the width in world pixels of one ground stripe.
const groundStripe = 24

// Render projects a snapshot onto dst. Row 0 holds the HUD; the playfield
// is scaled to fill the remaining rows.
func Render(dst *core.Screen, snap Snapshot) {
	dst.Clear()

	w, h := dst.Width(), dst.Height()
	pf := snap.Playfield
	if w <= 0 || h <= 1 || pf.Width <= 0 || pf.Height <= 0 {
		return
	}

	sx := float64(w) / float64(pf.Width)
	sy := float64(h-1) / float64(pf.Height)
	col := func(x float64) int { return int(math.Floor(x * sx)) }
	row := func(y float64) int { return 1 + int(math.Floor(y*sy)) }

	ground := row(pf.GroundY)
	drawGround(dst, snap.Base, ground, sx)

	for _, p := range snap.Pipes {
		drawPipe(dst, p, col(p.X), core.Max(col(p.X+float64(snap.PipeWidth)), col(p.X)+1), row(float64(p.Height)), row(float64(p.Bottom)), ground)
	}

	// Lead bird drawn last so it stays on top.
	for i := len(snap.Birds) - 1; i >= 0; i-- {
		b := snap.Birds[i]
		x := col(b.X + float64(snap.BirdWidth)/2)
		y := row(b.Y + float64(snap.BirdHeight)/2)

		glyph, color := BirdChar, core.ColorYellow
		if b.Tilt <= noseDiveTilt {
			glyph = DiveBirdChar
		}
		if i == 0 {
			glyph, color = LeadBirdChar, core.ColorBrightYellow
		}
		dst.SetColored(x, y, glyph, color)
	}

	hud := fmt.Sprintf(" Gen %d  Score %d  Alive %d/%d  Best %.1f  Tick %d ",
		snap.Generation, snap.Score, snap.Alive, snap.Population, snap.BestFitness, snap.Tick)
	dst.DrawText(0, 0, hud, core.ColorWhite)

	if snap.State == StateTerminated {
		drawCenteredMessage(dst, "EPISODE OVER", fmt.Sprintf("Score: %d  |  %s", snap.Score, snap.Reason))
	}
}

// drawGround fills every row from the ground line down with stripes that
// scroll with the base tiles.
func drawGround(dst *core.Screen, base Base, top int, sx float64) {
	for x := 0; x < dst.Width(); x++ {
		worldX := float64(x)/sx - base.X1
		glyph := GroundChar
		if int(math.Floor(worldX/groundStripe))%2 != 0 {
			glyph = GroundAltChar
		}
		for y := top; y < dst.Height(); y++ {
			dst.SetColored(x, y, glyph, core.ColorOrange)
		}
	}
}

// drawPipe renders both barriers of a pipe between columns x0 and x1.
func drawPipe(dst *core.Screen, p PipeView, x0, x1, gapTop, gapBottom, ground int) {
	for x := x0; x < x1; x++ {
		for y := 1; y < gapTop; y++ {
			dst.SetColored(x, y, PipeChar, core.ColorGreen)
		}
		if gapTop > 1 {
			dst.SetColored(x, gapTop-1, PipeCapTop, core.ColorBrightGreen)
		}

		for y := gapBottom; y < ground; y++ {
			dst.SetColored(x, y, PipeChar, core.ColorGreen)
		}
		if gapBottom < ground {
			dst.SetColored(x, gapBottom, PipeCapBottom, core.ColorBrightGreen)
		}
	}
}

// drawCenteredMessage draws a message box in the center of the screen.
func drawCenteredMessage(dst *core.Screen, title, subtitle string) {
	w, h := dst.Width(), dst.Height()

	boxW := core.Max(len([]rune(title)), len([]rune(subtitle))) + 4
	boxH := 5
	boxX := (w - boxW) / 2
	boxY := (h - boxH) / 2

	dst.DrawRect(core.NewRect(boxX, boxY, boxW, boxH), ' ', core.ColorDefault)

	dst.DrawText(boxX+(boxW-len([]rune(title)))/2, boxY+1, title, core.ColorWhite)
	dst.DrawText(boxX+(boxW-len([]rune(subtitle)))/2, boxY+3, subtitle, core.ColorGray)
}
