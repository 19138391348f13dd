package core

import (
	"image"
	"math/bits"
)

// AlphaThreshold is the minimum alpha (0-255) for a pixel to count as opaque.
const AlphaThreshold = 127

// Mask is a fixed-size binary opacity map. Each row is packed into 64-bit
// words, least significant bit first, so overlap queries test whole words
// at a time.
type Mask struct {
	width  int
	height int
	stride int // words per row
	bits   []uint64
}

// NewMask creates an empty (fully transparent) mask.
func NewMask(width, height int) *Mask {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	stride := (width + 63) / 64
	return &Mask{
		width:  width,
		height: height,
		stride: stride,
		bits:   make([]uint64, stride*height),
	}
}

// MaskFromImage builds a mask from the alpha channel of an image.
// Pixels with alpha above AlphaThreshold are opaque.
func MaskFromImage(img image.Image) *Mask {
	b := img.Bounds()
	m := NewMask(b.Dx(), b.Dy())
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			_, _, _, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a>>8 > AlphaThreshold {
				m.Set(x, y, true)
			}
		}
	}
	return m
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// Bounds returns the mask rectangle placed at (x, y).
func (m *Mask) Bounds(x, y int) Rect {
	return NewRect(x, y, m.width, m.height)
}

// Set marks a pixel opaque or transparent. Out-of-bounds writes are ignored.
func (m *Mask) Set(x, y int, opaque bool) {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return
	}
	i := y*m.stride + x>>6
	bit := uint64(1) << uint(x&63)
	if opaque {
		m.bits[i] |= bit
	} else {
		m.bits[i] &^= bit
	}
}

// Get reports whether the pixel is opaque. Out-of-bounds pixels are transparent.
func (m *Mask) Get(x, y int) bool {
	if x < 0 || x >= m.width || y < 0 || y >= m.height {
		return false
	}
	return m.bits[y*m.stride+x>>6]&(uint64(1)<<uint(x&63)) != 0
}

// FillRect marks every pixel of r (clipped to the mask) opaque.
func (m *Mask) FillRect(r Rect) {
	c := r.Intersection(m.Bounds(0, 0))
	for y := c.Y; y < c.Bottom(); y++ {
		for x := c.X; x < c.Right(); x++ {
			m.Set(x, y, true)
		}
	}
}

// FillEllipse marks the pixels inside the axis-aligned ellipse centered at
// (cx, cy) with radii rx, ry opaque.
func (m *Mask) FillEllipse(cx, cy, rx, ry float64) {
	if rx <= 0 || ry <= 0 {
		return
	}
	for y := 0; y < m.height; y++ {
		dy := (float64(y) + 0.5 - cy) / ry
		for x := 0; x < m.width; x++ {
			dx := (float64(x) + 0.5 - cx) / rx
			if dx*dx+dy*dy <= 1 {
				m.Set(x, y, true)
			}
		}
	}
}

// Count returns the number of opaque pixels.
func (m *Mask) Count() int {
	n := 0
	for _, w := range m.bits {
		n += bits.OnesCount64(w)
	}
	return n
}

// FlipVertical returns a copy of the mask mirrored top-to-bottom.
func (m *Mask) FlipVertical() *Mask {
	out := NewMask(m.width, m.height)
	for y := 0; y < m.height; y++ {
		src := m.bits[y*m.stride : (y+1)*m.stride]
		dst := out.bits[(m.height-1-y)*m.stride : (m.height-y)*m.stride]
		copy(dst, src)
	}
	return out
}

// Scale returns a copy of the mask enlarged by an integer factor using
// nearest-neighbour sampling.
func (m *Mask) Scale(factor int) *Mask {
	if factor <= 1 {
		out := NewMask(m.width, m.height)
		copy(out.bits, m.bits)
		return out
	}
	out := NewMask(m.width*factor, m.height*factor)
	for y := 0; y < out.height; y++ {
		for x := 0; x < out.width; x++ {
			if m.Get(x/factor, y/factor) {
				out.Set(x, y, true)
			}
		}
	}
	return out
}

// Overlap reports the first opaque pixel shared by m and other, where other
// is placed at offset (dx, dy) relative to m's top-left corner. The returned
// point is in m's coordinates. Rows are scanned top to bottom and columns
// left to right.
func (m *Mask) Overlap(other *Mask, dx, dy int) (x, y int, ok bool) {
	x0 := Max(0, dx)
	x1 := Min(m.width, dx+other.width)
	y0 := Max(0, dy)
	y1 := Min(m.height, dy+other.height)
	if x0 >= x1 || y0 >= y1 {
		return 0, 0, false
	}

	for row := y0; row < y1; row++ {
		for col := x0; col < x1; col += 64 {
			n := Min(64, x1-col)
			a := m.span(row, col, n)
			if a == 0 {
				continue
			}
			b := other.span(row-dy, col-dx, n)
			if hit := a & b; hit != 0 {
				return col + bits.TrailingZeros64(hit), row, true
			}
		}
	}
	return 0, 0, false
}

// span extracts n (1..64) bits of a row starting at column x.
func (m *Mask) span(row, x, n int) uint64 {
	base := row * m.stride
	idx := x >> 6
	off := uint(x & 63)

	v := m.bits[base+idx] >> off
	if off != 0 && idx+1 < m.stride {
		v |= m.bits[base+idx+1] << (64 - off)
	}
	if n < 64 {
		v &= (uint64(1) << uint(n)) - 1
	}
	return v
}
