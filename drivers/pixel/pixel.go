// drivers/pixel/pixel.go
package pixel

import (
	"image/color"

	"telemetrykit-go/x/mathx"
)

// Off is the all-channels-dark color.
var Off = color.RGBA{}

// Strip drives a short addressable LED strip. Implementations own the wire
// protocol; callers own the frame content. Show pushes the buffered frame to
// hardware; errors from the wire are reported but carry no feedback from the
// strip itself, which has none.
type Strip interface {
	SetPixel(i int, c color.RGBA)
	Clear()
	Show() error
	Len() int
}

// Buffer holds the frame bookkeeping shared by every backend: bounds checks,
// brightness scaling. Backends embed it and flush Scaled() in Show.
type Buffer struct {
	pix        []color.RGBA
	brightness uint8
}

func NewBuffer(count int, brightness uint8) *Buffer {
	if count <= 0 {
		count = 1
	}
	return &Buffer{pix: make([]color.RGBA, count), brightness: brightness}
}

// SetPixel stores c at index i. Out-of-range writes are ignored.
func (b *Buffer) SetPixel(i int, c color.RGBA) {
	if i < 0 || i >= len(b.pix) {
		return
	}
	b.pix[i] = c
}

func (b *Buffer) Clear() {
	for i := range b.pix {
		b.pix[i] = Off
	}
}

func (b *Buffer) Len() int { return len(b.pix) }

// Scaled returns the frame with brightness applied. The returned slice is
// owned by the buffer and valid until the next SetPixel/Clear.
func (b *Buffer) Scaled() []color.RGBA {
	out := make([]color.RGBA, len(b.pix))
	for i, c := range b.pix {
		out[i] = color.RGBA{
			R: mathx.Scale8(c.R, b.brightness),
			G: mathx.Scale8(c.G, b.brightness),
			B: mathx.Scale8(c.B, b.brightness),
		}
	}
	return out
}
