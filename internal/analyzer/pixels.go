package analyzer

import (
	"errors"
	"fmt"
	"image"
	"math"

	apperrors "github.com/anime-shed/photo-inspector-go/internal/errors"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	// ErrEmptyBuffer is returned for a zero-length pixel buffer
	ErrEmptyBuffer = errors.New("pixel buffer is empty")

	// ErrInvalidBufferLength is returned when the buffer is not made of whole RGB triples
	ErrInvalidBufferLength = errors.New("pixel buffer length is not a multiple of 3")

	// ErrInvalidDimensions is returned when width*height does not match the buffer
	ErrInvalidDimensions = errors.New("pixel buffer does not match dimensions")
)

// PixelBuffer is a flat, row-major sequence of 8-bit RGB triples.
// The analyzer only ever reads from it.
type PixelBuffer struct {
	Pix    []uint8
	Width  int
	Height int
}

// NewPixelBuffer validates pix against the given dimensions
func NewPixelBuffer(pix []uint8, width, height int) (PixelBuffer, error) {
	if len(pix) == 0 {
		return PixelBuffer{}, apperrors.NewValidationError("invalid pixel buffer", ErrEmptyBuffer)
	}
	if len(pix)%3 != 0 {
		return PixelBuffer{}, apperrors.NewValidationError(
			fmt.Sprintf("invalid pixel buffer of %d bytes", len(pix)), ErrInvalidBufferLength)
	}
	if width <= 0 || height <= 0 || len(pix) != width*height*3 {
		return PixelBuffer{}, apperrors.NewValidationError(
			fmt.Sprintf("invalid pixel buffer for %dx%d image (%d bytes)", width, height, len(pix)), ErrInvalidDimensions)
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height}, nil
}

// FromImage flattens img into an RGB buffer, discarding alpha
func FromImage(img image.Image) PixelBuffer {
	nrgba := imaging.Clone(img)
	bounds := nrgba.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	pix := make([]uint8, 0, width*height*3)
	for y := 0; y < height; y++ {
		row := nrgba.Pix[y*nrgba.Stride : y*nrgba.Stride+width*4]
		for x := 0; x < width*4; x += 4 {
			pix = append(pix, row[x], row[x+1], row[x+2])
		}
	}

	return PixelBuffer{Pix: pix, Width: width, Height: height}
}

// Len returns the number of pixels
func (buf PixelBuffer) Len() int {
	return len(buf.Pix) / 3
}

// At returns the i-th pixel
func (buf PixelBuffer) At(i int) (r, g, b uint8) {
	o := i * 3
	return buf.Pix[o], buf.Pix[o+1], buf.Pix[o+2]
}

// RGB is an 8-bit color triple
type RGB struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// Hex formats the color as lowercase #rrggbb
func (c RGB) Hex() string {
	return colorful.Color{
		R: float64(c.R) / maxChannel,
		G: float64(c.G) / maxChannel,
		B: float64(c.B) / maxChannel,
	}.Hex()
}

// broadcastColor builds a synthetic buffer of n copies of c.
// Temperature estimation runs on it so the estimate follows the subject color.
func broadcastColor(c RGB, n int) PixelBuffer {
	if n < 1 {
		n = 1
	}
	pix := make([]uint8, n*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = c.R, c.G, c.B
	}
	return PixelBuffer{Pix: pix, Width: n, Height: 1}
}

// brightness is the unweighted channel mean used throughout the pipeline
func brightness(r, g, b uint8) float64 {
	return float64(int(r)+int(g)+int(b)) / 3
}

func maxMin(r, g, b uint8) (uint8, uint8) {
	hi, lo := r, r
	if g > hi {
		hi = g
	}
	if b > hi {
		hi = b
	}
	if g < lo {
		lo = g
	}
	if b < lo {
		lo = b
	}
	return hi, lo
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// round2 rounds to two decimals and never returns negative zero
func round2(v float64) float64 {
	r := math.Round(v*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func toChannel(v float64) uint8 {
	return uint8(clamp(v+0.5, 0, maxChannel))
}
