package analyzer

import (
	"image"
	"image/color"
	"math"
	"testing"
)

// uniformBuffer creates a width x height buffer filled with one color
func uniformBuffer(width, height int, r, g, b uint8) PixelBuffer {
	pix := make([]uint8, width*height*3)
	for i := 0; i < len(pix); i += 3 {
		pix[i], pix[i+1], pix[i+2] = r, g, b
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height}
}

// mixedBuffer concatenates runs of colors into a single-row buffer
func mixedBuffer(runs ...colorRun) PixelBuffer {
	var pix []uint8
	for _, run := range runs {
		for i := 0; i < run.count; i++ {
			pix = append(pix, run.c.R, run.c.G, run.c.B)
		}
	}
	return PixelBuffer{Pix: pix, Width: len(pix) / 3, Height: 1}
}

type colorRun struct {
	c     RGB
	count int
}

// checkerboard alternates black and white pixels
func checkerboard(width, height int) PixelBuffer {
	pix := make([]uint8, 0, width*height*3)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(0)
			if (x+y)%2 == 1 {
				v = 255
			}
			pix = append(pix, v, v, v)
		}
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height}
}

// noisyBuffer is a deterministic pseudo-random buffer
func noisyBuffer(width, height int, seed uint32) PixelBuffer {
	pix := make([]uint8, width*height*3)
	state := seed
	for i := range pix {
		state = state*1664525 + 1013904223
		pix[i] = uint8(state >> 24)
	}
	return PixelBuffer{Pix: pix, Width: width, Height: height}
}

// createTestImage creates a simple test image for testing purposes
func createTestImage(width, height int, fillColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}
	return img
}

func assertFinite(t *testing.T, name string, values ...float64) {
	t.Helper()
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s[%d] is not finite: %v", name, i, v)
		}
	}
}

func sumCounts(counts []int) int {
	total := 0
	for _, c := range counts {
		total += c
	}
	return total
}
