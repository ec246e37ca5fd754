package storage

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	// ErrImageNotFound is returned when the source reports the image does not exist
	ErrImageNotFound = errors.New("image not found")

	// ErrImageTooLarge is returned when the encoded image exceeds the byte limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrDecodeFailed wraps codec failures
	ErrDecodeFailed = errors.New("failed to decode image")
)

// DecodedImage is a fetched image together with what was learned while decoding it
type DecodedImage struct {
	Image  image.Image
	Format string
	Bytes  int64
}

// countingReader counts bytes and fails once more than limit were read.
// A limit <= 0 disables the cap.
type countingReader struct {
	r     io.Reader
	n     int64
	limit int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	if c.limit > 0 && c.n > c.limit {
		return n, ErrImageTooLarge
	}
	return n, err
}

// DecodeImage decodes jpeg, png, gif or webp data from r
func DecodeImage(r io.Reader) (*DecodedImage, error) {
	return decodeLimited(r, 0)
}

func decodeLimited(r io.Reader, limit int64) (*DecodedImage, error) {
	cr := &countingReader{r: r, limit: limit}
	img, format, err := image.Decode(cr)
	if err != nil {
		if errors.Is(err, ErrImageTooLarge) || (limit > 0 && cr.n > limit) {
			return nil, fmt.Errorf("%w (limit %d bytes)", ErrImageTooLarge, limit)
		}
		return nil, fmt.Errorf("%w: %v", ErrDecodeFailed, err)
	}
	return &DecodedImage{Image: img, Format: format, Bytes: cr.n}, nil
}

// Normalize downscales img so its longest edge is at most maxEdge.
// Smaller images and maxEdge <= 0 return img unchanged.
func Normalize(img image.Image, maxEdge int) image.Image {
	if maxEdge <= 0 {
		return img
	}
	b := img.Bounds()
	if b.Dx() <= maxEdge && b.Dy() <= maxEdge {
		return img
	}
	return imaging.Fit(img, maxEdge, maxEdge, imaging.Lanczos)
}
