// Package imagesource turns uploaded bytes into the decoded bitmap the
// renderer draws.
package imagesource

import (
	"errors"
	"fmt"
	"image"
	"io"
	"mime"
	"strings"
	"sync/atomic"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage marks an upload whose MIME type is not image/*.
	ErrNotImage = errors.New("upload is not an image")
	// ErrStaleUpload marks a decode that finished after a newer upload began.
	ErrStaleUpload = errors.New("upload superseded by a newer one")
)

// SourceImage is a decoded upload. It is never modified after decoding.
type SourceImage struct {
	Image  image.Image
	Width  int
	Height int
	MIME   string
	Format string
}

// Accept reports whether contentType names an image. Parameters such as
// charset are ignored.
func Accept(contentType string) bool {
	return strings.HasPrefix(mediaType(contentType), "image/")
}

// Decode reads one image, applying its EXIF orientation. Supported formats
// are png, jpeg, gif, bmp, tiff and webp.
func Decode(r io.Reader, contentType string) (*SourceImage, error) {
	if !Accept(contentType) {
		return nil, fmt.Errorf("%w: %q", ErrNotImage, contentType)
	}
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decode image: empty %dx%d bitmap", b.Dx(), b.Dy())
	}
	return &SourceImage{
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
		MIME:   contentType,
		Format: strings.TrimPrefix(mediaType(contentType), "image/"),
	}, nil
}

func mediaType(contentType string) string {
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		return mt
	}
	return strings.ToLower(strings.TrimSpace(contentType))
}

// Generation issues monotonically increasing upload tokens. Only the most
// recently issued token is current, so a slow decode cannot overwrite the
// result of a newer upload.
type Generation struct {
	latest atomic.Uint64
}

// Next starts a new upload and returns its token.
func (g *Generation) Next() uint64 {
	return g.latest.Add(1)
}

// Current reports whether token still belongs to the latest upload.
func (g *Generation) Current(token uint64) bool {
	return g.latest.Load() == token
}

// Check returns ErrStaleUpload unless token is current.
func (g *Generation) Check(token uint64) error {
	if !g.Current(token) {
		return fmt.Errorf("%w: token %d, latest %d", ErrStaleUpload, token, g.latest.Load())
	}
	return nil
}
