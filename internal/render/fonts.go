package render

import (
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/opentype"
)

type Weight int

const (
	WeightRegular Weight = iota
	WeightBold
)

// FontSource hands out faces of the fixed monospace family.
// Sizes are in canvas pixels.
type FontSource interface {
	Face(sizePx float64, weight Weight) font.Face
}

type faceKey struct {
	size   float64
	weight Weight
}

// FontSet serves Go Mono regular and bold faces, caching one face per size
// and weight. Faces come from the opentype parser; the freetype parser is a
// fallback and basicfont the last resort.
type FontSet struct {
	mu     sync.Mutex
	otf    map[Weight]*opentype.Font
	ttf    map[Weight]*truetype.Font
	faces  map[faceKey]font.Face
	Logger interface {
		Warnf(string, string, ...interface{})
	}
}

func NewFontSet() *FontSet {
	fs := &FontSet{
		otf:   make(map[Weight]*opentype.Font),
		ttf:   make(map[Weight]*truetype.Font),
		faces: make(map[faceKey]font.Face),
	}
	sources := map[Weight][]byte{
		WeightRegular: gomono.TTF,
		WeightBold:    gomonobold.TTF,
	}
	for weight, data := range sources {
		if f, err := opentype.Parse(data); err == nil {
			fs.otf[weight] = f
		}
		if f, err := truetype.Parse(data); err == nil {
			fs.ttf[weight] = f
		}
	}
	return fs
}

// Face returns a cached face for the given pixel size and weight.
func (fs *FontSet) Face(sizePx float64, weight Weight) font.Face {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	key := faceKey{size: sizePx, weight: weight}
	if face, ok := fs.faces[key]; ok {
		return face
	}
	face := fs.newFace(sizePx, weight)
	fs.faces[key] = face
	return face
}

// DPI 72 makes one point equal one canvas pixel.
func (fs *FontSet) newFace(sizePx float64, weight Weight) font.Face {
	if f := fs.otf[weight]; f != nil {
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: sizePx, DPI: 72, Hinting: font.HintingFull})
		if err == nil {
			return face
		}
		fs.warnf("opentype face %.1fpx failed, trying freetype: %v", sizePx, err)
	}
	if f := fs.ttf[weight]; f != nil {
		return truetype.NewFace(f, &truetype.Options{Size: sizePx, DPI: 72, Hinting: font.HintingFull})
	}
	fs.warnf("no monospace font for weight %d, using basicfont", weight)
	return basicfont.Face7x13
}

func (fs *FontSet) warnf(format string, args ...interface{}) {
	if fs.Logger != nil {
		fs.Logger.Warnf("fonts", format, args...)
	}
}
