// Package settings holds the editor's Settings value object, the canvas size
// presets and the persistence collaborator that stores settings between runs.
//
// Settings is a plain value: every change produces a new value through a
// Mutation, so a render call always sees a consistent snapshot.
package settings

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

type Preset string

const (
	PresetTwitterBanner   Preset = "twitter-banner"
	PresetTwitterTimeline Preset = "twitter-timeline"
	PresetOpenGraph       Preset = "opengraph"
	PresetCustom          Preset = "custom"
)

const (
	DefaultCustomWidth  = 1200
	DefaultCustomHeight = 630

	// MaxDimension bounds custom canvas sides; larger values fall back
	// like unparsable ones.
	MaxDimension = 4096

	// MaxSkew keeps tan(skew) finite.
	MaxSkew = 89.0
)

// Size is a canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

var presetSizes = map[Preset]Size{
	PresetTwitterBanner:   {Width: 1500, Height: 500},
	PresetTwitterTimeline: {Width: 1200, Height: 675},
	PresetOpenGraph:       {Width: 1200, Height: 630},
	PresetCustom:          {Width: DefaultCustomWidth, Height: DefaultCustomHeight},
}

// PresetInfo describes one entry of the preset table.
type PresetInfo struct {
	Name Preset `json:"name"`
	Size Size   `json:"size"`
}

// Presets returns the preset table in display order.
func Presets() []PresetInfo {
	order := []Preset{PresetTwitterBanner, PresetTwitterTimeline, PresetOpenGraph, PresetCustom}
	out := make([]PresetInfo, 0, len(order))
	for _, p := range order {
		out = append(out, PresetInfo{Name: p, Size: presetSizes[p]})
	}
	return out
}

// Valid reports whether p names a known preset.
func (p Preset) Valid() bool {
	_, ok := presetSizes[p]
	return ok
}

// Settings is every user-controlled parameter of a render.
// The JSON keys match the document persisted by earlier versions of the editor.
type Settings struct {
	CanvasSize   Preset  `json:"canvasSize"`
	CustomWidth  int     `json:"customWidth"`
	CustomHeight int     `json:"customHeight"`
	SkewX        float64 `json:"skewX"`
	SkewY        float64 `json:"skewY"`
	Grayscale    float64 `json:"grayscale"`
	Zoom         float64 `json:"zoom"`
	Opacity      float64 `json:"opacity"`
	Grain        float64 `json:"grain"`
	TitleText    string  `json:"titleText"`
	BodyText     string  `json:"bodyText"`
	TextColor    string  `json:"textColor"`
	TitleSize    int     `json:"titleSize"`
	BodySize     int     `json:"bodySize"`
	ImageX       float64 `json:"imageX"`
	ImageY       float64 `json:"imageY"`
}

// Defaults returns the settings a fresh editor starts with.
func Defaults() Settings {
	return Settings{
		CanvasSize:   PresetOpenGraph,
		CustomWidth:  DefaultCustomWidth,
		CustomHeight: DefaultCustomHeight,
		SkewX:        5,
		SkewY:        5.5,
		Grayscale:    100,
		Zoom:         100,
		Opacity:      100,
		Grain:        0,
		TextColor:    "#ffffff",
		TitleSize:    48,
		BodySize:     24,
	}
}

// CanvasDimensions resolves the canvas size for the selected preset.
// Unknown presets resolve to the Open Graph size; invalid custom
// dimensions fall back to 1200x630.
func (s Settings) CanvasDimensions() Size {
	if s.CanvasSize == PresetCustom {
		return Size{
			Width:  validDimension(s.CustomWidth, DefaultCustomWidth),
			Height: validDimension(s.CustomHeight, DefaultCustomHeight),
		}
	}
	if size, ok := presetSizes[s.CanvasSize]; ok {
		return size
	}
	return presetSizes[PresetOpenGraph]
}

// Normalize clamps values into the ranges the renderer relies on.
func (s Settings) Normalize() Settings {
	s.Grayscale = clampPercent(s.Grayscale)
	s.Opacity = clampPercent(s.Opacity)
	s.Grain = clampPercent(s.Grain)
	if s.Zoom <= 0 {
		s.Zoom = 1
	}
	s.SkewX = clampSkew(s.SkewX)
	s.SkewY = clampSkew(s.SkewY)
	if s.TitleSize < 1 {
		s.TitleSize = 1
	}
	if s.BodySize < 1 {
		s.BodySize = 1
	}
	if strings.TrimSpace(s.TextColor) == "" {
		s.TextColor = Defaults().TextColor
	}
	return s
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func clampSkew(deg float64) float64 {
	if math.IsNaN(deg) {
		return 0
	}
	return math.Max(-MaxSkew, math.Min(MaxSkew, deg))
}

// ParseDimension parses a user-entered custom dimension.
// Anything that is not an integer in [1, MaxDimension] yields fallback.
func ParseDimension(raw string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return validDimension(n, fallback)
}

func validDimension(n, fallback int) int {
	if n <= 0 || n > MaxDimension {
		return fallback
	}
	return n
}

// UnmarshalJSON accepts custom dimensions as numbers or strings, the way
// an input field reports them. Values that do not parse fall back to the
// default size instead of failing the whole document.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type plain Settings
	aux := struct {
		*plain
		CustomWidth  json.RawMessage `json:"customWidth"`
		CustomHeight json.RawMessage `json:"customHeight"`
	}{plain: (*plain)(s)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.CustomWidth != nil {
		s.CustomWidth = ParseDimensionJSON(aux.CustomWidth, DefaultCustomWidth)
	}
	if aux.CustomHeight != nil {
		s.CustomHeight = ParseDimensionJSON(aux.CustomHeight, DefaultCustomHeight)
	}
	return nil
}

// ParseDimensionJSON is ParseDimension for a JSON number or string.
func ParseDimensionJSON(raw json.RawMessage, fallback int) int {
	var str string
	if err := json.Unmarshal(raw, &str); err != nil {
		str = string(raw)
	}
	return ParseDimension(str, fallback)
}

// Merge decodes a JSON settings document over base. Keys missing from data
// keep the value from base and unknown keys are ignored. On a decode error
// base is returned unchanged together with the error.
func Merge(base Settings, data []byte) (Settings, error) {
	merged := base
	if err := json.Unmarshal(data, &merged); err != nil {
		return base, fmt.Errorf("decode settings: %w", err)
	}
	return merged, nil
}

// Marshal encodes s as the persisted JSON document.
func Marshal(s Settings) ([]byte, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return data, nil
}
