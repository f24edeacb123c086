package settings

// Mutation produces a new Settings value from the current one.
// UI events map to mutations; the editor applies them and re-renders.
type Mutation func(Settings) Settings

// Apply runs mutations in order and returns the result.
func (s Settings) Apply(mutations ...Mutation) Settings {
	for _, m := range mutations {
		if m != nil {
			s = m(s)
		}
	}
	return s
}

func WithPreset(p Preset) Mutation {
	return func(s Settings) Settings {
		s.CanvasSize = p
		return s
	}
}

// WithCustomSize stores the custom canvas dimensions. Out-of-range values
// fall back to the defaults, matching an unparsable input field.
func WithCustomSize(width, height int) Mutation {
	return func(s Settings) Settings {
		s.CustomWidth = validDimension(width, DefaultCustomWidth)
		s.CustomHeight = validDimension(height, DefaultCustomHeight)
		return s
	}
}

func WithSkew(x, y float64) Mutation {
	return func(s Settings) Settings {
		s.SkewX, s.SkewY = x, y
		return s
	}
}

func WithText(title, body string) Mutation {
	return func(s Settings) Settings {
		s.TitleText, s.BodyText = title, body
		return s
	}
}

// PanBy moves the image by a pointer delta in canvas pixels.
func PanBy(dx, dy float64) Mutation {
	return func(s Settings) Settings {
		s.ImageX += dx
		s.ImageY += dy
		return s
	}
}

// ResetPosition recentres the image.
func ResetPosition() Mutation {
	return func(s Settings) Settings {
		s.ImageX, s.ImageY = 0, 0
		return s
	}
}

// Patch merges a partial JSON document into the settings. A document that
// does not decode leaves the settings untouched; use Merge directly to see
// the error.
func Patch(data []byte) Mutation {
	return func(s Settings) Settings {
		merged, err := Merge(s, data)
		if err != nil {
			return s
		}
		return merged
	}
}
