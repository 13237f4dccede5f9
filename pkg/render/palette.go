// Package render draws the per-face visualization panels: the radial
// expression gauge and the heart-rate waveform. Everything renders into
// a caller-supplied gg context so the compositor owns surface lifecycle.
//
// Rendering is deterministic: category order, palette and angular start
// are fixed, so identical input produces pixel-identical output.
package render

import "image/color"

// Category is one slice of the expression gauge.
type Category struct {
	Name  string
	Glyph string
	Color color.RGBA
}

// GaugeCategories is the fixed ring order. It must match the category
// set the decode boundary accepts.
var GaugeCategories = []Category{
	{Name: "Angry", Glyph: ">:(", Color: color.RGBA{R: 0xef, G: 0x47, B: 0x4a, A: 0xff}},
	{Name: "Disgust", Glyph: ":P", Color: color.RGBA{R: 0x8f, G: 0xc9, B: 0x3a, A: 0xff}},
	{Name: "Fear", Glyph: ":S", Color: color.RGBA{R: 0x9b, G: 0x59, B: 0xb6, A: 0xff}},
	{Name: "Happy", Glyph: ":)", Color: color.RGBA{R: 0xff, G: 0xd1, B: 0x66, A: 0xff}},
	{Name: "Sad", Glyph: ":(", Color: color.RGBA{R: 0x4d, G: 0x9d, B: 0xe0, A: 0xff}},
	{Name: "Surprise", Glyph: ":O", Color: color.RGBA{R: 0xff, G: 0x9f, B: 0x1c, A: 0xff}},
	{Name: "Neutral", Glyph: ":|", Color: color.RGBA{R: 0xa0, G: 0xa6, B: 0xb0, A: 0xff}},
}

// CategoryByName returns the gauge category for a classifier label.
// Unknown labels fall back to Neutral.
func CategoryByName(name string) Category {
	for _, c := range GaugeCategories {
		if c.Name == name {
			return c
		}
	}
	return GaugeCategories[len(GaugeCategories)-1]
}
