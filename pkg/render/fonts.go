package render

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

var (
	fontMu    sync.Mutex
	fontCache = map[string]font.Face{}
)

// Face returns a cached font face at the given size. Faces are shared
// across renderers; gg only reads them during text layout on the single
// render goroutine.
func Face(size float64, bold bool) font.Face {
	key := fmt.Sprintf("%v-%t", size, bold)

	fontMu.Lock()
	defer fontMu.Unlock()
	if f, ok := fontCache[key]; ok {
		return f
	}

	ttf := goregular.TTF
	if bold {
		ttf = gobold.TTF
	}
	parsed, err := opentype.Parse(ttf)
	if err != nil {
		// The embedded Go fonts always parse; reaching this means a build
		// problem, not a runtime condition.
		panic(fmt.Sprintf("render: parse embedded font: %v", err))
	}

	f, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		panic(fmt.Sprintf("render: build font face: %v", err))
	}

	fontCache[key] = f
	return f
}
