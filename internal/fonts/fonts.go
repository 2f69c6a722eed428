// Package fonts loads the TTF font asset shared by the chart renderer and
// the document assembler. The font is loaded once at startup and passed in
// as a dependency; a missing or unparsable font file falls back to the
// embedded Go Regular face rather than failing report generation.
package fonts

import (
	"fmt"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// Font is a parsed TTF font plus the raw bytes needed to embed it in a PDF.
type Font struct {
	// Name is the family name used when registering the font with the
	// document assembler.
	Name string
	// Data is the raw TTF file content.
	Data []byte
	// Fallback reports that the requested font was unavailable and the
	// embedded default is in use. The default has no Hangul/CJK coverage.
	Fallback bool

	parsed *truetype.Font
}

// Load reads and parses the TTF file at path. Any failure (missing file,
// invalid TTF, empty path) yields the embedded fallback font, never an error.
func Load(path string) *Font {
	if path == "" {
		return fallback()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fallback()
	}
	parsed, err := truetype.Parse(data)
	if err != nil {
		return fallback()
	}
	return &Font{Name: "report", Data: data, parsed: parsed}
}

// fallback returns the embedded Go Regular font.
func fallback() *Font {
	parsed, err := truetype.Parse(goregular.TTF)
	if err != nil {
		// goregular is a compile-time asset; failing to parse it means the
		// binary itself is broken.
		panic(fmt.Sprintf("parse embedded fallback font: %v", err))
	}
	return &Font{Name: "goregular", Data: goregular.TTF, Fallback: true, parsed: parsed}
}

// Face returns a rendering face at the given point size.
func (f *Font) Face(size float64) font.Face {
	return truetype.NewFace(f.parsed, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}
