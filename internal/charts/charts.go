// Package charts renders score charts and decorative composites consumed by
// the document assembler. Rendering is pure given its inputs and safe to run
// in parallel across customers.
package charts

import (
	"bytes"
	"fmt"
	"image"
	"image/color"

	_ "image/jpeg"
	_ "image/png"

	"github.com/fogleman/gg"

	"github.com/minseo/saju-reporter/internal/fonts"
	"github.com/minseo/saju-reporter/internal/saju"
)

// Chart dimensions in pixels.
const (
	chartWidth  = 640
	chartHeight = 420
)

// elementColors is the fixed visual mapping for the five elements.
var elementColors = map[saju.Element]color.NRGBA{
	saju.Wood:  {R: 0x2E, G: 0x8B, B: 0x57, A: 0xFF},
	saju.Fire:  {R: 0xD6, G: 0x3B, B: 0x3B, A: 0xFF},
	saju.Earth: {R: 0xC8, G: 0x96, B: 0x3E, A: 0xFF},
	saju.Metal: {R: 0x8C, G: 0x92, B: 0x9B, A: 0xFF},
	saju.Water: {R: 0x2F, G: 0x5F, B: 0x9E, A: 0xFF},
}

// elementLabels are the chart axis labels, in the customer-facing script.
var elementLabels = map[saju.Element]string{
	saju.Wood:  "목(木)",
	saju.Fire:  "화(火)",
	saju.Earth: "토(土)",
	saju.Metal: "금(金)",
	saju.Water: "수(水)",
}

// Renderer draws charts with a font handle fixed at construction time.
type Renderer struct {
	font *fonts.Font
}

// NewRenderer returns a Renderer drawing with the given font. The font is
// loaded once at startup by the caller; construction never fails.
func NewRenderer(font *fonts.Font) *Renderer {
	return &Renderer{font: font}
}

// RenderScoreChart draws a horizontal bar chart of the five element scores
// and returns it as PNG bytes.
func (r *Renderer) RenderScoreChart(scores saju.ElementScore) ([]byte, error) {
	dc := gg.NewContext(chartWidth, chartHeight)

	dc.SetColor(color.White)
	dc.Clear()

	maxScore := 0
	for _, el := range saju.Elements {
		if scores[el] > maxScore {
			maxScore = scores[el]
		}
	}
	if maxScore == 0 {
		maxScore = 1
	}

	labelFace := r.font.Face(22)
	valueFace := r.font.Face(18)

	const (
		marginLeft  = 110.0
		marginRight = 70.0
		marginTop   = 40.0
		barGap      = 22.0
	)
	barSpan := (chartHeight - 2*marginTop) / float64(len(saju.Elements))
	barHeight := barSpan - barGap
	maxBarWidth := chartWidth - marginLeft - marginRight

	for i, el := range saju.Elements {
		y := marginTop + float64(i)*barSpan

		dc.SetFontFace(labelFace)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(elementLabels[el], marginLeft-14, y+barHeight/2, 1, 0.35)

		width := float64(scores[el]) / float64(maxScore) * maxBarWidth
		dc.SetColor(elementColors[el])
		dc.DrawRectangle(marginLeft, y, width, barHeight)
		dc.Fill()

		dc.SetFontFace(valueFace)
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(fmt.Sprintf("%d", scores[el]), marginLeft+width+10, y+barHeight/2, 0, 0.35)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode score chart: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderCover stamps the customer name onto the cover background, centered
// in the lower third where cover artwork leaves room for it.
func (r *Renderer) RenderCover(background []byte, name string) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(background))
	if err != nil {
		return nil, fmt.Errorf("decode cover background: %w", err)
	}
	b := img.Bounds()
	dc := gg.NewContext(b.Dx(), b.Dy())
	dc.DrawImage(img, 0, 0)

	if name != "" {
		size := float64(b.Dy()) / 18
		dc.SetFontFace(r.font.Face(size))
		dc.SetColor(color.Black)
		dc.DrawStringAnchored(name, float64(b.Dx())/2, float64(b.Dy())*0.78, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode cover: %w", err)
	}
	return buf.Bytes(), nil
}

// Overlay is one element drawn onto a composite: either text or an image.
type Overlay struct {
	Text  string
	PNG   []byte
	X, Y  float64
	Size  float64
	Color color.NRGBA
}

// RenderComposite draws overlays on top of a background image and returns
// the result as PNG bytes. A nil background yields a plain white canvas.
func (r *Renderer) RenderComposite(background []byte, overlays []Overlay) ([]byte, error) {
	var dc *gg.Context
	if len(background) > 0 {
		img, _, err := image.Decode(bytes.NewReader(background))
		if err != nil {
			return nil, fmt.Errorf("decode composite background: %w", err)
		}
		b := img.Bounds()
		dc = gg.NewContext(b.Dx(), b.Dy())
		dc.DrawImage(img, 0, 0)
	} else {
		dc = gg.NewContext(chartWidth, chartHeight)
		dc.SetColor(color.White)
		dc.Clear()
	}

	for _, ov := range overlays {
		if len(ov.PNG) > 0 {
			img, _, err := image.Decode(bytes.NewReader(ov.PNG))
			if err != nil {
				return nil, fmt.Errorf("decode overlay image: %w", err)
			}
			dc.DrawImage(img, int(ov.X), int(ov.Y))
			continue
		}
		if ov.Text == "" {
			continue
		}
		size := ov.Size
		if size <= 0 {
			size = 24
		}
		c := ov.Color
		if c.A == 0 {
			c = color.NRGBA{A: 0xFF}
		}
		dc.SetFontFace(r.font.Face(size))
		dc.SetColor(c)
		dc.DrawString(ov.Text, ov.X, ov.Y)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode composite: %w", err)
	}
	return buf.Bytes(), nil
}
