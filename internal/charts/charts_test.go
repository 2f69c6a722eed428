package charts

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minseo/saju-reporter/internal/fonts"
	"github.com/minseo/saju-reporter/internal/saju"
)

func testRenderer() *Renderer {
	return NewRenderer(fonts.Load(""))
}

func TestRenderScoreChart_ProducesValidPNG(t *testing.T) {
	scores := saju.ElementScore{
		saju.Wood: 20, saju.Fire: 40, saju.Earth: 20, saju.Metal: 0, saju.Water: 20,
	}

	data, err := testRenderer().RenderScoreChart(scores)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, chartWidth, img.Bounds().Dx())
	assert.Equal(t, chartHeight, img.Bounds().Dy())
}

func TestRenderScoreChart_Deterministic(t *testing.T) {
	r := testRenderer()
	scores := saju.ElementScore{
		saju.Wood: 40, saju.Fire: 0, saju.Earth: 20, saju.Metal: 20, saju.Water: 0,
	}

	first, err := r.RenderScoreChart(scores)
	require.NoError(t, err)
	second, err := r.RenderScoreChart(scores)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRenderScoreChart_AllZeroScores(t *testing.T) {
	// The error-sentinel score distribution still renders a chart.
	data, err := testRenderer().RenderScoreChart(saju.ZeroScore())
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderComposite_BlankCanvas(t *testing.T) {
	data, err := testRenderer().RenderComposite(nil, []Overlay{
		{Text: "김영희", X: 40, Y: 60, Size: 32},
	})
	require.NoError(t, err)

	_, err = png.Decode(bytes.NewReader(data))
	assert.NoError(t, err)
}

func TestRenderComposite_WithBackgroundAndImageOverlay(t *testing.T) {
	r := testRenderer()
	bg, err := r.RenderScoreChart(saju.ZeroScore())
	require.NoError(t, err)

	chart, err := r.RenderScoreChart(saju.ElementScore{saju.Wood: 20})
	require.NoError(t, err)

	data, err := r.RenderComposite(bg, []Overlay{
		{PNG: chart, X: 10, Y: 10},
		{Text: "오행 분포", X: 20, Y: 30},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderComposite_BadBackground(t *testing.T) {
	_, err := testRenderer().RenderComposite([]byte("not an image"), nil)
	assert.Error(t, err)
}

func TestRenderCover_KeepsBackgroundDimensions(t *testing.T) {
	r := testRenderer()
	bg, err := r.RenderScoreChart(saju.ZeroScore())
	require.NoError(t, err)

	data, err := r.RenderCover(bg, "김철수")
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	original, err := png.Decode(bytes.NewReader(bg))
	require.NoError(t, err)
	assert.Equal(t, original.Bounds(), img.Bounds())
}

func TestRenderCover_BadBackground(t *testing.T) {
	_, err := testRenderer().RenderCover([]byte("not an image"), "김철수")
	assert.Error(t, err)
}
