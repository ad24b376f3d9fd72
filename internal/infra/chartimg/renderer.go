package chartimg

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/yanqian/walkcast/internal/domain/walkplan"
)

// Format selects the image encoding.
type Format string

const (
	FormatSVG Format = "svg"
	FormatPNG Format = "png"
)

const (
	defaultWidth  = 960
	defaultHeight = 400
)

// FormatFromPath picks the encoding from a file extension. Unknown extensions
// fall back to SVG.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".png") {
		return FormatPNG
	}
	return FormatSVG
}

// Renderer draws walkplan charts as static images.
type Renderer struct {
	width  int
	height int
}

// NewRenderer builds a renderer. Non-positive sizes use the defaults.
func NewRenderer(width, height int) *Renderer {
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return &Renderer{width: width, height: height}
}

// Render writes the chart to w.
func (r *Renderer) Render(w io.Writer, c *walkplan.Chart, format Format) error {
	if c == nil {
		return fmt.Errorf("render chart: nil chart")
	}
	if c.Destroyed() {
		return fmt.Errorf("render chart: chart was destroyed")
	}

	xs := make([]float64, len(c.Labels))
	ticks := make([]chart.Tick, len(c.Labels))
	for i, label := range c.Labels {
		xs[i] = float64(i)
		ticks[i] = chart.Tick{Value: float64(i), Label: label}
	}

	series := make([]chart.Series, 0, len(c.Datasets))
	for _, ds := range c.Datasets {
		series = append(series, datasetSeries(ds, xs))
	}

	graph := chart.Chart{
		Width:  r.width,
		Height: r.height,
		Background: chart.Style{
			Padding: chart.Box{Top: 20, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  c.XAxisTitle,
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(len(c.Labels)-1, 1))},
		},
		YAxis: chart.YAxis{
			Name:  c.YAxisTitle,
			Range: &chart.ContinuousRange{Min: 0, Max: 100},
		},
		Series: series,
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	provider := chart.SVG
	if format == FormatPNG {
		provider = chart.PNG
	}
	if err := graph.Render(provider, w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}

func datasetSeries(ds walkplan.Dataset, xs []float64) chart.ContinuousSeries {
	ys := make([]float64, len(xs))
	copy(ys, ds.Data)

	style := chart.Style{
		StrokeColor: parseColor(ds.BorderColor),
		StrokeWidth: float64(max(ds.BorderWidth, 1)),
	}
	if ds.Fill {
		style.FillColor = parseColor(ds.BackgroundColor)
	}
	if ds.PointRadius != nil {
		radii := ds.PointRadius
		colors := ds.PointBackgroundColor
		style.DotWidthProvider = func(_, _ chart.Range, index int, _, _ float64) float64 {
			if index < len(radii) && radii[index] != nil {
				return float64(*radii[index])
			}
			return 0
		}
		style.DotColorProvider = func(_, _ chart.Range, index int, _, _ float64) drawing.Color {
			if index < len(colors) && colors[index] != nil {
				return parseColor(*colors[index])
			}
			return style.StrokeColor
		}
	}

	return chart.ContinuousSeries{
		Name:    ds.Label,
		XValues: xs,
		YValues: ys,
		Style:   style,
	}
}

// parseColor reads the "rgba(r, g, b, a)" strings carried by the chart model.
func parseColor(s string) drawing.Color {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "rgba(")
	s = strings.TrimPrefix(s, "rgb(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")
	if len(parts) < 3 {
		return drawing.ColorBlack
	}
	channel := func(p string) uint8 {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return 0
		}
		return uint8(min(max(v, 0), 255))
	}
	c := drawing.Color{R: channel(parts[0]), G: channel(parts[1]), B: channel(parts[2]), A: 255}
	if len(parts) == 4 {
		if a, err := strconv.ParseFloat(strings.TrimSpace(parts[3]), 64); err == nil {
			c.A = uint8(min(max(a, 0), 1) * 255)
		}
	}
	return c
}
