package charts

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"flightdash/internal/models"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	ErrNotCombo   = errors.New("only combo figures can be rendered as PNG")
	ErrEmptyChart = errors.New("figure has no points to draw")
)

const (
	pngWidth  = 1024
	pngHeight = 512
)

// barHalfWidth is half a bar's width in category units.
const barHalfWidth = 0.4

// RenderComboPNG draws a combo figure with go-chart. Categories are laid out
// on an integer X axis; bars use the primary Y axis and the line series is
// plotted against the secondary one.
func RenderComboPNG(fig *models.Figure, w io.Writer) error {
	if fig == nil || fig.Combo == nil {
		return ErrNotCombo
	}

	labels := categoryLabels(fig.Combo.Series)
	if len(labels) == 0 {
		return ErrEmptyChart
	}
	pos := make(map[string]float64, len(labels))
	lo, hi := -0.5, float64(len(labels))-0.5
	// go-chart takes the X range from the ticks, so unlabeled edge ticks keep
	// a single category from collapsing it to zero width.
	ticks := make([]chart.Tick, 0, len(labels)+2)
	ticks = append(ticks, chart.Tick{Value: lo})
	for i, l := range labels {
		pos[l] = float64(i)
		ticks = append(ticks, chart.Tick{Value: float64(i), Label: l})
	}
	ticks = append(ticks, chart.Tick{Value: hi})

	graph := chart.Chart{
		Title:  fig.Title,
		Width:  pngWidth,
		Height: pngHeight,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 20, Right: 20, Bottom: 20},
		},
		XAxis: chart.XAxis{
			Name:  fig.Combo.XAxis.Title,
			Ticks: ticks,
			Range: &chart.ContinuousRange{Min: lo, Max: hi},
		},
	}

	var primaryMax, secondaryMax float64
	for _, s := range fig.Combo.Series {
		if len(s.Points) == 0 {
			continue
		}
		xs := make([]float64, len(s.Points))
		ys := make([]float64, len(s.Points))
		for i, p := range s.Points {
			xs[i], ys[i] = pos[p.Label], p.Value
		}
		sortByX(xs, ys)

		color := hexColor(s.Color)
		style := chart.Style{StrokeColor: color, StrokeWidth: 2, DotColor: color, DotWidth: 3}
		axis := chart.YAxisSecondary
		if s.Type == "bar" {
			primaryMax = maxOf(primaryMax, ys)
			xs, ys = barOutline(xs, ys)
			style = chart.Style{StrokeColor: color, StrokeWidth: 1, FillColor: color.WithAlpha(160)}
			axis = chart.YAxisPrimary
		} else {
			secondaryMax = maxOf(secondaryMax, ys)
		}

		graph.Series = append(graph.Series, chart.ContinuousSeries{
			Name:    s.Name,
			XValues: xs,
			YValues: ys,
			YAxis:   axis,
			Style:   style,
		})
	}

	graph.YAxis = chart.YAxis{Name: seriesName(fig, "bar"), Range: headroom(primaryMax)}
	graph.YAxisSecondary = chart.YAxis{Name: seriesName(fig, "line"), Range: headroom(secondaryMax)}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render %s: %w", fig.ID, err)
	}
	return nil
}

// barOutline turns points into one closed path of rectangles standing on the
// baseline. go-chart fills a series down to zero, so the path fills as bars.
// xs must be ascending.
func barOutline(xs, ys []float64) (outX, outY []float64) {
	outX = make([]float64, 0, 4*len(xs))
	outY = make([]float64, 0, 4*len(xs))
	for i, x := range xs {
		outX = append(outX, x-barHalfWidth, x-barHalfWidth, x+barHalfWidth, x+barHalfWidth)
		outY = append(outY, 0, ys[i], ys[i], 0)
	}
	return outX, outY
}

func sortByX(xs, ys []float64) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return xs[idx[a]] < xs[idx[b]] })
	sx := make([]float64, len(xs))
	sy := make([]float64, len(ys))
	for i, j := range idx {
		sx[i], sy[i] = xs[j], ys[j]
	}
	copy(xs, sx)
	copy(ys, sy)
}

func categoryLabels(series []models.ChartSeries) []string {
	seen := make(map[string]bool)
	var labels []string
	for _, s := range series {
		for _, p := range s.Points {
			if !seen[p.Label] {
				seen[p.Label] = true
				labels = append(labels, p.Label)
			}
		}
	}
	sort.Strings(labels)
	return labels
}

func seriesName(fig *models.Figure, typ string) string {
	for _, s := range fig.Combo.Series {
		if s.Type == typ {
			return s.Name
		}
	}
	return ""
}

// headroom gives a zero-based range with some space above the tallest point.
func headroom(max float64) *chart.ContinuousRange {
	if max <= 0 {
		max = 1
	}
	return &chart.ContinuousRange{Min: 0, Max: max * 1.1}
}

func maxOf(cur float64, vals []float64) float64 {
	for _, v := range vals {
		if v > cur {
			cur = v
		}
	}
	return cur
}

func hexColor(s string) drawing.Color {
	s = strings.TrimPrefix(s, "#")
	if s == "" {
		return chart.ColorBlue
	}
	return drawing.ColorFromHex(s)
}
