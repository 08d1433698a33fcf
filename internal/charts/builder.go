// Package charts turns derived tables into declarative figures.
package charts

import (
	"strconv"

	"flightdash/internal/models"

	"github.com/valyala/fasttemplate"
)

const (
	KindGeo     = "scattergeo"
	KindTreemap = "treemap"
	KindCombo   = "combo"

	TreemapRoot = "Europe"
	Placeholder = "No data for the current selection"

	// Passenger series on the combo charts are drawn in thousands.
	passengerDivisor = 1000.0
)

// Marker size is Value/scale, tuned per unit so bubbles stay legible.
var markerScale = map[models.Unit]float64{
	models.Flights:    20000,
	models.Passengers: 2000000,
}

var markerColors = []string{
	"mistyrose", "steelblue", "lemonchiffon", "lightsteelblue", "wheat",
	"ivory", "cornsilk", "limegreen", "palegoldenrod", "mediumaquamarine",
	"slategrey", "rebeccapurple", "beige", "midnightblue", "indigo", "lavenderblush",
	"rosybrown", "gray", "lightgoldenrodyellow", "dimgray", "turquoise", "olivedrab",
	"indianred", "teal", "lightslategrey", "darksalmon", "fuchsia", "purple",
	"darkslategrey", "snow", "aqua",
}

const (
	flightsColor    = "#1f77b4"
	passengersColor = "#ff7f0e"
)

var (
	mapTitle     = fasttemplate.New("{type} {unit} by country in {years}", "{", "}")
	markerText   = fasttemplate.New("{type} {unit} {years}: {value}", "{", "}")
	treemapTitle = fasttemplate.New("Treemap {type} {unit} in {years}", "{", "}")
	barlineTitle = fasttemplate.New("Flights and Passengers ({type}) in {country}", "{", "}")
	linesTitle   = fasttemplate.New("Passengers by Flight by Location ({type}) in {years}", "{", "}")
)

func vars(s models.ControlState) map[string]interface{} {
	return map[string]interface{}{
		"type":    s.Type.String(),
		"unit":    s.Unit.String(),
		"years":   s.Years.String(),
		"country": s.Country,
	}
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func empty(f *models.Figure) *models.Figure {
	f.Empty = true
	f.Placeholder = Placeholder
	return f
}

// Map builds the geographic bubble chart.
func Map(rows []models.CountryTotal, s models.ControlState) *models.Figure {
	scale := markerScale[s.Unit]
	fig := &models.Figure{
		Kind:  KindGeo,
		Title: mapTitle.ExecuteString(vars(s)),
		Geo: &models.GeoChart{
			Scope:        "europe",
			LocationMode: "country names",
			Scale:        scale,
			Markers:      make([]models.GeoMarker, 0, len(rows)),
		},
	}

	v := vars(s)
	for i, r := range rows {
		v["value"] = formatValue(r.Value)
		fig.Geo.Markers = append(fig.Geo.Markers, models.GeoMarker{
			Location: r.Country,
			Value:    r.Value,
			Size:     r.Value / scale,
			Color:    markerColors[i%len(markerColors)],
			Text:     markerText.ExecuteString(v),
		})
	}
	if len(rows) == 0 {
		return empty(fig)
	}
	return fig
}

// Treemap builds the Europe → country hierarchy. The root value is the sum of
// its children; every child carries its share of the root in percent.
func Treemap(data models.TreemapData, s models.ControlState) *models.Figure {
	fig := &models.Figure{
		Kind:  KindTreemap,
		Title: treemapTitle.ExecuteString(vars(s)),
		Treemap: &models.TreemapChart{
			ColorScale:    "RdBu",
			ColorMidpoint: data.Midpoint,
			Nodes:         make([]models.TreemapNode, 0, len(data.Countries)+1),
		},
	}

	root := models.TreemapNode{ID: TreemapRoot, Label: TreemapRoot, Value: data.Total}
	if data.Total > 0 {
		root.Percent = 100
	}
	fig.Treemap.Nodes = append(fig.Treemap.Nodes, root)

	for _, c := range data.Countries {
		n := models.TreemapNode{
			ID:     TreemapRoot + "/" + c.Country,
			Label:  c.Country,
			Parent: TreemapRoot,
			Value:  c.Value,
		}
		if data.Total > 0 {
			n.Percent = c.Value / data.Total * 100
		}
		fig.Treemap.Nodes = append(fig.Treemap.Nodes, n)
	}
	if len(data.Countries) == 0 {
		return empty(fig)
	}
	return fig
}

// Barline builds the per-year combo chart: flights as bars, passengers in
// thousands as a line.
func Barline(series models.YearSeries, s models.ControlState) *models.Figure {
	flights := make([]models.ChartPoint, 0, len(series.Flights))
	for _, p := range series.Flights {
		flights = append(flights, models.ChartPoint{Label: strconv.Itoa(p.Year), Value: p.Value})
	}
	passengers := make([]models.ChartPoint, 0, len(series.Passengers))
	for _, p := range series.Passengers {
		passengers = append(passengers, models.ChartPoint{Label: strconv.Itoa(p.Year), Value: p.Value / passengerDivisor})
	}
	return combo(barlineTitle.ExecuteString(vars(s)), "Year", flights, passengers)
}

// Lines builds the per-country combo chart over the selected years.
func Lines(series models.CountrySeries, s models.ControlState) *models.Figure {
	flights := make([]models.ChartPoint, 0, len(series.Flights))
	for _, p := range series.Flights {
		flights = append(flights, models.ChartPoint{Label: p.Country, Value: p.Value})
	}
	passengers := make([]models.ChartPoint, 0, len(series.Passengers))
	for _, p := range series.Passengers {
		passengers = append(passengers, models.ChartPoint{Label: p.Country, Value: p.Value / passengerDivisor})
	}
	return combo(linesTitle.ExecuteString(vars(s)), "Country", flights, passengers)
}

func combo(title, xTitle string, flights, passengers []models.ChartPoint) *models.Figure {
	fig := &models.Figure{
		Kind:  KindCombo,
		Title: title,
		Combo: &models.ComboChart{
			XAxis: models.Axis{Title: xTitle},
			YAxis: models.Axis{Title: "Flights & Passengers (K)"},
			Series: []models.ChartSeries{
				{Name: "Flights", Type: "bar", Color: flightsColor, Points: flights},
				{Name: "Passengers (K)", Type: "line", Color: passengersColor, Points: passengers},
			},
		},
	}
	if len(flights) == 0 && len(passengers) == 0 {
		return empty(fig)
	}
	return fig
}
