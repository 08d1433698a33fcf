package charts

import (
	"bytes"
	"errors"
	"image/png"
	"math"
	"testing"

	"flightdash/internal/models"
)

func TestMapFigure(t *testing.T) {
	s := models.DefaultControlState()
	fig := Map([]models.CountryTotal{{Country: "Portugal", Value: 40000}, {Country: "Spain", Value: 10000}}, s)

	if fig.Kind != KindGeo || fig.Empty {
		t.Fatalf("Unexpected figure %+v", fig)
	}
	if fig.Title != "Arrival Flights by country in [2010, 2020]" {
		t.Errorf("Unexpected title %q", fig.Title)
	}
	if len(fig.Geo.Markers) != 2 {
		t.Fatalf("Expected 2 markers, got %d", len(fig.Geo.Markers))
	}
	if m := fig.Geo.Markers[0]; m.Size != 2 || m.Location != "Portugal" || m.Color != "mistyrose" {
		t.Errorf("Unexpected marker %+v", m)
	}
	if m := fig.Geo.Markers[1]; m.Text != "Arrival Flights [2010, 2020]: 10000" {
		t.Errorf("Unexpected hover text %q", m.Text)
	}

	s.Unit = models.Passengers
	fig = Map([]models.CountryTotal{{Country: "Portugal", Value: 4000000}}, s)
	if fig.Geo.Markers[0].Size != 2 {
		t.Errorf("Passenger scale not applied: %+v", fig.Geo.Markers[0])
	}
}

func TestEmptyFiguresArePlaceholders(t *testing.T) {
	s := models.DefaultControlState()
	figs := []*models.Figure{
		Map([]models.CountryTotal{}, s),
		Treemap(models.TreemapData{}, s),
		Barline(models.YearSeries{}, s),
		Lines(models.CountrySeries{}, s),
	}
	for _, f := range figs {
		if !f.Empty || f.Placeholder != Placeholder {
			t.Errorf("%s: expected placeholder, got %+v", f.Kind, f)
		}
	}
}

func TestTreemapFigure(t *testing.T) {
	data := models.TreemapData{
		Countries: []models.CountryTotal{{Country: "Germany", Value: 300}, {Country: "Spain", Value: 100}},
		Total:     400,
		Midpoint:  250,
	}
	fig := Treemap(data, models.DefaultControlState())

	nodes := fig.Treemap.Nodes
	if len(nodes) != 3 {
		t.Fatalf("Expected root + 2 nodes, got %d", len(nodes))
	}
	if nodes[0].ID != TreemapRoot || nodes[0].Parent != "" || nodes[0].Value != 400 {
		t.Errorf("Unexpected root %+v", nodes[0])
	}
	var sum float64
	for _, n := range nodes[1:] {
		if n.Parent != TreemapRoot {
			t.Errorf("Node %s not attached to root", n.ID)
		}
		sum += n.Value
	}
	if sum != nodes[0].Value {
		t.Errorf("Children sum %f != root %f", sum, nodes[0].Value)
	}
	if nodes[1].Percent != 75 {
		t.Errorf("Expected Germany 75%%, got %f", nodes[1].Percent)
	}
	if fig.Treemap.ColorMidpoint != 250 || fig.Treemap.ColorScale != "RdBu" {
		t.Errorf("Unexpected color settings %+v", fig.Treemap)
	}
	if fig.Title != "Treemap Arrival Flights in [2010, 2020]" {
		t.Errorf("Unexpected title %q", fig.Title)
	}
}

func TestComboFigures(t *testing.T) {
	s := models.DefaultControlState()
	s.Country = "Portugal"
	fig := Barline(models.YearSeries{
		Flights:    []models.YearTotal{{Year: 2015, Value: 10}},
		Passengers: []models.YearTotal{{Year: 2015, Value: 5000}, {Year: 2016, Value: 7000}},
	}, s)

	if fig.Title != "Flights and Passengers (Arrival) in Portugal" {
		t.Errorf("Unexpected title %q", fig.Title)
	}
	bar, line := fig.Combo.Series[0], fig.Combo.Series[1]
	if bar.Type != "bar" || len(bar.Points) != 1 || bar.Points[0].Label != "2015" {
		t.Errorf("Unexpected bar series %+v", bar)
	}
	if line.Type != "line" || line.Points[1].Value != 7 {
		t.Errorf("Passengers not expressed in thousands: %+v", line)
	}

	fig = Lines(models.CountrySeries{
		Flights: []models.CountryTotal{{Country: "Austria", Value: 3}},
	}, s)
	if fig.Empty || fig.Combo.Series[0].Points[0].Label != "Austria" || fig.Combo.XAxis.Title != "Country" {
		t.Errorf("Unexpected lines figure %+v", fig.Combo)
	}
}

func TestRenderComboPNG(t *testing.T) {
	s := models.DefaultControlState()
	fig := Lines(models.CountrySeries{
		Flights:    []models.CountryTotal{{Country: "Austria", Value: 3}, {Country: "Spain", Value: 8}},
		Passengers: []models.CountryTotal{{Country: "Spain", Value: 9000}},
	}, s)

	var buf bytes.Buffer
	if err := RenderComboPNG(fig, &buf); err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("Output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != pngWidth || b.Dy() != pngHeight {
		t.Errorf("Unexpected size %v", b)
	}

	if err := RenderComboPNG(Lines(models.CountrySeries{}, s), &buf); !errors.Is(err, ErrEmptyChart) {
		t.Errorf("Expected ErrEmptyChart, got %v", err)
	}
	if err := RenderComboPNG(Map(nil, s), &buf); !errors.Is(err, ErrNotCombo) {
		t.Errorf("Expected ErrNotCombo, got %v", err)
	}
}

func TestRenderComboPNGSingleCategory(t *testing.T) {
	s := models.DefaultControlState()
	s.Country = "Spain"
	figs := []*models.Figure{
		Barline(models.YearSeries{Flights: []models.YearTotal{{Year: 2016, Value: 800}}}, s),
		Lines(models.CountrySeries{
			Flights:    []models.CountryTotal{{Country: "Portugal", Value: 1000}},
			Passengers: []models.CountryTotal{{Country: "Portugal", Value: 90000}},
		}, s),
	}
	for _, fig := range figs {
		var buf bytes.Buffer
		if err := RenderComboPNG(fig, &buf); err != nil {
			t.Errorf("%s: %v", fig.Title, err)
			continue
		}
		if _, err := png.Decode(&buf); err != nil {
			t.Errorf("%s: output is not a PNG: %v", fig.Title, err)
		}
	}
}

func TestBarOutline(t *testing.T) {
	xs, ys := []float64{2, 0}, []float64{5, 3}
	sortByX(xs, ys)
	if xs[0] != 0 || ys[0] != 3 {
		t.Fatalf("Points not sorted by x: %v %v", xs, ys)
	}

	ox, oy := barOutline(xs, ys)
	if len(ox) != 8 || len(oy) != 8 {
		t.Fatalf("Expected 4 vertices per bar, got %d", len(ox))
	}
	wantX := []float64{-0.4, -0.4, 0.4, 0.4, 1.6, 1.6, 2.4, 2.4}
	wantY := []float64{0, 3, 3, 0, 0, 5, 5, 0}
	for i := range wantX {
		if math.Abs(ox[i]-wantX[i]) > 1e-9 || oy[i] != wantY[i] {
			t.Errorf("Vertex %d: got (%v, %v), want (%v, %v)", i, ox[i], oy[i], wantX[i], wantY[i])
		}
	}
}
