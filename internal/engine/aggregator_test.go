package engine

import (
	"reflect"
	"testing"

	"flightdash/internal/models"
)

func portugalOnly() *Dataset {
	return NewDataset([]models.Observation{
		{Country: "Portugal", Year: 2015, Type: models.Arrival, Unit: models.Flights, Value: 1000},
		{Country: "Portugal", Year: 2016, Type: models.Arrival, Unit: models.Flights, Value: 1200},
	})
}

func mixedDataset() *Dataset {
	return NewDataset([]models.Observation{
		{Country: "Spain", Year: 2010, Type: models.Arrival, Unit: models.Flights, Value: 300},
		{Country: "Germany", Year: 2010, Type: models.Arrival, Unit: models.Flights, Value: 100},
		{Country: "Germany", Year: 2011, Type: models.Arrival, Unit: models.Flights, Value: 200},
		{Country: "Germany", Year: 2011, Type: models.Arrival, Unit: models.Passengers, Value: 20000},
		{Country: "Germany", Year: 2012, Type: models.Departure, Unit: models.Flights, Value: 50},
		{Country: "Austria", Year: 2012, Type: models.Arrival, Unit: models.Passengers, Value: 9000},
		{Country: "Austria", Year: 2013, Type: models.Arrival, Unit: models.Flights, Value: 0},
	})
}

func state(country string, typ models.MovementType, unit models.Unit, from, to int) models.ControlState {
	return models.ControlState{Country: country, Type: typ, Unit: unit, Years: models.YearRange{from, to}}
}

func TestMapViewScenarios(t *testing.T) {
	ds := portugalOnly()

	got := ds.MapView(state("Portugal", models.Arrival, models.Flights, 2010, 2020))
	want := []models.CountryTotal{{Country: "Portugal", Value: 2200}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Full range: expected %v, got %v", want, got)
	}

	got = ds.MapView(state("Portugal", models.Arrival, models.Flights, 2016, 2016))
	want = []models.CountryTotal{{Country: "Portugal", Value: 1200}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Single year: expected %v, got %v", want, got)
	}

	got = ds.MapView(state("Spain", models.Arrival, models.Flights, 2010, 2020))
	if got == nil || len(got) != 0 {
		t.Errorf("Unknown country: expected empty non-nil table, got %#v", got)
	}

	got = ds.MapView(state("Portugal", models.Departure, models.Flights, 2010, 2020))
	if len(got) != 0 {
		t.Errorf("No departures: expected empty table, got %v", got)
	}
}

func TestMapViewAllCountriesIsUnion(t *testing.T) {
	ds := mixedDataset()
	all := ds.MapView(state(models.AllCountries, models.Arrival, models.Flights, 2010, 2020))

	var union []models.CountryTotal
	for _, c := range []string{"Austria", "Germany", "Spain"} {
		union = append(union, ds.MapView(state(c, models.Arrival, models.Flights, 2010, 2020))...)
	}
	if !reflect.DeepEqual(all, union) {
		t.Errorf("All Countries %v != union of single countries %v", all, union)
	}
	if all[0].Country != "Austria" || all[1].Value != 300 {
		t.Errorf("Unexpected ordering or sums: %v", all)
	}
}

func TestTreemap(t *testing.T) {
	ds := mixedDataset()
	data := ds.Treemap(state("Germany", models.Arrival, models.Flights, 2010, 2011))

	// Country selection is ignored by the treemap.
	want := []models.CountryTotal{{Country: "Germany", Value: 300}, {Country: "Spain", Value: 300}}
	if !reflect.DeepEqual(data.Countries, want) {
		t.Fatalf("Expected %v, got %v", want, data.Countries)
	}
	if data.Total != 600 {
		t.Errorf("Expected total 600, got %f", data.Total)
	}
	// (300² + 100² + 200²) / 600
	if mid := 140000.0 / 600; data.Midpoint != mid {
		t.Errorf("Expected midpoint %f, got %f", mid, data.Midpoint)
	}
	if data.Midpoint < 100 || data.Midpoint > 300 {
		t.Errorf("Midpoint %f outside [min, max]", data.Midpoint)
	}
}

func TestTreemapZeroGuard(t *testing.T) {
	ds := mixedDataset()

	zero := ds.Treemap(state(models.AllCountries, models.Arrival, models.Flights, 2013, 2013))
	if zero.Midpoint != 0 || len(zero.Countries) != 1 {
		t.Errorf("All-zero set: expected midpoint 0 with one country, got %+v", zero)
	}

	empty := ds.Treemap(state(models.AllCountries, models.Departure, models.Passengers, 2010, 2020))
	if empty.Midpoint != 0 || len(empty.Countries) != 0 {
		t.Errorf("Empty set: expected zero value, got %+v", empty)
	}
}

func TestByYear(t *testing.T) {
	ds := mixedDataset()
	series := ds.ByYear(state("Germany", models.Arrival, models.Passengers, 2099, 2099))

	// Year range and unit do not apply; both units come back.
	wantF := []models.YearTotal{{Year: 2010, Value: 100}, {Year: 2011, Value: 200}}
	wantP := []models.YearTotal{{Year: 2011, Value: 20000}}
	if !reflect.DeepEqual(series.Flights, wantF) {
		t.Errorf("Flights: expected %v, got %v", wantF, series.Flights)
	}
	if !reflect.DeepEqual(series.Passengers, wantP) {
		t.Errorf("Passengers: expected %v, got %v", wantP, series.Passengers)
	}

	all := ds.ByYear(state(models.AllCountries, models.Arrival, models.Flights, 2010, 2020))
	for i := 1; i < len(all.Flights); i++ {
		if all.Flights[i-1].Year >= all.Flights[i].Year {
			t.Fatalf("Flights not sorted by year: %v", all.Flights)
		}
	}
	if all.Flights[0].Value != 400 {
		t.Errorf("2010 all countries: expected 400, got %f", all.Flights[0].Value)
	}

	none := ds.ByYear(state("Atlantis", models.Arrival, models.Flights, 2010, 2020))
	if len(none.Flights) != 0 || len(none.Passengers) != 0 {
		t.Errorf("Unknown country: expected empty series, got %+v", none)
	}
}

func TestByCountry(t *testing.T) {
	ds := mixedDataset()
	series := ds.ByCountry(state("Spain", models.Arrival, models.Flights, 2011, 2012))

	wantF := []models.CountryTotal{{Country: "Germany", Value: 200}}
	wantP := []models.CountryTotal{{Country: "Austria", Value: 9000}, {Country: "Germany", Value: 20000}}
	if !reflect.DeepEqual(series.Flights, wantF) {
		t.Errorf("Flights: expected %v, got %v", wantF, series.Flights)
	}
	if !reflect.DeepEqual(series.Passengers, wantP) {
		t.Errorf("Passengers: expected %v, got %v", wantP, series.Passengers)
	}
}

func TestTransformsIdempotent(t *testing.T) {
	ds := mixedDataset()
	s := state(models.AllCountries, models.Arrival, models.Flights, 2010, 2012)

	before := make([]models.Observation, ds.Len())
	for i := range before {
		before[i] = ds.Row(i)
	}

	if !reflect.DeepEqual(ds.MapView(s), ds.MapView(s)) ||
		!reflect.DeepEqual(ds.Treemap(s), ds.Treemap(s)) ||
		!reflect.DeepEqual(ds.ByYear(s), ds.ByYear(s)) ||
		!reflect.DeepEqual(ds.ByCountry(s), ds.ByCountry(s)) {
		t.Error("Transforms are not deterministic")
	}

	for i := range before {
		if ds.Row(i) != before[i] {
			t.Fatalf("Row %d mutated: %+v -> %+v", i, before[i], ds.Row(i))
		}
	}
}

func TestYearRangeRespected(t *testing.T) {
	ds := mixedDataset()
	for from := 2010; from <= 2013; from++ {
		for to := from; to <= 2013; to++ {
			s := state(models.AllCountries, models.Arrival, models.Flights, from, to)
			var want float64
			for i := 0; i < ds.Len(); i++ {
				r := ds.Row(i)
				if r.Year >= from && r.Year <= to && r.Type == s.Type && r.Unit == s.Unit {
					want += r.Value
				}
			}
			var got float64
			for _, c := range ds.MapView(s) {
				got += c.Value
			}
			if got != want {
				t.Errorf("[%d,%d]: expected %f, got %f", from, to, want, got)
			}
		}
	}
}

func TestOptions(t *testing.T) {
	opts := mixedDataset().Options()
	want := []string{"Spain", "Germany", "Austria", models.AllCountries}
	if !reflect.DeepEqual(opts.Countries, want) {
		t.Errorf("Expected %v, got %v", want, opts.Countries)
	}
	if opts.MinYear != 2010 || opts.MaxYear != 2013 {
		t.Errorf("Unexpected year bounds %d-%d", opts.MinYear, opts.MaxYear)
	}
}
