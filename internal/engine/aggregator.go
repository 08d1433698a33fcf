package engine

import (
	"flightdash/internal/models"
)

// The four transforms below share one shape: a single pass over the columns
// that drops non-matching rows and accumulates into arrays indexed by
// dictionary ID or year offset. No hashing in the hot loop.

type rowFilter struct {
	country    int32
	anyCountry bool
	years      bool
	lo, hi     int32
	anyType    bool
	typ        models.MovementType
	anyUnit    bool
	unit       models.Unit
}

func (f *rowFilter) match(ds *Dataset, j int) bool {
	if !f.anyCountry && ds.countryIDs[j] != f.country {
		return false
	}
	if f.years && (ds.years[j] < f.lo || ds.years[j] > f.hi) {
		return false
	}
	if !f.anyType && ds.types[j] != f.typ {
		return false
	}
	if !f.anyUnit && ds.units[j] != f.unit {
		return false
	}
	return true
}

func yearFilter(f *rowFilter, r models.YearRange) {
	f.years = true
	f.lo, f.hi = int32(r[0]), int32(r[1])
}

// MapView sums Value per country over the selected years, after filtering to
// the selected country, movement type and unit.
func (ds *Dataset) MapView(s models.ControlState) []models.CountryTotal {
	cid, all, ok := ds.countryID(s.Country)
	if !ok {
		return []models.CountryTotal{}
	}
	f := rowFilter{country: cid, anyCountry: all, typ: s.Type, unit: s.Unit}
	yearFilter(&f, s.Years)

	sums := make([]float64, len(ds.countryDict))
	seen := make([]bool, len(ds.countryDict))
	for j := range ds.values {
		if !f.match(ds, j) {
			continue
		}
		sums[ds.countryIDs[j]] += ds.values[j]
		seen[ds.countryIDs[j]] = true
	}
	return ds.countryTotals(sums, seen)
}

// Treemap sums Value per country for every country, with the color midpoint
// weighted by Value itself: sum(v²)/sum(v) over the matching rows.
func (ds *Dataset) Treemap(s models.ControlState) models.TreemapData {
	f := rowFilter{anyCountry: true, typ: s.Type, unit: s.Unit}
	yearFilter(&f, s.Years)

	sums := make([]float64, len(ds.countryDict))
	seen := make([]bool, len(ds.countryDict))
	var total, squares, lo, hi float64
	matched := 0
	for j := range ds.values {
		if !f.match(ds, j) {
			continue
		}
		v := ds.values[j]
		sums[ds.countryIDs[j]] += v
		seen[ds.countryIDs[j]] = true
		total += v
		squares += v * v
		if matched == 0 || v < lo {
			lo = v
		}
		if matched == 0 || v > hi {
			hi = v
		}
		matched++
	}

	data := models.TreemapData{
		Countries: ds.countryTotals(sums, seen),
		Total:     total,
	}
	if total > 0 {
		data.Midpoint = clamp(squares/total, lo, hi)
	}
	return data
}

// ByYear sums Value per (Year, Unit) for the selected country and movement
// type, split into one series per unit. Years without data for a unit are
// absent from that unit's series.
func (ds *Dataset) ByYear(s models.ControlState) models.YearSeries {
	out := models.YearSeries{Flights: []models.YearTotal{}, Passengers: []models.YearTotal{}}
	cid, all, ok := ds.countryID(s.Country)
	if !ok || ds.Len() == 0 {
		return out
	}
	f := rowFilter{country: cid, anyCountry: all, typ: s.Type, anyUnit: true}

	span := int(ds.maxYear-ds.minYear) + 1
	sums := make([]float64, span*len(models.Units))
	seen := make([]bool, span*len(models.Units))
	for j := range ds.values {
		if !f.match(ds, j) {
			continue
		}
		idx := int(ds.units[j])*span + int(ds.years[j]-ds.minYear)
		sums[idx] += ds.values[j]
		seen[idx] = true
	}

	for off := 0; off < span; off++ {
		year := int(ds.minYear) + off
		if seen[off] {
			out.Flights = append(out.Flights, models.YearTotal{Year: year, Value: sums[off]})
		}
		if p := span + off; seen[p] {
			out.Passengers = append(out.Passengers, models.YearTotal{Year: year, Value: sums[p]})
		}
	}
	return out
}

// ByCountry sums Value per (Country, Unit) over the selected years and
// movement type, split into one series per unit ordered by country name.
func (ds *Dataset) ByCountry(s models.ControlState) models.CountrySeries {
	f := rowFilter{anyCountry: true, typ: s.Type, anyUnit: true}
	yearFilter(&f, s.Years)

	n := len(ds.countryDict)
	sums := make([]float64, n*len(models.Units))
	seen := make([]bool, n*len(models.Units))
	for j := range ds.values {
		if !f.match(ds, j) {
			continue
		}
		idx := int(ds.units[j])*n + int(ds.countryIDs[j])
		sums[idx] += ds.values[j]
		seen[idx] = true
	}

	return models.CountrySeries{
		Flights:    ds.countryTotals(sums[:n], seen[:n]),
		Passengers: ds.countryTotals(sums[n:], seen[n:]),
	}
}

// countryTotals unpacks per-country-ID accumulators in name order.
func (ds *Dataset) countryTotals(sums []float64, seen []bool) []models.CountryTotal {
	out := make([]models.CountryTotal, 0, len(sums))
	for _, id := range ds.byName {
		if seen[id] {
			out = append(out, models.CountryTotal{Country: ds.countryDict[id], Value: sums[id]})
		}
	}
	return out
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
