package engine

import (
	"flightdash/internal/models"

	"golang.org/x/exp/slices"
)

// Dataset holds the observation table in Struct-of-Arrays format.
// It is built once by a loader and never mutated afterwards; every
// transform reads it and produces a fresh derived table.
type Dataset struct {
	// Data Columns (Flat Arrays)
	years  []int32
	values []float64
	types  []models.MovementType
	units  []models.Unit

	// Dictionary Encoded IDs (0..N), dictionary in order of first appearance
	countryIDs  []int32
	countryDict []string

	countryIndex map[string]int32
	byName       []int32 // country IDs in lexicographic order
	minYear      int32
	maxYear      int32
}

// NewDataset builds a Dataset from row-oriented observations.
func NewDataset(rows []models.Observation) *Dataset {
	ds := &Dataset{
		years:      make([]int32, len(rows)),
		values:     make([]float64, len(rows)),
		types:      make([]models.MovementType, len(rows)),
		units:      make([]models.Unit, len(rows)),
		countryIDs: make([]int32, len(rows)),
	}
	index := make(map[string]int32)
	for i, r := range rows {
		id, ok := index[r.Country]
		if !ok {
			id = int32(len(ds.countryDict))
			ds.countryDict = append(ds.countryDict, r.Country)
			index[r.Country] = id
		}
		ds.countryIDs[i] = id
		ds.years[i] = int32(r.Year)
		ds.values[i] = r.Value
		ds.types[i] = r.Type
		ds.units[i] = r.Unit
	}
	ds.seal()
	return ds
}

// seal computes the lookup structures once all columns are filled.
func (ds *Dataset) seal() {
	ds.countryIndex = make(map[string]int32, len(ds.countryDict))
	ds.byName = make([]int32, len(ds.countryDict))
	for id, name := range ds.countryDict {
		ds.countryIndex[name] = int32(id)
		ds.byName[id] = int32(id)
	}
	slices.SortStableFunc(ds.byName, func(a, b int32) int {
		return compareOrdered(ds.countryDict[a], ds.countryDict[b])
	})

	for i, y := range ds.years {
		if i == 0 || y < ds.minYear {
			ds.minYear = y
		}
		if i == 0 || y > ds.maxYear {
			ds.maxYear = y
		}
	}
}

func (ds *Dataset) Len() int { return len(ds.values) }

// Row returns the i-th observation.
func (ds *Dataset) Row(i int) models.Observation {
	return models.Observation{
		Country: ds.countryDict[ds.countryIDs[i]],
		Year:    int(ds.years[i]),
		Type:    ds.types[i],
		Unit:    ds.units[i],
		Value:   ds.values[i],
	}
}

// Countries lists the distinct countries in order of first appearance.
func (ds *Dataset) Countries() []string {
	out := make([]string, len(ds.countryDict))
	copy(out, ds.countryDict)
	return out
}

// YearBounds returns the smallest and largest year present; zeros when empty.
func (ds *Dataset) YearBounds() (int, int) {
	return int(ds.minYear), int(ds.maxYear)
}

// Options describes the control values a viewer can pick from.
func (ds *Dataset) Options() models.Options {
	lo, hi := ds.YearBounds()
	return models.Options{
		Countries: append(ds.Countries(), models.AllCountries),
		Types:     models.MovementTypes,
		Units:     models.Units,
		MinYear:   lo,
		MaxYear:   hi,
		Defaults:  models.DefaultControlState(),
	}
}

// countryID resolves a country selection. all reports the sentinel;
// ok is false when a specific country is not in the dictionary.
func (ds *Dataset) countryID(country string) (id int32, all bool, ok bool) {
	if country == "" || country == models.AllCountries {
		return -1, true, true
	}
	id, ok = ds.countryIndex[country]
	return id, false, ok
}
