package engine

import (
	"fmt"
	"math"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"flightdash/internal/models"

	"github.com/labstack/gommon/log"
)

// Required column names, matched case-insensitively against the header.
var requiredColumns = [...]string{"Country", "Year", "Type", "Unit", "Value"}

const (
	colCountry = iota
	colYear
	colType
	colUnit
	colValue
)

type loadConfig struct {
	sheet string
}

// LoadOption configures Load via functional options.
type LoadOption func(*loadConfig)

// WithSheet selects the worksheet of an .xlsx workbook. Default is the first sheet.
func WithSheet(name string) LoadOption {
	return func(c *loadConfig) { c.sheet = name }
}

// Load reads the observation table at path, choosing the reader by extension.
// Every failure is a *LoadError.
func Load(path string, opts ...LoadOption) (*Dataset, error) {
	cfg := &loadConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	start := time.Now()
	var (
		ds  *Dataset
		err error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		ds, err = LoadCSV(path)
	case ".xlsx", ".xlsm":
		ds, err = LoadXLSX(path, cfg.sheet)
	case ".parquet":
		ds, err = LoadParquet(path)
	default:
		return nil, loadErr(path, fmt.Sprintf("unsupported file extension %q", ext), nil)
	}
	if err != nil {
		return nil, err
	}

	lo, hi := ds.YearBounds()
	log.Infof("Load Complete. Rows: %d. Countries: %d. Years: %d-%d. Time: %v",
		ds.Len(), len(ds.countryDict), lo, hi, time.Since(start))
	return ds, nil
}

// layout maps the required columns to their positions in a header row.
type layout [len(requiredColumns)]int

func newLayout(header []string) (layout, error) {
	var l layout
	for i := range l {
		l[i] = -1
	}
	for pos, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		for i, want := range requiredColumns {
			if l[i] == -1 && strings.EqualFold(name, want) {
				l[i] = pos
			}
		}
	}
	var missing []string
	for i, pos := range l {
		if pos == -1 {
			missing = append(missing, requiredColumns[i])
		}
	}
	if len(missing) > 0 {
		return l, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return l, nil
}

// width is the minimum number of fields a data row must have.
func (l layout) width() int {
	w := 0
	for _, pos := range l {
		if pos+1 > w {
			w = pos + 1
		}
	}
	return w
}

// parse converts one row into an Observation. field returns the raw text of
// the given column position.
func (l layout) parse(field func(pos int) string) (models.Observation, error) {
	var obs models.Observation

	obs.Country = strings.TrimSpace(field(l[colCountry]))
	if obs.Country == "" {
		return obs, fmt.Errorf("empty Country")
	}

	year, err := parseYear(field(l[colYear]))
	if err != nil {
		return obs, err
	}
	obs.Year = year

	if obs.Type, err = models.ParseMovementType(field(l[colType])); err != nil {
		return obs, err
	}
	if obs.Unit, err = models.ParseUnit(field(l[colUnit])); err != nil {
		return obs, err
	}

	v, err := parseValue(field(l[colValue]))
	if err != nil {
		return obs, err
	}
	obs.Value = v
	return obs, nil
}

// Years are stored as int32 and the by-year transform allocates one slot per
// year in the dataset's span, so they are kept to four digits.
const (
	minYear = 1
	maxYear = 9999
)

func parseYear(s string) (int, error) {
	s = strings.TrimSpace(s)
	var year int
	if n, ok := fastInt([]byte(s)); ok {
		year = int(n)
	} else {
		// Spreadsheets frequently store years as floats ("2015.0").
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Errorf("invalid Year %q", s)
		}
		if f < minYear || f > maxYear {
			return 0, fmt.Errorf("Year %q out of range [%d, %d]", s, minYear, maxYear)
		}
		year = int(f)
	}
	if year < minYear || year > maxYear {
		return 0, fmt.Errorf("Year %q out of range [%d, %d]", s, minYear, maxYear)
	}
	return year, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	v, ok := fastFloat([]byte(s))
	if !ok {
		var err error
		if v, err = strconv.ParseFloat(s, 64); err != nil {
			return 0, fmt.Errorf("invalid Value %q", s)
		}
	}
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("Value %q must be a non-negative number", s)
	}
	return v, nil
}
