// Package dashboard is the reactive layer between viewer controls and charts.
// Every chart declares which controls it reads; a control change re-renders
// exactly those charts, each from scratch, against the read-only dataset.
package dashboard

import (
	"fmt"
	"strings"

	"flightdash/internal/models"
)

type ControlID uint8

const (
	ControlCountry ControlID = iota + 1
	ControlType
	ControlUnit
	ControlYears
)

var controlNames = map[ControlID]string{
	ControlCountry: "country",
	ControlType:    "type",
	ControlUnit:    "unit",
	ControlYears:   "years",
}

func (c ControlID) String() string {
	if n, ok := controlNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ControlID(%d)", uint8(c))
}

func ParseControlID(s string) (ControlID, error) {
	for id, n := range controlNames {
		if strings.EqualFold(s, n) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown control %q", s)
}

func (c ControlID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

func (c *ControlID) UnmarshalText(b []byte) error {
	id, err := ParseControlID(string(b))
	if err != nil {
		return err
	}
	*c = id
	return nil
}

type ChartID uint8

const (
	ChartMap ChartID = iota + 1
	ChartTreemap
	ChartBarline
	ChartLines
)

var chartNames = map[ChartID]string{
	ChartMap:     "map",
	ChartTreemap: "treemap",
	ChartBarline: "barline",
	ChartLines:   "lines",
}

func (c ChartID) String() string {
	if n, ok := chartNames[c]; ok {
		return n
	}
	return fmt.Sprintf("ChartID(%d)", uint8(c))
}

func ParseChartID(s string) (ChartID, error) {
	for id, n := range chartNames {
		if strings.EqualFold(s, n) {
			return id, nil
		}
	}
	return 0, fmt.Errorf("unknown chart %q", s)
}

func (c ChartID) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// ControlChange is a single viewer interaction. Value carries the country,
// movement type or unit; Years carries the range for ControlYears.
type ControlChange struct {
	Control ControlID         `json:"control"`
	Value   string            `json:"value,omitempty"`
	Years   *models.YearRange `json:"years,omitempty"`
}

// Apply returns s with the change applied. s itself is not modified.
func (c ControlChange) Apply(s models.ControlState) (models.ControlState, error) {
	switch c.Control {
	case ControlCountry:
		s.Country = strings.TrimSpace(c.Value)
		if s.Country == "" {
			s.Country = models.AllCountries
		}
	case ControlType:
		t, err := models.ParseMovementType(c.Value)
		if err != nil {
			return s, err
		}
		s.Type = t
	case ControlUnit:
		u, err := models.ParseUnit(c.Value)
		if err != nil {
			return s, err
		}
		s.Unit = u
	case ControlYears:
		if c.Years == nil {
			return s, fmt.Errorf("years control requires a year range")
		}
		s.Years = *c.Years
	default:
		return s, fmt.Errorf("unknown control %v", c.Control)
	}
	return s, s.Validate()
}
