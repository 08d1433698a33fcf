package models

import (
	"fmt"
	"strings"
)

// AllCountries is the country selection that disables the country filter.
const AllCountries = "All Countries"

type MovementType uint8

const (
	Departure MovementType = iota
	Arrival
)

var MovementTypes = []MovementType{Departure, Arrival}

func (t MovementType) String() string {
	switch t {
	case Departure:
		return "Departure"
	case Arrival:
		return "Arrival"
	}
	return fmt.Sprintf("MovementType(%d)", uint8(t))
}

func ParseMovementType(s string) (MovementType, error) {
	switch strings.TrimSpace(s) {
	case "Departure":
		return Departure, nil
	case "Arrival":
		return Arrival, nil
	}
	return 0, fmt.Errorf("unknown movement type %q", s)
}

func (t MovementType) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

func (t *MovementType) UnmarshalText(b []byte) error {
	v, err := ParseMovementType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

type Unit uint8

const (
	Flights Unit = iota
	Passengers
)

var Units = []Unit{Flights, Passengers}

func (u Unit) String() string {
	switch u {
	case Flights:
		return "Flights"
	case Passengers:
		return "Passengers"
	}
	return fmt.Sprintf("Unit(%d)", uint8(u))
}

func ParseUnit(s string) (Unit, error) {
	switch strings.TrimSpace(s) {
	case "Flights":
		return Flights, nil
	case "Passengers":
		return Passengers, nil
	}
	return 0, fmt.Errorf("unknown unit %q", s)
}

func (u Unit) MarshalText() ([]byte, error) { return []byte(u.String()), nil }

func (u *Unit) UnmarshalText(b []byte) error {
	v, err := ParseUnit(string(b))
	if err != nil {
		return err
	}
	*u = v
	return nil
}

// Observation is one row of the source dataset.
type Observation struct {
	Country string       `json:"country"`
	Year    int          `json:"year"`
	Type    MovementType `json:"type"`
	Unit    Unit         `json:"unit"`
	Value   float64      `json:"value"`
}

// YearRange is inclusive on both ends.
type YearRange [2]int

func (r YearRange) From() int { return r[0] }
func (r YearRange) To() int   { return r[1] }

func (r YearRange) Contains(year int) bool {
	return year >= r[0] && year <= r[1]
}

func (r YearRange) String() string {
	return fmt.Sprintf("[%d, %d]", r[0], r[1])
}

// ControlState is the set of viewer-adjustable filters feeding the charts.
type ControlState struct {
	Country string       `json:"country"`
	Type    MovementType `json:"type"`
	Unit    Unit         `json:"unit"`
	Years   YearRange    `json:"years"`
}

func DefaultControlState() ControlState {
	return ControlState{
		Country: AllCountries,
		Type:    Arrival,
		Unit:    Flights,
		Years:   YearRange{2010, 2020},
	}
}

func (s ControlState) AllCountries() bool {
	return s.Country == "" || s.Country == AllCountries
}

func (s ControlState) Validate() error {
	if s.Years[0] > s.Years[1] {
		return fmt.Errorf("year range %v is inverted", s.Years)
	}
	if s.Type != Departure && s.Type != Arrival {
		return fmt.Errorf("invalid movement type %v", s.Type)
	}
	if s.Unit != Flights && s.Unit != Passengers {
		return fmt.Errorf("invalid unit %v", s.Unit)
	}
	return nil
}

// --- DERIVED TABLES ---

type CountryTotal struct {
	Country string  `json:"country"`
	Value   float64 `json:"value"`
}

type YearTotal struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

type TreemapData struct {
	Countries []CountryTotal `json:"countries"`
	Total     float64        `json:"total"`
	Midpoint  float64        `json:"midpoint"`
}

type YearSeries struct {
	Flights    []YearTotal `json:"flights"`
	Passengers []YearTotal `json:"passengers"`
}

type CountrySeries struct {
	Flights    []CountryTotal `json:"flights"`
	Passengers []CountryTotal `json:"passengers"`
}

// --- OPTIONS ---

type Options struct {
	Countries []string       `json:"countries"`
	Types     []MovementType `json:"types"`
	Units     []Unit         `json:"units"`
	MinYear   int            `json:"min_year"`
	MaxYear   int            `json:"max_year"`
	Defaults  ControlState   `json:"defaults"`
}
