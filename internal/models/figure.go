package models

// Figure is a declarative chart description for a rendering client.
// Exactly one of Geo, Treemap or Combo is populated based on Kind.
type Figure struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"` // "scattergeo", "treemap", "combo"
	Title       string `json:"title"`
	Empty       bool   `json:"empty"`
	Placeholder string `json:"placeholder,omitempty"`
	Error       string `json:"error,omitempty"`

	Geo     *GeoChart     `json:"geo,omitempty"`
	Treemap *TreemapChart `json:"treemap,omitempty"`
	Combo   *ComboChart   `json:"combo,omitempty"`
}

type GeoChart struct {
	Scope        string      `json:"scope"`
	LocationMode string      `json:"location_mode"`
	Scale        float64     `json:"scale"`
	Markers      []GeoMarker `json:"markers"`
}

type GeoMarker struct {
	Location string  `json:"location"`
	Value    float64 `json:"value"`
	Size     float64 `json:"size"`
	Color    string  `json:"color"`
	Text     string  `json:"text"`
}

type TreemapChart struct {
	ColorScale    string        `json:"color_scale"`
	ColorMidpoint float64       `json:"color_midpoint"`
	Nodes         []TreemapNode `json:"nodes"`
}

type TreemapNode struct {
	ID      string  `json:"id"`
	Label   string  `json:"label"`
	Parent  string  `json:"parent"`
	Value   float64 `json:"value"`
	Percent float64 `json:"percent"`
}

type ComboChart struct {
	XAxis  Axis          `json:"x_axis"`
	YAxis  Axis          `json:"y_axis"`
	Series []ChartSeries `json:"series"`
}

type Axis struct {
	Title string `json:"title"`
}

type ChartSeries struct {
	Name   string       `json:"name"`
	Type   string       `json:"type"` // "bar", "line"
	Color  string       `json:"color,omitempty"`
	Points []ChartPoint `json:"points"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}
