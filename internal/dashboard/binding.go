package dashboard

import (
	"context"
	"fmt"

	"flightdash/internal/charts"
	"flightdash/internal/engine"
	"flightdash/internal/models"

	"github.com/labstack/gommon/log"
	"golang.org/x/sync/errgroup"
)

// BuildFunc runs one chart's transform and builder.
type BuildFunc func(ds *engine.Dataset, s models.ControlState) *models.Figure

// Binding ties a chart to the controls it reads.
type Binding struct {
	Chart  ChartID
	Inputs []ControlID
	Build  BuildFunc
}

// DefaultBindings is the dispatch table for the four dashboard charts.
func DefaultBindings() []Binding {
	return []Binding{
		{
			Chart:  ChartMap,
			Inputs: []ControlID{ControlYears, ControlCountry, ControlType, ControlUnit},
			Build: func(ds *engine.Dataset, s models.ControlState) *models.Figure {
				return charts.Map(ds.MapView(s), s)
			},
		},
		{
			Chart:  ChartTreemap,
			Inputs: []ControlID{ControlYears, ControlType, ControlUnit},
			Build: func(ds *engine.Dataset, s models.ControlState) *models.Figure {
				return charts.Treemap(ds.Treemap(s), s)
			},
		},
		{
			Chart:  ChartBarline,
			Inputs: []ControlID{ControlCountry, ControlType},
			Build: func(ds *engine.Dataset, s models.ControlState) *models.Figure {
				return charts.Barline(ds.ByYear(s), s)
			},
		},
		{
			Chart:  ChartLines,
			Inputs: []ControlID{ControlYears, ControlType},
			Build: func(ds *engine.Dataset, s models.ControlState) *models.Figure {
				return charts.Lines(ds.ByCountry(s), s)
			},
		},
	}
}

// Binder dispatches control changes to the charts that depend on them.
type Binder struct {
	bindings map[ChartID]Binding
	order    []ChartID
}

// NewBinder uses DefaultBindings when none are given.
func NewBinder(bindings ...Binding) *Binder {
	if len(bindings) == 0 {
		bindings = DefaultBindings()
	}
	b := &Binder{bindings: make(map[ChartID]Binding, len(bindings))}
	for _, bd := range bindings {
		b.bindings[bd.Chart] = bd
		b.order = append(b.order, bd.Chart)
	}
	return b
}

// Charts lists the bound charts in registration order.
func (b *Binder) Charts() []ChartID {
	out := make([]ChartID, len(b.order))
	copy(out, b.order)
	return out
}

func (b *Binder) Has(id ChartID) bool {
	_, ok := b.bindings[id]
	return ok
}

// Affected lists the charts that declare c as an input.
func (b *Binder) Affected(c ControlID) []ChartID {
	var out []ChartID
	for _, id := range b.order {
		for _, in := range b.bindings[id].Inputs {
			if in == c {
				out = append(out, id)
				break
			}
		}
	}
	return out
}

// Render builds the requested charts concurrently. A chart whose build fails
// or panics comes back as an error figure; the others are unaffected.
func (b *Binder) Render(ctx context.Context, ds *engine.Dataset, s models.ControlState, ids ...ChartID) []*models.Figure {
	figs := make([]*models.Figure, len(ids))
	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			figs[i] = b.renderOne(ctx, ds, s, id)
			return nil
		})
	}
	_ = g.Wait()
	return figs
}

func (b *Binder) renderOne(ctx context.Context, ds *engine.Dataset, s models.ControlState, id ChartID) (fig *models.Figure) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("chart %s: panic: %v", id, r)
			fig = errorFigure(id, fmt.Errorf("internal error: %v", r))
		}
	}()

	if err := ctx.Err(); err != nil {
		return errorFigure(id, err)
	}
	bd, ok := b.bindings[id]
	if !ok {
		return errorFigure(id, fmt.Errorf("unknown chart %v", id))
	}
	fig = bd.Build(ds, s)
	if fig == nil {
		return errorFigure(id, fmt.Errorf("no figure produced"))
	}
	fig.ID = id.String()
	return fig
}

func errorFigure(id ChartID, err error) *models.Figure {
	return &models.Figure{
		ID:          id.String(),
		Empty:       true,
		Placeholder: charts.Placeholder,
		Error:       err.Error(),
	}
}
