// Package optim searches the sandbox tunables for the settings that drive a
// run metric to its extreme.
package optim

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"slices"

	"github.com/san-kum/quantasim/internal/config"
	"github.com/san-kum/quantasim/internal/experiment"
)

var (
	ErrEmptyGrid   = errors.New("optim: empty grid")
	ErrNoGridPoint = errors.New("optim: no grid point produced the metric")
)

type Goal int

const (
	Minimize Goal = iota
	Maximize
)

func (g Goal) better(v, best float64) bool {
	if g == Maximize {
		return v > best
	}
	return v < best
}

// Axis is one tunable and the values to try for it.
type Axis struct {
	Param  string
	Values []float64
}

// Point is one evaluated combination of tunables.
type Point struct {
	Params map[string]float64
	Value  float64
	Err    error
}

type Report struct {
	Metric string
	Goal   Goal
	Best   Point
	Points []Point
}

// Failed counts the points that produced no usable metric value.
func (r *Report) Failed() int {
	n := 0
	for _, p := range r.Points {
		if p.Err != nil {
			n++
		}
	}
	return n
}

// GridSearch runs one headless experiment per combination of axis values.
type GridSearch struct {
	axes []Axis
}

// NewGridSearch checks every axis names a known tunable and has values.
func NewGridSearch(axes ...Axis) (*GridSearch, error) {
	if len(axes) == 0 {
		return nil, ErrEmptyGrid
	}
	seen := make(map[string]bool, len(axes))
	var scratch config.SimulationConfig
	for _, a := range axes {
		if err := experiment.SetParam(&scratch, a.Param, 0); err != nil {
			return nil, err
		}
		if seen[a.Param] {
			return nil, fmt.Errorf("optim: %s listed twice", a.Param)
		}
		seen[a.Param] = true
		if len(a.Values) == 0 {
			return nil, fmt.Errorf("%w: no values for %s", ErrEmptyGrid, a.Param)
		}
	}
	return &GridSearch{axes: axes}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, a := range g.axes {
		n *= len(a.Values)
	}
	return n
}

// Search evaluates the grid in order, first axis slowest. base supplies
// everything but the tunables under search; its Params are kept unless an
// axis overrides them. Points that fail are recorded and skipped. A
// cancelled context stops the search and returns what was evaluated.
func (g *GridSearch) Search(ctx context.Context, reg *experiment.Registry, base experiment.Config,
	metric string, goal Goal, logger *log.Logger) (*Report, error) {
	report := &Report{Metric: metric, Goal: goal, Points: make([]Point, 0, g.Size())}
	found := false

	idx := make([]int, len(g.axes))
	for {
		if err := ctx.Err(); err != nil {
			if !found {
				return report, err
			}
			return report, nil
		}

		params := make(map[string]float64, len(base.Params)+len(g.axes))
		for k, v := range base.Params {
			params[k] = v
		}
		for a, i := range idx {
			params[g.axes[a].Param] = g.axes[a].Values[i]
		}

		pt := g.evaluate(ctx, reg, base, params, metric, logger)
		report.Points = append(report.Points, pt)
		if pt.Err == nil && (!found || goal.better(pt.Value, report.Best.Value)) {
			report.Best = pt
			found = true
		}

		if !g.next(idx) {
			break
		}
	}

	if !found {
		return report, fmt.Errorf("%w: %s", ErrNoGridPoint, metric)
	}
	return report, nil
}

// next advances idx like an odometer and reports false once it wraps.
func (g *GridSearch) next(idx []int) bool {
	for a := len(idx) - 1; a >= 0; a-- {
		idx[a]++
		if idx[a] < len(g.axes[a].Values) {
			return true
		}
		idx[a] = 0
	}
	return false
}

func (g *GridSearch) evaluate(ctx context.Context, reg *experiment.Registry, base experiment.Config,
	params map[string]float64, metric string, logger *log.Logger) Point {
	pt := Point{Params: params, Value: math.NaN()}

	cfg := base
	cfg.Params = params
	cfg.Metrics = withMetric(base.Metrics, metric)

	exp := experiment.New(cfg)
	if err := exp.Setup(reg, logger); err != nil {
		pt.Err = err
		return pt
	}
	result, err := exp.Run(ctx)
	if err != nil {
		pt.Err = err
		return pt
	}

	v, ok := result.Metrics[metric]
	switch {
	case !ok:
		pt.Err = fmt.Errorf("optim: metric %s not reported", metric)
	case math.IsNaN(v):
		pt.Err = fmt.Errorf("optim: metric %s is NaN", metric)
	default:
		pt.Value = v
	}
	return pt
}

func withMetric(names []string, metric string) []string {
	if slices.Contains(names, metric) {
		return names
	}
	return append(slices.Clone(names), metric)
}
