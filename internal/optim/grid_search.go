package optim

import (
	"context"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/san-kum/phrictl/internal/config"
	"github.com/san-kum/phrictl/internal/experiment"
)

var ErrNoEvaluation = errors.New("optim: no successful evaluation")

// BuildFunc builds an experiment for one point of the search space.
type BuildFunc func(params map[string]float64) (*experiment.Experiment, error)

// ConfigBuilder builds a copy of base for each point. Parameters naming a
// live handle of the experiment are written through it after the build;
// the others are applied to the configuration with SetParam.
func ConfigBuilder(base *config.Config, opts ...experiment.Option) BuildFunc {
	return func(params map[string]float64) (*experiment.Experiment, error) {
		cfg, err := base.Clone()
		if err != nil {
			return nil, err
		}
		exp, err := experiment.Build(cfg, opts...)
		if err != nil {
			return nil, err
		}

		rebuild := false
		for name, v := range params {
			if _, err := exp.Params().Lookup(name); err == nil {
				continue
			}
			if err := cfg.SetParam(name, v); err != nil {
				return nil, err
			}
			rebuild = true
		}
		if rebuild {
			if exp, err = experiment.Build(cfg, opts...); err != nil {
				return nil, err
			}
		}

		for name, v := range params {
			if h, err := exp.Params().Lookup(name); err == nil {
				*h = v
			}
		}
		return exp, nil
	}
}

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
	maximize   bool
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Maximize makes the search look for the largest metric value.
func (g *GridSearch) Maximize() *GridSearch {
	g.maximize = true
	return g
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search evaluates every grid point and returns the best parameters. Failed
// evaluations are skipped and reported only when none succeeded.
func (g *GridSearch) Search(ctx context.Context, build BuildFunc, metricName string) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, errors.Errorf("optim: %d parameters for %d ranges", len(g.paramNames), len(g.ranges))
	}

	s := &search{build: build, metric: metricName, maximize: g.maximize, best: math.Inf(1)}
	if g.maximize {
		s.best = math.Inf(-1)
	}
	g.searchRecursive(ctx, 0, make(map[string]float64), s)

	if ctx.Err() != nil {
		return s.bestParams, s.best, ctx.Err()
	}
	if s.bestParams == nil {
		return nil, s.best, multierr.Append(ErrNoEvaluation, s.errs)
	}
	return s.bestParams, s.best, nil
}

type search struct {
	build      BuildFunc
	metric     string
	maximize   bool
	best       float64
	bestParams map[string]float64
	errs       error
}

func (s *search) better(v float64) bool {
	if s.maximize {
		return v > s.best
	}
	return v < s.best
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, s *search) {
	if ctx.Err() != nil {
		return
	}
	if depth == len(g.paramNames) {
		val, err := Evaluate(ctx, s.build, current, s.metric)
		if err != nil {
			s.errs = multierr.Append(s.errs, err)
			return
		}
		if s.better(val) {
			s.best = val
			s.bestParams = make(map[string]float64, len(current))
			for k, v := range current {
				s.bestParams[k] = v
			}
		}
		return
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		current[paramName] = val
		g.searchRecursive(ctx, depth+1, current, s)
	}
	delete(current, paramName)
}

// Evaluate builds and runs one experiment and returns the named metric.
func Evaluate(ctx context.Context, build BuildFunc, params map[string]float64, metricName string) (float64, error) {
	exp, err := build(params)
	if err != nil {
		return 0, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, err
	}
	val, ok := result.Metrics[metricName]
	if !ok {
		return 0, errors.Errorf("optim: metric %q not computed", metricName)
	}
	return val, nil
}
