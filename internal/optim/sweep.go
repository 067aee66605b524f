package optim

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Sweep runs an experiment across evenly spaced values of one parameter.
type Sweep struct {
	Param    string
	Min      float64
	Max      float64
	NumSteps int
	// Workers > 1 runs that many values at once.
	Workers int
}

type SweepResult struct {
	Value   float64
	Metrics map[string]float64
}

func (s *Sweep) Values() []float64 {
	if s.NumSteps <= 1 {
		return []float64{s.Min}
	}
	values := make([]float64, s.NumSteps)
	step := (s.Max - s.Min) / float64(s.NumSteps-1)
	for i := range values {
		values[i] = s.Min + float64(i)*step
	}
	return values
}

// Run executes the sweep. It returns the results preceding the first
// failing value together with its error.
func (s *Sweep) Run(ctx context.Context, build BuildFunc, logger *zap.Logger) ([]SweepResult, error) {
	if s.Workers > 1 {
		return s.runParallel(ctx, build, logger)
	}
	values := s.Values()
	results := make([]SweepResult, 0, len(values))

	for i, v := range values {
		r, err := s.evaluate(ctx, build, v)
		if err != nil {
			return results, err
		}
		results = append(results, r)

		logger.Info("sweep step",
			zap.Int("step", i+1),
			zap.Int("of", len(values)),
			zap.String("param", s.Param),
			zap.Float64("value", v))
	}
	return results, nil
}

func (s *Sweep) evaluate(ctx context.Context, build BuildFunc, v float64) (SweepResult, error) {
	exp, err := build(map[string]float64{s.Param: v})
	if err != nil {
		return SweepResult{}, errors.Wrapf(err, "sweep %s=%g", s.Param, v)
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return SweepResult{}, errors.Wrapf(err, "sweep %s=%g", s.Param, v)
	}
	return SweepResult{Value: v, Metrics: result.Metrics}, nil
}

// runParallel evaluates values on a fixed set of workers. Every build owns
// its experiment, so runs share nothing but the base configuration.
func (s *Sweep) runParallel(ctx context.Context, build BuildFunc, logger *zap.Logger) ([]SweepResult, error) {
	values := s.Values()
	results := make([]SweepResult, len(values))
	errs := make([]error, len(values))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(s.Workers, len(values)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i], errs[i] = s.evaluate(ctx, build, values[i])
				if errs[i] == nil {
					logger.Info("sweep step",
						zap.Int("step", i+1),
						zap.Int("of", len(values)),
						zap.String("param", s.Param),
						zap.Float64("value", values[i]))
				}
			}
		}()
	}
	for i := range values {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return results[:i], err
		}
	}
	return results, nil
}
