package main

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// parseAssignments reads name=value pairs.
func parseAssignments(items []string) (map[string]float64, error) {
	out := make(map[string]float64, len(items))
	for _, item := range items {
		name, value, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, errors.Errorf("expected name=value, got %q", item)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, errors.Wrapf(err, "parameter %s", name)
		}
		out[name] = v
	}
	return out, nil
}

// parseGrid reads name=v1,v2,... axes in order.
func parseGrid(items []string) ([]string, [][]float64, error) {
	if len(items) == 0 {
		return nil, nil, errors.New("at least one --param is required")
	}
	names := make([]string, 0, len(items))
	ranges := make([][]float64, 0, len(items))
	seen := make(map[string]bool)
	for _, item := range items {
		name, list, ok := strings.Cut(item, "=")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, nil, errors.Errorf("expected name=v1,v2,..., got %q", item)
		}
		if seen[name] {
			return nil, nil, errors.Errorf("parameter %s given twice", name)
		}
		seen[name] = true

		var values []float64
		for _, s := range strings.Split(list, ",") {
			if s = strings.TrimSpace(s); s == "" {
				continue
			}
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, nil, errors.Wrapf(err, "parameter %s", name)
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			return nil, nil, errors.Errorf("parameter %s has no values", name)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}
