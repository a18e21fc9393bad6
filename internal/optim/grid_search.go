package optim

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidSearch indicates a malformed search space or genome.
var ErrInvalidSearch = errors.New("optim: invalid search")

// Objective scores one parameter assignment; higher is better.
type Objective func(ctx context.Context, params map[string]float64) (float64, error)

type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) *GridSearch {
	return &GridSearch{paramNames: params, ranges: ranges}
}

// Search evaluates every combination of the ranges and returns the best one.
// The first objective error aborts the search.
func (g *GridSearch) Search(ctx context.Context, objective Objective) (map[string]float64, float64, error) {
	if len(g.paramNames) != len(g.ranges) {
		return nil, 0, fmt.Errorf("%w: %d names for %d ranges", ErrInvalidSearch, len(g.paramNames), len(g.ranges))
	}

	best := math.Inf(-1)
	var bestParams map[string]float64

	err := g.searchRecursive(ctx, 0, make(map[string]float64), objective, &best, &bestParams)
	if err != nil {
		return nil, 0, err
	}

	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(
	ctx context.Context,
	depth int,
	current map[string]float64,
	objective Objective,
	best *float64,
	bestParams *map[string]float64,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if depth == len(g.paramNames) {
		val, err := objective(ctx, current)
		if err != nil {
			return err
		}

		if val > *best || *bestParams == nil {
			*best = val
			*bestParams = make(map[string]float64)
			for k, v := range current {
				(*bestParams)[k] = v
			}
		}
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		newParams := make(map[string]float64)
		for k, v := range current {
			newParams[k] = v
		}
		newParams[paramName] = val

		if err := g.searchRecursive(ctx, depth+1, newParams, objective, best, bestParams); err != nil {
			return err
		}
	}
	return nil
}
