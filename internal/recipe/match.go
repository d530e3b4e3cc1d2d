package recipe

import (
	"context"
	"fmt"
	"math"
	"sort"

	"recipebox/internal/logging"
)

// RecipeReader is the part of the store the ranker needs.
type RecipeReader interface {
	FindCandidates(ctx context.Context, ingredientIDs []int64) ([]RecipeSummary, error)
	GetRecipeByID(ctx context.Context, id int64) (*Recipe, error)
}

// MatchRanker scores recipes by the share of their ingredients found in a query.
type MatchRanker struct {
	recipes RecipeReader
}

// NewMatchRanker creates a MatchRanker reading from recipes.
func NewMatchRanker(recipes RecipeReader) *MatchRanker {
	return &MatchRanker{recipes: recipes}
}

// FindMatches returns every recipe sharing at least one ingredient with
// ingredientIDs, best match first. Equal percentages keep candidate order.
// An empty query yields an empty result without touching the store.
func (m *MatchRanker) FindMatches(ctx context.Context, ingredientIDs []int64) ([]RecipeMatch, error) {
	matches := []RecipeMatch{}
	if len(ingredientIDs) == 0 {
		return matches, nil
	}

	query := make(map[int64]struct{}, len(ingredientIDs))
	for _, id := range ingredientIDs {
		query[id] = struct{}{}
	}

	candidates, err := m.recipes.FindCandidates(ctx, uniqueIDs(ingredientIDs))
	if err != nil {
		return nil, fmt.Errorf("failed to find candidates: %w", err)
	}

	for _, c := range candidates {
		full, err := m.recipes.GetRecipeByID(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load candidate %d: %w", c.ID, err)
		}
		if full == nil || len(full.Ingredients) == 0 {
			// Deleted since the candidate query, or nothing to divide by.
			continue
		}

		matched := 0
		for _, id := range full.IngredientIDs() {
			if _, ok := query[id]; ok {
				matched++
			}
		}
		matches = append(matches, RecipeMatch{
			Recipe:          c,
			MatchPercentage: matchPercentage(matched, len(full.Ingredients)),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].MatchPercentage > matches[j].MatchPercentage
	})

	logging.Ctx(ctx).Debug().Int("query", len(query)).Int("matches", len(matches)).Msg("recipes ranked")
	return matches, nil
}

// matchPercentage rounds half away from zero. total must be positive.
func matchPercentage(matched, total int) int {
	return int(math.Round(100 * float64(matched) / float64(total)))
}
