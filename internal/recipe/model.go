package recipe

// Ingredient is a catalog entry. Names are unique and never change once created.
type Ingredient struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Recipe is a stored recipe with its full, duplicate-free ingredient set.
type Recipe struct {
	ID          int64        `json:"id" db:"id"`
	Name        string       `json:"name" db:"name"`
	Description *string      `json:"description,omitempty" db:"description"`
	Ingredients []Ingredient `json:"ingredients" db:"-"`
}

// IngredientIDs returns the IDs of the recipe's ingredients.
func (r *Recipe) IngredientIDs() []int64 {
	ids := make([]int64, 0, len(r.Ingredients))
	for _, ing := range r.Ingredients {
		ids = append(ids, ing.ID)
	}
	return ids
}

// RecipeSummary is the lightweight form used by listings and search results.
type RecipeSummary struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// RecipeMatch is a search hit. MatchPercentage is recomputed on every query.
type RecipeMatch struct {
	Recipe          RecipeSummary `json:"recipe"`
	MatchPercentage int           `json:"match_percentage"`
}

// uniqueIngredients drops repeated IDs, keeping first appearance order.
func uniqueIngredients(ings []Ingredient) []Ingredient {
	seen := make(map[int64]struct{}, len(ings))
	out := make([]Ingredient, 0, len(ings))
	for _, ing := range ings {
		if _, ok := seen[ing.ID]; ok {
			continue
		}
		seen[ing.ID] = struct{}{}
		out = append(out, ing)
	}
	return out
}
