package recipe

import (
	"context"
	"fmt"
	"sort"

	"github.com/jmoiron/sqlx"

	"recipebox/internal/database"
)

// AssociationDelta is the set of links a sync added and removed.
type AssociationDelta struct {
	Added   []int64
	Removed []int64
}

// Empty reports whether the sync had nothing to do.
func (d AssociationDelta) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// diffAssociations computes the symmetric difference between the links a
// recipe has and the ingredients it should have. Added follows desired order,
// Removed is ascending.
func diffAssociations(current []int64, desired []Ingredient) AssociationDelta {
	have := make(map[int64]struct{}, len(current))
	for _, id := range current {
		have[id] = struct{}{}
	}

	want := make(map[int64]struct{}, len(desired))
	var delta AssociationDelta
	for _, ing := range desired {
		if _, dup := want[ing.ID]; dup {
			continue
		}
		want[ing.ID] = struct{}{}
		if _, ok := have[ing.ID]; !ok {
			delta.Added = append(delta.Added, ing.ID)
		}
	}

	for id := range have {
		if _, ok := want[id]; !ok {
			delta.Removed = append(delta.Removed, id)
		}
	}
	sort.Slice(delta.Removed, func(i, j int) bool { return delta.Removed[i] < delta.Removed[j] })
	return delta
}

// associationSynchronizer reconciles recipe_ingredients rows one recipe at a time.
type associationSynchronizer struct{}

// sync applies only the difference between current and desired; links present
// in both are left untouched.
func (associationSynchronizer) sync(ctx context.Context, q sqlx.ExtContext, recipeID int64, current []int64, desired []Ingredient) (AssociationDelta, error) {
	delta := diffAssociations(current, desired)

	insert := q.Rebind(`INSERT INTO recipe_ingredients (recipe_id, ingredient_id) VALUES (?, ?)`)
	for _, id := range delta.Added {
		if _, err := q.ExecContext(ctx, insert, recipeID, id); err != nil {
			if database.IsUniqueViolation(err) {
				return delta, fmt.Errorf("failed to link ingredient %d: %w: %w", id, ErrIntegrityConflict, err)
			}
			return delta, fmt.Errorf("failed to link ingredient %d: %w", id, err)
		}
	}

	remove := q.Rebind(`DELETE FROM recipe_ingredients WHERE recipe_id = ? AND ingredient_id = ?`)
	for _, id := range delta.Removed {
		if _, err := q.ExecContext(ctx, remove, recipeID, id); err != nil {
			return delta, fmt.Errorf("failed to unlink ingredient %d: %w", id, err)
		}
	}
	return delta, nil
}

// current returns the ingredient IDs linked to recipeID.
func (associationSynchronizer) current(ctx context.Context, q sqlx.ExtContext, recipeID int64) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, q, &ids,
		q.Rebind(`SELECT ingredient_id FROM recipe_ingredients WHERE recipe_id = ? ORDER BY ingredient_id`), recipeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	return ids, nil
}
