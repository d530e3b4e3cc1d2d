package recipe

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"recipebox/internal/database"
	"recipebox/internal/logging"
)

// ingredientRepository resolves references against the ingredients table.
// Every method runs on the caller's queryer so it can join a transaction.
type ingredientRepository struct{}

// resolve maps refs to ingredient records, creating unknown names. The result
// has one entry per ref in input order; repeated refs share one record.
func (r ingredientRepository) resolve(ctx context.Context, q sqlx.ExtContext, refs []IngredientRef) ([]Ingredient, error) {
	if len(refs) == 0 {
		return []Ingredient{}, nil
	}

	var names []string
	seenNames := make(map[string]struct{})
	for _, ref := range refs {
		name, isName := ref.Name()
		if !isName {
			continue
		}
		if strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("ingredient reference: %w", ErrInvalidName)
		}
		if _, ok := seenNames[name]; !ok {
			seenNames[name] = struct{}{}
			names = append(names, name)
		}
	}

	idsByName := make(map[string]int64, len(names))
	if len(names) > 0 {
		existing, err := r.findByNames(ctx, q, names)
		if err != nil {
			return nil, err
		}
		for _, ing := range existing {
			idsByName[ing.Name] = ing.ID
		}
		for _, name := range names {
			if _, ok := idsByName[name]; ok {
				continue
			}
			id, err := r.create(ctx, q, name)
			if err != nil {
				return nil, err
			}
			idsByName[name] = id
		}
	}

	ids := make([]int64, len(refs))
	for i, ref := range refs {
		if id, ok := ref.ID(); ok {
			ids[i] = id
			continue
		}
		name, _ := ref.Name()
		ids[i] = idsByName[name]
	}

	distinct := uniqueIDs(ids)
	found, err := r.findByIDs(ctx, q, distinct)
	if err != nil {
		return nil, err
	}
	if len(found) != len(distinct) {
		requested := make([]string, len(refs))
		for i, ref := range refs {
			requested[i] = ref.String()
		}
		logging.Ctx(ctx).Error().
			Strs("refs", requested).
			Int("requested", len(distinct)).
			Int("found", len(found)).
			Interface("ids", distinct).
			Msg("ingredient resolution mismatch")
		return nil, fmt.Errorf("%w: requested %d ingredients, found %d", ErrResolutionMismatch, len(distinct), len(found))
	}

	byID := make(map[int64]Ingredient, len(found))
	for _, ing := range found {
		byID[ing.ID] = ing
	}
	out := make([]Ingredient, len(ids))
	for i, id := range ids {
		out[i] = byID[id]
	}
	return out, nil
}

func (ingredientRepository) create(ctx context.Context, q sqlx.ExtContext, name string) (int64, error) {
	var id int64
	err := sqlx.GetContext(ctx, q, &id, q.Rebind(`INSERT INTO ingredients (name) VALUES (?) RETURNING id`), name)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return 0, fmt.Errorf("failed to create ingredient %q: %w: %w", name, ErrIntegrityConflict, err)
		}
		return 0, fmt.Errorf("failed to create ingredient %q: %w", name, err)
	}
	logging.Ctx(ctx).Debug().Int64("ingredient_id", id).Str("name", name).Msg("created ingredient")
	return id, nil
}

func (ingredientRepository) findByNames(ctx context.Context, q sqlx.ExtContext, names []string) ([]Ingredient, error) {
	query, args, err := sqlx.In(`SELECT id, name FROM ingredients WHERE name IN (?)`, names)
	if err != nil {
		return nil, fmt.Errorf("failed to build ingredient name query: %w", err)
	}
	var out []Ingredient
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get ingredients by name: %w", err)
	}
	return out, nil
}

func (ingredientRepository) findByIDs(ctx context.Context, q sqlx.ExtContext, ids []int64) ([]Ingredient, error) {
	if len(ids) == 0 {
		return []Ingredient{}, nil
	}
	query, args, err := sqlx.In(`SELECT id, name FROM ingredients WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to build ingredient id query: %w", err)
	}
	var out []Ingredient
	if err := sqlx.SelectContext(ctx, q, &out, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get ingredients by id: %w", err)
	}
	return out, nil
}

func (ingredientRepository) list(ctx context.Context, q sqlx.ExtContext) ([]Ingredient, error) {
	out := []Ingredient{}
	if err := sqlx.SelectContext(ctx, q, &out, `SELECT id, name FROM ingredients ORDER BY name, id`); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return out, nil
}

// uniqueIDs drops repeated IDs, keeping first appearance order.
func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
