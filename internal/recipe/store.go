package recipe

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"recipebox/internal/database"
	"recipebox/internal/logging"
)

// Store defines the interface for recipe data operations.
type Store interface {
	CreateRecipe(ctx context.Context, name string, refs []IngredientRef, description *string) (*Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, name string, refs []IngredientRef, description *string) error
	DeleteRecipe(ctx context.Context, id int64) error
	GetRecipeByID(ctx context.Context, id int64) (*Recipe, error)
	ListRecipes(ctx context.Context) ([]RecipeSummary, error)
	ListIngredients(ctx context.Context) ([]Ingredient, error)
	ResolveIngredients(ctx context.Context, refs []IngredientRef) ([]Ingredient, error)
	FindCandidates(ctx context.Context, ingredientIDs []int64) ([]RecipeSummary, error)
}

// SQLStore implements Store on PostgreSQL or SQLite through sqlx.
type SQLStore struct {
	db          *sqlx.DB
	ingredients ingredientRepository
	links       associationSynchronizer
}

var _ Store = (*SQLStore)(nil)

// NewStore creates the schema if needed and returns a store using db.
func NewStore(ctx context.Context, db *sqlx.DB) (*SQLStore, error) {
	if err := Migrate(ctx, db); err != nil {
		return nil, err
	}
	return &SQLStore{db: db}, nil
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateRecipe resolves refs, inserts the recipe and links its ingredients in
// one transaction.
func (s *SQLStore) CreateRecipe(ctx context.Context, name string, refs []IngredientRef, description *string) (*Recipe, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("recipe: %w", ErrInvalidName)
	}

	created, err := database.WithTxResult(ctx, s.db, func(tx *sqlx.Tx) (*Recipe, error) {
		ings, err := s.ingredients.resolve(ctx, tx, refs)
		if err != nil {
			return nil, err
		}

		var id int64
		err = tx.GetContext(ctx, &id,
			tx.Rebind(`INSERT INTO recipes (name, description) VALUES (?, ?) RETURNING id`), name, description)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return nil, fmt.Errorf("failed to create recipe %q: %w", name, ErrDuplicateName)
			}
			return nil, fmt.Errorf("failed to create recipe: %w", err)
		}

		if _, err := s.links.sync(ctx, tx, id, nil, ings); err != nil {
			return nil, err
		}

		return &Recipe{
			ID:          id,
			Name:        name,
			Description: description,
			Ingredients: uniqueIngredients(ings),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logging.Ctx(ctx).Info().Int64("recipe_id", created.ID).Int("ingredients", len(created.Ingredients)).Msg("recipe created")
	return created, nil
}

// UpdateRecipe replaces name, description and ingredient set of a recipe in
// one transaction, writing only the association rows that changed.
func (s *SQLStore) UpdateRecipe(ctx context.Context, id int64, name string, refs []IngredientRef, description *string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("recipe: %w", ErrInvalidName)
	}

	var delta AssociationDelta
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		exists, err := recipeExists(ctx, tx, id)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}

		ings, err := s.ingredients.resolve(ctx, tx, refs)
		if err != nil {
			return err
		}
		current, err := s.links.current(ctx, tx, id)
		if err != nil {
			return err
		}
		if delta, err = s.links.sync(ctx, tx, id, current, ings); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			tx.Rebind(`UPDATE recipes SET name = ?, description = ? WHERE id = ?`), name, description, id)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return fmt.Errorf("failed to rename recipe %d to %q: %w", id, name, ErrDuplicateName)
			}
			return fmt.Errorf("failed to update recipe: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().
		Int64("recipe_id", id).
		Bool("ingredients_changed", !delta.Empty()).
		Int("linked", len(delta.Added)).
		Int("unlinked", len(delta.Removed)).
		Msg("recipe updated")
	return nil
}

// DeleteRecipe removes a recipe and its association rows.
func (s *SQLStore) DeleteRecipe(ctx context.Context, id int64) error {
	err := database.WithTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipe_ingredients WHERE recipe_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete recipe ingredients: %w", err)
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM recipes WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("recipe %d: %w", id, ErrNotFound)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Int64("recipe_id", id).Msg("recipe deleted")
	return nil
}

// GetRecipeByID returns the recipe with its ingredients, or nil if there is none.
func (s *SQLStore) GetRecipeByID(ctx context.Context, id int64) (*Recipe, error) {
	return getRecipe(ctx, s.db, id)
}

// ListRecipes returns every recipe without ingredient detail.
func (s *SQLStore) ListRecipes(ctx context.Context) ([]RecipeSummary, error) {
	out := []RecipeSummary{}
	if err := s.db.SelectContext(ctx, &out, `SELECT id, name FROM recipes ORDER BY id`); err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return out, nil
}

// ListIngredients returns the whole ingredient catalog ordered by name.
func (s *SQLStore) ListIngredients(ctx context.Context) ([]Ingredient, error) {
	return s.ingredients.list(ctx, s.db)
}

// ResolveIngredients resolves refs on their own, creating missing names.
func (s *SQLStore) ResolveIngredients(ctx context.Context, refs []IngredientRef) ([]Ingredient, error) {
	return database.WithTxResult(ctx, s.db, func(tx *sqlx.Tx) ([]Ingredient, error) {
		return s.ingredients.resolve(ctx, tx, refs)
	})
}

// FindCandidates returns the distinct recipes linked to at least one of
// ingredientIDs, ordered by id. An empty input issues no query.
func (s *SQLStore) FindCandidates(ctx context.Context, ingredientIDs []int64) ([]RecipeSummary, error) {
	if len(ingredientIDs) == 0 {
		return []RecipeSummary{}, nil
	}
	query, args, err := sqlx.In(`SELECT DISTINCT r.id, r.name FROM recipes r
		JOIN recipe_ingredients ri ON ri.recipe_id = r.id
		WHERE ri.ingredient_id IN (?)
		ORDER BY r.id`, ingredientIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to build candidate query: %w", err)
	}
	out := []RecipeSummary{}
	if err := s.db.SelectContext(ctx, &out, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get candidate recipes: %w", err)
	}
	return out, nil
}

func recipeExists(ctx context.Context, q sqlx.ExtContext, id int64) (bool, error) {
	var found int64
	err := sqlx.GetContext(ctx, q, &found, q.Rebind(`SELECT id FROM recipes WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to get recipe: %w", err)
	}
	return true, nil
}

func getRecipe(ctx context.Context, q sqlx.ExtContext, id int64) (*Recipe, error) {
	var r Recipe
	err := sqlx.GetContext(ctx, q, &r, q.Rebind(`SELECT id, name, description FROM recipes WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil // Recipe not found
		}
		return nil, fmt.Errorf("failed to get recipe by id: %w", err)
	}

	r.Ingredients = []Ingredient{}
	err = sqlx.SelectContext(ctx, q, &r.Ingredients, q.Rebind(`SELECT ig.id, ig.name FROM recipe_ingredients ri
		JOIN ingredients ig ON ig.id = ri.ingredient_id
		WHERE ri.recipe_id = ?
		ORDER BY ig.name, ig.id`), id)
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe ingredients: %w", err)
	}
	return &r, nil
}
