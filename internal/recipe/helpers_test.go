package recipe

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"recipebox/internal/database"
)

// newTestStore returns a store on a fresh in-memory SQLite database.
func newTestStore(t *testing.T) (*SQLStore, *sqlx.DB) {
	t.Helper()
	ctx := context.Background()

	db, err := database.Open(ctx, "sqlite:///:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	store, err := NewStore(ctx, db)
	require.NoError(t, err)
	return store, db
}

// withLinkAudit records every write to recipe_ingredients in link_audit.
func withLinkAudit(t *testing.T, db *sqlx.DB) {
	t.Helper()
	for _, stmt := range []string{
		`CREATE TABLE link_audit (op TEXT NOT NULL, recipe_id INTEGER NOT NULL, ingredient_id INTEGER NOT NULL)`,
		`CREATE TRIGGER link_audit_insert AFTER INSERT ON recipe_ingredients BEGIN
			INSERT INTO link_audit VALUES ('insert', NEW.recipe_id, NEW.ingredient_id);
		END`,
		`CREATE TRIGGER link_audit_update AFTER UPDATE ON recipe_ingredients BEGIN
			INSERT INTO link_audit VALUES ('update', NEW.recipe_id, NEW.ingredient_id);
		END`,
		`CREATE TRIGGER link_audit_delete AFTER DELETE ON recipe_ingredients BEGIN
			INSERT INTO link_audit VALUES ('delete', OLD.recipe_id, OLD.ingredient_id);
		END`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err)
	}
}

type auditRow struct {
	Op           string `db:"op"`
	RecipeID     int64  `db:"recipe_id"`
	IngredientID int64  `db:"ingredient_id"`
}

func linkAudit(t *testing.T, db *sqlx.DB) []auditRow {
	t.Helper()
	var rows []auditRow
	require.NoError(t, db.Select(&rows, `SELECT op, recipe_id, ingredient_id FROM link_audit ORDER BY rowid`))
	return rows
}

func resetLinkAudit(t *testing.T, db *sqlx.DB) {
	t.Helper()
	_, err := db.Exec(`DELETE FROM link_audit`)
	require.NoError(t, err)
}

func seedIngredients(t *testing.T, db *sqlx.DB, names ...string) {
	t.Helper()
	for _, name := range names {
		_, err := db.Exec(`INSERT INTO ingredients (name) VALUES (?)`, name)
		require.NoError(t, err)
	}
}

func countRows(t *testing.T, db *sqlx.DB, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, db.Get(&n, query, args...))
	return n
}

func mustRefs(t *testing.T, raw ...string) []IngredientRef {
	t.Helper()
	refs, err := ParseIngredientRefs(raw)
	require.NoError(t, err)
	return refs
}

func strPtr(s string) *string { return &s }
