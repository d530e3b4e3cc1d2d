package recipe

import (
	"fmt"
	"strconv"
	"strings"
)

// IngredientRef points at an ingredient either by ID or by name.
// The zero value is invalid; build refs with ByID, ByName or ParseIngredientRef.
type IngredientRef struct {
	id   int64
	name string
}

// ByID references an existing ingredient.
func ByID(id int64) IngredientRef {
	return IngredientRef{id: id}
}

// ByName references an ingredient by name, creating it on resolution if absent.
// Surrounding whitespace is not part of an ingredient name.
func ByName(name string) IngredientRef {
	return IngredientRef{name: strings.TrimSpace(name)}
}

// ID returns the referenced ID for ID refs.
func (r IngredientRef) ID() (int64, bool) {
	return r.id, r.id > 0
}

// Name returns the referenced name for name refs.
func (r IngredientRef) Name() (string, bool) {
	return r.name, r.id <= 0
}

func (r IngredientRef) String() string {
	if id, ok := r.ID(); ok {
		return "#" + strconv.FormatInt(id, 10)
	}
	return strconv.Quote(r.name)
}

// ParseIngredientRef turns raw form input into a ref. A positive integer is
// taken as an ingredient ID, anything else as a name. Surrounding whitespace
// is ignored.
func ParseIngredientRef(raw string) (IngredientRef, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return IngredientRef{}, fmt.Errorf("ingredient reference: %w", ErrInvalidName)
	}
	if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > 0 {
		return ByID(id), nil
	}
	return ByName(s), nil
}

// ParseIngredientRefs parses every entry of raw, failing on the first bad one.
func ParseIngredientRefs(raw []string) ([]IngredientRef, error) {
	refs := make([]IngredientRef, 0, len(raw))
	for _, s := range raw {
		ref, err := ParseIngredientRef(s)
		if err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
