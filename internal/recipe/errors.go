package recipe

import "errors"

var (
	// ErrDuplicateName is returned when a recipe name is already taken.
	ErrDuplicateName = errors.New("name already exists")

	// ErrIntegrityConflict is returned when an ingredient or association insert
	// loses a uniqueness race against another writer.
	ErrIntegrityConflict = errors.New("integrity conflict")

	// ErrResolutionMismatch means resolved ingredient references did not all
	// come back from the store, typically an ID that does not exist.
	ErrResolutionMismatch = errors.New("ingredient resolution mismatch")

	// ErrNotFound is returned by mutations addressed to a missing recipe.
	// Lookups report absence with a nil result instead.
	ErrNotFound = errors.New("recipe not found")

	// ErrInvalidName is returned for empty recipe or ingredient names.
	ErrInvalidName = errors.New("name must not be empty")
)
