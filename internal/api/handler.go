package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"recipebox/internal/logging"
	"recipebox/internal/recipe"
)

// RecipeStore defines the store operations the HTTP layer uses.
type RecipeStore interface {
	CreateRecipe(ctx context.Context, name string, refs []recipe.IngredientRef, description *string) (*recipe.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, name string, refs []recipe.IngredientRef, description *string) error
	DeleteRecipe(ctx context.Context, id int64) error
	GetRecipeByID(ctx context.Context, id int64) (*recipe.Recipe, error)
	ListRecipes(ctx context.Context) ([]recipe.RecipeSummary, error)
	ListIngredients(ctx context.Context) ([]recipe.Ingredient, error)
	ResolveIngredients(ctx context.Context, refs []recipe.IngredientRef) ([]recipe.Ingredient, error)
	Ping(ctx context.Context) error
}

// Matcher ranks recipes against a set of ingredient IDs.
type Matcher interface {
	FindMatches(ctx context.Context, ingredientIDs []int64) ([]recipe.RecipeMatch, error)
}

// Handler handles HTTP requests.
type Handler struct {
	RecipeStore RecipeStore
	Matcher     Matcher
}

// NewHandler creates a new Handler.
func NewHandler(recipeStore RecipeStore, matcher Matcher) *Handler {
	return &Handler{RecipeStore: recipeStore, Matcher: matcher}
}

// recipeRequest is the body of create and edit requests. Ingredients holds
// existing IDs as numeric strings and new ingredients as names.
type recipeRequest struct {
	Name        string   `json:"name" binding:"notblank"`
	Ingredients []string `json:"ingredients" binding:"omitempty,dive,notblank"`
	Description *string  `json:"description"`
}

// resolveRequest lists ingredient IDs or names to look up, creating names
// that are not in the catalog yet.
type resolveRequest struct {
	Ingredients []string `json:"ingredients" binding:"required,min=1,dive,notblank"`
}

type searchRequest struct {
	Ingredients []int64 `json:"ingredients"`
}

type recipeResponse struct {
	ID              int64               `json:"id"`
	Name            string              `json:"name"`
	Description     *string             `json:"description,omitempty"`
	DescriptionHTML string              `json:"description_html,omitempty"`
	Ingredients     []recipe.Ingredient `json:"ingredients"`
}

func newRecipeResponse(r *recipe.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		Ingredients: r.Ingredients,
	}
	if r.Description != nil {
		resp.DescriptionHTML = Linkify(*r.Description)
	}
	return resp
}

// ListRecipes returns every recipe without ingredients.
func (h *Handler) ListRecipes(c *gin.Context) {
	recipes, err := h.RecipeStore.ListRecipes(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns one recipe with its ingredients.
func (h *Handler) GetRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}

	r, err := h.RecipeStore.GetRecipeByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if r == nil {
		c.JSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(r))
}

// CreateRecipe stores a new recipe, creating any ingredients given by name.
func (h *Handler) CreateRecipe(c *gin.Context) {
	req, refs, ok := bindRecipe(c)
	if !ok {
		return
	}

	created, err := h.RecipeStore.CreateRecipe(c.Request.Context(), req.Name, refs, normalizeDescription(req.Description))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/recipes/"+strconv.FormatInt(created.ID, 10))
	c.JSON(http.StatusCreated, newRecipeResponse(created))
}

// UpdateRecipe replaces a recipe's name, description and ingredients.
func (h *Handler) UpdateRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	req, refs, ok := bindRecipe(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := h.RecipeStore.UpdateRecipe(ctx, id, req.Name, refs, normalizeDescription(req.Description)); err != nil {
		respondError(c, err)
		return
	}

	updated, err := h.RecipeStore.GetRecipeByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	if updated == nil {
		// Deleted by someone else right after our update.
		c.JSON(http.StatusNotFound, errorResponse{Code: codeNotFound, Message: "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, newRecipeResponse(updated))
}

// DeleteRecipe removes a recipe.
func (h *Handler) DeleteRecipe(c *gin.Context) {
	id, ok := recipeID(c)
	if !ok {
		return
	}
	if err := h.RecipeStore.DeleteRecipe(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListIngredients returns the ingredient catalog for selectors.
func (h *Handler) ListIngredients(c *gin.Context) {
	ingredients, err := h.RecipeStore.ListIngredients(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// ResolveIngredients looks up ingredients by ID or name and adds unknown names
// to the catalog. The response has one entry per requested ingredient.
func (h *Handler) ResolveIngredients(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: codeInvalidRequest, Message: err.Error()})
		return
	}
	refs, err := recipe.ParseIngredientRefs(req.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}

	ingredients, err := h.RecipeStore.ResolveIngredients(c.Request.Context(), refs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// Search ranks recipes by how many of their ingredients are in the request.
func (h *Handler) Search(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: codeInvalidRequest, Message: err.Error()})
		return
	}

	matches, err := h.Matcher.FindMatches(c.Request.Context(), req.Ingredients)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, matches)
}

// Health reports whether the database is reachable.
func (h *Handler) Health(c *gin.Context) {
	if err := h.RecipeStore.Ping(c.Request.Context()); err != nil {
		logging.Ctx(c.Request.Context()).Warn().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func recipeID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Code: codeInvalidRequest, Message: "invalid recipe id"})
		return 0, false
	}
	return id, true
}

func bindRecipe(c *gin.Context) (recipeRequest, []recipe.IngredientRef, bool) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Code: codeInvalidRequest, Message: err.Error()})
		return req, nil, false
	}
	req.Name = strings.TrimSpace(req.Name)
	refs, err := recipe.ParseIngredientRefs(req.Ingredients)
	if err != nil {
		respondError(c, err)
		return req, nil, false
	}
	return req, refs, true
}

// normalizeDescription maps blank descriptions to no description.
func normalizeDescription(desc *string) *string {
	if desc == nil || strings.TrimSpace(*desc) == "" {
		return nil
	}
	return desc
}

func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, codeInternalError
	switch {
	case errors.Is(err, recipe.ErrInvalidName):
		status, code = http.StatusBadRequest, codeInvalidRequest
	case errors.Is(err, recipe.ErrNotFound):
		status, code = http.StatusNotFound, codeNotFound
	case errors.Is(err, recipe.ErrDuplicateName), errors.Is(err, recipe.ErrIntegrityConflict):
		status, code = http.StatusConflict, codeConflict
	case errors.Is(err, context.DeadlineExceeded):
		status, code = http.StatusRequestTimeout, codeRequestTimeout
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		logging.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		msg = "internal error"
	}
	_ = c.Error(err)
	c.JSON(status, errorResponse{Code: code, Message: msg})
}
