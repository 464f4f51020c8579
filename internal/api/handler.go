package api

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
)

// ShoppingService builds shopping lists.
type ShoppingService interface {
	ForRange(ctx context.Context, userID string, from, to time.Time) (*shopping.ShoppingList, error)
	FromView(view planner.MealPlanView) []shopping.Item
	Latest(ctx context.Context, userID string) (*shopping.ShoppingList, error)
	Stored(ctx context.Context, userID string, from, to time.Time) (*shopping.ShoppingList, error)
}

// PlanStore defines the meal plan operations exposed over HTTP.
type PlanStore interface {
	Assign(ctx context.Context, userID string, date time.Time, slot planner.Slot, recipeID string) error
	Clear(ctx context.Context, userID string, date time.Time, slot planner.Slot) error
}

// RecipeStore defines the recipe operations exposed over HTTP.
type RecipeStore interface {
	Get(ctx context.Context, id string) (*recipe.Recipe, error)
	List(ctx context.Context) ([]recipe.Recipe, error)
	Save(ctx context.Context, rec recipe.Recipe) error
}

// Handler handles HTTP requests.
type Handler struct {
	Shopping    ShoppingService
	Plans       PlanStore
	Recipes     RecipeStore
	DefaultDays int
	Now         func() time.Time
}

// NewHandler creates a new Handler. defaultDays is the length of the
// shopping list window when the request gives no end date.
func NewHandler(shoppingSvc ShoppingService, plans PlanStore, recipes RecipeStore, defaultDays int) *Handler {
	return &Handler{
		Shopping:    shoppingSvc,
		Plans:       plans,
		Recipes:     recipes,
		DefaultDays: defaultDays,
		Now:         time.Now,
	}
}

// Health reports that the server is up.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// BuildShoppingList builds a list from a meal plan snapshot in the request body.
func (h *Handler) BuildShoppingList(c *gin.Context) {
	var view planner.MealPlanView
	if err := c.ShouldBindJSON(&view); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid meal plan: %s", err.Error())})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": h.Shopping.FromView(view)})
}

// GetShoppingList builds the list for a user's stored plan. The range
// defaults to today plus DefaultDays-1.
func (h *Handler) GetShoppingList(c *gin.Context) {
	userID := c.Param("user")

	from := planner.StartOfDay(h.Now().UTC())
	if q := c.Query("from"); q != "" {
		d, err := planner.ParseDate(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		from = d
	}

	days := h.DefaultDays
	if days < 1 {
		days = 1
	}
	to := from.AddDate(0, 0, days-1)
	if q := c.Query("to"); q != "" {
		d, err := planner.ParseDate(q)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		to = d
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	list, err := h.Shopping.ForRange(ctx, userID, from, to)
	if err != nil {
		if errors.Is(err, shopping.ErrInvalidRange) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		writeStoreError(c, err)
		return
	}

	c.JSON(http.StatusOK, list)
}

// GetStoredShoppingList returns a previously generated list without
// rebuilding it: the one for exactly ?from=&to= when both are given,
// otherwise the user's most recent one.
func (h *Handler) GetStoredShoppingList(c *gin.Context) {
	userID := c.Param("user")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	var (
		list *shopping.ShoppingList
		err  error
	)
	fromQ, toQ := c.Query("from"), c.Query("to")
	if fromQ != "" && toQ != "" {
		from, ferr := planner.ParseDate(fromQ)
		to, terr := planner.ParseDate(toQ)
		if ferr != nil || terr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errors.Join(ferr, terr).Error()})
			return
		}
		list, err = h.Shopping.Stored(ctx, userID, from, to)
	} else {
		list, err = h.Shopping.Latest(ctx, userID)
	}
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if list == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no shopping list has been generated yet"})
		return
	}

	c.JSON(http.StatusOK, list)
}

type assignRequest struct {
	RecipeID string `json:"recipe_id" binding:"required"`
}

// AssignSlot puts a recipe into a meal slot.
func (h *Handler) AssignSlot(c *gin.Context) {
	date, slot, ok := slotParams(c)
	if !ok {
		return
	}

	var req assignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid request: %s", err.Error())})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Recipes.Get(ctx, req.RecipeID)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}

	if err := h.Plans.Assign(ctx, c.Param("user"), date, slot, req.RecipeID); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ClearSlot empties a meal slot.
func (h *Handler) ClearSlot(c *gin.Context) {
	date, slot, ok := slotParams(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Plans.Clear(ctx, c.Param("user"), date, slot); err != nil {
		writeStoreError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListRecipes returns every stored recipe.
func (h *Handler) ListRecipes(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	recipes, err := h.Recipes.List(ctx)
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if recipes == nil {
		recipes = []recipe.Recipe{}
	}
	c.JSON(http.StatusOK, recipes)
}

// GetRecipe returns a single recipe by ID.
func (h *Handler) GetRecipe(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	rec, err := h.Recipes.Get(ctx, c.Param("id"))
	if err != nil {
		writeStoreError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "recipe not found"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// CreateRecipe stores a recipe supplied in the request body.
func (h *Handler) CreateRecipe(c *gin.Context) {
	var rec recipe.Recipe
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid recipe: %s", err.Error())})
		return
	}
	if rec.ID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "recipe id is required"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.Recipes.Save(ctx, rec); err != nil {
		writeStoreError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rec)
}

func slotParams(c *gin.Context) (time.Time, planner.Slot, bool) {
	date, err := planner.ParseDate(c.Param("date"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, "", false
	}
	slot, err := planner.ParseSlot(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return time.Time{}, "", false
	}
	return date, slot, true
}

func writeStoreError(c *gin.Context, err error) {
	if errors.Is(err, context.DeadlineExceeded) {
		c.JSON(http.StatusRequestTimeout, gin.H{"error": "database query timed out"})
		return
	}
	log.Printf("Error handling %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
