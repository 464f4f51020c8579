package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mealcart/internal/metrics"
	"mealcart/internal/planner"
	"mealcart/internal/recipe"
	"mealcart/internal/shopping"
)

// mockShoppingService records the range it was asked for.
type mockShoppingService struct {
	from, to time.Time
	err      error
	stored   *shopping.ShoppingList
}

func (m *mockShoppingService) ForRange(ctx context.Context, userID string, from, to time.Time) (*shopping.ShoppingList, error) {
	m.from, m.to = from, to
	if m.err != nil {
		return nil, m.err
	}
	if to.Before(from) {
		return nil, shopping.ErrInvalidRange
	}
	return &shopping.ShoppingList{
		UserID:    userID,
		StartDate: planner.DateKey(from),
		EndDate:   planner.DateKey(to),
		Items:     []shopping.Item{{Name: "Flour", Amount: "3 cups"}},
	}, nil
}

func (m *mockShoppingService) Latest(ctx context.Context, userID string) (*shopping.ShoppingList, error) {
	return m.stored, m.err
}

func (m *mockShoppingService) Stored(ctx context.Context, userID string, from, to time.Time) (*shopping.ShoppingList, error) {
	m.from, m.to = from, to
	return m.stored, m.err
}

func (m *mockShoppingService) FromView(view planner.MealPlanView) []shopping.Item {
	return shopping.BuildShoppingList(view)
}

type assignCall struct {
	userID, date string
	slot         planner.Slot
	recipeID     string
}

type mockPlanStore struct {
	assigned []assignCall
	cleared  []assignCall
}

func (m *mockPlanStore) Assign(ctx context.Context, userID string, date time.Time, slot planner.Slot, recipeID string) error {
	m.assigned = append(m.assigned, assignCall{userID, planner.DateKey(date), slot, recipeID})
	return nil
}

func (m *mockPlanStore) Clear(ctx context.Context, userID string, date time.Time, slot planner.Slot) error {
	m.cleared = append(m.cleared, assignCall{userID: userID, date: planner.DateKey(date), slot: slot})
	return nil
}

type mockRecipeStore struct {
	recipes map[string]*recipe.Recipe
	getErr  error
}

func newMockRecipeStore() *mockRecipeStore {
	return &mockRecipeStore{recipes: make(map[string]*recipe.Recipe)}
}

func (m *mockRecipeStore) Get(ctx context.Context, id string) (*recipe.Recipe, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.recipes[id], nil
}

func (m *mockRecipeStore) List(ctx context.Context) ([]recipe.Recipe, error) {
	var out []recipe.Recipe
	for _, r := range m.recipes {
		out = append(out, *r)
	}
	return out, nil
}

func (m *mockRecipeStore) Save(ctx context.Context, rec recipe.Recipe) error {
	m.recipes[rec.ID] = &rec
	return nil
}

type fixture struct {
	router   *gin.Engine
	shopping *mockShoppingService
	plans    *mockPlanStore
	recipes  *mockRecipeStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		shopping: &mockShoppingService{},
		plans:    &mockPlanStore{},
		recipes:  newMockRecipeStore(),
	}
	h := NewHandler(f.shopping, f.plans, f.recipes, 7)
	h.Now = func() time.Time { return time.Date(2024, 5, 1, 18, 30, 0, 0, time.UTC) }

	reg := prometheus.NewRegistry()
	metrics.NewCollectors(reg).ObserveShoppingList("view", 3)

	f.router = NewRouter(h, RouterConfig{Gatherer: reg})
	return f
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "ok")
}

func TestBuildShoppingList(t *testing.T) {
	f := newFixture(t)

	t.Run("Success", func(t *testing.T) {
		body := `{
			"2024-05-01": {"breakfast": {"id": "a", "ingredients": [{"name": "Flour", "amount": "2 cups"}]}},
			"2024-05-02": {"lunch": {"id": "b", "ingredients": [{"name": "flour", "amount": "1 cup"}, {"name": "", "amount": "1 cup"}]}}
		}`
		w := f.do(http.MethodPost, "/api/shopping-list", body)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Items []shopping.Item `json:"items"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, []shopping.Item{{Name: "Flour", Amount: "3 cups"}}, resp.Items)
	})

	t.Run("EmptyPlan", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/shopping-list", `{}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"items": []}`, w.Body.String())
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/shopping-list", `[1, 2`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestGetShoppingList(t *testing.T) {
	t.Run("DefaultRange", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2024-05-01", planner.DateKey(f.shopping.from))
		assert.Equal(t, "2024-05-07", planner.DateKey(f.shopping.to))
		assert.Contains(t, w.Body.String(), `"start_date":"2024-05-01"`)
	})

	t.Run("ExplicitRange", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list?from=2024-06-01&to=2024-06-03", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2024-06-03", planner.DateKey(f.shopping.to))
	})

	t.Run("InvalidRange", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list?from=2024-06-03&to=2024-06-01", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list?from=yesterday", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("StoreError", func(t *testing.T) {
		f := newFixture(t)
		f.shopping.err = errors.New("disk on fire")
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list", "")
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})
}

// emptyPlans serves an empty meal plan for any range.
type emptyPlans struct{}

func (emptyPlans) View(ctx context.Context, userID string, from, to time.Time) (planner.MealPlanView, error) {
	return planner.MealPlanView{}, nil
}

func TestGetShoppingList_SingleDayToday(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(shopping.NewService(emptyPlans{}, nil, nil), &mockPlanStore{}, newMockRecipeStore(), 7)
	h.Now = func() time.Time { return time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC) }
	router := NewRouter(h, RouterConfig{})

	req, _ := http.NewRequest(http.MethodGet, "/api/users/alice/shopping-list?to=2024-05-01", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list shopping.ShoppingList
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, "2024-05-01", list.StartDate)
	assert.Equal(t, "2024-05-01", list.EndDate)
}

func TestGetStoredShoppingList(t *testing.T) {
	stored := &shopping.ShoppingList{ID: 3, UserID: "alice", StartDate: "2024-05-01", EndDate: "2024-05-07", Items: []shopping.Item{{Name: "Rice", Amount: "1 cup"}}}

	t.Run("Latest", func(t *testing.T) {
		f := newFixture(t)
		f.shopping.stored = stored
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list/latest", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":3`)
		assert.True(t, f.shopping.from.IsZero(), "expected Latest, not a range lookup")
	})

	t.Run("ForRange", func(t *testing.T) {
		f := newFixture(t)
		f.shopping.stored = stored
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list/latest?from=2024-05-01&to=2024-05-07", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2024-05-07", planner.DateKey(f.shopping.to))
	})

	t.Run("NoneYet", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list/latest", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("InvalidDate", func(t *testing.T) {
		f := newFixture(t)
		w := f.do(http.MethodGet, "/api/users/alice/shopping-list/latest?from=soon&to=2024-05-07", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPlanSlots(t *testing.T) {
	f := newFixture(t)
	f.recipes.recipes["soup"] = &recipe.Recipe{ID: "soup", Title: "Soup"}

	t.Run("Assign", func(t *testing.T) {
		w := f.do(http.MethodPut, "/api/users/alice/plan/2024-05-02/Dinner", `{"recipe_id": "soup"}`)
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, f.plans.assigned, 1)
		assert.Equal(t, assignCall{"alice", "2024-05-02", planner.SlotDinner, "soup"}, f.plans.assigned[0])
	})

	t.Run("UnknownRecipe", func(t *testing.T) {
		w := f.do(http.MethodPut, "/api/users/alice/plan/2024-05-02/dinner", `{"recipe_id": "nope"}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("MissingRecipeID", func(t *testing.T) {
		w := f.do(http.MethodPut, "/api/users/alice/plan/2024-05-02/dinner", `{}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("UnknownSlot", func(t *testing.T) {
		w := f.do(http.MethodPut, "/api/users/alice/plan/2024-05-02/brunch", `{"recipe_id": "soup"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Clear", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/users/alice/plan/2024-05-02/snacks", "")
		require.Equal(t, http.StatusNoContent, w.Code)
		require.Len(t, f.plans.cleared, 1)
		assert.Equal(t, planner.SlotSnacks, f.plans.cleared[0].slot)
	})

	t.Run("BadDate", func(t *testing.T) {
		w := f.do(http.MethodDelete, "/api/users/alice/plan/02-05-2024/snacks", "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRecipes(t *testing.T) {
	f := newFixture(t)

	t.Run("Create", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/recipes", `{"id": "pie", "title": "Pie", "ingredients": [{"name": "Apple", "amount": "3"}]}`)
		require.Equal(t, http.StatusCreated, w.Code)
		require.Contains(t, f.recipes.recipes, "pie")
	})

	t.Run("CreateWithoutID", func(t *testing.T) {
		w := f.do(http.MethodPost, "/api/recipes", `{"title": "Nameless"}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Get", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/recipes/pie", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"title":"Pie"`)
	})

	t.Run("GetMissing", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/recipes/cake", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("List", func(t *testing.T) {
		w := f.do(http.MethodGet, "/api/recipes", "")
		require.Equal(t, http.StatusOK, w.Code)
		var recipes []recipe.Recipe
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipes))
		assert.Len(t, recipes, 1)
	})

	t.Run("Timeout", func(t *testing.T) {
		f.recipes.getErr = context.DeadlineExceeded
		defer func() { f.recipes.getErr = nil }()
		w := f.do(http.MethodGet, "/api/recipes/pie", "")
		assert.Equal(t, http.StatusRequestTimeout, w.Code)
	})
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t)
	w := f.do(http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `mealcart_shopping_lists_built_total{source="view"} 1`))
}

func TestWebhookMounted(t *testing.T) {
	gin.SetMode(gin.TestMode)
	called := false
	webhook := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	})
	router := NewRouter(NewHandler(&mockShoppingService{}, &mockPlanStore{}, newMockRecipeStore(), 7), RouterConfig{Webhook: webhook})

	req, _ := http.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, called)
}
