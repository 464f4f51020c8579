package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollectors(reg)

	c.ObserveShoppingList("plan", 4)
	c.ObserveShoppingList("plan", 0)
	c.ObserveShoppingList("view", 12)
	c.ObserveIngest("saved")
	c.ObserveIngest("failed")
	c.ObserveIngest("saved")

	if got := testutil.ToFloat64(c.listsBuilt.WithLabelValues("plan")); got != 2 {
		t.Errorf("Expected 2 plan lists, got %v", got)
	}
	if got := testutil.ToFloat64(c.listsBuilt.WithLabelValues("view")); got != 1 {
		t.Errorf("Expected 1 view list, got %v", got)
	}
	if got := testutil.ToFloat64(c.recipesIngested.WithLabelValues("saved")); got != 2 {
		t.Errorf("Expected 2 saved recipes, got %v", got)
	}
	if n := testutil.CollectAndCount(c.listItems); n != 1 {
		t.Errorf("Expected one item histogram, got %d", n)
	}
}

func TestGetSysHealth(t *testing.T) {
	h := GetSysHealth(t.TempDir(), "/does/not/exist")
	if h.Goroutines == 0 {
		t.Error("Expected a goroutine count")
	}
	if h.DataSize != "0 B" {
		t.Errorf("Expected empty data size, got '%s'", h.DataSize)
	}
}
