package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collectors holds the Prometheus instruments exported on /metrics.
type Collectors struct {
	listsBuilt      *prometheus.CounterVec
	listItems       prometheus.Histogram
	recipesIngested *prometheus.CounterVec
}

// NewCollectors creates the collectors and registers them with reg.
func NewCollectors(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		listsBuilt: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealcart_shopping_lists_built_total",
				Help: "Shopping lists generated, by source (plan or view)",
			},
			[]string{"source"},
		),
		listItems: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "mealcart_shopping_list_items",
				Help:    "Number of items in generated shopping lists",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),
		recipesIngested: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mealcart_recipes_ingested_total",
				Help: "Recipes processed by ingestion, by result",
			},
			[]string{"result"},
		),
	}
	reg.MustRegister(c.listsBuilt, c.listItems, c.recipesIngested)
	return c
}

// ObserveShoppingList counts a generated list and its size.
func (c *Collectors) ObserveShoppingList(source string, items int) {
	c.listsBuilt.WithLabelValues(source).Inc()
	c.listItems.Observe(float64(items))
}

// ObserveIngest counts one recipe ingestion outcome such as "saved",
// "skipped" or "failed".
func (c *Collectors) ObserveIngest(result string) {
	c.recipesIngested.WithLabelValues(result).Inc()
}
