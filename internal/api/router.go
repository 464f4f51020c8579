package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig holds the optional pieces mounted next to the API routes.
type RouterConfig struct {
	AllowOrigins []string
	// Gatherer backs /metrics when set.
	Gatherer prometheus.Gatherer
	// Webhook receives Telegram updates on POST /webhook when set.
	Webhook http.Handler
}

// NewRouter wires the handler into a gin engine.
func NewRouter(h *Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowOrigins
		corsCfg.AllowCredentials = true
	}
	r.Use(cors.New(corsCfg))

	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.POST("/shopping-list", h.BuildShoppingList)
	api.GET("/users/:user/shopping-list", h.GetShoppingList)
	api.GET("/users/:user/shopping-list/latest", h.GetStoredShoppingList)
	api.PUT("/users/:user/plan/:date/:slot", h.AssignSlot)
	api.DELETE("/users/:user/plan/:date/:slot", h.ClearSlot)
	api.GET("/recipes", h.ListRecipes)
	api.GET("/recipes/:id", h.GetRecipe)
	api.POST("/recipes", h.CreateRecipe)

	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}
	if cfg.Webhook != nil {
		r.POST("/webhook", gin.WrapH(cfg.Webhook))
	}
	return r
}
