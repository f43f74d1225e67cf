package router

import (
	"surveyor/app/handler"
	"surveyor/app/middleware"
	"surveyor/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Router Router
type Router struct {
	experimentHandler *handler.ExperimentHandler
	profileHandler    *handler.ProfileHandler
	catalogHandler    *handler.CatalogHandler
	analysisHandler   *handler.AnalysisHandler
	apiKey            string
}

// NewRouter creates a new Router
func NewRouter(experimentHandler *handler.ExperimentHandler, profileHandler *handler.ProfileHandler, catalogHandler *handler.CatalogHandler, analysisHandler *handler.AnalysisHandler, apiKey string) *Router {
	return &Router{
		experimentHandler: experimentHandler,
		profileHandler:    profileHandler,
		catalogHandler:    catalogHandler,
		analysisHandler:   analysisHandler,
		apiKey:            apiKey,
	}
}

// Setup sets up routes
func (r *Router) Setup(engine *gin.Engine) {
	engine.Use(middleware.Recovery())
	engine.Use(middleware.Logger())

	api := engine.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(r.apiKey))
	{
		experiments := api.Group("/experiments")
		{
			experiments.POST("", r.experimentHandler.Create)
			experiments.GET("", r.experimentHandler.List)
			experiments.GET("/:id", r.experimentHandler.Get)
			experiments.POST("/:id/expand", r.experimentHandler.Expand)
			experiments.POST("/:id/cancel", r.experimentHandler.Cancel)
			experiments.GET("/:id/units", r.experimentHandler.ListUnits)

			// Analysis read API
			experiments.GET("/:id/results", r.analysisHandler.Results)
			experiments.GET("/:id/items", r.analysisHandler.Items)
			experiments.GET("/:id/summary", r.analysisHandler.Summary)
		}

		api.GET("/units/:unit_id", r.experimentHandler.GetUnit)

		profileSets := api.Group("/profile-sets")
		{
			profileSets.POST("", r.profileHandler.Create)
			profileSets.GET("", r.profileHandler.List)
			profileSets.GET("/:name", r.profileHandler.Get)
		}

		api.GET("/instruments", r.catalogHandler.Instruments)
		api.GET("/providers", r.catalogHandler.Providers)
		api.GET("/encodings", r.catalogHandler.Encodings)
	}

	engine.GET("/metrics", metrics.Handler())

	// Health check
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
