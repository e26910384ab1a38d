package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/auth"
	"github.com/platemark/platemark-api/internal/config"
	"github.com/platemark/platemark-api/internal/handler"
	middlewarepkg "github.com/platemark/platemark-api/internal/middleware"
)

// Handlers aggregates HTTP handlers used by the router.
type Handlers struct {
	Auth        *handler.AuthHandler
	Users       *handler.UserAdminHandler
	Restaurants *handler.RestaurantsHandler
	Search      *handler.SearchHandler
	Visits      *handler.VisitsHandler
	AdminUpload *handler.AdminUploadHandler
	Enrich      *handler.EnrichHandler
}

// Register wires all HTTP routes for the API.
func Register(e *echo.Echo, cfg *config.Config, jwtManager *auth.JWTManager, handlers Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return handler.Success(c, http.StatusOK, "service healthy", map[string]any{"status": "ok"})
	})

	e.POST("/auth/login", handlers.Auth.Login)
	e.GET("/restaurants", handlers.Restaurants.List)
	e.GET("/restaurants/:id", handlers.Restaurants.Get)
	e.GET("/search", handlers.Search.Search)

	secured := e.Group("")
	secured.Use(middlewarepkg.JWT(jwtManager))

	secured.POST("/restaurants", handlers.Restaurants.Create)
	secured.PATCH("/restaurants/:id/status", handlers.Restaurants.UpdateStatus)
	secured.GET("/restaurants/:id/visits", handlers.Visits.List)
	secured.POST("/restaurants/:id/visits", handlers.Visits.Create)
	secured.PATCH("/restaurants/:id/visits/:visit_id", handlers.Visits.Update)

	admin := secured.Group("/admin", middlewarepkg.RequireRole("admin"))
	admin.GET("/users", handlers.Users.List)
	admin.POST("/users", handlers.Users.Create)
	admin.PATCH("/users/:id", handlers.Users.Update)
	admin.DELETE("/users/:id", handlers.Users.Delete)
	admin.POST("/upload-csv", handlers.AdminUpload.UploadCSV)
	admin.DELETE("/restaurants/:id", handlers.Restaurants.Delete)
	admin.POST("/enrich", handlers.Enrich.Run, middlewarepkg.PathRateLimiter("/admin/enrich", cfg.RateLimitEnrich))
}
