package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"

	"github.com/platemark/platemark-api/internal/ai"
	"github.com/platemark/platemark-api/internal/auth"
	"github.com/platemark/platemark-api/internal/config"
	"github.com/platemark/platemark-api/internal/database"
	"github.com/platemark/platemark-api/internal/geocode"
	"github.com/platemark/platemark-api/internal/handler"
	middlewarepkg "github.com/platemark/platemark-api/internal/middleware"
	"github.com/platemark/platemark-api/internal/places"
	"github.com/platemark/platemark-api/internal/repository"
	"github.com/platemark/platemark-api/internal/router"
	"github.com/platemark/platemark-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	defer pool.Close()

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)

	usersRepo := repository.NewPGXUsersRepository(pool)
	restaurantsRepo := repository.NewPGXRestaurantsRepository(pool)

	httpClient := &http.Client{Timeout: 15 * time.Second}

	// The Google proxy builds its own ID-token client; Nominatim covers
	// outages of the proxy.
	geocoder := geocode.NewChain(
		geocode.NewGoogleProxyGeocoder(nil, cfg.GeocoderBaseURL),
		geocode.NewNominatimGeocoder(httpClient, cfg.NominatimBaseURL),
	)

	placesClient := places.NewClient(httpClient, cfg.PlacesBaseURL, cfg.PlacesAPIKey)
	summarizer := ai.NewHTTPSummarizer(nil, cfg.SummarizerBaseURL)

	authService := service.NewAuthService(usersRepo, jwtManager)
	userService := service.NewUserService(usersRepo)
	restaurantsService := service.NewRestaurantsService(restaurantsRepo)
	searchService := service.NewSearchService(restaurantsRepo, geocoder)
	enrichmentService := service.NewEnrichmentService(restaurantsRepo, placesClient, summarizer, cfg.PhoneRegion, cfg.EnrichDelay)

	handlers := router.Handlers{
		Auth:        handler.NewAuthHandler(authService),
		Users:       handler.NewUserAdminHandler(userService),
		Restaurants: handler.NewRestaurantsHandler(restaurantsService),
		Search:      handler.NewSearchHandler(searchService),
		Visits:      handler.NewVisitsHandler(restaurantsService),
		AdminUpload: handler.NewAdminUploadHandler(restaurantsService),
		Enrich:      handler.NewEnrichHandler(enrichmentService),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middlewarepkg.RequestID())
	e.Use(middlewarepkg.Logging())
	e.Use(echoMiddleware.Recover())

	router.Register(e, cfg, jwtManager, handlers)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- e.Start(":" + cfg.Port)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		log.Printf("received signal %s, shutting down", sig)
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
		return
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}
}
