package main

import (
	"log"
	"net/http"

	_ "cinerec/docs" // swagger docs

	"cinerec/internal/cache"
	"cinerec/internal/config"
	"cinerec/internal/db"
	"cinerec/internal/handler"
	"cinerec/internal/repository"
	"cinerec/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
)

// @title CineRec API
// @version 1.0
// @description API de recomendación de películas (hybrid, Mongo, Redis)
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	// Mongo y Redis
	db.InitMongo(cfg)
	redisCache := cache.InitRedis(cfg)

	// repos
	userRepo := repository.NewUserRepository()
	movieRepo := repository.NewMovieRepository()
	interactionRepo := repository.NewInteractionRepository()
	recRepo := repository.NewRecommendationRepository()
	expRepo := repository.NewExperimentRepository()

	// services
	authSvc := service.NewAuthService(userRepo, cfg.JWTSecret)
	movieSvc := service.NewMovieService(movieRepo)
	recSvc := service.NewRecommendService(interactionRepo, movieRepo, redisCache, service.DefaultParams())
	expSvc := service.NewExperimentService(expRepo, recRepo, recSvc)
	interSvc := service.NewInteractionService(interactionRepo, recRepo, recSvc)

	// handlers
	authH := handler.NewAuthHandler(authSvc)
	movieH := handler.NewMovieHandler(movieSvc)
	recH := handler.NewRecommendHandler(recSvc, expSvc)
	interH := handler.NewInteractionHandler(interSvc)
	expH := handler.NewExperimentHandler(expSvc)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// =============
	// Rutas públicas
	// =============
	r.Get("/health", handler.Health)

	r.Post("/auth/register", authH.Register)
	r.Post("/auth/login", authH.Login)

	// Películas (públicas)
	r.Get("/movies/search", movieH.Search)
	r.Get("/movies/top", movieH.Top)
	r.Get("/movies/{id}", movieH.GetMovie)
	r.Get("/movies/{id}/similar", recH.SimilarMovies)

	// Trending global (sin perfil)
	r.Get("/trending", recH.Trending)

	// ===========================
	// Rutas protegidas con JWT
	// ===========================
	authMw := handler.JWTAuth(cfg.JWTSecret)

	r.Group(func(r chi.Router) {
		r.Use(authMw)

		// ---- Endpoints /me (USER normal) ----
		r.Route("/me", func(r chi.Router) {
			r.Get("/", authH.Me)
			r.Get("/recommendations", recH.MyRecommendations)
			r.Get("/recommendations/history", expH.History)
			r.Post("/interactions", interH.Record)
		})

		// ---- Endpoints solo ADMIN ----
		r.Group(func(r chi.Router) {
			r.Use(handler.AdminOnly())

			// recomendaciones de cualquier usuario
			r.Route("/users/{id}", func(r chi.Router) {
				// HTTP normal
				r.Get("/recommendations", recH.GetRecommendations)

				// WebSocket
				r.Get("/ws/recommendations", recH.GetRecommendationsWS)
			})

			// experimentos A/B y analytics
			r.Post("/admin/experiments", expH.Create)
			r.Get("/admin/experiments", expH.List)
			r.Get("/admin/analytics/performance", expH.Performance)
			r.Post("/admin/analytics/cleanup", expH.Cleanup)
		})
	})

	// Swagger UI
	r.Get("/swagger/*", httpSwagger.WrapHandler)

	log.Printf("HTTP escuchando en :%s", cfg.HTTPPort)
	log.Fatal(http.ListenAndServe(":"+cfg.HTTPPort, r))
}
