package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/upb/unified-ai-gateway/app"
	"github.com/upb/unified-ai-gateway/handlers"
)

// SetupRoutes configures all application routes and middleware
func SetupRoutes(deps *app.Dependencies) http.Handler {
	r := chi.NewRouter()

	// Core middleware
	r.Use(middleware.RequestID)
	r.Use(echoRequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))

	// CORS middleware
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:*", "https://*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	completionHandler := handlers.NewCompletionHandler(deps.Completion, deps.Logger)
	sessionHandler := handlers.NewSessionHandler(deps.Completion, deps.Logger)
	productsHandler := handlers.NewProductsHandler(deps.Logger)
	healthHandler := handlers.NewHealthHandler(deps.Completion, deps.Config.API.Title, deps.Config.API.Version, deps.Logger)

	// Public endpoints
	r.Get("/", healthHandler.HandleRoot)
	r.Get("/health", healthHandler.HandleHealth)
	r.Get("/products", productsHandler.HandleListProducts)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(deps.AuthMiddleware.RequireAPIKey)

		r.Post("/completion", completionHandler.HandleComplete)

		r.Route("/session/{product}/{session_id}", func(r chi.Router) {
			r.Get("/", sessionHandler.HandleGetSession)
			r.Delete("/", sessionHandler.HandleDeleteSession)
		})
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"endpoint not found"}`))
	})

	return r
}

// echoRequestID reflects the generated request ID back to the caller so
// failed requests can be correlated with server logs.
func echoRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID := middleware.GetReqID(r.Context()); requestID != "" {
			w.Header().Set("X-Request-ID", requestID)
		}
		next.ServeHTTP(w, r)
	})
}
