package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/mgarcia-dev/biblioteca-api/internal/api/handlers"
	"github.com/mgarcia-dev/biblioteca-api/internal/api/middleware"
	"github.com/mgarcia-dev/biblioteca-api/internal/service"
)

func NewRouter(services *service.Services) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.CORS)

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(services.Auth)
	bookHandler := handlers.NewBookHandler(services.Book)

	r.Route("/api", func(r chi.Router) {
		// Public routes
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(services.Auth))

			r.Get("/profile", authHandler.Profile)
			r.Get("/usuario", authHandler.Profile)
			r.Put("/profile/password", authHandler.ChangePassword)
			r.Get("/dashboard", authHandler.Dashboard)
			r.Post("/logout", authHandler.Logout)
			r.Get("/verify-token", authHandler.VerifyToken)

			r.Route("/libros", func(r chi.Router) {
				r.Get("/", bookHandler.List)
				r.Post("/", bookHandler.Create)
				r.Get("/stats/general", bookHandler.Stats)
				r.Get("/{id}", bookHandler.Get)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
			})
		})
	})

	return r
}
