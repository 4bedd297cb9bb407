package rest

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/frahmantamala/ad-management/internal/ad"
	"github.com/frahmantamala/ad-management/internal/adattribute"
	"github.com/frahmantamala/ad-management/internal/adgraphic"
	"github.com/frahmantamala/ad-management/internal/auth"
	"github.com/frahmantamala/ad-management/internal/transport/middleware"
	"github.com/frahmantamala/ad-management/internal/transport/swagger"
	"github.com/frahmantamala/ad-management/internal/user"
	"github.com/go-chi/chi"
)

func RegisterAllRoutes(
	router *chi.Mux,
	db *sql.DB,
	authHandler *auth.Handler,
	engine *auth.Engine,
	userHandler *user.Handler,
	adHandler *ad.Handler,
	attributeHandler *adattribute.Handler,
	graphicHandler *adgraphic.Handler,
	allowedOrigins string,
	logger *slog.Logger,
) {
	healthHandler := NewHealthHandler(db)

	// Apply global middleware
	router.Use(middleware.CORS(allowedOrigins))
	router.Use(middleware.RequestID)
	router.Use(middleware.LoggingMiddleware(logger))
	router.Use(middleware.RecoveryMiddleware(logger))

	// Serve OpenAPI spec at root (outside API prefix)
	router.Get("/openapi.yml", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "./api/openapi.yml")
	})
	// Swagger UI route at root
	router.Handle("/swagger/*", swagger.Handler())

	// Mount API under /api/v1 to match OpenAPI basePath
	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", healthHandler.healthCheckHandler)
		r.Get("/ping", healthHandler.pingHandler)

		// Registration and login are the only unauthenticated writes
		if userHandler != nil {
			r.Post("/users", userHandler.Register)
		}
		if authHandler != nil {
			r.Post("/sessions", authHandler.Login)
		}

		// Public reads
		if adHandler != nil {
			r.Get("/ads", adHandler.List)
			r.Get("/ads/{id}", adHandler.Get)
		}
		if attributeHandler != nil {
			r.Get("/ad-attributes/{id}", attributeHandler.Get)
			r.Get("/ad-attributes/by-ad/{id}", attributeHandler.ListByAd)
		}

		if authHandler == nil {
			return
		}

		// Protected routes that require authentication
		r.Group(func(pr chi.Router) {
			pr.Use(authHandler.AuthMiddleware)

			pr.Get("/sessions", authHandler.ListSessions)
			pr.Delete("/sessions", authHandler.Logout)

			if userHandler != nil {
				pr.Get("/users/me", userHandler.GetCurrentUser)
			}

			if adHandler != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAd, auth.ActionCreate))
					ar.Post("/ads", adHandler.Create)
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAd, auth.ActionUpdate))
					ar.Put("/ads/{id}", adHandler.Update)
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAd, auth.ActionDelete))
					ar.Delete("/ads/{id}", adHandler.Delete)
				})
			}

			if attributeHandler != nil {
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAdAttribute, auth.ActionCreate))
					ar.Post("/ad-attributes", attributeHandler.Create)
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAdAttribute, auth.ActionUpdate))
					ar.Put("/ad-attributes/{id}", attributeHandler.Update)
				})
				pr.Group(func(ar chi.Router) {
					ar.Use(engine.Require(auth.ResourceAdAttribute, auth.ActionDelete))
					ar.Delete("/ad-attributes/{id}", attributeHandler.Delete)
				})
			}

			if graphicHandler != nil {
				pr.Group(func(gr chi.Router) {
					gr.Use(engine.Require(auth.ResourceAdGraphic, auth.ActionCreate))
					gr.Post("/ad-graphics", graphicHandler.Upload)
				})
				pr.Get("/ad-graphics/{id}", graphicHandler.Get)
				pr.Group(func(gr chi.Router) {
					gr.Use(engine.Require(auth.ResourceAdGraphic, auth.ActionUpdate))
					gr.Put("/ad-graphics/{id}", graphicHandler.Update)
				})
				pr.Group(func(gr chi.Router) {
					gr.Use(engine.Require(auth.ResourceAdGraphic, auth.ActionDelete))
					gr.Delete("/ad-graphics/{id}", graphicHandler.Delete)
				})
			}
		})
	})
}
