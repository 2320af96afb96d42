package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/nexusai/dispatch-api/internal/api"
	apiMiddleware "github.com/nexusai/dispatch-api/internal/api/middleware"
)

// setupRouter creates and configures the application router with all routes
// and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	taskHandler := api.NewTaskHandler(app.taskService, app.dispatcher, app.logger)
	healthHandler := api.NewHealthHandler(app.db, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apiMiddleware.IdentityMiddleware(app.config.Server.RequireIdentity))

			// Task trigger surfaces
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Get("/tasks/{id}/logs", taskHandler.ListTaskLogs)
			r.Post("/tasks/{id}/run", taskHandler.RunTask)
			r.Post("/tasks/{id}/cancel", taskHandler.CancelTask)
		})

		// Scheduled trigger surface, invoked by an external scheduler.
		r.Post("/dispatch/run", taskHandler.RunBatch)
	})

	r.Get("/health", healthHandler.Check)

	return r
}
