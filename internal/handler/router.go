package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// NewRouter связывает маршруты с обработчиками.
func NewRouter(users *UserHandler, logger *slog.Logger, requestTimeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)
	if requestTimeout > 0 {
		r.Use(middleware.Timeout(requestTimeout))
	}

	r.Get("/ping", Ping(logger))
	r.Post("/echo", Echo(logger))

	r.Route("/users", func(r chi.Router) {
		r.Get("/", users.ListUsers)
		r.Post("/", users.CreateUser)
		r.Get("/{id}", users.GetUser)
		r.Delete("/{id}", users.DeleteUser)
	})

	return r
}
