package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"chat-relay/internal/handlers"
	"chat-relay/internal/middleware"
)

func New(chatHandler *handlers.ChatHandler, maxBodyBytes int64) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.CORS())

	r.Get("/", handlers.Index)
	r.Get("/health", handlers.Health)

	r.With(middleware.BodyLimit(maxBodyBytes)).Post("/chat", chatHandler.Chat)

	return r
}
