package handlers

import (
	"net/http"

	"chat-relay/internal/models"
)

const indexText = "Chat relay is up and running!"

// Index is the plain-text liveness probe on "/".
func Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(indexText))
}

func Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, models.HealthResponse{Status: "ok"})
}
