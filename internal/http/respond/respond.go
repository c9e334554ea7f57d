package respond

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/GovarthanahariN/CartProjectBE/internal/logging"
)

// MessageBody is the {"message": ...} shape used by auth and info endpoints.
type MessageBody struct {
	Message string `json:"message"`
}

// ErrorBody is the {"error": ...} shape used by cart endpoints and the
// catch-all handlers.
type ErrorBody struct {
	Error string `json:"error"`
}

// JSON writes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Error().Err(err).Msg("respond: encode payload failed")
	}
}

// Message writes {"message": message}.
func Message(w http.ResponseWriter, status int, message string) {
	JSON(w, status, MessageBody{Message: message})
}

// Error writes {"error": message}.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, ErrorBody{Error: message})
}
