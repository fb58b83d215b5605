package httpx

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the envelope for every failed request.
type ErrorResponse struct {
	Error ErrorResponseBody `json:"error"`
}

// ErrorResponseBody holds a message (a string, or a list of strings for
// validation failures) and the HTTP status repeated from the response line.
type ErrorResponseBody struct {
	Message any `json:"message"`
	Status  int `json:"status"`
}

// JSON writes v as the response body with the given status.
func JSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "error", err)
	}
}

// JSONError writes the error envelope.
func JSONError(w http.ResponseWriter, statusCode int, message any) {
	JSON(w, statusCode, ErrorResponse{
		Error: ErrorResponseBody{
			Message: message,
			Status:  statusCode,
		},
	})
}

// NotFoundHandler answers unmatched routes with the error envelope.
func NotFoundHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONError(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
}
