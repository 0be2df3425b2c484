package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/AI-Template-SDK/trakkr/internal/logging"
	"github.com/AI-Template-SDK/trakkr/services"
)

// maxBodyBytes bounds request bodies; saved reports carry every raw response.
const maxBodyBytes = 8 << 20

// Envelope is the body of every API response
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log := logging.Component("api")
		log.Error().Err(err).Msg("failed to encode response")
	}
}

func writeData(w http.ResponseWriter, data any, message string) {
	writeJSON(w, http.StatusOK, Envelope{Success: true, Data: data, Message: message})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Success: status < 400, Message: message})
}

// writeError maps service errors onto status codes. Unknown errors are 500s.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	message := err.Error()
	switch {
	case errors.Is(err, services.ErrDuplicateReport):
		message = "A report with this data already exists. Please try generating a new report."
	case errors.Is(err, services.ErrNotFound):
		message = "Not found"
	}

	log := logging.Component("api")
	event := log.Warn()
	if status >= 500 {
		event = log.Error()
	}
	event.Err(err).Str("method", r.Method).Str("path", r.URL.Path).Int("status", status).Msg("request failed")

	writeMessage(w, status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidInput), errors.Is(err, services.ErrBrandLimit):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrDuplicateReport), errors.Is(err, services.ErrUserExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody reads a JSON body into v. An empty body leaves v untouched.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: malformed JSON body: %v", services.ErrInvalidInput, err)
}
