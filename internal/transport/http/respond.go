package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"quiz-engine/internal/domain"
)

type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorPayload{Message: msg})
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig),
		errors.Is(err, domain.ErrAnswerTypeMismatch),
		errors.Is(err, domain.ErrUnknownQuestionType),
		errors.Is(err, domain.ErrNoAnswer):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrQuizNotFound),
		errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrResultNotFound),
		errors.Is(err, domain.ErrQuestionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrQuizClosed),
		errors.Is(err, domain.ErrNotSubmitted),
		errors.Is(err, domain.ErrMaxAttemptsReached),
		errors.Is(err, domain.ErrSessionActive):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
