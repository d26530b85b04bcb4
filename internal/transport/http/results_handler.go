package http

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

// ResultsHandler exposes a ResultStore over HTTP:
//
//	POST   /results          body: QuizResult
//	GET    /results?quizId=&userId=&attemptNumber=[&all=true]
//	DELETE /results?quizId=&userId=&attemptNumber=
//	GET    /results/stats?quizId=&userId=
//
// A GET that matches nothing answers 404.
type ResultsHandler struct {
	results *app.ResultManager
	logger  *slog.Logger
}

func NewResultsHandler(results *app.ResultManager, logger *slog.Logger) *ResultsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResultsHandler{results: results, logger: logger}
}

// Routes returns a router meant to be mounted at /results.
func (h *ResultsHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.save)
	r.Get("/", h.load)
	r.Delete("/", h.delete)
	r.Get("/stats", h.stats)
	return r
}

func (h *ResultsHandler) save(w http.ResponseWriter, r *http.Request) {
	var result domain.QuizResult
	if err := json.NewDecoder(r.Body).Decode(&result); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid result body")
		return
	}
	if result.QuizID == "" || result.AttemptNumber <= 0 {
		writeErr(w, http.StatusBadRequest, "quizId and a positive attemptNumber are required")
		return
	}

	saved, err := h.results.Save(r.Context(), result)
	if err != nil {
		h.fail(w, r, "save result", err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *ResultsHandler) load(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}

	if r.URL.Query().Get("all") == "true" {
		all, err := h.results.LoadAll(r.Context(), q.QuizID, q.UserID)
		if err != nil {
			h.fail(w, r, "load results", err)
			return
		}
		if all == nil {
			all = []domain.LoadedResult{}
		}
		writeJSON(w, http.StatusOK, all)
		return
	}

	loaded, err := h.results.Load(r.Context(), q)
	if err != nil {
		h.fail(w, r, "load result", err)
		return
	}
	if loaded == nil {
		writeErr(w, http.StatusNotFound, domain.ErrResultNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, loaded)
}

func (h *ResultsHandler) delete(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	if err := h.results.Delete(r.Context(), q); err != nil {
		h.fail(w, r, "delete result", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ResultsHandler) stats(w http.ResponseWriter, r *http.Request) {
	q, ok := parseQuery(w, r)
	if !ok {
		return
	}
	stats, err := h.results.Stats(r.Context(), q.QuizID, q.UserID)
	if err != nil {
		h.fail(w, r, "result stats", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *ResultsHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "results: "+op, "error", err)
	}
	writeErr(w, status, err.Error())
}

func parseQuery(w http.ResponseWriter, r *http.Request) (domain.ResultQuery, bool) {
	values := r.URL.Query()
	q := domain.ResultQuery{
		QuizID: values.Get("quizId"),
		UserID: values.Get("userId"),
	}
	if q.QuizID == "" {
		writeErr(w, http.StatusBadRequest, "missing quizId")
		return q, false
	}
	if raw := values.Get("attemptNumber"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeErr(w, http.StatusBadRequest, "invalid attemptNumber")
			return q, false
		}
		q.AttemptNumber = n
	}
	return q, true
}
