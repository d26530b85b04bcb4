package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
)

type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

func NewWSHandler(service *app.QuizService, logger *slog.Logger) *WSHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &WSHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	QuestionID string           `json:"questionId"`
	Type       domain.ValueKind `json:"type"`
	Value      json.RawMessage  `json:"value"`
}

type questionPayload struct {
	QuestionID string `json:"questionId"`
}

type goToPayload struct {
	Index int `json:"index"`
}

// reviewPayload.Action is enter (default), exit or edit; edit jumps to Index.
type reviewPayload struct {
	Action string `json:"action"`
	Index  int    `json:"index"`
}

type statePayload struct {
	State         domain.QuizState `json:"state"`
	Progress      domain.Progress  `json:"progress"`
	CanGoNext     bool             `json:"canGoNext"`
	CanGoPrevious bool             `json:"canGoPrevious"`
	CanSubmit     bool             `json:"canSubmit"`
	ReviewMode    bool             `json:"reviewMode"`
	TimeUp        bool             `json:"timeUp"`
}

type joinedPayload struct {
	SessionID     string   `json:"sessionId"`
	AttemptNumber int      `json:"attemptNumber"`
	Quiz          quizView `json:"quiz"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

var errUnsupportedMessage = errors.New("unsupported message type")

// ServeWS upgrades HTTP requests to websockets and drives the caller's quiz session.
// The session outlives the connection so a client can reconnect to it, even after
// submitting; attempt=new asks for a fresh attempt instead.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	quizID := r.URL.Query().Get("quizId")
	userID := r.URL.Query().Get("userId")
	if quizID == "" {
		http.Error(w, "missing quizId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws: upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	open := h.service.Resume
	if r.URL.Query().Get("attempt") == "new" {
		open = h.service.Start
	}
	session, err := open(r.Context(), quizID, userID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	send <- outboundMessage[any]{Type: "joined", Payload: joinedPayload{
		SessionID:     session.ID(),
		AttemptNumber: session.State().AttemptNumber,
		Quiz:          viewOf(session.Config()),
	}}
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Warn("ws: write failed", "quiz_id", quizID, "user_id", userID, "error", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case state, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: stateOf(session, state)}:
				case <-closeSignals:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		if out, err := h.dispatch(r, session, inbound); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
		} else if out != nil {
			send <- *out
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// dispatch applies one client message. State changes reach the client through the
// subscription; only submissions answer directly.
func (h *WSHandler) dispatch(r *http.Request, session *app.Session, in inboundMessage) (*outboundMessage[any], error) {
	switch in.Type {
	case "answer":
		var p answerPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return nil, errors.New("invalid answer payload")
		}
		v, err := domain.DecodeValue(p.Type, p.Value)
		if err != nil {
			return nil, err
		}
		return nil, session.SetAnswer(p.QuestionID, v)
	case "clear":
		var p questionPayload
		_ = json.Unmarshal(in.Payload, &p)
		if p.QuestionID == "" {
			return nil, session.ClearAllAnswers()
		}
		return nil, session.ClearAnswer(p.QuestionID)
	case "next":
		session.Next()
	case "previous":
		session.Previous()
	case "goTo":
		var p goToPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return nil, errors.New("invalid goTo payload")
		}
		session.GoTo(p.Index)
	case "submitQuestion":
		var p questionPayload
		if err := json.Unmarshal(in.Payload, &p); err != nil {
			return nil, errors.New("invalid submitQuestion payload")
		}
		return nil, session.SubmitQuestion(p.QuestionID)
	case "submit":
		result, err := session.SubmitQuiz(r.Context())
		if err != nil && !errors.Is(err, domain.ErrPersistence) {
			return nil, err
		}
		// The attempt is graded even when saving it failed.
		if err != nil {
			h.logger.WarnContext(r.Context(), "ws: result not saved", "quiz_id", session.QuizID(), "error", err)
		}
		return &outboundMessage[any]{Type: "result", Payload: result}, nil
	case "review":
		var p reviewPayload
		_ = json.Unmarshal(in.Payload, &p)
		switch p.Action {
		case "exit":
			session.ExitReviewMode()
		case "edit":
			session.EditFromReview(p.Index)
		default:
			if !session.EnterReviewMode() {
				return nil, errors.New("review is not available")
			}
		}
	default:
		return nil, errUnsupportedMessage
	}
	return nil, nil
}

func stateOf(session *app.Session, state domain.QuizState) statePayload {
	return statePayload{
		State:         state,
		Progress:      app.ComputeProgress(session.Config(), state),
		CanGoNext:     session.CanGoNext(),
		CanGoPrevious: session.CanGoPrevious(),
		CanSubmit:     session.CanSubmitQuiz(),
		ReviewMode:    session.InReviewMode(),
		TimeUp:        session.TimeUp(),
	}
}
