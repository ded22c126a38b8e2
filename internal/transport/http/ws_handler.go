package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"kifuliiru-quiz-service/internal/app"
	"kifuliiru-quiz-service/internal/auth"
	"kifuliiru-quiz-service/internal/domain"
	"kifuliiru-quiz-service/internal/logger"
	"github.com/gorilla/websocket"
)

// WSHandler exposes the quiz engine over a websocket: one connection is one
// quiz session. Inbound events mirror the presentation contract (start,
// answer, next, previous, retry, continue, retrySave); every engine mutation
// is pushed back as a state snapshot.
type WSHandler struct {
	service  *app.QuizService
	verifier *auth.Verifier
	log      *logger.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService, verifier *auth.Verifier, log *logger.Logger) *WSHandler {
	return &WSHandler{
		service:  service,
		verifier: verifier,
		log:      log.With("component", "ws"),
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
	OptionIndex int `json:"optionIndex"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ServeWS authenticates the handshake, opens (or resumes) the user's quiz
// session, and pumps events/snapshots until the connection drops.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	claims, err := h.verifier.Verify(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("ws upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	engine, err := h.service.Open(r.Context(), claims.UserID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: toErrorPayload(err)})
		return
	}
	defer h.service.Release(claims.UserID)

	updates, cancel := engine.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				h.log.Warn("ws write error", "err", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case snap, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "state", Payload: snap}:
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
		if err := h.dispatch(engine, inbound, send); err != nil {
			send <- outboundMessage[any]{Type: "error", Payload: toErrorPayload(err)}
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(engine *app.Engine, inbound inboundMessage, send chan<- outboundMessage[any]) error {
	switch inbound.Type {
	case "start":
		return engine.Start()
	case "answer":
		var payload answerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			return errors.New("invalid answer payload")
		}
		return engine.Answer(payload.OptionIndex)
	case "next":
		return engine.Next()
	case "previous":
		return engine.Previous()
	case "retry":
		return engine.Retry()
	case "retrySave":
		return engine.RetrySave()
	case "continue":
		if err := engine.Continue(); err != nil {
			return err
		}
		// Exit effect: the client navigates to the contribution area.
		send <- outboundMessage[any]{Type: "continue", Payload: struct{}{}}
		return nil
	default:
		return errors.New("unsupported message type")
	}
}

func toErrorPayload(err error) errorPayload {
	code := "internal"
	switch {
	case errors.Is(err, domain.ErrQuestionsUnavailable):
		code = "questions_unavailable"
	case errors.Is(err, domain.ErrUnauthorized), errors.Is(err, domain.ErrProfileNotFound):
		code = "unauthorized"
	case errors.Is(err, domain.ErrRateLimited):
		code = "rate_limited"
	case errors.Is(err, domain.ErrContinueUnavailable):
		code = "continue_unavailable"
	case errors.Is(err, domain.ErrInvalidTransition):
		code = "invalid_transition"
	case errors.Is(err, domain.ErrOptionOutOfRange):
		code = "option_out_of_range"
	}
	return errorPayload{Code: code, Message: err.Error()}
}
