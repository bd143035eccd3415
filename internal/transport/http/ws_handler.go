package http

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gorilla/websocket"
	"trivia-quiz-service/internal/app"
	"trivia-quiz-service/internal/domain"
)

// WSHandler exposes one quiz session per websocket connection. The client
// feeds user events in; session views, summaries and score tables flow out.
type WSHandler struct {
	service  *app.QuizService
	upgrader websocket.Upgrader
}

func NewWSHandler(service *app.QuizService) *WSHandler {
	return &WSHandler{
		service: service,
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

type selectAnswerPayload struct {
	Index int `json:"index"`
}

type filterPayload struct {
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type namePayload struct {
	Name string `json:"name"`
}

type themePayload struct {
	Theme string `json:"theme"`
}

type createQuestionPayload struct {
	Set      string          `json:"set"`
	Question domain.Question `json:"question"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type errorPayload struct {
	Message string `json:"message"`
}

type scoresPayload struct {
	Category   string              `json:"category"`
	Difficulty string              `json:"difficulty"`
	Entries    []domain.ScoreEntry `json:"entries"`
}

// ServeWS upgrades the request, opens a session for the query-string
// filters and pumps events both ways until the client disconnects.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	difficulty := r.URL.Query().Get("difficulty")
	setName := r.URL.Query().Get("set")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	if setName != "" {
		if err := h.service.LoadSet(r.Context(), setName); err != nil {
			_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
			return
		}
	}

	session, err := h.service.NewSession(category, difficulty)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}
	defer session.Close()

	updates, cancel := session.Subscribe()
	defer cancel()

	send := make(chan outboundMessage[any], 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case view, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage[any]{Type: "session", Payload: view}:
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
		h.dispatch(r, session, send, inbound)
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

func (h *WSHandler) dispatch(r *http.Request, session *app.Session, send chan<- outboundMessage[any], inbound inboundMessage) {
	ctx := r.Context()
	fail := func(err error) {
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: err.Error()}}
	}

	switch inbound.Type {
	case "selectAnswer":
		var payload selectAnswerPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := session.SelectAnswer(payload.Index); err != nil {
			fail(err)
		}
	case "advance":
		session.Advance()
	case "restart":
		session.Restart()
	case "changeFilter":
		var payload filterPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := session.ChangeFilter(payload.Category, payload.Difficulty); err != nil {
			fail(err)
		}
	case "selectCategory":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		_, difficulty := session.Filters()
		if err := session.ChangeFilter(payload.Name, string(difficulty)); err != nil {
			fail(err)
		}
	case "selectDifficulty":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		category, _ := session.Filters()
		if err := session.ChangeFilter(category, payload.Name); err != nil {
			fail(err)
		}
	case "summary":
		send <- outboundMessage[any]{Type: "summary", Payload: session.Summary()}
	case "categories":
		send <- outboundMessage[any]{Type: "categories", Payload: h.service.Categories()}
	case "highscores":
		var payload filterPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		diff, ok := domain.ParseDifficulty(payload.Difficulty)
		if !ok {
			fail(domain.ErrInvalidInput)
			return
		}
		entries, err := h.service.TopScores(ctx, payload.Category, diff)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "highscores", Payload: scoresPayload{
			Category:   payload.Category,
			Difficulty: string(diff),
			Entries:    entries,
		}}
	case "history":
		entries, err := h.service.RecentHistory(ctx)
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "history", Payload: entries}
	case "setPlayerName":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := h.service.SetPlayerName(ctx, payload.Name); err != nil {
			fail(err)
		}
	case "setTheme":
		var payload themePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := h.service.SetTheme(ctx, payload.Theme); err != nil {
			fail(err)
		}
	case "createQuestion":
		var payload createQuestionPayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := h.service.CreateQuestion(payload.Set, payload.Question); err != nil {
			fail(err)
		}
	case "deleteQuizSet":
		var payload namePayload
		if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
			fail(domain.ErrInvalidInput)
			return
		}
		if err := h.service.DeleteQuizSet(payload.Name); err != nil {
			fail(err)
		}
	case "importBank":
		if err := h.service.ImportBank(inbound.Payload); err != nil {
			fail(err)
		}
	case "exportBank":
		data, err := h.service.ExportBank()
		if err != nil {
			fail(err)
			return
		}
		send <- outboundMessage[any]{Type: "bank", Payload: json.RawMessage(data)}
	default:
		send <- outboundMessage[any]{Type: "error", Payload: errorPayload{Message: "unsupported message type"}}
	}
}
