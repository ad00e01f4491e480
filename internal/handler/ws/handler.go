package ws

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/imagechat/backend/internal/handler/apierr"
	"github.com/imagechat/backend/internal/service/conversation"
)

// Handler runs an interactive Q&A loop over a websocket: the client sends
// question frames and receives chunk frames followed by an answer frame with
// the quota counters. The connection closes once the session is spent.
type Handler struct {
	svc      *conversation.Service
	upgrader websocket.Upgrader
}

// New creates the websocket handler.
func New(svc *conversation.Service) *Handler {
	return &Handler{
		svc: svc,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes mounts the websocket endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/chat/ws/{sessionID}", h.handleWebSocket)
}

type inboundFrame struct {
	Type     string `json:"type"`
	Question string `json:"question"`
}

type outboundFrame struct {
	Type               string `json:"type"`
	Content            string `json:"content,omitempty"`
	Answer             string `json:"answer,omitempty"`
	Error              string `json:"error,omitempty"`
	QuestionsUsed      int    `json:"questionsUsed,omitempty"`
	RemainingQuestions int    `json:"remainingQuestions,omitempty"`
	SessionActive      bool   `json:"sessionActive,omitempty"`
}

func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[ws] upgrade failed for session=%s: %v", sessionID, err)
		return
	}
	defer conn.Close()

	log.Printf("[ws] connection opened for session=%s", sessionID)

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[ws] session=%s read error: %v", sessionID, err)
			}
			return
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil {
			h.writeFrame(conn, outboundFrame{Type: "error", Error: apierr.CodeValidation})
			continue
		}
		if frame.Type != "question" {
			h.writeFrame(conn, outboundFrame{Type: "error", Error: apierr.CodeValidation})
			continue
		}

		result, err := h.svc.AskStream(r.Context(), sessionID, frame.Question, func(chunk string) {
			h.writeFrame(conn, outboundFrame{Type: "chunk", Content: chunk})
		})
		if err != nil {
			_, code := apierr.Classify(err)
			h.writeFrame(conn, outboundFrame{Type: "error", Error: code})
			if code == apierr.CodeSessionNotFound || code == apierr.CodeSessionExpired {
				return
			}
			continue
		}

		h.writeFrame(conn, outboundFrame{
			Type:               "answer",
			Answer:             result.Answer,
			QuestionsUsed:      result.QuestionsUsed,
			RemainingQuestions: result.RemainingQuestions,
			SessionActive:      result.SessionActive,
		})

		if !result.SessionActive {
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "question quota spent"))
			return
		}
	}
}

func (h *Handler) writeFrame(conn *websocket.Conn, frame outboundFrame) {
	if err := conn.WriteJSON(frame); err != nil {
		log.Printf("[ws] write failed: %v", err)
	}
}
