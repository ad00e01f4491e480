package stream

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagechat/backend/internal/handler/apierr"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/pkg/utils"
)

// Handler streams answers over Server-Sent Events. Quota semantics are
// identical to the plain chat endpoint: the exchange commits only after the
// full answer has been streamed.
type Handler struct {
	svc *conversation.Service
}

// New creates the stream handler.
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the SSE endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

// event payloads sent over the wire.
type frame struct {
	Event              string `json:"event"`
	Content            string `json:"content,omitempty"`
	SessionID          string `json:"sessionId,omitempty"`
	Error              string `json:"error,omitempty"`
	QuestionsUsed      int    `json:"questionsUsed,omitempty"`
	RemainingQuestions int    `json:"remainingQuestions,omitempty"`
	SessionActive      bool   `json:"sessionActive,omitempty"`
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		utils.RespondError(w, http.StatusInternalServerError, apierr.CodeInternal, "streaming unsupported")
		return
	}

	sessionID := chi.URLParam(r, "sessionID")
	question := r.URL.Query().Get("question")
	if question == "" {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "question query parameter is required")
		return
	}

	utils.SetupSSEHeaders(w)
	utils.SendSSEChunk(w, flusher, frame{Event: "start", SessionID: sessionID})

	result, err := h.svc.AskStream(r.Context(), sessionID, question, func(chunk string) {
		utils.SendSSEChunk(w, flusher, frame{Event: "chunk", Content: chunk})
	})
	if err != nil {
		_, code := apierr.Classify(err)
		log.Printf("[stream] session=%s error: %v", sessionID, err)
		utils.SendSSEChunk(w, flusher, frame{Event: "error", Error: code})
		return
	}

	utils.SendSSEChunk(w, flusher, frame{
		Event:              "complete",
		SessionID:          sessionID,
		QuestionsUsed:      result.QuestionsUsed,
		RemainingQuestions: result.RemainingQuestions,
		SessionActive:      result.SessionActive,
	})
}
