package chat

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagechat/backend/internal/handler/apierr"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/pkg/utils"
)

// Handler exposes the question/answer endpoint and session status lookups.
type Handler struct {
	svc *conversation.Service
}

// New creates the chat handler.
func New(svc *conversation.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts the chat endpoints.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/chat", h.handleAsk)
	r.Get("/chat/session/{sessionID}", h.handleSessionStatus)
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		SessionID string `json:"sessionId"`
		Question  string `json:"question"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "invalid request body")
		return
	}

	if payload.SessionID == "" {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "sessionId is required")
		return
	}

	result, err := h.svc.Ask(r.Context(), payload.SessionID, payload.Question)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) handleSessionStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	status, err := h.svc.Status(r.Context(), sessionID)
	if err != nil {
		h.respondDomainError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, status)
}

func (h *Handler) respondDomainError(w http.ResponseWriter, err error) {
	status, code := apierr.Classify(err)
	if status == http.StatusInternalServerError {
		log.Printf("[chat] internal error: %v", err)
		utils.RespondError(w, status, code, "failed to process your question")
		return
	}
	utils.RespondError(w, status, code, err.Error())
}
