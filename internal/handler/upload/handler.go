package upload

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/imagechat/backend/internal/handler/apierr"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/pkg/utils"
)

// allowedMimeTypes is the upload allow-list; anything else is rejected before
// the vision provider is contacted.
var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
}

// Handler accepts image uploads and turns them into Q&A sessions.
type Handler struct {
	svc      *conversation.Service
	maxBytes int64
}

// New creates the upload handler. maxBytes bounds the accepted file size.
func New(svc *conversation.Service, maxBytes int64) *Handler {
	return &Handler{svc: svc, maxBytes: maxBytes}
}

// RegisterRoutes mounts the upload endpoint.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/upload-image", h.handleUpload)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)

	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "failed to parse multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "no image file provided")
		return
	}
	defer file.Close()

	if _, ok := allowedMimeTypes[header.Header.Get("Content-Type")]; !ok {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation,
			"only image files (JPEG, PNG, GIF, WEBP) are allowed")
		return
	}

	image, err := io.ReadAll(file)
	if err != nil {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "failed to read image file")
		return
	}
	if len(image) == 0 {
		utils.RespondError(w, http.StatusBadRequest, apierr.CodeValidation, "image file is empty")
		return
	}

	log.Printf("[upload] image received: %s (%d bytes)", header.Filename, len(image))

	result, err := h.svc.Ingest(r.Context(), image)
	if err != nil {
		if errors.Is(err, conversation.ErrDescriptionFailed) {
			utils.RespondError(w, http.StatusServiceUnavailable, apierr.CodeVisionAPI,
				"failed to analyze the image, please try again")
			return
		}
		log.Printf("[upload] ingest error: %v", err)
		utils.RespondError(w, http.StatusInternalServerError, apierr.CodeInternal,
			"failed to process image upload")
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{
		"sessionId":          result.SessionID,
		"descriptionPreview": result.DescriptionPreview,
		"remainingQuestions": result.RemainingQuestions,
		"message":            "Image processed successfully. You can now ask up to 5 questions about this image.",
	})
}
