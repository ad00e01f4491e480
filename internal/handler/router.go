package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	chathandler "github.com/imagechat/backend/internal/handler/chat"
	streamhandler "github.com/imagechat/backend/internal/handler/stream"
	uploadhandler "github.com/imagechat/backend/internal/handler/upload"
	wshandler "github.com/imagechat/backend/internal/handler/ws"
	"github.com/imagechat/backend/internal/middleware"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/pkg/utils"
)

// NewRouter wires HTTP routes to the conversation service.
func NewRouter(convSvc *conversation.Service, maxUploadBytes int64) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS)

	uploadHandler := uploadhandler.New(convSvc, maxUploadBytes)
	chatHandler := chathandler.New(convSvc)
	streamHandler := streamhandler.New(convSvc)
	wsHandler := wshandler.New(convSvc)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		uploadHandler.RegisterRoutes(api)
		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
	})

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
