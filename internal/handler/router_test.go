package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/cloudwego/eino/schema"

	"github.com/imagechat/backend/internal/model/chat"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/internal/service/session"
)

type stubDescriber struct{}

func (stubDescriber) DescribeImage(context.Context, []byte) (string, error) {
	return "a test image", nil
}

type stubAnswerer struct{}

func (stubAnswerer) AnswerQuestion(context.Context, string, string, []chat.Turn) (string, error) {
	return "an answer", nil
}

func (stubAnswerer) StreamAnswer(context.Context, string, string, []chat.Turn) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](1)
	sw.Close()
	return sr, nil
}

func TestHealthEndpoint(t *testing.T) {
	svc := conversation.NewService(session.NewStore(), stubDescriber{}, stubAnswerer{})
	router := NewRouter(svc, 10<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected health body: %s", resp.Body.String())
	}
}

func TestCORSPreflight(t *testing.T) {
	svc := conversation.NewService(session.NewStore(), stubDescriber{}, stubAnswerer{})
	router := NewRouter(svc, 10<<20)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if origin := resp.Header().Get("Access-Control-Allow-Origin"); origin != "*" {
		t.Fatalf("expected wildcard CORS origin, got %q", origin)
	}
}
