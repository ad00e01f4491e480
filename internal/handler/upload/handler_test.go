package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/go-chi/chi/v5"

	"github.com/imagechat/backend/internal/model/chat"
	"github.com/imagechat/backend/internal/service/conversation"
	"github.com/imagechat/backend/internal/service/session"
)

type stubDescriber struct {
	description string
	err         error
}

func (s *stubDescriber) DescribeImage(context.Context, []byte) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.description, nil
}

type stubAnswerer struct{}

func (stubAnswerer) AnswerQuestion(context.Context, string, string, []chat.Turn) (string, error) {
	return "ok", nil
}

func (stubAnswerer) StreamAnswer(context.Context, string, string, []chat.Turn) (*schema.StreamReader[*schema.Message], error) {
	sr, sw := schema.Pipe[*schema.Message](1)
	sw.Close()
	return sr, nil
}

func setupRouter(t *testing.T) (*chi.Mux, *stubDescriber) {
	t.Helper()
	describer := &stubDescriber{description: "a weathered event poster"}
	svc := conversation.NewService(session.NewStore(), describer, stubAnswerer{})

	r := chi.NewRouter()
	New(svc, 10<<20).RegisterRoutes(r)
	return r, describer
}

func multipartImage(t *testing.T, fieldName, contentType string, payload []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="photo.png"`)
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart err: %v", err)
	}
	if _, err := part.Write(payload); err != nil {
		t.Fatalf("part write err: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("writer close err: %v", err)
	}
	return &body, writer.FormDataContentType()
}

func TestUploadEndpoint(t *testing.T) {
	r, _ := setupRouter(t)
	body, contentType := multipartImage(t, "image", "image/png", []byte{0x89, 'P', 'N', 'G', 0, 0})

	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var result struct {
		SessionID          string `json:"sessionId"`
		DescriptionPreview string `json:"descriptionPreview"`
		RemainingQuestions int    `json:"remainingQuestions"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode err: %v", err)
	}
	if result.SessionID == "" {
		t.Fatal("expected a session id")
	}
	if result.DescriptionPreview != "a weathered event poster" {
		t.Fatalf("unexpected preview: %q", result.DescriptionPreview)
	}
	if result.RemainingQuestions != chat.MaxQuestions {
		t.Fatalf("expected %d remaining, got %d", chat.MaxQuestions, result.RemainingQuestions)
	}
}

func TestUploadEndpointMissingFile(t *testing.T) {
	r, _ := setupRouter(t)
	body, contentType := multipartImage(t, "attachment", "image/png", []byte{1, 2, 3})

	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}

func TestUploadEndpointRejectsNonImage(t *testing.T) {
	r, _ := setupRouter(t)
	body, contentType := multipartImage(t, "image", "application/pdf", []byte("%PDF-1.4"))

	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("VALIDATION_ERROR")) {
		t.Fatalf("expected VALIDATION_ERROR code: %s", resp.Body.String())
	}
}

func TestUploadEndpointVisionFailure(t *testing.T) {
	r, describer := setupRouter(t)
	describer.err = errors.New("provider down")

	body, contentType := multipartImage(t, "image", "image/jpeg", []byte{0xff, 0xd8, 0xff})
	req := httptest.NewRequest(http.MethodPost, "/upload-image", body)
	req.Header.Set("Content-Type", contentType)
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
	if !bytes.Contains(resp.Body.Bytes(), []byte("VISION_API_ERROR")) {
		t.Fatalf("expected VISION_API_ERROR code: %s", resp.Body.String())
	}
}
