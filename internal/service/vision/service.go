package vision

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// ErrUnavailable signals a vision provider failure. Callers may retry.
var ErrUnavailable = errors.New("vision provider unavailable")

// Service turns raw image bytes into a detailed textual description using a
// multimodal chat model.
type Service struct {
	chatModel model.ChatModel
}

// NewService wraps the provided multimodal chat model.
func NewService(chatModel model.ChatModel) *Service {
	return &Service{chatModel: chatModel}
}

// DescribeImage sends the image to the vision model and returns its
// description. The description later becomes the sole grounding context for
// every answer about this image.
func (s *Service) DescribeImage(ctx context.Context, image []byte) (string, error) {
	messages := []*schema.Message{
		schema.SystemMessage(describeSystemPrompt),
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeText,
					Text: "Please provide an extremely detailed description of this image.",
				},
				{
					Type: schema.ChatMessagePartTypeImageURL,
					ImageURL: &schema.ChatMessageImageURL{
						URL:    dataURL(image),
						Detail: schema.ImageURLDetailHigh,
					},
				},
			},
		},
	}

	resp, err := s.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if strings.TrimSpace(resp.Content) == "" {
		return "", fmt.Errorf("%w: model returned an empty description", ErrUnavailable)
	}

	log.Printf("[vision] image description generated (%d chars)", len(resp.Content))
	return resp.Content, nil
}

// dataURL encodes the image as a base64 data URL, sniffing the mime type from
// the leading bytes.
func dataURL(image []byte) string {
	mime := http.DetectContentType(image)
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(image)
}
