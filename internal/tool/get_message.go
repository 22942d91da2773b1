package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/api/gmail/v1"
)

// GetMessageRequest identifies the message to retrieve.
type GetMessageRequest struct {
	MessageID string `json:"message_id" jsonschema:"ID of the message to retrieve"`
}

// GetMessageResponse contains the full message content.
type GetMessageResponse struct {
	Summary     MessageSummary `json:"summary" jsonschema:"summary"`
	BodyText    string         `json:"body_text,omitempty" jsonschema:"text body"`
	Attachments []Attachment   `json:"attachments,omitempty" jsonschema:"list of attachments"`
}

// Attachment represents email attachment metadata.
type Attachment struct {
	ID       string `json:"id" jsonschema:"attachment ID"`
	Filename string `json:"filename" jsonschema:"original filename"`
	MimeType string `json:"mime_type" jsonschema:"MIME type"`
	Size     int64  `json:"size" jsonschema:"size in bytes"`
}

type getMessageSvc interface {
	GetMessage(ctx context.Context, msgID string) (*gmail.Message, error)
}

type htmlConverter interface {
	HTML2Text(raw []byte) (string, error)
}

// NewGetMessage creates a new GetMessage tool.
func NewGetMessage(svc getMessageSvc, conv htmlConverter) *GetMessage {
	return &GetMessage{
		svc:  svc,
		conv: conv,
	}
}

// GetMessage retrieves full message content with a converted body.
type GetMessage struct {
	svc  getMessageSvc
	conv htmlConverter
}

// GetMessage retrieves a complete message by its ID.
func (t *GetMessage) GetMessage(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input GetMessageRequest,
) (*mcp.CallToolResult, GetMessageResponse, error) {
	msg, err := t.svc.GetMessage(ctx, input.MessageID)
	if err != nil {
		return nil, GetMessageResponse{}, fmt.Errorf("get message %s failed: %w", input.MessageID, err)
	}

	response := GetMessageResponse{
		Summary: extractMessageSummary(msg),
	}

	if msg.Payload != nil {
		response.Attachments = extractAttachments(msg.Payload)

		textBody, htmlBody := extractMessageBodies(msg.Payload)
		response.BodyText, err = t.previewText(textBody, htmlBody)
		if err != nil {
			return nil, GetMessageResponse{}, fmt.Errorf("previewText failed: %w", err)
		}
	}

	return nil, response, nil
}

func (t *GetMessage) previewText(textBody, htmlBody string) (string, error) {
	if textBody != "" {
		return textBody, nil
	}
	if htmlBody == "" {
		return "", nil
	}

	converted, err := t.conv.HTML2Text([]byte(htmlBody))
	if err != nil {
		return "", fmt.Errorf("conv.HTML2Text failed: %w", err)
	}

	return converted, nil
}

func extractMessageBodies(payload *gmail.MessagePart) (textBody, htmlBody string) {
	textBody, htmlBody = extractBodyFromPart(payload)

	for _, part := range payload.Parts {
		partText, partHTML := extractBodyFromPart(part)

		if textBody == "" {
			textBody = partText
		}
		if htmlBody == "" {
			htmlBody = partHTML
		}

		if len(part.Parts) > 0 {
			nestedText, nestedHTML := extractMessageBodies(part)
			if textBody == "" {
				textBody = nestedText
			}
			if htmlBody == "" {
				htmlBody = nestedHTML
			}
		}
	}

	return textBody, htmlBody
}

func extractBodyFromPart(part *gmail.MessagePart) (textBody, htmlBody string) {
	if part.Body == nil || part.Body.Data == "" {
		return "", ""
	}

	switch part.MimeType {
	case "text/plain":
		return decodeBase64URL(part.Body.Data), ""
	case "text/html":
		return "", decodeBase64URL(part.Body.Data)
	default:
		return "", ""
	}
}

func decodeBase64URL(data string) string {
	decoded, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		decoded, err = base64.RawURLEncoding.DecodeString(data)
		if err != nil {
			return data
		}
	}
	return string(decoded)
}

func extractAttachments(payload *gmail.MessagePart) []Attachment {
	var attachments []Attachment

	if payload.Body != nil && payload.Body.AttachmentId != "" {
		attachments = append(attachments, Attachment{
			ID:       payload.Body.AttachmentId,
			Filename: payload.Filename,
			MimeType: payload.MimeType,
			Size:     payload.Body.Size,
		})
	}

	for _, part := range payload.Parts {
		if part.Body != nil && part.Body.AttachmentId != "" {
			attachments = append(attachments, Attachment{
				ID:       part.PartId,
				Filename: part.Filename,
				MimeType: part.MimeType,
				Size:     part.Body.Size,
			})
		}

		if len(part.Parts) > 0 {
			attachments = append(attachments, extractAttachments(part)...)
		}
	}

	return attachments
}
