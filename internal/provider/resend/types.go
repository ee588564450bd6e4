// Package resend implements a Provider that sends emails via the Resend HTTP API.
package resend

import (
	"encoding/json"

	"github.com/shineum/sendcard/internal/email"
)

// sendEmailRequest is the request body for the Resend emails endpoint.
type sendEmailRequest struct {
	From        string             `json:"from"`
	To          []string           `json:"to"`
	Subject     string             `json:"subject"`
	HTML        string             `json:"html"`
	Attachments []resendAttachment `json:"attachments"`
}

// resendAttachment carries base64 content inline.
type resendAttachment struct {
	Filename    string `json:"filename"`
	Content     string `json:"content"`
	ContentType string `json:"contentType"`
}

// parseMessageID extracts the "id" field from a success body. The body must
// be valid JSON; a body that is not an object, or has no string id, yields "".
func parseMessageID(body []byte) (string, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", err
	}
	fields, ok := decoded.(map[string]any)
	if !ok {
		return "", nil
	}
	id, _ := fields["id"].(string)
	return id, nil
}

// buildSendEmailRequest converts an email.Email into a Resend request body.
func buildSendEmailRequest(msg *email.Email) *sendEmailRequest {
	attachments := make([]resendAttachment, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		attachments = append(attachments, resendAttachment{
			Filename:    att.Filename,
			Content:     att.Content,
			ContentType: att.ContentType,
		})
	}

	return &sendEmailRequest{
		From:        msg.From(),
		To:          msg.To,
		Subject:     msg.Subject,
		HTML:        msg.HTMLBody,
		Attachments: attachments,
	}
}
