package send

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/shineum/sendcard/internal/dataurl"
	"github.com/shineum/sendcard/internal/email"
)

const (
	// DefaultSubject is used when the request carries no subject.
	DefaultSubject = "Your Smart Contact Card"
	// DefaultFromName is used when the request carries no fromName.
	DefaultFromName = "Smart Contact"
	// DefaultSenderAddress is Resend's shared onboarding address. Replace it
	// with a verified sender before production use.
	DefaultSenderAddress = "onboarding@resend.dev"
)

// attachmentBaseName is the attachment filename without its extension.
const attachmentBaseName = "contact-card"

var bodyTemplate = template.Must(template.New("card").Parse(
	"<p>Hi {{.Greeting}},</p>\n" +
		"<p>Your contact card is attached.</p>\n" +
		"<p>— {{.FromName}}</p>"))

type bodyData struct {
	Greeting string
	FromName string
}

// Defaults are the values substituted for absent optional request fields.
type Defaults struct {
	Subject       string
	FromName      string
	SenderAddress string
}

func (d Defaults) withFallbacks() Defaults {
	if d.Subject == "" {
		d.Subject = DefaultSubject
	}
	if d.FromName == "" {
		d.FromName = DefaultFromName
	}
	if d.SenderAddress == "" {
		d.SenderAddress = DefaultSenderAddress
	}
	return d
}

// GreetingName returns the first whitespace-delimited token of name.
func GreetingName(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// BuildEmail turns a validated request into the outbound message.
// It returns dataurl.ErrInvalid when the attachment is not a base64 data URL.
func BuildEmail(req Request, defaults Defaults) (*email.Email, error) {
	defaults = defaults.withFallbacks()

	attachment, err := dataurl.Parse(req.AttachmentDataURL)
	if err != nil {
		return nil, err
	}

	subject := defaults.Subject
	if req.Subject != nil {
		subject = *req.Subject
	}
	fromName := defaults.FromName
	if req.FromName != nil {
		fromName = *req.FromName
	}

	var body bytes.Buffer
	if err := bodyTemplate.Execute(&body, bodyData{
		Greeting: GreetingName(req.Name),
		FromName: fromName,
	}); err != nil {
		return nil, fmt.Errorf("failed to render body: %w", err)
	}

	return &email.Email{
		FromName:    fromName,
		FromAddress: defaults.SenderAddress,
		To:          []string{req.To},
		Subject:     subject,
		HTMLBody:    body.String(),
		Attachments: []email.Attachment{
			{
				Filename:    attachmentBaseName + "." + attachment.Extension(),
				ContentType: attachment.MediaType,
				Content:     attachment.Base64,
			},
		},
	}, nil
}
