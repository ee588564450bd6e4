// Package email defines the outbound message model handed to delivery providers.
package email

import "fmt"

// Email represents a message ready for delivery.
type Email struct {
	FromName    string
	FromAddress string
	To          []string
	Subject     string
	HTMLBody    string
	Attachments []Attachment
}

// From returns the sender display string, e.g. "Smart Contact <onboarding@resend.dev>".
func (e *Email) From() string {
	return fmt.Sprintf("%s <%s>", e.FromName, e.FromAddress)
}

// Attachment represents a file attached to an email message.
// Content holds the payload already base64-encoded, exactly as received.
type Attachment struct {
	Filename    string
	ContentType string
	Content     string
}
