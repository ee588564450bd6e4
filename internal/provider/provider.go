// Package provider defines the interface for email delivery backends.
package provider

import (
	"context"
	"fmt"

	"github.com/shineum/sendcard/internal/email"
)

// Provider is the interface that email delivery backends must implement.
// Each provider makes exactly one delivery call per Send; none of them retry.
type Provider interface {
	// Send delivers an email message through this provider.
	// A non-success response from the upstream service is reported as
	// *UpstreamError; any other failure is returned as a plain error.
	Send(ctx context.Context, msg *email.Email) (*Receipt, error)

	// Name returns the human-readable name of this provider.
	Name() string
}

// Receipt is the result of a successful delivery.
type Receipt struct {
	// MessageID is the upstream message identifier, empty if none was returned.
	MessageID string
}

// UpstreamError reports a non-success HTTP response from a delivery service.
type UpstreamError struct {
	// Label names the service in the error text, e.g. "Resend".
	Label      string
	StatusCode int
	// Body is the raw response body text.
	Body string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s error: %s", e.Label, e.Body)
}
