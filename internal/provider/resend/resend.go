package resend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/shineum/sendcard/internal/email"
	"github.com/shineum/sendcard/internal/provider"
)

// DefaultEndpoint is the Resend email-send endpoint.
const DefaultEndpoint = "https://api.resend.com/emails"

// requestTimeout bounds a single call to the Resend API.
const requestTimeout = 30 * time.Second

// ResendProviderConfig holds the configuration for creating a ResendProvider.
type ResendProviderConfig struct {
	APIKey string
	// Endpoint overrides DefaultEndpoint when set.
	Endpoint string
}

// ResendProvider sends emails via the Resend HTTP API using bearer-token
// authentication.
type ResendProvider struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
}

// New creates a new ResendProvider with the given configuration.
func New(cfg ResendProviderConfig) *ResendProvider {
	return NewWithClient(cfg, &http.Client{Timeout: requestTimeout})
}

// NewWithClient creates a ResendProvider that uses the given HTTP client.
func NewWithClient(cfg ResendProviderConfig, client *http.Client) *ResendProvider {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &ResendProvider{
		apiKey:     cfg.APIKey,
		endpoint:   endpoint,
		httpClient: client,
	}
}

// Send delivers an email message via the Resend API in a single request.
// A non-2xx status is returned as *provider.UpstreamError carrying the raw body.
func (r *ResendProvider) Send(ctx context.Context, msg *email.Email) (*provider.Receipt, error) {
	bodyJSON, err := json.Marshal(buildSendEmailRequest(msg))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(bodyJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.apiKey)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		slog.Debug("Resend API rejected request",
			"status", resp.StatusCode,
		)
		return nil, &provider.UpstreamError{
			Label:      "Resend",
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	id, err := parseMessageID(body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Resend response: %w", err)
	}

	return &provider.Receipt{MessageID: id}, nil
}

// Name returns the provider name.
func (r *ResendProvider) Name() string {
	return "resend"
}
