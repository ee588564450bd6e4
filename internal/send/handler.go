package send

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shineum/sendcard/internal/dataurl"
	"github.com/shineum/sendcard/internal/provider"
)

const (
	msgMethodNotAllowed = "POST only"
	msgMissingFields    = `Missing "to" or "attachmentDataURL"`
	msgInvalidDataURL   = "Invalid data URL"
)

const contentTypeJSON = "application/json; charset=utf-8"

// Config captures the inputs required to construct a Handler.
type Config struct {
	Provider provider.Provider
	Defaults Defaults
	// Logger defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// Handler serves the send endpoint. It holds no per-request state and is safe
// for concurrent use.
type Handler struct {
	provider provider.Provider
	defaults Defaults
	logger   *slog.Logger
}

// Result is the status code and JSON body produced for one request.
type Result struct {
	Status int
	Body   any
}

type errorBody struct {
	Error string `json:"error"`
}

type successBody struct {
	OK bool    `json:"ok"`
	ID *string `json:"id"`
}

// NewHandler builds a Handler around the given provider.
func NewHandler(cfg Config) (*Handler, error) {
	if cfg.Provider == nil {
		return nil, errors.New("send: provider is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		provider: cfg.Provider,
		defaults: cfg.Defaults.withFallbacks(),
		logger:   logger,
	}, nil
}

// Handle processes one request given its HTTP method and raw body.
// Every outcome, including a panic during processing, is mapped to a Result.
func (h *Handler) Handle(ctx context.Context, method string, body []byte) (result Result) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("send handler panicked", "panic", r)
			result = errorResult(http.StatusInternalServerError, fmt.Sprint(r))
		}
	}()

	if method != http.MethodPost {
		return errorResult(http.StatusMethodNotAllowed, msgMethodNotAllowed)
	}

	req, err := DecodeRequest(body)
	if err != nil {
		h.logger.Warn("failed to decode send request", "error", err)
		return errorResult(http.StatusInternalServerError, err.Error())
	}

	if err := req.Validate(); err != nil {
		return errorResult(http.StatusBadRequest, msgMissingFields)
	}

	msg, err := BuildEmail(req, h.defaults)
	if errors.Is(err, dataurl.ErrInvalid) {
		return errorResult(http.StatusBadRequest, msgInvalidDataURL)
	}
	if err != nil {
		h.logger.Error("failed to build email", "error", err)
		return errorResult(http.StatusInternalServerError, err.Error())
	}

	receipt, err := h.provider.Send(ctx, msg)

	var upErr *provider.UpstreamError
	if errors.As(err, &upErr) {
		h.logger.Warn("provider rejected email",
			"provider", h.provider.Name(),
			"status", upErr.StatusCode,
			"recipient_domain", recipientDomain(req.To),
		)
		return errorResult(upstreamStatus(upErr.StatusCode), upErr.Error())
	}
	if err != nil {
		h.logger.Error("failed to send email",
			"provider", h.provider.Name(),
			"error", err,
		)
		return errorResult(http.StatusInternalServerError, err.Error())
	}

	var messageID string
	if receipt != nil {
		messageID = receipt.MessageID
	}
	var id *string
	if messageID != "" {
		id = &messageID
	}

	h.logger.Info("contact card sent",
		"provider", h.provider.Name(),
		"message_id", messageID,
		"recipient_domain", recipientDomain(req.To),
	)

	return Result{
		Status: http.StatusOK,
		Body:   successBody{OK: true, ID: id},
	}
}

// ServeHTTP adapts Handle to net/http.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var result Result

	body, err := io.ReadAll(r.Body)
	if err != nil {
		result = errorResult(http.StatusInternalServerError, err.Error())
	} else {
		result = h.Handle(r.Context(), r.Method, body)
	}

	payload, err := json.Marshal(result.Body)
	if err != nil {
		h.logger.Error("failed to encode response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", contentTypeJSON)
	w.WriteHeader(result.Status)
	w.Write(payload)
}

func errorResult(status int, message string) Result {
	return Result{Status: status, Body: errorBody{Error: message}}
}

// upstreamStatus passes the provider's status through unless it cannot be
// written as an HTTP status line.
func upstreamStatus(status int) int {
	if status < 100 || status > 599 {
		return http.StatusBadGateway
	}
	return status
}

// recipientDomain keeps addresses out of the logs.
func recipientDomain(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return addr[i+1:]
	}
	return ""
}
