package send

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/shineum/sendcard/internal/email"
	"github.com/shineum/sendcard/internal/provider"
)

// fakeProvider records every message and answers with a canned result.
type fakeProvider struct {
	receipt *provider.Receipt
	err     error
	panicV  any
	sent    []*email.Email
}

func (f *fakeProvider) Send(_ context.Context, msg *email.Email) (*provider.Receipt, error) {
	f.sent = append(f.sent, msg)
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.receipt, f.err
}

func (f *fakeProvider) Name() string {
	return "fake"
}

func newTestHandler(t testing.TB, p provider.Provider) *Handler {
	t.Helper()

	h, err := NewHandler(Config{
		Provider: p,
		Logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return h
}
