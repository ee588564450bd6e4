package send

import (
	"errors"
	"strings"
	"testing"

	"github.com/shineum/sendcard/internal/dataurl"
)

func strPtr(s string) *string {
	return &s
}

func TestGreetingName(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"Jane Doe":        "Jane",
		"Jane":            "Jane",
		"":                "",
		"   ":             "",
		"  Jane  Doe ":    "Jane",
		" Jane Doe":       "Jane",
		"Mary\tAnn Lee":   "Mary",
		"Jean-Luc Picard": "Jean-Luc",
	}

	for name, want := range tests {
		if got := GreetingName(name); got != want {
			t.Errorf("GreetingName(%q): got %q, want %q", name, got, want)
		}
	}
}

func TestBuildEmail_Defaults(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "jane@example.com",
		Name:              "Jane Doe",
		AttachmentDataURL: "data:image/png;base64,QUJD",
	}, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.From() != "Smart Contact <onboarding@resend.dev>" {
		t.Errorf("From: got %q", msg.From())
	}
	if len(msg.To) != 1 || msg.To[0] != "jane@example.com" {
		t.Errorf("To: got %v, want exactly [jane@example.com]", msg.To)
	}
	if msg.Subject != DefaultSubject {
		t.Errorf("Subject: got %q, want %q", msg.Subject, DefaultSubject)
	}

	wantBody := "<p>Hi Jane,</p>\n<p>Your contact card is attached.</p>\n<p>— Smart Contact</p>"
	if msg.HTMLBody != wantBody {
		t.Errorf("HTMLBody:\ngot  %q\nwant %q", msg.HTMLBody, wantBody)
	}

	if len(msg.Attachments) != 1 {
		t.Fatalf("Attachments count: got %d, want 1", len(msg.Attachments))
	}
	att := msg.Attachments[0]
	if att.Filename != "contact-card.png" {
		t.Errorf("Filename: got %q, want %q", att.Filename, "contact-card.png")
	}
	if att.ContentType != "image/png" {
		t.Errorf("ContentType: got %q, want %q", att.ContentType, "image/png")
	}
	if att.Content != "QUJD" {
		t.Errorf("Content: got %q, want %q", att.Content, "QUJD")
	}
}

func TestBuildEmail_JPEGExtension(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "jane@example.com",
		AttachmentDataURL: "data:image/jpeg;base64,QUJD",
	}, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := msg.Attachments[0].Filename; got != "contact-card.jpg" {
		t.Errorf("Filename: got %q, want %q", got, "contact-card.jpg")
	}
}

func TestBuildEmail_Overrides(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "jane@example.com",
		Subject:           strPtr("Here you go"),
		FromName:          strPtr("Acme Cards"),
		AttachmentDataURL: "data:image/png;base64,QUJD",
	}, Defaults{SenderAddress: "cards@acme.test"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if msg.Subject != "Here you go" {
		t.Errorf("Subject: got %q", msg.Subject)
	}
	if msg.From() != "Acme Cards <cards@acme.test>" {
		t.Errorf("From: got %q", msg.From())
	}
	if !strings.HasPrefix(msg.HTMLBody, "<p>Hi ,</p>") {
		t.Errorf("greeting without name should be empty, got %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, "<p>— Acme Cards</p>") {
		t.Errorf("sign-off should use fromName, got %q", msg.HTMLBody)
	}
}

func TestBuildEmail_ExplicitEmptySubjectKept(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "jane@example.com",
		Subject:           strPtr(""),
		AttachmentDataURL: "data:image/png;base64,QUJD",
	}, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Subject != "" {
		t.Errorf("Subject: got %q, want empty", msg.Subject)
	}
}

func TestBuildEmail_EscapesApostropheInBodyOnly(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "obrien@example.com",
		Name:              "O'Brien",
		Subject:           strPtr("O'Brien's card"),
		FromName:          strPtr("D'Arcy"),
		AttachmentDataURL: "data:image/png;base64,QUJD",
	}, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(msg.HTMLBody, "<p>Hi O&#39;Brien,</p>") {
		t.Errorf("greeting not escaped: %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, "<p>— D&#39;Arcy</p>") {
		t.Errorf("signature not escaped: %q", msg.HTMLBody)
	}
	if msg.Subject != "O'Brien's card" {
		t.Errorf("Subject: got %q, want verbatim", msg.Subject)
	}
	if got := msg.From(); got != "D'Arcy <onboarding@resend.dev>" {
		t.Errorf("From(): got %q", got)
	}
}

func TestBuildEmail_EscapesCallerText(t *testing.T) {
	t.Parallel()

	msg, err := BuildEmail(Request{
		To:                "jane@example.com",
		Name:              "<b>Jane</b> Doe",
		FromName:          strPtr("A&B"),
		AttachmentDataURL: "data:image/png;base64,QUJD",
	}, Defaults{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(msg.HTMLBody, "<b>") {
		t.Errorf("caller markup should be escaped, got %q", msg.HTMLBody)
	}
	if !strings.Contains(msg.HTMLBody, "&lt;b&gt;Jane&lt;/b&gt;") || !strings.Contains(msg.HTMLBody, "A&amp;B") {
		t.Errorf("unexpected escaping: %q", msg.HTMLBody)
	}
}

func TestBuildEmail_InvalidDataURL(t *testing.T) {
	t.Parallel()

	_, err := BuildEmail(Request{
		To:                "jane@example.com",
		AttachmentDataURL: "https://example.com/card.png",
	}, Defaults{})
	if !errors.Is(err, dataurl.ErrInvalid) {
		t.Errorf("error: got %v, want dataurl.ErrInvalid", err)
	}
}
