// Package send implements the contact-card send endpoint: it validates the
// inbound request, builds the outbound message and makes one provider call.
package send

import (
	"bytes"
	"encoding/json"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Request is the inbound JSON body.
// Subject and FromName are pointers so that an explicit "" is kept while an
// absent field falls back to the configured default.
type Request struct {
	To                string  `json:"to"`
	Name              string  `json:"name,omitempty"`
	Subject           *string `json:"subject,omitempty"`
	FromName          *string `json:"fromName,omitempty"`
	AttachmentDataURL string  `json:"attachmentDataURL"`
}

// DecodeRequest parses a JSON body. An empty body, or valid JSON that is not
// an object (null, arrays, strings, numbers, booleans), decodes to the zero
// Request so that it fails validation rather than decoding.
func DecodeRequest(body []byte) (Request, error) {
	var req Request
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return req, nil
	}
	if trimmed[0] != '{' && json.Valid(trimmed) {
		return req, nil
	}
	if err := json.Unmarshal(trimmed, &req); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Validate reports whether the required fields are present.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.To, validation.Required),
		validation.Field(&r.AttachmentDataURL, validation.Required),
	)
}
