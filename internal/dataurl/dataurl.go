// Package dataurl parses base64 data URLs of the form data:<media-type>;base64,<payload>.
package dataurl

import (
	"errors"
	"regexp"
	"strings"
)

// ErrInvalid is returned when a string is not a base64 data URL.
var ErrInvalid = errors.New("invalid data URL")

// pattern matches data:<media-type>;base64,<payload> where neither part
// contains a line terminator (\n, \r, U+2028, U+2029).
var pattern = regexp.MustCompile(`^data:([^\n\r\x{2028}\x{2029}]+);base64,([^\n\r\x{2028}\x{2029}]+)$`)

// DataURL is a parsed data URL. Base64 is the payload text, not decoded.
type DataURL struct {
	MediaType string
	Base64    string
}

// Parse splits s into its media type and base64 payload.
// The payload is not decoded or checked for base64 validity.
func Parse(s string) (DataURL, error) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return DataURL{}, ErrInvalid
	}
	return DataURL{MediaType: m[1], Base64: m[2]}, nil
}

// Extension returns the file extension used for the attachment.
// Anything whose media type mentions png is "png"; everything else is "jpg".
func Extension(mediaType string) string {
	if strings.Contains(mediaType, "png") {
		return "png"
	}
	return "jpg"
}

// Extension returns the file extension for d's media type.
func (d DataURL) Extension() string {
	return Extension(d.MediaType)
}
