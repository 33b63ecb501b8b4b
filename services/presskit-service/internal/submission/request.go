package submission

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf16"

	"github.com/locotek/presskit/internal/models"
)

// MaxEmailLength is the longest address accepted, in UTF-16 code units
// counted before trimming. Characters outside the BMP count twice.
const MaxEmailLength = 254

// Request is a parsed and validated submission body.
type Request struct {
	Email string
}

// NormalizedEmail is the form stored in records.
func (r Request) NormalizedEmail() string {
	return NormalizeEmail(r.Email)
}

// ParseRequest decodes a JSON body and validates the email field.
// A body that is not a JSON object fails with ErrProcessing; a missing or
// malformed email fails with *ValidationError.
func ParseRequest(body []byte) (Request, error) {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return Request{}, fmt.Errorf("%w: decode body: %v", ErrProcessing, err)
	}
	if payload == nil {
		return Request{}, fmt.Errorf("%w: body is null", ErrProcessing)
	}

	raw, ok := payload["email"].(string)
	if !ok || raw == "" {
		return Request{}, &ValidationError{Message: MsgEmailRequired}
	}
	if err := ValidateEmail(raw); err != nil {
		return Request{}, err
	}
	return Request{Email: raw}, nil
}

// ValidateEmail applies the format rules to a raw, untrimmed address.
func ValidateEmail(raw string) error {
	if utf16Len(raw) > MaxEmailLength ||
		!strings.Contains(raw, "@") ||
		!strings.Contains(raw, ".") {
		return &ValidationError{Message: MsgInvalidEmail}
	}
	return nil
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// NormalizeEmail lowercases and trims an address.
func NormalizeEmail(raw string) string {
	return strings.TrimSpace(strings.ToLower(raw))
}

// Header names read for request metadata. None of them are trusted.
const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderRealIP       = "X-Real-IP"
	HeaderCountry      = "X-Vercel-IP-Country"
	HeaderCFCountry    = "CF-IPCountry"
	HeaderCity         = "X-Vercel-IP-City"
)

// MetadataFromHeader captures the optional request metadata. Absent
// headers yield empty fields.
func MetadataFromHeader(h http.Header) models.Metadata {
	meta := models.Metadata{
		UserAgent: h.Get("User-Agent"),
		Referer:   h.Get("Referer"),
		Language:  h.Get("Accept-Language"),
		Country:   firstNonEmpty(h.Get(HeaderCountry), h.Get(HeaderCFCountry)),
	}

	if fwd := h.Get(HeaderForwardedFor); fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		meta.IP = strings.TrimSpace(first)
	}
	if meta.IP == "" {
		meta.IP = strings.TrimSpace(h.Get(HeaderRealIP))
	}

	if city := h.Get(HeaderCity); city != "" {
		if decoded, err := url.QueryUnescape(city); err == nil {
			city = decoded
		}
		meta.City = city
	}
	return meta
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
