package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Submission is one accepted press-kit request.
// Records are append-only: once created they are never updated or deleted.
type Submission struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Timestamp time.Time `json:"timestamp" db:"created_at"`
	UserAgent string    `json:"userAgent,omitempty" db:"user_agent"`

	// Request metadata, never validated
	IP       string `json:"ip,omitempty" db:"ip"`
	Referer  string `json:"referer,omitempty" db:"referer"`
	Language string `json:"language,omitempty" db:"language"`
	Country  string `json:"country,omitempty" db:"country"`
	City     string `json:"city,omitempty" db:"city"`
}

// TimestampLayout is the fixed-width, millisecond UTC form records are
// serialized with, e.g. 2025-01-02T03:04:05.600Z.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// MarshalJSON writes Timestamp with TimestampLayout.
func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	return json.Marshal(struct {
		plain
		Timestamp string `json:"timestamp"`
	}{
		plain:     plain(s),
		Timestamp: s.Timestamp.UTC().Format(TimestampLayout),
	})
}

// Metadata is the optional request information captured alongside an email.
type Metadata struct {
	UserAgent string
	IP        string
	Referer   string
	Language  string
	Country   string
	City      string
}

// NewSubmission builds a record for an already normalized email.
func NewSubmission(id uuid.UUID, email string, at time.Time, meta Metadata) Submission {
	return Submission{
		ID:        id,
		Email:     email,
		Timestamp: at.UTC().Truncate(time.Millisecond),
		UserAgent: meta.UserAgent,
		IP:        meta.IP,
		Referer:   meta.Referer,
		Language:  meta.Language,
		Country:   meta.Country,
		City:      meta.City,
	}
}

// DownloadResponse is the success payload of the press-kit endpoint.
type DownloadResponse struct {
	Success     bool   `json:"success"`
	DownloadURL string `json:"downloadUrl,omitempty"`
	Error       string `json:"error,omitempty"`
}
