package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/locotek/presskit/internal/models"
)

// Subject of the operator email.
const Subject = "Press Kit Downloaded"

var alertTemplate = template.Must(template.New("alert").Parse(`
<h2>New Press Kit Download</h2>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<p><strong>User Agent:</strong> {{.UserAgent}}</p>
{{- if .Location}}
<p><strong>Location:</strong> {{.Location}}</p>
{{- end}}
{{- if .Referer}}
<p><strong>Referer:</strong> {{.Referer}}</p>
{{- end}}
`))

type alertView struct {
	Email     string
	Time      string
	UserAgent string
	Location  string
	Referer   string
}

// RenderAlert builds the HTML body for rec. Every field is escaped.
func RenderAlert(rec models.Submission) (string, error) {
	view := alertView{
		Email:     rec.Email,
		Time:      rec.Timestamp.UTC().Format(time.RFC1123),
		UserAgent: rec.UserAgent,
		Referer:   rec.Referer,
	}
	if view.UserAgent == "" {
		view.UserAgent = "Unknown"
	}
	switch {
	case rec.City != "" && rec.Country != "":
		view.Location = rec.City + ", " + rec.Country
	case rec.Country != "":
		view.Location = rec.Country
	}

	var buf bytes.Buffer
	if err := alertTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render alert: %w", err)
	}
	return buf.String(), nil
}

// emailSender is the part of the Resend client used here.
type emailSender interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// Resend emails the operator through the Resend API.
type Resend struct {
	emails emailSender
	from   string
	to     string
}

// NewResend creates a notifier sending from the given sender to one recipient.
func NewResend(apiKey, from, to string) *Resend {
	client := resend.NewClient(apiKey)
	return &Resend{emails: client.Emails, from: from, to: to}
}

// Notify emails the rendered alert for rec.
func (r *Resend) Notify(ctx context.Context, rec models.Submission) error {
	html, err := RenderAlert(rec)
	if err != nil {
		return err
	}

	_, err = r.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    r.from,
		To:      []string{r.to},
		Subject: Subject,
		Html:    html,
	})
	if err != nil {
		return fmt.Errorf("send notification email: %w", err)
	}
	return nil
}
