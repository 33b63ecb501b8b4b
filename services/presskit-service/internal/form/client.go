package form

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/locotek/presskit/internal/models"
)

// SubmitPath is the press-kit endpoint relative to the site origin.
const SubmitPath = "/api/presskit"

// ErrCrossOrigin is returned when a download URL points at another origin.
var ErrCrossOrigin = errors.New("download url is not same-origin")

// errUndecodable marks a response body that is not the expected JSON.
var errUndecodable = errors.New("undecodable response")

// Client talks to the press-kit endpoint of one site.
type Client struct {
	origin *url.URL
	client *http.Client
}

// NewClient creates a client for the site at origin, e.g. https://locotek.ca.
func NewClient(origin string, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid origin %q: scheme and host required", origin)
	}
	return &Client{
		origin: &url.URL{Scheme: u.Scheme, Host: u.Host},
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Submit posts one email. A non-nil error is a transport failure; endpoint
// errors come back in the response with ok=false.
func (c *Client) Submit(ctx context.Context, email string) (models.DownloadResponse, bool, error) {
	var out models.DownloadResponse

	payload, err := json.Marshal(map[string]string{"email": email})
	if err != nil {
		return out, false, fmt.Errorf("failed to encode request: %w", err)
	}

	endpoint := c.origin.ResolveReference(&url.URL{Path: SubmitPath})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(payload))
	if err != nil {
		return out, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return out, false, err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return out, false, fmt.Errorf("%w: %v", errUndecodable, err)
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	return out, ok, nil
}

// ResolveDownload resolves ref against the site origin and rejects
// anything that would leave it.
func (c *Client) ResolveDownload(ref string) (*url.URL, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid download url: %w", err)
	}
	resolved := c.origin.ResolveReference(u)
	if resolved.Scheme != c.origin.Scheme || resolved.Host != c.origin.Host {
		return nil, fmt.Errorf("%w: %s", ErrCrossOrigin, resolved)
	}
	return resolved, nil
}

// Download fetches ref from the site and copies it to dst.
func (c *Client) Download(ctx context.Context, ref string, dst io.Writer) error {
	u, err := c.ResolveDownload(ref)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download press kit: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("failed to save press kit: %w", err)
	}
	return nil
}
