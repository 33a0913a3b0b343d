// Package rfdapi implements the RFDSource port against the RFD content API.
package rfdapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gregjones/httpcache"
	"golang.org/x/time/rate"

	"github.com/ericfisherdev/rfdpanel/internal/domain/model"
	"github.com/ericfisherdev/rfdpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RFDSource = (*Client)(nil)

// rfdJSON is the RFD content API representation of a single RFD.
type rfdJSON struct {
	Number     int       `json:"rfd_number"`
	Title      string    `json:"title"`
	State      string    `json:"state"`
	Authors    []string  `json:"authors"`
	Discussion string    `json:"discussion"`
	SourcePath string    `json:"source_path"`
	HTML       string    `json:"html"`
	SHA        string    `json:"sha"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Client implements the driven.RFDSource port over HTTP. Responses are
// cached by ETag and outbound requests are throttled by a token bucket.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	limiter    *rate.Limiter
}

// NewClient creates a Client for the RFD content API at baseURL. token may be
// empty for public deployments. rps limits outbound requests per second.
func NewClient(baseURL, token string, rps float64) *Client {
	return NewClientWithHTTPClient(
		&http.Client{
			Transport: httpcache.NewMemoryCacheTransport(),
			Timeout:   15 * time.Second,
		},
		baseURL, token, rps,
	)
}

// NewClientWithHTTPClient creates a Client with a custom http.Client.
// This constructor is intended for testing, allowing injection of an httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string, rps float64) *Client {
	burst := int(rps)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		limiter:    rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// FetchRFD retrieves a single rendered RFD. Returns driven.ErrRFDNotFound on 404.
func (c *Client) FetchRFD(ctx context.Context, number int) (*model.RFD, error) {
	var payload rfdJSON
	if err := c.getJSON(ctx, fmt.Sprintf("/rfd/%d", number), &payload); err != nil {
		return nil, fmt.Errorf("fetching rfd %d: %w", number, err)
	}

	rfd := mapRFD(payload)
	if rfd.Number == 0 {
		rfd.Number = number
	}
	return &rfd, nil
}

// ListRFDs retrieves the RFD index.
func (c *Client) ListRFDs(ctx context.Context) ([]model.RFDSummary, error) {
	var payload []rfdJSON
	if err := c.getJSON(ctx, "/rfd", &payload); err != nil {
		return nil, fmt.Errorf("listing rfds: %w", err)
	}

	summaries := make([]model.RFDSummary, 0, len(payload))
	for _, p := range payload {
		summaries = append(summaries, model.RFDSummary{
			Number:    p.Number,
			Title:     p.Title,
			State:     model.RFDState(strings.ToLower(p.State)),
			UpdatedAt: p.UpdatedAt,
		})
	}
	return summaries, nil
}

func (c *Client) getJSON(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	slog.Debug("rfd api call",
		"path", path,
		"status", resp.StatusCode,
		"from_cache", resp.Header.Get(httpcache.XFromCache) != "",
		"duration", time.Since(start).Round(time.Millisecond),
	)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return driven.ErrRFDNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

// mapRFD converts the API representation to a domain model RFD.
func mapRFD(p rfdJSON) model.RFD {
	return model.RFD{
		Number:        p.Number,
		Title:         p.Title,
		State:         model.RFDState(strings.ToLower(p.State)),
		Authors:       p.Authors,
		DiscussionURL: p.Discussion,
		SourcePath:    p.SourcePath,
		HTML:          p.HTML,
		CommitSHA:     p.SHA,
		UpdatedAt:     p.UpdatedAt,
	}
}
