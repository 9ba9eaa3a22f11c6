// Package apiclient is a typed HTTP client for the course conditions API.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Clark-Hu/course-conditions/internal/domain"
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("apiclient: server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("apiclient: server returned %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Submission is the wire form of a ratings and/or condition submission.
type Submission struct {
	UserID                string         `json:"user_id"`
	Ratings               map[string]int `json:"ratings,omitempty"`
	ConditionsRating      *int           `json:"conditions_rating,omitempty"`
	ConditionsDescription *string        `json:"conditions_description,omitempty"`
}

// Client talks to a running server.
type Client struct {
	baseURL *url.URL
	client  *http.Client
	logger  *slog.Logger
}

// New constructs a client for the server at baseURL.
func New(baseURL string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse api url: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("parse api url: %q is not absolute", baseURL)
	}
	return &Client{
		baseURL: parsed,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: http.ProxyFromEnvironment,
				DialContext: (&net.Dialer{
					Timeout:   timeout,
					KeepAlive: 30 * time.Second,
				}).DialContext,
				TLSHandshakeTimeout:   timeout,
				ResponseHeaderTimeout: timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		logger: logger.With("component", "apiclient"),
	}, nil
}

// Health returns nil when the server reports OK.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// Dimensions lists the rating dimensions.
func (c *Client) Dimensions(ctx context.Context) ([]domain.Dimension, error) {
	var dims []domain.Dimension
	if err := c.do(ctx, http.MethodGet, "/api/rating-dimensions", nil, nil, &dims); err != nil {
		return nil, err
	}
	return dims, nil
}

// CourseData fetches the summary of one course.
func (c *Client) CourseData(ctx context.Context, id domain.CourseID) (domain.CourseSummary, error) {
	var summary domain.CourseSummary
	if err := c.do(ctx, http.MethodGet, "/api/courses/"+id.String()+"/data", nil, nil, &summary); err != nil {
		return domain.CourseSummary{}, err
	}
	return summary, nil
}

// Bulk fetches the summaries of several courses in one call.
func (c *Client) Bulk(ctx context.Context, ids []domain.CourseID) (map[domain.CourseID]domain.CourseSummary, error) {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(int64(id), 10))
	}
	q := url.Values{}
	q.Set("ids", strings.Join(parts, ","))

	out := map[domain.CourseID]domain.CourseSummary{}
	if err := c.do(ctx, http.MethodGet, "/api/courses/bulk", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Submit posts a submission for a course.
func (c *Client) Submit(ctx context.Context, id domain.CourseID, sub Submission) error {
	return c.do(ctx, http.MethodPost, "/api/courses/"+id.String()+"/submit", nil, sub, nil)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, dst interface{}) error {
	rel := &url.URL{Path: c.baseURL.Path + path}
	if query != nil {
		rel.RawQuery = query.Encode()
	}
	endpoint := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	c.logger.Debug("api call", "method", method, "url", endpoint.String(), "status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil {
			apiErr.Code = payload.Code
			apiErr.Message = payload.Message
		}
		return apiErr
	}

	if dst == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
