// Package intake talks to a remote intake service over its JSON REST surface.
// It is what cmd/reconcile uses when the two origin tables live behind another deployment.
package intake

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"hospital-recruitment-backend/internal/domain"

	"github.com/cenkalti/backoff/v5"
)

// Client lists and updates records of one intake kind on a remote deployment.
type Client struct {
	baseURL    string // e.g. https://hr.example.org/v1/resume-deposits
	kind       domain.IntakeKind
	token      string
	httpClient *http.Client

	initialInterval time.Duration
	maxTries        uint
}

type Option func(*Client)

// WithToken sends a bearer token on every request
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetry overrides the backoff schedule
func WithRetry(initial time.Duration, maxTries uint) Option {
	return func(c *Client) {
		c.initialInterval = initial
		c.maxTries = maxTries
	}
}

func NewClient(baseURL string, kind domain.IntakeKind, opts ...Option) *Client {
	c := &Client{
		baseURL:         baseURL,
		kind:            kind,
		httpClient:      &http.Client{Timeout: 30 * time.Second},
		initialInterval: 500 * time.Millisecond,
		maxTries:        3,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Kind() domain.IntakeKind {
	return c.kind
}

// envelope mirrors response.APIResponse on the remote side
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// StatusError is a non-retryable HTTP failure from the remote service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("intake: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("intake: status %d", e.StatusCode)
}

// List fetches records matching filter
func (c *Client) List(ctx context.Context, filter domain.IntakeFilter) ([]domain.RawApplicantRecord, error) {
	if filter.Scope == domain.ScopeNone {
		return []domain.RawApplicantRecord{}, nil
	}
	target := c.baseURL + "?" + listQuery(filter).Encode()

	data, err := c.do(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}

	records := make([]domain.RawApplicantRecord, 0)
	if len(data) == 0 || string(data) == "null" {
		return records, nil
	}
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("intake: decode %s list: %w", c.kind, err)
	}
	return records, nil
}

// Replace sends a full document update
func (c *Client) Replace(ctx context.Context, id string, doc domain.RawApplicantRecord) (domain.RawApplicantRecord, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	data, err := c.do(ctx, http.MethodPut, c.baseURL+"/"+url.PathEscape(id), body)
	if err != nil {
		return nil, err
	}
	var rec domain.RawApplicantRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("intake: decode %s record: %w", c.kind, err)
	}
	return rec, nil
}

func listQuery(filter domain.IntakeFilter) url.Values {
	q := url.Values{}
	switch filter.Scope {
	case domain.ScopeID:
		q.Set("id", filter.Value)
	case domain.ScopeUserID:
		q.Set("userId", filter.Value)
	case domain.ScopeLineID:
		q.Set("lineId", filter.Value)
	case domain.ScopeEmail:
		q.Set("email", filter.Value)
	case domain.ScopeDepartment:
		q.Set("department", filter.Value)
	case domain.ScopeAdmin:
		q.Set("admin", "true")
	}
	if filter.Limit > 0 {
		q.Set("limit", strconv.Itoa(filter.Limit))
	}
	return q
}

// do performs one request with retry on transport errors, 429 and 5xx.
func (c *Client) do(ctx context.Context, method, target string, body []byte) (json.RawMessage, error) {
	operation := func() (json.RawMessage, error) {
		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, reader)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(io.LimitReader(resp.Body, 16<<20))
		if err != nil {
			return nil, err
		}

		if isRetryableStatus(resp.StatusCode) {
			return nil, fmt.Errorf("intake: status %d", resp.StatusCode)
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Message: "invalid response body"})
		}
		if resp.StatusCode >= 400 || !env.Success {
			msg := env.Message
			if env.Error != nil && env.Error.Message != "" {
				msg = env.Error.Message
			}
			return nil, backoff.Permanent(&StatusError{StatusCode: resp.StatusCode, Message: msg})
		}
		return env.Data, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.initialInterval
	bo.MaxInterval = 10 * c.initialInterval

	return backoff.Retry(ctx, operation, backoff.WithBackOff(bo), backoff.WithMaxTries(c.maxTries))
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}
