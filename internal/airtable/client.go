// Package airtable is a minimal REST client for reading table records and
// base metadata from Airtable.
package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/pkordes/festsched/internal/normalize"
)

// DefaultBaseURL is the public Airtable REST endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// ErrMissingCredentials is returned when the API key or base ID is empty.
var ErrMissingCredentials = errors.New("airtable configuration missing")

// Client fetches records from one Airtable base.
type Client struct {
	baseURL    string
	baseID     string
	apiKey     string
	httpClient *http.Client
	log        *slog.Logger
	retryDelay time.Duration
}

// NewClient creates a Client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, baseID, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    baseURL,
		baseID:     baseID,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "airtable"),
		retryDelay: 500 * time.Millisecond,
	}
}

// listResponse is one page of GET /{baseID}/{table}.
type listResponse struct {
	Records []normalize.RESTRecord `json:"records"`
	Offset  string                 `json:"offset"`
}

type basesResponse struct {
	Bases []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"bases"`
	Offset string `json:"offset"`
}

// errorResponse covers both error shapes the API returns:
// {"error": {"type": "...", "message": "..."}} and {"error": "NOT_FOUND"}.
type errorResponse struct {
	Error json.RawMessage `json:"error"`
}

// ListRecords fetches every record of a table, following offset pagination.
func (c *Client) ListRecords(ctx context.Context, table string) ([]normalize.RESTRecord, error) {
	if c.apiKey == "" || c.baseID == "" || table == "" {
		return nil, ErrMissingCredentials
	}

	var (
		all    []normalize.RESTRecord
		offset string
		pages  int
	)
	for {
		q := url.Values{}
		if offset != "" {
			q.Set("offset", offset)
		}
		reqURL := c.baseURL + "/" + url.PathEscape(c.baseID) + "/" + url.PathEscape(table)
		if len(q) > 0 {
			reqURL += "?" + q.Encode()
		}

		var page listResponse
		if err := c.getJSON(ctx, reqURL, &page); err != nil {
			return nil, fmt.Errorf("airtable.Client.ListRecords(%s): %w", table, err)
		}
		all = append(all, page.Records...)
		pages++

		if page.Offset == "" {
			break
		}
		offset = page.Offset
	}

	c.log.DebugContext(ctx, "airtable table fetched",
		slog.String("table", table),
		slog.Int("records", len(all)),
		slog.Int("pages", pages),
	)
	return all, nil
}

// BaseName looks up the display name of the configured base. It returns ""
// when the key cannot see the base.
func (c *Client) BaseName(ctx context.Context) (string, error) {
	if c.apiKey == "" || c.baseID == "" {
		return "", ErrMissingCredentials
	}

	offset := ""
	for {
		reqURL := c.baseURL + "/meta/bases"
		if offset != "" {
			reqURL += "?" + url.Values{"offset": {offset}}.Encode()
		}

		var page basesResponse
		if err := c.getJSON(ctx, reqURL, &page); err != nil {
			return "", fmt.Errorf("airtable.Client.BaseName: %w", err)
		}
		for _, b := range page.Bases {
			if b.ID == c.baseID {
				return b.Name, nil
			}
		}
		if page.Offset == "" {
			return "", nil
		}
		offset = page.Offset
	}
}

func (c *Client) getJSON(ctx context.Context, reqURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.doWithRetry(ctx, req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Message: errorMessage(body, resp.Status)}
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}
	return nil
}

// doWithRetry retries once on network errors, 429 and 5xx responses.
func (c *Client) doWithRetry(ctx context.Context, req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && (resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests))
	if !shouldRetry {
		return resp, err
	}
	if ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil && resp != nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	c.log.WarnContext(ctx, "airtable retry", slog.String("url", req.URL.Path), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-time.After(c.retryDelay):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return c.httpClient.Do(req)
}

// APIError is a non-200 response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("airtable: %s (status %d)", e.Message, e.StatusCode)
}

func errorMessage(body []byte, status string) string {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err == nil && len(resp.Error) > 0 {
		var detailed struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		}
		if err := json.Unmarshal(resp.Error, &detailed); err == nil {
			if detailed.Message != "" {
				return detailed.Message
			}
			if detailed.Type != "" {
				return detailed.Type
			}
		}
		var code string
		if err := json.Unmarshal(resp.Error, &code); err == nil && code != "" {
			return code
		}
	}
	return "failed to fetch from Airtable: " + status
}
