// Package client is a typed HTTP client for the student records API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/aanand-mishra/student-records/internal/types"
	"github.com/aanand-mishra/student-records/internal/utils/response"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	StatusCode int
	Message    string
	Fields     map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server answered %d", e.StatusCode)
	}
	return fmt.Sprintf("%s (status code = %d)", e.Message, e.StatusCode)
}

// Client talks to one API base URL. Token is only sent when non-empty.
type Client struct {
	base       *url.URL
	token      string
	httpclient *http.Client
}

// New returns a client for baseURL, e.g. "http://localhost:8082".
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base url %q: scheme and host are required", baseURL)
	}
	return &Client{
		base:       u,
		token:      token,
		httpclient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (c *Client) apipath(segments ...string) string {
	return c.base.JoinPath(segments...).String()
}

// List runs a filtered search.
func (c *Client) List(ctx context.Context, f types.Filter) ([]types.Student, error) {
	q := url.Values{}
	setString := func(key string, v *string) {
		if v != nil && *v != "" {
			q.Set(key, *v)
		}
	}
	setFloat := func(key string, v *float64) {
		if v != nil {
			q.Set(key, strconv.FormatFloat(*v, 'f', -1, 64))
		}
	}
	setString("search", f.Search)
	setFloat("minGpa", f.MinGPA)
	setFloat("maxGpa", f.MaxGPA)
	if f.GraduationYear != nil {
		q.Set("graduationYear", strconv.Itoa(*f.GraduationYear))
	}
	setString("city", f.City)
	setString("state", f.State)
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}

	target := c.apipath("records")
	if len(q) > 0 {
		target += "?" + q.Encode()
	}

	var out struct {
		Records []types.Student `json:"records"`
	}
	if err := c.do(ctx, http.MethodGet, target, nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

// Get fetches one record.
func (c *Client) Get(ctx context.Context, id int64) (types.Student, error) {
	var s types.Student
	err := c.do(ctx, http.MethodGet, c.apipath("records", strconv.FormatInt(id, 10)), nil, &s)
	return s, err
}

// Create submits a new record and returns its id.
func (c *Client) Create(ctx context.Context, in types.StudentInput) (int64, error) {
	var msg response.Message
	if err := c.do(ctx, http.MethodPost, c.apipath("records"), in, &msg); err != nil {
		return 0, err
	}
	return msg.ID, nil
}

// Update sends a partial update. The server does not echo the record.
func (c *Client) Update(ctx context.Context, id int64, p types.StudentPatch) error {
	var msg response.Message
	return c.do(ctx, http.MethodPatch, c.apipath("records", strconv.FormatInt(id, 10)), p, &msg)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpclient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return unmarshalJSONResponse(resp, out)
}

// unmarshalJSONResponse decodes a 2xx body into v, or turns anything else
// into an *APIError carrying the server's error envelope when there is one.
func unmarshalJSONResponse(resp *http.Response, v any) error {
	if resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
			return fmt.Errorf("unexpected response body (status code = %d): %w", resp.StatusCode, err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: resp.StatusCode}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr.Message = "cannot read server message: " + err.Error()
		return apiErr
	}

	var envelope response.Response
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		apiErr.Message = envelope.Error
		apiErr.Fields = envelope.Fields
		return apiErr
	}

	apiErr.Message = strings.TrimSpace(string(raw))
	return apiErr
}
