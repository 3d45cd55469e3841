// Package api talks to the ERP backend's JSON REST endpoints. Credentials are
// passed to every call; the client itself holds no user state
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RequestIDHeader carries a per-request id for correlating backend logs
const RequestIDHeader = "X-Request-ID"

// Credentials authenticate one caller
type Credentials struct {
	Token string
}

// Client is a thin JSON-over-HTTP client
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *zap.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithLogger sets the logger
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

// NewClient creates a client for the API rooted at baseURL,
// e.g. https://erp.example.com/api/v1
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: u,
		http:    &http.Client{Timeout: 15 * time.Second},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches one page of resource
func (c *Client) List(ctx context.Context, cred Credentials, resource string, p ListParams) (*Envelope, error) {
	q := url.Values{}
	for k, v := range p.Params {
		q.Set(k, v)
	}
	if p.Search != "" {
		param := p.SearchParam
		if param == "" {
			param = "search"
		}
		q.Set(param, p.Search)
	}
	if p.Page > 0 {
		q.Set("page", strconv.Itoa(p.Page))
	}
	if p.PageSize > 0 {
		q.Set("page_size", strconv.Itoa(p.PageSize))
	}
	return c.do(ctx, cred, http.MethodGet, c.endpoint(resource), q, nil, "")
}

// Get fetches one record of resource by id
func (c *Client) Get(ctx context.Context, cred Credentials, resource, id string) (*Envelope, error) {
	return c.do(ctx, cred, http.MethodGet, c.endpoint(resource, id), nil, nil, "")
}

// Create posts body as JSON to resource
func (c *Client) Create(ctx context.Context, cred Credentials, resource string, body any) (*Envelope, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode %s body: %w", resource, err)
	}
	return c.do(ctx, cred, http.MethodPost, c.endpoint(resource), nil, bytes.NewReader(data), "application/json")
}

// Delete removes one record of resource
func (c *Client) Delete(ctx context.Context, cred Credentials, resource, id string) error {
	_, err := c.do(ctx, cred, http.MethodDelete, c.endpoint(resource, id), nil, nil, "")
	return err
}

// Upload sends a single file as multipart form field "file". There is no
// retry; the caller decides what a failure means
func (c *Client) Upload(ctx context.Context, cred Credentials, resource, filename string, r io.Reader) (*Envelope, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read %s: %w", filename, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close multipart body: %w", err)
	}
	return c.do(ctx, cred, http.MethodPost, c.endpoint(resource), nil, &buf, mw.FormDataContentType())
}

// endpoint joins parts onto the base path. Slashes inside a part separate
// segments; everything else is escaped
func (c *Client) endpoint(parts ...string) *url.URL {
	u := *c.baseURL
	segs := []string{strings.TrimSuffix(u.Path, "/")}
	raw := []string{strings.TrimSuffix(u.EscapedPath(), "/")}
	for _, p := range parts {
		for _, seg := range strings.Split(strings.Trim(p, "/"), "/") {
			segs = append(segs, seg)
			raw = append(raw, url.PathEscape(seg))
		}
	}
	u.Path = strings.Join(segs, "/")
	u.RawPath = strings.Join(raw, "/")
	return &u
}

func (c *Client) do(ctx context.Context, cred Credentials, method string, u *url.URL, q url.Values, body io.Reader, contentType string) (*Envelope, error) {
	if q != nil {
		u.RawQuery = q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if cred.Token != "" {
		req.Header.Set("Authorization", "Bearer "+cred.Token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, u.Path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("path", u.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
		zap.String("request_id", requestID),
	)

	var env Envelope
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &env); err != nil && resp.StatusCode < 300 {
			return nil, fmt.Errorf("decode response: %w", err)
		}
	}

	if resp.StatusCode >= 300 || (len(raw) > 0 && !env.Success && env.Error != nil) {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return nil, apiErr
	}
	return &env, nil
}

// Decode unmarshals the data block of env into T
func Decode[T any](env *Envelope) (T, error) {
	var out T
	if env == nil || len(env.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(env.Data, &out); err != nil {
		return out, fmt.Errorf("decode data: %w", err)
	}
	return out, nil
}
