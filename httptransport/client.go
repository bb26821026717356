// Package httptransport is a net/http implementation of the catalystwan
// transport.
package httptransport

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/broady/catalystwan"
	"github.com/hashicorp/go-version"
)

// DefaultMaxBodySize is the maximum response body size.
const DefaultMaxBodySize = 1 << 26

// Client sends operation requests to a manager. It holds the session
// state read by guards: the API version and the session role. It is safe
// for concurrent use.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	headers   map[string]string
	userAgent string
	logger    *slog.Logger
	metrics   *Metrics
	maxBody   int64

	mu         sync.RWMutex
	apiVersion *version.Version
	role       catalystwan.Role
}

var _ catalystwan.Transport = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithHeader adds a header sent with every request, such as a session
// cookie or XSRF token obtained at login.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers[key] = value
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithLogger sets the logger for request traces.
// If not set, slog.Default() will be used.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithMetrics records request metrics.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithMaxBodySize limits the size of response bodies. Larger responses
// fail with ErrBodyTooLarge. The default is DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(c *Client) {
		c.maxBody = n
	}
}

// New returns a client for the manager at baseURL, e.g.
// "https://vmanage.example.com:8443".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}
	c := &Client{
		baseURL:   u,
		http:      http.DefaultClient,
		headers:   make(map[string]string),
		userAgent: "catalystwan",
		maxBody:   DefaultMaxBodySize,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

// NewFromConfig returns a client configured by cfg.
func NewFromConfig(cfg *Config, opts ...Option) (*Client, error) {
	base, err := cfg.BaseURL()
	if err != nil {
		return nil, err
	}
	hc := &http.Client{Timeout: cfg.Timeout}
	if cfg.InsecureSkipVerify {
		hc.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}
	all := []Option{WithHTTPClient(hc)}
	if cfg.UserAgent != "" {
		all = append(all, WithUserAgent(cfg.UserAgent))
	}
	for k, v := range cfg.Headers {
		all = append(all, WithHeader(k, v))
	}
	c, err := New(base, append(all, opts...)...)
	if err != nil {
		return nil, err
	}
	if cfg.APIVersion != "" {
		v := catalystwan.ParseAPIVersion(cfg.APIVersion)
		if v == nil {
			return nil, fmt.Errorf("invalid api_version %q", cfg.APIVersion)
		}
		c.SetAPIVersion(v)
	}
	if cfg.Role != "" {
		role, err := catalystwan.ParseRole(cfg.Role)
		if err != nil {
			return nil, err
		}
		c.SetSessionRole(role)
	}
	return c, nil
}

// APIVersion implements catalystwan.Transport.
func (c *Client) APIVersion() *version.Version {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.apiVersion
}

// SetAPIVersion records the API version reported by the server.
func (c *Client) SetAPIVersion(v *version.Version) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiVersion = v
}

// SessionRole implements catalystwan.Transport.
func (c *Client) SessionRole() catalystwan.Role {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.role
}

// SetSessionRole records the classification of the session.
func (c *Client) SetSessionRole(r catalystwan.Role) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.role = r
}

// Request implements catalystwan.Transport. A "timeout" option of type
// time.Duration bounds the call. A "json" option is sent as the JSON body
// of requests that carry no payload.
func (c *Client) Request(ctx context.Context, req *catalystwan.Request) (catalystwan.Response, error) {
	if d, ok := req.Options["timeout"].(time.Duration); ok && d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	operation := ""
	if info, ok := catalystwan.OperationFromContext(ctx); ok {
		operation = info.Name
	}

	hreq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	done := c.metrics.begin()
	start := time.Now()
	resp, err := c.http.Do(hreq)
	if err != nil {
		done(req.Method, operation, 0)
		c.logger.DebugContext(ctx, "request failed",
			slog.String("method", req.Method),
			slog.String("url", hreq.URL.String()),
			slog.Any("error", err))
		return nil, err
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err == nil && int64(len(data)) > c.maxBody {
		err = ErrBodyTooLarge
	}
	done(req.Method, operation, resp.StatusCode)
	c.logger.DebugContext(ctx, "request completed",
		slog.String("method", req.Method),
		slog.String("url", hreq.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Int("bytes", len(data)),
		slog.Duration("duration", time.Since(start)))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			Method:     req.Method,
			URL:        hreq.URL.Path,
			StatusCode: resp.StatusCode,
			Info:       parseErrorInfo(data),
			Body:       data,
		}
	}
	return &catalystwan.BufferedResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

func (c *Client) newRequest(ctx context.Context, req *catalystwan.Request) (*http.Request, error) {
	u := *c.baseURL
	u.Path = joinURLPath(u.Path, req.URL)
	u.RawQuery = req.Params.Encode()

	prepared := req.PreparedBody
	if prepared.Body == nil && len(prepared.Multipart) == 0 {
		if v, ok := req.Options["json"]; ok {
			data, err := json.Marshal(v)
			if err != nil {
				return nil, fmt.Errorf("encode json option: %w", err)
			}
			prepared.Body = data
			if prepared.Headers == nil {
				prepared.Headers = map[string]string{"content-type": "application/json"}
			}
		}
	}
	body, contentType, err := encodeBody(&prepared)
	if err != nil {
		return nil, err
	}
	hreq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, err
	}
	hreq.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}
	for k, v := range c.headers {
		hreq.Header.Set(k, v)
	}
	if contentType != "" {
		hreq.Header.Set("Content-Type", contentType)
	}
	for k, v := range prepared.Headers {
		hreq.Header.Set(k, v)
	}
	return hreq, nil
}

// encodeBody converts a prepared body into a request body and the
// content type it implies.
func encodeBody(b *catalystwan.PreparedBody) (io.Reader, string, error) {
	if len(b.Multipart) > 0 {
		buf, ct, err := encodeMultipart(b)
		if err != nil {
			return nil, "", err
		}
		return buf, ct, nil
	}
	switch body := b.Body.(type) {
	case nil:
		return nil, "", nil
	case []byte:
		return bytes.NewReader(body), "", nil
	case string:
		return strings.NewReader(body), "", nil
	case map[string]any:
		form := make(url.Values, len(body))
		for _, k := range sortedKeys(body) {
			form.Set(k, formValue(body[k]))
		}
		return strings.NewReader(form.Encode()), "application/x-www-form-urlencoded", nil
	case io.Reader:
		return body, "", nil
	default:
		return nil, "", fmt.Errorf("unsupported body type %T", b.Body)
	}
}

// joinURLPath appends resourcePath to urlPath.
func joinURLPath(urlPath, resourcePath string) string {
	if resourcePath == "" {
		if urlPath == "" {
			return "/"
		}
		return urlPath
	}
	if !strings.HasSuffix(urlPath, "/") {
		urlPath += "/"
	}
	return urlPath + strings.TrimPrefix(resourcePath, "/")
}
