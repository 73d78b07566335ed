package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	fbxerrors "github.com/maksimkurb/fbx-go/src/internal/errors"
	"github.com/maksimkurb/fbx-go/src/internal/log"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "fbx-go/0.1"
	maxResponseSize  = 64 << 20
)

// HTTPClient interface for dependency injection in tests
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Transport.
type Options struct {
	// BaseURL is the versioned API root, e.g. https://host:port/api/v8/.
	BaseURL string
	// Timeout bounds every request, connect and read included.
	Timeout   time.Duration
	UserAgent string
	TLS       TLSOptions
	// HTTPClient replaces the client built from Timeout and TLS.
	HTTPClient HTTPClient
}

// Transport issues requests against the box API base URL.
//
// Transport is safe for concurrent use.
type Transport struct {
	baseURL   *url.URL
	http      HTTPClient
	userAgent string
}

// Response is a non-envelope answer returned by Raw.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Envelope decodes the body as an API envelope when the box answered
// with JSON, which it does for errors on raw endpoints.
func (r *Response) Envelope() (*Envelope, bool) {
	if !strings.HasPrefix(r.ContentType, "application/json") {
		return nil, false
	}
	env, err := decodeEnvelope(r.Body, r.StatusCode)
	if err != nil {
		return nil, false
	}
	return env, true
}

// New builds a Transport.
func New(opts Options) (*Transport, error) {
	base, err := ParseBaseURL(opts.BaseURL)
	if err != nil {
		return nil, err
	}

	client := opts.HTTPClient
	if client == nil {
		c, err := NewHTTPClient(opts.Timeout, opts.TLS)
		if err != nil {
			return nil, err
		}
		client = c
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}

	return &Transport{
		baseURL:   base,
		http:      client,
		userAgent: userAgent,
	}, nil
}

// NewHTTPClient builds the HTTP client used to talk to the box, with
// connect and overall timeouts and the requested TLS verification.
func NewHTTPClient(timeout time.Duration, tlsOpts TLSOptions) (*http.Client, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	tlsConfig, err := buildTLSConfig(tlsOpts)
	if err != nil {
		return nil, fbxerrors.NewConfigError("invalid TLS settings", err)
	}
	dialer := &net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSClientConfig:       tlsConfig,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			IdleConnTimeout:       90 * time.Second,
			MaxIdleConnsPerHost:   4,
		},
	}, nil
}

// ParseBaseURL normalizes an API root so that relative paths resolve
// below it.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fbxerrors.NewConfigError("API base URL is empty", nil)
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fbxerrors.NewConfigError(fmt.Sprintf("parse API base URL %q", raw), err)
	}
	if u.Host == "" {
		return nil, fbxerrors.NewConfigError(fmt.Sprintf("API base URL %q has no host", raw), nil)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}

// BaseURL returns the API root.
func (t *Transport) BaseURL() string {
	return t.baseURL.String()
}

// Do sends a request and decodes the envelope. A nil body sends no
// payload. sessionToken is attached when non-empty.
func (t *Transport) Do(ctx context.Context, method, path string, body any, sessionToken string) (*Envelope, error) {
	resp, err := t.send(ctx, method, path, body, sessionToken)
	if err != nil {
		return nil, err
	}
	return decodeEnvelope(resp.Body, resp.StatusCode)
}

// Raw sends a GET and returns the body as is. Used by endpoints that
// serve files instead of envelopes.
func (t *Transport) Raw(ctx context.Context, path string, sessionToken string) (*Response, error) {
	return t.send(ctx, http.MethodGet, path, nil, sessionToken)
}

func (t *Transport) send(ctx context.Context, method, path string, body any, sessionToken string) (*Response, error) {
	reqURL := t.resolve(path)

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fbxerrors.NewInternalError("encode request body", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reader)
	if err != nil {
		return nil, fbxerrors.NewInternalError("create request", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", t.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if sessionToken != "" {
		req.Header.Set(AuthHeader, sessionToken)
	}

	log.Debugf("[transport] %s %s", method, reqURL)

	resp, err := t.http.Do(req)
	if err != nil {
		return nil, fbxerrors.NewTransportError(fmt.Sprintf("%s %s", method, path), err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fbxerrors.NewTransportError("read response body", err)
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        data,
	}, nil
}

// resolve joins path below the base URL. path is taken as already
// escaped so that callers can embed escaped segments such as tracker URLs.
func (t *Transport) resolve(path string) string {
	rel := strings.TrimPrefix(path, "/")
	ref, err := url.Parse(rel)
	if err != nil || ref.Scheme != "" || ref.Host != "" {
		ref = &url.URL{Path: rel}
	}
	return t.baseURL.ResolveReference(ref).String()
}
