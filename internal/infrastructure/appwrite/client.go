// Package appwrite is the backend gateway adapter. It speaks the Appwrite REST
// API and implements the account, document, table, avatar and storage ports.
//
// A Client owns one session, like the mobile SDK it stands in for: session
// cookies live in the client's cookie jar, or in the fallback cookie header
// when the backend cannot set cookies for the client's origin.
package appwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"
	"golang.org/x/net/publicsuffix"

	"github.com/jsmfood/food-ordering/internal/core/domain"
	"github.com/jsmfood/food-ordering/internal/core/ports"
	"github.com/jsmfood/food-ordering/internal/pkg/metrics"
)

const (
	defaultTimeout    = 15 * time.Second
	defaultPlatformOS = "android"
	defaultRetryBase  = 200 * time.Millisecond

	headerProject         = "X-Appwrite-Project"
	headerResponseFormat  = "X-Appwrite-Response-Format"
	headerFallbackCookies = "X-Fallback-Cookies"
	responseFormat        = "1.7.0"
)

// Config captures the settings a Client is bound to.
type Config struct {
	Endpoint   string // API root including the version, e.g. https://cloud.appwrite.io/v1
	ProjectID  string
	Platform   string // application identifier registered as a platform
	PlatformOS string // origin scheme suffix; defaults to "android"
	Timeout    time.Duration

	// MaxRetries bounds how often a read is retried after a transport
	// failure. Zero disables retries; writes are never retried.
	MaxRetries uint64
	RetryBase  time.Duration
}

// Client is a configured Appwrite client.
type Client struct {
	endpoint string
	project  string
	origin   string
	http     *http.Client
	log      zerolog.Logger

	maxRetries uint64
	retryBase  time.Duration

	mu       sync.Mutex
	fallback string // X-Fallback-Cookies value from the last session response
}

// New validates cfg and returns a Client with an empty session.
func New(cfg Config, log zerolog.Logger) (*Client, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("appwrite: invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.ProjectID == "" || cfg.Platform == "" {
		return nil, errors.New("appwrite: project id and platform are required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	platformOS := cfg.PlatformOS
	if platformOS == "" {
		platformOS = defaultPlatformOS
	}

	retryBase := cfg.RetryBase
	if retryBase <= 0 {
		retryBase = defaultRetryBase
	}

	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("appwrite: cookie jar: %w", err)
	}

	return &Client{
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		project:  cfg.ProjectID,
		origin:   "appwrite-" + platformOS + "://" + cfg.Platform,
		http:     &http.Client{Timeout: timeout, Jar: jar},
		log:      log,

		maxRetries: cfg.MaxRetries,
		retryBase:  retryBase,
	}, nil
}

// Gateway exposes the client through the gateway ports.
func (c *Client) Gateway() ports.Gateway {
	return ports.Gateway{
		Account:   c,
		Documents: c,
		Tables:    c,
		Avatars:   c,
		Storage:   c,
	}
}

// apiError is the error body the backend returns on 4xx/5xx.
type apiError struct {
	Message string `json:"message"`
	Code    int    `json:"code"`
	Type    string `json:"type"`
}

func (e *apiError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s (%d %s)", e.Message, e.Code, e.Type)
	}
	return fmt.Sprintf("%s (%d)", e.Message, e.Code)
}

// kindForStatus classifies a backend status code.
func kindForStatus(code int) domain.ErrorKind {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return domain.KindUnauthenticated
	case http.StatusNotFound:
		return domain.KindNotFound
	case http.StatusConflict:
		return domain.KindConflict
	case http.StatusBadRequest, http.StatusUnprocessableEntity:
		return domain.KindValidation
	default:
		return domain.KindTransport
	}
}

// do performs an API call. body is JSON-encoded when non-nil; out receives
// the decoded response when non-nil. GETs that fail with a transport error are
// retried with exponential backoff, up to the configured limit.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	if method != http.MethodGet || c.maxRetries == 0 {
		return c.call(ctx, op, method, path, query, body, out)
	}

	attempt := 0
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := c.call(ctx, op, method, path, query, body, out)
		if err != nil && domain.KindOf(err) == domain.KindTransport && ctx.Err() == nil {
			c.log.Debug().Err(err).Str("op", op).Int("attempt", attempt).Msg("retrying backend read")
			return retry.RetryableError(err)
		}
		return err
	})
	var de *domain.Error
	if err != nil && !errors.As(err, &de) {
		// ctx ended between attempts
		return domain.Wrap(domain.KindTransport, op, err)
	}
	return err
}

// call performs a single request.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(domain.KindOf(err))
		}
		metrics.ObserveGateway(op, outcome, start)
	}()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return domain.Wrap(domain.KindValidation, op, err)
		}
		reader = bytes.NewReader(b)
	}

	target := c.endpoint + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return domain.Wrap(domain.KindTransport, op, err)
	}
	req.Header.Set(headerProject, c.project)
	req.Header.Set(headerResponseFormat, responseFormat)
	req.Header.Set("Origin", c.origin)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if fb := c.fallbackCookies(); fb != "" {
		req.Header.Set(headerFallbackCookies, fb)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return domain.Wrap(domain.KindTransport, op, err)
	}
	defer resp.Body.Close()

	if fb := resp.Header.Get(headerFallbackCookies); fb != "" {
		c.setFallbackCookies(fb)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		ae := &apiError{Code: resp.StatusCode}
		if derr := json.NewDecoder(resp.Body).Decode(ae); derr != nil || ae.Message == "" {
			ae.Message = http.StatusText(resp.StatusCode)
		}
		if ae.Code == 0 {
			ae.Code = resp.StatusCode
		}
		c.log.Debug().Str("op", op).Int("status", resp.StatusCode).Str("type", ae.Type).Msg("backend request failed")
		return domain.Wrap(kindForStatus(resp.StatusCode), op, ae)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.Wrap(domain.KindTransport, op, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func (c *Client) fallbackCookies() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fallback
}

func (c *Client) setFallbackCookies(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fallback = v
}

func escapePath(segments ...string) string {
	var b strings.Builder
	for _, s := range segments {
		b.WriteByte('/')
		b.WriteString(url.PathEscape(s))
	}
	return b.String()
}

func queryValues(queries []ports.Query) url.Values {
	if len(queries) == 0 {
		return nil
	}
	v := url.Values{}
	for _, q := range queries {
		v.Add("queries[]", q.String())
	}
	return v
}
