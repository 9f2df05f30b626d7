// Package discord provides a minimal Discord REST client for locating and
// deleting channel messages.
package discord

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bluele/gcache"
	"github.com/mattn/go-colorable"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://discord.com/api/v9"

	defBatchSize  = 100
	defCacheEvict = 10 * time.Minute
	defCacheSz    = 20
	defUserAgent  = "wipemydiscord (https://github.com/rusq/wipemydiscord)"

	maxErrBody = 512 // bytes of the response body kept in APIError
)

var (
	// ErrNoToken is returned by New if the token is empty.
	ErrNoToken = errors.New("empty authorization token")
)

// Client is the authenticated HTTP session.  It is not safe for concurrent
// use, all requests are issued one at a time.
type Client struct {
	hc      *http.Client
	baseURL string
	token   string
	ua      string

	cache   gcache.Cache
	limiter *rate.Limiter

	log *zap.Logger
}

type Option func(c *Client)

// WithBaseURL overrides the API base URL, i.e. for testing.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		if u == "" {
			return
		}
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient allows to specify a custom http client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc == nil {
			return
		}
		c.hc = hc
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua == "" {
			return
		}
		c.ua = ua
	}
}

// WithPacing sets the minimum interval between two API requests.  Zero or
// negative value disables pacing.
func WithPacing(every time.Duration) Option {
	return func(c *Client) {
		if every <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(every), 1)
	}
}

// WithDebug enables logging of every request and response.
func WithDebug(enable bool) Option {
	return func(c *Client) {
		if !enable {
			c.log = nil
			return
		}
		cfg := zap.NewDevelopmentEncoderConfig()
		cfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		c.log = zap.New(zapcore.NewCore(
			zapcore.NewConsoleEncoder(cfg),
			zapcore.AddSync(colorable.NewColorableStdout()),
			zapcore.DebugLevel,
		))
	}
}

// WithLogger sets the debug logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.log = l
	}
}

func New(token string, opts ...Option) (*Client, error) {
	if token == "" {
		return nil, ErrNoToken
	}
	// Client with the default parameters
	var c = Client{
		hc:      &http.Client{},
		baseURL: DefaultBaseURL,
		token:   token,
		ua:      defUserAgent,

		cache: gcache.New(defCacheSz).LFU().Expiration(defCacheEvict).Build(),
	}
	for _, opt := range opts {
		opt(&c)
	}
	if c.log != nil {
		hc := *c.hc
		hc.Transport = &debugTransport{next: hc.Transport, log: c.log}
		c.hc = &hc
	}
	return &c, nil
}

// APIError is returned when the API responds with the non-success status.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// IsStatus returns true if err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == code
}

// do executes the request, and decodes the response body into v, if v is not
// nil.  Any non-2xx status is returned as *APIError.
func (c *Client) do(ctx context.Context, method string, path string, query url.Values, v any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("User-Agent", c.ua)
	req.Header.Set("Accept", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrBody))
		return &APIError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}
	if v == nil {
		_, err := io.Copy(io.Discard, resp.Body)
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%s %s: decode error: %w", method, path, err)
	}
	return nil
}

// debugTransport logs requests and responses.  The authorization header is
// never logged.
type debugTransport struct {
	next http.RoundTripper
	log  *zap.Logger
}

func (t *debugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}
	start := time.Now()
	resp, err := next.RoundTrip(req)
	if err != nil {
		t.log.Debug("request failed",
			zap.String("method", req.Method),
			zap.Stringer("url", req.URL),
			zap.Error(err),
		)
		return nil, err
	}
	t.log.Debug("request",
		zap.String("method", req.Method),
		zap.Stringer("url", req.URL),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)),
	)
	return resp, nil
}
