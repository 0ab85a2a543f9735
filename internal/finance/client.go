package finance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	errx "github.com/moneymitra/server/internal/core/error"
	logx "github.com/moneymitra/server/pkg/logger"
)

const (
	// DefaultUserAgent is a browser-like agent; NSE and others reject obvious bots.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	acceptJSON   = "application/json, text/plain, */*"
	maxErrorBody = 64 << 10
)

// Config controls the outbound HTTP behaviour of the Client.
type Config struct {
	Timeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
	UserAgent string        `envconfig:"UPSTREAM_USER_AGENT"`
	Endpoints Endpoints
}

// Endpoints holds provider base URLs, without trailing slash.
type Endpoints struct {
	MFAPI        string `envconfig:"FINANCE_MFAPI_BASE_URL" default:"https://api.mfapi.in"`
	NSE          string `envconfig:"FINANCE_NSE_BASE_URL" default:"https://www.nseindia.com"`
	GoldAPI      string `envconfig:"FINANCE_GOLDAPI_BASE_URL" default:"https://www.goldapi.io"`
	ExchangeRate string `envconfig:"FINANCE_EXCHANGERATE_BASE_URL" default:"https://api.exchangerate.host"`
	CoinGecko    string `envconfig:"FINANCE_COINGECKO_BASE_URL" default:"https://api.coingecko.com"`
	FMP          string `envconfig:"FINANCE_FMP_BASE_URL" default:"https://financialmodelingprep.com"`
	Groww        string `envconfig:"FINANCE_GROWW_BASE_URL" default:"https://api-cdn.groww.in"`
	Yahoo        string `envconfig:"FINANCE_YAHOO_BASE_URL" default:"https://yh-finance.p.rapidapi.com"`
}

// DefaultEndpoints returns the production provider URLs, taken from the
// default tags on Endpoints.
func DefaultEndpoints() Endpoints {
	return withDefaults(Endpoints{})
}

// Client calls the market-data providers. It holds no per-call state and is safe
// for concurrent use.
type Client struct {
	httpClient *http.Client
	creds      Credentials
	endpoints  Endpoints
	userAgent  string
}

type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient builds a Client. Empty endpoint fields fall back to DefaultEndpoints.
func NewClient(cfg Config, creds Credentials, opts ...Option) *Client {
	if creds == nil {
		creds = EnvCredentials{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}

	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		creds:      creds,
		endpoints:  withDefaults(cfg.Endpoints),
		userAgent:  ua,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// withDefaults fills empty fields from their default tag.
func withDefaults(e Endpoints) Endpoints {
	v := reflect.ValueOf(&e).Elem()
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if f := v.Field(i); f.String() == "" {
			f.SetString(t.Field(i).Tag.Get("default"))
		}
	}
	return e
}

// credential resolves a required credential before any request is built.
func (c *Client) credential(name string) (string, error) {
	v, ok := c.creds.Lookup(name)
	if !ok {
		return "", errx.MissingCredential(name)
	}
	return v, nil
}

type request struct {
	provider string
	url      string
	headers  map[string]string
}

// getJSON performs one uncached GET and decodes a 2xx body into out.
func (c *Client) getJSON(ctx context.Context, r request, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", r.provider, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", acceptJSON)
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("Pragma", "no-cache")
	for k, v := range r.headers {
		req.Header.Set(k, v)
	}

	safeURL := redactURL(r.url)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Warn().Err(err).Str("provider", r.provider).Str("url", safeURL).Msg("upstream request failed")
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%s request aborted: %w", r.provider, err)
		}
		return fmt.Errorf("%s request failed: %w", r.provider, err)
	}
	defer resp.Body.Close()

	logx.Debug().
		Str("provider", r.provider).
		Str("url", safeURL).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("upstream response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logx.Warn().Str("provider", r.provider).Int("status", resp.StatusCode).Msg("upstream returned error status")
		return errx.UpstreamStatus(r.provider, resp.StatusCode, reasonPhrase(resp), safeURL, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errx.InvalidValue("%s returned malformed JSON: %v", r.provider, err)
	}
	return nil
}

// reasonPhrase is the upstream's status text, e.g. "Too Many Requests" from
// "429 Too Many Requests".
func reasonPhrase(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		return http.StatusText(resp.StatusCode)
	}
	return text
}

var secretParams = []string{"apikey", "api_key", "token", "access_key"}

// redactURL hides credentials passed as query parameters.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	q := u.Query()
	changed := false
	for _, p := range secretParams {
		if q.Has(p) {
			q.Set(p, "***")
			changed = true
		}
	}
	if !changed {
		return raw
	}
	u.RawQuery = q.Encode()
	return u.String()
}
