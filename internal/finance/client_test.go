package finance

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/moneymitra/server/internal/core/error"
)

type recorded struct {
	hits   atomic.Int32
	last   atomic.Pointer[http.Request]
	status int
	body   string
}

func newTestClient(t *testing.T, creds Credentials, routes map[string]*recorded) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		rec.hits.Add(1)
		rec.last.Store(r.Clone(context.Background()))
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(rec.body))
	}))
	t.Cleanup(srv.Close)

	return NewClient(Config{
		Timeout: 2 * time.Second,
		Endpoints: Endpoints{
			MFAPI:        srv.URL,
			NSE:          srv.URL,
			GoldAPI:      srv.URL,
			ExchangeRate: srv.URL,
			CoinGecko:    srv.URL,
			FMP:          srv.URL,
			Groww:        srv.URL,
			Yahoo:        srv.URL,
		},
	}, creds)
}

func TestMutualFundNavTakesFirstHistoryEntry(t *testing.T) {
	rec := &recorded{body: `{
		"meta": {"scheme_name": "Axis Bluechip Fund - Direct Growth", "scheme_code": 120465},
		"data": [{"date": "14-03-2024", "nav": "58.12000"}, {"date": "13-03-2024", "nav": "57.90000"}],
		"status": "SUCCESS"
	}`}
	c := newTestClient(t, nil, map[string]*recorded{"/mf/120465": rec})

	nav, err := c.MutualFundNav(context.Background(), "120465")
	require.NoError(t, err)
	assert.Equal(t, &MutualFundNav{
		Name:       "Axis Bluechip Fund - Direct Growth",
		LatestNav:  58.12,
		Date:       "14-03-2024",
		SchemeCode: "120465",
	}, nav)

	req := rec.last.Load()
	assert.Contains(t, req.Header.Get("User-Agent"), "Mozilla/5.0")
	assert.Equal(t, acceptJSON, req.Header.Get("Accept"))
	assert.Equal(t, "no-cache", req.Header.Get("Cache-Control"))
}

func TestMutualFundNavFailures(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
		msg     string
	}{
		{name: "empty history", body: `{"meta": {"scheme_name": "X"}, "data": []}`, wantErr: errx.ErrNotFound, msg: "schemeCode=1"},
		{name: "no meta", body: `{"data": [{"date": "d", "nav": "1"}]}`, wantErr: errx.ErrNotFound, msg: "schemeCode=1"},
		{name: "unparseable nav", body: `{"meta": {"scheme_name": "X"}, "data": [{"date": "d", "nav": "N.A."}]}`, wantErr: errx.ErrInvalidValue, msg: "N.A."},
		{name: "zero nav", body: `{"meta": {"scheme_name": "X"}, "data": [{"date": "d", "nav": "0"}]}`, wantErr: errx.ErrInvalidValue, msg: "Invalid NAV"},
		{name: "malformed json", body: `<html>`, wantErr: errx.ErrInvalidValue, msg: "malformed JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, nil, map[string]*recorded{"/mf/1": {body: tt.body}})
			_, err := c.MutualFundNav(context.Background(), "1")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

const allIndicesBody = `{"data": [
	{"index": "NIFTY BANK", "last": 47000.1, "variation": -120.5, "percentChange": -0.26},
	{"index": "NIFTY 50", "last": "22123.45", "change": null, "variation": 101.2, "pChange": "0.46"},
	{"index": "NIFTY 50", "last": 1, "variation": 1, "percentChange": 1}
]}`

func TestNseIndexQuoteIsCaseInsensitive(t *testing.T) {
	rec := &recorded{body: allIndicesBody}
	c := newTestClient(t, nil, map[string]*recorded{"/api/allIndices": rec})

	lower, err := c.NseIndexQuote(context.Background(), "nifty 50")
	require.NoError(t, err)
	upper, err := c.NseIndexQuote(context.Background(), "NIFTY 50")
	require.NoError(t, err)

	assert.Equal(t, upper, lower)
	assert.Equal(t, &IndexQuote{Index: "NIFTY 50", Last: 22123.45, Change: 101.2, PChange: 0.46}, lower)
	assert.Contains(t, rec.last.Load().Header.Get("Referer"), "nseindia.com")
	assert.NotEmpty(t, rec.last.Load().Header.Get("Accept-Language"))
}

func TestNseIndexQuoteFallbacksAndMisses(t *testing.T) {
	c := newTestClient(t, nil, map[string]*recorded{"/api/allIndices": {body: allIndicesBody}})

	bank, err := c.NseIndexQuote(context.Background(), "Nifty Bank")
	require.NoError(t, err)
	assert.Equal(t, -120.5, bank.Change)
	assert.Equal(t, -0.26, bank.PChange)

	_, err = c.NseIndexQuote(context.Background(), "NIFTY")
	assert.ErrorIs(t, err, errx.ErrNotFound)
	assert.Contains(t, err.Error(), `"NIFTY"`)
}

func TestNseIndexQuoteDefaultsSecondaryFields(t *testing.T) {
	c := newTestClient(t, nil, map[string]*recorded{"/api/allIndices": {body: `{"data": [{"index": "INDIA VIX", "last": 13.2}]}`}})

	q, err := c.NseIndexQuote(context.Background(), "india vix")
	require.NoError(t, err)
	assert.Zero(t, q.Change)
	assert.Zero(t, q.PChange)
}

func TestGoldPriceDerivesOunceFromGram(t *testing.T) {
	rec := &recorded{body: `{"metal": "xau", "currency": "inr", "price_gram_24k": 7500}`}
	c := newTestClient(t, StaticCredentials{EnvGoldAPIKey: "gold-key"}, map[string]*recorded{"/api/XAU/INR": rec})

	gp, err := c.GoldPriceInInr(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "XAU", gp.Metal)
	assert.Equal(t, "INR", gp.Currency)
	assert.Equal(t, 7500.0, gp.PricePerGram)
	assert.InDelta(t, 7500*GramsPerTroyOunce, gp.PricePerOunce, 1e-6)
	assert.Equal(t, "gold-key", rec.last.Load().Header.Get("x-access-token"))
}

func TestGoldPricePrefersDirectOunce(t *testing.T) {
	c := newTestClient(t, StaticCredentials{EnvGoldAPIKey: "k"}, map[string]*recorded{
		"/api/XAU/INR": {body: `{"price": "233000.5", "price_gram_24k": "7491.2"}`},
	})

	gp, err := c.GoldPriceInInr(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 233000.5, gp.PricePerOunce)
	assert.Equal(t, "XAU", gp.Metal)
	assert.Equal(t, "INR", gp.Currency)
}

func TestGoldPriceRejectsInvalidGram(t *testing.T) {
	c := newTestClient(t, StaticCredentials{EnvGoldAPIKey: "k"}, map[string]*recorded{
		"/api/XAU/INR": {body: `{"price": 233000, "price_gram_24k": null}`},
	})

	_, err := c.GoldPriceInInr(context.Background())
	assert.ErrorIs(t, err, errx.ErrInvalidValue)
	assert.Contains(t, err.Error(), "price_gram_24k")
}

func TestMissingCredentialFailsBeforeNetwork(t *testing.T) {
	gold := &recorded{body: `{}`}
	fmp := &recorded{body: `[]`}
	yahoo := &recorded{body: `{}`}
	c := newTestClient(t, StaticCredentials{}, map[string]*recorded{
		"/api/XAU/INR":          gold,
		"/api/v3/quote/AAPL":    fmp,
		"/market/v2/get-quotes": yahoo,
	})

	_, err := c.GoldPriceInInr(context.Background())
	assert.ErrorIs(t, err, errx.ErrMissingCredential)
	assert.Contains(t, err.Error(), EnvGoldAPIKey)

	_, err = c.GlobalQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, errx.ErrMissingCredential)
	assert.Contains(t, err.Error(), EnvFMPKey)

	_, err = c.YahooFinanceQuote(context.Background(), "AAPL")
	assert.ErrorIs(t, err, errx.ErrMissingCredential)
	assert.Contains(t, err.Error(), EnvRapidAPI)

	assert.Zero(t, gold.hits.Load())
	assert.Zero(t, fmp.hits.Load())
	assert.Zero(t, yahoo.hits.Load())
}

func TestEnvCredentialsReadAtCallTime(t *testing.T) {
	rec := &recorded{body: `{"price_gram_24k": 7000}`}
	c := newTestClient(t, EnvCredentials{}, map[string]*recorded{"/api/XAU/INR": rec})

	t.Setenv(EnvGoldAPIKey, "")
	_, err := c.GoldPriceInInr(context.Background())
	assert.ErrorIs(t, err, errx.ErrMissingCredential)

	t.Setenv(EnvGoldAPIKey, "rotated")
	_, err = c.GoldPriceInInr(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rotated", rec.last.Load().Header.Get("x-access-token"))
}

func TestFxRateNormalizesTargetCase(t *testing.T) {
	rec := &recorded{body: `{"base": "INR", "rates": {"USD": 0.01198}}`}
	c := newTestClient(t, nil, map[string]*recorded{"/latest": rec})

	lower, err := c.FxRateInrTo(context.Background(), "usd")
	require.NoError(t, err)
	upper, err := c.FxRateInrTo(context.Background(), "USD")
	require.NoError(t, err)

	assert.Equal(t, "USD", lower.Target)
	assert.Equal(t, upper, lower)
	assert.Equal(t, &FxRate{Base: "INR", Target: "USD", Rate: 0.01198}, lower)

	q := rec.last.Load().URL.Query()
	assert.Equal(t, "INR", q.Get("base"))
	assert.Equal(t, "USD", q.Get("symbols"))
}

func TestFxRateMissingOrInvalid(t *testing.T) {
	c := newTestClient(t, nil, map[string]*recorded{"/latest": {body: `{"rates": {"EUR": 0.011, "JPY": "0", "GBP": null}}`}})

	_, err := c.FxRateInrTo(context.Background(), "usd")
	assert.ErrorIs(t, err, errx.ErrNotFound)
	assert.Contains(t, err.Error(), "INR -> USD")

	_, err = c.FxRateInrTo(context.Background(), "jpy")
	assert.ErrorIs(t, err, errx.ErrInvalidValue)

	_, err = c.FxRateInrTo(context.Background(), "gbp")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestCryptoPriceNormalizesCoinID(t *testing.T) {
	rec := &recorded{body: `{"bitcoin": {"inr": 5412345.67}}`}
	c := newTestClient(t, nil, map[string]*recorded{"/api/v3/simple/price": rec})

	p, err := c.CryptoPriceInInr(context.Background(), "  BitCoin ")
	require.NoError(t, err)
	assert.Equal(t, &CryptoPrice{ID: "bitcoin", Symbol: "BITCOIN", PriceInInr: 5412345.67}, p)
	assert.Equal(t, "bitcoin", rec.last.Load().URL.Query().Get("ids"))
	assert.Equal(t, "inr", rec.last.Load().URL.Query().Get("vs_currencies"))

	_, err = c.CryptoPriceInInr(context.Background(), "dogecoin")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestGlobalQuote(t *testing.T) {
	rec := &recorded{body: `[{"symbol": "aapl", "price": 189.84, "timestamp": 1710432000}]`}
	c := newTestClient(t, StaticCredentials{EnvFMPKey: "fmp-secret"}, map[string]*recorded{"/api/v3/quote/AAPL": rec})

	q, err := c.GlobalQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, &GlobalQuote{Symbol: "AAPL", Price: 189.84, Timestamp: "1710432000"}, q)
	assert.Equal(t, "fmp-secret", rec.last.Load().URL.Query().Get("apikey"))
}

func TestGlobalQuoteEmptyAndInvalid(t *testing.T) {
	creds := StaticCredentials{EnvFMPKey: "k"}

	c := newTestClient(t, creds, map[string]*recorded{"/api/v3/quote/ZZZZ": {body: `[]`}})
	_, err := c.GlobalQuote(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, errx.ErrNotFound)

	c = newTestClient(t, creds, map[string]*recorded{"/api/v3/quote/MSFT": {body: `[{"symbol": "MSFT", "price": null, "lastUpdated": "x"}]`}})
	_, err = c.GlobalQuote(context.Background(), "MSFT")
	assert.ErrorIs(t, err, errx.ErrInvalidValue)
	assert.Contains(t, err.Error(), "symbol=MSFT")
}

func TestNonSuccessStatusCarriesCodeAndHidesSecrets(t *testing.T) {
	c := newTestClient(t, StaticCredentials{EnvFMPKey: "fmp-secret"}, map[string]*recorded{
		"/api/v3/quote/AAPL": {status: http.StatusForbidden, body: strings.Repeat("limit reached ", 100)},
	})

	_, err := c.GlobalQuote(context.Background(), "AAPL")
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrUpstreamStatus)
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "Forbidden")
	assert.NotContains(t, err.Error(), "fmp-secret")

	var statusErr *errx.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusForbidden, statusErr.StatusCode)
	assert.LessOrEqual(t, len([]rune(statusErr.Body)), errx.MaxBodyExcerpt)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

func TestNonSuccessStatusUsesUpstreamReasonPhrase(t *testing.T) {
	tests := []struct {
		status string
		code   int
		want   string
	}{
		{"503 Scheduled Maintenance", http.StatusServiceUnavailable, "HTTP 503 Scheduled Maintenance"},
		{"429", http.StatusTooManyRequests, "HTTP 429 Too Many Requests"},
	}
	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			hc := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				return &http.Response{
					StatusCode: tt.code,
					Status:     tt.status,
					Body:       io.NopCloser(strings.NewReader("try later")),
					Header:     http.Header{},
					Request:    r,
				}, nil
			})}
			c := NewClient(Config{}, nil, WithHTTPClient(hc))

			_, err := c.MutualFundNav(context.Background(), "118834")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultEndpointsComeFromTags(t *testing.T) {
	d := DefaultEndpoints()
	assert.Equal(t, "https://api.mfapi.in", d.MFAPI)
	assert.Equal(t, "https://www.nseindia.com", d.NSE)
	assert.Equal(t, "https://yh-finance.p.rapidapi.com", d.Yahoo)

	v := reflect.ValueOf(d)
	for i := 0; i < v.NumField(); i++ {
		assert.NotEmpty(t, v.Field(i).String(), v.Type().Field(i).Name)
	}

	custom := withDefaults(Endpoints{NSE: "http://localhost:9000"})
	assert.Equal(t, "http://localhost:9000", custom.NSE)
	assert.Equal(t, d.GoldAPI, custom.GoldAPI)
}

func TestGrowwMfMetaFieldFallbacks(t *testing.T) {
	c := newTestClient(t, nil, map[string]*recorded{
		"/mf/v1/meta/scheme/120465": {body: `{"scheme_name": "Axis Bluechip", "assetClass": "Equity", "sub_category": "Large Cap", "riskLevel": "Very High"}`},
		"/mf/v1/meta/scheme/999":    {body: `{"schemeName": "", "category": "Debt"}`},
	})

	meta, err := c.GrowwMfMeta(context.Background(), "120465")
	require.NoError(t, err)
	assert.Equal(t, &MfMeta{
		SchemeCode:  "120465",
		Name:        "Axis Bluechip",
		Category:    "Equity",
		SubCategory: "Large Cap",
		Risk:        "Very High",
	}, meta)

	_, err = c.GrowwMfMeta(context.Background(), "999")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestYahooFinanceQuote(t *testing.T) {
	rec := &recorded{body: `{"quoteResponse": {"result": [{
		"symbol": "RELIANCE.NS",
		"longName": "Reliance Industries Limited",
		"currency": "inr",
		"regularMarketPrice": {"raw": 2950.5, "fmt": "2,950.50"},
		"regularMarketChange": -12.25,
		"marketCap": 19962000000000
	}]}}`}
	c := newTestClient(t, StaticCredentials{EnvRapidAPI: "rapid"}, map[string]*recorded{"/market/v2/get-quotes": rec})

	q, err := c.YahooFinanceQuote(context.Background(), "RELIANCE.NS")
	require.NoError(t, err)
	assert.Equal(t, "RELIANCE.NS", q.Symbol)
	assert.Equal(t, "Reliance Industries Limited", q.LongName)
	assert.Equal(t, "INR", q.Currency)
	assert.Equal(t, 2950.5, q.Price)
	assert.Equal(t, -12.25, q.Change)
	assert.Zero(t, q.ChangePercent)
	require.NotNil(t, q.MarketCap)
	assert.Equal(t, 19962000000000.0, *q.MarketCap)

	req := rec.last.Load()
	assert.Equal(t, "rapid", req.Header.Get("X-RapidAPI-Key"))
	assert.Equal(t, yahooRapidAPIHost, req.Header.Get("X-RapidAPI-Host"))
	assert.Equal(t, "RELIANCE.NS", req.URL.Query().Get("symbols"))
}

func TestYahooFinanceQuoteMissing(t *testing.T) {
	c := newTestClient(t, StaticCredentials{EnvRapidAPI: "rapid"}, map[string]*recorded{
		"/market/v2/get-quotes": {body: `{"quoteResponse": {"result": []}}`},
	})

	_, err := c.YahooFinanceQuote(context.Background(), "NOPE")
	assert.ErrorIs(t, err, errx.ErrNotFound)
}

func TestCancelledContextAbortsRequest(t *testing.T) {
	c := newTestClient(t, nil, map[string]*recorded{"/mf/1": {body: `{}`}})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.MutualFundNav(ctx, "1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGoldPriceJSONRoundTrip(t *testing.T) {
	in := GoldPrice{Metal: "XAU", Currency: "INR", PricePerOunce: 233276.2512345678, PricePerGram: 7500.123456789}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"pricePerOunce"`)

	var out GoldPrice
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestYahooQuoteJSONOmitsAbsentOptionals(t *testing.T) {
	b, err := json.Marshal(YahooQuote{Symbol: "AAPL", Price: 1})
	require.NoError(t, err)
	assert.NotContains(t, string(b), "marketCap")
	assert.NotContains(t, string(b), "longName")
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "https://x.test/q?apikey=%2A%2A%2A", redactURL("https://x.test/q?apikey=secret"))
	assert.Equal(t, "https://x.test/q?a=1", redactURL("https://x.test/q?a=1"))
}
