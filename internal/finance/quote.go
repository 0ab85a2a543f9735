package finance

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	errx "github.com/moneymitra/server/internal/core/error"
)

type fmpQuoteRow struct {
	Symbol        string `json:"symbol"`
	Price         Num    `json:"price"`
	Timestamp     Num    `json:"timestamp"`
	LastUpdateUtc string `json:"lastUpdateUtc"`
	LastUpdated   string `json:"lastUpdated"`
}

// GlobalQuote returns a Financial Modeling Prep quote, e.g. for AAPL. Requires FMP_API_KEY.
func (c *Client) GlobalQuote(ctx context.Context, symbol string) (*GlobalQuote, error) {
	apiKey, err := c.credential(EnvFMPKey)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("apikey", apiKey)

	var raw []fmpQuoteRow
	err = c.getJSON(ctx, request{
		provider: "FMP",
		url:      fmt.Sprintf("%s/api/v3/quote/%s?%s", c.endpoints.FMP, url.PathEscape(symbol), q.Encode()),
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapGlobalQuote(symbol, raw)
}

func mapGlobalQuote(symbol string, raw []fmpQuoteRow) (*GlobalQuote, error) {
	if len(raw) == 0 {
		return nil, errx.NotFound("No FMP quote found for symbol=%s", symbol)
	}

	q := raw[0]
	price, ok := q.Price.Float()
	if !ok {
		return nil, errx.InvalidValue("Invalid FMP price value for symbol=%s: %s", symbol, q.Price)
	}

	return &GlobalQuote{
		Symbol:    strings.ToUpper(FirstNonEmpty(q.Symbol, symbol)),
		Price:     price,
		Timestamp: FirstNonEmpty(q.Timestamp.Text(), q.LastUpdateUtc, q.LastUpdated),
	}, nil
}

const yahooRapidAPIHost = "yh-finance.p.rapidapi.com"

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []yahooQuoteRow `json:"result"`
	} `json:"quoteResponse"`
}

type yahooQuoteRow struct {
	Symbol                     string `json:"symbol"`
	LongName                   string `json:"longName"`
	ShortName                  string `json:"shortName"`
	Currency                   string `json:"currency"`
	RegularMarketPrice         Num    `json:"regularMarketPrice"`
	RegularMarketChange        Num    `json:"regularMarketChange"`
	RegularMarketChangePercent Num    `json:"regularMarketChangePercent"`
	MarketCap                  Num    `json:"marketCap"`
}

// YahooFinanceQuote returns a Yahoo Finance quote through RapidAPI. Symbols follow
// Yahoo's conventions: "RELIANCE.NS", "^NSEI", "BTC-USD". Requires RAPIDAPI_KEY.
func (c *Client) YahooFinanceQuote(ctx context.Context, symbol string) (*YahooQuote, error) {
	apiKey, err := c.credential(EnvRapidAPI)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("symbols", symbol)

	var raw yahooQuoteResponse
	err = c.getJSON(ctx, request{
		provider: "Yahoo Finance",
		url:      fmt.Sprintf("%s/market/v2/get-quotes?%s", c.endpoints.Yahoo, q.Encode()),
		headers: map[string]string{
			"X-RapidAPI-Key":  apiKey,
			"X-RapidAPI-Host": yahooRapidAPIHost,
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapYahooQuote(symbol, raw)
}

func mapYahooQuote(symbol string, raw yahooQuoteResponse) (*YahooQuote, error) {
	if len(raw.QuoteResponse.Result) == 0 {
		return nil, errx.NotFound("Yahoo Finance: No quote found for %s", symbol)
	}

	q := raw.QuoteResponse.Result[0]
	price, ok := q.RegularMarketPrice.Float()
	if !ok {
		return nil, errx.InvalidValue("Invalid Yahoo Finance price for %s: %s", symbol, q.RegularMarketPrice)
	}

	out := &YahooQuote{
		Symbol:        FirstNonEmpty(q.Symbol, symbol),
		LongName:      strings.TrimSpace(q.LongName),
		ShortName:     strings.TrimSpace(q.ShortName),
		Currency:      strings.ToUpper(strings.TrimSpace(q.Currency)),
		Price:         price,
		Change:        FiniteOrZero(q.RegularMarketChange),
		ChangePercent: FiniteOrZero(q.RegularMarketChangePercent),
	}
	if mc, ok := q.MarketCap.Float(); ok {
		out.MarketCap = &mc
	}
	return out, nil
}
