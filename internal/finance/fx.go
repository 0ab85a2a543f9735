package finance

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	errx "github.com/moneymitra/server/internal/core/error"
)

// BaseCurrency is the home currency every FX and crypto lookup is priced against.
const BaseCurrency = "INR"

type fxLatestResponse struct {
	Rates map[string]Num `json:"rates"`
}

// FxRateInrTo returns how many units of target one rupee buys (exchangerate.host).
// The target code is uppercased before lookup.
func (c *Client) FxRateInrTo(ctx context.Context, target string) (*FxRate, error) {
	to := strings.ToUpper(strings.TrimSpace(target))

	q := url.Values{}
	q.Set("base", BaseCurrency)
	q.Set("symbols", to)

	var raw fxLatestResponse
	err := c.getJSON(ctx, request{
		provider: "exchangerate.host",
		url:      fmt.Sprintf("%s/latest?%s", c.endpoints.ExchangeRate, q.Encode()),
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapFxRate(to, raw)
}

func mapFxRate(to string, raw fxLatestResponse) (*FxRate, error) {
	rateRaw, ok := raw.Rates[to]
	if !ok || !rateRaw.Present() {
		return nil, errx.NotFound("No FX rate for %s -> %s", BaseCurrency, to)
	}
	rate, ok := rateRaw.Float()
	if !ok || rate <= 0 {
		return nil, errx.InvalidValue("Invalid FX rate for %s -> %s: %s", BaseCurrency, to, rateRaw)
	}
	return &FxRate{
		Base:   BaseCurrency,
		Target: to,
		Rate:   rate,
	}, nil
}

type coinGeckoSimplePrice map[string]map[string]Num

// CryptoPriceInInr returns the INR price of a CoinGecko coin id such as "bitcoin".
func (c *Client) CryptoPriceInInr(ctx context.Context, coinID string) (*CryptoPrice, error) {
	id := strings.ToLower(strings.TrimSpace(coinID))

	q := url.Values{}
	q.Set("ids", id)
	q.Set("vs_currencies", "inr")

	var raw coinGeckoSimplePrice
	err := c.getJSON(ctx, request{
		provider: "CoinGecko",
		url:      fmt.Sprintf("%s/api/v3/simple/price?%s", c.endpoints.CoinGecko, q.Encode()),
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapCryptoPrice(id, raw)
}

func mapCryptoPrice(id string, raw coinGeckoSimplePrice) (*CryptoPrice, error) {
	entry, ok := raw[id]["inr"]
	if !ok || !entry.Present() {
		return nil, errx.NotFound("No INR price for crypto=%s", id)
	}
	price, ok := entry.Float()
	if !ok {
		return nil, errx.InvalidValue("Invalid INR price for crypto=%s: %s", id, entry)
	}
	return &CryptoPrice{
		ID:         id,
		Symbol:     strings.ToUpper(id),
		PriceInInr: price,
	}, nil
}
