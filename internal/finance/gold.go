package finance

import (
	"context"
	"strings"

	errx "github.com/moneymitra/server/internal/core/error"
)

// GramsPerTroyOunce converts per-gram prices to per-ounce prices.
const GramsPerTroyOunce = 31.1035

type goldAPIResponse struct {
	Metal        string `json:"metal"`
	Currency     string `json:"currency"`
	Price        Num    `json:"price"`
	PriceGram24k Num    `json:"price_gram_24k"`
}

// GoldPriceInInr returns the XAU/INR spot price from GoldAPI. Requires GOLDAPI_API_KEY.
func (c *Client) GoldPriceInInr(ctx context.Context) (*GoldPrice, error) {
	apiKey, err := c.credential(EnvGoldAPIKey)
	if err != nil {
		return nil, err
	}

	var raw goldAPIResponse
	err = c.getJSON(ctx, request{
		provider: "GoldAPI",
		url:      c.endpoints.GoldAPI + "/api/XAU/INR",
		headers: map[string]string{
			"x-access-token": apiKey,
			"Content-Type":   "application/json",
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapGoldPrice(raw)
}

func mapGoldPrice(raw goldAPIResponse) (*GoldPrice, error) {
	perGram, ok := raw.PriceGram24k.Float()
	if !ok {
		return nil, errx.InvalidValue("Invalid gold price_gram_24k value from GoldAPI: %s", raw.PriceGram24k)
	}

	perOunce, ok := raw.Price.Float()
	if !ok || perOunce == 0 {
		perOunce = perGram * GramsPerTroyOunce
	}

	metal := strings.ToUpper(FirstNonEmpty(raw.Metal, "XAU"))
	currency := strings.ToUpper(FirstNonEmpty(raw.Currency, "INR"))

	return &GoldPrice{
		Metal:         metal,
		Currency:      currency,
		PricePerOunce: perOunce,
		PricePerGram:  perGram,
	}, nil
}
