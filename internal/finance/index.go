package finance

import (
	"context"
	"strings"

	errx "github.com/moneymitra/server/internal/core/error"
)

type nseAllIndicesResponse struct {
	Data []nseIndexRow `json:"data"`
}

// nseIndexRow lists every key NSE has used for change and percent change.
type nseIndexRow struct {
	Index            string `json:"index"`
	Last             Num    `json:"last"`
	Change           Num    `json:"change"`
	Variation        Num    `json:"variation"`
	PointsChange     Num    `json:"pointsChange"`
	PChange          Num    `json:"pChange"`
	PercentChange    Num    `json:"percentChange"`
	PercentageChange Num    `json:"percentageChange"`
}

// NseIndexQuote looks up an index such as "NIFTY 50" in NSE's allIndices feed.
// The name match is exact but case-insensitive; the first match wins.
func (c *Client) NseIndexQuote(ctx context.Context, indexName string) (*IndexQuote, error) {
	var raw nseAllIndicesResponse
	err := c.getJSON(ctx, request{
		provider: "NSE",
		url:      c.endpoints.NSE + "/api/allIndices",
		headers: map[string]string{
			"Referer":         "https://www.nseindia.com/market-data/live-market-indices",
			"Accept-Language": "en-US,en;q=0.9",
		},
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapIndexQuote(indexName, raw)
}

func mapIndexQuote(indexName string, raw nseAllIndicesResponse) (*IndexQuote, error) {
	want := strings.ToUpper(indexName)
	var match *nseIndexRow
	for i := range raw.Data {
		if strings.ToUpper(raw.Data[i].Index) == want {
			match = &raw.Data[i]
			break
		}
	}
	if match == nil {
		return nil, errx.NotFound("Index %q not found on NSE", indexName)
	}

	last, ok := match.Last.Float()
	if !ok {
		return nil, errx.InvalidValue("Invalid index last value for %q: %s", indexName, match.Last)
	}

	return &IndexQuote{
		Index:   match.Index,
		Last:    last,
		Change:  FiniteOrZero(match.Change, match.Variation, match.PointsChange),
		PChange: FiniteOrZero(match.PChange, match.PercentChange, match.PercentageChange),
	}, nil
}
