package finance

import (
	"context"
	"fmt"
	"net/url"

	errx "github.com/moneymitra/server/internal/core/error"
)

type mfapiResponse struct {
	Meta *struct {
		SchemeName string `json:"scheme_name"`
	} `json:"meta"`
	Data []struct {
		Date string `json:"date"`
		Nav  Num    `json:"nav"`
	} `json:"data"`
}

// MutualFundNav returns the latest NAV of a scheme from MFAPI
// (GET {MFAPI}/mf/{schemeCode}). The history is newest first.
func (c *Client) MutualFundNav(ctx context.Context, schemeCode string) (*MutualFundNav, error) {
	var raw mfapiResponse
	err := c.getJSON(ctx, request{
		provider: "MFAPI",
		url:      fmt.Sprintf("%s/mf/%s", c.endpoints.MFAPI, url.PathEscape(schemeCode)),
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapMutualFundNav(schemeCode, raw)
}

func mapMutualFundNav(schemeCode string, raw mfapiResponse) (*MutualFundNav, error) {
	if raw.Meta == nil || len(raw.Data) == 0 {
		return nil, errx.NotFound("No mutual fund data found for schemeCode=%s", schemeCode)
	}

	latest := raw.Data[0]
	nav, ok := latest.Nav.Float()
	if !ok || nav <= 0 {
		return nil, errx.InvalidValue("Invalid NAV value for schemeCode=%s: %s", schemeCode, latest.Nav)
	}

	return &MutualFundNav{
		Name:       raw.Meta.SchemeName,
		LatestNav:  nav,
		Date:       latest.Date,
		SchemeCode: schemeCode,
	}, nil
}

type growwMetaResponse struct {
	SchemeName       string `json:"schemeName"`
	SchemeNameSnake  string `json:"scheme_name"`
	Category         string `json:"category"`
	AssetClass       string `json:"assetClass"`
	SubCategory      string `json:"subCategory"`
	SubCategorySnake string `json:"sub_category"`
	Risk             string `json:"risk"`
	RiskLevel        string `json:"riskLevel"`
}

// GrowwMfMeta returns descriptive metadata for a scheme
// (GET {Groww}/mf/v1/meta/scheme/{schemeCode}).
func (c *Client) GrowwMfMeta(ctx context.Context, schemeCode string) (*MfMeta, error) {
	var raw growwMetaResponse
	err := c.getJSON(ctx, request{
		provider: "Groww",
		url:      fmt.Sprintf("%s/mf/v1/meta/scheme/%s", c.endpoints.Groww, url.PathEscape(schemeCode)),
	}, &raw)
	if err != nil {
		return nil, err
	}
	return mapMfMeta(schemeCode, raw)
}

func mapMfMeta(schemeCode string, raw growwMetaResponse) (*MfMeta, error) {
	name := FirstNonEmpty(raw.SchemeName, raw.SchemeNameSnake)
	if name == "" {
		return nil, errx.NotFound("No mutual fund metadata found for schemeCode=%s", schemeCode)
	}
	return &MfMeta{
		SchemeCode:  schemeCode,
		Name:        name,
		Category:    FirstNonEmpty(raw.Category, raw.AssetClass),
		SubCategory: FirstNonEmpty(raw.SubCategorySnake, raw.SubCategory),
		Risk:        FirstNonEmpty(raw.Risk, raw.RiskLevel),
	}, nil
}
