package tools

import (
	"strings"
	"unicode/utf8"

	errx "github.com/moneymitra/server/internal/core/error"
)

// validator is implemented by tool inputs that check themselves before dispatch.
type validator interface {
	Validate() error
}

type SchemeCodeInput struct {
	SchemeCode string `json:"schemeCode"`
}

func (in *SchemeCodeInput) Validate() error {
	return minLength("schemeCode", in.SchemeCode, 1)
}

type IndexInput struct {
	IndexName string `json:"indexName"`
}

func (in *IndexInput) Validate() error {
	return minLength("indexName", in.IndexName, 1)
}

// NoInput is the argument object of tools that take no parameters.
type NoInput struct{}

type CurrencyInput struct {
	Target string `json:"target"`
}

func (in *CurrencyInput) Validate() error {
	return minLength("target", in.Target, 3)
}

type CoinInput struct {
	CoinID string `json:"coinId"`
}

func (in *CoinInput) Validate() error {
	return minLength("coinId", in.CoinID, 1)
}

type SymbolInput struct {
	Symbol string `json:"symbol"`
}

func (in *SymbolInput) Validate() error {
	return minLength("symbol", in.Symbol, 1)
}

type SipFutureValueInput struct {
	MonthlyInvestment   float64 `json:"monthlyInvestment"`
	Years               float64 `json:"years"`
	AnnualReturnPercent float64 `json:"annualReturnPercent"`
}

type SipGoalInput struct {
	TargetAmount        float64 `json:"targetAmount"`
	Years               float64 `json:"years"`
	AnnualReturnPercent float64 `json:"annualReturnPercent"`
}

type FixedDepositInput struct {
	Principal             float64 `json:"principal"`
	Years                 float64 `json:"years"`
	AnnualInterestPercent float64 `json:"annualInterestPercent"`
	CompoundingPerYear    int     `json:"compoundingPerYear,omitempty"`
}

// minLength counts runes of the trimmed value.
func minLength(field, value string, n int) error {
	if utf8.RuneCountInString(strings.TrimSpace(value)) < n {
		if n == 1 {
			return errx.InvalidArgument("%s is required", field)
		}
		return errx.InvalidArgument("%s must be at least %d characters", field, n)
	}
	return nil
}
