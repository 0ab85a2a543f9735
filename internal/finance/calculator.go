package finance

import (
	"math"

	"github.com/shopspring/decimal"

	errx "github.com/moneymitra/server/internal/core/error"
)

const (
	maxYears          = 100
	maxCompounding    = 365
	intermediateScale = 24
)

var (
	hundred = decimal.NewFromInt(100)
	twelve  = decimal.NewFromInt(12)
)

// SipProjection is the projected corpus of a monthly SIP.
type SipProjection struct {
	MonthlyInvestment   float64 `json:"monthlyInvestment"`
	Years               float64 `json:"years"`
	AnnualReturnPercent float64 `json:"annualReturnPercent"`
	TotalInvested       float64 `json:"totalInvested"`
	FutureValue         float64 `json:"futureValue"`
	EstimatedGains      float64 `json:"estimatedGains"`
}

// SipRequirement is the monthly SIP needed to reach a target corpus.
type SipRequirement struct {
	TargetAmount        float64 `json:"targetAmount"`
	Years               float64 `json:"years"`
	AnnualReturnPercent float64 `json:"annualReturnPercent"`
	MonthlyInvestment   float64 `json:"monthlyInvestment"`
	TotalInvested       float64 `json:"totalInvested"`
}

// DepositMaturity is the maturity value of a fixed deposit.
type DepositMaturity struct {
	Principal             float64 `json:"principal"`
	Years                 float64 `json:"years"`
	AnnualInterestPercent float64 `json:"annualInterestPercent"`
	CompoundingPerYear    int     `json:"compoundingPerYear"`
	MaturityAmount        float64 `json:"maturityAmount"`
	InterestEarned        float64 `json:"interestEarned"`
}

// SipFutureValue computes FV = P * (((1+r)^n - 1) / r) * (1+r) with monthly rate r
// and n monthly instalments paid at the start of each month.
func SipFutureValue(monthlyInvestment, years, annualReturnPercent float64) (*SipProjection, error) {
	if err := requirePositive("monthlyInvestment", monthlyInvestment); err != nil {
		return nil, err
	}
	n, err := periods("years", years, 12)
	if err != nil {
		return nil, err
	}
	if err := requireRate("annualReturnPercent", annualReturnPercent); err != nil {
		return nil, err
	}

	p := decimal.NewFromFloat(monthlyInvestment)
	fv := p.Mul(annuityFactor(monthlyRate(annualReturnPercent), n))
	invested := p.Mul(n)

	return &SipProjection{
		MonthlyInvestment:   monthlyInvestment,
		Years:               years,
		AnnualReturnPercent: annualReturnPercent,
		TotalInvested:       money(invested),
		FutureValue:         money(fv),
		EstimatedGains:      money(fv.Sub(invested)),
	}, nil
}

// SipRequiredForGoal is the inverse of SipFutureValue.
func SipRequiredForGoal(targetAmount, years, annualReturnPercent float64) (*SipRequirement, error) {
	if err := requirePositive("targetAmount", targetAmount); err != nil {
		return nil, err
	}
	n, err := periods("years", years, 12)
	if err != nil {
		return nil, err
	}
	if err := requireRate("annualReturnPercent", annualReturnPercent); err != nil {
		return nil, err
	}

	factor := annuityFactor(monthlyRate(annualReturnPercent), n)
	monthly := decimal.NewFromFloat(targetAmount).DivRound(factor, intermediateScale)

	return &SipRequirement{
		TargetAmount:        targetAmount,
		Years:               years,
		AnnualReturnPercent: annualReturnPercent,
		MonthlyInvestment:   money(monthly),
		TotalInvested:       money(monthly.Mul(n)),
	}, nil
}

// FixedDepositMaturity computes A = P * (1 + r/k)^(k*years). compoundingPerYear
// of 0 means annual compounding.
func FixedDepositMaturity(principal, years, annualInterestPercent float64, compoundingPerYear int) (*DepositMaturity, error) {
	if compoundingPerYear == 0 {
		compoundingPerYear = 1
	}
	if err := requirePositive("principal", principal); err != nil {
		return nil, err
	}
	if compoundingPerYear < 0 || compoundingPerYear > maxCompounding {
		return nil, errx.InvalidArgument("compoundingPerYear must be between 1 and %d, got %d", maxCompounding, compoundingPerYear)
	}
	n, err := periods("years", years, compoundingPerYear)
	if err != nil {
		return nil, err
	}
	if err := requireRate("annualInterestPercent", annualInterestPercent); err != nil {
		return nil, err
	}

	k := decimal.NewFromInt(int64(compoundingPerYear))
	rate := decimal.NewFromFloat(annualInterestPercent).Div(hundred).Div(k)
	p := decimal.NewFromFloat(principal)
	amount := p.Mul(compound(decimal.NewFromInt(1).Add(rate), n))

	return &DepositMaturity{
		Principal:             principal,
		Years:                 years,
		AnnualInterestPercent: annualInterestPercent,
		CompoundingPerYear:    compoundingPerYear,
		MaturityAmount:        money(amount),
		InterestEarned:        money(amount.Sub(p)),
	}, nil
}

func monthlyRate(annualPercent float64) decimal.Decimal {
	return decimal.NewFromFloat(annualPercent).Div(hundred).Div(twelve)
}

// annuityFactor is ((1+r)^n - 1) / r * (1+r), or n when r is zero.
func annuityFactor(r decimal.Decimal, n decimal.Decimal) decimal.Decimal {
	if r.IsZero() {
		return n
	}
	onePlusR := decimal.NewFromInt(1).Add(r)
	growth := compound(onePlusR, n)
	return growth.Sub(decimal.NewFromInt(1)).DivRound(r, intermediateScale).Mul(onePlusR)
}

// compound raises base to n periods. Whole periods are multiplied out, rounding
// each step so the digit count stays bounded; a fractional remainder goes
// through math.Pow.
func compound(base decimal.Decimal, n decimal.Decimal) decimal.Decimal {
	whole := n.Floor()
	out := decimal.NewFromInt(1)
	for i := int64(0); i < whole.IntPart(); i++ {
		out = out.Mul(base).Round(intermediateScale)
	}
	if frac := n.Sub(whole); frac.IsPositive() {
		part := math.Pow(base.InexactFloat64(), frac.InexactFloat64())
		out = out.Mul(decimal.NewFromFloat(part)).Round(intermediateScale)
	}
	return out
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}

func requirePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return errx.InvalidArgument("%s must be a positive number, got %v", name, v)
	}
	return nil
}

func requireRate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= -100 || v > 100 {
		return errx.InvalidArgument("%s must be within (-100, 100], got %v", name, v)
	}
	return nil
}

// periods converts years into compounding periods. Partial periods are kept:
// 2.5 years compounded annually is 2.5 periods.
func periods(name string, years float64, perYear int) (decimal.Decimal, error) {
	if math.IsNaN(years) || math.IsInf(years, 0) || years <= 0 || years > maxYears {
		return decimal.Zero, errx.InvalidArgument("%s must be within (0, %d], got %v", name, maxYears, years)
	}
	return decimal.NewFromFloat(years).Mul(decimal.NewFromInt(int64(perYear))), nil
}
