package tools

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errx "github.com/moneymitra/server/internal/core/error"
	"github.com/moneymitra/server/internal/finance"
)

type fakeMarket struct {
	calls []string
	err   error
}

func (f *fakeMarket) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeMarket) MutualFundNav(_ context.Context, code string) (*finance.MutualFundNav, error) {
	if err := f.record("nav:" + code); err != nil {
		return nil, err
	}
	return &finance.MutualFundNav{Name: "Axis Bluechip", LatestNav: 58.12, Date: "14-03-2024", SchemeCode: code}, nil
}

func (f *fakeMarket) NseIndexQuote(_ context.Context, name string) (*finance.IndexQuote, error) {
	if err := f.record("index:" + name); err != nil {
		return nil, err
	}
	return &finance.IndexQuote{Index: "NIFTY 50", Last: 22123.45, Change: 101.2, PChange: 0.46}, nil
}

func (f *fakeMarket) GoldPriceInInr(context.Context) (*finance.GoldPrice, error) {
	if err := f.record("gold"); err != nil {
		return nil, err
	}
	return &finance.GoldPrice{Metal: "XAU", Currency: "INR", PricePerOunce: 233276.25, PricePerGram: 7500}, nil
}

func (f *fakeMarket) FxRateInrTo(_ context.Context, target string) (*finance.FxRate, error) {
	if err := f.record("fx:" + target); err != nil {
		return nil, err
	}
	return &finance.FxRate{Base: "INR", Target: "USD", Rate: 0.012}, nil
}

func (f *fakeMarket) CryptoPriceInInr(_ context.Context, id string) (*finance.CryptoPrice, error) {
	if err := f.record("crypto:" + id); err != nil {
		return nil, err
	}
	return &finance.CryptoPrice{ID: id, Symbol: "BITCOIN", PriceInInr: 5412345.67}, nil
}

func (f *fakeMarket) GlobalQuote(_ context.Context, symbol string) (*finance.GlobalQuote, error) {
	if err := f.record("fmp:" + symbol); err != nil {
		return nil, err
	}
	return &finance.GlobalQuote{Symbol: symbol, Price: 189.84}, nil
}

func (f *fakeMarket) GrowwMfMeta(_ context.Context, code string) (*finance.MfMeta, error) {
	if err := f.record("meta:" + code); err != nil {
		return nil, err
	}
	return &finance.MfMeta{SchemeCode: code, Name: "Axis Bluechip", Category: "Equity"}, nil
}

func (f *fakeMarket) YahooFinanceQuote(_ context.Context, symbol string) (*finance.YahooQuote, error) {
	if err := f.record("yahoo:" + symbol); err != nil {
		return nil, err
	}
	return &finance.YahooQuote{Symbol: symbol, Price: 2950.5}, nil
}

func newTestRegistry(t *testing.T, md *fakeMarket) *Registry {
	t.Helper()
	r, err := NewRegistry(md)
	require.NoError(t, err)
	return r
}

func TestRegistryDeclaresEveryTool(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})

	assert.Equal(t, []string{
		ToolMutualFundNav, ToolNseIndexQuote, ToolGoldPriceInInr, ToolFxRateInrTo,
		ToolCryptoPriceInInr, ToolGlobalStockQuote, ToolMutualFundMeta, ToolYahooFinanceQuote,
		ToolSipFutureValue, ToolSipRequiredForGoal, ToolFixedDepositMaturity,
	}, r.Names())
	assert.Len(t, r.Tools(), 11)

	for _, info := range r.Infos() {
		assert.NotEmpty(t, info.Desc, info.Name)
		got, err := r.tools[info.Name].Info(context.Background())
		require.NoError(t, err)
		assert.Equal(t, info.Name, got.Name)
	}

	fx, ok := r.Info(ToolFxRateInrTo)
	require.True(t, ok)
	assert.NotNil(t, fx.ParamsOneOf)
	_, ok = r.Info("nseStockQuote")
	assert.False(t, ok)
}

func TestInvokeReturnsResultVerbatim(t *testing.T) {
	md := &fakeMarket{}
	r := newTestRegistry(t, md)

	out, err := r.Invoke(context.Background(), ToolMutualFundNav, `{"schemeCode": " 120465 "}`)
	require.NoError(t, err)

	var nav finance.MutualFundNav
	require.NoError(t, json.Unmarshal([]byte(out), &nav))
	assert.Equal(t, finance.MutualFundNav{Name: "Axis Bluechip", LatestNav: 58.12, Date: "14-03-2024", SchemeCode: "120465"}, nav)
	assert.Equal(t, []string{"nav:120465"}, md.calls)
}

func TestInvokeCoercesNumericIdentifiers(t *testing.T) {
	md := &fakeMarket{}
	r := newTestRegistry(t, md)

	_, err := r.Invoke(context.Background(), ToolMutualFundNav, `{"schemeCode": 118834}`)
	require.NoError(t, err)
	assert.Equal(t, []string{"nav:118834"}, md.calls)
}

func TestInvokeGoldWithoutArguments(t *testing.T) {
	md := &fakeMarket{}
	r := newTestRegistry(t, md)

	for _, args := range []string{"", "{}", `{"unexpected": true}`} {
		_, err := r.Invoke(context.Background(), ToolGoldPriceInInr, args)
		require.NoError(t, err, args)
	}
	assert.Len(t, md.calls, 3)
}

func TestInvokePropagatesUpstreamErrors(t *testing.T) {
	md := &fakeMarket{err: errx.MissingCredential(finance.EnvFMPKey)}
	r := newTestRegistry(t, md)

	_, err := r.Invoke(context.Background(), ToolGlobalStockQuote, `{"symbol": "AAPL"}`)
	require.Error(t, err)
	assert.ErrorIs(t, err, errx.ErrMissingCredential)
	assert.Contains(t, err.Error(), "FMP_API_KEY not set")
}

func TestInvokeValidatesBeforeDispatch(t *testing.T) {
	tests := []struct {
		tool string
		args string
		msg  string
	}{
		{ToolFxRateInrTo, `{"target": "US"}`, "at least 3"},
		{ToolMutualFundNav, `{"schemeCode": "   "}`, "schemeCode is required"},
		{ToolNseIndexQuote, `{}`, "indexName is required"},
		{ToolCryptoPriceInInr, `{"coinId": null}`, "coinId is required"},
		{ToolYahooFinanceQuote, `{"symbol": ""}`, "symbol is required"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			md := &fakeMarket{}
			r := newTestRegistry(t, md)

			_, err := r.Invoke(context.Background(), tt.tool, tt.args)
			require.Error(t, err)
			assert.ErrorIs(t, err, errx.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.msg)
			assert.Empty(t, md.calls)
		})
	}
}

func TestInvokeCalculators(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})

	out, err := r.Invoke(context.Background(), ToolSipFutureValue, `{"monthlyInvestment": "10,000", "years": 10, "annualReturnPercent": "12"}`)
	require.NoError(t, err)
	var sip finance.SipProjection
	require.NoError(t, json.Unmarshal([]byte(out), &sip))
	assert.Equal(t, 2323390.76, sip.FutureValue)

	out, err = r.Invoke(context.Background(), ToolFixedDepositMaturity, `{"principal": 100000, "years": 5, "annualInterestPercent": 7, "compoundingPerYear": 4}`)
	require.NoError(t, err)
	var fd finance.DepositMaturity
	require.NoError(t, json.Unmarshal([]byte(out), &fd))
	assert.Equal(t, 141477.82, fd.MaturityAmount)

	_, err = r.Invoke(context.Background(), ToolSipRequiredForGoal, `{"targetAmount": -5, "years": 5, "annualReturnPercent": 12}`)
	assert.ErrorIs(t, err, errx.ErrInvalidArgument)
}

func TestInvokeUnknownTool(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})

	_, err := r.Invoke(context.Background(), "nseStockQuote", `{}`)
	assert.ErrorIs(t, err, errx.ErrNotFound)
	assert.Contains(t, err.Error(), "nseStockQuote")
}

func TestSanitizeArguments(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})

	tests := []struct {
		name string
		tool string
		in   string
		want string
	}{
		{"trims strings", ToolFxRateInrTo, `{"target": "  usd "}`, `{"target":"usd"}`},
		{"drops unknown keys", ToolGlobalStockQuote, `{"symbol": "AAPL", "exchange": "NASDAQ"}`, `{"symbol":"AAPL"}`},
		{"parses numeric strings", ToolSipFutureValue, `{"monthlyInvestment": "5000", "years": 3, "annualReturnPercent": "10.5"}`, `{"annualReturnPercent":10.5,"monthlyInvestment":5000,"years":3}`},
		{"whole floats become integers", ToolFixedDepositMaturity, `{"principal": 1, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": 4.0}`, `{"annualInterestPercent":7,"compoundingPerYear":4,"principal":1,"years":1}`},
		{"keeps fractional integers", ToolFixedDepositMaturity, `{"principal": 1, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": 4.9}`, `{"annualInterestPercent":7,"compoundingPerYear":4.9,"principal":1,"years":1}`},
		{"keeps negative fractions", ToolFixedDepositMaturity, `{"principal": 1, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": -0.5}`, `{"annualInterestPercent":7,"compoundingPerYear":-0.5,"principal":1,"years":1}`},
		{"keeps out of range integers", ToolFixedDepositMaturity, `{"principal": 1, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": 1e30}`, `{"annualInterestPercent":7,"compoundingPerYear":1e+30,"principal":1,"years":1}`},
		{"parses whole numeric strings", ToolFixedDepositMaturity, `{"principal": 1, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": "12"}`, `{"annualInterestPercent":7,"compoundingPerYear":12,"principal":1,"years":1}`},
		{"drops unparseable numbers", ToolSipFutureValue, `{"monthlyInvestment": "lots", "years": 3}`, `{"years":3}`},
		{"keeps malformed json", ToolFxRateInrTo, `{"target": `, `{"target": `},
		{"keeps non-object json", ToolFxRateInrTo, `["usd"]`, `["usd"]`},
		{"blank becomes empty object", ToolGoldPriceInInr, "  ", `{}`},
		{"unknown tool untouched", "webSearch", `{"query": " x "}`, `{"query": " x "}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.SanitizeArguments(tt.tool, tt.in))
		})
	}
}

func TestInvokeRejectsNonIntegerCounts(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})

	for _, count := range []string{"4.9", "-0.5", "1e30"} {
		t.Run(count, func(t *testing.T) {
			_, err := r.Invoke(context.Background(), ToolFixedDepositMaturity,
				`{"principal": 1000, "years": 1, "annualInterestPercent": 7, "compoundingPerYear": `+count+`}`)
			require.Error(t, err)
			assert.ErrorIs(t, err, errx.ErrInvalidArgument)
			assert.Contains(t, err.Error(), "compoundingPerYear")
		})
	}
}

func TestParamTypes(t *testing.T) {
	r := newTestRegistry(t, &fakeMarket{})
	for _, p := range r.params[ToolFixedDepositMaturity] {
		if p.name == "compoundingPerYear" {
			assert.Equal(t, schema.Integer, p.typ)
			assert.False(t, p.required)
		}
	}
}

func TestNewRegistryRejectsNilSource(t *testing.T) {
	_, err := NewRegistry(nil)
	assert.Error(t, err)
}
