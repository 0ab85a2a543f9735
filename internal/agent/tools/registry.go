package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/components/tool/utils"
	"github.com/cloudwego/eino/schema"

	errx "github.com/moneymitra/server/internal/core/error"
	"github.com/moneymitra/server/internal/finance"
	logx "github.com/moneymitra/server/pkg/logger"
)

// Tool names as seen by the model and by chat clients.
const (
	ToolMutualFundNav        = "mutualFundNav"
	ToolNseIndexQuote        = "nseIndexQuote"
	ToolGoldPriceInInr       = "goldPriceInInr"
	ToolFxRateInrTo          = "fxRateInrTo"
	ToolCryptoPriceInInr     = "cryptoPriceInInr"
	ToolGlobalStockQuote     = "globalStockQuote"
	ToolMutualFundMeta       = "mutualFundMeta"
	ToolYahooFinanceQuote    = "yahooFinanceQuote"
	ToolSipFutureValue       = "sipFutureValue"
	ToolSipRequiredForGoal   = "sipRequiredForGoal"
	ToolFixedDepositMaturity = "fixedDepositMaturity"
)

// MarketData is the upstream surface the registry exposes. *finance.Client implements it.
type MarketData interface {
	MutualFundNav(ctx context.Context, schemeCode string) (*finance.MutualFundNav, error)
	NseIndexQuote(ctx context.Context, indexName string) (*finance.IndexQuote, error)
	GoldPriceInInr(ctx context.Context) (*finance.GoldPrice, error)
	FxRateInrTo(ctx context.Context, target string) (*finance.FxRate, error)
	CryptoPriceInInr(ctx context.Context, coinID string) (*finance.CryptoPrice, error)
	GlobalQuote(ctx context.Context, symbol string) (*finance.GlobalQuote, error)
	GrowwMfMeta(ctx context.Context, schemeCode string) (*finance.MfMeta, error)
	YahooFinanceQuote(ctx context.Context, symbol string) (*finance.YahooQuote, error)
}

var _ MarketData = (*finance.Client)(nil)

// Registry holds the invocable tools in declaration order.
type Registry struct {
	order  []string
	tools  map[string]tool.InvokableTool
	infos  map[string]*schema.ToolInfo
	params map[string][]param
}

// NewRegistry builds every finance tool on top of md.
func NewRegistry(md MarketData) (*Registry, error) {
	if md == nil {
		return nil, fmt.Errorf("market data source is nil")
	}

	r := &Registry{
		tools:  map[string]tool.InvokableTool{},
		infos:  map[string]*schema.ToolInfo{},
		params: map[string][]param{},
	}

	r.add(definition{
		name: ToolMutualFundNav,
		desc: "Get the latest NAV for an Indian mutual fund using its AMFI scheme code.",
		params: []param{
			{name: "schemeCode", typ: schema.String, desc: "AMFI/MFAPI scheme code, e.g. 118834.", required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *SchemeCodeInput) (*finance.MutualFundNav, error) {
		return md.MutualFundNav(ctx, in.SchemeCode)
	}))

	r.add(definition{
		name: ToolNseIndexQuote,
		desc: `Get the latest value and daily change for an Indian index like "NIFTY 50" or "NIFTY BANK".`,
		params: []param{
			{name: "indexName", typ: schema.String, desc: `Index name, e.g. "NIFTY 50", "NIFTY BANK".`, required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *IndexInput) (*finance.IndexQuote, error) {
		return md.NseIndexQuote(ctx, in.IndexName)
	}))

	r.add(definition{
		name: ToolGoldPriceInInr,
		desc: "Get the latest gold price in INR (per gram and per ounce) using GoldAPI.",
	}, newTool(func(ctx context.Context, _ *NoInput) (*finance.GoldPrice, error) {
		return md.GoldPriceInInr(ctx)
	}))

	r.add(definition{
		name: ToolFxRateInrTo,
		desc: "Get the latest FX rate from INR to a target currency like USD, EUR, GBP.",
		params: []param{
			{name: "target", typ: schema.String, desc: `Target currency code, e.g. "USD", "EUR", "GBP".`, required: true, minLen: 3},
		},
	}, newTool(func(ctx context.Context, in *CurrencyInput) (*finance.FxRate, error) {
		return md.FxRateInrTo(ctx, in.Target)
	}))

	r.add(definition{
		name: ToolCryptoPriceInInr,
		desc: `Get the latest INR price for a cryptocurrency using its CoinGecko id, e.g. "bitcoin", "ethereum".`,
		params: []param{
			{name: "coinId", typ: schema.String, desc: `CoinGecko coin id, e.g. "bitcoin", "ethereum".`, required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *CoinInput) (*finance.CryptoPrice, error) {
		return md.CryptoPriceInInr(ctx, in.CoinID)
	}))

	r.add(definition{
		name: ToolGlobalStockQuote,
		desc: "Get the latest global stock quote (e.g., AAPL, MSFT) via Financial Modeling Prep.",
		params: []param{
			{name: "symbol", typ: schema.String, desc: `Global stock symbol, e.g. "AAPL", "MSFT".`, required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *SymbolInput) (*finance.GlobalQuote, error) {
		return md.GlobalQuote(ctx, in.Symbol)
	}))

	r.add(definition{
		name: ToolMutualFundMeta,
		desc: "Get basic metadata for an Indian mutual fund (name, category, risk) by scheme code via Groww.",
		params: []param{
			{name: "schemeCode", typ: schema.String, desc: "Mutual fund scheme code used on Groww/MFAPI.", required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *SchemeCodeInput) (*finance.MfMeta, error) {
		return md.GrowwMfMeta(ctx, in.SchemeCode)
	}))

	r.add(definition{
		name: ToolYahooFinanceQuote,
		desc: "Get market data for any symbol from Yahoo Finance via RapidAPI (works for NSE, BSE, US stocks, indices, ETFs, etc.).",
		params: []param{
			{name: "symbol", typ: schema.String, desc: `Yahoo Finance symbol, e.g. "RELIANCE.NS", "AAPL", "^NSEI", "BTC-USD".`, required: true, minLen: 1},
		},
	}, newTool(func(ctx context.Context, in *SymbolInput) (*finance.YahooQuote, error) {
		return md.YahooFinanceQuote(ctx, in.Symbol)
	}))

	r.addCalculators()

	logx.Debug().Strs("tools", r.order).Msg("tool registry ready")
	return r, nil
}

func (r *Registry) addCalculators() {
	r.add(definition{
		name: ToolSipFutureValue,
		desc: "Project the future value of a monthly SIP. Instalments are invested at the start of each month and returns compound monthly.",
		params: []param{
			{name: "monthlyInvestment", typ: schema.Number, desc: "Monthly SIP amount in INR, e.g. 10000.", required: true},
			{name: "years", typ: schema.Number, desc: "Investment horizon in years; must be a whole number of months, e.g. 10 or 2.5.", required: true},
			{name: "annualReturnPercent", typ: schema.Number, desc: "Assumed annual return in percent, e.g. 12.", required: true},
		},
	}, newTool(func(_ context.Context, in *SipFutureValueInput) (*finance.SipProjection, error) {
		return finance.SipFutureValue(in.MonthlyInvestment, in.Years, in.AnnualReturnPercent)
	}))

	r.add(definition{
		name: ToolSipRequiredForGoal,
		desc: "Compute the monthly SIP needed to reach a target corpus in INR.",
		params: []param{
			{name: "targetAmount", typ: schema.Number, desc: "Goal amount in INR, e.g. 1000000.", required: true},
			{name: "years", typ: schema.Number, desc: "Years until the goal; must be a whole number of months.", required: true},
			{name: "annualReturnPercent", typ: schema.Number, desc: "Assumed annual return in percent, e.g. 12.", required: true},
		},
	}, newTool(func(_ context.Context, in *SipGoalInput) (*finance.SipRequirement, error) {
		return finance.SipRequiredForGoal(in.TargetAmount, in.Years, in.AnnualReturnPercent)
	}))

	r.add(definition{
		name: ToolFixedDepositMaturity,
		desc: "Compute the maturity amount of a fixed deposit with compound interest.",
		params: []param{
			{name: "principal", typ: schema.Number, desc: "Deposit amount in INR.", required: true},
			{name: "years", typ: schema.Number, desc: "Tenure in years.", required: true},
			{name: "annualInterestPercent", typ: schema.Number, desc: "Annual interest rate in percent, e.g. 7.1.", required: true},
			{name: "compoundingPerYear", typ: schema.Integer, desc: "Compounding periods per year: 1 annual (default), 4 quarterly, 12 monthly."},
		},
	}, newTool(func(_ context.Context, in *FixedDepositInput) (*finance.DepositMaturity, error) {
		return finance.FixedDepositMaturity(in.Principal, in.Years, in.AnnualInterestPercent, in.CompoundingPerYear)
	}))
}

func (r *Registry) add(def definition, build func(*schema.ToolInfo) tool.InvokableTool) {
	info := def.toolInfo()
	r.order = append(r.order, def.name)
	r.infos[def.name] = info
	r.params[def.name] = def.params
	r.tools[def.name] = build(info)
}

// newTool adapts a typed handler to an eino tool, validating the decoded input first.
func newTool[I, O any](fn func(context.Context, *I) (*O, error)) func(*schema.ToolInfo) tool.InvokableTool {
	return func(info *schema.ToolInfo) tool.InvokableTool {
		return utils.NewTool(info, func(ctx context.Context, in *I) (*O, error) {
			if in == nil {
				in = new(I)
			}
			if v, ok := any(in).(validator); ok {
				if err := v.Validate(); err != nil {
					return nil, err
				}
			}
			return fn(ctx, in)
		}, utils.WithUnmarshalArguments(decodeArguments[I]))
	}
}

// decodeArguments reports arguments that do not fit the input type, such as a
// fractional count, as invalid arguments.
func decodeArguments[I any](_ context.Context, arguments string) (any, error) {
	in := new(I)
	if err := json.Unmarshal([]byte(arguments), in); err != nil {
		return nil, errx.InvalidArgument("invalid arguments: %v", err)
	}
	return in, nil
}

// Names returns tool names in declaration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Tools returns the tools for an eino ToolsNode.
func (r *Registry) Tools() []tool.BaseTool {
	out := make([]tool.BaseTool, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.tools[name])
	}
	return out
}

// Infos returns the tool schemas to bind to a chat model.
func (r *Registry) Infos() []*schema.ToolInfo {
	out := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.infos[name])
	}
	return out
}

// Info returns the schema of one tool.
func (r *Registry) Info(name string) (*schema.ToolInfo, bool) {
	info, ok := r.infos[name]
	return info, ok
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (tool.InvokableTool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Invoke sanitizes argsJSON and runs one tool by name. Tool failures are returned
// as errors; the JSON result is exactly what the tool produced.
func (r *Registry) Invoke(ctx context.Context, name, argsJSON string) (string, error) {
	t, ok := r.Lookup(name)
	if !ok {
		return "", errx.NotFound("unknown tool %q (available: %v)", name, sortedNames(r.order))
	}
	return t.InvokableRun(ctx, r.SanitizeArguments(name, argsJSON))
}

func sortedNames(names []string) []string {
	out := make([]string, len(names))
	copy(out, names)
	sort.Strings(out)
	return out
}
