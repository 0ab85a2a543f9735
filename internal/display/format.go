package display

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

// FormatArguments summarises a tool's input. Tools with their own formatter use
// it, and a formatter failure yields "". Other tools show a scalar input as text,
// an object's "query" field when present, or ArgumentsUnavailable.
func FormatArguments(toolName string, input any) (out string) {
	defer func() {
		if recover() != nil {
			out = ArgumentsUnavailable
		}
	}()

	if d := Lookup(toolName); d.HasFormatter() {
		return runFormatter(d.formatArgs, toolName, input)
	}

	if input == nil {
		return ""
	}
	obj, ok := asObject(input)
	if !ok {
		return text(input)
	}
	if q := text(obj["query"]); q != "" {
		return q
	}
	return ArgumentsUnavailable
}

func runFormatter(f argsFormatter, toolName string, input any) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()
	return f(toolName, input)
}

func formatQuery(_ string, input any) string {
	obj, ok := asObject(input)
	if !ok {
		return ""
	}
	return text(obj["query"])
}

func formatField(key string) argsFormatter {
	return func(_ string, input any) string {
		obj, ok := asObject(input)
		if !ok {
			return ""
		}
		return text(obj[key])
	}
}

func formatFx(_ string, input any) string {
	obj, ok := asObject(input)
	if !ok {
		return ""
	}
	target := strings.ToUpper(text(obj["target"]))
	if target == "" {
		return ""
	}
	return "INR to " + target
}

func formatSip(_ string, input any) string {
	obj, ok := asObject(input)
	if !ok {
		return ""
	}
	p, ok := number(obj["monthlyInvestment"])
	if !ok {
		return ""
	}
	return rupees(p) + "/month" + horizon(obj, "years", "annualReturnPercent")
}

func formatGoal(_ string, input any) string {
	obj, ok := asObject(input)
	if !ok {
		return ""
	}
	target, ok := number(obj["targetAmount"])
	if !ok {
		return ""
	}
	return rupees(target) + " goal" + horizon(obj, "years", "annualReturnPercent")
}

func formatDeposit(_ string, input any) string {
	obj, ok := asObject(input)
	if !ok {
		return ""
	}
	p, ok := number(obj["principal"])
	if !ok {
		return ""
	}
	return rupees(p) + horizon(obj, "years", "annualInterestPercent")
}

func horizon(obj map[string]any, yearsKey, rateKey string) string {
	var b strings.Builder
	if y, ok := number(obj[yearsKey]); ok {
		fmt.Fprintf(&b, " for %s years", humanize.Ftoa(y))
	}
	if r, ok := number(obj[rateKey]); ok {
		fmt.Fprintf(&b, " at %s%%", humanize.Ftoa(r))
	}
	return b.String()
}

// SummarizeResult renders a one-line summary of a known tool's output. It returns
// "" for unknown tools and for outputs it cannot read.
func SummarizeResult(toolName string, output any) (out string) {
	defer func() {
		if recover() != nil {
			out = ""
		}
	}()

	obj, ok := asObject(output)
	if !ok {
		return ""
	}
	if msg := text(obj["error"]); msg != "" {
		return "Failed: " + msg
	}

	switch toolName {
	case "mutualFundNav":
		nav, ok := number(obj["latestNav"])
		if !ok {
			return ""
		}
		return joinNonEmpty(": ", text(obj["name"]), "NAV "+rupees(nav)+dated(obj["date"]))
	case "nseIndexQuote":
		last, ok := number(obj["last"])
		if !ok {
			return ""
		}
		return fmt.Sprintf("%s at %s%s", text(obj["index"]), amount(last), percent(obj["pChange"]))
	case "goldPriceInInr":
		gram, ok := number(obj["pricePerGram"])
		if !ok {
			return ""
		}
		s := "Gold " + rupees(gram) + "/g"
		if oz, ok := number(obj["pricePerOunce"]); ok {
			s += ", " + rupees(oz) + "/oz"
		}
		return s
	case "fxRateInrTo":
		rate, ok := number(obj["rate"])
		if !ok {
			return ""
		}
		return fmt.Sprintf("1 %s = %s %s", text(obj["base"]), humanize.Ftoa(rate), text(obj["target"]))
	case "cryptoPriceInInr":
		price, ok := number(obj["priceInInr"])
		if !ok {
			return ""
		}
		return text(obj["symbol"]) + " " + rupees(price)
	case "globalStockQuote":
		price, ok := number(obj["price"])
		if !ok {
			return ""
		}
		return text(obj["symbol"]) + " " + amount(price)
	case "mutualFundMeta":
		risk := text(obj["risk"])
		if risk != "" {
			risk += " risk"
		}
		return joinNonEmpty(", ", text(obj["name"]), text(obj["category"]), text(obj["subCategory"]), risk)
	case "yahooFinanceQuote":
		price, ok := number(obj["price"])
		if !ok {
			return ""
		}
		return joinNonEmpty(" ", text(obj["symbol"]), amount(price), text(obj["currency"])) + percent(obj["changePercent"])
	case "sipFutureValue":
		fv, ok := number(obj["futureValue"])
		if !ok {
			return ""
		}
		s := "Future value " + rupees(fv)
		if inv, ok := number(obj["totalInvested"]); ok {
			s += " on " + rupees(inv) + " invested"
		}
		return s
	case "sipRequiredForGoal":
		m, ok := number(obj["monthlyInvestment"])
		if !ok {
			return ""
		}
		return "SIP of " + rupees(m) + "/month"
	case "fixedDepositMaturity":
		a, ok := number(obj["maturityAmount"])
		if !ok {
			return ""
		}
		s := "Matures at " + rupees(a)
		if i, ok := number(obj["interestEarned"]); ok {
			s += " (interest " + rupees(i) + ")"
		}
		return s
	}
	return ""
}

func dated(v any) string {
	if d := text(v); d != "" {
		return " on " + d
	}
	return ""
}

func percent(v any) string {
	p, ok := number(v)
	if !ok {
		return ""
	}
	sign := ""
	if p > 0 {
		sign = "+"
	}
	return fmt.Sprintf(" (%s%s%%)", sign, humanize.FtoaWithDigits(p, 2))
}

func rupees(v float64) string {
	return "₹" + amount(v)
}

// amount groups thousands and keeps at most two decimals.
func amount(v float64) string {
	return humanize.CommafWithDigits(math.Round(v*100)/100, 2)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// asObject views v as a JSON object. Raw JSON bytes are decoded; structs and maps
// go through a JSON round trip. Scalars and strings are not objects.
func asObject(v any) (map[string]any, bool) {
	var raw []byte
	switch t := v.(type) {
	case nil:
		return nil, false
	case map[string]any:
		return t, true
	case json.RawMessage:
		raw = t
	case []byte:
		raw = t
	case string, bool, float64, float32, int, int64, json.Number:
		return nil, false
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return nil, false
		}
		raw = b
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil || m == nil {
		return nil, false
	}
	return m, true
}

func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case json.RawMessage:
		return strings.TrimSpace(string(t))
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func number(v any) (float64, bool) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case int:
		f = float64(t)
	case json.Number:
		p, err := t.Float64()
		if err != nil {
			return 0, false
		}
		f = p
	case string:
		p, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, false
		}
		f = p
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
