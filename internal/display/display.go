// Package display turns tool-call records into short labels for chat clients.
// Nothing here returns an error or panics; bad payloads degrade to fallbacks.
package display

import (
	"strings"
)

// Icon is a token naming an icon in the client's icon set.
type Icon string

const (
	IconSearch       Icon = "search"
	IconBook         Icon = "book"
	IconGlobe        Icon = "globe"
	IconPresentation Icon = "presentation"
	IconCoins        Icon = "coins"
	IconCalculator   Icon = "calculator"
	IconDatabase     Icon = "database"
	IconWrench       Icon = "wrench"
)

// ToolPrefix marks the typed form of a part, e.g. "tool-mutualFundNav".
const ToolPrefix = "tool-"

// ArgumentsUnavailable is shown when arguments cannot be summarised.
const ArgumentsUnavailable = "Arguments not available"

type argsFormatter func(toolName string, input any) string

// ToolDisplay is the presentation of one tool.
type ToolDisplay struct {
	CallLabel   string `json:"callLabel"`
	CallIcon    Icon   `json:"callIcon"`
	ResultLabel string `json:"resultLabel"`
	ResultIcon  Icon   `json:"resultIcon"`

	formatArgs argsFormatter
}

// HasFormatter reports whether the tool shows its arguments next to the label.
func (d ToolDisplay) HasFormatter() bool {
	return d.formatArgs != nil
}

// Default is used for every tool without an entry.
var Default = ToolDisplay{
	CallLabel:   "Using tool",
	CallIcon:    IconWrench,
	ResultLabel: "Used tool",
	ResultIcon:  IconWrench,
}

func same(label, done string, icon Icon, f argsFormatter) ToolDisplay {
	return ToolDisplay{CallLabel: label, CallIcon: icon, ResultLabel: done, ResultIcon: icon, formatArgs: f}
}

var displays = map[string]ToolDisplay{
	"webSearch":            same("Searching the web", "Searched the web", IconSearch, formatQuery),
	"vectorDatabaseSearch": same("Searching the knowledge base", "Searched the knowledge base", IconDatabase, formatQuery),
	"mutualFundNav":        same("Fetching mutual fund NAV", "Fetched mutual fund NAV", IconBook, formatField("schemeCode")),
	"nseIndexQuote":        same("Fetching index quote", "Fetched index quote", IconPresentation, formatField("indexName")),
	"goldPriceInInr":       same("Fetching gold price", "Fetched gold price", IconCoins, nil),
	"fxRateInrTo":          same("Fetching FX rate", "Fetched FX rate", IconGlobe, formatFx),
	"cryptoPriceInInr":     same("Fetching crypto price", "Fetched crypto price", IconGlobe, formatField("coinId")),
	"globalStockQuote":     same("Fetching global stock quote", "Fetched global stock quote", IconGlobe, formatField("symbol")),
	"mutualFundMeta":       same("Fetching mutual fund details", "Fetched mutual fund details", IconBook, formatField("schemeCode")),
	"yahooFinanceQuote":    same("Fetching Yahoo Finance quote", "Fetched Yahoo Finance quote", IconGlobe, formatField("symbol")),
	"sipFutureValue":       same("Projecting SIP value", "Projected SIP value", IconCalculator, formatSip),
	"sipRequiredForGoal":   same("Calculating SIP for goal", "Calculated SIP for goal", IconCalculator, formatGoal),
	"fixedDepositMaturity": same("Calculating FD maturity", "Calculated FD maturity", IconCalculator, formatDeposit),
}

// Lookup returns the display for an exact tool name, or Default.
func Lookup(name string) ToolDisplay {
	if d, ok := displays[name]; ok {
		return d
	}
	return Default
}

// known reports whether name has its own display entry.
func known(name string) bool {
	_, ok := displays[name]
	return ok
}

// Part is a tool invocation or result as it travels to the client. Either Type
// carries the name behind ToolPrefix or ToolName carries it bare.
type Part struct {
	Type       string `json:"type,omitempty"`
	ToolName   string `json:"toolName,omitempty"`
	ToolCallID string `json:"toolCallId,omitempty"`
	Input      any    `json:"input,omitempty"`
	Output     any    `json:"output,omitempty"`
}

// ToolName resolves the bare tool name of p. A prefixed Type wins over ToolName.
// It returns "" when neither is set.
func ToolName(p Part) string {
	if strings.HasPrefix(p.Type, ToolPrefix) {
		if name := strings.TrimPrefix(p.Type, ToolPrefix); name != "" {
			return name
		}
	}
	return strings.TrimSpace(p.ToolName)
}

// Rendered is what a client draws for one part.
type Rendered struct {
	ToolName string `json:"toolName"`
	Label    string `json:"label"`
	Icon     Icon   `json:"icon"`
	Args     string `json:"args,omitempty"`
	Summary  string `json:"summary,omitempty"`
}

// RenderCall renders an in-flight invocation.
func RenderCall(p Part) Rendered {
	name := ToolName(p)
	d := Lookup(name)
	out := Rendered{ToolName: name, Label: d.CallLabel, Icon: d.CallIcon}
	if d.HasFormatter() {
		out.Args = FormatArguments(name, p.Input)
	}
	return out
}

// RenderResult renders a finished invocation. Arguments are shown only when the
// result still carries its input.
func RenderResult(p Part) Rendered {
	name := ToolName(p)
	d := Lookup(name)
	out := Rendered{ToolName: name, Label: d.ResultLabel, Icon: d.ResultIcon}
	if d.HasFormatter() && p.Input != nil {
		out.Args = FormatArguments(name, p.Input)
	}
	if p.Output != nil {
		out.Summary = SummarizeResult(name, p.Output)
	}
	return out
}
