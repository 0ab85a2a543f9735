package prompts

import (
	"context"
	_ "embed"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"

	"github.com/moneymitra/server/internal/agent/model"
	"github.com/moneymitra/server/internal/agent/tools"
)

//go:embed template/response_prompt.txt
var coreSystemPrompt string

// IST is the zone the assistant's date line is rendered in.
var IST = time.FixedZone("IST", 5*60*60+30*60)

// RenderResponseSystem renders the system prompt and triggers prompt callbacks.
func RenderResponseSystem(ctx context.Context, config model.ResponsePromptConfig, now time.Time) (string, error) {
	// Render via Eino prompt component (Go template) to both format and emit callbacks
	tpl := prompt.FromMessages(
		schema.GoTemplate,
		schema.SystemMessage(coreSystemPrompt),
	)
	vars := map[string]any{
		"AIName":          config.AIName,
		"OwnerName":       config.OwnerName,
		"Date":            now.In(IST).Format("Monday, 2 January 2006"),
		"NavTool":         tools.ToolMutualFundNav,
		"MetaTool":        tools.ToolMutualFundMeta,
		"IndexTool":       tools.ToolNseIndexQuote,
		"GoldTool":        tools.ToolGoldPriceInInr,
		"FxTool":          tools.ToolFxRateInrTo,
		"CryptoTool":      tools.ToolCryptoPriceInInr,
		"GlobalQuoteTool": tools.ToolGlobalStockQuote,
		"YahooTool":       tools.ToolYahooFinanceQuote,
		"SipTool":         tools.ToolSipFutureValue,
		"GoalTool":        tools.ToolSipRequiredForGoal,
		"DepositTool":     tools.ToolFixedDepositMaturity,
	}
	msgs, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("response prompt render: %w", err)
	}
	if len(msgs) == 0 || msgs[0] == nil {
		return "", fmt.Errorf("response prompt render: empty result")
	}
	return msgs[0].Content, nil
}
