package observers

import (
	"context"

	einocb "github.com/cloudwego/eino/callbacks"
	"github.com/cloudwego/eino/components/tool"
	callbackHelper "github.com/cloudwego/eino/utils/callbacks"

	logx "github.com/moneymitra/server/pkg/logger"
)

type toolArgsKey struct{}

// newToolHandler logs tool lifecycle events and feeds the collector. The
// arguments seen at start travel in ctx to the matching end callback.
func newToolHandler(collector *EventCollector) *callbackHelper.ToolCallbackHandler {
	return &callbackHelper.ToolCallbackHandler{
		OnStart: func(ctx context.Context, info *einocb.RunInfo, input *tool.CallbackInput) context.Context {
			var args string
			if input != nil {
				args = input.ArgumentsInJSON
			}
			logx.Debug().Str("tool_name", info.Name).Str("arguments", args).Msg("tool start")
			collector.recordCall(info.Name, args)
			return context.WithValue(ctx, toolArgsKey{}, args)
		},
		OnEnd: func(ctx context.Context, info *einocb.RunInfo, output *tool.CallbackOutput) context.Context {
			var response string
			if output != nil {
				response = output.Response
			}
			logx.Debug().Str("tool_name", info.Name).Int("response_len", len(response)).Msg("tool end")
			args, _ := ctx.Value(toolArgsKey{}).(string)
			collector.recordResult(info.Name, args, response)
			return ctx
		},
		OnError: func(ctx context.Context, info *einocb.RunInfo, err error) context.Context {
			logx.Warn().Err(err).Str("tool_name", info.Name).Msg("tool execution failed")
			return ctx
		},
	}
}
