package nodes

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/cloudwego/eino/components/tool"

	errx "github.com/moneymitra/server/internal/core/error"
	logx "github.com/moneymitra/server/pkg/logger"
)

// errorResultTool turns a failed tool run into a JSON result the model can
// narrate, so one bad provider does not abort the whole reply.
type errorResultTool struct {
	tool.InvokableTool
	name string
}

// WithErrorResults wraps each tool so failures come back as {"error": "..."}.
// Cancellation of ctx still aborts the run.
func WithErrorResults(ctx context.Context, tools []tool.InvokableTool) ([]tool.BaseTool, error) {
	out := make([]tool.BaseTool, 0, len(tools))
	for _, t := range tools {
		info, err := t.Info(ctx)
		if err != nil {
			return nil, err
		}
		out = append(out, &errorResultTool{InvokableTool: t, name: info.Name})
	}
	return out, nil
}

func (t *errorResultTool) InvokableRun(ctx context.Context, argumentsInJSON string, opts ...tool.Option) (string, error) {
	result, err := t.InvokableTool.InvokableRun(ctx, argumentsInJSON, opts...)
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return "", ctxErr
	}

	logx.Warn().
		Err(err).
		Str("tool_name", t.name).
		Int("status", errx.StatusOf(err)).
		Msg("Tool failed; returning error result")
	return ErrorResult(err), nil
}

// ErrorResult renders err as a tool result. AppError messages are used as-is,
// except upstream status errors which keep the status line and body excerpt.
func ErrorResult(err error) string {
	msg := err.Error()
	var appErr *errx.AppError
	if errors.As(err, &appErr) && appErr.Message != "" {
		msg = appErr.Message
		if errors.Is(appErr, errx.ErrUpstreamStatus) {
			msg = appErr.Error()
		}
	}
	b, mErr := json.Marshal(map[string]string{"error": msg})
	if mErr != nil {
		return `{"error":"tool failed"}`
	}
	return string(b)
}
