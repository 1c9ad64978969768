package mcp

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

// callLogMiddleware logs one debug line per inbound request with the calling
// user and how long it took. Tool calls add the tool name and, when the tool
// failed, the error code the client was given.
func callLogMiddleware(logger *slog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			if logger == nil || strings.HasPrefix(method, "notifications/") || !logger.Enabled(ctx, slog.LevelDebug) {
				return next(ctx, method, req)
			}

			start := time.Now()
			result, err := next(ctx, method, req)

			attrs := []any{"method", method, "user_id", getUserID(ctx), "duration", time.Since(start)}
			if call, ok := req.(*sdkmcp.CallToolRequest); ok && call.Params != nil {
				attrs = append(attrs, "tool", call.Params.Name)
			}
			if err != nil {
				attrs = append(attrs, "error", err)
			} else if code := toolErrorCode(result); code != "" {
				attrs = append(attrs, "code", code)
			}
			logger.Debug("mcp call", attrs...)
			return result, err
		}
	}
}

// toolErrorCode returns the APIError code in a failed tool result.
func toolErrorCode(result sdkmcp.Result) string {
	res, ok := result.(*sdkmcp.CallToolResult)
	if !ok || res == nil || !res.IsError || len(res.Content) == 0 {
		return ""
	}
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	if !ok {
		return ""
	}
	var payload struct {
		Error APIError `json:"error"`
	}
	if err := json.Unmarshal([]byte(text.Text), &payload); err != nil {
		return ""
	}
	return payload.Error.Code
}
