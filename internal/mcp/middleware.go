package mcp

import (
	"context"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

type contextKey int

const userIDKey contextKey = iota

// UserHeader names the HTTP header that selects the user on the streamable
// HTTP transport.
const UserHeader = "X-Timeclock-User"

// getUserID extracts the user ID from context.
func getUserID(ctx context.Context) string {
	v, _ := ctx.Value(userIDKey).(string)
	return v
}

// userMiddleware injects the calling user: the X-Timeclock-User header when
// present (HTTP), the default user otherwise.
func userMiddleware(defaultUser string) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			userID := defaultUser
			if extra := req.GetExtra(); extra != nil && extra.Header != nil {
				if h := strings.TrimSpace(extra.Header.Get(UserHeader)); h != "" {
					userID = h
				}
			}
			ctx = context.WithValue(ctx, userIDKey, userID)
			return next(ctx, method, req)
		}
	}
}
