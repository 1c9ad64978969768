package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

// UserHeader selects the user for endpoints whose path names none.
const UserHeader = "X-Timeclock-User"

type userKey struct{}

// UserFromContext returns the user ID from context, if present.
func UserFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userKey{}).(string)
	return userID, ok && userID != ""
}

// UserMiddleware resolves the calling user from the {userID} path parameter,
// then the X-Timeclock-User header, then defaultUser.
func UserMiddleware(defaultUser string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := strings.TrimSpace(chi.URLParam(r, "userID"))
			if userID == "" {
				userID = strings.TrimSpace(r.Header.Get(UserHeader))
			}
			if userID == "" {
				userID = defaultUser
			}
			ctx := context.WithValue(r.Context(), userKey{}, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// pinUser rewrites a user_id argument to userID, so a body cannot redirect a
// /users/{userID} route to another user.
func pinUser(params json.RawMessage, userID string) (json.RawMessage, error) {
	if len(params) == 0 || string(params) == "null" {
		return params, nil
	}
	var args map[string]json.RawMessage
	if err := json.Unmarshal(params, &args); err != nil {
		return nil, errors.New("request body must be a JSON object")
	}
	if _, ok := args["user_id"]; !ok {
		return params, nil
	}
	id, err := json.Marshal(userID)
	if err != nil {
		return nil, err
	}
	args["user_id"] = id
	return json.Marshal(args)
}
