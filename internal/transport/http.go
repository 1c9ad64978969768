package transport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rpggio/timeclock/internal/mcp"
)

// Dispatcher runs a named operation for a user.
type Dispatcher interface {
	Handle(ctx context.Context, userID, method string, params json.RawMessage) (any, error)
}

// Options configures the router.
type Options struct {
	DefaultUser string
	// MCP, when set, is mounted at /mcp.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler Dispatcher
	logger  *slog.Logger
}

// NewServer creates the REST router. Every route translates to one
// Dispatcher operation, so REST, JSON-RPC and MCP share error semantics.
func NewServer(handler Dispatcher, opts Options) *chi.Mux {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	srv := &Server{handler: handler, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(opts.Logger))

	r.Get("/health", srv.handleHealth)

	r.Route("/users/{userID}", func(r chi.Router) {
		r.Use(UserMiddleware(opts.DefaultUser))

		r.Post("/clock-in", srv.op("clock_in", nil))
		r.Post("/clock-out", srv.op("clock_out", nil))
		r.Post("/lunch/start", srv.op("start_lunch_break", nil))
		r.Post("/lunch/end", srv.op("end_lunch_break", nil))
		r.Post("/breaks/start", srv.op("start_short_break", nil))
		r.Post("/breaks/end", srv.op("end_short_break", nil))
		r.Get("/today", srv.op("get_today", nil))
		r.Get("/reports/weekly", srv.op("weekly_report", queryParams(map[string]string{"start": "week_start"})))
		r.Get("/reports/monthly", srv.op("monthly_report", queryParams(map[string]string{"month": "month"})))
		r.Get("/preferences", srv.op("get_preferences", nil))
		r.Put("/preferences", srv.op("update_preferences", bodyParams))
		r.Get("/activity", srv.op("get_recent_activity", activityParams))
		r.Post("/reminders/snooze", srv.op("snooze_reminders", bodyParams))
	})

	r.With(UserMiddleware(opts.DefaultUser)).Post("/rpc", srv.handleRPC)
	r.Post("/maintenance/sweep", srv.op("close_stale_entries", queryParams(map[string]string{"as_of": "as_of"})))

	if opts.MCP != nil {
		r.Handle("/mcp", opts.MCP)
		r.Handle("/mcp/*", opts.MCP)
	}

	return r
}

// paramsFunc builds the operation's JSON arguments from the request.
type paramsFunc func(r *http.Request) (json.RawMessage, error)

func (s *Server) op(method string, params paramsFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var raw json.RawMessage
		if params != nil {
			var err error
			raw, err = params(r)
			if err != nil {
				writeAPIError(w, &mcp.APIError{Code: "INVALID_INPUT", Message: err.Error()})
				return
			}
		}
		userID, _ := UserFromContext(r.Context())
		if chi.URLParam(r, "userID") != "" {
			var err error
			if raw, err = pinUser(raw, userID); err != nil {
				writeAPIError(w, &mcp.APIError{Code: "INVALID_INPUT", Message: err.Error()})
				return
			}
		}
		result, err := s.handler.Handle(r.Context(), userID, method, raw)
		if err != nil {
			s.logger.Debug("request failed", "method", method, "user_id", userID, "error", err)
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, rpcErr := decodeRPC(r.Body)
	if rpcErr != nil {
		writeRPC(w, req.ID, nil, rpcErr)
		return
	}

	userID, _ := UserFromContext(r.Context())
	result, err := s.handler.Handle(r.Context(), userID, req.Method, req.Params)
	if err != nil {
		s.logger.Debug("rpc failed", "method", req.Method, "user_id", userID, "error", err)
		writeRPC(w, req.ID, nil, rpcErrorFor(err))
		return
	}
	writeRPC(w, req.ID, result, nil)
}

func bodyParams(r *http.Request) (json.RawMessage, error) {
	data, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		return nil, err
	}
	if len(data) > 0 && !json.Valid(data) {
		return nil, errors.New("request body is not valid JSON")
	}
	return data, nil
}

// queryParams maps query parameters onto argument names.
func queryParams(names map[string]string) paramsFunc {
	return func(r *http.Request) (json.RawMessage, error) {
		args := map[string]string{}
		q := r.URL.Query()
		for query, arg := range names {
			if v := q.Get(query); v != "" {
				args[arg] = v
			}
		}
		return json.Marshal(args)
	}
}

func activityParams(r *http.Request) (json.RawMessage, error) {
	q := r.URL.Query()
	args := map[string]any{}
	for _, name := range []string{"entry_id", "type", "since"} {
		if v := q.Get(name); v != "" {
			args[name] = v
		}
	}
	for _, name := range []string{"limit", "offset"} {
		if v := q.Get(name); v != "" {
			n, err := parseInt(name, v)
			if err != nil {
				return nil, err
			}
			args[name] = n
		}
	}
	return json.Marshal(args)
}

// StatusFor maps an error to the HTTP status REST clients see.
func StatusFor(err error) int {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		return http.StatusInternalServerError
	}
	return statusForCode(apiErr.Code)
}

func statusForCode(code string) int {
	switch code {
	case "CONFLICT", "INVALID_TRANSITION", "ALREADY_ON_BREAK", "LUNCH_ALREADY_TAKEN":
		return http.StatusConflict
	case "NO_ACTIVE_SESSION", "UNKNOWN_METHOD":
		return http.StatusNotFound
	case "STORE_UNAVAILABLE", "REPORT_UNAVAILABLE":
		return http.StatusServiceUnavailable
	case "INVALID_INPUT":
		return http.StatusBadRequest
	case "REMINDERS_DISABLED":
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		apiErr = &mcp.APIError{Code: "INTERNAL", Message: err.Error()}
	}
	writeAPIError(w, apiErr)
}

func writeAPIError(w http.ResponseWriter, apiErr *mcp.APIError) {
	writeJSON(w, statusForCode(apiErr.Code), map[string]any{"error": apiErr})
}

func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()))
		})
	}
}

func parseInt(name, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, v)
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
