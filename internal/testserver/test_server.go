// Package testserver runs the HTTP surface over an in-memory store for
// end-to-end tests.
package testserver

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/timeclock/internal/app"
	"github.com/rpggio/timeclock/internal/clock"
	"github.com/rpggio/timeclock/internal/config"
	"github.com/rpggio/timeclock/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server *httptest.Server
	App    *app.App
	Clock  *clock.Manual
	User   string
}

// New starts a server whose clock is frozen at now. Requests without a user
// act as user.
func New(t *testing.T, user string, now time.Time) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.Store.Driver = "sqlite"
	cfg.Store.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.NewReplacer("/", "_", " ", "_").Replace(t.Name()))
	cfg.Store.Watch = false
	cfg.Tracking.Timezone = "UTC"
	cfg.DefaultUser = user

	clk := clock.NewManual(now)
	a, err := app.New(cfg, nil, clk)
	require.NoError(t, err)

	mcpServer := a.MCPServer("test")
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: false},
	)
	server := httptest.NewServer(transport.NewServer(a.Handler(), transport.Options{
		DefaultUser: user,
		MCP:         mcpHandler,
	}))

	t.Cleanup(func() {
		server.Close()
		_ = a.Close()
	})

	return &TestServer{Server: server, App: a, Clock: clk, User: user}
}

// Do sends body as JSON and decodes a JSON response into out when out is not
// nil. It returns the status code.
func (ts *TestServer) Do(t *testing.T, method, path string, body, out any) int {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, ts.Server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}
