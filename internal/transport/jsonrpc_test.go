package transport

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/rpggio/timeclock/internal/domain/entry"
	"github.com/rpggio/timeclock/internal/mcp"
	"github.com/stretchr/testify/require"
)

func TestDecodeRPC(t *testing.T) {
	req, rpcErr := decodeRPC(bytes.NewBufferString(`{"jsonrpc":"2.0","method":"weekly_report","params":{"week_start":"2026-10-19"},"id":"a1"}`))
	require.Nil(t, rpcErr)
	require.Equal(t, "weekly_report", req.Method)
	require.JSONEq(t, `{"week_start":"2026-10-19"}`, string(req.Params))
	require.Equal(t, `"a1"`, string(req.ID))
}

func TestDecodeRPC_Rejects(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"empty", ``, CodeParseError},
		{"truncated", `{"jsonrpc":"2.0",`, CodeParseError},
		{"no version", `{"method":"get_today","id":1}`, CodeInvalidRequest},
		{"old version", `{"jsonrpc":"1.0","method":"get_today","id":1}`, CodeInvalidRequest},
		{"no method", `{"jsonrpc":"2.0","id":1}`, CodeInvalidRequest},
		{"method not a string", `{"jsonrpc":"2.0","method":5,"id":1}`, CodeInvalidRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, rpcErr := decodeRPC(bytes.NewBufferString(tt.body))
			require.NotNil(t, rpcErr)
			require.Equal(t, tt.want, rpcErr.Code)
		})
	}
}

func TestRPCErrorFor(t *testing.T) {
	rpcErr := rpcErrorFor(entry.ErrLunchAlreadyTaken)
	require.Equal(t, CodeOperationFailed, rpcErr.Code)
	require.Equal(t, "LUNCH_ALREADY_TAKEN", rpcErr.Data.Code)

	rpcErr = rpcErrorFor(mcp.ErrUnknownMethod)
	require.Equal(t, CodeMethodNotFound, rpcErr.Code)
	require.Nil(t, rpcErr.Data)
}

func TestWriteRPC(t *testing.T) {
	rec := httptest.NewRecorder()
	writeRPC(rec, []byte(`3`), map[string]int{"n": 1}, nil)

	require.Equal(t, 200, rec.Code)
	require.JSONEq(t, `{"jsonrpc":"2.0","result":{"n":1},"id":3}`, rec.Body.String())

	rec = httptest.NewRecorder()
	writeRPC(rec, nil, nil, &rpcError{Code: CodeParseError, Message: "parse error"})
	require.JSONEq(t, `{"jsonrpc":"2.0","error":{"code":-32700,"message":"parse error"},"id":null}`, rec.Body.String())
}
