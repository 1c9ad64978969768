package transport

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rpggio/timeclock/internal/mcp"
)

// JSON-RPC 2.0 error codes returned by /rpc.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternal       = -32603
	// CodeOperationFailed carries a domain error. Data holds the same
	// APIError REST and MCP return, so clients branch on data.code.
	CodeOperationFailed = -32000
)

const maxRPCBody = 1 << 20

// rpcRequest is one JSON-RPC call. ID is kept raw so it echoes back unchanged.
type rpcRequest struct {
	Version string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type rpcResponse struct {
	Version string          `json:"jsonrpc"`
	Result  any             `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type rpcError struct {
	Code    int           `json:"code"`
	Message string        `json:"message"`
	Data    *mcp.APIError `json:"data,omitempty"`
}

// decodeRPC reads a single call. Bodies that are not JSON are parse errors;
// well-formed JSON that is not a 2.0 call object is an invalid request.
func decodeRPC(body io.Reader) (rpcRequest, *rpcError) {
	var req rpcRequest
	data, err := io.ReadAll(io.LimitReader(body, maxRPCBody))
	if err != nil {
		return req, &rpcError{Code: CodeParseError, Message: "read request: " + err.Error()}
	}
	if !json.Valid(data) {
		return req, &rpcError{Code: CodeParseError, Message: "parse error: body is not valid JSON"}
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return rpcRequest{}, &rpcError{Code: CodeInvalidRequest, Message: "invalid request: " + err.Error()}
	}
	switch {
	case req.Version != "2.0":
		return req, &rpcError{Code: CodeInvalidRequest, Message: `invalid request: jsonrpc must be "2.0"`}
	case req.Method == "":
		return req, &rpcError{Code: CodeInvalidRequest, Message: "invalid request: method is required"}
	}
	return req, nil
}

// rpcErrorFor maps a dispatcher error onto a JSON-RPC error object.
func rpcErrorFor(err error) *rpcError {
	if errors.Is(err, mcp.ErrUnknownMethod) {
		return &rpcError{Code: CodeMethodNotFound, Message: err.Error()}
	}
	apiErr := mcp.MapError(err)
	if apiErr == nil {
		return &rpcError{Code: CodeInternal, Message: err.Error()}
	}
	code := CodeOperationFailed
	if apiErr.Code == "INVALID_INPUT" {
		code = CodeInvalidParams
	}
	return &rpcError{Code: code, Message: apiErr.Message, Data: apiErr}
}

// writeRPC answers with HTTP 200 whatever the outcome.
func writeRPC(w http.ResponseWriter, id json.RawMessage, result any, rpcErr *rpcError) {
	resp := rpcResponse{Version: "2.0", ID: id}
	if rpcErr != nil {
		resp.Error = rpcErr
	} else {
		resp.Result = result
	}
	writeJSON(w, http.StatusOK, resp)
}
