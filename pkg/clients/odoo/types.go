package odoo

import "encoding/json"

// rpcRequest is the JSON-RPC 2.0 envelope Odoo expects on its web endpoints.
type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params"`
	ID      int64  `json:"id"`
}

// rpcResponse carries either a result or a protocol-level error.
type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Name    string `json:"name"`
		Message string `json:"message"`
	} `json:"data"`
}

// callKWParams is the params object for /web/dataset/call_kw.
type callKWParams struct {
	Model  string `json:"model"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
	Kwargs any    `json:"kwargs"`
}

// authResult is the payload returned by /web/session/authenticate.
type authResult struct {
	UID       int    `json:"uid"`
	SessionID string `json:"session_id"`
}

// optionalString decodes Odoo char fields, which arrive as JSON false when
// unset rather than null or an empty string.
type optionalString string

func (s *optionalString) UnmarshalJSON(data []byte) error {
	if string(data) == "false" || string(data) == "null" {
		*s = ""
		return nil
	}
	var v string
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*s = optionalString(v)
	return nil
}

// productRecord mirrors the search_read row shape for product.product.
type productRecord struct {
	ID           int            `json:"id"`
	Name         string         `json:"name"`
	Barcode      optionalString `json:"barcode"`
	QtyAvailable float64        `json:"qty_available"`
	DefaultCode  optionalString `json:"default_code"`
}

var productFields = []string{"id", "name", "barcode", "qty_available", "default_code"}
