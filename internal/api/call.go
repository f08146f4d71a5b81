package api

import (
	"encoding/json"
	"errors"
	"io"
)

// Call runs op on a JSON request and returns the JSON response, or the
// error envelope when decoding or the operation fails. It serves callers
// without an HTTP stack, such as the wasm bridge.
func Call[Req any, Resp Response](op func(*Req) (Resp, error), data []byte) []byte {
	req := new(Req)
	if len(data) > 0 {
		if err := json.Unmarshal(data, req); err != nil && !errors.Is(err, io.EOF) {
			return errorJSON(err)
		}
	}
	resp, err := op(req)
	if err != nil {
		return errorJSON(err)
	}
	resp.succeed()
	out, err := json.Marshal(resp)
	if err != nil {
		return errorJSON(err)
	}
	return out
}

func errorJSON(err error) []byte {
	out, _ := json.Marshal(&ErrorResponse{Error: err.Error()})
	return out
}
