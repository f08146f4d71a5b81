//go:build js && wasm

// Command wasm exposes the cryptolab operations to JavaScript.
//
// Every function takes one JSON string, shaped like the body of the matching
// HTTP route, and returns a JSON string with the same envelope the server
// uses. Integers travel as JSON numbers, so callers working with values above
// 2^53 should pass them as decimal strings.
package main

import (
	"fmt"
	"syscall/js"

	"github.com/smallyu/go-cryptolab/internal/api"
	"github.com/smallyu/go-cryptolab/internal/config"
)

func main() {
	c := make(chan struct{}, 0)

	svc, err := api.NewService(config.Default(), nil)
	if err != nil {
		fmt.Println("Go cryptolab WASM failed:", err)
		return
	}

	fmt.Println("Go cryptolab WASM Initialized")

	// Expose Go functions to JS
	js.Global().Set("GoCryptolab", map[string]interface{}{
		"ECCGenerateKeys":  bind(svc.GenerateKeys),
		"ECCEncrypt":       bind(svc.Encrypt),
		"ECCEncryptPoint":  bind(svc.EncryptPoint),
		"ECCDecrypt":       bind(svc.Decrypt),
		"ECCGetCurve":      bind(svc.Curve),
		"ECCAddPoints":     bind(svc.AddPoints),
		"ECCDoublePoint":   bind(svc.DoublePoint),
		"ECCMultiplyPoint": bind(svc.MultiplyPoint),
		"CalculateCurve":   bind(svc.CalculateCurve),
		"PointOperation":   bind(svc.PointOperation),
		"RSAGenerateKeys":  bind(svc.RSAGenerateKeys),
		"RSAEncrypt":       bind(svc.RSAEncrypt),
		"RSADecrypt":       bind(svc.RSADecrypt),
	})

	<-c
}

// bind wraps a service operation as a JS function.
// Arguments:
// 0: JSON string of the request (optional)
// Returns:
// JSON string of the response or error envelope
func bind[Req any, Resp api.Response](op func(*Req) (Resp, error)) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) interface{} {
		var data []byte
		if len(args) > 0 && args[0].Type() == js.TypeString {
			data = []byte(args[0].String())
		}
		return string(api.Call(op, data))
	})
}
