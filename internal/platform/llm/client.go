package llm

import (
	"context"
)

// Request is one stateless multimodal exchange: system instructions, a user
// instruction, and a single base64-encoded image attached alongside the text.
type Request struct {
	System      string
	User        string
	ImageBase64 string
}

// Client produces the raw text completion for one request. Implementations
// make exactly one upstream call per invocation; there is no retry policy at
// any layer, so a failure propagates to the caller.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
