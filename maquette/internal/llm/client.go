// CLAUDE:SUMMARY Model client abstraction: GenerateJSON with optional vision input, Gemini impl, test fake.
// Package llm abstracts the generative model behind the analyzer and
// generator. One method covers both uses: a prompt, an optional PNG for
// vision calls, JSON back.
package llm

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrInvalidJSON is returned when the model reply carries no usable JSON.
var ErrInvalidJSON = errors.New("llm: invalid JSON from model")

// Client is implemented by model backends. imagePNG may be nil for
// text-only calls.
type Client interface {
	// GenerateJSON sends prompt (plus the optional inline PNG) and returns
	// the raw JSON payload of the reply.
	GenerateJSON(ctx context.Context, prompt string, imagePNG []byte) (json.RawMessage, error)
	// Name identifies the backend for logging.
	Name() string
	Close() error
}
