package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// Fake is a deterministic Client for tests. Responses are returned in the
// order queued; when the queue is empty, Err (or ErrInvalidJSON) is returned.
type Fake struct {
	mu        sync.Mutex
	responses []json.RawMessage
	Err       error

	// Prompts records every prompt received, for assertions.
	Prompts []string
	// Images records whether each call carried an image.
	Images []bool
}

// NewFake creates a Fake that will return the given responses in order.
func NewFake(responses ...string) *Fake {
	f := &Fake{}
	for _, r := range responses {
		f.responses = append(f.responses, json.RawMessage(r))
	}
	return f
}

// Enqueue appends a response to the queue.
func (f *Fake) Enqueue(response string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses = append(f.responses, json.RawMessage(response))
}

func (f *Fake) GenerateJSON(ctx context.Context, prompt string, imagePNG []byte) (json.RawMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Prompts = append(f.Prompts, prompt)
	f.Images = append(f.Images, len(imagePNG) > 0)

	if f.Err != nil {
		return nil, f.Err
	}
	if len(f.responses) == 0 {
		return nil, ErrInvalidJSON
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func (f *Fake) Name() string { return "fake" }

func (f *Fake) Close() error { return nil }
