// Package llm defines the minimal completion contract DocMesh needs from a
// language model provider. Provider adapters (openai, anthropic) live in
// subpackages and can be swapped without touching calling code; MockCompleter
// supports tests and examples.
package llm

import (
	"context"
	"fmt"
)

// Request is a single normalized completion request.
type Request struct {
	// Instructions is the system prompt framing the task.
	Instructions string `json:"instructions"`
	// Input is the user content.
	Input string `json:"input"`
	// ForceJSON asks the provider for a single JSON object response.
	ForceJSON bool `json:"force_json,omitempty"`
}

// Response is the completed model output.
type Response struct {
	Text string `json:"text"`
}

// Info contains metadata about a completer implementation.
type Info struct {
	Name     string `json:"name"`
	Provider string `json:"provider"` // "openai", "anthropic", "mock", etc.
}

// Completer is the minimal interface required to drive generation. Calls are
// fallible and latent; callers own their fallback policy.
type Completer interface {
	Complete(ctx context.Context, req Request) (Response, error)

	// Info returns information about the completer implementation.
	Info() Info
}

// MockCompleter is a lightweight in-memory Completer useful for tests and
// examples. Responses are keyed by request input; unknown inputs yield a
// deterministic echo unless a default error is configured.
type MockCompleter struct {
	info      Info
	responses map[string]string
	err       error
}

// NewMockCompleter constructs an empty MockCompleter.
func NewMockCompleter(name string) *MockCompleter {
	return &MockCompleter{
		info:      Info{Name: name, Provider: "mock"},
		responses: make(map[string]string),
	}
}

// AddResponse registers a deterministic canned completion for an input.
func (m *MockCompleter) AddResponse(input, response string) { m.responses[input] = response }

// FailWith makes every subsequent Complete call return err.
func (m *MockCompleter) FailWith(err error) { m.err = err }

// Complete implements Completer.
func (m *MockCompleter) Complete(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	if m.err != nil {
		return Response{}, m.err
	}
	if text, ok := m.responses[req.Input]; ok {
		return Response{Text: text}, nil
	}
	return Response{Text: fmt.Sprintf("Mock response to: %s", req.Input)}, nil
}

// Info implements Completer.
func (m *MockCompleter) Info() Info { return m.info }
