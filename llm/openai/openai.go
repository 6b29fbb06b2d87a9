// Package openai provides an llm.Completer implementation backed by the
// OpenAI Chat Completions API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"

	"github.com/hupe1980/docmesh/llm"
)

// jsonDirective is appended to the instructions when a request forces JSON
// output, keeping the adapter independent of provider-specific response
// format parameters.
const jsonDirective = "\n\nRespond with a single valid JSON object and nothing else."

// Options configure the OpenAI completer adapter. Fields mirror a subset of
// Chat Completion parameters intentionally kept minimal; extend via
// functional options without breaking callers.
type Options struct {
	Model               string
	Temperature         float64
	MaxCompletionTokens int64
}

// Completer wraps the OpenAI Chat Completions API behind the generic
// llm.Completer interface.
type Completer struct {
	client *openai.Client
	opts   Options
}

var _ llm.Completer = (*Completer)(nil)

// NewCompleter creates a new OpenAI completer using the official client.
func NewCompleter(optFns ...func(o *Options)) *Completer {
	client := openai.NewClient()
	return NewCompleterFromClient(&client, optFns...)
}

// NewCompleterFromClient creates a new OpenAI completer from an existing client.
func NewCompleterFromClient(client *openai.Client, optFns ...func(o *Options)) *Completer {
	opts := Options{
		Model:               openai.ChatModelGPT4oMini,
		Temperature:         0.7,
		MaxCompletionTokens: 4096,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Completer{client: client, opts: opts}
}

// Complete implements llm.Completer.
func (c *Completer) Complete(ctx context.Context, req llm.Request) (llm.Response, error) {
	instructions := req.Instructions
	if req.ForceJSON {
		instructions += jsonDirective
	}

	var messages []openai.ChatCompletionMessageParamUnion
	if instructions != "" {
		messages = append(messages, openai.SystemMessage(instructions))
	}
	messages = append(messages, openai.UserMessage(req.Input))

	params := openai.ChatCompletionNewParams{
		Messages:            messages,
		Model:               c.opts.Model,
		Temperature:         openai.Float(c.opts.Temperature),
		MaxCompletionTokens: openai.Int(c.opts.MaxCompletionTokens),
	}

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return llm.Response{}, fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return llm.Response{}, fmt.Errorf("openai api returned no choices")
	}

	return llm.Response{Text: resp.Choices[0].Message.Content}, nil
}

// Info implements llm.Completer.
func (c *Completer) Info() llm.Info {
	return llm.Info{Name: c.opts.Model, Provider: "openai"}
}
