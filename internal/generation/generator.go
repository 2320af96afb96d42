// Package generation defines the interface to the language-model provider
// that produces task results from prompts.
package generation

import (
	"context"
	"encoding/json"
)

// Completion is the outcome of one provider call: the provider's name, its
// raw response for auditing, and the extracted completion text.
type Completion struct {
	Provider string
	Raw      json.RawMessage
	Text     string
}

// Generator produces a text completion for a prompt. Implementations are
// synchronous and honor context cancellation.
type Generator interface {
	Generate(ctx context.Context, prompt string) (*Completion, error)
}
