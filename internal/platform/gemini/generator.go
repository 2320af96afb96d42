package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/nexusai/dispatch-api/internal/config"
	"github.com/nexusai/dispatch-api/internal/generation"
)

// providerName is carried in task results so the UI can tell real completions
// from mock ones.
const providerName = "gemini"

// Generator implements the generation.Generator interface using Google's
// Gemini API to produce task completions.
type Generator struct {
	logger *slog.Logger
	config config.LLMConfig
	client *genai.Client
	model  string
}

// NewGenerator creates a new Generator with the provided dependencies.
// Returns an error if the logger is nil or the configuration is incomplete.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v",
			generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger,
		config: cfg,
		client: client,
		model:  cfg.Model,
	}, nil
}

var _ generation.Generator = (*Generator)(nil)

// Generate calls the Gemini API with exponential backoff retry logic.
//
// Transient errors (API unreachable, server-side failures) are retried up to
// config.MaxRetries times with jittered exponential backoff. Permanent errors
// (blocked content, empty responses) are returned immediately.
func (g *Generator) Generate(ctx context.Context, prompt string) (*generation.Completion, error) {
	if prompt == "" {
		return nil, generation.ErrEmptyPrompt
	}

	maxRetries := g.config.MaxRetries
	baseDelaySeconds := g.config.RetryDelaySeconds
	if maxRetries < 0 {
		maxRetries = 3
	}
	if baseDelaySeconds < 1 {
		baseDelaySeconds = 2
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for attempt := 0; ; attempt++ {
		g.logger.DebugContext(ctx, "calling Gemini API",
			"attempt", attempt+1,
			"max_attempts", maxRetries+1,
			"model", g.model)

		completion, err := g.generateOnce(ctx, prompt)
		if err == nil {
			return completion, nil
		}

		// Permanent outcomes are not worth retrying.
		if errors.Is(err, generation.ErrContentBlocked) ||
			errors.Is(err, generation.ErrInvalidResponse) {
			return nil, err
		}

		g.logger.WarnContext(ctx, "Gemini API call failed",
			"attempt", attempt+1,
			"error", err)

		if attempt >= maxRetries {
			return nil, fmt.Errorf("%w: exceeded %d attempts: %v",
				generation.ErrTransientFailure, maxRetries+1, err)
		}

		// delay = baseDelay * 2^attempt * (0.5 + rand(0, 0.5))
		backoffSeconds := float64(baseDelaySeconds) * math.Pow(2, float64(attempt))
		jitter := 0.5 + rng.Float64()*0.5
		delay := time.Duration(backoffSeconds * jitter * float64(time.Second))

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", generation.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) generateOnce(ctx context.Context, prompt string) (*generation.Completion, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, err
	}

	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
	}

	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: safety filters", generation.ErrContentBlocked)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("%w: response contains no text", generation.ErrInvalidResponse)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode raw response: %v",
			generation.ErrInvalidResponse, err)
	}

	return &generation.Completion{
		Provider: providerName,
		Raw:      raw,
		Text:     text.String(),
	}, nil
}
