package generation

import "errors"

// Error definitions for the generation package.
var (
	// ErrInvalidConfig is returned when a generator is constructed with
	// missing or malformed configuration.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrEmptyPrompt is returned when Generate is called with an empty prompt.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")

	// ErrInvalidResponse is returned when the provider answers but the
	// response carries no usable completion.
	ErrInvalidResponse = errors.New("invalid provider response")

	// ErrContentBlocked is returned when the provider refuses the prompt
	// (e.g., safety filters). Not retried.
	ErrContentBlocked = errors.New("content blocked by provider")

	// ErrTransientFailure is returned when the provider could not be reached
	// after exhausting retries.
	ErrTransientFailure = errors.New("transient provider failure")
)
