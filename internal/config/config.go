package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Dispatch DispatchConfig `mapstructure:"dispatch" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// RequireIdentity makes the X-User-ID header mandatory on task
	// creation and manual-run triggers. When false (the default), the
	// header is optional but still checked against the task owner when
	// present.
	RequireIdentity bool `mapstructure:"require_identity"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// DispatchConfig contains the settings that drive the dispatch loop.
type DispatchConfig struct {
	// PollInterval is the delay between poll cycles of the continuous
	// dispatcher after a full batch completes.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required"`

	// BatchSize bounds how many pending tasks one poll cycle fetches.
	BatchSize int `mapstructure:"batch_size" validate:"required,gt=0"`

	// StuckAge is how long a task may sit in processing before the poller
	// starts reporting it as stuck. Stuck tasks are reported, never reset.
	StuckAge time.Duration `mapstructure:"stuck_age" validate:"required"`
}

// LLMConfig contains all language-model provider settings. An empty APIKey
// disables the provider; the processor then produces deterministic mock
// results so the pipeline stays runnable without external dependencies.
type LLMConfig struct {
	APIKey            string `mapstructure:"api_key"`
	Model             string `mapstructure:"model"`
	MaxRetries        int    `mapstructure:"max_retries"         validate:"gte=0"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=0"`
}
