package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// PlaceholderKey is the credential value the deploy tooling injects when no
// real key has been provisioned. A service configured with it behaves as
// unconfigured: the worker skips the network call and synthesizes locally.
const PlaceholderKey = "mock-key"

// Config is the immutable process configuration, read once at startup and
// passed by reference into each component's constructor.
type Config struct {
	// Queue store. DATABASE_URL selects the direct Postgres store;
	// otherwise the Supabase REST store is used.
	DatabaseURL        string `env:"DATABASE_URL"`
	SupabaseURL        string `env:"SUPABASE_URL"`
	SupabaseServiceKey string `env:"SUPABASE_SERVICE_ROLE"`

	// WAN 2.2+ video generation
	WANAPIKey string `env:"WAN_API_KEY" envDefault:"mock-key"`
	WANAPIURL string `env:"WAN_API_URL" envDefault:"https://api.wan.video"`

	// Qwen-TTS narration
	QwenAPIKey string `env:"QWEN_API_KEY" envDefault:"mock-key"`
	QwenAPIURL string `env:"QWEN_API_URL" envDefault:"https://dashscope.aliyuncs.com"`

	// Cloudflare R2 (S3-compatible). All four must be set for uploads to
	// happen; otherwise publishing degrades to key derivation only.
	R2Endpoint  string `env:"R2_ENDPOINT"`
	R2AccessKey string `env:"R2_ACCESS_KEY"`
	R2SecretKey string `env:"R2_SECRET_KEY"`
	R2Bucket    string `env:"R2_BUCKET" envDefault:"alphogenai-assets"`

	// Webhook receiver for terminal job notifications
	WebhookURL string `env:"WEBHOOK_URL" envDefault:"https://api.alphogen.com/api/webhooks/runpod"`

	// Ops HTTP surface
	APIPort            string `env:"API_PORT" envDefault:"8080"`
	RunnerAPIKey       string `env:"RUNNER_API_KEY"`
	CorsAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS"`

	// Polling loop
	PollInterval time.Duration `env:"POLL_INTERVAL" envDefault:"10s"`
	ErrorBackoff time.Duration `env:"ERROR_BACKOFF" envDefault:"30s"`
	BatchLimit   int           `env:"BATCH_LIMIT" envDefault:"5"`

	// Media pipeline
	TempDir              string `env:"TEMP_DIR" envDefault:"/tmp/alphogen"`
	SceneCount           int    `env:"SCENE_COUNT" envDefault:"3"`
	SceneDurationSec     int    `env:"SCENE_DURATION_SEC" envDefault:"30"`
	NarrationDurationSec int    `env:"NARRATION_DURATION_SEC" envDefault:"90"`
}

// Load reads configuration from the environment, loading .env first if one
// exists (ignored in production deployments where no .env is present).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && (c.SupabaseURL == "" || c.SupabaseServiceKey == "") {
		return fmt.Errorf("either DATABASE_URL or SUPABASE_URL and SUPABASE_SERVICE_ROLE are required for the job store")
	}

	if c.WebhookURL == "" {
		return fmt.Errorf("WEBHOOK_URL is required")
	}

	if c.BatchLimit < 1 {
		c.BatchLimit = 1
	}

	if c.SceneCount < 1 {
		c.SceneCount = 1
	}

	return nil
}

// WANConfigured reports whether a real WAN credential is present.
func (c *Config) WANConfigured() bool {
	return c.WANAPIKey != "" && c.WANAPIKey != PlaceholderKey
}

// QwenConfigured reports whether a real Qwen-TTS credential is present.
func (c *Config) QwenConfigured() bool {
	return c.QwenAPIKey != "" && c.QwenAPIKey != PlaceholderKey
}

// R2Configured reports whether uploads to R2 can be attempted.
func (c *Config) R2Configured() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != "" && c.R2Bucket != ""
}
