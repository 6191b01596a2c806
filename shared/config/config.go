package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	YouTube     YouTubeConfig      `yaml:"youtube"`
	AI          AIConfig           `yaml:"ai"`
	Analysis    AnalysisConfig     `yaml:"analysis"`
	Server      ServerConfig       `yaml:"server"`
	Log         LogConfig          `yaml:"log"`
	Email       EmailConfig        `yaml:"email"`
	Schedule    string             `yaml:"schedule"`
	Comparisons []ComparisonConfig `yaml:"comparisons"`
}

type YouTubeConfig struct {
	APIKey              string   `yaml:"api_key" env:"YOUTUBE_API_KEY"`
	ClientID            string   `yaml:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret        string   `yaml:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	TokenFile           string   `yaml:"token_file"`
	Languages           []string `yaml:"languages"`
	FetchTimeoutSeconds int      `yaml:"fetch_timeout_seconds"`
}

// UseOAuth reports whether the Data API should be called with a user token.
func (c *YouTubeConfig) UseOAuth() bool {
	return c.APIKey == "" && c.ClientID != "" && c.ClientSecret != ""
}

type AIConfig struct {
	Provider          string `yaml:"provider"`
	GeminiAPIKey      string `yaml:"gemini_api_key" env:"GEMINI_API_KEY"`
	OpenAIAPIKey      string `yaml:"openai_api_key" env:"OPENAI_API_KEY"`
	BaseURL           string `yaml:"base_url"`
	Model             string `yaml:"model"`
	TimeoutSeconds    int    `yaml:"timeout_seconds"`
	RequestsPerMinute int    `yaml:"requests_per_minute"`
	Burst             int    `yaml:"burst"`
}

type AnalysisConfig struct {
	MaxVideos int           `yaml:"max_videos"`
	Weights   WeightsConfig `yaml:"weights"`
}

// WeightsConfig holds the composite score weights. They must sum to 1.
type WeightsConfig struct {
	Density        float64 `yaml:"density"`
	Redundancy     float64 `yaml:"redundancy"`
	TitleRelevance float64 `yaml:"title_relevance"`
	Originality    float64 `yaml:"originality"`
}

func (w WeightsConfig) isZero() bool {
	return w == WeightsConfig{}
}

type ServerConfig struct {
	Addr           string `yaml:"addr"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

type EmailConfig struct {
	SMTPServer string `yaml:"smtp_server"`
	SMTPPort   int    `yaml:"smtp_port"`
	Username   string `yaml:"username" env:"EMAIL_USERNAME"`
	Password   string `yaml:"password" env:"EMAIL_PASSWORD"`
	FromEmail  string `yaml:"from_email"`
	ToEmail    string `yaml:"to_email"`
}

// Enabled reports whether reports should be mailed.
func (c *EmailConfig) Enabled() bool {
	return c.ToEmail != ""
}

// ComparisonConfig is a named URL set analyzed on every scheduled run.
type ComparisonConfig struct {
	Name string   `yaml:"name"`
	URLs []string `yaml:"urls"`
}

// Load reads .env when present, then the config file at path, falling back
// to $CONFIG_FILE and config.yaml.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path == "" {
		path = "config.yaml"
	}
	return LoadFile(path)
}

// LoadFile reads path (a missing file yields defaults), applies environment
// overrides and defaults, and validates the result.
func LoadFile(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only setup
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if c.YouTube.APIKey == "" {
		c.YouTube.APIKey = os.Getenv("YOUTUBE_API_KEY")
	}
	if c.YouTube.ClientID == "" {
		c.YouTube.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	}
	if c.YouTube.ClientSecret == "" {
		c.YouTube.ClientSecret = os.Getenv("GOOGLE_CLIENT_SECRET")
	}
	if c.AI.GeminiAPIKey == "" {
		c.AI.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if c.AI.OpenAIAPIKey == "" {
		c.AI.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.Email.Username == "" {
		c.Email.Username = os.Getenv("EMAIL_USERNAME")
	}
	if c.Email.Password == "" {
		c.Email.Password = os.Getenv("EMAIL_PASSWORD")
	}
}

func (c *Config) applyDefaults() {
	if c.YouTube.TokenFile == "" {
		c.YouTube.TokenFile = "youtube_token.json"
	}
	if len(c.YouTube.Languages) == 0 {
		c.YouTube.Languages = []string{"en"}
	}
	if c.YouTube.FetchTimeoutSeconds == 0 {
		c.YouTube.FetchTimeoutSeconds = 20
	}

	if c.AI.Provider == "" {
		c.AI.Provider = ProviderGemini
	}
	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderOpenAI:
			c.AI.Model = "gpt-4o-mini"
		default:
			c.AI.Model = "gemini-2.5-flash"
		}
	}
	if c.AI.TimeoutSeconds == 0 {
		c.AI.TimeoutSeconds = 45
	}
	if c.AI.RequestsPerMinute == 0 {
		c.AI.RequestsPerMinute = 60
	}
	if c.AI.Burst == 0 {
		c.AI.Burst = 5
	}

	if c.Analysis.MaxVideos == 0 {
		c.Analysis.MaxVideos = 5
	}
	if c.Analysis.Weights.isZero() {
		c.Analysis.Weights = DefaultWeights()
	}

	if c.Server.Addr == "" {
		c.Server.Addr = ":8000"
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 180
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Email.SMTPPort == 0 {
		c.Email.SMTPPort = 587
	}
}

// DefaultWeights favours density, then redundancy and originality, then title.
func DefaultWeights() WeightsConfig {
	return WeightsConfig{
		Density:        0.30,
		Redundancy:     0.25,
		TitleRelevance: 0.20,
		Originality:    0.25,
	}
}

func (c *Config) validate() error {
	switch c.AI.Provider {
	case ProviderGemini:
		if c.AI.GeminiAPIKey == "" {
			return fmt.Errorf("Gemini API key is required (set GEMINI_API_KEY or ai.gemini_api_key)")
		}
	case ProviderOpenAI:
		if c.AI.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required (set OPENAI_API_KEY or ai.openai_api_key)")
		}
	default:
		return fmt.Errorf("unknown ai.provider %q (want %q or %q)", c.AI.Provider, ProviderGemini, ProviderOpenAI)
	}

	if c.Analysis.MaxVideos < 1 || c.Analysis.MaxVideos > 5 {
		return fmt.Errorf("analysis.max_videos must be between 1 and 5, got %d", c.Analysis.MaxVideos)
	}

	w := c.Analysis.Weights
	if w.Density < 0 || w.Redundancy < 0 || w.TitleRelevance < 0 || w.Originality < 0 {
		return fmt.Errorf("analysis.weights must not be negative")
	}
	if sum := w.Density + w.Redundancy + w.TitleRelevance + w.Originality; math.Abs(sum-1) > 1e-6 {
		return fmt.Errorf("analysis.weights must sum to 1, got %.4f", sum)
	}

	if len(c.Comparisons) > 0 && c.Schedule == "" {
		return fmt.Errorf("schedule is required when comparisons are configured")
	}
	for i, cmp := range c.Comparisons {
		if cmp.Name == "" {
			return fmt.Errorf("comparisons[%d].name is required", i)
		}
		if len(cmp.URLs) == 0 {
			return fmt.Errorf("comparison %q has no urls", cmp.Name)
		}
	}

	if c.Email.Enabled() && c.Email.SMTPServer == "" {
		return fmt.Errorf("email.smtp_server is required when email.to_email is set")
	}
	return nil
}
