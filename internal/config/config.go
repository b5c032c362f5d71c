// Package config loads client and fixture server settings from the
// environment, with an optional .env file.
package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	// EnvProduction represents the production environment.
	EnvProduction = "production"
	// EnvDevelopment enables debug logging.
	EnvDevelopment = "development"
)

// Client holds the sonify CLI and TUI settings.
type Client struct {
	// Backend settings
	BackendURL    string        `envconfig:"SONIFY_BACKEND_URL" default:"http://localhost:8000"`
	UploadTimeout time.Duration `envconfig:"SONIFY_UPLOAD_TIMEOUT" default:"0s"`

	// Voice settings
	VoiceEngine  string        `envconfig:"SONIFY_VOICE_ENGINE" default:"auto"`
	VoiceEnabled bool          `envconfig:"SONIFY_VOICE_ENABLED" default:"true"`
	VoiceRate    float64       `envconfig:"SONIFY_VOICE_RATE" default:"1.0"`
	VoicePitch   float64       `envconfig:"SONIFY_VOICE_PITCH" default:"1.0"`
	VoiceVolume  float64       `envconfig:"SONIFY_VOICE_VOLUME" default:"0.8"`
	VoicePoll    time.Duration `envconfig:"SONIFY_VOICE_POLL" default:"200ms"`
	EspeakPath   string        `envconfig:"SONIFY_ESPEAK_PATH"`
	OpenAIVoice  string        `envconfig:"SONIFY_OPENAI_VOICE" default:"alloy"`

	// API keys fall back to the system keychain when empty.
	OpenAIAPIKey    string `envconfig:"OPENAI_API_KEY"`
	AnthropicAPIKey string `envconfig:"ANTHROPIC_API_KEY"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// Server holds the fixture backend settings.
type Server struct {
	// Server settings
	Env  string `envconfig:"ENV" default:"development"`
	Port string `envconfig:"PORT" default:"8000"`

	// Storage settings
	FixturesDir string `envconfig:"FIXTURES_DIR" default:"fixtures"`
	UploadsDir  string `envconfig:"UPLOADS_DIR" default:"uploads"`
	OutputsDir  string `envconfig:"OUTPUTS_DIR" default:"outputs"`

	// Security settings
	TrustedProxies []string `envconfig:"TRUSTED_PROXIES" default:"127.0.0.1"`
	HSTSMaxAge     int      `envconfig:"HSTS_MAX_AGE" default:"31536000"`
	CSPMode        string   `envconfig:"CSP_MODE" default:"relaxed"`

	// Logging settings
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`
}

// LoadClient loads client configuration from .env file and environment variables.
func LoadClient() (*Client, error) {
	loadDotEnv()

	var config Client
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &config, nil
}

// LoadServer loads fixture server configuration from .env file and
// environment variables.
func LoadServer() (*Server, error) {
	loadDotEnv()

	var config Server
	if err := envconfig.Process("", &config); err != nil {
		return nil, fmt.Errorf("failed to process environment variables: %w", err)
	}

	return &config, nil
}

func loadDotEnv() {
	// Try to load .env file (optional for development)
	if err := godotenv.Load(); err != nil {
		// Not an error if file doesn't exist (expected in production)
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	}
}

// BuildCSP constructs Content Security Policy based on mode.
func BuildCSP(mode string) string {
	if mode == "strict" {
		return "default-src 'none'; " +
			"media-src 'self'; " +
			"object-src 'none'; " +
			"base-uri 'none'; " +
			"form-action 'self'"
	}

	return "default-src 'self'; " +
		"media-src 'self' blob:; " +
		"img-src 'self' data:"
}
