package conf

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/bradyshelf/solofoodies-chat-prototype/internal/biz/usecase"
)

// Config represents application configuration
type Config struct {
	// HTTP server configuration
	Server ServerConfig

	// Delay configuration for the simulated counterpart
	Delays DelayConfig

	// Transcript archive configuration
	Transcript TranscriptConfig

	// OpenAI configuration (optional; replies stay scripted without it)
	OpenAI OpenAIConfig

	// Counterpart display configuration
	Counterpart CounterpartConfig

	// Debug mode
	Debug bool
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port int
}

// DelayConfig contains the simulated backend delays, in milliseconds
type DelayConfig struct {
	FirstReplyMS  int
	SecondReplyMS int
	CounterMS     int
}

// TranscriptConfig contains transcript archive configuration
type TranscriptConfig struct {
	DBPath string
}

// OpenAIConfig contains OpenAI configuration
type OpenAIConfig struct {
	APIKey string
	Model  string
}

// CounterpartConfig contains the fixed counterpart identity shown to
// clients; the prototype never fetches a real profile
type CounterpartConfig struct {
	Name string
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Transcript DB path
	dbPath := os.Getenv("TRANSCRIPT_DB_PATH")
	if dbPath == "" {
		homeDir, _ := os.UserHomeDir()
		dbPath = filepath.Join(homeDir, ".solofoodies-chat", "transcripts.db")
	}

	counterpartName := os.Getenv("COUNTERPART_NAME")
	if counterpartName == "" {
		counterpartName = "Restaurant"
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnvInt("PORT", 8080),
		},
		Delays: DelayConfig{
			FirstReplyMS:  getEnvInt("FIRST_REPLY_DELAY_MS", 1000),
			SecondReplyMS: getEnvInt("SECOND_REPLY_DELAY_MS", 2000),
			CounterMS:     getEnvInt("COUNTER_DELAY_MS", 2000),
		},
		Transcript: TranscriptConfig{
			DBPath: dbPath,
		},
		OpenAI: OpenAIConfig{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  os.Getenv("OPENAI_MODEL"),
		},
		Counterpart: CounterpartConfig{
			Name: counterpartName,
		},
		Debug: os.Getenv("DEBUG") == "true",
	}
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return fallback
}

// ToSessionConfig converts the delay settings to the session configuration
func (c *Config) ToSessionConfig() usecase.SessionConfig {
	return usecase.SessionConfig{
		FirstReplyDelay:  time.Duration(c.Delays.FirstReplyMS) * time.Millisecond,
		SecondReplyDelay: time.Duration(c.Delays.SecondReplyMS) * time.Millisecond,
		CounterDelay:     time.Duration(c.Delays.CounterMS) * time.Millisecond,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return &ConfigError{Field: "PORT", Message: "must be a valid tcp port"}
	}
	if c.Delays.FirstReplyMS < 0 || c.Delays.SecondReplyMS < 0 || c.Delays.CounterMS < 0 {
		return &ConfigError{Field: "FIRST_REPLY_DELAY_MS/SECOND_REPLY_DELAY_MS/COUNTER_DELAY_MS", Message: "must not be negative"}
	}
	if c.Transcript.DBPath == "" {
		return &ConfigError{Field: "TRANSCRIPT_DB_PATH", Message: "required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
