package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration
type Config struct {
	Server        ServerConfig        `envconfig:"SERVER"`
	Database      DatabaseConfig      `envconfig:"DB"`
	Redis         RedisConfig         `envconfig:"REDIS"`
	Storage       StorageConfig       `envconfig:"STORAGE"`
	Store         StoreConfig         `envconfig:"STORE"`
	Collaborators CollaboratorsConfig `envconfig:"COLLABORATOR"`
	Groq          GroqConfig          `envconfig:"GROQ"`
	Gemini        GeminiConfig        `envconfig:"GEMINI"`
	Skills        SkillsConfig        `envconfig:"SKILLS"`
	AMQP          AMQPConfig          `envconfig:"AMQP"`
	Session       SessionConfig       `envconfig:"SESSION"`
	Log           LogConfig           `envconfig:"LOG"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `default:"8080"`
	Host            string        `default:"0.0.0.0"`
	Environment     string        `default:"development"`
	AllowedOrigins  []string      `split_words:"true" default:"http://localhost:3000"`
	ShutdownTimeout time.Duration `split_words:"true" default:"10s"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string `default:"localhost"`
	Port     string `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	Name     string `default:"interview_coach"`
	SSLMode  string `envconfig:"SSLMODE" default:"disable"`
	MaxConns int    `split_words:"true" default:"25"`
	MinConns int    `split_words:"true" default:"5"`

	// Apply migrations/ on serve. Refused in production.
	AutoMigrate bool `split_words:"true" default:"false"`
}

// RedisConfig holds Redis configuration. Host empty means in-process cache and locks.
type RedisConfig struct {
	Host     string
	Port     string `default:"6379"`
	Password string
	DB       int `default:"0"`
}

// StorageConfig holds object storage configuration for resume attachments
type StorageConfig struct {
	Endpoint        string
	AccessKeyID     string `envconfig:"ACCESS_KEY"`
	SecretAccessKey string `envconfig:"SECRET_KEY"`
	BucketName      string `envconfig:"BUCKET" default:"resumes"`
	UseSSL          bool   `split_words:"true" default:"false"`

	// Public base URL used to build resume_url, e.g. https://cdn.example.com/storage/v1/object/public
	PublicURL string `split_words:"true"`
}

// StoreConfig selects the SessionRecord backend
type StoreConfig struct {
	Backend string `default:"postgres"` // "postgres" or "rest"
	Rest    RestStoreConfig
}

// RestStoreConfig holds the hosted PostgREST backend settings
type RestStoreConfig struct {
	URL     string
	APIKey  string        `envconfig:"API_KEY"`
	Table   string        `default:"interviews"`
	Timeout time.Duration `default:"15s"`
}

// CollaboratorsConfig holds the tone classifier and feedback endpoints
type CollaboratorsConfig struct {
	ToneURL     string        `envconfig:"TONE_URL"`
	FeedbackURL string        `envconfig:"FEEDBACK_URL"`
	Timeout     time.Duration `default:"60s"`
}

// GroqConfig holds Groq API configuration
type GroqConfig struct {
	APIKey  string `envconfig:"API_KEY"`
	BaseURL string `envconfig:"API_URL" default:"https://api.groq.com"`
	Model   string `default:"llama-3.1-8b-instant"`
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey string `envconfig:"API_KEY"`
	Model  string `default:"gemini-2.5-flash"`
}

// SkillsConfig selects the skill extraction provider
type SkillsConfig struct {
	Provider string `default:"groq"` // "groq", "gemini" or "none"
}

// AMQPConfig holds the completion event publisher settings. Empty URL disables publishing.
type AMQPConfig struct {
	URL      string
	Exchange string `default:"interviews"`
	Queue    string `default:"interview.completed"`
}

// SessionConfig holds live session settings
type SessionConfig struct {
	MaxDuration     time.Duration `split_words:"true" default:"15m"`
	PauseThreshold  float64       `split_words:"true" default:"1.5"`
	ContextTTL      time.Duration `envconfig:"CONTEXT_TTL" default:"2h"`
	LockTTL         time.Duration `envconfig:"LOCK_TTL" default:"30s"`
	AnalysisTimeout time.Duration `split_words:"true" default:"3m"`
	FirstMessage    string        `split_words:"true" default:"Hi, thanks for joining. Could you start by telling me a little about yourself?"`
	SystemPrompt    string        `split_words:"true" default:"You are a friendly but rigorous interviewer. Ask one question at a time and follow up on vague answers."`
	Voice           string        `default:"alloy"`
}

// LogConfig holds logger settings
type LogConfig struct {
	JSON  bool `default:"true"`
	Debug bool `default:"false"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if file doesn't exist)
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables or defaults")
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch strings.ToLower(c.Store.Backend) {
	case "postgres":
	case "rest":
		if c.Store.Rest.URL == "" {
			return fmt.Errorf("STORE_REST_URL is required when STORE_BACKEND=rest")
		}
		if c.Store.Rest.APIKey == "" {
			return fmt.Errorf("STORE_REST_API_KEY is required when STORE_BACKEND=rest")
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.Store.Backend)
	}

	if c.Session.PauseThreshold <= 0 {
		return fmt.Errorf("SESSION_PAUSE_THRESHOLD must be positive")
	}
	if c.Session.MaxDuration <= 0 {
		return fmt.Errorf("SESSION_MAX_DURATION must be positive")
	}
	return nil
}

// ValidateServe checks the settings only the HTTP server needs
func (c *Config) ValidateServe() error {
	if c.Collaborators.ToneURL == "" {
		return fmt.Errorf("COLLABORATOR_TONE_URL is required")
	}
	if c.Collaborators.FeedbackURL == "" {
		return fmt.Errorf("COLLABORATOR_FEEDBACK_URL is required")
	}

	switch strings.ToLower(c.Skills.Provider) {
	case "groq":
		if c.Groq.APIKey == "" {
			return fmt.Errorf("GROQ_API_KEY is required when SKILLS_PROVIDER=groq")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("GEMINI_API_KEY is required when SKILLS_PROVIDER=gemini")
		}
	case "none":
	default:
		return fmt.Errorf("unknown SKILLS_PROVIDER %q", c.Skills.Provider)
	}

	return nil
}

// IsProduction reports whether the server runs in production
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseDSN returns the database connection string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// GetRedisAddr returns the Redis address
func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Redis.Host, c.Redis.Port)
}

// RedisEnabled reports whether a Redis host was configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Host != ""
}
