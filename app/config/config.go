package config

import (
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log    `yaml:"log"`
	Server   Server `yaml:"server"`
	Timezone string `yaml:"timezone" example:"Asia/Kolkata"`
	Google   Google `yaml:"google"`
	OpenAI   OpenAI `yaml:"openai"`
	Speech   Speech `yaml:"speech"`
}

type OpenAI struct {
	Brain ModelConfig `yaml:"brain" validate:"required"`
	Reply ModelConfig `yaml:"reply" validate:"required"`
}

type ModelConfig struct {
	// OpenAI base url
	BaseURL string `yaml:"base_url" example:"https://openrouter.ai/api/v1" validate:"required"`
	// OpenAI token, falls back to OPENAI_API_KEY
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX"`
	// OpenAI model
	Model string `yaml:"model" example:"deepseek/deepseek-chat-v3-0324:free" validate:"required"`
}

type Google struct {
	// OAuth client ID of the Google Cloud application
	ClientID string `yaml:"client_id" example:"123456789-abc.apps.googleusercontent.com"`
	// OAuth client secret of the Google Cloud application
	ClientSecret string `yaml:"client_secret" example:"GOCSPX-abc123def456"`
	// Calendar to read and write events on
	CalendarID string `yaml:"calendar_id" example:"primary"`
	// Path to the stored OAuth token
	TokenFile string `yaml:"token_file" example:"token.json"`
}

type Speech struct {
	// Path to the Yandex Cloud service account key, empty disables the voice endpoint
	KeyFile string `yaml:"key_file" example:"service-account-key.json"`
}

type Server struct {
	// Address to bind the HTTP API on
	Addr string `yaml:"addr" example:":8080"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Timezone == "" {
		result.Timezone = "UTC"
	}
	if result.Server.Addr == "" {
		result.Server.Addr = ":8080"
	}
	if result.Google.CalendarID == "" {
		result.Google.CalendarID = "primary"
	}
	if result.Google.TokenFile == "" {
		result.Google.TokenFile = "token.json"
	}
	if result.OpenAI.Brain.Token == "" {
		result.OpenAI.Brain.Token = os.Getenv("OPENAI_API_KEY")
	}
	if result.OpenAI.Reply.Token == "" {
		result.OpenAI.Reply.Token = os.Getenv("OPENAI_API_KEY")
	}

	if _, err = time.LoadLocation(result.Timezone); err != nil {
		return nil, oops.Errorf("invalid timezone %q: %w", result.Timezone, err)
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}

// Location returns the user's timezone. Load has already verified it parses.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}

	return loc
}
