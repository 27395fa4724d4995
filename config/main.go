// Package config loads process configuration from the environment (and an optional .env file).
package config

import (
	"context"
	"fmt"

	"mockinterview/modelapi"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Provider names accepted by the *_PROVIDER keys.
const (
	ProviderGemini   = "gemini"
	ProviderGroq     = "groq"
	ProviderGoogle   = "google"
	ProviderCartesia = "cartesia"
	ProviderOpenAI   = "openai"
)

type Config struct {
	Port       string `env:"PORT,default=80"`
	Production bool   `env:"PRODUCTION,default=false"`

	GeminiAPIKey        string  `env:"GEMINI_API_KEY"`
	InterviewerProvider string  `env:"INTERVIEWER_PROVIDER,default=gemini"`
	InterviewerModel    string  `env:"INTERVIEWER_MODEL,default=gemini-2.5-flash"`
	InterviewerTemp     float32 `env:"INTERVIEWER_TEMPERATURE,default=0.7"`
	MentorProvider      string  `env:"MENTOR_PROVIDER,default=gemini"`
	MentorModel         string  `env:"MENTOR_MODEL,default=gemini-2.5-flash"`
	MentorTemp          float32 `env:"MENTOR_TEMPERATURE,default=0.4"`
	AnalysisModel       string  `env:"ANALYSIS_MODEL,default=gemini-flash-latest"`
	ProgramsFile        string  `env:"PROGRAMS_FILE"`

	GroqSecretKey string `env:"GROQ_SECRET_KEY"`
	GroqURL       string `env:"GROQ_URL,default=https://api.groq.com/openai/v1/chat/completions"`
	GroqModel     string `env:"GROQ_MODEL,default=moonshotai/kimi-k2-instruct"`

	TTSProvider       string `env:"TTS_PROVIDER,default=google"`
	TTSVoiceName      string `env:"TTS_VOICE_NAME"`
	TTSCacheSize      int    `env:"TTS_CACHE_SIZE,default=1024"`
	GoogleCredentials string `env:"GOOGLE_APPLICATION_CREDENTIALS"`
	CartesiaAPIKey    string `env:"CARTESIA_API_KEY"`
	CartesiaURL       string `env:"CARTESIA_URL,default=https://api.cartesia.ai/tts/bytes"`
	OpenAISecretKey   string `env:"OPENAI_SECRET_KEY"`
	OpenAIBaseURL     string `env:"OPENAI_BASE_URL"`
	OpenAITTSModel    string `env:"OPENAI_TTS_MODEL,default=gpt-4o-mini-tts"`
	DeepgramAPIKey    string `env:"DEEPGRAM_API_KEY"`
	TelegramBotToken  string `env:"TELEGRAM_BOT_TOKEN"`
	TelegramDebug     bool   `env:"TELEGRAM_DEBUG,default=false"`

	PostgresHost     string `env:"POSTGRES_DB_HOST,default=localhost"`
	PostgresPort     string `env:"POSTGRES_DB_PORT,default=5432"`
	PostgresUser     string `env:"POSTGRES_DB_USER"`
	PostgresPassword string `env:"POSTGRES_DB_PASS"`
	PostgresName     string `env:"POSTGRES_DB_NAME"`
	PostgresSSLMode  string `env:"POSTGRES_DB_SSLMODE,default=disable"`
}

// Load reads .env (when present) and decodes the process environment.
func Load(ctx context.Context) (*Config, error) {
	// A missing .env file is normal outside local development.
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper(), (*Config).Validate)
}

// LoadSpeech is Load for commands that only synthesize speech; LLM keys are not required.
func LoadSpeech(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()
	return load(ctx, envconfig.OsLookuper(), (*Config).ValidateSpeech)
}

func load(ctx context.Context, lookuper envconfig.Lookuper, validate func(*Config) error) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &cfg, lookuper); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks provider names and the credentials each selected provider needs.
func (c *Config) Validate() error {
	for _, p := range []struct{ key, value string }{
		{"INTERVIEWER_PROVIDER", c.InterviewerProvider},
		{"MENTOR_PROVIDER", c.MentorProvider},
	} {
		switch p.value {
		case ProviderGemini:
			if c.GeminiAPIKey == "" {
				return fmt.Errorf("config error: %s=%s requires GEMINI_API_KEY", p.key, p.value)
			}
		case ProviderGroq:
			if c.GroqSecretKey == "" {
				return fmt.Errorf("config error: %s=%s requires GROQ_SECRET_KEY", p.key, p.value)
			}
		default:
			return fmt.Errorf("config error: unknown %s %q", p.key, p.value)
		}
	}
	return c.ValidateSpeech()
}

// ValidateSpeech checks only the TTS keys.
func (c *Config) ValidateSpeech() error {
	switch c.TTSProvider {
	case ProviderGoogle:
	case ProviderCartesia:
		if c.CartesiaAPIKey == "" {
			return fmt.Errorf("config error: TTS_PROVIDER=cartesia requires CARTESIA_API_KEY")
		}
		// Cartesia voices are account-specific ids.
		if c.TTSVoiceName == "" {
			return fmt.Errorf("config error: TTS_PROVIDER=cartesia requires TTS_VOICE_NAME")
		}
	case ProviderOpenAI:
		if c.OpenAISecretKey == "" {
			return fmt.Errorf("config error: TTS_PROVIDER=openai requires OPENAI_SECRET_KEY")
		}
	default:
		return fmt.Errorf("config error: unknown TTS_PROVIDER %q", c.TTSProvider)
	}

	if c.TTSCacheSize <= 0 {
		return fmt.Errorf("config error: TTS_CACHE_SIZE must be positive")
	}
	return nil
}

// SpeechVoice is TTS_VOICE_NAME, or the selected provider's default voice when unset.
func (c *Config) SpeechVoice() string {
	if c.TTSVoiceName != "" {
		return c.TTSVoiceName
	}
	switch c.TTSProvider {
	case ProviderOpenAI:
		return modelapi.OPENAI_DEFAULT_VOICE
	case ProviderGoogle:
		return modelapi.GOOGLE_KOREAN_VOICE
	}
	return ""
}

// PostgresDSN renders the lib/pq connection string.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgresHost, c.PostgresPort, c.PostgresUser, c.PostgresPassword, c.PostgresName, c.PostgresSSLMode,
	)
}
