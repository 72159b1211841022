package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// Settings is the process configuration, read from the environment.
type Settings struct {
	AppEnv string
	Debug  bool

	TelegramToken string

	DeepSeekAPIKey  string
	DeepSeekBaseURL string
	DeepSeekModel   string

	DatabaseURL string

	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool

	KafkaBroker        string
	KafkaAnalysisTopic string
	KafkaGroupID       string

	AWSEndpoint         string
	AWSRegion           string
	DynamoAnalysisTable string

	LexiconPath string

	ReminderHour     int
	ReminderLocation *time.Location

	RateLimitRequests int
	RateLimitWindow   time.Duration
}

var ErrMissingToken = errors.New("TELEGRAM_BOT_TOKEN is not set")

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func getEnvBool(key string) bool {
	return strings.EqualFold(getEnv(key, "false"), "true")
}

// Load reads Settings from the environment, applying defaults.
func Load() (Settings, error) {
	s := Settings{
		AppEnv:              getEnv("APP_ENV", "dev"),
		Debug:               getEnvBool("DEBUG"),
		TelegramToken:       getEnv("TELEGRAM_BOT_TOKEN", ""),
		DeepSeekAPIKey:      getEnv("DEEPSEEK_API_KEY", ""),
		DeepSeekBaseURL:     getEnv("DEEPSEEK_BASE_URL", "https://api.deepseek.com/v1"),
		DeepSeekModel:       getEnv("DEEPSEEK_MODEL", "deepseek-chat"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		ValkeyAddress:       getEnv("VALKEY_INIT_ADDRESS", ""),
		ValkeyPassword:      getEnv("VALKEY_PASSWORD", ""),
		ValkeyTLS:           getEnvBool("VALKEY_TLS"),
		KafkaBroker:         getEnv("KAFKA_BROKER", ""),
		KafkaAnalysisTopic:  getEnv("KAFKA_ANALYSIS_TOPIC", "mood-analysis"),
		KafkaGroupID:        getEnv("KAFKA_GROUP_ID", "mindmate-archiver"),
		AWSEndpoint:         getEnv("AWS_ENDPOINT", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-west-2"),
		DynamoAnalysisTable: getEnv("DYNAMODB_ANALYSIS_TABLE", ""),
		LexiconPath:         getEnv("LEXICON_PATH", ""),
	}

	var err error
	if s.ReminderHour, err = getEnvInt("REMINDER_HOUR", 20); err != nil {
		return Settings{}, err
	}
	if s.ReminderHour < 0 || s.ReminderHour > 23 {
		return Settings{}, fmt.Errorf("REMINDER_HOUR must be between 0 and 23, got %d", s.ReminderHour)
	}

	tz := getEnv("REMINDER_TIMEZONE", "UTC")
	if s.ReminderLocation, err = time.LoadLocation(tz); err != nil {
		return Settings{}, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", tz, err)
	}

	if s.RateLimitRequests, err = getEnvInt("RATE_LIMIT_REQUESTS", 5); err != nil {
		return Settings{}, err
	}
	window := getEnv("RATE_LIMIT_WINDOW", "60s")
	if s.RateLimitWindow, err = time.ParseDuration(window); err != nil {
		return Settings{}, fmt.Errorf("invalid RATE_LIMIT_WINDOW %q: %w", window, err)
	}

	return s, nil
}

// Validate checks the settings required to run the bot.
func (s Settings) Validate() error {
	if s.TelegramToken == "" {
		return ErrMissingToken
	}
	if s.RateLimitRequests <= 0 || s.RateLimitWindow <= 0 {
		return errors.New("rate limit must be positive")
	}
	return nil
}

func (s Settings) ChatEnabled() bool {
	return s.DeepSeekAPIKey != ""
}
