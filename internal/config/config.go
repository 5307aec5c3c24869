// Package config loads service configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, grouped by concern.
type Config struct {
	Service       ServiceConfig
	HTTP          HTTPConfig
	Gemini        GeminiConfig
	Speech        SpeechConfig
	Detect        DetectConfig
	Audio         AudioConfig
	Kafka         KafkaConfig
	Database      DatabaseConfig
	Observability ObservabilityConfig
}

// ServiceConfig identifies this service instance.
type ServiceConfig struct {
	Principal string
}

// HTTPConfig configures the public API server.
type HTTPConfig struct {
	Port           string
	MaxUploadBytes int64
}

// GeminiConfig configures the remote text-generation client.
type GeminiConfig struct {
	APIKey     string
	Model      string
	BaseURL    string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
}

// SpeechConfig selects and configures the transcription backend.
// Provider is one of "mock", "whisper", "google".
type SpeechConfig struct {
	Provider         string
	WhisperEnglish   string
	WhisperMalayalam string
	Workers          int
	GoogleLangEN     string
	GoogleLangML     string
}

// DetectConfig tunes automatic language detection.
type DetectConfig struct {
	Window     time.Duration
	MinTextLen int
}

// AudioConfig configures ingestion and conversion.
type AudioConfig struct {
	TargetSampleRate int
	FFmpegPath       string
}

// KafkaConfig configures consult event publishing.
type KafkaConfig struct {
	Enabled   bool
	Brokers   []string
	Topic     string
	Principal string
}

// DatabaseConfig configures the room registry store.
// An empty URL selects the in-memory store.
type DatabaseConfig struct {
	URL string
}

// ObservabilityConfig configures logging and the metrics server.
type ObservabilityConfig struct {
	LogLevel    string
	MetricsPort string
}

// Load reads configuration from the environment, falling back to defaults
// for unset or unparseable values.
func Load() *Config {
	principal := envOrDefault("SERVICE_PRINCIPAL", "svc-meditech-backend")

	return &Config{
		Service: ServiceConfig{
			Principal: principal,
		},
		HTTP: HTTPConfig{
			Port:           envOrDefault("HTTP_PORT", "8080"),
			MaxUploadBytes: envOrDefaultInt64("MAX_UPLOAD_BYTES", 10*1024*1024),
		},
		Gemini: GeminiConfig{
			APIKey:     os.Getenv("GEMINI_API_KEY"),
			Model:      envOrDefault("GEMINI_MODEL", "gemini-1.5-flash"),
			BaseURL:    envOrDefault("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Timeout:    envOrDefaultDuration("GEMINI_TIMEOUT", 60*time.Second),
			Retries:    envOrDefaultInt("GEMINI_RETRIES", 2),
			RetryDelay: envOrDefaultDuration("GEMINI_RETRY_DELAY", 2*time.Second),
		},
		Speech: SpeechConfig{
			Provider:         envOrDefault("SPEECH_PROVIDER", "mock"),
			WhisperEnglish:   envOrDefault("WHISPER_EN_URL", "http://localhost:9000"),
			WhisperMalayalam: envOrDefault("WHISPER_ML_URL", "http://localhost:9001"),
			Workers:          envOrDefaultInt("SPEECH_WORKERS", 4),
			GoogleLangEN:     envOrDefault("GOOGLE_STT_LANGUAGE_EN", "en-IN"),
			GoogleLangML:     envOrDefault("GOOGLE_STT_LANGUAGE_ML", "ml-IN"),
		},
		Detect: DetectConfig{
			Window:     envOrDefaultDuration("DETECT_WINDOW", 30*time.Second),
			MinTextLen: envOrDefaultInt("DETECT_MIN_TEXT_LEN", 10),
		},
		Audio: AudioConfig{
			TargetSampleRate: envOrDefaultInt("TARGET_SAMPLE_RATE", 16000),
			FFmpegPath:       envOrDefault("FFMPEG_PATH", "ffmpeg"),
		},
		Kafka: KafkaConfig{
			Enabled:   envOrDefaultBool("KAFKA_ENABLED", false),
			Brokers:   envOrDefaultList("KAFKA_BROKERS", nil),
			Topic:     envOrDefault("KAFKA_TOPIC_CONSULTS", "consult.records"),
			Principal: envOrDefault("KAFKA_PRINCIPAL", principal),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Observability: ObservabilityConfig{
			LogLevel:    envOrDefault("LOG_LEVEL", "info"),
			MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		},
	}
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envOrDefaultInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultInt64(key string, def int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func envOrDefaultBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func envOrDefaultDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func envOrDefaultList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return def
	}
	return out
}
