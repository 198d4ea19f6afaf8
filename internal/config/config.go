// Package config provides centralized configuration for the persona server.
// All configurable values are loaded from environment variables with sensible defaults.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all server configuration values.
type Config struct {
	// Port is the HTTP server listen port.
	Port string

	// StoreBackend selects the artifact store: "file" or "sqlite".
	StoreBackend string

	// DataDir is the directory for JSON artifacts (file backend) and uploads.
	DataDir string

	// DBPath is the path to the SQLite database file (sqlite backend).
	DBPath string

	// SerpAPIKey is the API key for the SerpAPI search service.
	SerpAPIKey string

	// SearchCountry and SearchLanguage are the locale hints sent with each
	// search ("gl" and "hl" parameters).
	SearchCountry  string
	SearchLanguage string

	// SearchRPS and SearchBurst bound the client-side search request rate.
	SearchRPS   float64
	SearchBurst int

	// GeminiKey is the API key for the Google Gemini service.
	GeminiKey string

	// GeminiModel is the model identifier for Gemini completions.
	GeminiModel string

	// Transcriber selects the speech-to-text backend: "whisperx" or "gspeech".
	Transcriber string

	// WhisperXBin is the whisperx executable to invoke.
	WhisperXBin string

	// SpeechLanguage is the language hint for Google Cloud Speech.
	SpeechLanguage string

	// WorkerInterval is the polling interval for the background worker.
	WorkerInterval time.Duration

	// HTTPTimeout is the timeout applied to each outgoing provider call.
	HTTPTimeout time.Duration

	// MaxContextLength is the maximum number of runes of context fed to a prompt.
	MaxContextLength int

	// MaxUploadBytes is the maximum accepted audio upload size.
	MaxUploadBytes int64

	// CORSOrigin is the allowed CORS origin. Defaults to "*".
	CORSOrigin string
}

// Load reads configuration from environment variables, applying defaults.
func Load() Config {
	return Config{
		Port:             envOr("PORT", "8080"),
		StoreBackend:     envOr("STORE_BACKEND", "file"),
		DataDir:          envOr("DATA_DIR", "data"),
		DBPath:           envOr("DB_PATH", "persona.db"),
		SerpAPIKey:       os.Getenv("SERPAPI_API_KEY"),
		SearchCountry:    envOr("SEARCH_COUNTRY", "us"),
		SearchLanguage:   envOr("SEARCH_LANGUAGE", "en"),
		SearchRPS:        envFloat("SEARCH_RPS", 1.0),
		SearchBurst:      envInt("SEARCH_BURST", 3),
		GeminiKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      envOr("GEMINI_MODEL", "gemini-2.0-flash"),
		Transcriber:      envOr("TRANSCRIBER", "whisperx"),
		WhisperXBin:      envOr("WHISPERX_BIN", "whisperx"),
		SpeechLanguage:   envOr("SPEECH_LANGUAGE", "en-US"),
		WorkerInterval:   envDuration("WORKER_INTERVAL", 2*time.Second),
		HTTPTimeout:      envDuration("HTTP_TIMEOUT", 60*time.Second),
		MaxContextLength: envInt("MAX_CONTEXT_LENGTH", 12000),
		MaxUploadBytes:   envInt64("MAX_UPLOAD_BYTES", 64<<20),
		CORSOrigin:       envOr("CORS_ORIGIN", "*"),
	}
}

// UseStubProviders returns true when no provider API keys are configured.
// The server then runs with stub search/generation/transcription so the
// pipelines stay exercisable in development.
func (c Config) UseStubProviders() bool {
	return c.SerpAPIKey == "" && c.GeminiKey == ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
