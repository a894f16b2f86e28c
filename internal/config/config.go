package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBPath    string
	DocsDir   string
	OutputDir string
	HTTPAddr  string

	GeminiAPIKey        string
	GeminiModel         string
	GeminiRPS           int
	AnalyzeRetries      int
	AnalyzeRetryDelayMs int
	CacheCapacity       int

	DefaultCurrency string
	DefaultLanguage string
	RateEUR         float64
	RateUSD         float64

	IMAPHost     string
	IMAPPort     int
	IMAPSecure   bool
	IMAPUser     string
	IMAPPassword string
	IMAPMarkSeen bool

	GmailClientID     string
	GmailClientSecret string
	GmailRedirectURI  string
	GmailRefreshToken string

	IntakeProvider    string
	IntakeLabel       string
	IntakeIntervalSec int
	IntakeFetchMax    int
}

func Load() (Config, error) {
	_ = godotenv.Load()

	cwd, err := os.Getwd()
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		DBPath:    getEnv("DB_PATH", filepath.Join(cwd, "data", "smartprocure.db")),
		DocsDir:   getEnv("DOCS_DIR", filepath.Join(cwd, "data", "docs")),
		OutputDir: getEnv("OUTPUT_DIR", filepath.Join(cwd, "out")),
		HTTPAddr:  getEnv("HTTP_ADDR", ":8787"),

		GeminiAPIKey:        getEnv("GEMINI_API_KEY", ""),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-3-flash-preview"),
		GeminiRPS:           getEnvInt("GEMINI_RPS", 2),
		AnalyzeRetries:      getEnvInt("ANALYZE_RETRIES", 3),
		AnalyzeRetryDelayMs: getEnvInt("ANALYZE_RETRY_DELAY_MS", 1000),
		CacheCapacity:       getEnvInt("CACHE_CAPACITY", 24),

		DefaultCurrency: getEnv("DEFAULT_CURRENCY", "XOF"),
		DefaultLanguage: getEnv("DEFAULT_LANGUAGE", "fr"),
		RateEUR:         getEnvFloat("RATE_EUR", 655.96),
		RateUSD:         getEnvFloat("RATE_USD", 600.0),

		IMAPHost:     getEnv("IMAP_HOST", ""),
		IMAPPort:     getEnvInt("IMAP_PORT", 993),
		IMAPSecure:   getEnvBool("IMAP_SECURE", true),
		IMAPUser:     getEnv("IMAP_USER", ""),
		IMAPPassword: getEnv("IMAP_PASSWORD", ""),
		IMAPMarkSeen: getEnvBool("IMAP_MARK_SEEN", false),

		GmailClientID:     getEnv("GMAIL_CLIENT_ID", ""),
		GmailClientSecret: getEnv("GMAIL_CLIENT_SECRET", ""),
		GmailRedirectURI:  getEnv("GMAIL_REDIRECT_URI", "https://developers.google.com/oauthplayground"),
		GmailRefreshToken: getEnv("GMAIL_REFRESH_TOKEN", ""),

		IntakeProvider:    getEnv("INTAKE_PROVIDER", "imap"),
		IntakeLabel:       getEnv("INTAKE_LABEL", "INBOX"),
		IntakeIntervalSec: getEnvInt("INTAKE_INTERVAL_SEC", 60),
		IntakeFetchMax:    getEnvInt("INTAKE_FETCH_MAX", 20),
	}

	return cfg, nil
}

func (c Config) Require(name, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("missing required env var: %s", name)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvBool(key string, fallback bool) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(key, "")))
	if value == "" {
		return fallback
	}
	if value == "1" || value == "true" || value == "yes" || value == "on" {
		return true
	}
	if value == "0" || value == "false" || value == "no" || value == "off" {
		return false
	}
	return fallback
}
