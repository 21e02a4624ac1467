// Package config reads server and client settings from the environment.
// A .env file, when present, is loaded first and never overrides variables
// that are already set.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/robalobadob/wordsearch/internal/puzzle"
	"github.com/robalobadob/wordsearch/internal/words"
)

// Config is the full set of settings.
type Config struct {
	Port      string
	LogLevel  zerolog.Level
	DBPath    string
	Secure    bool // NODE_ENV=production
	ClientURL string

	JWTSecret      string
	JWTExpiresIn   time.Duration
	CookieName     string
	AnonCookie     string
	DailySalt      string
	GridSize       int
	WordsFile      string
	WordsAPIURL    string
	FetchTimeout   time.Duration
	GCPProjectID   string
	GCPRegion      string
	RequestTimeout time.Duration
	GameTTL        time.Duration // idle time before a live game is evicted
}

// Load reads .env (if any) and the process environment.
func Load() Config {
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds a Config from a lookup function, applying defaults.
func FromEnv(getenv func(string) string) Config {
	get := func(k, def string) string {
		if v := getenv(k); v != "" {
			return v
		}
		return def
	}

	level, err := zerolog.ParseLevel(get("LOG_LEVEL", "info"))
	if err != nil {
		level = zerolog.InfoLevel
	}

	return Config{
		Port:           get("PORT", "5175"),
		LogLevel:       level,
		DBPath:         get("DB_PATH", "./data/wordsearch.db"),
		Secure:         getenv("NODE_ENV") == "production",
		ClientURL:      get("CLIENT_ORIGIN", "http://localhost:5173"),
		JWTSecret:      get("JWT_SECRET", "dev_secret_change_me"),
		JWTExpiresIn:   time.Duration(atoi(getenv("JWT_EXPIRES_DAYS"), 14)) * 24 * time.Hour,
		CookieName:     get("COOKIE_NAME", "wordsearch_token"),
		AnonCookie:     get("ANON_COOKIE_NAME", "wordsearch_anon"),
		DailySalt:      get("DAILY_SALT", "wordsearch-daily"),
		GridSize:       clamp(atoi(getenv("GRID_SIZE"), puzzle.DefaultSize), puzzle.MaxWordLen, 26),
		WordsFile:      getenv("WORDS_FILE"),
		WordsAPIURL:    get("WORDS_API_URL", words.DefaultWordsAPI),
		FetchTimeout:   duration(getenv("WORDS_FETCH_TIMEOUT"), words.DefaultTimeout),
		GCPProjectID:   getenv("GCP_PROJECT_ID"),
		GCPRegion:      get("GCP_REGION", "europe-west1"),
		RequestTimeout: duration(getenv("REQUEST_TIMEOUT"), 10*time.Second),
		GameTTL:        duration(getenv("GAME_TTL"), 2*time.Hour),
	}
}

func atoi(s string, def int) int {
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return def
}

func duration(s string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d
	}
	return def
}

func clamp(n, lo, hi int) int {
	return max(lo, min(n, hi))
}
