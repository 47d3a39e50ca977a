package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Load reads the .env file specified by REASONGRAPH_ENV (or .env by default),
// then loads the corresponding .secret file if it exists.
// All config is flat env vars read via os.Getenv after loading.
func Load() error {
	envFile := os.Getenv("REASONGRAPH_ENV")
	if envFile == "" {
		envFile = ".env"
	}

	// Load main env file (ignore error if file doesn't exist)
	_ = godotenv.Load(envFile)

	// Load secret sidecar if it exists
	_ = godotenv.Load(envFile + ".secret")

	return nil
}

func ServerPort() int {
	port, err := strconv.Atoi(os.Getenv("SERVER_PORT"))
	if err != nil {
		return 8080
	}
	return port
}

func ServerAddr() string {
	return fmt.Sprintf(":%d", ServerPort())
}

// DatabaseURL is optional. Empty means the engine runs purely in memory.
func DatabaseURL() string {
	return os.Getenv("DATABASE_URL")
}

// PropagationMaxDepth bounds how far one update walks up the graph.
// Defaults to 100 if not set.
func PropagationMaxDepth() int {
	d, err := strconv.Atoi(os.Getenv("PROPAGATION_MAX_DEPTH"))
	if err != nil || d <= 0 {
		return 100
	}
	return d
}

// PropagationEpsilon suppresses recomputation below this score delta.
// Defaults to 0.001 if not set.
func PropagationEpsilon() float64 {
	e, err := strconv.ParseFloat(os.Getenv("PROPAGATION_EPSILON"), 64)
	if err != nil || e <= 0 {
		return 0.001
	}
	return e
}

// ScoreFlushInterval controls the write-behind score snapshot cadence.
// Defaults to 30s if not set.
func ScoreFlushInterval() time.Duration {
	d, err := time.ParseDuration(os.Getenv("SCORE_FLUSH_INTERVAL"))
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// SimilarityCacheTTL controls how long similarity lookups are memoized.
// Defaults to 10m if not set.
func SimilarityCacheTTL() time.Duration {
	d, err := time.ParseDuration(os.Getenv("SIMILARITY_CACHE_TTL"))
	if err != nil || d <= 0 {
		return 10 * time.Minute
	}
	return d
}

// RateLimitRPS returns requests per second limit.
// Defaults to 100 if not set.
func RateLimitRPS() float64 {
	rps, err := strconv.ParseFloat(os.Getenv("RATE_LIMIT_RPS"), 64)
	if err != nil || rps <= 0 {
		return 100
	}
	return rps
}

// RateLimitBurst returns the burst size for rate limiting.
// Defaults to 20 if not set.
func RateLimitBurst() int {
	burst, err := strconv.Atoi(os.Getenv("RATE_LIMIT_BURST"))
	if err != nil || burst <= 0 {
		return 20
	}
	return burst
}

// LogLevel returns the log level (debug, info, warn, error).
// Defaults to "info" if not set.
func LogLevel() string {
	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		return "info"
	}
	return level
}
