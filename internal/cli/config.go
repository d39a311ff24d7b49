package cli

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Environment variables consulted for flag defaults. Flags always win.
const (
	envManifest = "LANGCHECK_MANIFEST"
	envJobs     = "LANGCHECK_JOBS"
	envTimeout  = "LANGCHECK_TIMEOUT"
	envDB       = "LANGCHECK_DB"
)

// envConfig holds flag defaults taken from the environment.
type envConfig struct {
	Manifest string
	Jobs     int
	Timeout  time.Duration
	DB       string
}

// lookupEnv is swapped in tests.
var lookupEnv = os.Getenv

func loadEnvConfig() envConfig {
	return envConfig{
		Manifest: envOrDefault(envManifest, ""),
		Jobs:     parseJobs(lookupEnv(envJobs)),
		Timeout:  parseTimeout(lookupEnv(envTimeout)),
		DB:       envOrDefault(envDB, ""),
	}
}

func envOrDefault(key, fallback string) string {
	if value := strings.TrimSpace(lookupEnv(key)); value != "" {
		return value
	}
	return fallback
}

func parseJobs(raw string) int {
	if raw == "" {
		return 1
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value <= 0 {
		return 1
	}
	return value
}

// parseTimeout accepts a Go duration ("30s") or bare seconds ("30").
func parseTimeout(raw string) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}
