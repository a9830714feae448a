package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Required environment variables. Startup fails if any of them is unset.
const (
	EnvAPIKey     = "OPENAI_API_KEY"
	EnvEndpoint   = "AZURE_OPENAI_ENDPOINT"
	EnvDeployment = "AZURE_OPENAI_DEPLOYMENT"
	EnvAPIVersion = "AZURE_OPENAI_API_VERSION"
)

var requiredVars = []string{EnvAPIKey, EnvEndpoint, EnvDeployment, EnvAPIVersion}

const DefaultPort = "3000"

type Config struct {
	// Server
	Port string
	Env  string

	// Azure OpenAI
	APIKey          string
	Endpoint        string
	Deployment      string
	APIVersion      string
	UpstreamTimeout time.Duration

	// Requests
	MaxBodyBytes int64

	// Logging
	LogLevel string
}

// MissingEnvError lists every required variable that was not set.
type MissingEnvError struct {
	Keys []string
}

func (e *MissingEnvError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

// Load reads configuration from the environment, after loading envFiles
// (or ./.env when none are given) if they exist. Values already present in
// the process environment win over file values.
func Load(envFiles ...string) (*Config, error) {
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	var missing []string
	for _, key := range requiredVars {
		if os.Getenv(key) == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingEnvError{Keys: missing}
	}

	cfg := &Config{
		Port:            getEnvOrDefault("PORT", DefaultPort),
		Env:             getEnvOrDefault("ENV", "development"),
		APIKey:          os.Getenv(EnvAPIKey),
		Endpoint:        strings.TrimRight(os.Getenv(EnvEndpoint), "/"),
		Deployment:      os.Getenv(EnvDeployment),
		APIVersion:      os.Getenv(EnvAPIVersion),
		UpstreamTimeout: time.Duration(getEnvAsIntOrDefault("UPSTREAM_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxBodyBytes:    int64(getEnvAsIntOrDefault("MAX_BODY_BYTES", 100*1024)),
		LogLevel:        strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
	}

	return cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%s", c.Port)
}

func loadEnvFiles(files []string) error {
	if len(files) == 0 {
		// .env is optional
		godotenv.Load()
		return nil
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return fmt.Errorf("loading env file %s: %w", f, err)
		}
	}
	return nil
}

func getEnvOrDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func getEnvAsIntOrDefault(key string, defaultVal int) int {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return defaultVal
	}
	return n
}
