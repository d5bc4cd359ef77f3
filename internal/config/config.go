package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/lromero/covid-data-pipeline/internal/gitpub"
)

var validate = validator.New()

// AppConfig is the process-wide configuration, read once at startup.
type AppConfig struct {
	// Data source.
	APIBaseURL  string        `validate:"required,url"`
	HTTPTimeout time.Duration `validate:"required"`

	// Output snapshot, relative to the repository work tree.
	OutputPath  string `validate:"required"`
	CommitLabel string `validate:"required"`

	// SkipPublish disables the git publish stage (dry runs, local testing).
	SkipPublish bool

	// Git publishing; required unless SkipPublish is set.
	GitRemoteURL string `validate:"required_unless=SkipPublish true"`
	GitToken     string
	GitName      string `validate:"required_unless=SkipPublish true"`
	GitEmail     string `validate:"required_unless=SkipPublish true,omitempty,email"`

	// Schedule enables periodic mode when non-zero; zero means run once and
	// exit.
	Schedule time.Duration

	// Status server (scheduled mode only).
	Port            string
	RunHistoryLimit int
}

// GitConfig returns the publish collaborator's configuration slice.
func (c *AppConfig) GitConfig() gitpub.Config {
	return gitpub.Config{
		WorkDir:   ".",
		RemoteURL: c.GitRemoteURL,
		Token:     c.GitToken,
		Name:      c.GitName,
		Email:     c.GitEmail,
	}
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	cfg := &AppConfig{}

	cfg.APIBaseURL = getenvDefault("COVID_API_BASE_URL", "https://disease.sh")
	cfg.OutputPath = getenvDefault("OUTPUT_PATH", "data/raw/covid_historical_data.parquet")
	cfg.CommitLabel = getenvDefault("COMMIT_LABEL", "COVID-19 data update")

	timeout, err := getenvDuration("HTTP_TIMEOUT", "30s")
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.SkipPublish = getenvBool("SKIP_PUBLISH", false)
	cfg.GitRemoteURL = os.Getenv("GIT_REMOTE_URL")
	cfg.GitToken = os.Getenv("GITHUB_TOKEN")
	cfg.GitName = os.Getenv("GIT_NAME")
	cfg.GitEmail = os.Getenv("GIT_EMAIL")

	// Empty RUN_SCHEDULE keeps the default run-once behaviour.
	if s := os.Getenv("RUN_SCHEDULE"); s != "" {
		schedule, err := time.ParseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid RUN_SCHEDULE: %w", err)
		}
		cfg.Schedule = schedule
	}

	cfg.Port = getenvDefault("PORT", "8080")
	cfg.RunHistoryLimit = getenvInt("RUN_HISTORY_LIMIT", 50)

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getenvDuration(key, def string) (time.Duration, error) {
	return time.ParseDuration(getenvDefault(key, def))
}
