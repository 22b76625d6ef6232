// Package config loads process configuration from configs/.env, the Okta
// client YAML file and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrMissing = errors.New("missing required config")

type Config struct {
	Port           string
	LogLevel       string
	HandlerTimeout time.Duration
	DatabaseURL    string

	Slack  Slack
	Okta   Okta
	OpenAI OpenAI
}

type Slack struct {
	BotToken      string
	SigningSecret string
	APIBaseURL    string
}

type Okta struct {
	OrgURL    string `yaml:"orgUrl"`
	Token     string `yaml:"token"`
	PageLimit int    `yaml:"pageLimit"`
}

type OpenAI struct {
	APIKey string
	Model  string
}

type oktaFile struct {
	Okta struct {
		Client Okta `yaml:"client"`
	} `yaml:"okta"`
}

// Load reads envPath (optional) into the environment, then oktaPath
// (optional), and applies environment overrides.
func Load(envPath, oktaPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", envPath, err)
	}

	okta, err := loadOkta(oktaPath)
	if err != nil {
		return nil, err
	}
	if v := os.Getenv("OKTA_CLIENT_ORGURL"); v != "" {
		okta.OrgURL = v
	}
	if v := os.Getenv("OKTA_CLIENT_TOKEN"); v != "" {
		okta.Token = v
	}
	if v := os.Getenv("OKTA_PAGE_LIMIT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: OKTA_PAGE_LIMIT: %w", err)
		}
		okta.PageLimit = n
	}

	cfg := &Config{
		Port:        getenv("PORT", "3000"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Slack: Slack{
			BotToken:      strings.TrimSpace(os.Getenv("SLACK_BOT_TOKEN")),
			SigningSecret: strings.TrimSpace(os.Getenv("SLACK_SIGNING_SECRET")),
			APIBaseURL:    getenv("SLACK_API_URL", "https://slack.com/api"),
		},
		Okta: okta,
		OpenAI: OpenAI{
			APIKey: os.Getenv("OPENAI_API_KEY"),
			Model:  os.Getenv("OPENAI_MODEL"),
		},
	}

	cfg.HandlerTimeout, err = time.ParseDuration(getenv("HANDLER_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("config: HANDLER_TIMEOUT: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	var missing []string
	if c.Slack.BotToken == "" {
		missing = append(missing, "SLACK_BOT_TOKEN")
	}
	if c.Okta.OrgURL == "" {
		missing = append(missing, "okta.client.orgUrl")
	}
	if c.Okta.Token == "" {
		missing = append(missing, "okta.client.token")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}
	return nil
}

func loadOkta(path string) (Okta, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Okta{}, nil
	}
	if err != nil {
		return Okta{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f oktaFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return Okta{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return f.Okta.Client, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
