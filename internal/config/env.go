package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file.
const (
	EnvCompletionURL = "DOCWRIGHT_COMPLETION_URL"
	EnvOpenAIKey     = "OPENAI_API_KEY"
	EnvOpenAIBase    = "OPENAI_BASE_URL"
	EnvOpenAIModel   = "OPENAI_MODEL"
	EnvPort          = "PORT"
	EnvDocAIURL      = "DOCWRIGHT_DOCAI_URL"
	EnvDocAIKey      = "DOCWRIGHT_DOCAI_KEY"
)

// LoadDotEnv loads the given .env files (./.env when none are named) into
// the process environment. Variables already set are not overwritten and
// missing files are skipped.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return err
		}
		slog.Debug("config: loaded env file", "path", f)
	}
	return nil
}

// ApplyEnv overlays environment variables onto cfg. lookup defaults to
// os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvCompletionURL); ok {
		cfg.Completion.URL = v
	}
	if v, ok := get(EnvOpenAIKey); ok {
		cfg.Relay.APIKey = v
		if cfg.DocAI.APIKey == "" {
			cfg.DocAI.APIKey = v
		}
	}
	if v, ok := get(EnvOpenAIBase); ok {
		cfg.Relay.Upstream = v
	}
	if v, ok := get(EnvOpenAIModel); ok {
		cfg.Relay.Model = v
	}
	if v, ok := get(EnvPort); ok {
		if port, err := strconv.Atoi(v); err == nil && port > 0 {
			cfg.Relay.Port = port
		} else {
			slog.Warn("config: ignoring invalid port", "env", EnvPort, "value", v)
		}
	}
	if v, ok := get(EnvDocAIURL); ok {
		cfg.DocAI.APIBase = v
	}
	if v, ok := get(EnvDocAIKey); ok {
		cfg.DocAI.APIKey = v
	}
}

// Resolve loads the config file at path, then .env, then the environment.
func Resolve(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := LoadDotEnv(); err != nil {
		slog.Warn("config: could not load .env", "err", err)
	}
	ApplyEnv(cfg, nil)
	return cfg, nil
}
