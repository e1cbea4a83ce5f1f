// Package config defines the configuration schema for docwright.
//
// JSON keys use camelCase. Environment variables (and a .env file, when
// present) override the file; see ApplyEnv.
package config

import (
	"os"
	"path/filepath"
)

// CompletionConfig points at the tool-calling completion endpoint, usually a
// docwright relay.
type CompletionConfig struct {
	URL            string            `json:"url"`
	ExtraHeaders   map[string]string `json:"extraHeaders,omitempty"`
	TimeoutSeconds int               `json:"timeoutSeconds"`
}

// DocAIConfig configures the model that interprets action instructions
// against the document.
type DocAIConfig struct {
	APIKey         string  `json:"apiKey"`
	APIBase        string  `json:"apiBase,omitempty"`
	Model          string  `json:"model"`
	Temperature    float64 `json:"temperature"`
	HighlightColor string  `json:"highlightColor"`
}

// RelayConfig configures `docwright relay`.
type RelayConfig struct {
	APIKey   string `json:"apiKey"`
	Upstream string `json:"upstream"`
	Model    string `json:"model"`
	Port     int    `json:"port"`
}

// ServerConfig configures the session web app served by `docwright serve`.
type ServerConfig struct {
	Port int `json:"port"`
}

// DocumentConfig names the working document.
type DocumentConfig struct {
	Path     string `json:"path"`
	Author   string `json:"author"`
	Autosave string `json:"autosave"` // cron spec; empty disables
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file,omitempty"`
}

// Config is the root configuration object, loaded from ~/.docwright/config.json.
type Config struct {
	Completion CompletionConfig `json:"completion"`
	DocAI      DocAIConfig      `json:"docai"`
	Relay      RelayConfig      `json:"relay"`
	Server     ServerConfig     `json:"server"`
	Document   DocumentConfig   `json:"document"`
	Log        LogConfig        `json:"log"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Completion: CompletionConfig{TimeoutSeconds: 120},
		DocAI: DocAIConfig{
			Model:          "gpt-4o-mini",
			Temperature:    0.2,
			HighlightColor: "yellow",
		},
		Relay: RelayConfig{
			Upstream: "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
			Port:     8080,
		},
		Server: ServerConfig{Port: 18790},
		Document: DocumentConfig{
			Path:     "~/.docwright/workspace/document.md",
			Author:   "docwright",
			Autosave: "@every 30s",
		},
		Log: LogConfig{Level: "info"},
	}
}

// LocalRelayURL is the completion endpoint of a relay started with the
// default settings on this machine.
const LocalRelayURL = "http://localhost:8080/v1/chat/completions"

// StarterConfig is what `docwright onboard` writes: the defaults pointed at a
// local relay. DefaultConfig leaves the endpoint unset.
func StarterConfig() Config {
	cfg := DefaultConfig()
	cfg.Completion.URL = LocalRelayURL
	return cfg
}

// DocumentPath returns the expanded path of the working document.
func (c *Config) DocumentPath() string {
	return expandHome(c.Document.Path)
}

// LogFile returns the expanded path of the log file sink, or "".
func (c *Config) LogFile() string {
	return expandHome(c.Log.File)
}

func expandHome(p string) string {
	if len(p) >= 2 && p[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
