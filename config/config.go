// Package config implements persistence of uilingo CLI defaults
// (profile, region, model, languages) as a YAML file.
//
// The file lives in the XDG config directory:
//
//	$XDG_CONFIG_HOME/uilingo/config.yaml  (default: ~/.config/uilingo/config.yaml)
//
// The core translation client does not read this file; it is owned
// entirely by the CLI layer.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	configDirName = "uilingo"
	fileName      = "config.yaml"
)

// Config holds the persisted CLI defaults.
type Config struct {
	// Profile is the credential profile name to use.
	Profile string `yaml:"profile"`
	// Region selects the service region (optional).
	Region string `yaml:"region,omitempty"`
	// Model is the default model identifier.
	Model string `yaml:"model,omitempty"`
	// SourceLanguage is the default source language code ("auto" = detect).
	SourceLanguage string `yaml:"source_language,omitempty"`
	// TargetLanguage is the default target language code.
	TargetLanguage string `yaml:"target_language,omitempty"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Profile:        "default",
		SourceLanguage: "auto",
	}
}

// configDir returns the XDG config directory for uilingo.
// Respects $XDG_CONFIG_HOME (falls back to ~/.config).
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, configDirName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", configDirName), nil
}

// FilePath returns the config.yaml path, or empty string on error.
func FilePath() string {
	dir, err := configDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, fileName)
}

// Load reads the config file. A missing file is not an error: the
// defaults are returned instead. A malformed file is an error, so a
// typo does not silently reset the user's settings.
func Load() (*Config, error) {
	path := FilePath()
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.Profile == "" {
		cfg.Profile = "default"
	}
	return cfg, nil
}

// Save writes the config file, creating the parent directory if needed.
func Save(cfg *Config) error {
	path := FilePath()
	if path == "" {
		return fmt.Errorf("cannot determine config file path")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
