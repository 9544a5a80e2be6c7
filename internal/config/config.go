package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const envPrefix = "STORYPARSE_"

type Config struct {
	Story           string `toml:"story"`
	LogLevel        string `toml:"log_level"`
	Prompt          string `toml:"prompt"`
	Color           bool   `toml:"color"`
	Watch           bool   `toml:"watch"`
	MaxPromptRounds int    `toml:"max_prompt_rounds"`
}

func Default() Config {
	return Config{
		LogLevel: "warn",
		Prompt:   "> ",
		Color:    true,
	}
}

var logLevels = []string{"debug", "info", "warn", "error"}

func (c *Config) normalize() error {
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
	valid := false
	for _, l := range logLevels {
		if c.LogLevel == l {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("log_level %q: want one of %s", c.LogLevel, strings.Join(logLevels, ", "))
	}
	if c.Prompt == "" {
		c.Prompt = "> "
	}
	if c.MaxPromptRounds < 0 {
		return fmt.Errorf("max_prompt_rounds %d: must not be negative", c.MaxPromptRounds)
	}
	return nil
}

// Load reads the config file at path (the default location when empty),
// then applies STORYPARSE_* environment overrides. A missing file yields the
// defaults.
func Load(path string) (Config, error) {
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return Config{}, err
		}
		path = p
	}
	cfg := Default()
	_, err := toml.DecodeFile(path, &cfg)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.normalize(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=value pairs from path into the environment without
// overriding variables already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v, ok := os.LookupEnv(envPrefix + "STORY"); ok {
		c.Story = v
	}
	if v, ok := os.LookupEnv(envPrefix + "LOG_LEVEL"); ok {
		c.LogLevel = v
	}
	if v, ok := os.LookupEnv(envPrefix + "PROMPT"); ok {
		c.Prompt = v
	}
	for name, dst := range map[string]*bool{"COLOR": &c.Color, "WATCH": &c.Watch} {
		v, ok := os.LookupEnv(envPrefix + name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = b
	}
	if v, ok := os.LookupEnv(envPrefix + "MAX_PROMPT_ROUNDS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_PROMPT_ROUNDS: %w", envPrefix, err)
		}
		c.MaxPromptRounds = n
	}
	return nil
}

// Save writes cfg to path (the default location when empty) through a temp
// file and rename, so a crash never leaves a half-written config.
func Save(path string, cfg Config) error {
	if err := cfg.normalize(); err != nil {
		return err
	}
	if path == "" {
		p, err := ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "config-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	cleanup = false
	return nil
}
