package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dpshade/quick-hb/internal/models"
	"github.com/dpshade/quick-hb/internal/selector"
)

// FileName is the config file looked up inside the library root
const FileName = "config.yaml"

// Config holds the user settings of a library
type Config struct {
	RootDir         string `yaml:"root_dir,omitempty"`
	DefaultGender   string `yaml:"default_gender"`
	SectionPolicy   string `yaml:"section_policy"`
	NumberedHeaders bool   `yaml:"numbered_headers"`
	Port            int    `yaml:"port"`
	CacheSize       int    `yaml:"cache_size"`
	GitSync         bool   `yaml:"git_sync"`

	path string
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		DefaultGender:   string(models.Masculine),
		SectionPolicy:   selector.PolicyWildcard.String(),
		NumberedHeaders: true,
		Port:            8080,
		CacheSize:       256,
	}
}

// DefaultRoot returns the library root used when nothing overrides it
func DefaultRoot() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".quick-hb"), nil
}

// Load reads the configuration. A .env file in the working directory is
// loaded first, then <root>/config.yaml, then QUICK_HB_* environment
// variables override individual fields. A missing config file is not an error.
func Load() (*Config, error) {
	// Load .env if exists
	_ = godotenv.Load()

	root := os.Getenv("QUICK_HB_DIR")
	if root == "" {
		var err error
		if root, err = DefaultRoot(); err != nil {
			return nil, err
		}
	}
	return LoadFrom(root)
}

// LoadFrom reads <root>/config.yaml and applies environment overrides
func LoadFrom(root string) (*Config, error) {
	cfg := Default()
	cfg.path = filepath.Join(root, FileName)

	data, err := os.ReadFile(cfg.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", cfg.path, err)
		}
	}
	if cfg.RootDir == "" {
		cfg.RootDir = root
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if dir := os.Getenv("QUICK_HB_DIR"); dir != "" {
		c.RootDir = dir
	}
	if g := os.Getenv("QUICK_HB_GENDER"); g != "" {
		c.DefaultGender = g
	}
	if p := os.Getenv("QUICK_HB_SECTION_POLICY"); p != "" {
		c.SectionPolicy = p
	}
	if v := os.Getenv("QUICK_HB_GIT_SYNC"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid QUICK_HB_GIT_SYNC %q: %w", v, err)
		}
		c.GitSync = b
	}
	if port := os.Getenv("QUICK_HB_PORT"); port != "" {
		n, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid QUICK_HB_PORT %q: %w", port, err)
		}
		c.Port = n
	}
	return nil
}

// Validate checks that every field holds a usable value
func (c *Config) Validate() error {
	if _, err := models.ParseGender(c.DefaultGender); err != nil {
		return fmt.Errorf("invalid default_gender: %w", err)
	}
	if _, err := selector.ParsePolicy(c.SectionPolicy); err != nil {
		return fmt.Errorf("invalid section_policy: %w", err)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.CacheSize <= 0 {
		return fmt.Errorf("cache_size must be positive, got %d", c.CacheSize)
	}
	return nil
}

// Gender returns the parsed default gender, masculine if unset or invalid
func (c *Config) Gender() models.Gender {
	g, err := models.ParseGender(c.DefaultGender)
	if err != nil {
		return models.Masculine
	}
	return g
}

// Policy returns the parsed section policy
func (c *Config) Policy() selector.Policy {
	p, _ := selector.ParsePolicy(c.SectionPolicy)
	return p
}

// Path returns the config file location
func (c *Config) Path() string {
	return c.path
}

// Save writes the configuration to its file
func (c *Config) Save() error {
	if c.path == "" {
		c.path = filepath.Join(c.RootDir, FileName)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration: %w", err)
	}

	return os.WriteFile(c.path, data, 0644)
}
