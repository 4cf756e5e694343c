// Package config loads and persists ReconAI configuration. Values come from
// a yaml file with environment-variable overrides applied on load.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type GeneralConfig struct {
	OutputDir string `yaml:"output_dir"`
	LogLevel  string `yaml:"log_level"`
}

type AIConfig struct {
	Provider    string            `yaml:"provider"`
	Model       string            `yaml:"model"`
	Temperature float64           `yaml:"temperature"`
	MaxTokens   int               `yaml:"max_tokens"`
	APIKeys     map[string]string `yaml:"api_keys"`
}

type ToolConfig struct {
	Enabled        bool     `yaml:"enabled"`
	DefaultFlags   []string `yaml:"default_flags"`
	TimeoutSeconds int      `yaml:"timeout"`
}

type Config struct {
	General GeneralConfig         `yaml:"general"`
	AI      AIConfig              `yaml:"ai"`
	Tools   map[string]ToolConfig `yaml:"tools"`
}

// Default returns the built-in configuration used when no file exists.
func Default() *Config {
	return &Config{
		General: GeneralConfig{
			OutputDir: "output",
			LogLevel:  "info",
		},
		AI: AIConfig{
			Provider:    "openai",
			Model:       "gpt-4",
			Temperature: 0.3,
			MaxTokens:   2000,
			APIKeys:     make(map[string]string),
		},
		Tools: map[string]ToolConfig{
			"bbot": {
				Enabled:      true,
				DefaultFlags: []string{"subdomain-enum"},
			},
		},
	}
}

// Path returns the config file location, creating its directory if needed.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".reconai")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load reads the config from the default location and applies environment
// overrides. A missing file yields the defaults.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a config file from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, err
	}

	if cfg.AI.APIKeys == nil {
		cfg.AI.APIKeys = make(map[string]string)
	}
	if cfg.Tools == nil {
		cfg.Tools = make(map[string]ToolConfig)
	}
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config with key-safe permissions.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	// 0600: the file carries API keys.
	return os.WriteFile(path, data, 0o600)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.APIKeys["openai"] = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.APIKeys["gemini"] = v
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.AI.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("AI_MODEL"); v != "" {
		c.AI.Model = v
	}
	if v := os.Getenv("AI_TEMPERATURE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.AI.Temperature = f
		}
	}
	if v := os.Getenv("AI_MAX_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.AI.MaxTokens = n
		}
	}
	if v := os.Getenv("RECONAI_OUTPUT_DIR"); v != "" {
		c.General.OutputDir = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.General.LogLevel = v
	}
	if v := os.Getenv("BBOT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			tc := c.Tools["bbot"]
			tc.TimeoutSeconds = n
			c.Tools["bbot"] = tc
		}
	}
}

// APIKey returns the key for a provider, empty when unset.
func (c *Config) APIKey(provider string) string {
	return c.AI.APIKeys[provider]
}

// SetAPIKey stores a provider key in memory; call Save to persist.
func (c *Config) SetAPIKey(provider, key string) {
	if c.AI.APIKeys == nil {
		c.AI.APIKeys = make(map[string]string)
	}
	c.AI.APIKeys[provider] = key
}

// IsToolEnabled reports whether a tool is switched on in config.
func (c *Config) IsToolEnabled(name string) bool {
	return c.Tools[name].Enabled
}

// Tool returns the configuration block for a tool, zero-valued when absent.
func (c *Config) Tool(name string) ToolConfig {
	return c.Tools[name]
}

// ValidationResult carries the outcome of a configuration check.
type ValidationResult struct {
	Valid    bool
	Warnings []string
	Errors   []string
}

// Validate checks the configuration for usability without failing hard:
// a missing API key only disables analysis.
func (c *Config) Validate() ValidationResult {
	res := ValidationResult{Valid: true}

	if c.APIKey(c.AI.Provider) == "" {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("No API key configured for provider %q (AI analysis will be disabled)", c.AI.Provider))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("AI temperature %.2f outside recommended range (0-2)", c.AI.Temperature))
	}
	if c.AI.MaxTokens <= 0 || c.AI.MaxTokens > 4000 {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("AI max_tokens %d outside reasonable range", c.AI.MaxTokens))
	}
	for name, tc := range c.Tools {
		if tc.Enabled && tc.TimeoutSeconds < 0 {
			res.Errors = append(res.Errors, fmt.Sprintf("Invalid timeout for %s: %d", name, tc.TimeoutSeconds))
			res.Valid = false
		}
	}
	if err := os.MkdirAll(c.General.OutputDir, 0o755); err != nil {
		res.Errors = append(res.Errors, fmt.Sprintf("Cannot create output directory: %v", err))
		res.Valid = false
	}
	return res
}

// CreateExample writes a commented starter config next to the real one and
// returns its path.
func CreateExample() (string, error) {
	path, err := Path()
	if err != nil {
		return "", err
	}
	example := filepath.Join(filepath.Dir(path), "config.example.yaml")

	cfg := Default()
	cfg.AI.APIKeys = map[string]string{
		"openai": "your_openai_api_key_here",
		"gemini": "your_gemini_api_key_here",
	}
	cfg.Tools["bbot"] = ToolConfig{
		Enabled:        true,
		DefaultFlags:   []string{"subdomain-enum"},
		TimeoutSeconds: 300,
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(example, data, 0o600); err != nil {
		return "", err
	}
	return example, nil
}
