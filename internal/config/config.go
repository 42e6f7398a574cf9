package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file at the project root.
const FileName = "tally.yaml"

// Environment variables that override file values.
const (
	EnvCompanyID      = "TALLY_COMPANY_ID"
	EnvBankFormat     = "TALLY_BANK_FORMAT"
	EnvSkipDuplicates = "TALLY_SKIP_DUPLICATES"
)

// Config represents the top-level tally.yaml configuration.
type Config struct {
	Business BusinessConfig `yaml:"business"`
	Currency string         `yaml:"currency"`
	Import   ImportConfig   `yaml:"import"`
	Git      GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity whose books these are.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
	CompanyID  string `yaml:"company_id"`
}

// ImportConfig holds defaults for bank file imports.
type ImportConfig struct {
	SkipDuplicates bool `yaml:"skip_duplicates"`
	// BankFormat forces a bank profile id; empty means detect.
	BankFormat string `yaml:"bank_format,omitempty"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a tally.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// LoadProject reads <root>/tally.yaml and applies environment overrides
// from the process and from <root>/.env.
func LoadProject(root string) (*Config, error) {
	cfg, err := Load(filepath.Join(root, FileName))
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, root); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Currency: "USD",
		Import: ImportConfig{
			SkipDuplicates: true,
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Tally",
			AuthorEmail: "tally@localhost",
		},
	}
}

// ApplyEnv overrides cfg with TALLY_* variables. Values set in the process
// environment take precedence over <root>/.env, which is optional.
func ApplyEnv(cfg *Config, root string) error {
	vars, err := godotenv.Read(filepath.Join(root, ".env"))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reading .env: %w", err)
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := vars[key]
		return v, ok
	}

	if v, ok := lookup(EnvCompanyID); ok {
		cfg.Business.CompanyID = v
	}
	if v, ok := lookup(EnvBankFormat); ok {
		cfg.Import.BankFormat = v
	}
	if v, ok := lookup(EnvSkipDuplicates); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parsing %s=%q: %w", EnvSkipDuplicates, v, err)
		}
		cfg.Import.SkipDuplicates = b
	}
	return nil
}
