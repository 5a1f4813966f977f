// Package config loads run settings from .docsync.yaml and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/oukeidos/docsync/internal/apperrors"
	"github.com/oukeidos/docsync/internal/docstore"
	"github.com/oukeidos/docsync/internal/language"
	"github.com/oukeidos/docsync/internal/metadata"
	"github.com/oukeidos/docsync/internal/translate"
	"gopkg.in/yaml.v3"
)

const (
	DefaultFile           = ".docsync.yaml"
	DefaultOriginRoot     = "origin-src/content"
	DefaultTranslatedRoot = "src/content"
	DefaultBaseBranch     = "master-ko"
	DefaultRemote         = "origin"
	DefaultSourceLang     = "en"

	DefaultMaxFiles = 5
	MinMaxFiles     = 1
	MaxMaxFiles     = 50

	DefaultMaxOutputTokens = 16384
	MaxOutputTokensCeiling = 65536
)

// FailurePolicy decides what a backend or publish error does to the rest of
// the batch.
type FailurePolicy string

const (
	// PolicyHalt stops the run at the first failing document.
	PolicyHalt FailurePolicy = "halt"
	// PolicyContinue records the failure and moves on.
	PolicyContinue FailurePolicy = "continue"
)

type Config struct {
	OriginRoot     string `yaml:"origin_root"`
	TranslatedRoot string `yaml:"translated_root"`
	Extension      string `yaml:"extension"`
	RulesPath      string `yaml:"rules"`

	Provider        metadata.Provider `yaml:"provider"`
	Model           string            `yaml:"model"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`

	SourceLang string `yaml:"source_lang"`
	TargetLang string `yaml:"target_lang"`
	Project    string `yaml:"project"`

	// Repository is "owner/repo"; empty falls back to GITHUB_REPOSITORY.
	Repository string `yaml:"repository"`
	APIURL     string `yaml:"github_api_url"`
	BaseBranch string `yaml:"base_branch"`
	Remote     string `yaml:"remote"`

	MaxFiles      int           `yaml:"max_files"`
	FailurePolicy FailurePolicy `yaml:"failure_policy"`

	LogPath     string `yaml:"log_file"`
	MetricsPath string `yaml:"metrics_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		OriginRoot:      DefaultOriginRoot,
		TranslatedRoot:  DefaultTranslatedRoot,
		Extension:       docstore.DefaultExtension,
		RulesPath:       translate.DefaultRulesPath,
		Provider:        metadata.ProviderGemini,
		MaxOutputTokens: DefaultMaxOutputTokens,
		SourceLang:      DefaultSourceLang,
		TargetLang:      language.DefaultTarget,
		BaseBranch:      DefaultBaseBranch,
		Remote:          DefaultRemote,
		MaxFiles:        DefaultMaxFiles,
		FailurePolicy:   PolicyHalt,
	}
}

// LoadEnv reads KEY=VALUE pairs from the given files into the process
// environment. Variables that are already set win; missing files are skipped.
func LoadEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return apperrors.New(apperrors.KindConfig, fmt.Sprintf("failed to load %s", p), err)
		}
	}
	return nil
}

// Load reads path on top of Default. A missing file yields the defaults
// unless required is set. ${VAR} references are expanded before parsing.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, apperrors.New(apperrors.KindConfig, fmt.Sprintf("cannot read config file %s", path), err)
	}
	if err := decode(bytes.NewReader([]byte(os.ExpandEnv(string(data)))), &cfg); err != nil {
		return cfg, apperrors.New(apperrors.KindConfig, fmt.Sprintf("invalid config file %s: %v", path, err), err)
	}
	return cfg, nil
}

func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ClampMaxFiles bounds the per-run document ceiling.
func ClampMaxFiles(value int) (int, bool) {
	if value < MinMaxFiles {
		return MinMaxFiles, true
	}
	if value > MaxMaxFiles {
		return MaxMaxFiles, true
	}
	return value, false
}

// Normalize applies safe bounds and canonical forms, returning a note for
// every adjustment.
func (c Config) Normalize() (Config, []string) {
	var notes []string
	if clamped, changed := ClampMaxFiles(c.MaxFiles); changed {
		notes = append(notes, fmt.Sprintf("max-files clamped from %d to %d (range %d-%d)", c.MaxFiles, clamped, MinMaxFiles, MaxMaxFiles))
		c.MaxFiles = clamped
	}
	if c.MaxOutputTokens <= 0 {
		c.MaxOutputTokens = DefaultMaxOutputTokens
	} else if c.MaxOutputTokens > MaxOutputTokensCeiling {
		notes = append(notes, fmt.Sprintf("max-output-tokens clamped from %d to %d", c.MaxOutputTokens, MaxOutputTokensCeiling))
		c.MaxOutputTokens = MaxOutputTokensCeiling
	}
	c.Provider = metadata.Provider(strings.ToLower(strings.TrimSpace(string(c.Provider))))
	if c.Extension != "" && !strings.HasPrefix(c.Extension, ".") {
		c.Extension = "." + c.Extension
	}
	c.FailurePolicy = FailurePolicy(strings.ToLower(strings.TrimSpace(string(c.FailurePolicy))))
	if c.FailurePolicy == "" {
		c.FailurePolicy = PolicyHalt
	}
	return c, notes
}

// Validate reports the first setting that would make a run fail.
func (c Config) Validate() error {
	if strings.TrimSpace(c.OriginRoot) == "" {
		return apperrors.Config("origin root is required")
	}
	if strings.TrimSpace(c.TranslatedRoot) == "" {
		return apperrors.Config("translated root is required")
	}
	if c.OriginRoot == c.TranslatedRoot {
		return apperrors.Config("origin and translated roots must differ")
	}
	switch c.Provider {
	case metadata.ProviderGemini, metadata.ProviderOpenAI:
	default:
		return apperrors.Config(fmt.Sprintf("unknown provider %q (expected one of %s)", c.Provider, strings.Join(metadata.Providers(), ", ")))
	}
	if _, err := language.Parse(c.TargetLang); err != nil {
		return err
	}
	if _, err := language.Parse(c.SourceLang); err != nil {
		return apperrors.Config(fmt.Sprintf("invalid source language %q", c.SourceLang))
	}
	switch c.FailurePolicy {
	case PolicyHalt, PolicyContinue:
	default:
		return apperrors.Config(fmt.Sprintf("unknown failure policy %q (expected halt or continue)", c.FailurePolicy))
	}
	if c.MaxFiles < MinMaxFiles || c.MaxFiles > MaxMaxFiles {
		return apperrors.Config(fmt.Sprintf("max files must be between %d and %d, got %d", MinMaxFiles, MaxMaxFiles, c.MaxFiles))
	}
	if strings.TrimSpace(c.BaseBranch) == "" {
		return apperrors.Config("base branch is required")
	}
	return nil
}

// RepositorySlug returns the configured "owner/repo", falling back to
// GITHUB_REPOSITORY as set in Actions runners.
func (c Config) RepositorySlug() string {
	if s := strings.TrimSpace(c.Repository); s != "" {
		return s
	}
	return strings.TrimSpace(os.Getenv("GITHUB_REPOSITORY"))
}
