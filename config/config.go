// Package config loads locpatch settings.
//
// Values are layered: built-in defaults, then an optional locpatch.yaml,
// then a .env file and the process environment. Command-line flags are
// applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// FileName is the default config file name.
const FileName = "locpatch.yaml"

// DefaultEnvFile is the default dotenv file name.
const DefaultEnvFile = ".env"

// Config holds all locpatch settings.
type Config struct {
	// SourceLang is the language strings are translated from (default "english").
	SourceLang string `yaml:"source_lang" validate:"required"`
	// TargetLang is the language strings are translated to (default "german").
	TargetLang string `yaml:"target_lang" validate:"required"`

	// Folder is the tree rename and cleanup work on.
	Folder string `yaml:"folder"`
	// TranslateFolder is the tree translate and scan work on.
	TranslateFolder string `yaml:"translate_folder"`
	// FixArticlesPath is the file or tree fix-articles works on.
	FixArticlesPath string `yaml:"fix_articles_path"`

	// Gateway settings. APIKey is never read from the config file.
	APIKey      string   `yaml:"-"`
	BaseURL     string   `yaml:"base_url" validate:"omitempty,url"`
	Model       string   `yaml:"model" validate:"required"`
	Temperature float32  `yaml:"temperature" validate:"gte=0,lte=2"`
	Setting     string   `yaml:"setting"`
	Rules       []string `yaml:"rules"`

	// Batching and pacing.
	BatchSize     int           `yaml:"batch_size" validate:"gte=1"`
	FallbackDepth int           `yaml:"fallback_depth" validate:"gte=0"`
	Cooldown      time.Duration `yaml:"cooldown" validate:"gte=0"`
	RatePerMinute int           `yaml:"rate_per_minute" validate:"gte=0"`
	MaxRetries    int           `yaml:"max_retries" validate:"gte=0"`

	// FailureLog is the path of the failure log.
	FailureLog string `yaml:"failure_log" validate:"required"`

	Cleanup CleanupConfig `yaml:"cleanup"`
	Cache   CacheConfig   `yaml:"cache"`
}

// CleanupConfig holds cleanup settings.
type CleanupConfig struct {
	Ext     string   `yaml:"ext" validate:"required"`
	Prefix  string   `yaml:"prefix" validate:"required"`
	Answers []string `yaml:"answers" validate:"min=1"`
}

// CacheConfig holds translation memory settings.
type CacheConfig struct {
	// Backend is "none", "memory" or "redis".
	Backend string `yaml:"backend" validate:"oneof=none memory redis"`
	// RedisURL is used by the redis backend.
	RedisURL string `yaml:"redis_url" validate:"required_if=Backend redis"`
	// TTL applies to both backends; 0 keeps entries forever.
	TTL time.Duration `yaml:"ttl" validate:"gte=0"`
	// File is a JSON translation memory loaded before and saved after a
	// run with the memory backend.
	File string `yaml:"file"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		SourceLang:      "english",
		TargetLang:      "german",
		Folder:          ".",
		TranslateFolder: ".",
		Model:           "gemini-2.5-flash",
		BaseURL:         "https://generativelanguage.googleapis.com/v1beta/openai/",
		Temperature:     0.3,
		BatchSize:       50,
		FallbackDepth:   1,
		Cooldown:        time.Second,
		RatePerMinute:   0,
		MaxRetries:      3,
		FailureLog:      "translation_errors.log",
		Cleanup: CleanupConfig{
			Ext:     ".yml",
			Prefix:  "lotr_",
			Answers: []string{"ja", "yes", "y"},
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
	}
}

// ConfigError indicates invalid or missing configuration.
type ConfigError struct {
	Field   string
	Message string
	Cause   error
}

func (e *ConfigError) Error() string {
	msg := e.Message
	if e.Field != "" {
		msg = e.Field + ": " + msg
	}
	if e.Cause != nil {
		return fmt.Sprintf("config: %s: %v", msg, e.Cause)
	}
	return "config: " + msg
}

func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// Path is the config file. Empty means FileName in the working
	// directory, and a missing default file is not an error.
	Path string
	// EnvFile is the dotenv file. Empty means DefaultEnvFile, and a
	// missing default file is not an error. Variables already set in the
	// environment win over the file.
	EnvFile string
}

// Load builds the configuration from defaults, the config file, the dotenv
// file and the environment.
func Load(opts LoadOptions) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(&cfg, opts.Path); err != nil {
		return nil, err
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil {
		if opts.EnvFile != "" || !errors.Is(err, os.ErrNotExist) {
			return nil, &ConfigError{Field: "env-file", Message: "cannot load " + envFile, Cause: err}
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(cfg *Config, path string) error {
	explicit := path != ""
	if !explicit {
		path = FileName
	}

	data, err := os.ReadFile(path) // #nosec G304 - path is intentionally user-provided
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return nil
		}
		return &ConfigError{Field: "config", Message: "cannot read " + path, Cause: err}
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return &ConfigError{Field: "config", Message: "cannot parse " + path, Cause: err}
	}
	return nil
}

// applyEnv overlays environment variables. The API key is taken from the
// first of LOCPATCH_API_KEY, GEMINI_API_KEY and OPENAI_API_KEY that is set.
func applyEnv(cfg *Config) error {
	for _, k := range []string{"LOCPATCH_API_KEY", "GEMINI_API_KEY", "OPENAI_API_KEY"} {
		if v := env(k); v != "" {
			cfg.APIKey = v
			break
		}
	}

	setString(&cfg.Folder, "FOLDER_PATH")
	setString(&cfg.TranslateFolder, "TRANSLATE_FOLDER_PATH")
	setString(&cfg.FixArticlesPath, "FIX_ARTICLES_FILE_PATH")
	setString(&cfg.BaseURL, "LOCPATCH_BASE_URL")
	setString(&cfg.Model, "LOCPATCH_MODEL")
	setString(&cfg.SourceLang, "LOCPATCH_SOURCE_LANG")
	setString(&cfg.TargetLang, "LOCPATCH_TARGET_LANG")
	setString(&cfg.FailureLog, "LOCPATCH_FAILURE_LOG")

	if v := env("LOCPATCH_REDIS_URL"); v != "" {
		cfg.Cache.RedisURL = v
		cfg.Cache.Backend = "redis"
	}
	setString(&cfg.Cache.Backend, "LOCPATCH_CACHE")

	if v := env("LOCPATCH_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ConfigError{Field: "LOCPATCH_BATCH_SIZE", Message: "not an integer", Cause: err}
		}
		cfg.BatchSize = n
	}
	if v := env("LOCPATCH_COOLDOWN"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ConfigError{Field: "LOCPATCH_COOLDOWN", Message: "not a duration (e.g. 500ms, 1s)", Cause: err}
		}
		cfg.Cooldown = d
	}
	return nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func setString(dst *string, key string) {
	if v := env(key); v != "" {
		*dst = v
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the settings common to every command.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fromValidator(err)
	}
	return nil
}

// RequireAPIKey fails when no API key is configured.
func (c *Config) RequireAPIKey() error {
	if c.APIKey == "" {
		return &ConfigError{
			Field:   "api key",
			Message: "missing (set LOCPATCH_API_KEY, GEMINI_API_KEY or OPENAI_API_KEY)",
		}
	}
	return nil
}

// RequireDir fails unless path names an existing directory.
func RequireDir(field, path string) error {
	if err := validate.Var(path, "required,dir"); err != nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("%q is not a directory", path)}
	}
	return nil
}

// RequirePath fails unless path names an existing file or directory.
func RequirePath(field, path string) error {
	if err := validate.Var(path, "required"); err != nil {
		return &ConfigError{Field: field, Message: "missing"}
	}
	if _, err := os.Stat(path); err != nil {
		return &ConfigError{Field: field, Message: fmt.Sprintf("%q does not exist", path), Cause: err}
	}
	return nil
}

func fromValidator(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &ConfigError{Message: "invalid", Cause: err}
	}
	fe := verrs[0]
	msg := "failed " + fe.Tag()
	if fe.Param() != "" {
		msg += "=" + fe.Param()
	}
	return &ConfigError{Field: fe.Namespace(), Message: msg, Cause: err}
}
