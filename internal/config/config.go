// Package config loads run configuration.
//
// The schema is a CUE definition compiled into the binary. A user file, when
// given, is unified with it, so unknown fields and out-of-range values are
// reported with their position in the user file. Command-line flags are
// applied on top of the loaded Config and checked again with Validate.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"runtime"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"
)

//go:embed schema.cue
var schemaSource string

// DSNEnv names the environment variable consulted when no Postgres DSN is
// configured.
const DSNEnv = "SCOREBOOK_PG_DSN"

// Output formats.
const (
	FormatSQLite   = "sqlite"
	FormatPostgres = "postgres"
	FormatJSONL    = "jsonl"
)

// Error codes.
const (
	ErrCodeRead    = "E_CONFIG_READ"
	ErrCodeSyntax  = "E_CONFIG_SYNTAX"
	ErrCodeSchema  = "E_CONFIG_SCHEMA"
	ErrCodeInvalid = "E_CONFIG_INVALID"
)

// ConfigError is returned for unreadable or invalid configuration.
type ConfigError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *ConfigError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsConfigError reports whether err is or wraps a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// Config is the decoded configuration.
type Config struct {
	Workers   int    `json:"workers"`
	CacheSize int    `json:"cache_size"`
	Strict    bool   `json:"strict"`
	Input     Input  `json:"input"`
	Output    Output `json:"output"`
}

// Input selects which files are read.
type Input struct {
	Patterns []string `json:"patterns"`
	// DeducedPatterns select deduced play-by-play files, read after the
	// files matching Patterns.
	DeducedPatterns []string `json:"deduced_patterns"`
}

// Output selects where tables are written.
type Output struct {
	Format string `json:"format"`
	Path   string `json:"path"`
	DSN    string `json:"dsn"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	cfg, err := Load("")
	if err != nil {
		panic(fmt.Sprintf("config: embedded schema: %v", err))
	}
	return cfg
}

// Load reads the CUE file at path and unifies it with the schema. An empty
// path loads the defaults.
func Load(path string) (Config, error) {
	var data []byte
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return Config{}, &ConfigError{Code: ErrCodeRead, Message: fmt.Sprintf("reading config: %v", err)}
		}
	}
	return Parse(path, data)
}

// Parse unifies CUE source with the schema. filename is used in error
// positions only.
func Parse(filename string, data []byte) (Config, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(schemaSource, cue.Filename("schema.cue"))
	if err := schema.Err(); err != nil {
		return Config{}, fromCUE(ErrCodeSchema, err)
	}
	v := schema.LookupPath(cue.ParsePath("#Config"))

	if len(data) > 0 {
		user := ctx.CompileBytes(data, cue.Filename(filename))
		if err := user.Err(); err != nil {
			return Config{}, fromCUE(ErrCodeSyntax, err)
		}
		v = v.Unify(user)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return Config{}, fromCUE(ErrCodeInvalid, err)
	}

	var cfg Config
	if err := v.Decode(&cfg); err != nil {
		return Config{}, fromCUE(ErrCodeInvalid, err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Workers == 0 {
		c.Workers = runtime.GOMAXPROCS(0)
	}
	c.Output.ResolveDSN()
}

// ResolveDSN fills an empty postgres DSN from the environment. Commands
// call it again after flags change the output format.
func (o *Output) ResolveDSN() {
	if o.Format == FormatPostgres && o.DSN == "" {
		o.DSN = getEnv(DSNEnv, "")
	}
}

// Validate checks the configuration after flag overrides. It does not
// look at the output destination; see Output.Validate.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return &ConfigError{Code: ErrCodeInvalid, Message: fmt.Sprintf("workers must be at least 1, got %d", c.Workers)}
	}
	if c.CacheSize < 0 {
		return &ConfigError{Code: ErrCodeInvalid, Message: fmt.Sprintf("cache_size must not be negative, got %d", c.CacheSize)}
	}
	if len(c.Input.Patterns) == 0 {
		return &ConfigError{Code: ErrCodeInvalid, Message: "input.patterns must not be empty"}
	}
	if !slices.Contains([]string{FormatSQLite, FormatPostgres, FormatJSONL}, c.Output.Format) {
		return &ConfigError{Code: ErrCodeInvalid, Message: fmt.Sprintf("unknown output format %q", c.Output.Format)}
	}
	return nil
}

// Validate checks that the output has a destination. Commands that write
// tables call it in addition to Config.Validate.
func (o Output) Validate() error {
	switch o.Format {
	case FormatPostgres:
		if o.DSN == "" {
			return &ConfigError{Code: ErrCodeInvalid, Message: fmt.Sprintf("postgres output needs a dsn or %s", DSNEnv)}
		}
	default:
		if o.Path == "" {
			return &ConfigError{Code: ErrCodeInvalid, Message: o.Format + " output needs a path"}
		}
	}
	return nil
}

func fromCUE(code string, err error) *ConfigError {
	ce := &ConfigError{Code: code, Message: err.Error()}
	for _, e := range cueerrors.Errors(err) {
		if pos := e.Position(); pos.IsValid() {
			ce.Pos = pos
			format, args := e.Msg()
			ce.Message = fmt.Sprintf(format, args...)
			break
		}
	}
	return ce
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
