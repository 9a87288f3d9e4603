package config

import (
	"fmt"
	"os"
	"time"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueyaml "cuelang.org/go/encoding/yaml"
	"gopkg.in/yaml.v3"
)

// Default values applied when the config file omits a field.
const (
	DefaultScriptsDir      = "scripts"
	DefaultPython          = "python3"
	DefaultTimeout         = 30 * time.Second
	DefaultCaptureMaxBytes = 1 << 20
	DefaultTermGrace       = 2 * time.Second
	DefaultHistoryPath     = "scriptdeck-history.db"
	DefaultLogLevel        = "info"
)

// Config is the full runtime configuration.
type Config struct {
	// ScriptsDir is the directory scanned for scripts.
	ScriptsDir string `yaml:"scripts_dir"`

	// Python is the interpreter executable.
	Python string `yaml:"python"`

	Execution Execution `yaml:"execution"`

	// DisabledScripts lists script file names excluded from the registry.
	DisabledScripts []string `yaml:"disabled_scripts"`

	History History `yaml:"history"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level"`
}

// Execution holds the per-run limits.
type Execution struct {
	DefaultTimeout  Duration `yaml:"default_timeout"`
	CaptureMaxBytes int      `yaml:"capture_max_bytes"`
	TermGrace       Duration `yaml:"term_grace"`
}

// History configures the execution history store.
type History struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// Duration wraps time.Duration so YAML values like "45s" decode directly.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var raw string
	if err := value.Decode(&raw); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %v", raw, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

// Defaults returns the configuration used when no config file is given.
func Defaults() Config {
	return Config{
		ScriptsDir: DefaultScriptsDir,
		Python:     DefaultPython,
		Execution: Execution{
			DefaultTimeout:  Duration(DefaultTimeout),
			CaptureMaxBytes: DefaultCaptureMaxBytes,
			TermGrace:       Duration(DefaultTermGrace),
		},
		History: History{
			Enabled: true,
			Path:    DefaultHistoryPath,
		},
		LogLevel: DefaultLogLevel,
	}
}

// schema constrains the YAML document before it is decoded. Every field is
// optional; the CUE disjunctions reject unknown log levels and non-positive
// limits early, with field names in the error.
const schema = `
scripts_dir?:  string
python?:       string
execution?: {
	default_timeout?:   string
	capture_max_bytes?: int & >0
	term_grace?:        string
}
disabled_scripts?: [...string]
history?: {
	enabled?: bool
	path?:    string
}
log_level?: "debug" | "info" | "warn" | "error"
`

// LoadFromFile reads a YAML config, validates it against the schema and
// returns it merged over the defaults.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	ctx := cuecontext.New()
	sv := ctx.CompileString(schema)
	if err := sv.Err(); err != nil {
		return Config{}, fmt.Errorf("internal schema error: %v", err)
	}
	file, err := cueyaml.Extract(path, data)
	if err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	dv := ctx.BuildFile(file)
	if err := dv.Err(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	unified := sv.Unify(dv)
	if err := unified.Validate(cue.Concrete(false)); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %v", err)
	}
	if cfg.Execution.DefaultTimeout <= 0 {
		cfg.Execution.DefaultTimeout = Duration(DefaultTimeout)
	}
	if cfg.Execution.TermGrace <= 0 {
		cfg.Execution.TermGrace = Duration(DefaultTermGrace)
	}
	if cfg.Execution.CaptureMaxBytes <= 0 {
		cfg.Execution.CaptureMaxBytes = DefaultCaptureMaxBytes
	}
	return cfg, nil
}
