package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config captures the user editable harness settings stored in
// .tracerun/config.toml.
type Config struct {
	TraceDir  string         `toml:"trace_dir"`
	Toolchain ToolchainBlock `toml:"toolchain"`
	Build     BuildBlock     `toml:"build"`
	Run       RunBlock       `toml:"run"`
}

// ToolchainBlock selects the compiler and its fixed flag set.
type ToolchainBlock struct {
	Compiler     string `toml:"compiler"`
	Standard     string `toml:"standard"`
	Warnings     string `toml:"warnings"`
	Optimization string `toml:"optimization"`
}

// BuildBlock is the source manifest: an ordered, fixed list of source files
// plus include directories. Order and membership come from configuration,
// never from per-run arguments.
type BuildBlock struct {
	Sources     []string `toml:"sources"`
	IncludeDirs []string `toml:"include_dirs"`
	Output      string   `toml:"output"`
}

// RunBlock governs execution of the compiled simulator.
type RunBlock struct {
	Cleanup *bool  `toml:"cleanup"`
	Timeout string `toml:"timeout"`
}

// CleanupEnabled reports whether the build artifact should be removed after
// the run. Enabled unless explicitly switched off.
func (r RunBlock) CleanupEnabled() bool {
	if r.Cleanup == nil {
		return true
	}
	return *r.Cleanup
}

// TimeoutDuration parses the configured per-child timeout. Zero means no bound.
func (r RunBlock) TimeoutDuration() (time.Duration, error) {
	if r.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(r.Timeout)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidTimeout, err)
	}
	if d < 0 {
		return 0, ErrInvalidTimeout
	}
	return d, nil
}

var (
	// ErrMissingCompiler indicates the config omitted the toolchain compiler.
	ErrMissingCompiler = errors.New("config.toolchain.compiler must be set")
	// ErrEmptyManifest indicates the source manifest has no entries.
	ErrEmptyManifest = errors.New("config.build.sources must list at least one source file")
	// ErrMissingOutput indicates no output binary name is configured.
	ErrMissingOutput = errors.New("config.build.output must be set")
	// ErrInvalidTimeout indicates config.run.timeout is not a valid duration.
	ErrInvalidTimeout = errors.New("config.run.timeout must be a non-negative duration")
)

// Default returns the baseline configuration matching the simulator's
// conventional layout (src/, include/, trace/).
func Default() Config {
	var cfg Config
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.TraceDir == "" {
		c.TraceDir = "trace"
	}
	if c.Toolchain.Compiler == "" {
		c.Toolchain.Compiler = "g++"
	}
	if c.Toolchain.Standard == "" {
		c.Toolchain.Standard = "c++17"
	}
	if c.Toolchain.Warnings == "" {
		c.Toolchain.Warnings = "all"
	}
	if c.Toolchain.Optimization == "" {
		c.Toolchain.Optimization = "2"
	}
	if len(c.Build.Sources) == 0 {
		c.Build.Sources = []string{
			"trace/trace_runner.cpp",
			"src/tlb.cpp",
			"src/page_table.cpp",
			"src/smmu.cpp",
			"src/smmu_registers.cpp",
		}
	}
	if c.Build.IncludeDirs == nil {
		c.Build.IncludeDirs = []string{"include"}
	}
	if c.Build.Output == "" {
		c.Build.Output = "trace_runner"
	}
}

// Validate ensures the configuration can drive a build and a run.
func (c Config) Validate() error {
	if c.Toolchain.Compiler == "" {
		return ErrMissingCompiler
	}
	if len(c.Build.Sources) == 0 {
		return ErrEmptyManifest
	}
	if c.Build.Output == "" {
		return ErrMissingOutput
	}
	if _, err := c.Run.TimeoutDuration(); err != nil {
		return err
	}
	return nil
}

// Load reads configuration from disk. Missing files return the default config.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, err
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Save writes configuration to disk, creating parent directories as needed.
func Save(path string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}
