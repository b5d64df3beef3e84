package project

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/smmu-sim/tracerun/internal/config"
)

// ErrNotFound indicates that .tracerun could not be discovered.
var ErrNotFound = errors.New("run `tracerun init` to create a project in this directory")

// Project is a simulator checkout discovered on disk. Root anchors every
// relative path in the configuration: trace directory, source manifest,
// include directories, and the output binary.
type Project struct {
	Root       string
	ConfigPath string
	Config     config.Config
}

// Discover walks upward from start until it finds a .tracerun directory.
// When no project exists, the start directory itself becomes the root with
// default configuration, so the harness still works from a plain simulator
// checkout whose files sit next to the caller.
func Discover(start string) (*Project, error) {
	root, err := locateRoot(start)
	if errors.Is(err, ErrNotFound) {
		root, err = filepath.Abs(start)
	}
	if err != nil {
		return nil, err
	}
	return Load(root)
}

// Load constructs a Project from a known root directory.
func Load(root string) (*Project, error) {
	cfgPath := filepath.Join(root, ".tracerun", "config.toml")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	return &Project{
		Root:       root,
		ConfigPath: cfgPath,
		Config:     cfg,
	}, nil
}

func locateRoot(start string) (string, error) {
	cur, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		if isDir(filepath.Join(cur, ".tracerun")) {
			return cur, nil
		}
		next := filepath.Dir(cur)
		if next == cur {
			break
		}
		cur = next
	}
	return "", ErrNotFound
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	return fi.IsDir()
}

// TraceDir returns the absolute trace directory for the project.
func (p *Project) TraceDir() string {
	return p.anchor(p.Config.TraceDir)
}

// ArtifactPath returns the absolute output binary path for the project.
func (p *Project) ArtifactPath() string {
	return p.anchor(p.Config.Build.Output)
}

// Sources returns the manifest source paths anchored at the project root,
// preserving manifest order.
func (p *Project) Sources() []string {
	out := make([]string, len(p.Config.Build.Sources))
	for i, src := range p.Config.Build.Sources {
		out[i] = p.anchor(src)
	}
	return out
}

// IncludeDirs returns the include directories anchored at the project root.
func (p *Project) IncludeDirs() []string {
	out := make([]string, len(p.Config.Build.IncludeDirs))
	for i, dir := range p.Config.Build.IncludeDirs {
		out[i] = p.anchor(dir)
	}
	return out
}

func (p *Project) anchor(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.Root, path)
}

// EnsureConfig ensures a baseline config file exists, writing when missing.
func EnsureConfig(root string) (config.Config, error) {
	path := filepath.Join(root, ".tracerun", "config.toml")
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := config.Default()
		if err := config.Save(path, cfg); err != nil {
			return config.Config{}, err
		}
		return cfg, nil
	}
	return config.Load(path)
}
