// Package config locates and loads the optional project config file that
// supplies defaults for the CLI's flags, the way the teacher's pkg/config
// resolves a "graphql-go-gen.config.*" file into a typed Config: a small
// loader registry dispatching on file extension, one loader per format.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// ProjectConfig supplies defaults for the validate and json flags. A
// --pattern or --ignore flag replaces Pattern or Ignore; the boolean fields
// are OR'd with their flags, so a flag can switch an option on but cannot
// switch off one the config file enables. Cwd is resolved against the
// config file's directory on load, but the commands do not read it: the
// scan root is the PATH argument or --cwd (default ".").
type ProjectConfig struct {
	Pattern   []string `yaml:"pattern" json:"pattern,omitempty"`
	Ignore    []string `yaml:"ignore" json:"ignore,omitempty"`
	Cwd       string   `yaml:"cwd" json:"cwd,omitempty"`
	ShowTrees bool     `yaml:"showTrees" json:"showTrees,omitempty"`
	Verbose   bool     `yaml:"verbose" json:"verbose,omitempty"`
	JSON      bool     `yaml:"json" json:"json,omitempty"`
	NoColor   bool     `yaml:"noColor" json:"noColor,omitempty"`
}

// DefaultConfigFileNames are searched, in order, at each directory visited
// during discovery.
var DefaultConfigFileNames = []string{
	"gqlsafeguard.config.yaml",
	"gqlsafeguard.config.yml",
	"gqlsafeguard.config.ts",
	"gqlsafeguard.config.js",
}

// DiscoverConfig searches startDir and each of its ancestors, in order, for
// the first file named in DefaultConfigFileNames.
func DiscoverConfig(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving start directory: %w", err)
	}

	for {
		for _, name := range DefaultConfigFileNames {
			candidate := filepath.Join(dir, name)
			if fileExists(candidate) {
				return candidate, nil
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", fmt.Errorf("no gqlsafeguard config file found starting from %s", startDir)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Loader loads a ProjectConfig from a single file of a format it recognizes.
type Loader interface {
	CanLoad(path string) bool
	Load(path string) (*ProjectConfig, error)
}

// LoaderRegistry dispatches Load to the first registered Loader that
// recognizes the file's extension.
type LoaderRegistry struct {
	loaders []Loader
}

// NewLoaderRegistry builds the registry with every supported format.
func NewLoaderRegistry() *LoaderRegistry {
	return &LoaderRegistry{loaders: []Loader{
		&YAMLLoader{},
		&TypeScriptLoader{},
		&JavaScriptLoader{},
	}}
}

// LoadFile resolves path through the loader registry.
func LoadFile(path string) (*ProjectConfig, error) {
	return NewLoaderRegistry().Load(path)
}

func (r *LoaderRegistry) Load(path string) (*ProjectConfig, error) {
	for _, loader := range r.loaders {
		if !loader.CanLoad(path) {
			continue
		}
		cfg, err := loader.Load(path)
		if err != nil {
			return nil, fmt.Errorf("loading config with %T: %w", loader, err)
		}
		cfg.resolveRelativePaths(path)
		return cfg, nil
	}
	return nil, fmt.Errorf("no loader registered for config file: %s", path)
}

func extensionOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// resolveRelativePaths rewrites Cwd relative to the config file's own
// directory, mirroring the teacher's Config.ResolveRelativePaths.
func (c *ProjectConfig) resolveRelativePaths(configPath string) {
	if c.Cwd == "" || filepath.IsAbs(c.Cwd) {
		return
	}
	c.Cwd = filepath.Join(filepath.Dir(configPath), c.Cwd)
}

// YAMLLoader loads a gqlsafeguard.config.{yaml,yml} file, expanding
// "${VAR}"/"$VAR" environment references before parsing, as the teacher's
// YAMLLoader does.
type YAMLLoader struct{}

func (l *YAMLLoader) CanLoad(path string) bool {
	ext := extensionOf(path)
	return ext == ".yaml" || ext == ".yml"
}

func (l *YAMLLoader) Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	data = []byte(expandEnvVars(string(data)))

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing YAML config file: %w", err)
	}
	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}|\$(\w+)`)

func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		name := strings.TrimPrefix(match, "${")
		name = strings.TrimPrefix(name, "$")
		name = strings.TrimSuffix(name, "}")
		if v := os.Getenv(name); v != "" {
			return v
		}
		return match
	})
}
