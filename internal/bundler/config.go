package bundler

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Sentinel errors
var (
	// ErrInvalidConfig is returned when the configuration is missing a field the override depends on.
	ErrInvalidConfig = errors.New("invalid bundler configuration")

	// ErrNoEntryPoints is returned when no entry point matches the configured patterns.
	ErrNoEntryPoints = errors.New("no entry points found")

	// ErrBuildFailed is returned when esbuild reports errors.
	ErrBuildFailed = errors.New("esbuild failed with errors")
)

// Config is the bundler configuration consumed by the build.
type Config struct {
	// Entry point files or glob patterns (e.g., "src/index.tsx")
	EntryPoints []string `yaml:"entryPoints,omitempty" json:"entryPoints,omitempty"`
	// Output directory for built files
	OutputDir string `yaml:"outputDir,omitempty" json:"outputDir,omitempty"`
	// Path to the esbuild metafile
	Metafile string `yaml:"metafile,omitempty" json:"metafile,omitempty"`
	// Whether to minify output
	Minify bool `yaml:"minify,omitempty" json:"minify,omitempty"`
	// Whether to emit linked source maps
	SourceMap bool `yaml:"sourceMap,omitempty" json:"sourceMap,omitempty"`

	Optimization *Optimization `yaml:"optimization" json:"optimization"`
}

// Optimization controls how modules are grouped into output chunks.
type Optimization struct {
	SplitChunks  *SplitChunks  `yaml:"splitChunks" json:"splitChunks"`
	RuntimeChunk *RuntimeChunk `yaml:"runtimeChunk" json:"runtimeChunk"`
}

// SplitChunks is the chunk-splitting strategy.
type SplitChunks struct {
	Chunks      string                `yaml:"chunks,omitempty" json:"chunks,omitempty"`
	MinSize     int                   `yaml:"minSize,omitempty" json:"minSize,omitempty"`
	CacheGroups map[string]CacheGroup `yaml:"cacheGroups,omitempty" json:"cacheGroups,omitempty"`
}

// CacheGroup routes matching modules into a named chunk. A disabled group is
// written as a bare false.
type CacheGroup struct {
	Disabled           bool   `yaml:"-" json:"-"`
	Test               string `yaml:"test,omitempty" json:"test,omitempty"`
	Name               string `yaml:"name,omitempty" json:"name,omitempty"`
	Priority           int    `yaml:"priority,omitempty" json:"priority,omitempty"`
	ReuseExistingChunk bool   `yaml:"reuseExistingChunk,omitempty" json:"reuseExistingChunk,omitempty"`
}

type cacheGroupFields CacheGroup

func (g *CacheGroup) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var enabled bool
		if err := value.Decode(&enabled); err != nil {
			return fmt.Errorf("%w: cache group on line %d must be false or a mapping", ErrInvalidConfig, value.Line)
		}
		*g = CacheGroup{Disabled: !enabled}
		return nil
	}

	var fields cacheGroupFields
	if err := value.Decode(&fields); err != nil {
		return err
	}
	*g = CacheGroup(fields)
	return nil
}

func (g CacheGroup) MarshalYAML() (any, error) {
	if g.Disabled {
		return false, nil
	}
	return cacheGroupFields(g), nil
}

func (g CacheGroup) MarshalJSON() ([]byte, error) {
	if g.Disabled {
		return []byte("false"), nil
	}
	return json.Marshal(cacheGroupFields(g))
}

// RuntimeChunk controls extraction of the module-loading bootstrap into its
// own output file. It accepts true, false, "single", "multiple" or {name: ...}.
type RuntimeChunk struct {
	Enabled bool
	Name    string
}

func (r *RuntimeChunk) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		switch value.ShortTag() {
		case "!!bool":
			var enabled bool
			if err := value.Decode(&enabled); err != nil {
				return err
			}
			*r = RuntimeChunk{Enabled: enabled}
			return nil
		case "!!str":
			if value.Value == "single" || value.Value == "multiple" {
				*r = RuntimeChunk{Enabled: true, Name: value.Value}
				return nil
			}
		}
	case yaml.MappingNode:
		var named struct {
			Name string `yaml:"name"`
		}
		if err := value.Decode(&named); err != nil {
			return err
		}
		*r = RuntimeChunk{Enabled: true, Name: named.Name}
		return nil
	}

	return fmt.Errorf("%w: runtimeChunk on line %d must be true, false, single, multiple or {name: ...}", ErrInvalidConfig, value.Line)
}

func (r RuntimeChunk) value() any {
	switch {
	case !r.Enabled:
		return false
	case r.Name == "single" || r.Name == "multiple":
		return r.Name
	case r.Name != "":
		return map[string]string{"name": r.Name}
	default:
		return true
	}
}

func (r RuntimeChunk) MarshalYAML() (any, error) {
	return r.value(), nil
}

func (r RuntimeChunk) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value())
}

// Validate checks that the fields the override mutates are present.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: configuration is nil", ErrInvalidConfig)
	}
	if c.Optimization == nil {
		return fmt.Errorf("%w: optimization section is required", ErrInvalidConfig)
	}
	if c.Optimization.SplitChunks == nil {
		return fmt.Errorf("%w: optimization.splitChunks is required", ErrInvalidConfig)
	}
	if c.Optimization.RuntimeChunk == nil {
		return fmt.Errorf("%w: optimization.runtimeChunk is required", ErrInvalidConfig)
	}
	return nil
}

// SplittingEnabled reports whether the build should emit more than one chunk per entry point.
func (o *Optimization) SplittingEnabled() bool {
	if o == nil {
		return true
	}
	if o.RuntimeChunk != nil && o.RuntimeChunk.Enabled {
		return true
	}
	if o.SplitChunks == nil {
		return true
	}
	if group, ok := o.SplitChunks.CacheGroups["default"]; ok && group.Disabled {
		return false
	}
	return true
}

// Override disables chunk splitting and runtime-chunk extraction so the build
// emits one combined bundle. The configuration is mutated in place and returned.
func Override(cfg *Config) (*Config, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	cfg.Optimization.SplitChunks = &SplitChunks{
		CacheGroups: map[string]CacheGroup{
			"default": {Disabled: true},
		},
	}
	cfg.Optimization.RuntimeChunk = &RuntimeChunk{Enabled: false}

	log.Debug().Msg("disabled chunk splitting and runtime chunk")

	return cfg, nil
}

// LoadConfig reads a YAML bundler configuration, rejecting unknown fields.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open bundler config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bundler config %s: %w", path, err)
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = "build"
	}
	if cfg.Metafile == "" {
		cfg.Metafile = filepath.Join(cfg.OutputDir, "meta.json")
	}

	log.Debug().Str("path", path).Strs("entrypoints", cfg.EntryPoints).Msg("loaded bundler config")

	return &cfg, nil
}
