package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/vroidbones/vroidbones/internal/naming"
	"github.com/vroidbones/vroidbones/internal/pipeline"
	"github.com/vroidbones/vroidbones/internal/skeleton"
	"github.com/vroidbones/vroidbones/internal/structure"
)

// FileNames are the configuration files looked up in the working directory
var FileNames = []string{"vroidbones.yml", "vroidbones.yaml"}

// EnvPrefix prefixes every environment override, e.g. VROIDBONES_SERVER_PORT
const EnvPrefix = "VROIDBONES"

// Config represents the vroidbones configuration
type Config struct {
	Naming    NamingConfig    `mapstructure:"naming"`
	Structure StructureConfig `mapstructure:"structure"`
	Output    OutputConfig    `mapstructure:"output"`
	Server    ServerConfig    `mapstructure:"server"`
	Watch     WatchConfig     `mapstructure:"watch"`
}

// NamingConfig controls the rename stage
type NamingConfig struct {
	Symmetrize         bool   `mapstructure:"symmetrize"`
	Simplify           bool   `mapstructure:"simplify"`
	RenumberHairJoints bool   `mapstructure:"renumber_hairjoints"`
	Collision          string `mapstructure:"collision"`
}

// StructureConfig controls chain welding and leaf removal
type StructureConfig struct {
	LeafBones  bool     `mapstructure:"leaf_bones"`
	BoneChains bool     `mapstructure:"bone_chains"`
	Exclude    []string `mapstructure:"exclude"`
}

// OutputConfig controls how results are written
type OutputConfig struct {
	Format  string `mapstructure:"format"`
	NoColor bool   `mapstructure:"no_color"`
}

// ServerConfig represents the HTTP bridge configuration
type ServerConfig struct {
	Port int    `mapstructure:"port"`
	Host string `mapstructure:"host"`
}

// WatchConfig lists the rig document patterns the watcher reacts to
type WatchConfig struct {
	Patterns []string `mapstructure:"patterns"`
}

// Load loads the configuration from vroidbones.yml or vroidbones.yaml in
// the working directory, or from path when it is not empty
func Load(path string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("naming.symmetrize", true)
	v.SetDefault("naming.simplify", true)
	v.SetDefault("naming.collision", string(naming.CollisionReject))
	v.SetDefault("structure.leaf_bones", true)
	v.SetDefault("structure.bone_chains", true)
	v.SetDefault("structure.exclude", structure.DefaultExclusions)
	v.SetDefault("output.format", "")
	v.SetDefault("output.no_color", false)
	v.SetDefault("server.port", 8765)
	v.SetDefault("server.host", "localhost")
	v.SetDefault("watch.patterns", []string{"*.rig.yml", "*.rig.yaml", "*.rig.json"})

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("vroidbones")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Enable environment variable support
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Hair joint renumbering follows simplify unless set explicitly
	if v.IsSet("naming.renumber_hairjoints") {
		config.Naming.RenumberHairJoints = v.GetBool("naming.renumber_hairjoints")
	} else {
		config.Naming.RenumberHairJoints = config.Naming.Simplify
	}

	// Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// Options converts the configuration into pipeline options
func (c *Config) Options() pipeline.Options {
	collision, _ := naming.ParseCollisionPolicy(c.Naming.Collision)
	return pipeline.Options{
		Symmetrize:         c.Naming.Symmetrize,
		Simplify:           c.Naming.Simplify,
		RenumberHairJoints: c.Naming.RenumberHairJoints,
		RemoveLeaves:       c.Structure.LeafBones,
		ConnectChains:      c.Structure.BoneChains,
		Exclude:            slices.Clone(c.Structure.Exclude),
		Collision:          collision,
	}
}

// Addr returns the host:port the HTTP bridge listens on
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Server.Host, strconv.Itoa(c.Server.Port))
}

// FindConfigRoot walks up from dir looking for a vroidbones configuration file
func FindConfigRoot(dir string) (string, error) {
	for {
		for _, name := range FileNames {
			if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
				return dir, nil
			}
		}

		// Move up one directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return "", fmt.Errorf("no vroidbones.yml found")
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if _, err := naming.ParseCollisionPolicy(cfg.Naming.Collision); err != nil {
		return fmt.Errorf("naming.collision: %w", err)
	}
	if cfg.Output.Format != "" {
		if _, err := skeleton.ParseFormat(cfg.Output.Format); err != nil {
			return fmt.Errorf("output.format must be yaml or json, got: %s", cfg.Output.Format)
		}
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got: %d", cfg.Server.Port)
	}
	for _, pattern := range cfg.Watch.Patterns {
		if _, err := filepath.Match(pattern, ""); err != nil {
			return fmt.Errorf("watch.patterns: invalid pattern %q", pattern)
		}
	}
	return nil
}
