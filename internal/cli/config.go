package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	maxWalkDepth = 25
	envPrefix    = "FLUENTSQL"
)

// configNames are tried in order in every directory during discovery.
var configNames = []string{"fluentsql.yaml", "fluentsql.yml"}

// Config represents the fluentsql configuration from fluentsql.yaml.
type Config struct {
	Format  string        `mapstructure:"format"`
	Verbose bool          `mapstructure:"verbose"`
	Compile CompileConfig `mapstructure:"compile"`
}

// CompileConfig holds settings shared by the compile, check and fingerprint
// commands.
type CompileConfig struct {
	FailFast    bool `mapstructure:"fail_fast"`
	Concurrency int  `mapstructure:"concurrency"`
}

// LoadConfig discovers and loads configuration with proper precedence:
// flags > env > config file > defaults. Flags are applied by the caller.
//
// Returns the loaded config, the path to the config file (empty if none found),
// and any error encountered.
func LoadConfig(explicitConfigPath string) (*Config, string, error) {
	v := viper.New()

	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	configPath, err := findConfigFile(explicitConfigPath)
	if err != nil {
		return nil, "", err
	}

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, configPath, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, configPath, fmt.Errorf("unmarshaling config: %w", err)
	}
	if cfg.Compile.Concurrency < 1 {
		cfg.Compile.Concurrency = 1
	}

	return &cfg, configPath, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("format", "text")
	v.SetDefault("verbose", false)
	v.SetDefault("compile.fail_fast", false)
	v.SetDefault("compile.concurrency", 4)
}

// findConfigFile finds the config file to use.
// If explicitPath is provided, it validates the file exists.
// Otherwise, it walks up from cwd looking for fluentsql.yaml or fluentsql.yml,
// stopping at a .git directory or after maxWalkDepth levels.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicitPath)
		}
		return explicitPath, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getting cwd: %w", err)
	}

	dir := cwd
	for i := 0; i < maxWalkDepth; i++ {
		for _, name := range configNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path, nil
			}
		}

		// Stop at the repository root.
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			break
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", nil
}
