package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
	"github.com/fusejs/create-fuse-app/internal/nextconfig"
)

// EnvPrefix prefixes every environment variable the tool reads
const EnvPrefix = "CREATE_FUSE_APP"

// FileName is the optional project-level config file, without extension
const FileName = "create-fuse-app"

// Config represents the create-fuse-app configuration
type Config struct {
	PackageManager string            `mapstructure:"package_manager"`
	SkipInstall    bool              `mapstructure:"skip_install"`
	Plugin         nextconfig.Plugin `mapstructure:"plugin"`
	Packages       PackagesConfig    `mapstructure:"packages"`
	NextConfig     NextConfigConfig  `mapstructure:"next_config"`
	GraphQLSP      GraphQLSPConfig   `mapstructure:"graphqlsp"`

	// Warnings lists problems that were skipped while loading
	Warnings []string `mapstructure:"-"`
}

// PackagesConfig lists what gets installed
type PackagesConfig struct {
	Prod []string `mapstructure:"prod"`
	Dev  []string `mapstructure:"dev"`
}

// NextConfigConfig controls how the Next.js config is rewritten
type NextConfigConfig struct {
	// PreserveExtension writes next.config.mjs back to itself instead of
	// to next.config.js
	PreserveExtension bool `mapstructure:"preserve_extension"`
}

// GraphQLSPConfig is the editor plugin entry added to tsconfig.json
type GraphQLSPConfig struct {
	Schema string `mapstructure:"schema"`
}

// PackageManagers lists the supported package managers
var PackageManagers = []string{"npm", "yarn", "pnpm", "bun"}

// Load builds the configuration for the project in dir. Defaults are
// overridden by create-fuse-app.yaml, then by CREATE_FUSE_APP_* variables
// from the project's .env file, then by the same variables from the
// environment. Other .env entries belong to the app and are never exported.
func Load(dir string) (*Config, error) {
	var warnings []string
	dotenv, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			warnings = append(warnings, fmt.Sprintf("ignoring .env: %v", err))
		}
		dotenv = nil
	}

	v := viper.New()

	defaults := nextconfig.DefaultPlugin()
	v.SetDefault("package_manager", "")
	v.SetDefault("skip_install", false)
	v.SetDefault("plugin.name", defaults.Name)
	v.SetDefault("plugin.module", defaults.Module)
	v.SetDefault("plugin.curried", defaults.Curried)
	v.SetDefault("packages.prod", []string{"fuse"})
	v.SetDefault("packages.dev", []string{"@0no-co/graphqlsp", "@graphql-typed-document-node/core"})
	v.SetDefault("next_config.preserve_extension", false)
	v.SetDefault("graphqlsp.schema", "./schema.graphql")

	applyDotEnv(v, dotenv)

	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found - use defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	config.Warnings = warnings
	return &config, nil
}

// applyDotEnv sets the known keys found in a .env file unless the
// environment already defines them
func applyDotEnv(v *viper.Viper, dotenv map[string]string) {
	for _, key := range v.AllKeys() {
		name := EnvVar(key)
		value, ok := dotenv[name]
		if !ok {
			continue
		}
		if _, set := os.LookupEnv(name); set {
			continue
		}
		v.Set(key, value)
	}
}

// EnvVar returns the environment variable that overrides key
func EnvVar(key string) string {
	return EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
}

// ProjectRoot walks up from start to the nearest directory holding a
// package.json
func ProjectRoot(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "package.json")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in a JavaScript project (no package.json found above %s)", start)
		}
		dir = parent
	}
}

// validateConfig validates the configuration
func validateConfig(cfg *Config) error {
	if cfg.PackageManager != "" && !isPackageManager(cfg.PackageManager) {
		return fmt.Errorf("package_manager must be one of %s, got: %s",
			strings.Join(PackageManagers, ", "), cfg.PackageManager)
	}
	if !lexer.IsValidIdentifier(cfg.Plugin.Name) {
		return fmt.Errorf("plugin.name must be a JavaScript identifier, got: %q", cfg.Plugin.Name)
	}
	if strings.TrimSpace(cfg.Plugin.Module) == "" {
		return fmt.Errorf("plugin.module must not be empty")
	}
	if len(cfg.Packages.Prod) == 0 {
		return fmt.Errorf("packages.prod must list at least one package")
	}
	if cfg.GraphQLSP.Schema == "" {
		return fmt.Errorf("graphqlsp.schema must not be empty")
	}
	return nil
}

func isPackageManager(name string) bool {
	for _, pm := range PackageManagers {
		if pm == name {
			return true
		}
	}
	return false
}
