package config

import (
	"bytes"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/pkg/paths"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// Format identifies a configuration file syntax.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

var projectConfigNames = []string{
	"pybuild.yml",
	"pybuild.yaml",
	"pybuild.toml",
	".pybuild.yml",
	".pybuild.yaml",
}

var overrideConfigNames = []string{
	"pybuild.override.yml",
	"pybuild.override.yaml",
	"pybuild.override.toml",
}

// FormatForPath picks the syntax from a file extension.
func FormatForPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return FormatTOML
	}
	return FormatYAML
}

// Load reads, validates and defaults a single configuration file.
func Load(path string) (*Config, error) {
	cfg, err := readFile(path)
	if err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration starting from the current directory.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to get current directory")
	}

	return LoadFrom(cwd)
}

// LoadFrom loads configuration with hierarchical merging starting from the given directory
func LoadFrom(startDir string) (*Config, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return LoadFromWithLogger(startDir, logger)
}

// LoadFromWithLogger merges, in increasing precedence:
// 1. Global config (~/.config/pybuild/pybuild.yml or .toml)
// 2. Project config (pybuild.yml found walking up from startDir)
// 3. Local override (pybuild.override.yml next to the project config)
//
// No file at all is fine: the defaults describe the standard build.
func LoadFromWithLogger(startDir string, logger *logrus.Logger) (*Config, error) {
	var finalConfig *Config

	for _, globalPath := range globalConfigPaths() {
		if _, err := os.Stat(globalPath); err != nil {
			continue
		}
		logger.WithField("path", globalPath).Debug("Loading global configuration")
		globalConfig, err := readFile(globalPath)
		if err != nil {
			logger.WithError(err).Warn("Failed to load global configuration, continuing without it")
			continue
		}
		finalConfig = globalConfig
		break
	}

	projectPath, err := FindConfigFile(startDir)
	if err == nil {
		logger.WithField("path", projectPath).Debug("Loading project configuration")
		projectConfig, err := readFile(projectPath)
		if err != nil {
			return nil, err
		}
		finalConfig = mergeInto(finalConfig, projectConfig)

		projectDir := filepath.Dir(projectPath)
		for _, name := range overrideConfigNames {
			overridePath := filepath.Join(projectDir, name)
			if _, err := os.Stat(overridePath); err != nil {
				continue
			}
			logger.WithField("path", overridePath).Debug("Loading local override configuration")
			overrideConfig, err := readFile(overridePath)
			if err != nil {
				logger.WithError(err).Warn("Failed to load override file, skipping")
				continue
			}
			finalConfig = mergeConfigs(finalConfig, overrideConfig)
		}
	} else if !errors.Is(err, errors.ErrCodeConfigNotFound) {
		return nil, err
	}

	if finalConfig == nil {
		finalConfig = &Config{}
	}

	finalConfig.SetDefaults()
	if err := finalConfig.Validate(); err != nil {
		return nil, err
	}

	if logger.IsLevelEnabled(logrus.DebugLevel) {
		if data, err := yaml.Marshal(finalConfig); err == nil {
			logger.Debugf("Merged configuration:\n%s", string(data))
		}
	}

	return finalConfig, nil
}

// LoadFromBytes parses and schema-checks one configuration document
// without applying defaults.
func LoadFromBytes(data []byte, format Format) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var raw map[string]interface{}
	var cfg Config

	switch format {
	case FormatTOML:
		if err := toml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config")
		}
		if err := toml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse TOML config")
		}
		cfg.Extensions = extensionKeys(raw)
	default:
		if len(bytes.TrimSpace(expanded)) == 0 {
			return &cfg, nil
		}
		if err := yaml.Unmarshal(expanded, &raw); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML config")
		}
		if err := yaml.Unmarshal(expanded, &cfg); err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse YAML config")
		}
	}

	if raw != nil {
		if err := validateDocument(raw); err != nil {
			return nil, err
		}
	}

	return &cfg, nil
}

func readFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigNotFound(path)
		}
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}

	cfg, err := LoadFromBytes(data, FormatForPath(path))
	if err != nil {
		if pbErr, ok := errors.As(err); ok {
			pbErr.WithDetail("path", path)
		}
		return nil, err
	}
	cfg.Sources = []string{path}
	return cfg, nil
}

// extensionKeys keeps the top-level keys Config does not model itself.
func extensionKeys(raw map[string]interface{}) map[string]interface{} {
	known := map[string]bool{
		"version":     true,
		"tool":        true,
		"strict_exit": true,
		"env_file":    true,
		"watch":       true,
	}
	var ext map[string]interface{}
	for k, v := range raw {
		if known[k] {
			continue
		}
		if ext == nil {
			ext = make(map[string]interface{})
		}
		ext[k] = v
	}
	return ext
}

// FindConfigFile searches for a project configuration from startDir up to
// the filesystem root.
func FindConfigFile(startDir string) (string, error) {
	dir := startDir
	for {
		for _, name := range projectConfigNames {
			path := filepath.Join(dir, name)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.ConfigNotFound(startDir)
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} references.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}

		return defaultValue
	})
}

func globalConfigPaths() []string {
	dir := paths.ConfigDir()
	if dir == "" {
		return nil
	}
	return []string{
		filepath.Join(dir, "pybuild.yml"),
		filepath.Join(dir, "pybuild.yaml"),
		filepath.Join(dir, "pybuild.toml"),
	}
}
