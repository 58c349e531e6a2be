package cli

import (
	"os"
	"path/filepath"

	"github.com/grovetools/pybuild/config"
	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

// CommandOptions holds common options for pybuild commands
type CommandOptions struct {
	ConfigFile string
	Dir        string
	Verbose    bool
	JSONOutput bool
}

// NewStandardCommand creates a new command with the standard pybuild flags
func NewStandardCommand(use, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("json", false, "Write structured logs as JSON to stderr")
	cmd.PersistentFlags().StringP("config", "c", "", "Path to pybuild.yml config file")
	cmd.PersistentFlags().StringP("dir", "C", "", "Working directory to build from (default: current directory)")

	SetStyledHelp(cmd)

	return cmd
}

// GetLogger creates a logger based on command flags
func GetLogger(cmd *cobra.Command) *logrus.Logger {
	entry := logging.NewLogger("pybuild")
	logger := entry.Logger

	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	return logger
}

// GetOptions extracts common options from a command
func GetOptions(cmd *cobra.Command) CommandOptions {
	configFile, _ := cmd.Flags().GetString("config")
	dir, _ := cmd.Flags().GetString("dir")
	verbose, _ := cmd.Flags().GetBool("verbose")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	return CommandOptions{
		ConfigFile: configFile,
		Dir:        dir,
		Verbose:    verbose,
		JSONOutput: jsonOutput,
	}
}

// WorkingDir returns the absolute directory the build runs from.
func (o CommandOptions) WorkingDir() (string, error) {
	dir := o.Dir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", errors.Wrap(err, errors.ErrCodeInternal, "failed to get current directory")
		}
		dir = cwd
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", errors.InvalidInput("dir", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", errors.InvalidInput("dir", err).WithDetail("path", abs)
	}
	if !info.IsDir() {
		return "", errors.New(errors.ErrCodeInvalidInput, "not a directory: "+abs).WithDetail("path", abs)
	}
	return abs, nil
}

// InitConfig initializes the configuration file path
func InitConfig(configFile, startDir string) (string, error) {
	if configFile != "" {
		return configFile, nil
	}

	foundConfigFile, err := config.FindConfigFile(startDir)
	if err != nil {
		// No config file found, that's okay
		return "", nil
	}

	return foundConfigFile, nil
}

// LoadConfig loads the configuration the flags select: the --config file
// alone when given, otherwise the layered lookup from the working
// directory. --verbose and --json are folded into the logging section.
func LoadConfig(opts CommandOptions, dir string) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.ConfigFile != "" {
		cfg, err = config.Load(opts.ConfigFile)
	} else {
		cfg, err = config.LoadFrom(dir)
	}
	if err != nil {
		return nil, err
	}

	applyLoggingFlags(cfg, opts)
	return cfg, nil
}

func applyLoggingFlags(cfg *config.Config, opts CommandOptions) {
	if !opts.Verbose && !opts.JSONOutput {
		return
	}
	if cfg.Extensions == nil {
		cfg.Extensions = make(map[string]interface{})
	}
	section, _ := cfg.Extensions["logging"].(map[string]interface{})
	if section == nil {
		section = make(map[string]interface{})
	}

	if opts.Verbose {
		section["level"] = "debug"
	}
	if opts.JSONOutput {
		format, _ := section["format"].(map[string]interface{})
		if format == nil {
			format = make(map[string]interface{})
		}
		format["preset"] = "json"
		format["structured_to_stderr"] = "always"
		section["format"] = format
	}
	cfg.Extensions["logging"] = section
}
