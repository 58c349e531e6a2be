package config

import (
	"fmt"
	"strings"
	"sync"

	"github.com/grovetools/pybuild/errors"
	"github.com/grovetools/pybuild/schema"
	"github.com/sirupsen/logrus"
)

var (
	validatorOnce sync.Once
	validator     *schema.Validator
	validatorErr  error
)

func documentValidator() (*schema.Validator, error) {
	validatorOnce.Do(func() {
		data, err := GenerateSchema()
		if err != nil {
			validatorErr = err
			return
		}
		validator, validatorErr = schema.NewValidator("pybuild.json", data)
	})
	return validator, validatorErr
}

// validateDocument checks a raw decoded document against the schema.
func validateDocument(raw map[string]interface{}) error {
	v, err := documentValidator()
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to build configuration schema")
	}
	if err := v.Validate(raw); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigValidation, "configuration does not match schema")
	}
	return nil
}

// Validate performs semantic checks on a merged configuration.
func (c *Config) Validate() error {
	var problems []string

	if strings.TrimSpace(c.Tool) == "" {
		problems = append(problems, "tool cannot be empty")
	}
	if c.Watch.DebounceMs < 0 {
		problems = append(problems, fmt.Sprintf("watch.debounce_ms must be >= 0, got %d", c.Watch.DebounceMs))
	}
	if c.Version != "" && c.Version != CurrentVersion {
		problems = append(problems, fmt.Sprintf("unsupported version %q (expected %q)", c.Version, CurrentVersion))
	}

	var logCfg struct {
		Level string `yaml:"level"`
	}
	if err := c.UnmarshalExtension("logging", &logCfg); err != nil {
		problems = append(problems, err.Error())
	} else if logCfg.Level != "" {
		if _, err := logrus.ParseLevel(logCfg.Level); err != nil {
			problems = append(problems, fmt.Sprintf("logging.level: %v", err))
		}
	}

	if len(problems) > 0 {
		return errors.New(errors.ErrCodeConfigValidation, strings.Join(problems, "; ")).
			WithDetail("problems", problems)
	}
	return nil
}
