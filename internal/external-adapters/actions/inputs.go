// Package actions adapts the GitHub Actions runner environment: step inputs,
// workflow commands and the files the runner reads back after the step.
package actions

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Input names, shared by command-line flags and INPUT_* environment variables
const (
	InputVersion         = "version"
	InputWithJRE         = "with-jre"
	InputPlatform        = "platform"
	InputVerifySignature = "verify-signature"
	InputSHA256          = "sha256"
	InputLogLevel        = "log-level"
	InputLogFormat       = "log-format"
)

var inputNames = []string{
	InputVersion,
	InputWithJRE,
	InputPlatform,
	InputVerifySignature,
	InputSHA256,
	InputLogLevel,
	InputLogFormat,
}

// EnvName returns the environment variable the runner uses for an input.
// The runner upper-cases the name, replaces spaces and keeps hyphens.
func EnvName(input string) string {
	return "INPUT_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(input), " ", "_"))
}

// Inputs resolves step inputs; an explicitly set flag wins over the environment
type Inputs struct {
	v *viper.Viper
}

// NewInputs binds every known input to its flag in flags (if defined) and to its INPUT_* variable
func NewInputs(flags *pflag.FlagSet) (*Inputs, error) {
	v := viper.New()
	for _, name := range inputNames {
		if err := v.BindEnv(name, EnvName(name)); err != nil {
			return nil, fmt.Errorf("failed to bind input %s: %w", name, err)
		}
		if flags == nil {
			continue
		}
		if flag := flags.Lookup(name); flag != nil {
			if err := v.BindPFlag(name, flag); err != nil {
				return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
			}
		}
	}
	return &Inputs{v: v}, nil
}

// Get returns the trimmed value of an input, empty when unset
func (i *Inputs) Get(name string) string {
	return strings.TrimSpace(i.v.GetString(name))
}

// Required returns the value of an input or an error when it is empty
func (i *Inputs) Required(name string) (string, error) {
	value := i.Get(name)
	if value == "" {
		return "", fmt.Errorf("input required and not supplied: %s", name)
	}
	return value, nil
}

// Bool reports whether an input equals "true", ignoring case
func (i *Inputs) Bool(name string) bool {
	return strings.EqualFold(i.Get(name), "true")
}
