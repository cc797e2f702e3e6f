package gateways

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
	domainGateways "github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces/gateways"
)

// ErrCommandFailed is returned when a command exits with a non-zero status
var ErrCommandFailed = errors.New("command failed")

// CommandExecutor runs shell commands, elevating through sudo when asked to
type CommandExecutor struct {
	shell  string
	sudo   string
	isRoot func() bool
	logger interfaces.Logger
}

// NewCommandExecutor creates a new command executor
func NewCommandExecutor(logger interfaces.Logger) *CommandExecutor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &CommandExecutor{
		shell:  "/bin/sh",
		sudo:   "sudo",
		isRoot: func() bool { return os.Geteuid() == 0 },
		logger: logger,
	}
}

// ExecuteScriptConfig contains configuration for executing a shell script.
type ExecuteScriptConfig struct {
	Script      string
	WorkingDir  string
	Env         map[string]string
	Description string
}

// ExecuteResult contains the result of script execution
type ExecuteResult struct {
	Success  bool
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
	Error    error
}

// ExecuteScript runs a shell script with the given configuration
func (ce *CommandExecutor) ExecuteScript(ctx context.Context, config ExecuteScriptConfig) *ExecuteResult {
	startTime := time.Now()
	result := &ExecuteResult{}

	//nolint:gosec // G204: Commands are built from resolved install coordinates and quoted
	cmd := exec.CommandContext(ctx, ce.shell, "-c", config.Script)

	if config.WorkingDir != "" {
		cmd.Dir = config.WorkingDir
	}

	if len(config.Env) > 0 {
		env := os.Environ()
		for key, value := range config.Env {
			env = append(env, fmt.Sprintf("%s=%s", key, value))
		}
		cmd.Env = env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if config.Description != "" {
		ce.logger.Debug("executing", interfaces.F("step", config.Description), interfaces.F("command", config.Script))
	}

	err := cmd.Run()
	result.Duration = time.Since(startTime)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()

	if err != nil {
		result.Error = err
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		return result
	}

	result.Success = true
	result.ExitCode = 0
	return result
}

// CommandLine renders cmd as a quoted shell command line, prefixed with sudo when elevation is needed
func (ce *CommandExecutor) CommandLine(cmd domainGateways.Command) string {
	argv := make([]string, 0, len(cmd.Args)+2)
	if cmd.Privileged && !ce.isRoot() {
		argv = append(argv, ce.sudo)
	}
	argv = append(argv, cmd.Name)
	argv = append(argv, cmd.Args...)
	return shellquote.Join(argv...)
}

// Run executes cmd once and converts a non-zero exit into ErrCommandFailed
func (ce *CommandExecutor) Run(ctx context.Context, cmd domainGateways.Command) (*domainGateways.CommandResult, error) {
	line := ce.CommandLine(cmd)
	ce.logger.Info("running command", interfaces.F("command", line))

	result := ce.ExecuteScript(ctx, ExecuteScriptConfig{
		Script:      line,
		Description: cmd.Description,
	})

	out := &domainGateways.CommandResult{
		ExitCode: result.ExitCode,
		Stdout:   result.Stdout,
		Stderr:   result.Stderr,
		Duration: result.Duration,
	}

	if !result.Success {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return out, fmt.Errorf("%s: %w", line, ctxErr)
		}
		return out, fmt.Errorf("%w: %s (exit %d): %s",
			ErrCommandFailed, line, result.ExitCode, strings.TrimSpace(result.Stderr))
	}

	return out, nil
}
