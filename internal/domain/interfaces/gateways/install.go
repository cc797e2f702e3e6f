// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"time"
)

// Downloader fetches a remote file and returns its local path
type Downloader interface {
	Download(ctx context.Context, url string) (string, error)
}

// Extractor unpacks a zip archive into destDir without elevated privileges
type Extractor interface {
	ExtractZip(ctx context.Context, archivePath, destDir string) (string, error)
}

// Mover moves a directory to a destination that must not exist yet
type Mover interface {
	Move(ctx context.Context, src, dst string) error
}

// Command is a single program invocation, optionally run with elevated privileges
type Command struct {
	Name        string
	Args        []string
	Privileged  bool
	Description string
}

// CommandResult reports the outcome of a command run
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// CommandRunner executes commands; a non-zero exit is returned as an error
type CommandRunner interface {
	Run(ctx context.Context, cmd Command) (*CommandResult, error)
}
