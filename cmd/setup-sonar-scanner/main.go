package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/actions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	reporter := actions.NewReporterFromEnv(os.Stdout)
	cmd := newRootCmd(&app{
		stderr:       os.Stderr,
		reporter:     reporter,
		goos:         defaultGOOS(),
		newInstaller: newInstaller,
	})

	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		reporter.SetFailed(err.Error())
		os.Exit(1)
	}
}
