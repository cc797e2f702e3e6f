package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ochairo/setup-sonar-scanner/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/setup-sonar-scanner/internal/domain-orchestrators"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
	"github.com/ochairo/setup-sonar-scanner/internal/domain/services"
	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/actions"
	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/gpg"
	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/logging"
	"github.com/ochairo/setup-sonar-scanner/internal/external-adapters/yaml"
)

// Step outputs published on success
const (
	outputPath    = "sonar-scanner-path"
	outputVersion = "sonar-scanner-version"
)

type installer interface {
	Install(ctx context.Context, req entities.InstallRequest, platform entities.Platform) (*orchestrators.InstallResult, error)
}

// installConfig carries everything needed to wire an installer
type installConfig struct {
	Distribution    *entities.Distribution
	ExpectedSHA256  string
	VerifySignature bool
	DownloadDir     string
	Progress        io.Writer
	Logger          interfaces.Logger
}

type app struct {
	stderr       io.Writer
	reporter     *actions.Reporter
	goos         string
	newInstaller func(cfg installConfig) installer
}

func defaultGOOS() string {
	return runtime.GOOS
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup-sonar-scanner",
		Short: "Install the SonarQube scanner CLI on a CI runner",
		Long: `Downloads the requested sonar-scanner-cli release from binaries.sonarsource.com,
installs it at the platform's fixed location and adds its bin directory to PATH.

Every flag falls back to the matching INPUT_* environment variable set by the runner,
for example INPUT_VERSION and INPUT_WITH-JRE.`,
		Example: `  setup-sonar-scanner --version 4.8.0.2856
  setup-sonar-scanner --version 4.8.0.2856 --with-jre --verify-signature`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.run(cmd)
		},
	}

	flags := cmd.Flags()
	flags.String(actions.InputVersion, "", "scanner version to install, e.g. 4.8.0.2856")
	flags.String(actions.InputWithJRE, "false", "install the distribution bundling a Java runtime")
	flags.String(actions.InputPlatform, "", "target platform (linux, macos, windows); defaults to the host")
	flags.String(actions.InputVerifySignature, "false", "verify the archive's detached GPG signature")
	flags.String(actions.InputSHA256, "", "expected SHA-256 of the archive")
	flags.String(actions.InputLogLevel, "info", "log level (debug, info, warn, error)")
	flags.String(actions.InputLogFormat, logging.FormatConsole, "log format (console, json)")
	flags.Lookup(actions.InputWithJRE).NoOptDefVal = "true"
	flags.Lookup(actions.InputVerifySignature).NoOptDefVal = "true"

	cmd.AddCommand(newDistributionsCmd(), newVerifyCmd())
	return cmd
}

func (a *app) run(cmd *cobra.Command) error {
	ctx := cmd.Context()

	inputs, err := actions.NewInputs(cmd.Flags())
	if err != nil {
		return err
	}

	logger := logging.NewZerologLogger(logging.Config{
		Level:       inputs.Get(actions.InputLogLevel),
		Format:      inputs.Get(actions.InputLogFormat),
		Out:         a.stderr,
		RunnerDebug: os.Getenv("RUNNER_DEBUG") == "1",
	})

	version, err := inputs.Required(actions.InputVersion)
	if err != nil {
		return err
	}
	req := entities.InstallRequest{
		Version:        version,
		IncludeRuntime: entities.ParseIncludeRuntime(inputs.Get(actions.InputWithJRE)),
	}

	platform, err := a.platform(inputs.Get(actions.InputPlatform))
	if err != nil {
		return err
	}

	dist, err := yaml.NewEmbeddedDistributionRepository().GetDistribution(ctx, services.DistributionName)
	if err != nil {
		return err
	}

	cfg := installConfig{
		Distribution:    dist,
		ExpectedSHA256:  inputs.Get(actions.InputSHA256),
		VerifySignature: inputs.Bool(actions.InputVerifySignature),
		DownloadDir:     os.Getenv("RUNNER_TEMP"),
		Logger:          logger,
	}
	if f, ok := a.stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		cfg.Progress = f
	}

	a.reporter.Group(fmt.Sprintf("Installing sonar-scanner %s (%s)", req.Version, platform))
	result, err := a.newInstaller(cfg).Install(ctx, req, platform)
	a.reporter.EndGroup()
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("install cancelled: %w", err)
		}
		return err
	}
	logger.Debug(result.GetInstallSummary())

	installPath := result.Target.FinalInstallPath
	binDir := strings.TrimSuffix(installPath, platform.Separator()) + platform.Separator() + "bin"
	if err := a.reporter.AddPath(binDir); err != nil {
		return fmt.Errorf("failed to add %s to PATH: %w", binDir, err)
	}
	if err := a.reporter.SetOutput(outputPath, installPath); err != nil {
		return err
	}
	if err := a.reporter.SetOutput(outputVersion, req.Version); err != nil {
		return err
	}

	logger.Info("sonar-scanner is ready", interfaces.F("path", installPath), interfaces.F("bin", binDir))
	return nil
}

// platform resolves the target platform from an explicit name or the host
func (a *app) platform(name string) (entities.Platform, error) {
	if name != "" {
		return entities.ParsePlatform(name)
	}
	return entities.DetectPlatform(a.goos)
}

// newInstaller wires the production adapters into an install orchestrator
func newInstaller(cfg installConfig) installer {
	locator := services.NewLocator(cfg.Distribution)

	downloaderOpts := []gateways.DownloaderOption{gateways.WithDownloadLogger(cfg.Logger)}
	if cfg.DownloadDir != "" {
		downloaderOpts = append(downloaderOpts, gateways.WithDownloadDir(cfg.DownloadDir))
	}
	if cfg.Progress != nil {
		downloaderOpts = append(downloaderOpts, gateways.WithProgress(cfg.Progress))
	}

	verifier := orchestrators.NewVerificationOrchestrator(
		gateways.NewChecksumVerifier(),
		gateways.NewGPGVerifier(gpg.WithKeyservers(gpg.DefaultKeyservers...)),
		locator,
		orchestrators.VerificationConfig{
			ExpectedSHA256:  cfg.ExpectedSHA256,
			VerifySignature: cfg.VerifySignature,
			KeyFingerprints: cfg.Distribution.Signature.KeyFingerprints,
			Logger:          cfg.Logger,
		},
	)

	return orchestrators.NewInstallOrchestrator(
		locator,
		gateways.NewDownloader(downloaderOpts...),
		gateways.NewZipExtractor(cfg.Logger),
		gateways.NewDirMover(),
		gateways.NewCommandExecutor(cfg.Logger),
		orchestrators.InstallOrchestratorConfig{
			ArchiveExtension: cfg.Distribution.ArchiveExtension,
			Verifier:         verifier,
			Logger:           cfg.Logger,
		},
	)
}
