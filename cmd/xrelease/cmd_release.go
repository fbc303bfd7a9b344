package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/mitchellh/colorstring"
	"github.com/rotisserie/eris"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ochairo/xrelease/internal/domain-adapters/gateways"
	orchestrators "github.com/ochairo/xrelease/internal/domain-orchestrators"
	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
	"github.com/ochairo/xrelease/internal/domain/interfaces/repositories"
	"github.com/ochairo/xrelease/internal/domain/services"
	"github.com/ochairo/xrelease/internal/external-adapters/yaml"
)

type releaseOptions struct {
	jobs       int
	keepGoing  bool
	checksums  bool
	jsonOutput string
}

func newRootCommand(c *cli) *cobra.Command {
	var opts releaseOptions

	cmd := &cobra.Command{
		Use:   "xrelease <tag/version>",
		Short: "Cross-compile a Go program and package one archive per target",
		Long: `xrelease compiles the program once for every target in the release manifest
(release.yml, optional), stages each binary together with its documentation and
packs it into releases/<tool>-<os>-<arch>-<version>.tar.gz.

The run stops at the first failing target unless --keep-going is given.`,
		Args:          exactlyOneVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			c.setupLogger()
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRelease(cmd.Context(), args[0], opts)
		},
	}

	persistent := cmd.PersistentFlags()
	persistent.StringVar(&c.manifestPath, "config", c.cfg.Manifest, "Path to the release manifest")
	persistent.StringVar(&c.outputDir, "output-dir", c.cfg.OutputDir, "Directory for staging directories and archives")
	persistent.BoolVarP(&c.quiet, "quiet", "q", false, "Only log warnings and errors")

	flags := cmd.Flags()
	flags.IntVarP(&opts.jobs, "jobs", "j", c.cfg.Jobs, "Number of targets built concurrently")
	flags.BoolVar(&opts.keepGoing, "keep-going", false, "Attempt every target and report all failures")
	flags.BoolVar(&opts.checksums, "checksums", false, "Write a .sha256 file next to every archive")
	flags.StringVar(&opts.jsonOutput, "json-output", "", "Optional JSON file for the release report (- for stdout)")

	cmd.AddCommand(newTargetsCommand(c), newVerifyCommand(c))
	return cmd
}

func exactlyOneVersion(_ *cobra.Command, args []string) error {
	if len(args) != 1 {
		return eris.Wrapf(entities.ErrUsage, "expected 1 argument, got %d", len(args))
	}
	return nil
}

func (c *cli) manifestRepository() repositories.ManifestRepository {
	return yaml.NewManifestRepository(c.manifestPath, defaultName())
}

// loadManifest reads the manifest named by --config
func (c *cli) loadManifest(ctx context.Context) (*entities.Manifest, error) {
	manifest, err := c.manifestRepository().GetManifest(ctx)
	if err != nil {
		return nil, eris.Wrapf(err, "failed to load %s", c.manifestPath)
	}
	return manifest, nil
}

func (c *cli) runRelease(ctx context.Context, version string, opts releaseOptions) error {
	if _, err := semver.NewVersion(version); err != nil {
		c.logger.Warn("Version tag is not a semantic version", interfaces.F("version", version))
	}

	manifest, err := c.loadManifest(ctx)
	if err != nil {
		return err
	}

	bar := c.newProgressBar(len(manifest.Targets))
	orchestrator := orchestrators.NewReleaseOrchestrator(
		manifest,
		gateways.NewCompiler(manifest.Build, c.logger),
		gateways.NewStager(),
		gateways.NewPackager(),
		services.NewChecksumService(gateways.NewChecksumVerifier()),
		c.logger,
		orchestrators.ReleaseOrchestratorConfig{
			OutputDir: c.outputDir,
			Jobs:      opts.jobs,
			KeepGoing: opts.keepGoing,
			Checksums: opts.checksums,
			OnTargetDone: func(result entities.TargetResult) {
				bar.Describe(result.Target.String())
				//nolint:errcheck // Progress output is best effort
				bar.Add(1)
			},
		},
	)

	report, err := orchestrator.Release(ctx, version)
	//nolint:errcheck // Progress output is best effort
	bar.Finish()

	for _, artifact := range report.Artifacts() {
		c.logger.Debug("Archive ready",
			interfaces.F("target", artifact.Target.StageName(artifact.Name)),
			interfaces.F("archive", artifact.Path),
			interfaces.F("checksum", artifact.Checksum),
		)
	}

	if opts.jsonOutput != "" && len(report.Results) > 0 {
		if werr := c.writeReport(opts.jsonOutput, report); werr != nil {
			err = multierr.Append(err, werr)
		}
	}

	if !c.quiet && opts.jsonOutput != "-" && len(report.Results) > 0 {
		c.printSummary(report)
	}

	return err
}

// showProgress reports whether the progress bar is drawn: only for
// human-readable output on an interactive stderr, and never with --quiet
func showProgress(quiet, jsonLogs, interactive bool) bool {
	return !quiet && !jsonLogs && interactive
}

func (c *cli) newProgressBar(total int) *progressbar.ProgressBar {
	if !showProgress(c.quiet, c.cfg.LogJSON, isTerminal(c.stderr)) {
		return progressbar.NewOptions(total, progressbar.OptionSetVisibility(false))
	}

	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(c.stderr),
		progressbar.OptionSetDescription("Building"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *cli) writeReport(path string, report *entities.ReleaseReport) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return eris.Wrap(err, "failed to encode report")
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = c.stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return eris.Wrapf(err, "failed to write report to %s", path)
	}
	return nil
}

func (c *cli) printSummary(report *entities.ReleaseReport) {
	colorizer := colorstring.Colorize{
		Colors:  colorstring.DefaultColors,
		Disable: !isTerminal(c.stdout),
		Reset:   true,
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("[bold]Release %s %s[reset]\n", report.Name, report.Version))
	for _, result := range report.Results {
		switch result.Status {
		case entities.StatusSuccess:
			sb.WriteString(fmt.Sprintf("  [green]ok[reset]      %-14s %s\n", result.Platform, result.Archive))
		case entities.StatusSkipped, entities.StatusCancelled:
			sb.WriteString(fmt.Sprintf("  [yellow]%-7s[reset] %-14s %s\n", result.Status, result.Platform, firstLine(result.Message)))
		default:
			sb.WriteString(fmt.Sprintf("  [red]%-7s[reset] %-14s %s\n", result.Status, result.Platform, firstLine(result.Message)))
		}
	}
	sb.WriteString(fmt.Sprintf("%d targets: %d succeeded, %d failed, %d skipped",
		report.TotalTargets, report.Succeeded, report.Failed, report.Skipped))
	if report.Cancelled > 0 {
		sb.WriteString(fmt.Sprintf(", %d cancelled", report.Cancelled))
	}
	sb.WriteString(fmt.Sprintf(" (%.2fs)\n", report.DurationSeconds))

	fmt.Fprint(c.stdout, colorizer.Color(sb.String()))
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(s, "\n")
	return line
}
