package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"

	"github.com/ochairo/xrelease/internal/domain-adapters/gateways"
	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
	"github.com/ochairo/xrelease/internal/domain/services"
)

func newVerifyCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <tag/version>",
		Short: "Check that a release is complete and its checksums match",
		Long: `Looks for the archives of the given version in the output directory and checks
that there is exactly one per target, that each holds the binary and docs under
its staging directory name, that no staging directory was left behind and that
every archive with a .sha256 file still matches it.`,
		Args: exactlyOneVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runVerify(cmd.Context(), args[0])
		},
	}
}

func (c *cli) runVerify(ctx context.Context, version string) error {
	manifest, err := c.loadManifest(ctx)
	if err != nil {
		return err
	}

	finder := gateways.NewArtifactFinder()
	archives, err := finder.FindArchives(c.outputDir, manifest.Name, version)
	if err != nil {
		return err
	}
	staging, err := finder.FindStaging(c.outputDir, manifest.StageNames())
	if err != nil {
		return err
	}

	releases := services.NewReleaseService()
	validation := releases.ValidateRelease(manifest, version, archives, staging)

	var errs error
	if !validation.IsReady() {
		errs = multierr.Append(errs, eris.New(validation.ErrorMessage()))
	}

	targets := make(map[string]entities.Target, len(manifest.Targets))
	for _, target := range manifest.Targets {
		targets[target.ArchiveName(manifest.Name, version)] = target
	}

	packager := gateways.NewPackager()
	checksums := services.NewChecksumService(gateways.NewChecksumVerifier())
	for _, archive := range archives {
		base := filepath.Base(archive)

		hasSidecar := checksums.HasSidecar(archive)
		if hasSidecar {
			if err := checksums.VerifySHA256(ctx, archive); err != nil {
				fmt.Fprintf(c.stdout, "  %-8s %s\n", "FAILED", base)
				errs = multierr.Append(errs, err)
				continue
			}
		} else {
			c.logger.Debug("No checksum file", interfaces.F("archive", archive))
		}

		// Unexpected archives are already reported by the validation
		if target, ok := targets[base]; ok {
			entries, err := packager.ListArchive(archive)
			if err == nil {
				err = releases.CheckArchiveLayout(manifest, target, entries)
			}
			if err != nil {
				fmt.Fprintf(c.stdout, "  %-8s %s\n", "INVALID", base)
				errs = multierr.Append(errs, err)
				continue
			}
		}

		status := "present"
		if hasSidecar {
			status = "OK"
		}
		fmt.Fprintf(c.stdout, "  %-8s %s\n", status, base)
	}

	if errs != nil {
		return errs
	}

	c.logger.Info("Release verified",
		interfaces.F("version", version),
		interfaces.F("archives", len(archives)),
	)
	return nil
}
