// Package orchestrators coordinates the release workflow across gateways and services.
package orchestrators

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/ochairo/xrelease/internal/domain/entities"
	"github.com/ochairo/xrelease/internal/domain/interfaces"
)

// DefaultOutputDir is where staging directories and archives are written
const DefaultOutputDir = "releases"

// Compiler builds the program for one target
type Compiler interface {
	Compile(ctx context.Context, target entities.Target, source, output string) (*entities.CompileResult, error)
}

// Stager manages staging directories
type Stager interface {
	Create(dir string) error
	Scratch(pattern string) (string, error)
	Move(src, dstDir string) (string, error)
	Copy(src, dstDir string) (string, error)
	Remove(dir string) error
}

// Packager archives a staging directory
type Packager interface {
	Pack(ctx context.Context, stageDir, archivePath string) error
}

// Checksummer writes checksum sidecars for archives
type Checksummer interface {
	GenerateSHA256(filePath string) (string, error)
}

// ReleaseOrchestratorConfig holds configuration for the orchestrator
type ReleaseOrchestratorConfig struct {
	OutputDir string
	// Jobs is the number of targets built concurrently; values below 1 mean 1
	Jobs int
	// KeepGoing attempts every target and reports all failures together
	KeepGoing bool
	// Checksums writes a .sha256 file next to every archive
	Checksums bool
	// LookupEnv defaults to os.LookupEnv
	LookupEnv func(string) (string, bool)
	// OnTargetDone is called once per target, serialized, in completion order
	OnTargetDone func(entities.TargetResult)
}

// ReleaseOrchestrator coordinates the per-target release workflow:
// stage, compile, collect, archive, clean up.
type ReleaseOrchestrator struct {
	manifest     *entities.Manifest
	compiler     Compiler
	stager       Stager
	packager     Packager
	checksummer  Checksummer
	logger       interfaces.Logger
	outputDir    string
	jobs         int
	keepGoing    bool
	checksums    bool
	lookupEnv    func(string) (string, bool)
	onTargetDone func(entities.TargetResult)
	notifyMu     sync.Mutex
}

// NewReleaseOrchestrator creates a new release orchestrator
func NewReleaseOrchestrator(
	manifest *entities.Manifest,
	compiler Compiler,
	stager Stager,
	packager Packager,
	checksummer Checksummer,
	logger interfaces.Logger,
	config ReleaseOrchestratorConfig,
) *ReleaseOrchestrator {
	outputDir := config.OutputDir
	if outputDir == "" {
		outputDir = DefaultOutputDir
	}

	jobs := config.Jobs
	if jobs < 1 {
		jobs = 1
	}

	lookupEnv := config.LookupEnv
	if lookupEnv == nil {
		lookupEnv = os.LookupEnv
	}

	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}

	return &ReleaseOrchestrator{
		manifest:     manifest,
		compiler:     compiler,
		stager:       stager,
		packager:     packager,
		checksummer:  checksummer,
		logger:       logger,
		outputDir:    outputDir,
		jobs:         jobs,
		keepGoing:    config.KeepGoing,
		checksums:    config.Checksums,
		lookupEnv:    lookupEnv,
		onTargetDone: config.OnTargetDone,
	}
}

// CheckEnvironment verifies that every required variable is set and non-empty
func (o *ReleaseOrchestrator) CheckEnvironment() error {
	for _, name := range o.manifest.RequireEnv {
		if value, ok := o.lookupEnv(name); !ok || value == "" {
			return eris.Wrapf(entities.ErrMissingEnv, "%s is not set", name)
		}
	}
	return nil
}

// Release builds and archives every target for version.
// The environment check runs before anything is written. With fail-fast
// (the default) the first failure stops the run and the remaining targets
// are reported as skipped. Targets already building are cancelled and their
// staging directories removed; archives of earlier targets stay in place.
// The report is returned even when err is non-nil.
func (o *ReleaseOrchestrator) Release(ctx context.Context, version string) (*entities.ReleaseReport, error) {
	startTime := time.Now()
	targets := o.manifest.Targets
	report := &entities.ReleaseReport{
		Name:         o.manifest.Name,
		Version:      version,
		TotalTargets: len(targets),
	}

	if err := o.CheckEnvironment(); err != nil {
		return report, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make([]entities.TargetResult, len(targets))
	errs := make([]error, len(targets))

	g := new(errgroup.Group)
	g.SetLimit(o.jobs)

	for i, target := range targets {
		g.Go(func() error {
			if runCtx.Err() != nil {
				results[i] = o.skipped(ctx, target)
				o.notify(results[i])
				return nil
			}

			result, err := o.releaseTarget(runCtx, target, version)
			switch {
			case err == nil:
			case errors.Is(err, context.Canceled) && ctx.Err() == nil:
				// Another target failed first and cancelled this one
				result.Message = "cancelled after another target failed"
			default:
				errs[i] = err
				o.reportFailure(target, err)
				if !o.keepGoing {
					cancel()
				}
			}

			results[i] = result
			o.notify(result)
			return nil
		})
	}

	//nolint:errcheck // Target goroutines never return errors; failures are kept in errs
	g.Wait()

	for _, result := range results {
		report.Record(result)
	}
	report.DurationSeconds = time.Since(startTime).Seconds()

	combined := multierr.Combine(errs...)
	if combined == nil && ctx.Err() != nil {
		combined = eris.Wrap(ctx.Err(), "release interrupted")
	}
	return report, combined
}

// releaseTarget runs the workflow for a single target
func (o *ReleaseOrchestrator) releaseTarget(ctx context.Context, target entities.Target, version string) (entities.TargetResult, error) {
	startTime := time.Now()
	name := o.manifest.Name
	stageName := target.StageName(name)
	stageDir := filepath.Join(o.outputDir, stageName)
	archivePath := filepath.Join(o.outputDir, target.ArchiveName(name, version))

	log := o.logger.With(interfaces.F("target", stageName))

	staged := false
	result := entities.TargetResult{Target: target}
	fail := func(step string, err error) (entities.TargetResult, error) {
		switch {
		case errors.Is(err, context.Canceled):
			// A cancelled build leaves no staging directory behind
			result.Status = entities.StatusCancelled
			if staged {
				if rmErr := o.stager.Remove(stageDir); rmErr != nil {
					log.Warn("Failed to remove staging directory", interfaces.F("error", rmErr))
				}
			}
		case errors.Is(err, entities.ErrCompileTimeout):
			result.Status = entities.StatusTimeout
		default:
			result.Status = entities.StatusError
		}
		result.Message = err.Error()
		result.TotalDuration = time.Since(startTime)
		return result, &TargetError{Target: target, Stage: stageName, Step: step, Err: err}
	}

	log.Info("Building release")

	// Step 1: Create staging directory
	if err := o.stager.Create(stageDir); err != nil {
		return fail(StepStage, err)
	}
	staged = true

	// Step 2: Compile into a private scratch directory
	scratch, err := o.stager.Scratch("xrelease-" + stageName + "-*")
	if err != nil {
		return fail(StepStage, err)
	}
	defer func() {
		if err := o.stager.Remove(scratch); err != nil {
			log.Warn("Failed to remove scratch directory", interfaces.F("error", err))
		}
	}()

	binary := filepath.Join(scratch, target.BinaryName(name))
	compiled, err := o.compiler.Compile(ctx, target, o.manifest.Source, binary)
	if err != nil {
		return fail(StepCompile, err)
	}
	if compiled != nil {
		result.CompileDuration = compiled.Duration
	}

	// Step 3: Collect binary and documentation
	if _, err := o.stager.Move(binary, stageDir); err != nil {
		return fail(StepStage, err)
	}
	for _, doc := range o.manifest.Docs {
		if _, err := o.stager.Copy(doc, stageDir); err != nil {
			return fail(StepStage, err)
		}
	}

	// Step 4: Archive
	if err := o.packager.Pack(ctx, stageDir, archivePath); err != nil {
		return fail(StepPackage, err)
	}

	// Step 5: Remove staging
	if err := o.stager.Remove(stageDir); err != nil {
		return fail(StepCleanup, err)
	}

	// Step 6: Checksum (optional)
	if o.checksums {
		sumPath, err := o.checksummer.GenerateSHA256(archivePath)
		if err != nil {
			return fail(StepChecksum, err)
		}
		result.Checksum = sumPath
	}

	result.Status = entities.StatusSuccess
	result.Archive = archivePath
	result.TotalDuration = time.Since(startTime)

	log.Debug("Release archived",
		interfaces.F("archive", archivePath),
		interfaces.F("duration", result.TotalDuration),
	)

	return result, nil
}

func (o *ReleaseOrchestrator) reportFailure(target entities.Target, err error) {
	stageName := target.StageName(o.manifest.Name)
	if o.keepGoing {
		o.logger.Error("Error building "+stageName, interfaces.F("error", err))
		return
	}
	o.logger.Error("Error building "+stageName+". Exiting...", interfaces.F("error", err))
}

// skipped returns the result of a target that was never attempted
func (o *ReleaseOrchestrator) skipped(ctx context.Context, target entities.Target) entities.TargetResult {
	message := "not attempted after an earlier failure"
	if ctx.Err() != nil {
		message = "not attempted: " + ctx.Err().Error()
	}
	return entities.TargetResult{
		Target:  target,
		Status:  entities.StatusSkipped,
		Message: message,
	}
}

func (o *ReleaseOrchestrator) notify(result entities.TargetResult) {
	if o.onTargetDone == nil {
		return
	}
	o.notifyMu.Lock()
	defer o.notifyMu.Unlock()
	o.onTargetDone(result)
}
