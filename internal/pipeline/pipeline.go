package pipeline

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/makutaku/bundlefix/internal/bundle"
	"github.com/makutaku/bundlefix/pkg/filesystem"
)

// State identifies where a pipeline run currently is. Transitions are
// strictly forward; Errored is reachable from any in-progress state.
type State string

const (
	StateIdle            State = "idle"
	StateExtracting      State = "extracting"
	StateAwaitingOptions State = "awaiting-options"
	StateRunning         State = "running"
	StateRecompressing   State = "recompressing"
	StateSucceeded       State = "succeeded"
	StateErrored         State = "errored"
)

// ErrNoStepsSelected is returned by Run when neither processing step was
// requested.
var ErrNoStepsSelected = errors.New("at least one processing step must be selected")

// Options selects which mutation steps a run performs. Immutable once Run
// starts.
type Options struct {
	FixMetadata     bool
	CreateInstaller bool
	// InstallerDestination is where the generated installer is moved.
	// Required when CreateInstaller is set.
	InstallerDestination string
}

// MetadataFixer mutates the executable inside an extracted bundle root.
type MetadataFixer interface {
	Fix(ctx context.Context, root string) error
}

// InstallerBuilder produces an installer from an extracted bundle root and
// returns the path of the generated file.
type InstallerBuilder interface {
	Build(ctx context.Context, root string) (string, error)
}

// Pipeline drives one archive through classify → extract → mutate →
// recompress. A Pipeline is single-use and owns its scratch directory
// exclusively; the caller must not run two pipelines against the same
// archive path concurrently.
type Pipeline struct {
	archivePath string
	fixer       MetadataFixer
	builder     InstallerBuilder
	reporter    Reporter

	state   State
	scratch *filesystem.ScratchDir
	root    string
	trace   []string
	logger  *log.Entry
}

// New prepares a pipeline for the archive at archivePath.
func New(archivePath string, fixer MetadataFixer, builder InstallerBuilder, reporter Reporter) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Pipeline{
		archivePath: archivePath,
		fixer:       fixer,
		builder:     builder,
		reporter:    reporter,
		state:       StateIdle,
		logger: log.WithFields(log.Fields{
			"run":     uuid.NewString(),
			"archive": filepath.Base(archivePath),
		}),
	}
}

// State returns the pipeline's current state.
func (p *Pipeline) State() State {
	return p.state
}

// Root returns the extraction root (the inner folder inside the scratch
// directory). Empty until Extract succeeds.
func (p *Pipeline) Root() string {
	return p.root
}

// Extract classifies the archive and materializes the permitted members
// into a fresh scratch directory next to the archive. On success the
// pipeline pauses awaiting options and the extraction root is returned.
//
// Classification failures surface their specific condition verbatim; they
// are the primary diagnostic the user has.
func (p *Pipeline) Extract(ctx context.Context) (string, error) {
	if p.state != StateIdle {
		return "", fmt.Errorf("cannot extract from state %q", p.state)
	}
	p.enter(StateExtracting, "classify")

	if err := ctx.Err(); err != nil {
		return "", p.fail(err)
	}

	classification, err := bundle.ClassifyArchive(p.archivePath)
	if err != nil {
		return "", p.fail(err)
	}
	p.logger.Debugf("inner folder: %s", classification.InnerFolder)

	p.stage("extract")
	scratch, err := filesystem.NewScratchDir(p.archivePath)
	if err != nil {
		return "", p.fail(err)
	}
	p.scratch = scratch

	if err := filesystem.ExtractMembers(p.archivePath, classification.Members, scratch.Path()); err != nil {
		// Nothing useful to keep from a failed extraction.
		if rmErr := scratch.Remove(); rmErr != nil {
			p.logger.Warnf("failed to clean up scratch directory: %v", rmErr)
		}
		return "", p.fail(err)
	}

	p.root = filepath.Join(scratch.Path(), classification.InnerFolder)
	p.logger.Infof("extracted to %s", p.root)

	p.state = StateAwaitingOptions
	return p.root, nil
}

// Run executes the selected mutation steps against the extracted tree.
// Steps run strictly in order: the metadata fix must happen before the
// installer build so the installer packages the corrected executable.
// Whenever the metadata step ran, the original archive is rebuilt from the
// scratch tree and atomically replaced.
//
// On step failure the scratch directory is kept (partial state is useful
// for diagnostics) until Close is called.
func (p *Pipeline) Run(ctx context.Context, opts Options) error {
	if p.state != StateAwaitingOptions {
		return fmt.Errorf("cannot run from state %q", p.state)
	}

	if !opts.FixMetadata && !opts.CreateInstaller {
		// Not a terminal failure: the caller may come back with real
		// options, so the pipeline stays where it was.
		p.reporter.Error(newReport(ErrNoStepsSelected, p.trace))
		return ErrNoStepsSelected
	}

	p.state = StateRunning
	if err := ctx.Err(); err != nil {
		return p.fail(err)
	}

	if opts.FixMetadata {
		p.stage("fix-metadata")
		p.progress("Creating EXE with fixed metadata")
		if err := p.fixer.Fix(ctx, p.root); err != nil {
			return p.fail(err)
		}

		p.stage("recompress")
		p.state = StateRecompressing
		p.progress("Recompressing (slow!)")
		if err := filesystem.ReplaceArchive(p.scratch.Path(), p.archivePath); err != nil {
			return p.fail(err)
		}
		p.progress("Replaced EXE in original zip with fixed metadata EXE")
		p.state = StateRunning
	}

	if opts.CreateInstaller {
		p.stage("create-installer")
		p.progress("Creating installer (very slow!!)")
		generated, err := p.builder.Build(ctx, p.root)
		if err != nil {
			return p.fail(err)
		}

		p.stage("move-installer")
		if err := filesystem.MoveFile(generated, opts.InstallerDestination); err != nil {
			return p.fail(err)
		}
		p.progress("Created installer")
	}

	p.state = StateSucceeded
	p.reporter.Success()
	return nil
}

// Close releases the scratch directory. It must be called on every exit
// path; calling it more than once is safe.
func (p *Pipeline) Close() error {
	if p.scratch == nil {
		return nil
	}
	return p.scratch.Remove()
}

func (p *Pipeline) enter(state State, stage string) {
	p.state = state
	p.stage(stage)
}

func (p *Pipeline) stage(name string) {
	p.trace = append(p.trace, name)
	p.logger.Debugf("entering stage %s", name)
}

func (p *Pipeline) progress(text string) {
	p.logger.Info(text)
	p.reporter.Progress(text)
}

func (p *Pipeline) fail(err error) error {
	p.state = StateErrored
	p.logger.Errorf("pipeline failed: %v", err)
	p.reporter.Error(newReport(err, p.trace))
	return err
}
