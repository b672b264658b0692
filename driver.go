package locpatch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// FileState is the processing state of one file.
type FileState int

const (
	StateUnvisited FileState = iota
	StateScanning
	StateNeedsWrite
	StateNoChangeNeeded
	StateDone
	StateFailed
)

func (s FileState) String() string {
	switch s {
	case StateUnvisited:
		return "unvisited"
	case StateScanning:
		return "scanning"
	case StateNeedsWrite:
		return "needs_write"
	case StateNoChangeNeeded:
		return "no_change_needed"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("FileState(%d)", int(s))
}

// DriverConfig configures a Driver. It is validated once in NewDriver.
type DriverConfig struct {
	Root       string `validate:"required,dir"` // directory to walk
	Suffix     string `validate:"required"`     // eligible file name suffix, e.g. "_german.yml"
	FailureLog string // failure log path (default DefaultFailureLog)
	DryRun     bool   // run the pipeline but never write files
}

// FileReport is the outcome for one file.
type FileReport struct {
	Path    string
	State   FileState
	Written bool // file was rewritten
	Result  *FileResult
	Diff    *DiffResult // rewritten lines, set when the file changed
	Err     error
}

// RunReport summarizes a run.
type RunReport struct {
	Files      []FileReport
	Translated int
	Failed     int
	Written    int
	Elapsed    time.Duration
}

// Driver walks a tree and runs the translator over every eligible file.
type Driver struct {
	cfg        DriverConfig
	translator *Translator
	failures   *FailureLog
	log        zerolog.Logger
}

// DriverOption is a functional option for configuring the Driver.
type DriverOption func(*Driver)

// WithDriverLogger sets the driver's logger.
func WithDriverLogger(log zerolog.Logger) DriverOption {
	return func(d *Driver) {
		d.log = log
	}
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewDriver validates cfg and creates a Driver. Failed units go to the
// configured failure log unless the translator already has a sink.
func NewDriver(cfg DriverConfig, t *Translator, opts ...DriverOption) (*Driver, error) {
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid driver config: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("invalid driver config: translator is required")
	}

	d := &Driver{
		cfg:        cfg,
		translator: t,
		failures:   NewFailureLog(cfg.FailureLog),
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if t.failures == nil {
		t.failures = d.failures
	}

	return d, nil
}

// FailureLog returns the driver's failure log.
func (d *Driver) FailureLog() *FailureLog {
	return d.failures
}

// Run clears the failure log, walks the tree and processes every eligible
// file. A failing file is reported and the walk goes on. The error is
// non-nil only when the context is cancelled.
func (d *Driver) Run(ctx context.Context) (*RunReport, error) {
	files, err := WalkFiles(d.cfg.Root, HasSuffix(d.cfg.Suffix))
	if err != nil {
		d.log.Warn().Err(err).Str("root", d.cfg.Root).Msg("walk incomplete")
	}
	d.log.Info().Str("root", d.cfg.Root).Int("files", len(files)).Msg("starting run")

	return d.RunFiles(ctx, files)
}

// RunFiles clears the failure log and processes the given files in order.
func (d *Driver) RunFiles(ctx context.Context, files []string) (*RunReport, error) {
	start := time.Now()
	report := &RunReport{}

	if err := d.failures.Reset(); err != nil {
		d.log.Warn().Err(err).Msg("clearing failure log")
	}

	for _, path := range files {
		if err := ctx.Err(); err != nil {
			report.Elapsed = time.Since(start)
			return report, err
		}

		fr := d.ProcessFile(ctx, path)
		report.Files = append(report.Files, fr)
		if fr.Result != nil {
			report.Translated += fr.Result.Translated
			report.Failed += fr.Result.Failed
		}
		if fr.Written {
			report.Written++
		}
	}

	report.Elapsed = time.Since(start)
	d.log.Info().
		Int("files", len(report.Files)).
		Int("written", report.Written).
		Int("translated", report.Translated).
		Int("failed", report.Failed).
		Dur("elapsed", report.Elapsed).
		Msg("run finished")

	return report, ctx.Err()
}

// ProcessFile reads one file, runs the pipeline in memory and writes the
// file back only when a line changed.
func (d *Driver) ProcessFile(ctx context.Context, path string) FileReport {
	fr := FileReport{Path: path, State: StateScanning}
	log := d.log.With().Str("file", path).Logger()
	log.Info().Msg("processing file")

	lines, err := ReadLines(path)
	if err != nil {
		log.Error().Err(err).Msg("reading file")
		fr.State, fr.Err = StateFailed, err
		return fr
	}

	res, err := d.translator.ProcessLines(ctx, filepath.Base(path), lines)
	fr.Result = res
	if err != nil {
		log.Error().Err(err).Msg("processing aborted")
		fr.State, fr.Err = StateFailed, &TranslationError{Message: "processing aborted", Cause: err}
		return fr
	}

	if !res.Changed {
		fr.State = StateNoChangeNeeded
		log.Info().Int("skipped", res.Skipped).Int("failed", res.Failed).Msg("file unchanged")
		fr.State = StateDone
		return fr
	}

	fr.State = StateNeedsWrite
	fr.Diff = DiffLines(lines, res.Lines)
	if d.cfg.DryRun {
		log.Info().Int("changed", len(fr.Diff.Changes)).Msg("dry run, file not saved")
		fr.State = StateDone
		return fr
	}

	if err := WriteLines(path, res.Lines); err != nil {
		log.Error().Err(err).Msg("writing file")
		fr.State, fr.Err = StateFailed, err
		return fr
	}

	fr.Written = true
	fr.State = StateDone
	log.Info().Int("translated", res.Translated).Int("failed", res.Failed).Msg("file saved")
	return fr
}
