// =============================================================================
// Easy Enigma Virtual Box Builder - Converter Module
// =============================================================================
//
// This module contains the build pipeline. It turns one configuration into a
// project document and, when asked, hands that document to the packager.
//
// COMPILE PIPELINE:
//   1. Resolve the input and output executables
//   2. Build the virtual folder sections (empty folders are left out)
//   3. Serialize the project document
//
// RUN PIPELINE:
//   1. Compile
//   2. Write the project to a temporary ".evb" file
//   3. Invoke the packager on it
//   4. Remove the temporary file, whatever happened in step 3
//
// CONCURRENCY:
//   A Converter carries its own base directory, so separate builds never
//   share state. A single Converter is not meant to be used concurrently.
//
// =============================================================================

package converter

import (
	"context"
	"time"

	"github.com/eevb-tools/eevb/internal/config"
	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/internal/filetree"
	"github.com/eevb-tools/eevb/internal/logging"
	"github.com/eevb-tools/eevb/internal/types"
	"github.com/eevb-tools/eevb/internal/xmlwriter"
	"github.com/eevb-tools/eevb/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one build.
type Result struct {
	// OutputFile is the resolved path of the boxed executable.
	OutputFile string

	// ProjectFile is the kept copy of the project file, if one was requested.
	ProjectFile string

	// Success indicates whether the packager finished successfully.
	Success bool

	// Error contains the error if the build failed.
	Error error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the build.
type ProcessingStats struct {
	types.TreeStats

	// ProcessingTime is the time taken by the whole build.
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter builds one configuration.
type Converter struct {
	// cfg is the build configuration.
	cfg *config.Configuration

	// resolver resolves configuration paths against the build's base directory.
	resolver *utils.Resolver

	// options controls XML generation.
	options xmlwriter.GenerateOptions

	logger Logger
}

// Logger is an interface for logging.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// Packager runs the external packager on a project file.
type Packager interface {
	Run(ctx context.Context, projectPath string) error
}

// RunOptions controls where project files go.
type RunOptions struct {
	// TempDir is where the temporary project is written.
	// Default: the system temp directory
	TempDir string

	// KeepProjectAt, when set, receives a copy of the project file.
	KeepProjectAt string
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a new Converter instance.
//
// PARAMETERS:
//   - cfg: The validated configuration.
//   - resolver: Resolves paths against the build's base directory.
func New(cfg *config.Configuration, resolver *utils.Resolver) *Converter {
	return &Converter{
		cfg:      cfg,
		resolver: resolver,
		options:  xmlwriter.DefaultGenerateOptions(),
		logger:   logging.GetLogger().WithPrefix("build"),
	}
}

// WithLogger replaces the converter's logger.
func (c *Converter) WithLogger(logger Logger) *Converter {
	c.logger = logger
	return c
}

// WithOptions replaces the XML generation options.
func (c *Converter) WithOptions(options xmlwriter.GenerateOptions) *Converter {
	c.options = options
	return c
}

// Compile is a shorthand for New(cfg, resolver).Compile().
func Compile(cfg *config.Configuration, resolver *utils.Resolver) (string, error) {
	return New(cfg, resolver).Compile()
}

// =============================================================================
// COMPILATION
// =============================================================================

// Plan resolves paths and builds the virtual file tree without serializing it.
//
// RETURNS:
//   - The project ready for serialization.
//   - A BuildError if a directory cannot be read.
func (c *Converter) Plan() (*xmlwriter.Project, error) {
	if c.cfg == nil {
		return nil, eevberrors.NewBuildError("no configuration", nil)
	}

	project := &xmlwriter.Project{
		InputFile:    c.resolver.Resolve(c.cfg.InputPath),
		OutputFile:   c.resolver.Resolve(c.cfg.OutputPath),
		DeleteOnExit: c.cfg.Files.DeleteOnExit,
		Compress:     c.cfg.Files.Compress,
	}
	c.logger.Debug("Input file: %s", project.InputFile)
	c.logger.Debug("Output file: %s", project.OutputFile)

	builder := filetree.NewBuilder(c.resolver, c.logger)
	sections, err := builder.BuildSections(c.cfg.Files.Items)
	if err != nil {
		return nil, eevberrors.NewBuildError("failed to build virtual file tree", err)
	}
	project.Sections = sections

	return project, nil
}

// Compile produces the project document for the configuration.
//
// RETURNS:
//   - The XML document.
//   - A BuildError wrapping any tree or serialization failure.
func (c *Converter) Compile() (string, error) {
	data, _, err := c.compile()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Converter) compile() ([]byte, *xmlwriter.Project, error) {
	project, err := c.Plan()
	if err != nil {
		return nil, nil, err
	}

	data, err := xmlwriter.GenerateWithOptions(project, c.options)
	if err != nil {
		return nil, nil, eevberrors.NewBuildError("failed to build XML", err)
	}
	return data, project, nil
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run compiles the configuration and invokes the packager on the result.
// The temporary project file is removed on every exit path.
func (c *Converter) Run(ctx context.Context, packager Packager, opts RunOptions) Result {
	startTime := time.Now()
	result := Result{}

	// =========================================================================
	// STEP 1: COMPILE
	// =========================================================================

	data, project, err := c.compile()
	if err != nil {
		result.Error = err
		return finish(&result, startTime)
	}
	result.OutputFile = project.OutputFile
	result.Stats.TreeStats = types.CountNodes(project.Sections)

	c.logger.Debug("Embedding %d file(s) and %d directories in %d folder(s)",
		result.Stats.Files, result.Stats.Directories, result.Stats.Folders)

	// =========================================================================
	// STEP 2: WRITE TEMPORARY PROJECT
	// =========================================================================

	projectPath, cleanup, err := utils.WriteTempProject(opts.TempDir, data)
	if err != nil {
		result.Error = eevberrors.NewSerializationError("failed to write project file", err)
		return finish(&result, startTime)
	}
	defer cleanup()

	c.logger.Debug("Project file: %s", projectPath)

	if opts.KeepProjectAt != "" {
		kept, err := utils.KeepProject(projectPath, opts.KeepProjectAt)
		if err != nil {
			result.Error = eevberrors.NewSerializationError("failed to keep project file", err)
			return finish(&result, startTime)
		}
		result.ProjectFile = kept
		c.logger.Info("Project saved to %s", kept)
	}

	// =========================================================================
	// STEP 3: INVOKE PACKAGER
	// =========================================================================

	if err := packager.Run(ctx, projectPath); err != nil {
		result.Error = err
		return finish(&result, startTime)
	}

	result.Success = true
	return finish(&result, startTime)
}

// finish stamps the elapsed time on a result being returned.
func finish(result *Result, startTime time.Time) Result {
	result.Stats.ProcessingTime = time.Since(startTime)
	return *result
}
