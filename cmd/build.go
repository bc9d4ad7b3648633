// =============================================================================
// Easy Enigma Virtual Box Builder - Build Command
// =============================================================================
//
// This file defines the 'build' command, the main command of the tool. It
// turns a configuration file into a boxed executable.
//
// COMMAND USAGE:
//   eevb build [CONFIG] [flags]
//
// FLAGS:
//   --dry-run      : Print the project document instead of packaging
//   --project-out  : Also keep a copy of the project file at this path
//
// PROCESSING PIPELINE:
//   1. Load the configuration (JSON, or YAML by extension)
//   2. Resolve paths against the directory holding the configuration
//   3. Build the virtual file tree and the project document
//   4. Write the project to a temporary ".evb" file
//   5. Run the packager on it, then remove the temporary file
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/eevb-tools/eevb/internal/config"
	"github.com/eevb-tools/eevb/internal/converter"
	"github.com/eevb-tools/eevb/internal/runner"
	"github.com/eevb-tools/eevb/pkg/utils"
	"github.com/spf13/cobra"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun prints the project instead of invoking the packager.
var dryRun bool

// projectOut keeps a copy of the project file.
var projectOut string

// buildOptions controls one build.
type buildOptions struct {
	DryRun     bool
	ProjectOut string
}

// =============================================================================
// BUILD COMMAND DEFINITION
// =============================================================================

// buildCmd represents the 'build' command.
var buildCmd = &cobra.Command{
	Use:   "build [CONFIG]",
	Short: "Build a boxed executable from a configuration file",
	Long: `The build command reads a configuration file (default: eevb.json) and
packages the input executable together with the listed files.

Relative paths in the configuration are resolved against the directory that
holds the configuration file, not the current directory. Items that do not
exist are skipped.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		return runBuild(cmd.Context(), cmd.OutOrStdout(), path)
	},
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init registers the build command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Print the project document without running the packager",
	)

	buildCmd.Flags().StringVar(
		&projectOut,
		"project-out",
		"",
		"Keep a copy of the generated .evb project at this path",
	)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runBuild loads the configuration at path and builds it.
func runBuild(ctx context.Context, out io.Writer, path string) error {
	cfg, resolver, err := loadConfig(path)
	if err != nil {
		return err
	}
	return buildConfig(ctx, out, cfg, resolver, buildOptions{DryRun: dryRun, ProjectOut: projectOut})
}

// loadConfig reads a configuration and returns it with a resolver rooted at
// the configuration's directory.
func loadConfig(path string) (*config.Configuration, *utils.Resolver, error) {
	logger.Debug("Loading configuration %s", path)

	cfg, err := config.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}

	resolver, err := utils.NewResolver(filepath.Dir(path))
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("Base directory: %s", resolver.Base())

	return cfg, resolver, nil
}

// buildConfig compiles cfg and, unless opts.DryRun is set, packages it.
func buildConfig(ctx context.Context, out io.Writer, cfg *config.Configuration, resolver *utils.Resolver, opts buildOptions) error {
	conv := converter.New(cfg, resolver)

	if opts.DryRun {
		doc, err := conv.Compile()
		if err != nil {
			return err
		}
		_, err = io.WriteString(out, doc)
		return err
	}

	packager, err := runner.New(evbPath)
	if err != nil {
		return err
	}
	logger.Debug("Packager: %s", packager.Executable)

	result := conv.Run(ctx, packager, converter.RunOptions{KeepProjectAt: opts.ProjectOut})
	if result.Error != nil {
		return result.Error
	}

	fmt.Fprintf(out, "Built %s (%d file(s), %d directories) in %s\n",
		result.OutputFile,
		result.Stats.Files,
		result.Stats.Directories,
		result.Stats.ProcessingTime.Round(time.Millisecond),
	)
	return nil
}
