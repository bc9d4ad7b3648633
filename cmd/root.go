// =============================================================================
// Easy Enigma Virtual Box Builder - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (eevb)
//   ├── initCmd     (eevb init)
//   ├── buildCmd    (eevb build)
//   ├── quickCmd    (eevb quick)
//   ├── validateCmd (eevb validate)
//   ├── manifestCmd (eevb manifest)
//   └── versionCmd  (eevb version)
//
// SHORTCUTS:
//   eevb               same as "eevb build eevb.json"
//   eevb app.json      same as "eevb build app.json" (also .yaml/.yml)
//
// EXIT STATUS:
//   A failing stage prints one "[ERROR] ..." line on standard output and the
//   process exits with status 1.
//
// =============================================================================

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/eevb-tools/eevb/internal/config"
	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/internal/logging"
	"github.com/spf13/cobra"
)

// DefaultConfigFile is the configuration used when none is named.
const DefaultConfigFile = "eevb.json"

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// verbose enables debug logging when set to true.
var verbose bool

// evbPath is an explicit packager location (--evb).
var evbPath string

// logger is the CLI's logger.
var logger = logging.GetLogger()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "eevb",
	Short: "Easy Enigma Virtual Box Builder - Bundle an executable with its files",
	Long: `eevb builds Enigma Virtual Box projects from a small JSON or YAML
configuration and runs the Enigma Virtual Box console packager on them.

The configuration names an input executable, an output executable, and the
files and directories to embed under each virtual folder.

Example Usage:
  eevb init                          # Write a template eevb.json
  eevb                               # Build with ./eevb.json
  eevb app.json                      # Build with app.json
  eevb build --dry-run               # Print the project instead of packaging
  eevb quick -i app.exe -o out.exe -c data`,

	SilenceErrors: true,
	SilenceUsage:  true,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			logger.SetLevel(logging.LevelDebug)
		}
	},

	// Without a subcommand the default configuration is built.
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBuild(cmd.Context(), cmd.OutOrStdout(), DefaultConfigFile)
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI with the process arguments. It is called by main.main().
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd.SetArgs(normalizeArgs(os.Args[1:]))
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		reportError(os.Stdout, err)
		stop()
		os.Exit(1)
	}
}

// normalizeArgs turns "eevb CONFIG ..." into "eevb build CONFIG ...".
func normalizeArgs(args []string) []string {
	if len(args) > 0 && config.IsConfigFile(args[0]) {
		return append([]string{"build"}, args...)
	}
	return args
}

// reportError prints err as a single "[ERROR]" line naming the failed stage.
func reportError(w io.Writer, err error) {
	if errors.Is(err, context.Canceled) {
		fmt.Fprintln(w, "Build interrupted.")
		return
	}

	switch eevberrors.KindOf(err) {
	case eevberrors.KindConfigNotFound:
		fmt.Fprintf(w, "[ERROR] %v\n", err)
	case eevberrors.KindSchema:
		fmt.Fprintf(w, "[ERROR] Failed to read configuration: %v\n", err)
	case eevberrors.KindBuild, eevberrors.KindSerialization:
		fmt.Fprintf(w, "[ERROR] Failed to build XML: %v\n", err)
	case eevberrors.KindExternalTool:
		fmt.Fprintf(w, "[ERROR] Execution failed: %v\n", err)
	default:
		fmt.Fprintf(w, "[ERROR] %v\n", err)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	// --verbose flag: Enables debug logging.
	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)

	// --evb flag: Overrides the packager lookup.
	rootCmd.PersistentFlags().StringVar(
		&evbPath,
		"evb",
		"",
		"Path to enigmavbconsole.exe (default: $EEVB_EXECUTABLE, data/ next to eevb, then PATH)",
	)
}
