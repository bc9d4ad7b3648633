// =============================================================================
// Easy Enigma Virtual Box Builder - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which checks a configuration
// against the filesystem without running the packager.
//
// COMMAND USAGE:
//   eevb validate [CONFIG] [--strict] [--log PATH]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	"github.com/eevb-tools/eevb/internal/validation"
	"github.com/spf13/cobra"
)

var (
	validateStrict bool
	validateLog    string
)

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate [CONFIG]",
	Short: "Check a configuration without building",
	Long: `The validate command loads a configuration (default: eevb.json), builds its
virtual file tree, and reports:

  - a missing input executable                 (error)
  - a missing output directory                 (warning)
  - items that do not exist and will be skipped (warning)
  - empty directories                           (warning)
  - two entries with the same name in one place (error)`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		return runValidate(cmd.OutOrStdout(), path)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
	validateCmd.Flags().StringVar(&validateLog, "log", "", "Also write the issues to this file")
}

func runValidate(out io.Writer, path string) error {
	cfg, resolver, err := loadConfig(path)
	if err != nil {
		return err
	}

	v := validation.NewValidatorWithOptions(resolver, validation.ValidationOptions{
		TreatWarningsAsErrors: validateStrict,
	})
	result, err := v.ValidateAll(cfg)
	if err != nil {
		return err
	}

	fmt.Fprint(out, validation.FormatErrors(result.Errors))
	fmt.Fprintf(out, "\nItems checked:   %d\n", result.ItemsValidated)
	fmt.Fprintf(out, "Folders:         %d\n", result.Stats.Folders)
	fmt.Fprintf(out, "Files:           %d\n", result.Stats.Files)
	fmt.Fprintf(out, "Directories:     %d\n", result.Stats.Directories)

	if validateLog != "" {
		if err := validation.WriteErrorLog(result.Errors, validateLog); err != nil {
			return err
		}
	}

	if !result.IsValid {
		return fmt.Errorf("%s is not valid: %d error(s), %d warning(s)", path, result.ErrorCount, result.WarningCount)
	}
	return nil
}
