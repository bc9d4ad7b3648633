// =============================================================================
// Easy Enigma Virtual Box Builder - Quick Command
// =============================================================================
//
// This file defines the 'quick' command, which builds without a
// configuration file. The items are embedded under DefaultFolder and paths
// are resolved against the current directory.
//
// COMMAND USAGE:
//   eevb quick -i INPUT -o OUTPUT [-c] [-d] [ITEMS...]
//
// FLAGS:
//   -i, --input          : Input executable (required)
//   -o, --output         : Output executable (required)
//   -c, --compress       : Compress embedded files
//   -d, --delete_on_exit : Delete extracted files when the program exits
//
// =============================================================================

package cmd

import (
	"strings"

	"github.com/eevb-tools/eevb/internal/config"
	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	quickInput        string
	quickOutput       string
	quickCompress     bool
	quickDeleteOnExit bool
)

// quickCmd represents the 'quick' command.
var quickCmd = &cobra.Command{
	Use:   "quick -i INPUT -o OUTPUT [ITEMS...]",
	Short: "Build without a configuration file",
	Long: `The quick command builds a configuration from its flags, embedding every
ITEM under DefaultFolder, and packages it at once.

  eevb quick -i app.exe -o boxed.exe -c data config.ini`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := buildQuickConfig(quickInput, quickOutput, quickCompress, quickDeleteOnExit, args)
		if err != nil {
			return err
		}

		resolver, err := utils.NewWorkingDirResolver()
		if err != nil {
			return err
		}
		return buildConfig(cmd.Context(), cmd.OutOrStdout(), cfg, resolver, buildOptions{})
	},
}

func init() {
	rootCmd.AddCommand(quickCmd)

	quickCmd.Flags().StringVarP(&quickInput, "input", "i", "", "Input exe file")
	quickCmd.Flags().StringVarP(&quickOutput, "output", "o", "", "Output exe file")
	quickCmd.Flags().BoolVarP(&quickCompress, "compress", "c", false, "Compress files")
	quickCmd.Flags().BoolVarP(&quickDeleteOnExit, "delete_on_exit", "d", false, "Delete extracted files on exit")

	quickCmd.MarkFlagRequired("input")
	quickCmd.MarkFlagRequired("output")
}

// buildQuickConfig returns the configuration a quick build runs with. Input
// and output must be non-empty, as they must be in a configuration file.
func buildQuickConfig(input, output string, compress, deleteOnExit bool, items []string) (*config.Configuration, error) {
	if strings.TrimSpace(input) == "" {
		return nil, eevberrors.NewSchemaError("input must not be empty")
	}
	if strings.TrimSpace(output) == "" {
		return nil, eevberrors.NewSchemaError("output must not be empty")
	}

	cfg := &config.Configuration{
		InputPath:  input,
		OutputPath: output,
		Files: config.FileOptions{
			DeleteOnExit: deleteOnExit,
			Compress:     compress,
			Items:        config.EmbeddedItems{},
		},
	}
	if len(items) > 0 {
		cfg.Files.Items[config.FolderDefault] = append([]string(nil), items...)
	}
	return cfg, nil
}
