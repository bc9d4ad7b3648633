// =============================================================================
// Easy Enigma Virtual Box Builder - Manifest Command
// =============================================================================
//
// This file defines the 'manifest' command, which writes the resolved
// virtual file tree to an XLSX workbook for review.
//
// COMMAND USAGE:
//   eevb manifest [CONFIG] [--output manifest.xlsx]
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"

	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/internal/filetree"
	"github.com/eevb-tools/eevb/internal/manifest"
	"github.com/spf13/cobra"
)

var manifestOutput string

// manifestCmd represents the 'manifest' command.
var manifestCmd = &cobra.Command{
	Use:   "manifest [CONFIG]",
	Short: "Write the embedded file inventory to an XLSX workbook",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := DefaultConfigFile
		if len(args) == 1 {
			path = args[0]
		}
		return runManifest(cmd.OutOrStdout(), path, manifestOutput)
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)

	manifestCmd.Flags().StringVar(&manifestOutput, "output", "manifest.xlsx", "Path of the workbook to write")
}

func runManifest(out io.Writer, path, output string) error {
	cfg, resolver, err := loadConfig(path)
	if err != nil {
		return err
	}

	sections, err := filetree.NewBuilder(resolver, logger).BuildSections(cfg.Files.Items)
	if err != nil {
		return eevberrors.NewBuildError("failed to build virtual file tree", err)
	}

	n, err := manifest.Write(output, sections)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Manifest with %d entries written to %s\n", n, output)
	return nil
}
