// =============================================================================
// Easy Enigma Virtual Box Builder - Init Command
// =============================================================================
//
// This file defines the 'init' command, which writes a template
// configuration to start from.
//
// COMMAND USAGE:
//   eevb init [--output eevb.json] [--force]
//
// An existing file is only replaced after a "y" answer, or with --force.
// Outputs ending in .yaml or .yml are written as YAML.
//
// =============================================================================

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/eevb-tools/eevb/internal/config"
	"github.com/eevb-tools/eevb/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	initOutput string
	initForce  bool
)

// initCmd represents the 'init' command.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a template configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInit(cmd.InOrStdin(), cmd.OutOrStdout(), initOutput, initForce)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringVar(&initOutput, "output", DefaultConfigFile, "Path of the configuration file to create")
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing file without asking")
}

// runInit writes the template configuration to path.
func runInit(in io.Reader, out io.Writer, path string, force bool) error {
	if utils.FileExists(path) && !force {
		fmt.Fprintf(out, "%s already exists. Overwrite? (y/N): ", path)
		answer, err := bufio.NewReader(in).ReadString('\n')
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if strings.ToLower(strings.TrimSpace(answer)) != "y" {
			fmt.Fprintln(out, "Initialization cancelled.")
			return nil
		}
	}

	data, err := config.Marshal(config.Template(), path)
	if err != nil {
		return fmt.Errorf("failed to render template: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Fprintf(out, "Template configuration created at %s\n", path)
	return nil
}
