// =============================================================================
// Easy Enigma Virtual Box Builder - Main Entry Point
// =============================================================================
//
// This is the main entry point for the eevb CLI application. It delegates
// command execution to the cmd package.
//
// USAGE:
//   eevb init        - Write a template eevb.json
//   eevb build       - Build with a configuration file
//   eevb quick       - Build without a configuration file
//   eevb validate    - Check a configuration without building
//   eevb manifest    - Write the embedded file inventory to XLSX
//   eevb version     - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Configuration, file tree, XML and packager logic
//   - pkg/           : Shared path and file utilities
//
// =============================================================================

package main

import (
	"github.com/eevb-tools/eevb/cmd"
)

func main() {
	cmd.Execute()
}
