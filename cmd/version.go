// =============================================================================
// Easy Enigma Virtual Box Builder - Version Command
// =============================================================================
//
// This file defines the 'version' command. Values stamped with ldflags win;
// otherwise they are read from the module and VCS data the Go toolchain
// embeds in the binary.
//
// COMMAND USAGE:
//   eevb version
//
// OUTPUT:
//   Easy Enigma Virtual Box Builder
//   Version:    v1.2.0
//   Commit:     3f1c2ab (modified)
//   Build Date: 2026-01-01T10:00:00Z
//   Go Version: go1.24.0
//   Packager:   enigmavbconsole.exe (not found)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"
	"runtime/debug"

	"github.com/eevb-tools/eevb/internal/runner"
	"github.com/spf13/cobra"
)

// Version and BuildDate can be stamped at build time:
//   go build -ldflags "-X 'github.com/eevb-tools/eevb/cmd.Version=v1.2.0' -X 'github.com/eevb-tools/eevb/cmd.BuildDate=2026-01-01'"
var (
	Version   string
	BuildDate string
)

// buildInfo is what the version command reports.
type buildInfo struct {
	Version   string
	Commit    string
	Modified  bool
	BuildDate string
	GoVersion string
}

// readBuildInfo merges ldflags values with the embedded build information.
func readBuildInfo(read func() (*debug.BuildInfo, bool)) buildInfo {
	info := buildInfo{
		Version:   Version,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
	}

	if bi, ok := read(); ok {
		if info.Version == "" && bi.Main.Version != "" {
			info.Version = bi.Main.Version
		}
		if bi.GoVersion != "" {
			info.GoVersion = bi.GoVersion
		}
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				info.Commit = s.Value
				if len(info.Commit) > 7 {
					info.Commit = info.Commit[:7]
				}
			case "vcs.time":
				if info.BuildDate == "" {
					info.BuildDate = s.Value
				}
			case "vcs.modified":
				info.Modified = s.Value == "true"
			}
		}
	}

	if info.Version == "" {
		info.Version = "(devel)"
	}
	if info.BuildDate == "" {
		info.BuildDate = "unknown"
	}
	return info
}

func printVersion(out io.Writer, info buildInfo, packager string) {
	fmt.Fprintln(out, "Easy Enigma Virtual Box Builder")
	fmt.Fprintf(out, "Version:    %s\n", info.Version)
	if info.Commit != "" {
		commit := info.Commit
		if info.Modified {
			commit += " (modified)"
		}
		fmt.Fprintf(out, "Commit:     %s\n", commit)
	}
	fmt.Fprintf(out, "Build Date: %s\n", info.BuildDate)
	fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Packager:   %s\n", packager)
}

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, VCS revision, Go runtime version, and the packager that would be used.`,
	Run: func(cmd *cobra.Command, args []string) {
		packager, err := runner.LocateExecutable(evbPath)
		if err != nil {
			packager = runner.ExecutableName + " (not found)"
		}
		printVersion(cmd.OutOrStdout(), readBuildInfo(debug.ReadBuildInfo), packager)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
