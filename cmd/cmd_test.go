package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/eevb-tools/eevb/internal/config"
	"github.com/eevb-tools/eevb/internal/converter"
	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/pkg/utils"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		args     []string
		expected []string
	}{
		{nil, nil},
		{[]string{"app.json"}, []string{"build", "app.json"}},
		{[]string{"APP.YML", "--dry-run"}, []string{"build", "APP.YML", "--dry-run"}},
		{[]string{"build", "app.json"}, []string{"build", "app.json"}},
		{[]string{"init"}, []string{"init"}},
		{[]string{"-v"}, []string{"-v"}},
	}

	for _, tt := range tests {
		if got := normalizeArgs(tt.args); !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("normalizeArgs(%v) = %v, want %v", tt.args, got, tt.expected)
		}
	}
}

func TestReportError(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{eevberrors.NewConfigNotFound("eevb.json"), "[ERROR] configuration file not found: eevb.json\n"},
		{eevberrors.NewSchemaError("missing required field \"input\""), "[ERROR] Failed to read configuration: missing required field \"input\"\n"},
		{eevberrors.NewBuildError("failed to build XML", nil), "[ERROR] Failed to build XML: failed to build XML\n"},
		{eevberrors.NewExternalToolError("packager exited with status 2", 2, nil), "[ERROR] Execution failed: packager exited with status 2\n"},
		{eevberrors.NewExternalToolError("packager interrupted", -1, context.Canceled), "Build interrupted.\n"},
		{errors.New("boom"), "[ERROR] boom\n"},
	}

	for _, tt := range tests {
		var out bytes.Buffer
		reportError(&out, tt.err)
		if out.String() != tt.expected {
			t.Errorf("reportError(%v) = %q, want %q", tt.err, out.String(), tt.expected)
		}
	}
}

func TestRunInit(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultConfigFile)

	var out bytes.Buffer
	if err := runInit(strings.NewReader(""), &out, path, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("template does not load: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Template()) {
		t.Errorf("written template differs: %+v", cfg)
	}

	if err := os.WriteFile(path, []byte("keep"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	out.Reset()
	if err := runInit(strings.NewReader("n\n"), &out, path, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) != "keep" {
		t.Error("file overwritten without confirmation")
	}
	if !strings.Contains(out.String(), "Initialization cancelled.") {
		t.Errorf("unexpected output %q", out.String())
	}

	if err := runInit(strings.NewReader("Y\n"), &out, path, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) == "keep" {
		t.Error("file not overwritten after confirmation")
	}

	if err := os.WriteFile(path, []byte("keep"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := runInit(strings.NewReader(""), &out, path, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if data, _ := os.ReadFile(path); string(data) == "keep" {
		t.Error("--force did not overwrite")
	}
}

func TestRunInit_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eevb.yaml")

	if err := runInit(strings.NewReader(""), &bytes.Buffer{}, path, false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if strings.HasPrefix(strings.TrimSpace(string(data)), "{") {
		t.Errorf("expected YAML, got:\n%s", data)
	}
	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("YAML template does not load: %v", err)
	}
	if !reflect.DeepEqual(cfg, config.Template()) {
		t.Errorf("written template differs: %+v", cfg)
	}
}

func TestBuildQuickConfig_MatchesConfigFile(t *testing.T) {
	quick, err := buildQuickConfig("in.exe", "out.exe", true, false, []string{"file1.txt", "dir2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	parsed, err := config.Parse([]byte(`{
		"input": "in.exe",
		"output": "out.exe",
		"files": {
			"delete_on_exit": false,
			"compress": true,
			"items": {"DefaultFolder": ["file1.txt", "dir2"]}
		}
	}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(quick, parsed) {
		t.Errorf("quick config %+v differs from %+v", quick, parsed)
	}

	base := t.TempDir()
	if err := os.WriteFile(filepath.Join(base, "file1.txt"), []byte("1"), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(base, "dir2", "sub"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	resolver, err := utils.NewResolver(base)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	fromQuick, err := converter.Compile(quick, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fromFile, err := converter.Compile(parsed, resolver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fromQuick != fromFile {
		t.Errorf("documents differ:\n%s\n---\n%s", fromQuick, fromFile)
	}
}

func TestBuildQuickConfig_NoItems(t *testing.T) {
	cfg, err := buildQuickConfig("in.exe", "out.exe", false, true, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Files.Items.IsEmpty() || !cfg.Files.DeleteOnExit || cfg.Files.Compress {
		t.Errorf("unexpected config %+v", cfg)
	}
}

func TestBuildQuickConfig_EmptyPaths(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		output  string
		message string
	}{
		{"empty input", "", "out.exe", "input must not be empty"},
		{"blank input", "  ", "out.exe", "input must not be empty"},
		{"empty output", "in.exe", "", "output must not be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildQuickConfig(tt.input, tt.output, false, false, []string{"x"})
			if !errors.Is(err, eevberrors.ErrSchema) {
				t.Fatalf("expected schema error, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("expected error containing %q, got %q", tt.message, err.Error())
			}
		})
	}
}

func writeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "data", "y"), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	for _, f := range []string{"app.exe", "data/x.txt", "data/y/z.txt"} {
		if err := os.WriteFile(filepath.Join(dir, filepath.FromSlash(f)), []byte("test"), 0644); err != nil {
			t.Fatalf("write failed: %v", err)
		}
	}
	path := filepath.Join(dir, "app.json")
	doc := `{"input":"app.exe","output":"boxed.exe","files":{"items":{"DefaultFolder":["data"]}}}`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	return path
}

func TestBuild_DryRunResolvesAgainstConfigDir(t *testing.T) {
	path := writeProject(t)
	cfg, resolver, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var out bytes.Buffer
	if err := buildConfig(context.Background(), &out, cfg, resolver, buildOptions{DryRun: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	dir := resolver.Base()
	for _, want := range []string{
		"<InputFile>" + filepath.Join(dir, "app.exe") + "</InputFile>",
		"<File>" + filepath.Join(dir, "data", "y", "z.txt") + "</File>",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in:\n%s", want, out.String())
		}
	}
}

func TestBuild_MissingConfig(t *testing.T) {
	err := runBuild(context.Background(), &bytes.Buffer{}, filepath.Join(t.TempDir(), DefaultConfigFile))
	if !errors.Is(err, eevberrors.ErrConfigNotFound) {
		t.Errorf("expected config not found, got %v", err)
	}
}

func TestBuild_RunsPackager(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script packager requires a unix shell")
	}
	path := writeProject(t)

	record := filepath.Join(t.TempDir(), "seen")
	script := filepath.Join(t.TempDir(), "fake-packager")
	body := "#!/bin/sh\ngrep -q '<Name>z.txt</Name>' \"$1\" || exit 4\necho \"$1\" > " + record + "\n"
	if err := os.WriteFile(script, []byte(body), 0755); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	saved := evbPath
	evbPath = script
	defer func() { evbPath = saved }()

	cfg, resolver, err := loadConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out bytes.Buffer
	if err := buildConfig(context.Background(), &out, cfg, resolver, buildOptions{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen, err := os.ReadFile(record)
	if err != nil {
		t.Fatalf("packager did not run: %v", err)
	}
	project := strings.TrimSpace(string(seen))
	if !strings.HasSuffix(project, utils.ProjectSuffix) {
		t.Errorf("packager got %q", project)
	}
	if utils.FileExists(project) {
		t.Error("temporary project was not removed")
	}
	if !strings.Contains(out.String(), "Built "+filepath.Join(resolver.Base(), "boxed.exe")) {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunManifest(t *testing.T) {
	path := writeProject(t)
	output := filepath.Join(t.TempDir(), "manifest.xlsx")

	var out bytes.Buffer
	if err := runManifest(&out, path, output); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !utils.FileExists(output) {
		t.Fatal("manifest not written")
	}
	if !strings.Contains(out.String(), "Manifest with 3 entries") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunValidate(t *testing.T) {
	path := writeProject(t)

	var out bytes.Buffer
	if err := runValidate(&out, path); err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out.String())
	}
	if !strings.Contains(out.String(), "No validation errors.") {
		t.Errorf("unexpected output:\n%s", out.String())
	}

	if err := os.Remove(filepath.Join(filepath.Dir(path), "app.exe")); err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	out.Reset()
	if err := runValidate(&out, path); err == nil {
		t.Errorf("expected failure for missing input:\n%s", out.String())
	}
}

func TestReadBuildInfo(t *testing.T) {
	savedVersion, savedDate := Version, BuildDate
	defer func() { Version, BuildDate = savedVersion, savedDate }()

	embedded := func() (*debug.BuildInfo, bool) {
		return &debug.BuildInfo{
			GoVersion: "go1.24.0",
			Main:      debug.Module{Path: "github.com/eevb-tools/eevb", Version: "v1.2.0"},
			Settings: []debug.BuildSetting{
				{Key: "vcs.revision", Value: "3f1c2ab9d0e4"},
				{Key: "vcs.time", Value: "2026-01-01T10:00:00Z"},
				{Key: "vcs.modified", Value: "true"},
			},
		}, true
	}

	Version, BuildDate = "", ""
	info := readBuildInfo(embedded)
	expected := buildInfo{Version: "v1.2.0", Commit: "3f1c2ab", Modified: true, BuildDate: "2026-01-01T10:00:00Z", GoVersion: "go1.24.0"}
	if info != expected {
		t.Errorf("got %+v, want %+v", info, expected)
	}

	Version, BuildDate = "v9.9.9", "2026-02-02"
	info = readBuildInfo(embedded)
	if info.Version != "v9.9.9" || info.BuildDate != "2026-02-02" {
		t.Errorf("ldflags values should win, got %+v", info)
	}

	Version, BuildDate = "", ""
	info = readBuildInfo(func() (*debug.BuildInfo, bool) { return nil, false })
	if info.Version != "(devel)" || info.BuildDate != "unknown" || info.Commit != "" {
		t.Errorf("unexpected fallback %+v", info)
	}

	var out bytes.Buffer
	printVersion(&out, expected, "/opt/evb/enigmavbconsole.exe")
	for _, want := range []string{
		"Easy Enigma Virtual Box Builder\n",
		"Version:    v1.2.0\n",
		"Commit:     3f1c2ab (modified)\n",
		"Packager:   /opt/evb/enigmavbconsole.exe\n",
	} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("expected %q in:\n%s", want, out.String())
		}
	}
}
