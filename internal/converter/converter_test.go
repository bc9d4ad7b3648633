package converter

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eevb-tools/eevb/internal/config"
	eevberrors "github.com/eevb-tools/eevb/internal/errors"
	"github.com/eevb-tools/eevb/internal/logging"
	"github.com/eevb-tools/eevb/pkg/utils"
)

// fakePackager records the project it was given and what the file held.
type fakePackager struct {
	err     error
	path    string
	content string
}

func (f *fakePackager) Run(_ context.Context, projectPath string) error {
	f.path = projectPath
	data, err := os.ReadFile(projectPath)
	if err != nil {
		return err
	}
	f.content = string(data)
	return f.err
}

func writeFixture(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		full := filepath.Join(root, filepath.FromSlash(f))
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("Failed to create directory: %v", err)
		}
		if err := os.WriteFile(full, []byte("test"), 0644); err != nil {
			t.Fatalf("Failed to create test file: %v", err)
		}
	}
}

func newTestConverter(t *testing.T, doc string) (*Converter, string) {
	t.Helper()
	cfg, err := config.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("Failed to parse config: %v", err)
	}
	resolver, err := utils.NewResolver(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create resolver: %v", err)
	}
	return New(cfg, resolver).WithLogger(logging.Discard()), resolver.Base()
}

func TestCompile_ExampleFixture(t *testing.T) {
	conv, base := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"delete_on_exit":false,"compress":true,"items":{"DefaultFolder":["data"]}}}`)
	writeFixture(t, base, "data/x.txt", "data/y/z.txt")

	out, err := conv.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, want := range []string{
		"<InputFile>" + filepath.Join(base, "a.exe") + "</InputFile>",
		"<OutputFile>" + filepath.Join(base, "b.exe") + "</OutputFile>",
		"<CompressFiles>True</CompressFiles>",
		"<DeleteExtractedOnExit>False</DeleteExtractedOnExit>",
		"<Name>%DEFAULT FOLDER%</Name>",
		"<Name>x.txt</Name>",
		"<File>" + filepath.Join(base, "data", "x.txt") + "</File>",
		"<Name>y</Name>",
		"<Name>z.txt</Name>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Contains(out, "<Name>data</Name>") {
		t.Errorf("unmarked folder-root directory must be flattened:\n%s", out)
	}
}

func TestCompile_MarkedDirectory(t *testing.T) {
	conv, base := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{"SystemFolder":["data*"]}}}`)
	writeFixture(t, base, "data/x.txt", "data/y/z.txt")

	out, err := conv.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "<Name>data</Name>") != 1 {
		t.Errorf("expected exactly one data directory node:\n%s", out)
	}
	if strings.Index(out, "<Name>data</Name>") > strings.Index(out, "<Name>y</Name>") {
		t.Errorf("y must nest inside data:\n%s", out)
	}
}

func TestCompile_NoItems(t *testing.T) {
	conv, _ := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{"DefaultFolder":[],"TempFolder":[]}}}`)

	out, err := conv.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, f := range config.Folders() {
		if strings.Contains(out, f.Literal()) {
			t.Errorf("folder %s should be absent:\n%s", f.Literal(), out)
		}
	}
	for _, want := range []string{"<InputFile>", "<OutputFile>", "<Enabled>True</Enabled>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestCompile_MissingPathsDropped(t *testing.T) {
	conv, base := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{"DefaultFolder":["real.txt","ghost.txt"]}}}`)
	writeFixture(t, base, "real.txt")

	out, err := conv.Compile()
	if err != nil {
		t.Fatalf("missing paths must not fail the build: %v", err)
	}
	if strings.Contains(out, "ghost.txt") {
		t.Errorf("missing item emitted:\n%s", out)
	}
	if !strings.Contains(out, "<Name>real.txt</Name>") {
		t.Errorf("existing item missing:\n%s", out)
	}
}

func TestCompile_SerializationFailureIsBuildError(t *testing.T) {
	conv, base := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{"DefaultFolder":["data"]}}}`)
	if err := os.MkdirAll(filepath.Join(base, "data"), 0755); err != nil {
		t.Fatalf("Failed to create directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(base, "data", "bad\x01.txt"), []byte("x"), 0644); err != nil {
		t.Skipf("filesystem rejects control characters: %v", err)
	}

	_, err := conv.Compile()
	if !errors.Is(err, eevberrors.ErrBuild) {
		t.Fatalf("expected build error, got %v", err)
	}
	if !errors.Is(err, eevberrors.ErrSerialization) {
		t.Errorf("expected the serialization cause to be kept, got %v", err)
	}
}

func TestRun_RemovesProjectOnSuccess(t *testing.T) {
	conv, base := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{"DefaultFolder":["x.txt"]}}}`)
	writeFixture(t, base, "x.txt")
	tempDir := t.TempDir()
	packager := &fakePackager{}

	result := conv.Run(context.Background(), packager, RunOptions{TempDir: tempDir})

	if !result.Success || result.Error != nil {
		t.Fatalf("expected success, got %+v", result)
	}
	if !strings.HasSuffix(packager.path, utils.ProjectSuffix) {
		t.Errorf("packager got %q, want a %s file", packager.path, utils.ProjectSuffix)
	}
	if !strings.Contains(packager.content, "<Name>x.txt</Name>") {
		t.Errorf("packager saw unexpected project:\n%s", packager.content)
	}
	if utils.FileExists(packager.path) {
		t.Error("temporary project was not removed")
	}
	if result.Stats.Files != 1 || result.Stats.Folders != 1 {
		t.Errorf("unexpected stats %+v", result.Stats)
	}
	if result.OutputFile != filepath.Join(base, "b.exe") {
		t.Errorf("unexpected output file %q", result.OutputFile)
	}
}

func TestRun_RemovesProjectOnPackagerFailure(t *testing.T) {
	conv, _ := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{}}}`)
	failure := eevberrors.NewExternalToolError("packager exited with status 1", 1, nil)
	packager := &fakePackager{err: failure}

	result := conv.Run(context.Background(), packager, RunOptions{TempDir: t.TempDir()})

	if result.Success {
		t.Fatal("expected failure")
	}
	if !errors.Is(result.Error, eevberrors.ErrExternalTool) {
		t.Errorf("expected external tool error, got %v", result.Error)
	}
	if utils.FileExists(packager.path) {
		t.Error("temporary project was not removed after failure")
	}
}

func TestRun_KeepProject(t *testing.T) {
	conv, _ := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{}}}`)
	keep := filepath.Join(t.TempDir(), "saved.evb")

	result := conv.Run(context.Background(), &fakePackager{}, RunOptions{TempDir: t.TempDir(), KeepProjectAt: keep})

	if !result.Success {
		t.Fatalf("expected success, got %v", result.Error)
	}
	if result.ProjectFile != keep || !utils.FileExists(keep) {
		t.Errorf("project not kept at %q (result %q)", keep, result.ProjectFile)
	}
}

func TestRun_CompileFailureSkipsPackager(t *testing.T) {
	conv, _ := newTestConverter(t, `{"input":"a.exe","output":"b.exe","files":{"items":{}}}`)
	conv.cfg = nil
	packager := &fakePackager{}

	result := conv.Run(context.Background(), packager, RunOptions{TempDir: t.TempDir()})

	if result.Success || !errors.Is(result.Error, eevberrors.ErrBuild) {
		t.Errorf("expected build error, got %+v", result)
	}
	if packager.path != "" {
		t.Error("packager must not run when compilation fails")
	}
}

func TestCompile_SeparateBasesDoNotInterfere(t *testing.T) {
	doc := `{"input":"a.exe","output":"b.exe","files":{"items":{}}}`
	first, firstBase := newTestConverter(t, doc)
	second, secondBase := newTestConverter(t, doc)

	out1, err := first.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out2, err := second.Compile()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(out1, firstBase) || !strings.Contains(out2, secondBase) {
		t.Error("each build must resolve against its own base directory")
	}
}
