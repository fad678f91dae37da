package deploy

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestParseFlags(t *testing.T) {
	opts, files, err := ParseFlags("test", []string{"-out", "build", "-verbose", "main.tova"})
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.OutDir != "build" || !opts.Verbose {
		t.Errorf("unexpected options %+v", opts)
	}
	if len(files) != 1 || files[0] != "main.tova" {
		t.Errorf("unexpected positional args %v", files)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	opts, _, err := ParseFlags("test", nil)
	if err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if opts.OutDir != "dist" || opts.AssetsDir != "" || opts.LogJSON != "" || opts.Verbose {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

func TestDeployWritesSections(t *testing.T) {
	out := t.TempDir()
	sections := map[string]string{"shared": "const x = 1;\n"}

	err := Deploy(discardLogger(), sections, Options{OutDir: out})
	if err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "shared.js"))
	if err != nil {
		t.Fatalf("expected shared.js to exist: %v", err)
	}
	if string(data) != "const x = 1;\n" {
		t.Errorf("unexpected section content %q", data)
	}

	// No assets configured, no manifest.
	if _, err := os.Stat(filepath.Join(out, "manifest.json")); !os.IsNotExist(err) {
		t.Errorf("expected no manifest without an assets dir, got %v", err)
	}
}

func TestDeployWritesManifest(t *testing.T) {
	out := t.TempDir()
	assets := t.TempDir()
	content := "hello deployment world\n"
	if err := os.WriteFile(filepath.Join(assets, "notes.txt"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	err := Deploy(discardLogger(), map[string]string{"shared": "x"}, Options{
		OutDir:    out,
		AssetsDir: assets,
	})
	if err != nil {
		t.Fatalf("Deploy failed: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(out, "manifest.json"))
	if err != nil {
		t.Fatalf("expected manifest.json: %v", err)
	}
	var manifest []Asset
	if err := json.Unmarshal(data, &manifest); err != nil {
		t.Fatalf("manifest is not valid JSON: %v", err)
	}
	if len(manifest) != 1 {
		t.Fatalf("expected 1 asset, got %d", len(manifest))
	}
	entry := manifest[0]
	if entry.Path != "notes.txt" {
		t.Errorf("expected relative path notes.txt, got %q", entry.Path)
	}
	if !strings.HasPrefix(entry.Type, "text/plain") {
		t.Errorf("expected detected text type, got %q", entry.Type)
	}
	if entry.Size != int64(len(content)) {
		t.Errorf("expected size %d, got %d", len(content), entry.Size)
	}
}

func TestNewLoggerJSONStream(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deploy.log")
	log, cleanup, err := NewLogger(io.Discard, Options{LogJSON: path})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	log.Info("wrote section", "section", "shared")
	cleanup()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected the JSON log file: %v", err)
	}
	var record map[string]any
	line, _, _ := strings.Cut(string(data), "\n")
	if err := json.Unmarshal([]byte(line), &record); err != nil {
		t.Fatalf("log line is not JSON: %v\n%s", err, line)
	}
	if record["msg"] != "wrote section" || record["section"] != "shared" {
		t.Errorf("unexpected log record %v", record)
	}
}

func TestNewLoggerVerboseLevel(t *testing.T) {
	var sb strings.Builder
	log, cleanup, err := NewLogger(&sb, Options{Verbose: true})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer cleanup()
	log.Debug("indexed asset")
	if !strings.Contains(sb.String(), "indexed asset") {
		t.Error("expected debug output with -verbose")
	}

	sb.Reset()
	log, cleanup, err = NewLogger(&sb, Options{})
	if err != nil {
		t.Fatalf("NewLogger failed: %v", err)
	}
	defer cleanup()
	log.Debug("indexed asset")
	if sb.Len() != 0 {
		t.Errorf("expected debug suppressed by default, got %q", sb.String())
	}
}
