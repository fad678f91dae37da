// Package deploy writes compiled sections and their assets to a deployment
// directory. It is operational glue around the compiler: flag parsing,
// output layout, and an asset manifest for the serving host.
package deploy

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	slogmulti "github.com/samber/slog-multi"
)

// Options are the operational knobs of one deployment run.
type Options struct {
	OutDir    string // destination directory for generated sections
	AssetsDir string // optional static-asset directory to index
	LogJSON   string // optional path for a JSON log stream
	Verbose   bool
}

// ParseFlags reads deployment options from operational flags and returns
// the remaining positional arguments.
func ParseFlags(name string, args []string) (Options, []string, error) {
	var opts Options
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.StringVar(&opts.OutDir, "out", "dist", "output directory for generated code")
	fs.StringVar(&opts.AssetsDir, "assets", "", "static asset directory to index into the manifest")
	fs.StringVar(&opts.LogJSON, "log-json", "", "write a JSON log stream to this file")
	fs.BoolVar(&opts.Verbose, "verbose", false, "enable debug logging")
	if err := fs.Parse(args); err != nil {
		return Options{}, nil, err
	}
	return opts, fs.Args(), nil
}

// NewLogger builds the deployment logger: a text handler on w, fanned out
// to an additional JSON handler when -log-json is set.
func NewLogger(w io.Writer, opts Options) (*slog.Logger, func(), error) {
	level := slog.LevelInfo
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlers := []slog.Handler{
		slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}),
	}
	cleanup := func() {}

	if opts.LogJSON != "" {
		f, err := os.Create(opts.LogJSON)
		if err != nil {
			return nil, nil, fmt.Errorf("open json log: %w", err)
		}
		handlers = append(handlers, slog.NewJSONHandler(f, &slog.HandlerOptions{Level: level}))
		cleanup = func() { f.Close() }
	}

	return slog.New(slogmulti.Fanout(handlers...)), cleanup, nil
}

// Asset is one manifest entry for a static file.
type Asset struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int64  `json:"size"`
}

// Deploy writes each compiled section to <out>/<section>.js and, when an
// asset directory is configured, indexes it into <out>/manifest.json with
// detected content types.
func Deploy(log *slog.Logger, sections map[string]string, opts Options) error {
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	for name, text := range sections {
		path := filepath.Join(opts.OutDir, name+".js")
		if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
			return fmt.Errorf("write section %s: %w", name, err)
		}
		log.Info("wrote section", "section", name, "path", path, "bytes", len(text))
	}

	if opts.AssetsDir == "" {
		return nil
	}
	assets, err := indexAssets(log, opts.AssetsDir)
	if err != nil {
		return err
	}
	manifest, err := json.MarshalIndent(assets, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(opts.OutDir, "manifest.json")
	if err := os.WriteFile(path, manifest, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	log.Info("wrote manifest", "path", path, "assets", len(assets))
	return nil
}

// indexAssets walks the asset tree and records each file with its detected
// content type.
func indexAssets(log *slog.Logger, dir string) ([]Asset, error) {
	var assets []Asset
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		mtype, err := mimetype.DetectFile(path)
		if err != nil {
			return fmt.Errorf("detect type of %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		log.Debug("indexed asset", "path", rel, "type", mtype.String())
		assets = append(assets, Asset{Path: rel, Type: mtype.String(), Size: info.Size()})
		return nil
	})
	return assets, err
}
