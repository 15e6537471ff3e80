package commands

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ipcforge/ipcforge/config"
	"github.com/ipcforge/ipcforge/errors"
	"github.com/ipcforge/ipcforge/logger"
	"github.com/ipcforge/ipcforge/transform"
)

var (
	transformContext string
	transformOutDir  string
	transformWrite   bool
	transformMaps    bool
)

var transformCmd = &cobra.Command{
	Use:   "transform [paths...]",
	Short: "Rewrite IPC files for a processing context",
	Long: `Transform every *.main.ipc.* and *.renderer.ipc.* file under the given
paths for one processing context. Files whose names carry no role suffix are
ignored entirely.

Each file is transformed independently; transforms run in parallel up to the
configured concurrency.

Examples:
  ipcforge transform --context main --out-dir build/main src/
  ipcforge transform --context renderer --write staging/renderer
  ipcforge transform --context main src/state.main.ipc.ts   # to stdout`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTransform,
}

func init() {
	transformCmd.Flags().StringVarP(&transformContext, "context", "c", "", "Processing context: main or renderer")
	transformCmd.Flags().StringVarP(&transformOutDir, "out-dir", "o", "", "Write transformed files under this directory")
	transformCmd.Flags().BoolVarP(&transformWrite, "write", "w", false, "Rewrite files in place")
	transformCmd.Flags().BoolVar(&transformMaps, "map", false, "Also write a .map.json position-mapping sidecar")
}

func runTransform(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	pc, err := resolveContext(cfg)
	if err != nil {
		return err
	}
	if transformWrite && transformOutDir != "" {
		return errors.New("--write and --out-dir are mutually exclusive")
	}

	files, err := discoverFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warnw("No matching IPC files found", logger.FieldContext, string(pc))
		return nil
	}
	if !transformWrite && transformOutDir == "" && len(files) > 1 {
		return errors.New("stdout output supports a single file; pass --write or --out-dir")
	}

	runID := uuid.NewString()[:8]
	opts := transform.Options{Context: pc, HostModule: cfg.Host.Module}
	start := time.Now()

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(concurrency(cfg))

	for _, file := range files {
		g.Go(func() error {
			return transformOne(ctx, opts, cfg, runID, file)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	logger.Infow("Transform complete",
		logger.FieldRunID, runID,
		logger.FieldContext, string(pc),
		logger.FieldCount, len(files),
		logger.FieldDurationMS, time.Since(start).Milliseconds())
	return nil
}

// transformOne runs the engine for a single file and delivers the output to
// stdout, in place, or under the out dir.
func transformOne(ctx context.Context, opts transform.Options, cfg *config.Config, runID, file string) error {
	src, err := os.ReadFile(file)
	if err != nil {
		return errors.Wrapf(err, "read %s", file)
	}

	result, err := transform.File(ctx, opts, file, src)
	if err != nil {
		return err
	}

	for _, b := range result.Bindings {
		logger.Debugw("Bound channel",
			logger.FieldRunID, runID,
			logger.FieldFile, file,
			logger.FieldExport, b.Export,
			logger.FieldStrategy, b.Strategy,
			logger.FieldChannel, b.Channel)
	}

	outPath := file
	switch {
	case transformOutDir != "":
		outPath = filepath.Join(transformOutDir, filepath.Base(file))
		if err := os.MkdirAll(transformOutDir, 0o755); err != nil {
			return errors.Wrapf(err, "create %s", transformOutDir)
		}
		if err := os.WriteFile(outPath, result.Code, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", outPath)
		}
	case transformWrite:
		if !result.Changed {
			return nil
		}
		if err := os.WriteFile(outPath, result.Code, 0o644); err != nil {
			return errors.Wrapf(err, "write %s", outPath)
		}
	default:
		if _, err := os.Stdout.Write(result.Code); err != nil {
			return err
		}
		return nil
	}

	if (transformMaps || cfg.Transform.SourceMaps) && result.Changed {
		if err := writeMapSidecar(outPath, file, result.Mapping); err != nil {
			return err
		}
	}
	return nil
}

// writeMapSidecar stores the assembler's position mapping next to the
// output so debuggers can walk generated offsets back to the original file.
func writeMapSidecar(outPath, source string, mapping []transform.Segment) error {
	sidecar := struct {
		Source   string              `json:"source"`
		Segments []transform.Segment `json:"segments"`
	}{Source: source, Segments: mapping}

	data, err := json.MarshalIndent(sidecar, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal position mapping")
	}
	return os.WriteFile(outPath+".map.json", data, 0o644)
}

// resolveContext picks the processing context from the flag, falling back
// to the configured default.
func resolveContext(cfg *config.Config) (transform.Context, error) {
	raw := transformContext
	if raw == "" {
		raw = cfg.Transform.Context
	}
	if raw == "" {
		return "", errors.New("processing context required: pass --context main|renderer or set transform.context")
	}
	return transform.ParseContext(raw)
}

func concurrency(cfg *config.Config) int {
	if cfg.Transform.Concurrency > 0 {
		return cfg.Transform.Concurrency
	}
	return 1
}

// discoverFiles expands the argument paths into the list of role-suffixed
// files, walking directories recursively.
func discoverFiles(paths []string) ([]string, error) {
	var files []string

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, errors.Wrapf(err, "stat %s", path)
		}

		if !info.IsDir() {
			if transform.Matches(path) {
				files = append(files, path)
			}
			continue
		}

		err = filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && transform.Matches(p) {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, errors.Wrapf(err, "walk %s", path)
		}
	}

	return files, nil
}
