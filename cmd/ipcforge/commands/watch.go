package commands

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ipcforge/ipcforge/config"
	"github.com/ipcforge/ipcforge/errors"
	"github.com/ipcforge/ipcforge/logger"
	"github.com/ipcforge/ipcforge/transform"
)

// watchDebounce coalesces the burst of events editors fire per save.
const watchDebounce = 500 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch [paths...]",
	Short: "Re-transform IPC files continuously as they change",
	Long: `Watch the given directories and re-run the transform for any role-suffixed
file that is written or created. Output always goes under --out-dir; in-place
rewriting is not available while watching because the write would retrigger
the watcher and re-transform already-generated code.

Example:
  ipcforge watch --context main --out-dir build/main src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

var (
	watchContext string
	watchOutDir  string
)

func init() {
	watchCmd.Flags().StringVarP(&watchContext, "context", "c", "", "Processing context: main or renderer")
	watchCmd.Flags().StringVarP(&watchOutDir, "out-dir", "o", "", "Write transformed files under this directory (required)")
	watchCmd.MarkFlagRequired("out-dir")
}

// fileWatcher debounces change events per file and re-runs the transform.
type fileWatcher struct {
	watcher *fsnotify.Watcher
	opts    transform.Options

	mu     sync.Mutex
	timers map[string]*time.Timer
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	raw := watchContext
	if raw == "" {
		raw = cfg.Transform.Context
	}
	if raw == "" {
		return errors.New("processing context required: pass --context main|renderer or set transform.context")
	}
	pc, err := transform.ParseContext(raw)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create fsnotify watcher")
	}
	defer watcher.Close()

	fw := &fileWatcher{
		watcher: watcher,
		opts:    transform.Options{Context: pc, HostModule: cfg.Host.Module},
		timers:  make(map[string]*time.Timer),
	}

	for _, path := range args {
		if err := fw.addRecursive(path); err != nil {
			return err
		}
	}

	// Transform everything once before settling into the event loop so the
	// out dir starts complete.
	files, err := discoverFiles(args)
	if err != nil {
		return err
	}
	for _, file := range files {
		fw.transformNow(cmd.Context(), file)
	}

	logger.Infow("Watching for changes",
		logger.FieldContext, string(pc),
		logger.FieldCount, len(files))

	for {
		select {
		case <-cmd.Context().Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
				// New directories need their own watch.
				if err := fw.addRecursive(event.Name); err != nil {
					logger.Warnw("Failed to watch new directory",
						logger.FieldFile, event.Name,
						logger.FieldError, err)
				}
				continue
			}
			if !transform.Matches(event.Name) {
				continue
			}
			fw.schedule(cmd, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warnw("Watcher error", logger.FieldError, err)
		}
	}
}

// addRecursive watches a path and every directory under it.
func (fw *fileWatcher) addRecursive(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return errors.Wrapf(err, "stat %s", path)
	}
	if !info.IsDir() {
		return errors.Wrapf(fw.watcher.Add(filepath.Dir(path)), "watch %s", path)
	}

	return filepath.WalkDir(path, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := fw.watcher.Add(p); err != nil {
				return errors.Wrapf(err, "watch %s", p)
			}
		}
		return nil
	})
}

// schedule debounces rapid changes to one file, then re-transforms it.
func (fw *fileWatcher) schedule(cmd *cobra.Command, file string) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if timer, ok := fw.timers[file]; ok {
		timer.Stop()
	}
	fw.timers[file] = time.AfterFunc(watchDebounce, func() {
		fw.transformNow(cmd.Context(), file)
	})
}

// transformNow runs the engine for one file and writes the result under the
// out dir. Watch-mode failures are logged, not fatal: the next save gets
// another chance.
func (fw *fileWatcher) transformNow(ctx context.Context, file string) {
	src, err := os.ReadFile(file)
	if err != nil {
		logger.Errorw("Failed to read file",
			logger.FieldFile, file,
			logger.FieldError, err)
		return
	}

	result, err := transform.File(ctx, fw.opts, file, src)
	if err != nil {
		logger.Errorw("Transform failed",
			logger.FieldFile, file,
			logger.FieldError, err)
		return
	}

	outPath := filepath.Join(watchOutDir, filepath.Base(file))
	if err := os.MkdirAll(watchOutDir, 0o755); err != nil {
		logger.Errorw("Failed to create out dir",
			logger.FieldFile, outPath,
			logger.FieldError, err)
		return
	}
	if err := os.WriteFile(outPath, result.Code, 0o644); err != nil {
		logger.Errorw("Failed to write output",
			logger.FieldFile, outPath,
			logger.FieldError, err)
		return
	}

	logger.Infow("Transformed",
		logger.FieldFile, file,
		logger.FieldContext, string(fw.opts.Context),
		logger.FieldCount, len(result.Bindings))
}
