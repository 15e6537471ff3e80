package commands

import (
	"os"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ipcforge/ipcforge/config"
	"github.com/ipcforge/ipcforge/errors"
	"github.com/ipcforge/ipcforge/logger"
	"github.com/ipcforge/ipcforge/transform"
)

var channelsCmd = &cobra.Command{
	Use:   "channels [paths...]",
	Short: "List the channels a file's exports will be bound to",
	Long: `Dry-run extraction and channel naming without rewriting anything, so the
channel an exported function will be bound to can be inspected (and
collisions spotted) before a build.

Channel strings do not depend on the processing context, only on the file
name, the export, and the function body.

Example:
  ipcforge channels src/`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChannels,
}

func runChannels(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	files, err := discoverFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warnw("No matching IPC files found")
		return nil
	}

	tableData := pterm.TableData{{"FILE", "EXPORT", "ASYNC", "CHANNEL"}}
	opts := transform.Options{Context: transform.ContextMain, HostModule: cfg.Host.Module}

	for _, file := range files {
		src, err := os.ReadFile(file)
		if err != nil {
			return errors.Wrapf(err, "read %s", file)
		}

		result, err := transform.File(cmd.Context(), opts, file, src)
		if err != nil {
			return err
		}

		for _, b := range result.Bindings {
			async := "no"
			if b.Async {
				async = "yes"
			}
			tableData = append(tableData, []string{file, b.Export, async, b.Channel})
		}
	}

	return pterm.DefaultTable.WithHasHeader().WithData(tableData).Render()
}
