// Package commands implements the ipcforge CLI. The engine itself lives in
// the transform package; everything here is thin glue around it.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/ipcforge/ipcforge/logger"
)

var (
	flagJSON    bool
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ipcforge",
	Short: "Build-time IPC glue generator for main/renderer source files",
	Long: `ipcforge rewrites *.main.ipc.* and *.renderer.ipc.* source files into
context-correct IPC code. Exported functions in a file whose role matches
the processing context keep their bodies and gain an appended channel
registration; functions in the opposite role are replaced by proxy stubs
that call across the process boundary on a collision-resistant channel.

Available commands:
  transform - Rewrite files for a processing context
  channels  - List the channels a file's exports will be bound to
  watch     - Re-transform files continuously as they change
  version   - Show version information

Examples:
  ipcforge transform --context main --out-dir build/main src/
  ipcforge transform --context renderer --write staging/
  ipcforge channels src/windows.renderer.ipc.ts
  ipcforge watch --context main --out-dir build/main src/`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := logger.Initialize(flagJSON); err != nil {
			return err
		}
		if flagVerbose {
			logger.SetVerbose()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Cleanup()
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Emit logs as JSON")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(transformCmd)
	rootCmd.AddCommand(channelsCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
