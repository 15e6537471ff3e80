package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ipcforge/ipcforge/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Get().String())
	},
}
