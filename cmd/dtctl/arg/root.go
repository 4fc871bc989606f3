package arg

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dtctl",
	Short: "dtctl is the command line tool for DayTrace",
	Long: `dtctl allows you to interact with the DayTrace daemon via D-Bus.
			You can use it to query day summaries and totals, check daemon
			status, and relocate the store file.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Do Stuff Here
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
