package arg

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/ferncreek/daytrace/internal/ipc"
)

var summaryCmd = &cobra.Command{
	Use:   "summary [date]",
	Short: "Print the merged timeline for a day (YYYY-MM-DD, default today)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		date := ""
		if len(args) > 0 {
			date = args[0]
		}

		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			log.Fatal("Failed to connect to session bus:", err)
		}
		defer conn.Close()

		obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))

		var result string
		err = obj.Call(ipc.InterfaceName+".GetDaySummary", 0, date).Store(&result)
		if err != nil {
			log.Fatal("Failed to call method:", err)
		}

		fmt.Println(result)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
}
