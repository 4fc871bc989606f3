package arg

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/ferncreek/daytrace/internal/ipc"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check if the DayTrace daemon is running",
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			log.Fatal("Failed to connect to session bus:", err)
		}
		defer conn.Close()

		obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))

		var result string
		err = obj.Call(ipc.InterfaceName+".GetStatus", 0).Store(&result)
		if err != nil {
			log.Fatal("Failed to call method:", err)
		}

		fmt.Println("DayTrace Status:", result)
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
