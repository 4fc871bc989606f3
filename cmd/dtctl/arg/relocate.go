package arg

import (
	"fmt"
	"log"

	"github.com/godbus/dbus/v5"
	"github.com/spf13/cobra"

	"github.com/ferncreek/daytrace/internal/ipc"
)

var relocateCmd = &cobra.Command{
	Use:   "relocate <directory>",
	Short: "Move the store file to a new directory (e.g. a synced folder)",
	Long: `Relocate copies the store into the given directory, verifies the
			copy, and switches the daemon to it. The old file is left in
			place as a safety net.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		conn, err := dbus.ConnectSessionBus()
		if err != nil {
			log.Fatal("Failed to connect to session bus:", err)
		}
		defer conn.Close()

		obj := conn.Object(ipc.ServiceName, dbus.ObjectPath(ipc.ObjectPath))

		var result string
		err = obj.Call(ipc.InterfaceName+".Relocate", 0, args[0]).Store(&result)
		if err != nil {
			log.Fatal("Failed to call method:", err)
		}

		fmt.Println(result)
	},
}

func init() {
	rootCmd.AddCommand(relocateCmd)
}
