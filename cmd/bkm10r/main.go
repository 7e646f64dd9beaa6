// Command bkm10r emulates the Sony BKM-10r control panel over a serial link.
package main

import (
	"errors"
	"log"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

func main() {
	cmd := remoteCommand()
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ./bkm10r.yaml)")
	cmd.PersistentFlags().StringP("device", "d", "", "Serial device")
	cmd.PersistentFlags().Int("baud", 0, "Baud rate")
	cmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error")
	cmd.PersistentFlags().String("log-format", "", "Log format: console or json")
	cmd.PersistentFlags().String("log-file", "", "Also log to this rolling file")

	cmd.AddCommand(sniffCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "dump FILE",
		Short: "Decode a capture written with --record",
		Args:  cobra.ExactArgs(1),
		RunE:  dump,
	})
	cmd.AddCommand(commandsCommand())
	cmd.AddCommand(&cobra.Command{
		Use:   "ports",
		Short: "List serial devices",
		Args:  cobra.ExactArgs(0),
		RunE:  ports,
	})

	if err := cmd.Execute(); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		log.Fatalln(err)
	}
}
