package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(devicesCmd)
}

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List the output devices of the synthesizer backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		devices, err := engine.Devices()
		if err != nil {
			return err
		}
		if len(devices) == 0 {
			fmt.Println("no output devices found")
			return nil
		}
		for i, d := range devices {
			fmt.Printf("%d: %s (%s / %s)\n", i, d.Name, d.Manufacturer, d.EntityName)
		}
		return nil
	},
}
