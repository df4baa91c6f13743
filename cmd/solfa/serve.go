package main

import (
	"github.com/spf13/cobra"

	"github.com/leandrodaf/solfa/internal/api"
	"github.com/leandrodaf/solfa/internal/logger"
)

var flagAddr string

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", ":8080", "listen address for the control API")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP control API for a browser front end",
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		return api.NewServer(engine, logger.NewZapLogger()).ListenAndServe(flagAddr)
	},
}
