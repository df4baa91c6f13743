package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "solfa",
	Short: "Polyphonic solfège instrument with a step sequencer",
	Long:  `Solfa plays solfège degrees through a synthesizer backend, either live or from a programmed sequencer loop.`,
}

var (
	flagKey      string
	flagMinor    bool
	flagTempo    float64
	flagSteps    int
	flagVelocity uint8
)

func init() {
	rootCmd.PersistentFlags().StringVar(&flagKey, "key", "C", "tonic key (C, Db, D, ... B)")
	rootCmd.PersistentFlags().BoolVar(&flagMinor, "minor", false, "use the natural minor scale")
	rootCmd.PersistentFlags().Float64Var(&flagTempo, "tempo", 120, "tempo in beats per minute")
	rootCmd.PersistentFlags().IntVar(&flagSteps, "steps", 16, "steps in the sequencer loop")
	rootCmd.PersistentFlags().Uint8Var(&flagVelocity, "velocity", 96, "attack velocity (1-127)")
}

// Execute runs the root command.
func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
