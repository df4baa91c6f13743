package main

import (
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leandrodaf/solfa/sdk/contracts"
)

func init() {
	rootCmd.AddCommand(playCmd)
}

var playCmd = &cobra.Command{
	Use:   "play [beat ...]",
	Short: "Play a programmed loop until interrupted",
	Long: `Play programs the given beats and loops them at the configured tempo.
Each beat is step:solfege:octave[:duration], e.g. 0:do:4 or 8:sol:3:2.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := newEngine()
		if err != nil {
			return err
		}
		defer engine.Close()

		for _, arg := range args {
			beat, err := parseBeat(arg)
			if err != nil {
				return err
			}
			if err := engine.Program().Add(beat); err != nil {
				return fmt.Errorf("beat %q: %w", arg, err)
			}
		}

		if err := engine.Play(flagTempo); err != nil {
			return err
		}

		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig

		engine.StopPlayback()
		return nil
	},
}

// parseBeat reads step:solfege:octave with an optional :duration suffix.
func parseBeat(s string) (contracts.Beat, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 4 {
		return contracts.Beat{}, fmt.Errorf("beat %q: want step:solfege:octave[:duration]", s)
	}

	step, err := strconv.Atoi(parts[0])
	if err != nil {
		return contracts.Beat{}, fmt.Errorf("beat %q: bad step: %w", s, err)
	}
	degree, ok := contracts.ParseSolfege(parts[1])
	if !ok {
		return contracts.Beat{}, fmt.Errorf("beat %q: unknown solfège name %q", s, parts[1])
	}
	octave, err := strconv.Atoi(parts[2])
	if err != nil {
		return contracts.Beat{}, fmt.Errorf("beat %q: bad octave: %w", s, err)
	}

	duration := 1
	if len(parts) == 4 {
		duration, err = strconv.Atoi(parts[3])
		if err != nil {
			return contracts.Beat{}, fmt.Errorf("beat %q: bad duration: %w", s, err)
		}
	}

	return contracts.Beat{Step: step, Solfege: degree, Octave: octave, DurationSteps: duration}, nil
}
