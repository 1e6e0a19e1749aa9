package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batlife/infra/ingest"
	"github.com/kilianp07/batlife/simulator"
)

var generateOpts = simulator.DefaultProfileConfig()
var generateOutput string

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a synthetic household power profile as CSV",
	RunE:  runGenerate,
}

func init() {
	f := generateCmd.Flags()
	f.IntVar(&generateOpts.Days, "days", generateOpts.Days, "number of days")
	f.IntVar(&generateOpts.StartDay, "start-day", generateOpts.StartDay, "day of year of the first sample")
	f.Float64Var(&generateOpts.BaseLoadW, "base-load", generateOpts.BaseLoadW, "constant consumption in W")
	f.Float64Var(&generateOpts.PeakLoadW, "peak-load", generateOpts.PeakLoadW, "evening peak consumption in W")
	f.Float64Var(&generateOpts.PVPeakW, "pv-peak", generateOpts.PVPeakW, "PV output at solar noon in June in W")
	f.Float64Var(&generateOpts.NoiseW, "noise", generateOpts.NoiseW, "gaussian noise standard deviation in W")
	f.Int64Var(&generateOpts.Seed, "seed", 0, "random seed, 0 for a time-based seed")
	f.StringVarP(&generateOutput, "output", "o", "-", "output file, - for stdout")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	ts, err := simulator.GenerateProfile(generateOpts)
	if err != nil {
		return fmt.Errorf("generate profile: %w", err)
	}
	w, closeOut, err := openOutput(cmd, generateOutput)
	if err != nil {
		return err
	}
	if err := ingest.WriteCSV(w, ts); err != nil {
		_ = closeOut()
		return err
	}
	return closeOut()
}
