package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kilianp07/batlife/core/bundle"
	"github.com/kilianp07/batlife/core/model"
)

var bundleForce bool

var bundleCmd = &cobra.Command{
	Use:   "bundle",
	Short: "Model bundle commands",
}

var bundleValidateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Load a model bundle and report its parameters",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundleValidate,
}

var bundleInitCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Write the starter linear bundle",
	Args:  cobra.ExactArgs(1),
	RunE:  runBundleInit,
}

func init() {
	bundleInitCmd.Flags().BoolVar(&bundleForce, "force", false, "overwrite an existing file")
	bundleCmd.AddCommand(bundleValidateCmd, bundleInitCmd)
	rootCmd.AddCommand(bundleCmd)
}

func runBundleValidate(cmd *cobra.Command, args []string) error {
	f, err := bundle.ReadFile(args[0])
	if err != nil {
		return err
	}
	m, err := f.Build()
	if err != nil {
		return fmt.Errorf("%s: %w", args[0], err)
	}
	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "bundle %s: version %d, estimator %s, training capacity %g kWh\n",
		args[0], f.Version, f.Estimator.Type, m.TrainingCapacityKWh)
	for i, name := range model.FeatureNames {
		_, _ = fmt.Fprintf(out, "  %-6s mean=%-12g std=%g\n", name, m.Mean[i], m.Std[i])
	}
	return nil
}

func runBundleInit(cmd *cobra.Command, args []string) error {
	path := args[0]
	if !bundleForce {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s exists, use --force to overwrite", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	if err := bundle.Save(path, bundle.Starter()); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "wrote starter bundle to %s\n", path)
	return nil
}
