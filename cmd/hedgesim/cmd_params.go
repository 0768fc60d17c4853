package main

import (
	"fmt"

	"github.com/elys-network/hedgevault/internal/config"
	"github.com/elys-network/hedgevault/internal/state"

	"github.com/spf13/cobra"
)

var (
	paramsConfigName string
	paramsActivate   bool
)

// paramsCmd is the parent command for stored strategy parameters
var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Manage stored strategy parameters",
}

// paramsSaveCmd stores the configured strategy parameters as a new version
var paramsSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Store the configured strategy parameters as a new version",
	Long: `Store the strategy parameters from the environment (SIM_* variables over the
defaults) as the next version of a named config, optionally making it active.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openArchive(); err != nil {
			return err
		}
		defer state.CloseDB()

		version, err := state.NextStrategyParametersVersion(paramsConfigName)
		if err != nil {
			return err
		}
		id, err := state.SaveStrategyParameters(config.StrategyParams, paramsConfigName, version, paramsActivate)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "saved %s version %d (params_id %d, active=%t)\n", paramsConfigName, version, id, paramsActivate)
		return nil
	},
}

// paramsShowCmd prints the active strategy parameters
var paramsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active strategy parameters of a config",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := openArchive(); err != nil {
			return err
		}
		defer state.CloseDB()

		p, err := state.LoadActiveStrategyParameters(paramsConfigName)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "config:                  %s\n", paramsConfigName)
		fmt.Fprintf(out, "target_collateral_ratio: %g\n", p.TargetCollateralRatio)
		fmt.Fprintf(out, "target_exposure:         %g\n", p.TargetExposure)
		fmt.Fprintf(out, "weight_variable:         %g\n", p.WeightVariable)
		fmt.Fprintf(out, "weight_secondary:        %g\n", p.WeightSecondary)
		fmt.Fprintf(out, "swap_fee:                %g\n", p.SwapFee)
		return nil
	},
}

func init() {
	paramsCmd.PersistentFlags().StringVar(&paramsConfigName, "config", state.DefaultConfigName, "Strategy parameter config name")
	paramsSaveCmd.Flags().BoolVar(&paramsActivate, "activate", true, "Make the saved version active")

	paramsCmd.AddCommand(paramsSaveCmd)
	paramsCmd.AddCommand(paramsShowCmd)
}
