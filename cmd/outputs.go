package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostinit/hostinit/internal/app"
)

var outputsLive bool

var outputsCmd = &cobra.Command{
	Use:   "outputs",
	Short: "Show the deployed host's public address and image ID.",
	Long: `Outputs reads the observable results of an applied deployment: the
host's public network address and the OS image it was created from. The
default source is the provisioning engine's JSON state; --live asks the
platform directly using the deterministic instance name tag.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.Bootstrap(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		if err := application.Outputs(cmd.Context(), varFile, outputsLive); err != nil {
			reportError(err)
			return err
		}
		return nil
	},
}

func init() {
	outputsCmd.Flags().BoolVar(&outputsLive, "live", false, "Query the platform instead of the state file")
	outputsCmd.Flags().String("state", "", "Path to the engine's JSON state file")
	viper.BindPFlag("state.file_path", outputsCmd.Flags().Lookup("state"))

	rootCmd.AddCommand(outputsCmd)
}
