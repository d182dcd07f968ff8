package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostinit/hostinit/internal/app"
)

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Run the first-boot convergence sequence on this host.",
	Long: `Converge executes the four ordered steps on the current host: install
the container runtime, enable its service, grant the unprivileged account
runtime-group membership, and launch the web container. Steps are
idempotent; the first failure aborts the rest with no rollback.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.Bootstrap(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		dep, err := application.ResolveDeployment(cmd.Context(), varFile)
		if err != nil {
			return err
		}

		if err := application.Converge(cmd.Context(), dep); err != nil {
			reportError(err)
			return err
		}
		return nil
	},
}

func init() {
	convergeCmd.Flags().Duration("step-timeout", 0, "Bounded timeout per convergence step (default 5m)")
	viper.BindPFlag("settings.step_timeout", convergeCmd.Flags().Lookup("step-timeout"))

	rootCmd.AddCommand(convergeCmd)
}
