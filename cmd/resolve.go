package main

import (
	stderrs "errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostinit/hostinit/internal/app"
	"github.com/hostinit/hostinit/internal/resolver"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Validate and default the deployment parameters.",
	Long: `Resolve merges parameters from flags, environment, the config file and
an optional variables file, applies defaults, and validates every field.
All invalid fields are reported, not just the first.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.Bootstrap(cmd.Context(), viper.GetViper())
		if err != nil {
			reportError(err)
			return err
		}

		if err := application.Resolve(cmd.Context(), varFile); err != nil {
			// Field errors were already reported in full by the reporter.
			var resErr *resolver.ResolutionError
			if !stderrs.As(err, &resErr) {
				reportError(err)
			}
			return err
		}
		return nil
	},
}

func init() {
	resolveCmd.Flags().Bool("platform-checks", false, "Verify zone and instance class against the live region")
	viper.BindPFlag("settings.platform_checks", resolveCmd.Flags().Lookup("platform-checks"))

	rootCmd.AddCommand(resolveCmd)
}
