package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hostinit/hostinit/internal/app"
)

var (
	renderBase64 bool
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render the first-boot script from the resolved parameters.",
	Long: `Render resolves the parameters and emits the first-boot convergence
sequence as a bash script suitable for the provisioning template's user
data, optionally base64-encoded for user_data_base64.`,
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

		script, err := application.RenderUserData(dep, renderBase64)
		if err != nil {
			reportError(err)
			return err
		}

		if renderOutput != "" {
			if err := os.WriteFile(renderOutput, []byte(script), 0o644); err != nil {
				reportError(err)
				return err
			}
			return nil
		}
		fmt.Fprintln(os.Stdout, script)
		return nil
	},
}

func init() {
	renderCmd.Flags().BoolVar(&renderBase64, "base64", false, "Base64-encode the rendered script")
	renderCmd.Flags().StringVarP(&renderOutput, "output", "o", "", "Write the script to a file instead of stdout")

	rootCmd.AddCommand(renderCmd)
}
