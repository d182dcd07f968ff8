package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	apperrors "github.com/hostinit/hostinit/internal/errors"
)

var (
	cfgFile string
	varFile string
)

var rootCmd = &cobra.Command{
	Use:   "hostinit",
	Short: "Resolves deployment parameters and converges a single-host web stack at first boot.",
	Long: `hostinit owns the procedural edges of a declarative single-host web
deployment: it validates and defaults the operator's parameters into a
concrete configuration, renders or executes the first-boot sequence that
puts an NGINX container on the host, and reads back the deployment's
observable outputs. Creating the cloud resources themselves stays with
the provisioning engine.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
	SilenceUsage: true,
}

func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path (default is .hostinit.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Override log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Override log format (text, json)")
	rootCmd.PersistentFlags().String("reporter", "", "Report format (text, json)")
	rootCmd.PersistentFlags().StringVar(&varFile, "var-file", "", "HCL variables file supplying deployment parameters")

	rootCmd.PersistentFlags().String("prefix", "", "Naming prefix for all resources")
	rootCmd.PersistentFlags().String("network-cidr", "", "IPv4 CIDR block of the network")
	rootCmd.PersistentFlags().String("subnet-cidr", "", "IPv4 CIDR block of the subnet (must be inside the network)")
	rootCmd.PersistentFlags().String("availability-zone", "", "Target availability zone")
	rootCmd.PersistentFlags().String("admin-source-ip", "", "Single host (/32) allowed administrative access")
	rootCmd.PersistentFlags().String("instance-size", "", "Instance class for the host")
	rootCmd.PersistentFlags().String("public-key-path", "", "Path to the SSH public key")

	viper.BindPFlag("settings.log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("settings.log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("settings.reporter", rootCmd.PersistentFlags().Lookup("reporter"))

	viper.BindPFlag("parameters.environment_prefix", rootCmd.PersistentFlags().Lookup("prefix"))
	viper.BindPFlag("parameters.network_cidr", rootCmd.PersistentFlags().Lookup("network-cidr"))
	viper.BindPFlag("parameters.subnet_cidr", rootCmd.PersistentFlags().Lookup("subnet-cidr"))
	viper.BindPFlag("parameters.availability_zone", rootCmd.PersistentFlags().Lookup("availability-zone"))
	viper.BindPFlag("parameters.admin_source_ip", rootCmd.PersistentFlags().Lookup("admin-source-ip"))
	viper.BindPFlag("parameters.instance_size", rootCmd.PersistentFlags().Lookup("instance-size"))
	viper.BindPFlag("parameters.public_key_path", rootCmd.PersistentFlags().Lookup("public-key-path"))

	viper.SetEnvPrefix("HOSTINIT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

func initializeConfig(cmd *cobra.Command) error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.SetConfigName(".hostinit")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return apperrors.Wrap(err, apperrors.CodeConfigReadError, "failed to read config file")
		}
	}
	return nil
}

// reportError prints the user-facing portion of err to stderr.
func reportError(err error) {
	userMsg, suggestion, found := apperrors.GetUserFacingMessage(err)
	if found {
		fmt.Fprintf(os.Stderr, "ERROR: %s\n", userMsg)
		if suggestion != "" {
			fmt.Fprintf(os.Stderr, "Suggestion: %s\n", suggestion)
		}
		return
	}
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
}
