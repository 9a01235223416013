package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fivetwenty-io/sfctl/cmd/sfctl/commands"
	"github.com/fivetwenty-io/sfctl/internal/constants"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "sfctl",
	Short: "Service Fabric cluster CLI",
	Long: `A command-line interface for querying Azure Service Fabric clusters.

List commands follow continuation tokens until the collection is exhausted
and write each item as soon as it arrives.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "config file (default is $HOME/.sfctl/config.yml)")
	rootCmd.PersistentFlags().StringP("endpoint", "e", "", "cluster HTTP gateway, e.g. https://mycluster:19080")
	rootCmd.PersistentFlags().StringP("token", "t", "", "bearer token")
	rootCmd.PersistentFlags().String("client-cert", "", "client certificate PEM file")
	rootCmd.PersistentFlags().String("client-key", "", "client private key PEM file")
	rootCmd.PersistentFlags().String("ca-file", "", "CA bundle used to verify the cluster certificate")
	rootCmd.PersistentFlags().String("server-thumbprint", "", "SHA-1 thumbprint of a self signed cluster certificate")
	rootCmd.PersistentFlags().StringP("output", "o", constants.FormatTable, "output format (table, json, yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "console", "log format (console, json)")

	// Bind flags to viper
	for key, flag := range map[string]string{
		"config":            "config",
		"endpoint":          "endpoint",
		"token":             "token",
		"client_cert":       "client-cert",
		"client_key":        "client-key",
		"ca_file":           "ca-file",
		"server_thumbprint": "server-thumbprint",
		"output":            "output",
		"verbose":           "verbose",
		"log_level":         "log-level",
		"log_format":        "log-format",
	} {
		_ = viper.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
	}

	// Add commands
	rootCmd.AddCommand(commands.NewVersionCommand(version, commit, date))
	rootCmd.AddCommand(commands.NewConfigCommand())
	rootCmd.AddCommand(commands.NewApplicationsCommand())
	rootCmd.AddCommand(commands.NewApplicationTypesCommand())
	rootCmd.AddCommand(commands.NewNodesCommand())
	rootCmd.AddCommand(commands.NewServicesCommand())
	rootCmd.AddCommand(commands.NewPartitionsCommand())
	rootCmd.AddCommand(commands.NewReplicasCommand())
	rootCmd.AddCommand(commands.NewBackupPoliciesCommand())
	rootCmd.AddCommand(commands.NewClusterCommand())
	rootCmd.AddCommand(commands.NewInventoryCommand())
}

func initConfig() {
	cfgFile := viper.GetString("config")

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}

		configDir := filepath.Join(home, ".sfctl")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yml")
		viper.SetConfigName("config")
	}

	// SFCTL_ENDPOINT, SFCTL_CLIENT_SECRET, ...
	viper.SetEnvPrefix("SFCTL")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd.ExecuteContext(ctx)

	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
