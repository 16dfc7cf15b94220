// Package cli is the pipeflow reference command line: a "serve" command
// that starts the HTTP entry façade against a real Postgres/Redis pair,
// and a "trigger" command that submits a single trigger JSON file against
// an in-process catalog/storage pair for local testing without any
// external service.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// RootCmd is the pipeflow CLI entry point.
var RootCmd = &cobra.Command{
	Use:   "pipeflowctl",
	Short: "run the pipeflow engine or submit a single trigger locally",
	Long: `pipeflowctl drives the pipeline execution engine.

  pipeflowctl serve    starts the HTTP trigger façade against configured
                        storage/queue backends
  pipeflowctl trigger  runs one trigger request through an in-process
                        catalog/storage pair and prints the resulting log

Configuration is read from flags, environment variables, and an optional
config file (default search: $HOME/.pipeflowctl.yaml, ./.pipeflowctl.yaml).`,
}

func init() {
	cobra.OnInitialize(initConfig)
	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $HOME/.pipeflowctl.yaml)")
	RootCmd.AddCommand(serveCmd)
	RootCmd.AddCommand(triggerCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".pipeflowctl")
	}

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("using config file:", viper.ConfigFileUsed())
	}
}
