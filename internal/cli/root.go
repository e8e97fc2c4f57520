// Package cli wires the tasksolver cobra commands to viper configuration.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/seantiz/tasksolver/internal/config"
)

const envPrefix = "TASKSOLVER"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:          "tasksolver",
	Short:        "Task Solver runs submitted Python scripts and binaries on a worker pool",
	SilenceUsage: true,
}

// Execute is the entry point called from cmd/tasksolver/main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	config.SetDefaults(viper.GetViper())

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (default: ./tasksolver.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level: debug | info | warn | error")
	rootCmd.PersistentFlags().StringP("address", "a", config.DefaultAddress, "server address")
	rootCmd.PersistentFlags().IntP("port", "p", config.DefaultPort, "server port")
	bindFlag(config.KeyLogLevel, rootCmd.PersistentFlags(), "log-level")
	bindFlag(config.KeyAddress, rootCmd.PersistentFlags(), "address")
	bindFlag(config.KeyPort, rootCmd.PersistentFlags(), "port")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newInitCmd(defaultYAML))
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(createTaskCmd, getStatusCmd, getTaskCountCmd)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, _ := os.UserHomeDir()
		viper.SetConfigName("tasksolver")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(home + "/.tasksolver")
		viper.AddConfigPath("/etc/tasksolver")
	}

	viper.SetEnvPrefix(envPrefix)
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound && !os.IsNotExist(err) {
			fmt.Fprintln(os.Stderr, "error reading config file:", err)
			os.Exit(1)
		}
	} else {
		fmt.Fprintln(os.Stderr, "config:", viper.ConfigFileUsed())
	}
}

func bindFlag(viperKey string, fs *pflag.FlagSet, flagName string) {
	if err := viper.BindPFlag(viperKey, fs.Lookup(flagName)); err != nil {
		panic(fmt.Sprintf("bindFlag %q → %q: %v", flagName, viperKey, err))
	}
}
