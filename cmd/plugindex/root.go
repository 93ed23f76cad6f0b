// Package plugindex implements the plugindex command line interface.
package plugindex

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "plugindex",
		Short: "Plugindex: plugin catalog search service",
		Long: `Plugindex is a query-composition and result-shaping layer in front of a
document search engine, serving a plugin catalog: free-text search, faceted
filtering, facet listings and paginated sorted results.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			initConfig()
		},
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.plugindex.yaml)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("engine-kind", "http", "engine kind (http, badger)")
	rootCmd.PersistentFlags().String("engine-url", "http://localhost:9200", "remote engine base URL")
	rootCmd.PersistentFlags().String("collection", "plugins", "engine collection holding the plugin documents")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("engine.kind", rootCmd.PersistentFlags().Lookup("engine-kind"))
	viper.BindPFlag("engine.url", rootCmd.PersistentFlags().Lookup("engine-url"))
	viper.BindPFlag("engine.collection", rootCmd.PersistentFlags().Lookup("collection"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".plugindex")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
