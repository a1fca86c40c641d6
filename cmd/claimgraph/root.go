package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	envFile string
	rootCmd = &cobra.Command{
		Use:   "claimgraph",
		Short: "Claimgraph: contradiction detection over a claim graph",
		Long: `Claimgraph extracts entities and atomic claims from documents into a
provenance-tagged property graph, then reports which claims of a main
document are contradicted by claims from supporting documents.`,
		SilenceUsage: true,
	}
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.claimgraph.yaml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "log format (text, json, color)")
	rootCmd.PersistentFlags().String("graph-driver", "neo4j", "graph store (neo4j, memory)")
	rootCmd.PersistentFlags().String("db-driver", "postgres", "document store driver (postgres, sqlite3)")
	rootCmd.PersistentFlags().String("db-dsn", "", "document store connection string")

	// Bind flags to viper
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("graph.driver", rootCmd.PersistentFlags().Lookup("graph-driver"))
	viper.BindPFlag("documents.driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	viper.BindPFlag("documents.dsn", rootCmd.PersistentFlags().Lookup("db-dsn"))
}

// initConfig reads in the dotenv file, the config file and ENV variables if set.
func initConfig() {
	// A missing dotenv file is not an error.
	_ = godotenv.Load(envFile)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".claimgraph" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".claimgraph")
	}

	viper.SetEnvPrefix("CLAIMGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
