package app

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/locotek/presskit/services/presskit-service/internal/config"
	"github.com/locotek/presskit/services/presskit-service/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "presskit",
	Short: "LOCOTEK press-kit service",
	Long:  "Collects press-kit download requests, records the requester and notifies the operator",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Flags
	rootCmd.PersistentFlags().Int("server.port", 3000, "HTTP listen port")
	rootCmd.PersistentFlags().String("storage.file.path", "data/emails.json", "JSON file receiving submissions, empty to disable")
	rootCmd.PersistentFlags().String("database.url", "", "Postgres connection URL, empty to disable")
	rootCmd.PersistentFlags().String("log.level", "info", "Log level: trace, debug, info, warn or error")
	rootCmd.PersistentFlags().String("log.format", "json", "Log format: json or console")

	// Bind flags to viper
	viper.BindPFlag("server.port", rootCmd.PersistentFlags().Lookup("server.port"))
	viper.BindPFlag("storage.file.path", rootCmd.PersistentFlags().Lookup("storage.file.path"))
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("database.url"))
	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log.level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log.format"))
}

func initConfig() {
	// .env is optional; real environment variables win over it.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./services/presskit-service")
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig resolves the configuration and the logger for a command.
func loadConfig() (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	log, err := logging.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	return cfg, log, nil
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
