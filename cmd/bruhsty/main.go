package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "bruhsty",
	Short: "bruhsty administration CLI",
	Long: `bruhsty manages the users of the bot and the subscribers of the paid-subscription platform.
- Users: Telegram accounts with linked email addresses; an address is verified with a code sent to it.
- Subscribers: profiles mirrored from the subscription platform; overdue subscriptions expire.
Configuration is read from a YAML file; every database setting can be overridden with BRUHSTY_DATABASE_<KEY>.`,
	SilenceUsage: true,
}

func main() {
	cobra.OnInitialize(initConfig)
	addPersistentFlags()
	registerCommands()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func initConfig() {
	viper.SetEnvPrefix("BRUHSTY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func addPersistentFlags() {
	rootCmd.PersistentFlags().StringP("config", "c", "bruhsty.yml", "path to the config file")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address while the command runs")
	rootCmd.PersistentFlags().Bool("otel-logs", false, "also send logs to the OpenTelemetry log provider")
	rootCmd.PersistentFlags().Bool("otel-metrics", false, "record metrics with the global OpenTelemetry meter provider unless --metrics-addr is set")
	rootCmd.PersistentFlags().Bool("otel-traces", false, "record spans with the global OpenTelemetry tracer provider")
	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
	_ = viper.BindPFlag("metrics-addr", rootCmd.PersistentFlags().Lookup("metrics-addr"))
	_ = viper.BindPFlag("otel-logs", rootCmd.PersistentFlags().Lookup("otel-logs"))
	_ = viper.BindPFlag("otel-metrics", rootCmd.PersistentFlags().Lookup("otel-metrics"))
	_ = viper.BindPFlag("otel-traces", rootCmd.PersistentFlags().Lookup("otel-traces"))
}

func registerCommands() {
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(userCmd())
	rootCmd.AddCommand(subscribersCmd())
}
