package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sebas80sebas/zabreport/internal/config"
)

var (
	cfgFile string
	cfg     config.Config
	verbose bool
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "zabreport",
	Short: "Excel reporting for Zabbix and Prometheus host metrics",
	Long: `ZabReport pulls per-host CPU and memory summaries from a monitoring
backend, stages them as CSV blobs in object storage, and renders a styled
Excel workbook with rankings, host-group breakdowns, and per-host charts.

Finished reports can be announced to a Teams channel with time-limited
download links.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(); err != nil {
			return err
		}
		initLogger()
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: zabreport.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	// Global flags that map to config
	rootCmd.PersistentFlags().String("source", "", "metrics backend: zabbix, prometheus, or static")
	rootCmd.PersistentFlags().String("zabbix-url", "", "Zabbix JSON-RPC endpoint URL")
	rootCmd.PersistentFlags().String("prometheus-url", "", "Prometheus/Thanos endpoint URL")
	rootCmd.PersistentFlags().String("bucket", "", "S3 bucket for CSV blobs and reports")
	rootCmd.PersistentFlags().String("region", "", "AWS region")

	_ = viper.BindPFlag("source.backend", rootCmd.PersistentFlags().Lookup("source"))
	_ = viper.BindPFlag("zabbix.url", rootCmd.PersistentFlags().Lookup("zabbix-url"))
	_ = viper.BindPFlag("prometheus.url", rootCmd.PersistentFlags().Lookup("prometheus-url"))
	_ = viper.BindPFlag("storage.bucket", rootCmd.PersistentFlags().Lookup("bucket"))
	_ = viper.BindPFlag("storage.region", rootCmd.PersistentFlags().Lookup("region"))
}

func loadConfig() error {
	// Start with defaults
	cfg = config.Default()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("zabreport")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.zabreport")
	}

	// Environment variable overrides
	viper.SetEnvPrefix("ZABREPORT")
	viper.AutomaticEnv()

	// Read config file (not an error if missing)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgFile != "" {
			return fmt.Errorf("reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	return cfg.Validate()
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
}
