// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the paper-scraper CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the paper-scraper CLI.
var rootCmd = &cobra.Command{
	Use:   "paper-scraper",
	Short: "Batch-download papers from journal issues and conference proceedings",
	Long: `paper-scraper walks publisher listing pages, keeps the papers whose titles
match the configured keywords, and downloads their PDFs into a local tree.
Artifacts already on disk are never fetched again, so an interrupted run can
simply be repeated.

The journal subcommand walks a range of OJS issue pages; the proceedings
subcommand reads a single CVF-style listing and also saves BibTeX entries.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging(viper.GetString("log_level"))
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./paper-scraper.yaml or $XDG_CONFIG_HOME/paper-scraper/paper-scraper.yaml)")
	rootCmd.PersistentFlags().String("log-level", defaultLogLevel, "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().String("encoding", "", "console character set (default utf-8)")
	rootCmd.PersistentFlags().Bool("progress", true, "render live progress bars")
	rootCmd.PersistentFlags().Bool("dump-config", false, "print the effective configuration as YAML and exit")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("console.encoding", rootCmd.PersistentFlags().Lookup("encoding"))
	viper.BindPFlag("console.progress", rootCmd.PersistentFlags().Lookup("progress"))

	setDefaults(viper.GetViper())
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("paper-scraper")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		viper.AddConfigPath(filepath.Join(xdg.ConfigHome, "paper-scraper"))
	}

	viper.SetEnvPrefix("PAPER_SCRAPER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// setupLogging installs the default structured logger on stderr. Every
// record carries the run id so concurrent runs can be told apart.
func setupLogging(level string) error {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(handler).With("run_id", uuid.NewString()))
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
