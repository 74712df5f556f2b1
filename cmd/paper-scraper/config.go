// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/httputil"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

const defaultLogLevel = "info"

// Config is the full configuration file layout.
type Config struct {
	LogLevel    string                  `json:"log_level" yaml:"log_level" mapstructure:"log_level"`
	Console     types.ConsoleConfig     `json:"console" yaml:"console" mapstructure:"console"`
	Journal     types.JournalConfig     `json:"journal" yaml:"journal" mapstructure:"journal"`
	Proceedings types.ProceedingsConfig `json:"proceedings" yaml:"proceedings" mapstructure:"proceedings"`
}

var defaultHTTP = types.HTTPConfig{
	PageTimeout:     15 * time.Second,
	DownloadTimeout: 60 * time.Second,
	UserAgent:       httputil.DefaultUserAgent,
	MaxRetries:      httputil.DefaultMaxRetries,
}

var defaultJournal = types.JournalConfig{
	HTTPConfig: defaultHTTP,
	DownloadConfig: types.DownloadConfig{
		OutputRoot:    "essay",
		Workers:       8,
		DownloadDelay: 200 * time.Millisecond,
		Keywords:      []string{"adversarial", "diffusion", "unpair", "restoration", "domain"},
	},
	BaseURL:    "https://ojs.aaai.org",
	IssueURL:   "https://ojs.aaai.org/index.php/AAAI/issue/view/%d",
	FirstIssue: 627,
	LastIssue:  648,
	ReportDir:  ".",
}

var defaultProceedings = types.ProceedingsConfig{
	HTTPConfig: types.HTTPConfig{
		PageTimeout:     20 * time.Second,
		DownloadTimeout: defaultHTTP.DownloadTimeout,
		UserAgent:       defaultHTTP.UserAgent,
		MaxRetries:      defaultHTTP.MaxRetries,
	},
	DownloadConfig: types.DownloadConfig{
		OutputRoot: "cvpr2025",
		Workers:    10,
		Keywords:   []string{},
	},
	BaseURL:      "https://openaccess.thecvf.com/",
	ListingURL:   "https://openaccess.thecvf.com/CVPR2025?day=all",
	DetailMarker: "/html/",
}

// setDefaults registers every configuration key so that environment
// variables and the config file can override any of them.
func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", defaultLogLevel)
	v.SetDefault("console.encoding", console.DefaultEncoding)
	v.SetDefault("console.progress", true)

	setCommonDefaults(v, "journal", defaultJournal.HTTPConfig, defaultJournal.DownloadConfig)
	v.SetDefault("journal.base_url", defaultJournal.BaseURL)
	v.SetDefault("journal.issue_url", defaultJournal.IssueURL)
	v.SetDefault("journal.first_issue", defaultJournal.FirstIssue)
	v.SetDefault("journal.last_issue", defaultJournal.LastIssue)
	v.SetDefault("journal.report_dir", defaultJournal.ReportDir)

	setCommonDefaults(v, "proceedings", defaultProceedings.HTTPConfig, defaultProceedings.DownloadConfig)
	v.SetDefault("proceedings.base_url", defaultProceedings.BaseURL)
	v.SetDefault("proceedings.listing_url", defaultProceedings.ListingURL)
	v.SetDefault("proceedings.detail_marker", defaultProceedings.DetailMarker)
}

func setCommonDefaults(v *viper.Viper, section string, h types.HTTPConfig, d types.DownloadConfig) {
	v.SetDefault(section+".page_timeout", h.PageTimeout)
	v.SetDefault(section+".download_timeout", h.DownloadTimeout)
	v.SetDefault(section+".user_agent", h.UserAgent)
	v.SetDefault(section+".max_retries", h.MaxRetries)
	v.SetDefault(section+".output_root", d.OutputRoot)
	v.SetDefault(section+".workers", d.Workers)
	v.SetDefault(section+".download_delay", d.DownloadDelay)
	v.SetDefault(section+".keywords", d.Keywords)
}

// addCommonFlags defines the flags shared by both pipelines and binds them
// to the keys of section.
func addCommonFlags(cmd *cobra.Command, v *viper.Viper, section string, h types.HTTPConfig, d types.DownloadConfig) {
	f := cmd.Flags()
	f.String("base-url", "", "site base URL, used to resolve links and as Referer")
	f.StringP("output", "o", d.OutputRoot, "root directory for downloaded papers")
	f.IntP("workers", "w", d.Workers, "number of concurrent downloads")
	f.Duration("delay", d.DownloadDelay, "pause after each completed download")
	f.StringSliceP("keywords", "k", d.Keywords, "title keywords; empty keeps every paper")
	f.Duration("page-timeout", h.PageTimeout, "per-attempt timeout for listing and landing pages")
	f.Duration("download-timeout", h.DownloadTimeout, "per-attempt and read-stall timeout for PDF downloads")
	f.Int("max-retries", h.MaxRetries, "retries on transient HTTP failures")
	f.String("user-agent", "", "User-Agent header (default: a desktop browser)")

	bind := map[string]string{
		"base-url":         "base_url",
		"output":           "output_root",
		"workers":          "workers",
		"delay":            "download_delay",
		"keywords":         "keywords",
		"page-timeout":     "page_timeout",
		"download-timeout": "download_timeout",
		"max-retries":      "max_retries",
		"user-agent":       "user_agent",
	}
	for flag, key := range bind {
		v.BindPFlag(section+"."+key, f.Lookup(flag))
	}
}

// loadConfig decodes the merged defaults, config file, environment, and flags.
func loadConfig(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding configuration: %w", err)
	}
	return cfg, nil
}

// dumpConfig writes cfg as YAML, in the layout accepted by --config.
func dumpConfig(w io.Writer, cfg Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(cfg); err != nil {
		return fmt.Errorf("encoding configuration: %w", err)
	}
	return enc.Close()
}

// openConsole returns the console writer and the progress reporter for a
// run. The caller closes the writer after stopping the progress reporter.
func openConsole(cfg types.ConsoleConfig) (*console.Writer, console.Progress, error) {
	w, err := console.NewWriter(os.Stdout, cfg.Encoding)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Progress {
		return w, console.NewBars(w), nil
	}
	return w, console.NewLines(w), nil
}

// summaryError turns a summary with failures into the command's error, so
// the process exits non-zero.
func summaryError(s types.Summary) error {
	if !s.HasFailures() {
		return nil
	}
	return fmt.Errorf("%d download(s) and %d listing page(s) failed", s.Failed, s.PagesFailed)
}
