// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by both pipelines.
type HTTPConfig struct {
	// PageTimeout bounds each attempt at a listing or landing page, and each
	// stall while reading its body.
	PageTimeout time.Duration `json:"page_timeout" yaml:"page_timeout" mapstructure:"page_timeout"`

	// DownloadTimeout bounds each attempt at a PDF up to its headers, then
	// each stall between body reads. Large files on slow links still finish.
	DownloadTimeout time.Duration `json:"download_timeout" yaml:"download_timeout" mapstructure:"download_timeout"`

	// UserAgent is sent with every request. A browser string keeps the
	// publisher sites from rejecting the scraper.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on transient failures (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// DownloadConfig holds settings for the download dispatcher.
type DownloadConfig struct {
	// OutputRoot is the root of the artifact tree.
	OutputRoot string `json:"output_root" yaml:"output_root" mapstructure:"output_root"`

	// Workers is the worker pool size.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// DownloadDelay is slept after each completed download.
	DownloadDelay time.Duration `json:"download_delay" yaml:"download_delay" mapstructure:"download_delay"`

	// Keywords restricts records to titles containing at least one keyword.
	// Empty means every record is kept and filed under "all".
	Keywords []string `json:"keywords" yaml:"keywords" mapstructure:"keywords"`
}

// JournalConfig configures the journal issue pipeline.
type JournalConfig struct {
	HTTPConfig     `yaml:",inline" mapstructure:",squash"`
	DownloadConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL resolves relative links and is sent as Referer.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// IssueURL is a printf template taking the issue number.
	IssueURL string `json:"issue_url" yaml:"issue_url" mapstructure:"issue_url"`

	// FirstIssue and LastIssue bound the inclusive issue range.
	FirstIssue int `json:"first_issue" yaml:"first_issue" mapstructure:"first_issue"`
	LastIssue  int `json:"last_issue" yaml:"last_issue" mapstructure:"last_issue"`

	// ReportDir receives one CSV report per issue. Empty disables reports.
	ReportDir string `json:"report_dir" yaml:"report_dir" mapstructure:"report_dir"`
}

// ProceedingsConfig configures the conference proceedings pipeline.
type ProceedingsConfig struct {
	HTTPConfig     `yaml:",inline" mapstructure:",squash"`
	DownloadConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL resolves relative links and is sent as Referer.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// ListingURL is the single page listing every paper.
	ListingURL string `json:"listing_url" yaml:"listing_url" mapstructure:"listing_url"`

	// DetailMarker is the href fragment identifying title links that point
	// at a paper's detail page (e.g. "/html/").
	DetailMarker string `json:"detail_marker" yaml:"detail_marker" mapstructure:"detail_marker"`
}

// ConsoleConfig controls human-readable output.
type ConsoleConfig struct {
	// Encoding names the console character set (e.g. "utf-8", "windows-1252").
	Encoding string `json:"encoding" yaml:"encoding" mapstructure:"encoding"`

	// Progress enables live progress bars.
	Progress bool `json:"progress" yaml:"progress" mapstructure:"progress"`
}
