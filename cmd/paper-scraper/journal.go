// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/report"
	"github.com/pdiddy/paper-scraper/internal/scrape"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Download papers from a range of journal issues",
	Long: `Journal walks the issue pages in [first-issue, last-issue], writes a CSV
listing per issue, and downloads every paper whose title contains one of the
keywords into <output>/<keyword>/. A paper matching several keywords is
downloaded once and copied into the other keyword directories.

Issues are processed one at a time; within an issue, downloads run
concurrently. The command exits non-zero if any issue page or download failed.`,
	RunE: runJournal,
}

func init() {
	f := journalCmd.Flags()
	addCommonFlags(journalCmd, viper.GetViper(), "journal", defaultJournal.HTTPConfig, defaultJournal.DownloadConfig)
	f.String("issue-url", "", "issue page URL template with one %d verb")
	f.Int("first-issue", defaultJournal.FirstIssue, "first issue number")
	f.Int("last-issue", defaultJournal.LastIssue, "last issue number (inclusive)")
	f.String("report-dir", defaultJournal.ReportDir, "directory for per-issue CSV listings; empty disables them")

	viper.BindPFlag("journal.issue_url", f.Lookup("issue-url"))
	viper.BindPFlag("journal.first_issue", f.Lookup("first-issue"))
	viper.BindPFlag("journal.last_issue", f.Lookup("last-issue"))
	viper.BindPFlag("journal.report_dir", f.Lookup("report-dir"))

	rootCmd.AddCommand(journalCmd)
}

func runJournal(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return err
	}
	if dump, _ := cmd.Flags().GetBool("dump-config"); dump {
		return dumpConfig(cmd.OutOrStdout(), cfg)
	}
	return runPipeline(cmd.Context(), cfg.Console, func(ctx context.Context, p console.Progress) (types.Summary, error) {
		return scrape.RunJournal(ctx, cfg.Journal, scrape.Deps{Progress: p})
	})
}

// runPipeline sets up the console, runs one pipeline, and prints its
// summary. The returned error is non-nil when the run failed outright or any
// page or download failed.
func runPipeline(ctx context.Context, cc types.ConsoleConfig, run func(context.Context, console.Progress) (types.Summary, error)) error {
	w, p, err := openConsole(cc)
	if err != nil {
		return err
	}
	defer w.Close()

	p.Start()
	sum, runErr := run(ctx, p)
	p.Stop()

	report.SummaryTable(w, sum)
	if runErr != nil {
		return runErr
	}
	return summaryError(sum)
}
