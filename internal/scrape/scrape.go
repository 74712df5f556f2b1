// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scrape runs the two paper pipelines: journal issues, where each
// issue page is processed to completion before the next, and a single
// conference proceedings listing.
package scrape

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/download"
	"github.com/pdiddy/paper-scraper/internal/filter"
	"github.com/pdiddy/paper-scraper/internal/httputil"
	"github.com/pdiddy/paper-scraper/internal/listing"
	"github.com/pdiddy/paper-scraper/internal/naming"
	"github.com/pdiddy/paper-scraper/internal/report"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

// Deps carries the collaborators of a run. Zero fields get defaults built
// from the pipeline configuration.
type Deps struct {
	Client   *httputil.Client
	Progress console.Progress

	// Parser reads the listing pages. Defaults to listing.Journal for
	// RunJournal and a configured listing.Proceedings for RunProceedings.
	Parser listing.Parser
}

func (d Deps) withDefaults(cfg types.HTTPConfig, referer string, workers int) Deps {
	if d.Client == nil {
		d.Client = httputil.NewClient(cfg, referer, workers)
	}
	if d.Progress == nil {
		d.Progress = console.NewLines(nil)
	}
	return d
}

func parseBase(raw string) (*url.URL, error) {
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	if !base.IsAbs() {
		return nil, fmt.Errorf("base URL %q is not absolute", raw)
	}
	return base, nil
}

// RunJournal processes every issue in [FirstIssue, LastIssue]. An issue page
// that cannot be fetched or parsed is logged, counted, and skipped. The
// returned error is non-nil only for invalid configuration or cancellation.
func RunJournal(ctx context.Context, cfg types.JournalConfig, deps Deps) (types.Summary, error) {
	var sum types.Summary
	base, err := parseBase(cfg.BaseURL)
	if err != nil {
		return sum, err
	}
	if !strings.Contains(cfg.IssueURL, "%d") {
		return sum, fmt.Errorf("issue URL template %q has no %%d verb", cfg.IssueURL)
	}
	if cfg.FirstIssue > cfg.LastIssue {
		return sum, fmt.Errorf("first issue %d is after last issue %d", cfg.FirstIssue, cfg.LastIssue)
	}

	deps = deps.withDefaults(cfg.HTTPConfig, base.String(), cfg.Workers)
	if deps.Parser == nil {
		deps.Parser = listing.Journal{}
	}
	p := deps.Progress
	keywords := filter.Normalize(cfg.Keywords)
	d := &download.Dispatcher{Client: deps.Client, Base: base, Delay: cfg.DownloadDelay, Progress: p}

	for issue := cfg.FirstIssue; issue <= cfg.LastIssue; issue++ {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		sum.Pages++
		log := slog.With("issue", issue)
		p.Log("Processing issue %d ...", issue)

		pageURL := fmt.Sprintf(cfg.IssueURL, issue)
		records, err := fetchListing(ctx, deps.Client, deps.Parser, pageURL)
		if err != nil {
			sum.PagesFailed++
			log.Error("loading issue page", "url", pageURL, "err", err)
			p.Log("Failed to load issue %d: %v", issue, err)
			continue
		}

		accepted := filter.Apply(records, keywords)
		tasks := JournalTasks(accepted, base, cfg.OutputRoot)
		log.Info("issue parsed", "records", len(records), "accepted", len(accepted))

		if cfg.ReportDir != "" {
			path := filepath.Join(cfg.ReportDir, report.CSVName(issue))
			if err := report.WriteCSV(path, tasks); err != nil {
				log.Warn("writing issue report", "path", path, "err", err)
			}
		}
		logTable(p, tasks)

		if len(tasks) == 0 {
			p.Log("Issue %d: nothing to download.", issue)
			continue
		}
		runPage(ctx, p, fmt.Sprintf("Issue %d", issue), cfg.Workers, tasks, d.Journal, &sum)
	}
	return sum, ctx.Err()
}

// RunProceedings processes the single proceedings listing page. A listing
// that cannot be fetched or parsed counts as a failed page.
func RunProceedings(ctx context.Context, cfg types.ProceedingsConfig, deps Deps) (types.Summary, error) {
	var sum types.Summary
	base, err := parseBase(cfg.BaseURL)
	if err != nil {
		return sum, err
	}
	deps = deps.withDefaults(cfg.HTTPConfig, base.String(), cfg.Workers)
	p := deps.Progress

	if deps.Parser == nil {
		deps.Parser = listing.Proceedings{Base: base, DetailMarker: cfg.DetailMarker}
	}

	sum.Pages = 1
	p.Log("Fetching listing %s ...", cfg.ListingURL)
	records, err := fetchListing(ctx, deps.Client, deps.Parser, cfg.ListingURL)
	if err != nil {
		sum.PagesFailed++
		slog.Error("loading proceedings listing", "url", cfg.ListingURL, "err", err)
		p.Log("Failed to load listing: %v", err)
		return sum, ctx.Err()
	}

	accepted := filter.Apply(records, filter.Normalize(cfg.Keywords))
	tasks := ProceedingsTasks(accepted, cfg.OutputRoot)
	slog.Info("proceedings parsed", "records", len(records), "accepted", len(accepted))
	p.Log("Found %d papers.", len(tasks))
	if len(tasks) == 0 {
		return sum, nil
	}

	d := &download.Dispatcher{Client: deps.Client, Base: base, Delay: cfg.DownloadDelay, Progress: p}
	runPage(ctx, p, "Papers", cfg.Workers, tasks, d.Proceedings, &sum)
	return sum, ctx.Err()
}

// fetchListing fetches one listing page and parses it with parser.
func fetchListing(ctx context.Context, client *httputil.Client, parser listing.Parser, pageURL string) ([]types.PaperRecord, error) {
	doc, err := client.Document(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("fetching %s listing: %w", parser.Name(), err)
	}
	records, err := parser.Parse(doc)
	if err != nil {
		return nil, fmt.Errorf("parsing %s listing: %w", parser.Name(), err)
	}
	return records, nil
}

// JournalTasks builds one task per record, filing each under its matched
// keywords. Links are resolved against base.
func JournalTasks(records []types.PaperRecord, base *url.URL, root string) []types.DownloadTask {
	stems := naming.Assign(titles(records))
	tasks := make([]types.DownloadTask, len(records))
	for i, rec := range records {
		tasks[i] = types.DownloadTask{
			Record:       rec,
			URL:          listing.Resolve(base, rec.Link),
			FileName:     stems[i],
			Destinations: download.Destinations(root, rec.Keywords),
		}
	}
	return tasks
}

// ProceedingsTasks builds one task per record, each in its own folder named
// after the file stem.
func ProceedingsTasks(records []types.PaperRecord, root string) []types.DownloadTask {
	stems := naming.Assign(titles(records))
	tasks := make([]types.DownloadTask, len(records))
	for i, rec := range records {
		tasks[i] = types.DownloadTask{
			Record:       rec,
			URL:          rec.Link,
			FileName:     stems[i],
			Destinations: []string{filepath.Join(root, stems[i])},
		}
	}
	return tasks
}

func titles(records []types.PaperRecord) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Title
	}
	return out
}

// runPage dispatches one page's tasks and waits for all of them.
func runPage(ctx context.Context, p console.Progress, label string, workers int, tasks []types.DownloadTask,
	do func(context.Context, types.DownloadTask) types.DownloadResult, sum *types.Summary) {

	page := p.Page(label, len(tasks))
	jobs := make([]download.Task, len(tasks))
	for i, t := range tasks {
		jobs[i] = func(ctx context.Context) types.DownloadResult { return do(ctx, t) }
	}
	download.Run(ctx, workers, jobs, func(res types.DownloadResult) {
		sum.Add(res)
		page.Add(1)
		logResult(p, res)
	})
	page.Done()
}

func logResult(p console.Progress, res types.DownloadResult) {
	switch {
	case res.Status == types.StatusDownloaded:
		p.Log("Saved %s", res.Path)
	case res.Status == types.StatusFailed:
		p.Log("Failed %s: %v", res.Title, res.Err)
	case errors.Is(res.Err, download.ErrNothingToDownload):
		p.Log("%s: nothing to download.", res.Title)
	case res.Err != nil:
		p.Log("Skipped %s: %v", res.Title, res.Err)
	default:
		p.Log("%s already exists, skipping.", res.Title)
	}
	for _, err := range res.CopyErrors {
		p.Log("Copy failed for %s: %v", res.Title, err)
	}
}

func logTable(p console.Progress, tasks []types.DownloadTask) {
	if len(tasks) == 0 {
		return
	}
	var buf bytes.Buffer
	report.RecordsTable(&buf, tasks)
	p.Log("%s", strings.TrimRight(buf.String(), "\n"))
}
