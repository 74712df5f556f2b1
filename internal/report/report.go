// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes per-page CSV listings and console tables.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

// bom lets spreadsheet tools detect UTF-8.
const bom = "\ufeff"

// FolderSep joins destination directories in the folders column.
const FolderSep = ";"

// CSVHeader is the first row of every page listing.
var CSVHeader = []string{"filename", "link", "folders"}

// CSVName returns the listing file name for a journal issue.
func CSVName(issue int) string {
	return fmt.Sprintf("essayList_%d.csv", issue)
}

// WriteCSV writes one row per task to path, creating its directory. The
// file is UTF-8 with a byte order mark and is never read back.
func WriteCSV(path string, tasks []types.DownloadTask) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating report directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report: %w", err)
	}
	if err := writeCSV(f, tasks); err != nil {
		f.Close()
		return fmt.Errorf("writing report %s: %w", path, err)
	}
	return f.Close()
}

func writeCSV(w io.Writer, tasks []types.DownloadTask) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, t := range tasks {
		row := []string{t.Record.Title, t.Record.Link, strings.Join(t.Destinations, FolderSep)}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(w)
	return t
}

// RecordsTable prints the accepted records of one listing page.
func RecordsTable(w io.Writer, tasks []types.DownloadTask) {
	t := newTable(w)
	t.AppendHeader(table.Row{"#", "Title", "Keywords", "Link"})
	for i, task := range tasks {
		link := task.Record.Link
		if link == "" {
			link = "-"
		}
		t.AppendRow(table.Row{i + 1, task.Record.Title, strings.Join(task.Record.Keywords, ", "), link})
	}
	t.Render()
}

// SummaryTable prints the run counts followed by every failed task, so the
// user can retry them by hand.
func SummaryTable(w io.Writer, s types.Summary) {
	t := newTable(w)
	t.SetTitle("Summary")
	t.AppendRows([]table.Row{
		{"Listing pages", s.Pages},
		{"Pages failed", s.PagesFailed},
		{"Downloaded", s.Downloaded},
		{"Skipped", s.Skipped},
		{"Failed", s.Failed},
		{"Copy failures", s.CopyFailures},
		{"Transferred", humanize.Bytes(uint64(s.Bytes))},
	})
	t.Render()

	if failures := s.Failures(); len(failures) > 0 {
		ft := newTable(w)
		ft.SetTitle("Failed downloads")
		ft.AppendHeader(table.Row{"Title", "URL", "Kind", "Error"})
		for _, r := range failures {
			ft.AppendRow(table.Row{r.Title, r.URL, kindLabel(r.Kind), errText(r.Err)})
		}
		ft.Render()
	}

	if copies := s.CopyFailed(); len(copies) > 0 {
		ct := newTable(w)
		ct.SetTitle("Copies not made (primary kept)")
		ct.AppendHeader(table.Row{"Title", "Kept at", "Error"})
		for _, r := range copies {
			for _, err := range r.CopyErrors {
				ct.AppendRow(table.Row{r.Title, r.Path, errText(err)})
			}
		}
		ct.Render()
	}
}

func kindLabel(k types.ErrorKind) string {
	if k == types.KindNone {
		return "-"
	}
	return string(k)
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
