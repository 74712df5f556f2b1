// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package download resolves paper links to PDFs and files them into
// destination directories, reusing whatever is already on disk.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/httputil"
	"github.com/pdiddy/paper-scraper/internal/listing"
	"github.com/pdiddy/paper-scraper/internal/naming"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

const (
	pdfExt    = ".pdf"
	bibExt    = ".txt"
	chunkSize = 128 * 1024
)

// ErrNothingToDownload marks a record whose listing carried no link.
var ErrNothingToDownload = errors.New("nothing to download")

// CopyError reports a failed replication into a secondary directory.
type CopyError struct {
	Dest string
	Err  error
}

func (e *CopyError) Error() string { return fmt.Sprintf("copying to %s: %v", e.Dest, e.Err) }

func (e *CopyError) Unwrap() error { return e.Err }

// Dispatcher runs download tasks. One Dispatcher serves a whole run; its
// methods are safe for concurrent use because tasks touch disjoint paths.
type Dispatcher struct {
	Client *httputil.Client

	// Base is sent as Referer for direct downloads.
	Base *url.URL

	// Delay is slept after each completed network download.
	Delay time.Duration

	// Progress receives per-transfer byte counts. Nil disables it.
	Progress console.Progress
}

// Destinations maps matched keywords to directories under root, in order.
func Destinations(root string, keywords []string) []string {
	if len(keywords) == 0 {
		keywords = []string{types.AllKeyword}
	}
	dirs := make([]string, len(keywords))
	for i, kw := range keywords {
		dirs[i] = filepath.Join(root, naming.Sanitize(kw))
	}
	return dirs
}

// Journal downloads one journal paper into the primary destination and
// copies it into the others. The task URL may point directly at a PDF or at
// a landing page carrying a "PDF" anchor. When every destination already
// holds the file no request is made; when some do, the missing ones are
// filled by local copy.
func (d *Dispatcher) Journal(ctx context.Context, task types.DownloadTask) types.DownloadResult {
	res := types.DownloadResult{Title: task.Record.Title, URL: task.URL}
	if task.URL == "" || len(task.Destinations) == 0 {
		res.Status = types.StatusSkipped
		res.Err = ErrNothingToDownload
		return res
	}

	name := task.FileName + pdfExt
	targets := make([]string, len(task.Destinations))
	var have string
	missing := 0
	for i, dir := range task.Destinations {
		targets[i] = filepath.Join(dir, name)
		if exists(targets[i]) {
			if have == "" {
				have = targets[i]
			}
		} else {
			missing++
		}
	}
	if missing == 0 {
		res.Status = types.StatusSkipped
		res.Path = targets[0]
		return res
	}
	if have != "" {
		res.Status = types.StatusSkipped
		res.Path = have
		return withCopies(res, have, targets)
	}

	log := slog.With("title", task.Record.Title, "url", task.URL)

	resp, err := d.Client.Download(ctx, task.URL, d.referer())
	if err != nil {
		return failed(res, types.KindFetch, err)
	}

	if !httputil.IsPDF(resp) {
		landing := resp.Request.URL
		doc, err := httputil.ParseDocument(resp)
		resp.Body.Close()
		if err != nil {
			return failed(res, types.KindParse, err)
		}
		pdfURL, err := listing.FindPDFLink(doc, landing)
		if err != nil {
			log.Warn("no PDF link on landing page")
			res.Status = types.StatusSkipped
			res.Kind = types.KindParse
			res.Err = fmt.Errorf("%w on %s", err, task.URL)
			return res
		}
		log.Debug("resolved landing page", "pdf_url", pdfURL)
		res.URL = pdfURL

		resp, err = d.Client.Download(ctx, pdfURL, landing.String())
		if err != nil {
			return failed(res, types.KindDownload, err)
		}
	}

	path, n, err := d.save(resp, targets[0], task.Record.Title)
	resp.Body.Close()
	res.Bytes = n
	if err != nil {
		return failed(res, types.KindDownload, err)
	}
	res.Status = types.StatusDownloaded
	res.Path = path
	res = withCopies(res, path, targets[1:])

	d.pause(ctx)
	return res
}

// Proceedings fills <dir>/<stem>.pdf and <dir>/<stem>.txt for one paper,
// where dir is the task's single destination. The task is skipped when each
// artifact is either present or not offered by the listing.
func (d *Dispatcher) Proceedings(ctx context.Context, task types.DownloadTask) types.DownloadResult {
	res := types.DownloadResult{Title: task.Record.Title, URL: task.URL}
	if len(task.Destinations) == 0 {
		res.Status = types.StatusSkipped
		res.Err = ErrNothingToDownload
		return res
	}
	dir := task.Destinations[0]
	pdfPath := filepath.Join(dir, task.FileName+pdfExt)
	bibPath := filepath.Join(dir, task.FileName+bibExt)

	needPDF := task.URL != "" && !exists(pdfPath)
	needBib := task.Record.BibTeX != "" && !exists(bibPath)
	if !needPDF && !needBib {
		res.Status = types.StatusSkipped
		if exists(pdfPath) {
			res.Path = pdfPath
		} else if task.URL == "" && task.Record.BibTeX == "" {
			res.Err = ErrNothingToDownload
		}
		return res
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return failed(res, types.KindDownload, fmt.Errorf("creating directory %s: %w", dir, err))
	}

	var errs []error
	if needPDF {
		resp, err := d.Client.Download(ctx, task.URL, d.referer())
		if err != nil {
			errs = append(errs, err)
		} else {
			path, n, err := d.save(resp, pdfPath, task.Record.Title)
			resp.Body.Close()
			res.Bytes = n
			if err != nil {
				errs = append(errs, err)
			} else {
				res.Path = path
				d.pause(ctx)
			}
		}
	} else if exists(pdfPath) {
		res.Path = pdfPath
	}

	if needBib {
		if _, err := writeAtomic(bibPath, strings.NewReader(task.Record.BibTeX)); err != nil {
			errs = append(errs, fmt.Errorf("saving bibtex: %w", err))
		} else if res.Path == "" {
			res.Path = bibPath
		}
	}

	if len(errs) > 0 {
		kind := types.KindDownload
		var fe *httputil.FetchError
		if errors.As(errs[0], &fe) {
			kind = types.KindFetch
		}
		return failed(res, kind, errors.Join(errs...))
	}
	res.Status = types.StatusDownloaded
	return res
}

func (d *Dispatcher) referer() string {
	if d.Base == nil {
		return ""
	}
	return d.Base.String()
}

func (d *Dispatcher) progress() console.Progress {
	if d.Progress == nil {
		return console.NewLines(nil)
	}
	return d.Progress
}

func (d *Dispatcher) pause(ctx context.Context) {
	if d.Delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(d.Delay):
	}
}

// save streams resp into dest through a temporary file in the same
// directory, so an interrupted transfer never leaves a partial artifact.
func (d *Dispatcher) save(resp *http.Response, dest, title string) (string, int64, error) {
	if ct := resp.Header.Get("Content-Type"); strings.HasPrefix(strings.ToLower(ct), "text/html") {
		return "", 0, fmt.Errorf("expected a PDF from %s, got %s", resp.Request.URL, ct)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", 0, fmt.Errorf("creating directory %s: %w", filepath.Dir(dest), err)
	}

	bar := d.progress().Transfer(console.Label("PDF: ", title), resp.ContentLength)
	n, err := writeAtomic(dest, io.TeeReader(resp.Body, counterWriter{bar}))
	if err != nil {
		bar.Fail()
		return "", n, fmt.Errorf("downloading %s: %w", resp.Request.URL, err)
	}
	bar.Done()
	return dest, n, nil
}

type counterWriter struct{ c console.Counter }

func (w counterWriter) Write(p []byte) (int, error) {
	w.c.Add(int64(len(p)))
	return len(p), nil
}

// withCopies replicates src into targets and tags the result with KindCopy
// when any copy failed. The status is left as is: the primary is valid.
func withCopies(res types.DownloadResult, src string, targets []string) types.DownloadResult {
	res.CopyErrors = replicate(src, targets)
	if len(res.CopyErrors) > 0 {
		res.Kind = types.KindCopy
		for _, err := range res.CopyErrors {
			slog.Warn("copy failed", "title", res.Title, "err", err)
		}
	}
	return res
}

func failed(res types.DownloadResult, kind types.ErrorKind, err error) types.DownloadResult {
	res.Status = types.StatusFailed
	res.Kind = kind
	res.Err = err
	slog.Error("download failed", "title", res.Title, "url", res.URL, "kind", kind, "err", err)
	return res
}
