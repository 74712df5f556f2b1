// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scrape

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-scraper/internal/console"
	"github.com/pdiddy/paper-scraper/internal/httputil"
	"github.com/pdiddy/paper-scraper/internal/listing"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

var pdfBody = []byte("%PDF-1.5 scrape test\n%%EOF\n")

const issuePage = `<html><body>
<div class="obj_article_summary">
 <h3 class="title"><a href="/index.php/AAAI/article/view/101">Adversarial Diffusion Models</a></h3>
 <div class="authors">Alice Smith</div><div class="pages">1-9</div>
 <a class="obj_galley_link pdf" href="/index.php/AAAI/article/view/101/201">PDF</a>
</div>
<div class="obj_article_summary">
 <h3 class="title"><a href="/index.php/AAAI/article/view/102">Classic CNN Survey</a></h3>
 <div class="authors">Carol White</div><div class="pages">10-18</div>
 <a class="obj_galley_link pdf" href="/index.php/AAAI/article/view/102/202">PDF</a>
</div>
</body></html>`

const landingPage = `<html><body>
<header><a href="/index.php/AAAI">AAAI</a></header>
<a class="download" href="/index.php/AAAI/article/download/101/201">PDF</a>
</body></html>`

const proceedingsPage = `<html><body><div id="content"><dl>
<dt class="ptitle"><a href="/content/CVPR2025/html/A_paper.html">Domain Adaptation: A Study</a></dt>
<dd>Alice</dd>
<dd>[<a href="/content/CVPR2025/papers/A_paper.pdf">pdf</a>]
 <div class="link2"><div class="bibref">@InProceedings{A_2025_CVPR, title = {Domain Adaptation}}</div></div></dd>
<dt class="ptitle"><a href="/content/CVPR2025/html/B_paper.html">Missing Paper</a></dt>
<dd>[<a href="/content/CVPR2025/papers/B_paper.pdf">pdf</a>]</dd>
</dl></div></body></html>`

type fakeSite struct {
	srv        *httptest.Server
	paperHits  atomic.Int64
	listingHit atomic.Int64
}

func newFakeSite(t *testing.T) *fakeSite {
	t.Helper()
	f := &fakeSite{}
	mux := http.NewServeMux()
	mux.HandleFunc("/index.php/AAAI/issue/view/627", func(w http.ResponseWriter, r *http.Request) {
		f.listingHit.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, issuePage)
	})
	mux.HandleFunc("/index.php/AAAI/article/view/101/201", func(w http.ResponseWriter, r *http.Request) {
		f.paperHits.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, landingPage)
	})
	mux.HandleFunc("/index.php/AAAI/article/download/101/201", func(w http.ResponseWriter, r *http.Request) {
		f.paperHits.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdfBody)
	})
	mux.HandleFunc("/CVPR2025", func(w http.ResponseWriter, r *http.Request) {
		f.listingHit.Add(1)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, proceedingsPage)
	})
	mux.HandleFunc("/content/CVPR2025/papers/A_paper.pdf", func(w http.ResponseWriter, r *http.Request) {
		f.paperHits.Add(1)
		w.Header().Set("Content-Type", "application/pdf")
		w.Write(pdfBody)
	})
	f.srv = httptest.NewServer(mux)
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fakeSite) deps(out *bytes.Buffer) Deps {
	return Deps{
		Client:   httputil.NewClientWith(f.srv.Client(), types.HTTPConfig{MaxRetries: 1}, f.srv.URL),
		Progress: console.NewLines(out),
	}
}

func journalConfig(f *fakeSite, root string) types.JournalConfig {
	return types.JournalConfig{
		DownloadConfig: types.DownloadConfig{
			OutputRoot: filepath.Join(root, "papers"),
			Workers:    2,
			Keywords:   []string{" Adversarial "},
		},
		BaseURL:    f.srv.URL,
		IssueURL:   f.srv.URL + "/index.php/AAAI/issue/view/%d",
		FirstIssue: 627,
		LastIssue:  628,
		ReportDir:  filepath.Join(root, "reports"),
	}
}

func TestRunJournal(t *testing.T) {
	f := newFakeSite(t)
	root := t.TempDir()
	cfg := journalConfig(f, root)
	var out bytes.Buffer

	sum, err := RunJournal(context.Background(), cfg, f.deps(&out))
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Pages)
	assert.Equal(t, 1, sum.PagesFailed, "issue 628 is missing")
	assert.Equal(t, 1, sum.Downloaded)
	assert.Zero(t, sum.Failed)
	assert.True(t, sum.HasFailures())

	pdf, err := os.ReadFile(filepath.Join(root, "papers", "adversarial", "Adversarial_Diffusion_Models.pdf"))
	require.NoError(t, err)
	assert.Equal(t, pdfBody, pdf)
	assert.NoDirExists(t, filepath.Join(root, "papers", "all"))

	csvData, err := os.ReadFile(filepath.Join(root, "reports", "essayList_627.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(csvData), "Adversarial Diffusion Models")
	assert.NotContains(t, string(csvData), "Classic CNN Survey")
	assert.NoFileExists(t, filepath.Join(root, "reports", "essayList_628.csv"))

	assert.Contains(t, out.String(), "Processing issue 627 ...")
	assert.Contains(t, out.String(), "Failed to load issue 628")
}

func TestRunJournal_SecondRunMakesNoPaperRequests(t *testing.T) {
	f := newFakeSite(t)
	root := t.TempDir()
	cfg := journalConfig(f, root)
	cfg.LastIssue = 627

	_, err := RunJournal(context.Background(), cfg, f.deps(&bytes.Buffer{}))
	require.NoError(t, err)
	require.Equal(t, int64(2), f.paperHits.Load(), "landing page plus PDF")

	var out bytes.Buffer
	sum, err := RunJournal(context.Background(), cfg, f.deps(&out))
	require.NoError(t, err)
	assert.Equal(t, int64(2), f.paperHits.Load())
	assert.Equal(t, 1, sum.Skipped)
	assert.False(t, sum.HasFailures())
	assert.Contains(t, out.String(), "already exists, skipping.")
}

func TestRunJournal_NoKeywordsFilesUnderAll(t *testing.T) {
	f := newFakeSite(t)
	root := t.TempDir()
	cfg := journalConfig(f, root)
	cfg.Keywords = nil
	cfg.LastIssue = 627

	sum, err := RunJournal(context.Background(), cfg, f.deps(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 1, sum.Failed, "second paper has no landing page")
	assert.FileExists(t, filepath.Join(root, "papers", "all", "Adversarial_Diffusion_Models.pdf"))
}

func TestRunJournal_InvalidConfig(t *testing.T) {
	f := newFakeSite(t)
	cfg := journalConfig(f, t.TempDir())

	bad := cfg
	bad.IssueURL = f.srv.URL + "/issue"
	_, err := RunJournal(context.Background(), bad, f.deps(&bytes.Buffer{}))
	assert.Error(t, err)

	bad = cfg
	bad.FirstIssue, bad.LastIssue = 700, 600
	_, err = RunJournal(context.Background(), bad, f.deps(&bytes.Buffer{}))
	assert.Error(t, err)

	bad = cfg
	bad.BaseURL = "/relative"
	_, err = RunJournal(context.Background(), bad, f.deps(&bytes.Buffer{}))
	assert.Error(t, err)
	assert.Zero(t, f.listingHit.Load())
}

func TestRunJournal_Cancelled(t *testing.T) {
	f := newFakeSite(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := RunJournal(ctx, journalConfig(f, t.TempDir()), f.deps(&bytes.Buffer{}))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.listingHit.Load())
}

func TestRunProceedings(t *testing.T) {
	f := newFakeSite(t)
	root := t.TempDir()
	cfg := types.ProceedingsConfig{
		DownloadConfig: types.DownloadConfig{OutputRoot: root, Workers: 4},
		BaseURL:        f.srv.URL + "/",
		ListingURL:     f.srv.URL + "/CVPR2025",
	}

	sum, err := RunProceedings(context.Background(), cfg, f.deps(&bytes.Buffer{}))
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Pages)
	assert.Equal(t, 1, sum.Downloaded)
	assert.Equal(t, 1, sum.Failed, "B_paper.pdf is not served")
	assert.True(t, sum.HasFailures())

	dir := filepath.Join(root, "Domain_Adaptation__A_Study")
	assert.FileExists(t, filepath.Join(dir, "Domain_Adaptation__A_Study.pdf"))
	txt, err := os.ReadFile(filepath.Join(dir, "Domain_Adaptation__A_Study.txt"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(txt), "@InProceedings{A_2025_CVPR"))
	assert.NoFileExists(t, filepath.Join(root, "Missing_Paper", "Missing_Paper.pdf"))
}

func TestRunProceedings_ListingFailure(t *testing.T) {
	f := newFakeSite(t)
	cfg := types.ProceedingsConfig{
		DownloadConfig: types.DownloadConfig{OutputRoot: t.TempDir(), Workers: 1},
		BaseURL:        f.srv.URL + "/",
		ListingURL:     f.srv.URL + "/CVPR2024",
	}

	sum, err := RunProceedings(context.Background(), cfg, f.deps(&bytes.Buffer{}))
	require.NoError(t, err)
	assert.Equal(t, 1, sum.PagesFailed)
	assert.True(t, sum.HasFailures())
}

func TestJournalTasks(t *testing.T) {
	base, _ := url.Parse("https://ojs.aaai.org")
	records := []types.PaperRecord{
		{Title: "A: B", Link: "/x/1", Keywords: []string{"adversarial", "domain"}},
		{Title: "A? B", Keywords: []string{"all"}},
	}

	tasks := JournalTasks(records, base, "out")

	require.Len(t, tasks, 2)
	assert.Equal(t, "https://ojs.aaai.org/x/1", tasks[0].URL)
	assert.Equal(t, "A__B", tasks[0].FileName)
	assert.Equal(t, []string{filepath.Join("out", "adversarial"), filepath.Join("out", "domain")}, tasks[0].Destinations)
	assert.Empty(t, tasks[1].URL)
	assert.NotEqual(t, tasks[0].FileName, tasks[1].FileName, "colliding stems are disambiguated")
}

// brokenParser rejects every page, as a site redesign would.
type brokenParser struct{}

func (brokenParser) Name() string { return "broken" }

func (brokenParser) Parse(*goquery.Document) ([]types.PaperRecord, error) {
	return nil, listing.ErrNoListing
}

func TestRunJournal_ParserFailureSkipsIssue(t *testing.T) {
	f := newFakeSite(t)
	cfg := journalConfig(f, t.TempDir())
	cfg.LastIssue = 627
	deps := f.deps(&bytes.Buffer{})
	deps.Parser = brokenParser{}

	sum, err := RunJournal(context.Background(), cfg, deps)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.PagesFailed)
	assert.Zero(t, f.paperHits.Load())
	assert.True(t, sum.HasFailures())
}

func TestFetchListing_NamesParser(t *testing.T) {
	f := newFakeSite(t)
	deps := f.deps(&bytes.Buffer{})

	_, err := fetchListing(context.Background(), deps.Client, brokenParser{}, f.srv.URL+"/CVPR2025")
	assert.ErrorIs(t, err, listing.ErrNoListing)
	assert.Contains(t, err.Error(), "parsing broken listing")

	records, err := fetchListing(context.Background(), deps.Client, listing.Journal{}, f.srv.URL+"/index.php/AAAI/issue/view/627")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
