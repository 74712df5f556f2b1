// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Status is the outcome of a single download task.
type Status string

const (
	StatusDownloaded Status = "downloaded"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// ErrorKind classifies why a task did not produce a fresh artifact.
type ErrorKind string

const (
	KindNone     ErrorKind = ""
	KindFetch    ErrorKind = "fetch"
	KindParse    ErrorKind = "parse"
	KindDownload ErrorKind = "download"
	KindCopy     ErrorKind = "copy"
)

// DownloadResult is the per-task result collected by the orchestrator.
// A successful task carries the primary artifact Path; a failed or skipped
// one carries Kind and Err.
type DownloadResult struct {
	Title  string
	URL    string
	Path   string
	Status Status
	Kind   ErrorKind
	Err    error

	// Bytes is the number of bytes fetched over the network.
	Bytes int64

	// CopyErrors holds secondary-directory replication failures. They do
	// not affect the primary artifact.
	CopyErrors []error
}

// OK reports whether the task left a valid primary artifact or needed no work.
func (r DownloadResult) OK() bool {
	return r.Status != StatusFailed
}

// Summary aggregates one run: listing pages and the results of every task.
type Summary struct {
	Pages        int
	PagesFailed  int
	Downloaded   int
	Skipped      int
	Failed       int
	CopyFailures int
	Bytes        int64

	// Results keeps every task result in completion order.
	Results []DownloadResult
}

// Add counts one task result.
func (s *Summary) Add(r DownloadResult) {
	switch r.Status {
	case StatusDownloaded:
		s.Downloaded++
	case StatusSkipped:
		s.Skipped++
	case StatusFailed:
		s.Failed++
	}
	s.CopyFailures += len(r.CopyErrors)
	s.Bytes += r.Bytes
	s.Results = append(s.Results, r)
}

// HasFailures reports whether any listing page or download failed. Copy
// failures into secondary directories do not count.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.PagesFailed > 0
}

// CopyFailed returns the results whose primary artifact is valid but whose
// replication into a secondary directory failed.
func (s Summary) CopyFailed() []DownloadResult {
	var out []DownloadResult
	for _, r := range s.Results {
		if r.Kind == KindCopy {
			out = append(out, r)
		}
	}
	return out
}

// Failures returns the failed results in completion order.
func (s Summary) Failures() []DownloadResult {
	var out []DownloadResult
	for _, r := range s.Results {
		if r.Status == StatusFailed {
			out = append(out, r)
		}
	}
	return out
}
