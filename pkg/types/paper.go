// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "strings"

// AllKeyword is the destination used when no keywords are configured.
const AllKeyword = "all"

// PaperRecord is one paper discovered on a listing page. Records are built
// by a listing parser, annotated by the keyword filter, and consumed once by
// the download dispatcher.
type PaperRecord struct {
	// Title is the paper title as shown on the listing page.
	Title string `json:"title" yaml:"title"`

	// Link is the PDF or landing page link, possibly relative to the site base.
	// Empty when the listing carried no link for this paper.
	Link string `json:"link,omitempty" yaml:"link,omitempty"`

	// Keywords lists the configured keywords matched by the title, in
	// configuration order, or ["all"] when no keywords are configured.
	Keywords []string `json:"keywords,omitempty" yaml:"keywords,omitempty"`

	// Authors and Pages are descriptive only.
	Authors string `json:"authors,omitempty" yaml:"authors,omitempty"`
	Pages   string `json:"pages,omitempty" yaml:"pages,omitempty"`

	// BibTeX is the citation block found next to the entry (proceedings only).
	BibTeX string `json:"bibtex,omitempty" yaml:"bibtex,omitempty"`
}

// HasLink reports whether the record carries a resource link.
func (r PaperRecord) HasLink() bool {
	return strings.TrimSpace(r.Link) != ""
}

// DownloadTask is one unit of work for the worker pool.
type DownloadTask struct {
	Record PaperRecord

	// URL is the absolute resource or landing page URL; empty when the
	// record has nothing to download.
	URL string

	// FileName is the artifact stem (sanitized title, disambiguated on collision).
	FileName string

	// Destinations lists target directories; the first is the primary.
	Destinations []string
}
