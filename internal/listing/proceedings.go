// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-scraper/internal/naming"
	"github.com/pdiddy/paper-scraper/pkg/types"
)

// DefaultDetailMarker identifies title links pointing at a paper's detail page.
const DefaultDetailMarker = "/html/"

// Proceedings parses a CVF-style proceedings page: a flat <dl> under
// #content whose <dt> entries hold titles and whose following <dd> entries
// hold authors, the PDF link, and a BibTeX block.
type Proceedings struct {
	// Base resolves relative PDF links. When nil the document URL is used.
	Base *url.URL

	// DetailMarker overrides DefaultDetailMarker.
	DetailMarker string
}

func (Proceedings) Name() string { return "proceedings" }

// Parse returns one record per title entry. A title entry whose detail
// blocks are missing or carry no PDF anchor still yields a record, with an
// empty Link.
func (p Proceedings) Parse(doc *goquery.Document) ([]types.PaperRecord, error) {
	dl := doc.Find("#content > dl").First()
	if dl.Length() == 0 {
		return nil, ErrNoListing
	}

	base := p.Base
	if base == nil {
		base = doc.Url
	}
	marker := p.DetailMarker
	if marker == "" {
		marker = DefaultDetailMarker
	}

	entries := dl.ChildrenFiltered("dt, dd")
	nodes := entries.Nodes

	var records []types.PaperRecord
	for i, n := range nodes {
		if n.Data != "dt" {
			continue
		}
		a := entries.Eq(i).Find("a").First()
		if a.Length() == 0 {
			continue
		}
		title := strings.TrimSpace(a.Text())
		href := a.AttrOr("href", "")
		if !strings.Contains(href, marker) || strings.EqualFold(title, "pdf") {
			continue
		}
		if stem := naming.Sanitize(title); stem == "" || strings.EqualFold(stem, "pdf") {
			continue
		}

		rec := types.PaperRecord{Title: title}
		for j := i + 1; j < len(nodes) && nodes[j].Data == "dd"; j++ {
			dd := entries.Eq(j)
			if rec.Link == "" {
				rec.Link = pdfAnchor(dd, base)
			}
			if rec.BibTeX == "" {
				rec.BibTeX = bibtex(dd)
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// pdfAnchor returns the first anchor in dd labeled "pdf" in any case.
func pdfAnchor(dd *goquery.Selection, base *url.URL) string {
	var link string
	dd.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href != "" && strings.EqualFold(strings.TrimSpace(a.Text()), "pdf") {
			link = Resolve(base, href)
			return false
		}
		return true
	})
	return link
}

// bibtex returns the text of the first nested div in dd when it looks like
// a citation entry.
func bibtex(dd *goquery.Selection) string {
	inner := dd.Find("div div").First()
	if inner.Length() == 0 {
		return ""
	}
	text := nodeText(inner, "\n")
	if !strings.Contains(text, "@") {
		return ""
	}
	return text
}
