// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package listing turns publisher listing pages into paper records.
// Each site's markup lives behind its own Parser so a broken selector on one
// site cannot affect the other.
package listing

import (
	"errors"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

var (
	// ErrNoListing is returned when the page lacks the expected listing container.
	ErrNoListing = errors.New("listing container not found")

	// ErrNoPDFLink is returned when a landing page has no "PDF" anchor.
	ErrNoPDFLink = errors.New("no PDF link found")
)

// Parser maps one site's listing markup into paper records.
type Parser interface {
	Name() string
	Parse(doc *goquery.Document) ([]types.PaperRecord, error)
}

// FindPDFLink returns the href of the first anchor on a landing page whose
// visible text is exactly "PDF", resolved against base when possible.
func FindPDFLink(doc *goquery.Document, base *url.URL) (string, error) {
	var href string
	doc.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if strings.TrimSpace(a.Text()) != "PDF" {
			return true
		}
		if h := strings.TrimSpace(a.AttrOr("href", "")); h != "" {
			href = h
			return false
		}
		return true
	})
	if href == "" {
		return "", ErrNoPDFLink
	}
	return Resolve(base, href), nil
}

// Resolve makes href absolute against base. Unparseable hrefs and a nil base
// return href unchanged.
func Resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if base == nil || href == "" {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

// nodeText joins the trimmed, non-empty text nodes under sel with sep.
func nodeText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
