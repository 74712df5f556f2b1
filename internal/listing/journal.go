// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package listing

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

// Journal parses an OJS-style journal issue page, where each paper is an
// ".obj_article_summary" block with a title, authors, pages, and an
// optional PDF galley link.
type Journal struct{}

func (Journal) Name() string { return "journal" }

// Parse returns one record per article summary that has a title. The galley
// href is kept as found; the dispatcher resolves it against the site base.
func (Journal) Parse(doc *goquery.Document) ([]types.PaperRecord, error) {
	var records []types.PaperRecord
	doc.Find(".obj_article_summary").Each(func(_ int, art *goquery.Selection) {
		title := strings.TrimSpace(art.Find("h3.title a").First().Text())
		if title == "" {
			return
		}
		records = append(records, types.PaperRecord{
			Title:   title,
			Link:    strings.TrimSpace(art.Find("a.obj_galley_link.pdf").First().AttrOr("href", "")),
			Authors: strings.TrimSpace(art.Find(".authors").First().Text()),
			Pages:   strings.TrimSpace(art.Find(".pages").First().Text()),
		})
	})
	return records, nil
}
