// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter restricts paper records to titles matching configured keywords.
package filter

import (
	"strings"

	"github.com/pdiddy/paper-scraper/pkg/types"
)

// Normalize lowercases and trims keywords, dropping empties and repeats while
// keeping the configured order.
func Normalize(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if _, dup := seen[kw]; dup {
			continue
		}
		seen[kw] = struct{}{}
		out = append(out, kw)
	}
	return out
}

// Apply returns the records whose lowercased title contains at least one
// keyword, each annotated with every keyword it matched. With no keywords
// every record passes, annotated with types.AllKeyword. keywords must
// already be normalized. The input slice is not modified.
func Apply(records []types.PaperRecord, keywords []string) []types.PaperRecord {
	out := make([]types.PaperRecord, 0, len(records))
	for _, rec := range records {
		if len(keywords) == 0 {
			rec.Keywords = []string{types.AllKeyword}
			out = append(out, rec)
			continue
		}
		title := strings.ToLower(rec.Title)
		var matched []string
		for _, kw := range keywords {
			if strings.Contains(title, kw) {
				matched = append(matched, kw)
			}
		}
		if len(matched) == 0 {
			continue
		}
		rec.Keywords = matched
		out = append(out, rec)
	}
	return out
}
