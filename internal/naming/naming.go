// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package naming maps paper titles to artifact file names.
package naming

import (
	"crypto/sha256"
	"fmt"
	"log/slog"
	"strings"
	"unicode"
)

// forbidden lists the literal characters replaced in addition to whitespace
// and control characters.
const forbidden = `\/:*?"<>|,.`

// Sanitize replaces every filesystem-unsafe character in title with "_".
// The mapping is deterministic but not injective; see Assign.
func Sanitize(title string) string {
	return strings.Map(func(r rune) rune {
		if IsForbidden(r) {
			return '_'
		}
		return r
	}, title)
}

// IsForbidden reports whether r would be replaced by Sanitize.
func IsForbidden(r rune) bool {
	return unicode.IsSpace(r) || unicode.IsControl(r) || strings.ContainsRune(forbidden, r)
}

// Assign returns the artifact stem for each title, in order. Distinct titles
// that sanitize to the same stem are reported with a warning; the first keeps
// the plain stem and later ones get a short hash of their original title
// appended. Repeats of the same title share one stem.
func Assign(titles []string) []string {
	stems := make([]string, len(titles))
	owner := make(map[string]string, len(titles))
	for i, title := range titles {
		stem := Sanitize(title)
		prev, taken := owner[stem]
		switch {
		case !taken:
			owner[stem] = title
		case prev != title:
			disambiguated := stem + "_" + shortHash(title)
			slog.Warn("sanitized title collision",
				"title", title,
				"collides_with", prev,
				"file_stem", disambiguated,
			)
			stem = disambiguated
			owner[stem] = title
		}
		stems[i] = stem
	}
	return stems
}

func shortHash(s string) string {
	h := sha256.Sum256([]byte(s))
	return fmt.Sprintf("%x", h[:4])
}
