// internal/app/system/sanitize/sanitize.go

// Package sanitize scrubs caller-supplied text before it is stored. Profile
// fields are plain text; anything that survives a strict HTML policy is
// unescaped back so "R&D" round-trips as "R&D", not "R&amp;D".
package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// Text strips all markup from s and trims surrounding whitespace.
func Text(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}

// TextSlice applies Text to every element, dropping entries that become
// empty.
func TextSlice(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, 0, len(in))
	for _, s := range in {
		if t := Text(s); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
