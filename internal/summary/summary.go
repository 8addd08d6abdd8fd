// Package summary reduces cleaned post text to bounded, readable blocks.
package summary

import (
	"strings"
	"unicode/utf8"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

const (
	// Ceiling bounds the summary length in runes, ellipsis excluded.
	Ceiling = 1800
	// Ellipsis marks a truncated block.
	Ellipsis = "..."

	paragraphSep = "\n\n"
)

// Summarize keeps whole paragraphs of text while they fit in Ceiling.
// A first paragraph that alone exceeds the ceiling is truncated instead.
// The result is deterministic and never longer than Ceiling+len(Ellipsis).
func Summarize(text string) domain.Summary {
	var (
		parts domain.Summary
		total int
	)
	for _, para := range strings.Split(text, paragraphSep) {
		n := runeLen(para)
		if n > Ceiling {
			if total == 0 {
				parts = append(parts, truncate(para, Ceiling)+Ellipsis)
			}
			break
		}
		if total+n > Ceiling {
			break
		}
		parts = append(parts, para)
		total += n + runeLen(paragraphSep)
	}

	if len(parts) > 0 {
		return parts
	}
	if runeLen(text) > Ceiling {
		return domain.Summary{truncate(text, Ceiling) + Ellipsis}
	}
	return domain.Summary{text}
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }

// truncate returns the first n runes of s.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
