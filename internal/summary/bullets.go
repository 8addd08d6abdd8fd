package summary

import (
	"strings"
	"unicode"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

const (
	// BulletPrefix starts every bullet.
	BulletPrefix = "• "
	// MaxBullets caps the number of bullets.
	MaxBullets = 15
	// BulletCeiling bounds the rendered bullets, prefixes and separators included.
	BulletCeiling = 1800

	// bulletOverhead is charged per bullet for the prefix and separator.
	bulletOverhead = 5
	// minRemaining is the space needed to keep a truncated last bullet.
	minRemaining = 50
)

// regionCodes start lines that always open a new bullet, as in
// "EU (UTC+1)" schedules.
var regionCodes = map[string]struct{}{
	"ASIA": {}, "INMENA": {}, "EU": {}, "SA": {}, "NA": {},
}

// ToBullets reflows text into merged logical paragraphs rendered as
// single-line bullets. Short text goes through the same merge, so a
// fragmented one-liner still comes out as one bullet.
func ToBullets(text string) domain.Bullets {
	var (
		bullets domain.Bullets
		total   int
	)
	paragraphs := mergeLines(splitLines(text))
	if len(paragraphs) > MaxBullets {
		paragraphs = paragraphs[:MaxBullets]
	}
	for _, para := range paragraphs {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		added := runeLen(para) + bulletOverhead
		if total+added > BulletCeiling {
			remaining := BulletCeiling - total - bulletOverhead
			if remaining > minRemaining {
				bullets = append(bullets, BulletPrefix+truncate(para, remaining-len(Ellipsis))+Ellipsis)
			}
			break
		}
		bullets = append(bullets, BulletPrefix+para)
		total += added
	}
	return bullets
}

// splitLines prefers blank-line blocks and falls back to single lines
// when the source did not keep paragraph breaks.
func splitLines(text string) []string {
	lines := nonBlank(strings.Split(text, "\n\n"))
	if len(lines) < 3 {
		lines = nonBlank(strings.Split(text, "\n"))
	}
	return lines
}

func nonBlank(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func mergeLines(lines []string) []string {
	var (
		paragraphs []string
		current    string
	)
	for _, line := range lines {
		if current == "" {
			current = line
			continue
		}
		if shouldMerge(current, line) {
			current += " " + line
			continue
		}
		paragraphs = append(paragraphs, current)
		current = line
	}
	if current != "" {
		paragraphs = append(paragraphs, current)
	}
	return paragraphs
}

// shouldMerge decides whether next continues the paragraph prev.
func shouldMerge(prev, next string) bool {
	switch {
	case endsWithAny(prev, "~", "-", ":", ","):
		return true
	case startsLower(next):
		return true
	case !endsWithAny(prev, ".", "!", "?"):
		lower := strings.ToLower(prev)
		if strings.HasSuffix(lower, " am") || strings.HasSuffix(lower, " pm") {
			return false
		}
		return !isRegionLine(next)
	default:
		return false
	}
}

func endsWithAny(s string, suffixes ...string) bool {
	for _, suf := range suffixes {
		if strings.HasSuffix(s, suf) {
			return true
		}
	}
	return false
}

func startsLower(s string) bool {
	for _, r := range s {
		return unicode.IsLower(r)
	}
	return false
}

func isRegionLine(line string) bool {
	head, _, _ := strings.Cut(line, "(")
	_, ok := regionCodes[strings.TrimSpace(head)]
	return ok
}
