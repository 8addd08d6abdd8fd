package rules

import (
	"fmt"
	"strings"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

// Rules holds the forum-specific knobs that change with forum copy and markup.
type Rules struct {
	Boards             map[domain.Category]string
	SocialMarkers      []string
	BoilerplatePhrases []string
	ContentSelectors   []string
}

// Default returns the rules for forum.mir4global.com.
func Default() *Rules {
	return &Rules{
		Boards: map[domain.Category]string{
			domain.CategoryPatchNote: "https://forum.mir4global.com/board/patchnote",
			domain.CategoryNotice:    "https://forum.mir4global.com/board/notice",
			domain.CategoryEvent:     "https://forum.mir4global.com/board/newevent?category_id=1",
		},
		SocialMarkers: []string{"facebook", "instagram", "youtube"},
		BoilerplatePhrases: []string{
			"from my battle to our war",
			"greetings, this is mir4",
			"thank you",
			"please refer to the details below",
			"we look forward to",
			"go to",
		},
		ContentSelectors: []string{
			"div.article_content",
			"div.article-content",
			"div.board_content",
			"div.post_content",
			"article.article",
		},
	}
}

// Merge overlays the non-empty parts of f on top of r.
func (r *Rules) Merge(f File) error {
	for raw, url := range f.Boards {
		c, err := domain.ParseCategory(raw)
		if err != nil {
			return fmt.Errorf("boards: %w", err)
		}
		if strings.TrimSpace(url) == "" {
			return fmt.Errorf("boards: empty url for %q", c)
		}
		r.Boards[c] = strings.TrimSpace(url)
	}
	if len(f.SocialMarkers) > 0 {
		r.SocialMarkers = lowered(f.SocialMarkers)
	}
	if len(f.BoilerplatePhrases) > 0 {
		r.BoilerplatePhrases = lowered(f.BoilerplatePhrases)
	}
	if len(f.ContentSelectors) > 0 {
		r.ContentSelectors = trimmed(f.ContentSelectors)
	}
	return nil
}

// ContainsAny reports whether lower-cased text contains any of the phrases.
// Phrases are expected lower-case already.
func ContainsAny(text string, phrases []string) bool {
	lower := strings.ToLower(text)
	for _, p := range phrases {
		if p != "" && strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range trimmed(in) {
		out = append(out, strings.ToLower(s))
	}
	return out
}

func trimmed(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
