package notify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
)

const (
	// MaxMessageLength is Discord's content limit, in characters.
	MaxMessageLength = 2000

	// FailureNotice replaces a deferred response when a job fails.
	FailureNotice = "❌ Error processing request."

	// ActionTranslate is the action part of translate button ids.
	ActionTranslate = "translate"

	// MaxTitleLength bounds the post title inside a rendered message.
	MaxTitleLength = 256

	ellipsis     = "..."
	customIDSep  = "_"
	messageKeyLn = 32
)

// MessageKey derives the content-addressed cache key of a post:
// the first 32 hex characters of the SHA-256 of its canonical URL.
func MessageKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return hex.EncodeToString(sum[:])[:messageKeyLn]
}

// Post is what a notification or a check command renders.
type Post struct {
	Category domain.Category
	Title    string
	URL      string
	Body     string // bullets, or extract.FailureText
	New      bool   // rendered by the poll cycle rather than a command
}

// RenderPost formats a post. The title is capped at MaxTitleLength and the
// body truncated so the whole message fits MaxMessageLength.
func RenderPost(p Post) string {
	heading := p.Category.Title()
	if p.New {
		heading = "New " + heading + " Detected"
	}
	head := fmt.Sprintf("🐉 **%s**\n**%s**\n\n**Summary:**\n", heading, fit(p.Title, MaxTitleLength))
	tail := "\n\n🔗 " + p.URL
	return bounded(head, p.Body, tail)
}

// RenderNotFound is the check command answer for an empty board.
func RenderNotFound(c domain.Category) string {
	return fmt.Sprintf("❌ No %s found.", c)
}

// RenderTranslation formats a translated body, keeping room for the link.
func RenderTranslation(lang domain.Language, text, link string) string {
	header := fmt.Sprintf("**Translation %s:**\n", lang.Label)
	suffix := ""
	if link != "" {
		suffix = "\n\n🔗 " + link
	}
	return bounded(header, text, suffix)
}

// bounded joins head, body and tail, truncating the body first. A head and
// tail that alone exceed the limit cut the whole message.
func bounded(head, body, tail string) string {
	room := MaxMessageLength - runeLen(head) - runeLen(tail)
	if room < 0 {
		return fit(head+tail, MaxMessageLength)
	}
	return head + fit(body, room) + tail
}

// TranslateCustomID builds the id of a translate button.
func TranslateCustomID(lang, key string) string {
	return ActionTranslate + customIDSep + lang + customIDSep + key
}

// ParseCustomID splits "<action>_<language>_<key>". The key may itself
// contain the delimiter.
func ParseCustomID(id string) (action, lang, key string, ok bool) {
	parts := strings.SplitN(id, customIDSep, 3)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// TranslateAffordances returns one row of translate buttons for key.
func TranslateAffordances(key string) []discordgo.MessageComponent {
	buttons := make([]discordgo.MessageComponent, 0, len(domain.Languages))
	for _, l := range domain.Languages {
		buttons = append(buttons, discordgo.Button{
			Label:    l.Label,
			Style:    discordgo.PrimaryButton,
			CustomID: TranslateCustomID(l.Code, key),
		})
	}
	return []discordgo.MessageComponent{discordgo.ActionsRow{Components: buttons}}
}

// fit truncates s to limit runes, ellipsis included.
func fit(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	if limit <= len(ellipsis) {
		return string([]rune(s)[:max(limit, 0)])
	}
	return string([]rune(s)[:limit-len(ellipsis)]) + ellipsis
}

func runeLen(s string) int { return utf8.RuneCountInString(s) }
