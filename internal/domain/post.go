package domain

import (
	"strings"
	"time"
)

// CandidatePost is the freshest post found on a board listing.
// It is transient and never persisted.
type CandidatePost struct {
	Category Category
	Title    string
	URL      string // absolute, canonical
}

// Watermark records the last post notified for a category.
//
// It is written only after a notification for that post was dispatched,
// so a crash in between yields a duplicate notification, never a lost one.
type Watermark struct {
	Category Category  `json:"category"`
	URL      string    `json:"url"`
	SeenAt   time.Time `json:"seen_at"`
}

// ExtractedContent is the cleaned body text of a single post.
type ExtractedContent struct {
	URL       string
	Text      string
	Strategy  string // name of the extraction strategy that produced Text
	FetchedAt time.Time
}

// Summary is an ordered list of paragraph blocks.
type Summary []string

// String joins the blocks with blank lines.
func (s Summary) String() string {
	return strings.Join(s, "\n\n")
}

// Bullets is an ordered list of single-line bullet points.
type Bullets []string

// String joins the bullets with blank lines.
func (b Bullets) String() string {
	return strings.Join(b, "\n\n")
}

// ChannelBinding maps a guild to the channel receiving notifications.
type ChannelBinding struct {
	GuildID   string    `json:"guild_id"`
	ChannelID string    `json:"channel_id"`
	UpdatedAt time.Time `json:"updated_at"`
}
