package domain

// RequestKind classifies an inbound interaction.
type RequestKind int

const (
	RequestUnknown RequestKind = iota
	RequestHandshake
	RequestSlashCommand
	RequestComponentAction
)

func (k RequestKind) String() string {
	switch k {
	case RequestHandshake:
		return "handshake"
	case RequestSlashCommand:
		return "slash_command"
	case RequestComponentAction:
		return "component_action"
	default:
		return "unknown"
	}
}

// InteractionRequest is the classified form of one inbound event.
// Only the fields relevant to Kind are set.
type InteractionRequest struct {
	Kind RequestKind

	// Slash command
	Command   string
	Options   map[string]string
	GuildID   string
	ChannelID string

	// Component action, custom id "<action>_<language>_<key>"
	CustomID   string
	Action     string
	Language   string
	MessageKey string

	Correlation Correlation
}
