package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/MrSnakeDoc/boardwatch/internal/domain"
	"github.com/MrSnakeDoc/boardwatch/internal/logger"
)

// InteractionHandler answers a verified Discord interaction.
type InteractionHandler interface {
	Handle(ctx context.Context, i *discordgo.Interaction) (*discordgo.InteractionResponse, error)
}

// Verifier authenticates inbound interaction requests.
type Verifier interface {
	Verify(r *http.Request) error
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueDepth reports pending deferred jobs. Optional.
type QueueDepth func(ctx context.Context) (int64, error)

type Deps struct {
	Logger    logger.Logger
	StartTime time.Time
	Version   string
	Commit    string
	BuildDate string
	GoVersion string
	TimeNow   func() time.Time // for testing, defaults to time.Now

	AllowedHosts  []string // Host headers accepted on ops endpoints
	AllowedCIDRS  []string // IPs allowed on ops endpoints
	TrustProxy    bool     // true if running behind a trusted reverse proxy (e.g., cloudflared)
	OpsRateBurst  int
	OpsRatePerMin int

	Verifier     Verifier
	Interactions InteractionHandler
	StoreName    string // "redis" | "memory"
	Store        Pinger
	Watermarks   domain.WatermarkStore
	Channels     domain.ChannelDirectory
	QueueDepth   QueueDepth
	Metrics      http.Handler  // nil disables /metrics
	PollTrigger  chan struct{} // manual poll cycle trigger
}

// Now returns d.TimeNow() or time.Now().
func (d Deps) Now() time.Time {
	if d.TimeNow != nil {
		return d.TimeNow()
	}
	return time.Now()
}
