package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const presenceInterval = 10 * time.Minute

var presenceLines = []string{
	"your tickets 🎟️",
	"orders and quotes 💼",
	"the support queue 🪄",
}

// RotatePresence cycles the bot's activity text until the context is
// cancelled.
func RotatePresence(ctx context.Context, s *discordgo.Session, logger *zap.Logger) {
	ticker := time.NewTicker(presenceInterval)
	defer ticker.Stop()

	idx := 0
	set := func() {
		if err := s.UpdateWatchStatus(0, presenceLines[idx%len(presenceLines)]); err != nil {
			logger.Debug("presence update failed", zap.Error(err))
		}
		idx++
	}
	set()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			set()
		}
	}
}
