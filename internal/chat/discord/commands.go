package discord

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

// Registrar bulk-overwrites the guild's slash commands.
type Registrar struct {
	s       *discordgo.Session
	guildID string
	logger  *zap.Logger
}

// NewRegistrar builds a registrar for the guild.
func NewRegistrar(s *discordgo.Session, guildID string, logger *zap.Logger) *Registrar {
	return &Registrar{s: s, guildID: guildID, logger: logger}
}

// Register overwrites the guild command set, retrying with a bounded
// backoff when the API throttles the overwrite.
func (r *Registrar) Register(ctx context.Context) error {
	var err error
	backoff := 2 * time.Second
	for attempt := 1; attempt <= 4; attempt++ {
		_, err = r.s.ApplicationCommandBulkOverwrite(r.s.State.User.ID, r.guildID, commandSet(), discordgo.WithContext(ctx))
		if err == nil {
			r.logger.Info("slash commands registered", zap.Int("count", len(commandSet())))
			return nil
		}
		r.logger.Warn("command registration failed",
			zap.Int("attempt", attempt), zap.Duration("backoff", backoff), zap.Error(err))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("register commands: %w", err)
}

func commandSet() []*discordgo.ApplicationCommand {
	return []*discordgo.ApplicationCommand{
		{
			Name:        "add",
			Description: "Add a member to this ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to add", Required: true},
			},
		},
		{
			Name:        "remove",
			Description: "Remove a member from this ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Member to remove", Required: true},
			},
		},
		{Name: "notify", Description: "DM the ticket author a status update"},
		{
			Name:        "close",
			Description: "Queue this ticket for archival and deletion",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "reason", Description: "Close reason", Required: false},
			},
		},
		{Name: "transcript", Description: "Generate a transcript of this channel without closing it"},
		{
			Name:        "payment",
			Description: "Post the payment instructions in this ticket",
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: "amount", Description: "Amount to charge", Required: false},
			},
		},
		{Name: "paid", Description: "Mark the latest payment card as paid"},
		{Name: "prices", Description: "Post the price list"},
		{Name: "order", Description: "Post the how-to-order walkthrough"},
		{Name: "syncadmin", Description: "Resync the bot's slash commands"},
	}
}
