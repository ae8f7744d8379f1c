// Package greeter handles member arrival and departure: auto role,
// public welcome, entry/exit log embeds, and a welcome DM.
package greeter

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
)

// Greeter reacts to membership changes. Every step is best effort;
// one failing side channel never blocks the others.
type Greeter struct {
	gw     chat.Gateway
	cfg    config.DiscordConfig
	brand  chat.Brand
	logger *zap.Logger

	// now is swapped in tests.
	now func() time.Time
}

// NewGreeter wires the greeter.
func NewGreeter(gw chat.Gateway, cfg config.DiscordConfig, brand chat.Brand, logger *zap.Logger) *Greeter {
	return &Greeter{gw: gw, cfg: cfg, brand: brand, logger: logger, now: time.Now}
}

// OnMemberJoin runs the full arrival sequence for a new member.
func (g *Greeter) OnMemberJoin(ctx context.Context, m chat.Member) {
	if g.cfg.AutoRoleID != "" {
		if err := g.gw.AddRole(ctx, m.ID, g.cfg.AutoRoleID, "auto role on join"); err != nil {
			g.logger.Warn("auto role failed", zap.String("user", m.ID), zap.Error(err))
		}
	}
	g.postWelcome(ctx, m)
	g.postJoinLog(ctx, m)
	g.sendWelcomeDM(ctx, m)
}

// OnMemberLeave posts the farewell embed in the exit channel.
func (g *Greeter) OnMemberLeave(ctx context.Context, m chat.Member) {
	if g.cfg.ExitChannelID == "" {
		return
	}
	emb := &chat.Embed{
		Title: "👋 Member left",
		Description: fmt.Sprintf("**%s** left the server.\nWe are now **%d** members.",
			displayName(m), g.gw.MemberCount()),
		Color:        chat.ColorRed,
		ThumbnailURL: m.AvatarURL,
	}
	if _, err := g.gw.Send(ctx, g.cfg.ExitChannelID, chat.Outgoing{Embed: g.brand.Apply(emb)}); err != nil {
		g.logger.Warn("exit log failed", zap.String("user", m.ID), zap.Error(err))
	}
}

func (g *Greeter) postWelcome(ctx context.Context, m chat.Member) {
	if g.cfg.EntryChannelID == "" {
		return
	}
	emb := &chat.Embed{
		Title: "🎉 Welcome!",
		Description: fmt.Sprintf("<@%s> just arrived! You are our member **#%d**.\nOpen a ticket whenever you need us. 💫",
			m.ID, g.gw.MemberCount()),
		Color:        chat.ColorGreen,
		ThumbnailURL: m.AvatarURL,
	}
	if _, err := g.gw.Send(ctx, g.cfg.EntryChannelID, chat.Outgoing{
		Content: "<@" + m.ID + ">",
		Embed:   g.brand.Apply(emb),
	}); err != nil {
		g.logger.Warn("welcome post failed", zap.String("user", m.ID), zap.Error(err))
	}
}

func (g *Greeter) postJoinLog(ctx context.Context, m chat.Member) {
	if g.cfg.BotLogChannelID == "" {
		return
	}
	emb := &chat.Embed{
		Title: "📥 Member joined",
		Description: fmt.Sprintf("**User:** <@%s> (`%s`)\n**Account age:** %s\n**Created:** <t:%d:f>",
			m.ID, m.Username, HumanDelta(g.now().Sub(m.CreatedAt)), m.CreatedAt.Unix()),
		Color:        chat.ColorBlurple,
		ThumbnailURL: m.AvatarURL,
	}
	if AccountAgeSuspicious(g.now(), m.CreatedAt) {
		emb.Fields = append(emb.Fields, chat.EmbedField{
			Name:  "⚠️ Young account",
			Value: "This account is less than 7 days old.",
		})
	}
	if _, err := g.gw.Send(ctx, g.cfg.BotLogChannelID, chat.Outgoing{Embed: g.brand.Apply(emb)}); err != nil {
		g.logger.Warn("join log failed", zap.String("user", m.ID), zap.Error(err))
	}
}

func (g *Greeter) sendWelcomeDM(ctx context.Context, m chat.Member) {
	lines := "Welcome to the server! 🎊\n\nTake a look at the rules and open a ticket if you need anything."
	if g.cfg.TermsChannelID != "" {
		lines += fmt.Sprintf("\n📜 Rules: <#%s>", g.cfg.TermsChannelID)
	}
	if g.cfg.PanelChannelID != "" {
		lines += fmt.Sprintf("\n🎟️ Tickets: <#%s>", g.cfg.PanelChannelID)
	}
	emb := &chat.Embed{Title: "👋 Hello!", Description: lines, Color: chat.ColorPurple}
	if err := g.gw.SendDM(ctx, m.ID, chat.Outgoing{Embed: g.brand.Apply(emb)}); err != nil {
		g.logger.Debug("welcome DM failed", zap.String("user", m.ID), zap.Error(err))
	}
}

// AccountAgeSuspicious reports whether the account is younger than a
// week at join time.
func AccountAgeSuspicious(now, createdAt time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	return now.Sub(createdAt) < 7*24*time.Hour
}

// HumanDelta renders a duration as the largest two whole units, e.g.
// "2 years, 3 months" or "5 days, 4 hours".
func HumanDelta(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	type unit struct {
		name string
		dur  time.Duration
	}
	units := []unit{
		{"year", 365 * 24 * time.Hour},
		{"month", 30 * 24 * time.Hour},
		{"day", 24 * time.Hour},
		{"hour", time.Hour},
		{"minute", time.Minute},
	}
	var parts []string
	for _, u := range units {
		if len(parts) == 2 {
			break
		}
		n := int(d / u.dur)
		if n == 0 {
			continue
		}
		d -= time.Duration(n) * u.dur
		label := u.name
		if n != 1 {
			label += "s"
		}
		parts = append(parts, fmt.Sprintf("%d %s", n, label))
	}
	if len(parts) == 0 {
		return "moments"
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts[0] + ", " + parts[1]
}

func displayName(m chat.Member) string {
	if m.DisplayName != "" {
		return m.DisplayName
	}
	return m.Username
}
