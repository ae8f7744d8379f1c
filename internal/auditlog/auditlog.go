// Package auditlog mirrors guild activity into the bot log channel:
// message edits and deletions, membership and role changes, channel
// lifecycle, and voice transitions.
package auditlog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
)

const maxFieldLen = 900

// AuditLog posts activity embeds, bounded by a global rate limiter
// and a per-user voice cooldown.
type AuditLog struct {
	messenger chat.Messenger
	dir       chat.Directory
	cfg       config.AuditLogConfig
	channelID string
	brand     chat.Brand
	logger    *zap.Logger

	limiter   *RateLimiter
	voiceCool *cooldownMap
	ignored   map[string]bool
}

// New builds the audit log targeting the given channel.
func New(messenger chat.Messenger, dir chat.Directory, cfg config.AuditLogConfig, channelID string, brand chat.Brand, logger *zap.Logger) *AuditLog {
	ignored := make(map[string]bool, len(cfg.IgnoreChannelIDs))
	for _, id := range cfg.IgnoreChannelIDs {
		ignored[id] = true
	}
	return &AuditLog{
		messenger: messenger,
		dir:       dir,
		cfg:       cfg,
		channelID: channelID,
		brand:     brand,
		logger:    logger,
		limiter:   NewRateLimiter(cfg.MaxEventsPerWin, cfg.Window()),
		voiceCool: newCooldownMap(cfg.VoiceCooldown()),
		ignored:   ignored,
	}
}

// skip applies the ignore rules shared by every handler.
func (a *AuditLog) skip(author chat.User, fromWebhook bool, channelID string) bool {
	if a.channelID == "" {
		return true
	}
	if a.cfg.IgnoreBots && author.Bot {
		return true
	}
	if a.cfg.IgnoreWebhooks && fromWebhook {
		return true
	}
	if a.ignored[channelID] || channelID == a.channelID {
		return true
	}
	return false
}

func (a *AuditLog) post(ctx context.Context, emb *chat.Embed) {
	if !a.limiter.Allow() {
		a.logger.Debug("audit event dropped by rate limit", zap.String("title", emb.Title))
		return
	}
	emb.Timestamp = time.Now()
	if _, err := a.messenger.Send(ctx, a.channelID, chat.Outgoing{Embed: a.brand.Apply(emb)}); err != nil {
		a.logger.Warn("audit post failed", zap.String("title", emb.Title), zap.Error(err))
	}
}

// OnMessageDelete logs a single message deletion.
func (a *AuditLog) OnMessageDelete(ctx context.Context, msg chat.Message) {
	if a.skip(msg.Author, msg.FromWebhook, msg.ChannelID) {
		return
	}
	content := msg.Content
	if content == "" && len(msg.Attachments) > 0 {
		content = fmt.Sprintf("(%d attachment(s))", len(msg.Attachments))
	}
	if content == "" {
		content = "(uncached or empty message)"
	}
	a.post(ctx, &chat.Embed{
		Title:       "🗑️ Message deleted",
		Description: fmt.Sprintf("**Author:** %s\n**Channel:** <#%s>", userRef(msg.Author), msg.ChannelID),
		Fields:      []chat.EmbedField{{Name: "Content", Value: truncate(content)}},
		Color:       chat.ColorRed,
	})
}

// OnMessageBulkDelete logs a purge as a single entry.
func (a *AuditLog) OnMessageBulkDelete(ctx context.Context, channelID string, count int) {
	if a.ignored[channelID] || channelID == a.channelID || a.channelID == "" {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "🧹 Messages purged",
		Description: fmt.Sprintf("**%d** messages deleted in <#%s>.", count, channelID),
		Color:       chat.ColorRed,
	})
}

// OnMessageEdit logs a content change. No-op edits (embeds resolving,
// pins) are filtered by the caller passing identical content.
func (a *AuditLog) OnMessageEdit(ctx context.Context, before, after chat.Message) {
	if a.skip(after.Author, after.FromWebhook, after.ChannelID) {
		return
	}
	if before.Content == after.Content {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "✏️ Message edited",
		Description: fmt.Sprintf("**Author:** %s\n**Channel:** <#%s>", userRef(after.Author), after.ChannelID),
		Fields: []chat.EmbedField{
			{Name: "Before", Value: truncate(orEmptyMark(before.Content))},
			{Name: "After", Value: truncate(orEmptyMark(after.Content))},
		},
		Color: chat.ColorOrange,
	})
}

// OnMemberUpdate logs nickname and role changes.
func (a *AuditLog) OnMemberUpdate(ctx context.Context, before, after chat.Member) {
	if a.cfg.IgnoreBots && after.Bot {
		return
	}
	var fields []chat.EmbedField
	if before.DisplayName != after.DisplayName {
		fields = append(fields, chat.EmbedField{
			Name:  "Nickname",
			Value: fmt.Sprintf("`%s` → `%s`", orEmptyMark(before.DisplayName), orEmptyMark(after.DisplayName)),
		})
	}
	added, removed := diffRoles(before.RoleIDs, after.RoleIDs)
	if len(added) > 0 {
		fields = append(fields, chat.EmbedField{Name: "Roles added", Value: a.roleList(added)})
	}
	if len(removed) > 0 {
		fields = append(fields, chat.EmbedField{Name: "Roles removed", Value: a.roleList(removed)})
	}
	if len(fields) == 0 {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "👤 Member updated",
		Description: fmt.Sprintf("**User:** %s", userRef(after.User)),
		Fields:      fields,
		Color:       chat.ColorBlurple,
	})
}

// OnChannelCreate logs a new channel.
func (a *AuditLog) OnChannelCreate(ctx context.Context, channelID, name string) {
	if a.ignored[channelID] || a.channelID == "" {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "📁 Channel created",
		Description: fmt.Sprintf("**Name:** `%s`\n**Channel:** <#%s>", name, channelID),
		Color:       chat.ColorGreen,
	})
}

// OnChannelDelete logs a channel removal.
func (a *AuditLog) OnChannelDelete(ctx context.Context, channelID, name string) {
	if a.ignored[channelID] || a.channelID == "" {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "📁 Channel deleted",
		Description: fmt.Sprintf("**Name:** `%s`", name),
		Color:       chat.ColorRed,
	})
}

// OnChannelUpdate logs a channel rename.
func (a *AuditLog) OnChannelUpdate(ctx context.Context, channelID, beforeName, afterName string) {
	if a.ignored[channelID] || a.channelID == "" || beforeName == afterName {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "📁 Channel renamed",
		Description: fmt.Sprintf("`%s` → `%s` (<#%s>)", beforeName, afterName, channelID),
		Color:       chat.ColorOrange,
	})
}

// OnVoiceUpdate logs join/leave/move and mute/deaf/stream/video
// flips, with a per-user cooldown against rapid toggling.
func (a *AuditLog) OnVoiceUpdate(ctx context.Context, user chat.User, before, after chat.VoiceState) {
	if a.cfg.IgnoreBots && user.Bot {
		return
	}
	if !a.voiceCool.Ready(user.ID) {
		return
	}
	desc := describeVoiceChange(before, after)
	if desc == "" {
		return
	}
	a.post(ctx, &chat.Embed{
		Title:       "🔊 Voice activity",
		Description: fmt.Sprintf("**User:** %s\n%s", userRef(user), desc),
		Color:       chat.ColorBlurple,
	})
}

func describeVoiceChange(before, after chat.VoiceState) string {
	switch {
	case before.ChannelID == "" && after.ChannelID != "":
		return fmt.Sprintf("Joined <#%s>.", after.ChannelID)
	case before.ChannelID != "" && after.ChannelID == "":
		return fmt.Sprintf("Left <#%s>.", before.ChannelID)
	case before.ChannelID != after.ChannelID:
		return fmt.Sprintf("Moved <#%s> → <#%s>.", before.ChannelID, after.ChannelID)
	}
	var changes []string
	flag := func(name string, was, is bool) {
		if was != is {
			state := "off"
			if is {
				state = "on"
			}
			changes = append(changes, fmt.Sprintf("%s %s", name, state))
		}
	}
	flag("self-mute", before.SelfMute, after.SelfMute)
	flag("server-mute", before.Mute, after.Mute)
	flag("self-deaf", before.SelfDeaf, after.SelfDeaf)
	flag("server-deaf", before.Deaf, after.Deaf)
	flag("stream", before.Stream, after.Stream)
	flag("camera", before.Video, after.Video)
	if len(changes) == 0 {
		return ""
	}
	return fmt.Sprintf("In <#%s>: %s.", after.ChannelID, strings.Join(changes, ", "))
}

func (a *AuditLog) roleList(ids []string) string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		if role, ok := a.dir.Role(id); ok {
			names = append(names, "`"+role.Name+"`")
		} else {
			names = append(names, "`"+id+"`")
		}
	}
	return strings.Join(names, ", ")
}

func diffRoles(before, after []string) (added, removed []string) {
	had := make(map[string]bool, len(before))
	for _, id := range before {
		had[id] = true
	}
	has := make(map[string]bool, len(after))
	for _, id := range after {
		has[id] = true
		if !had[id] {
			added = append(added, id)
		}
	}
	for _, id := range before {
		if !has[id] {
			removed = append(removed, id)
		}
	}
	return added, removed
}

func userRef(u chat.User) string {
	return fmt.Sprintf("<@%s> (`%s`)", u.ID, u.Username)
}

func orEmptyMark(s string) string {
	if strings.TrimSpace(s) == "" {
		return "(empty)"
	}
	return s
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxFieldLen {
		return s
	}
	return string(runes[:maxFieldLen]) + "…"
}
