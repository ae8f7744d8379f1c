package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/auditlog"
	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/greeter"
)

const eventTimeout = 30 * time.Second

// Events bridges gateway dispatch into the greeter and the audit
// log. Handlers run on discordgo's event goroutines; each gets its
// own bounded context.
type Events struct {
	gw      *Gateway
	guildID string
	greeter *greeter.Greeter
	audit   *auditlog.AuditLog
	logger  *zap.Logger
}

// WireEvents registers the gateway event handlers on the session.
func WireEvents(gw *Gateway, guildID string, gr *greeter.Greeter, audit *auditlog.AuditLog, logger *zap.Logger) *Events {
	e := &Events{gw: gw, guildID: guildID, greeter: gr, audit: audit, logger: logger}
	s := gw.Session()
	s.AddHandler(e.onMemberAdd)
	s.AddHandler(e.onMemberRemove)
	s.AddHandler(e.onMemberUpdate)
	s.AddHandler(e.onMessageDelete)
	s.AddHandler(e.onMessageDeleteBulk)
	s.AddHandler(e.onMessageUpdate)
	s.AddHandler(e.onVoiceStateUpdate)
	s.AddHandler(e.onChannelCreate)
	s.AddHandler(e.onChannelDelete)
	s.AddHandler(e.onChannelUpdate)
	return e
}

func (e *Events) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), eventTimeout)
}

func (e *Events) onMemberAdd(s *discordgo.Session, ev *discordgo.GuildMemberAdd) {
	if ev.GuildID != e.guildID || ev.User == nil {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.greeter.OnMemberJoin(ctx, e.gw.convertMember(ev.Member))
}

func (e *Events) onMemberRemove(s *discordgo.Session, ev *discordgo.GuildMemberRemove) {
	if ev.GuildID != e.guildID || ev.User == nil {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.greeter.OnMemberLeave(ctx, e.gw.convertMember(ev.Member))
}

func (e *Events) onMemberUpdate(s *discordgo.Session, ev *discordgo.GuildMemberUpdate) {
	if ev.GuildID != e.guildID || ev.BeforeUpdate == nil {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnMemberUpdate(ctx, e.gw.convertMember(ev.BeforeUpdate), e.gw.convertMember(ev.Member))
}

func (e *Events) onMessageDelete(s *discordgo.Session, ev *discordgo.MessageDelete) {
	// Content is only available when the message was cached.
	if ev.BeforeDelete == nil {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnMessageDelete(ctx, convertMessage(ev.BeforeDelete))
}

func (e *Events) onMessageDeleteBulk(s *discordgo.Session, ev *discordgo.MessageDeleteBulk) {
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnMessageBulkDelete(ctx, ev.ChannelID, len(ev.Messages))
}

func (e *Events) onMessageUpdate(s *discordgo.Session, ev *discordgo.MessageUpdate) {
	if ev.BeforeUpdate == nil || ev.Message == nil || ev.Author == nil {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnMessageEdit(ctx, convertMessage(ev.BeforeUpdate), convertMessage(ev.Message))
}

func (e *Events) onVoiceStateUpdate(s *discordgo.Session, ev *discordgo.VoiceStateUpdate) {
	if ev.GuildID != e.guildID {
		return
	}
	user, ok := e.gw.Member(ev.UserID)
	if !ok {
		return
	}
	var before chat.VoiceState
	if ev.BeforeUpdate != nil {
		before = convertVoiceState(ev.BeforeUpdate)
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnVoiceUpdate(ctx, user.User, before, convertVoiceState(ev.VoiceState))
}

func convertVoiceState(v *discordgo.VoiceState) chat.VoiceState {
	return chat.VoiceState{
		ChannelID: v.ChannelID,
		SelfMute:  v.SelfMute,
		Mute:      v.Mute,
		SelfDeaf:  v.SelfDeaf,
		Deaf:      v.Deaf,
		Stream:    v.SelfStream,
		Video:     v.SelfVideo,
	}
}

func (e *Events) onChannelCreate(s *discordgo.Session, ev *discordgo.ChannelCreate) {
	if ev.GuildID != e.guildID {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnChannelCreate(ctx, ev.ID, ev.Name)
}

func (e *Events) onChannelDelete(s *discordgo.Session, ev *discordgo.ChannelDelete) {
	if ev.GuildID != e.guildID {
		return
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnChannelDelete(ctx, ev.ID, ev.Name)
}

func (e *Events) onChannelUpdate(s *discordgo.Session, ev *discordgo.ChannelUpdate) {
	if ev.GuildID != e.guildID {
		return
	}
	before := ""
	if ev.BeforeUpdate != nil {
		before = ev.BeforeUpdate.Name
	}
	ctx, cancel := e.ctx()
	defer cancel()
	e.audit.OnChannelUpdate(ctx, ev.ID, before, ev.Name)
}
