package ticket

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
	"github.com/vhecode013/Bot-Atendimento/internal/events"
)

// Logbook subscribes to lifecycle events and mirrors them into the
// staff log channels as embeds.
type Logbook struct {
	messenger chat.Messenger
	cfg       config.DiscordConfig
	brand     chat.Brand
	logger    *zap.Logger
}

// NewLogbook builds the logbook and registers it on the dispatcher.
func NewLogbook(messenger chat.Messenger, dispatcher events.Dispatcher, cfg config.DiscordConfig, brand chat.Brand, logger *zap.Logger) *Logbook {
	lb := &Logbook{messenger: messenger, cfg: cfg, brand: brand, logger: logger}
	for _, et := range []events.EventType{
		events.EventTicketOpened,
		events.EventTermsAccepted,
		events.EventTermsDenied,
		events.EventCloseQueued,
		events.EventCloseStarted,
		events.EventTicketClosed,
	} {
		dispatcher.Subscribe(et, lb.handle)
	}
	return lb
}

func (l *Logbook) handle(ctx context.Context, ev events.Event) error {
	emb, channelID := l.build(ev)
	if emb == nil || channelID == "" {
		return nil
	}
	if _, err := l.messenger.Send(ctx, channelID, chat.Outgoing{Embed: l.brand.Apply(emb)}); err != nil {
		l.logger.Warn("log mirror failed",
			zap.String("event", string(ev.Type)), zap.String("channel", channelID), zap.Error(err))
	}
	return nil
}

func (l *Logbook) build(ev events.Event) (*chat.Embed, string) {
	switch ev.Type {
	case events.EventTicketOpened:
		p, _ := ev.Payload.(events.TicketOpenedPayload)
		return &chat.Embed{
			Title: "🎟️ Ticket opened",
			Description: fmt.Sprintf("**User:** <@%s>\n**Category:** `%s`\n**Subject:** `%s`\n**Channel:** <#%s>",
				p.OpenerID, p.Category, p.Subject, ev.ChannelID),
			Color: chat.ColorPurple,
		}, l.botLogChannel()

	case events.EventTermsAccepted:
		p, _ := ev.Payload.(events.TermsPayload)
		return &chat.Embed{
			Title: "✅ Terms accepted",
			Description: fmt.Sprintf("**User:** <@%s>\n**Resolved by:** <@%s>\n**Channel:** <#%s>",
				p.OpenerID, ev.ActorID, ev.ChannelID),
			Color: chat.ColorGreen,
		}, l.termsLogChannel()

	case events.EventTermsDenied:
		p, _ := ev.Payload.(events.TermsPayload)
		return &chat.Embed{
			Title: "❌ Terms denied",
			Description: fmt.Sprintf("**User:** <@%s>\n**Resolved by:** <@%s>\n**Channel:** <#%s>",
				p.OpenerID, ev.ActorID, ev.ChannelID),
			Color: chat.ColorRed,
		}, l.termsLogChannel()

	case events.EventCloseQueued:
		p, _ := ev.Payload.(events.CloseQueuedPayload)
		return &chat.Embed{
			Title: "🪄 Close queued",
			Description: fmt.Sprintf("**Channel:** <#%s>\n**Requested by:** <@%s>\n**Queue position:** `%d`\n**Reason:** %s",
				ev.ChannelID, ev.ActorID, p.Position, orNone(p.Reason)),
			Color: chat.ColorOrange,
		}, l.transcriptLogChannel()

	case events.EventCloseStarted:
		return &chat.Embed{
			Title:       "⏳ Closing ticket",
			Description: fmt.Sprintf("Archiving <#%s> now.", ev.ChannelID),
			Color:       chat.ColorOrange,
		}, l.transcriptLogChannel()

	case events.EventTicketClosed:
		p, _ := ev.Payload.(events.TicketClosedPayload)
		desc := fmt.Sprintf("**Channel:** `%s`\n**Reason:** %s", p.ChannelName, orNone(p.Reason))
		if p.TranscriptURL != "" {
			desc += fmt.Sprintf("\n**Transcript:** %s", p.TranscriptURL)
		} else {
			desc += "\n**Transcript:** unavailable"
		}
		return &chat.Embed{Title: "🗑️ Ticket closed", Description: desc, Color: chat.ColorRed},
			l.transcriptLogChannel()
	}
	return nil, ""
}

func (l *Logbook) termsLogChannel() string {
	if l.cfg.TermsLogChannelID != "" {
		return l.cfg.TermsLogChannelID
	}
	return l.cfg.BotLogChannelID
}

func (l *Logbook) transcriptLogChannel() string {
	if l.cfg.TranscriptLogChannelID != "" {
		return l.cfg.TranscriptLogChannelID
	}
	return l.cfg.BotLogChannelID
}

func (l *Logbook) botLogChannel() string {
	return l.cfg.BotLogChannelID
}

func orNone(s string) string {
	if s == "" {
		return "_none_"
	}
	return "`" + s + "`"
}
