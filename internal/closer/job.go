package closer

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/domain"
	"github.com/vhecode013/Bot-Atendimento/internal/events"
	"github.com/vhecode013/Bot-Atendimento/internal/publisher"
	"github.com/vhecode013/Bot-Atendimento/internal/transcript"
)

// TicketSource is the slice of the ticket registry the runner needs.
type TicketSource interface {
	Lookup(channelID string) (domain.Ticket, bool)
	MarkDestroyed(channelID string)
}

// Runner executes the close pipeline for one ticket channel:
// collect history, render the archive, publish it, then perform the
// side effects. Every stage tolerates partial failure; channel
// deletion is always attempted.
type Runner struct {
	gw         chat.Gateway
	collector  *transcript.Collector
	renderer   *transcript.Renderer
	pub        publisher.Publisher
	tickets    TicketSource
	dispatcher events.Dispatcher
	brand      chat.Brand
	logger     *zap.Logger

	// DeleteDelay is the grace period before the channel is removed,
	// so the final embed is visible for a moment.
	DeleteDelay time.Duration
}

// NewRunner wires the pipeline.
func NewRunner(gw chat.Gateway, collector *transcript.Collector, renderer *transcript.Renderer, pub publisher.Publisher, tickets TicketSource, dispatcher events.Dispatcher, brand chat.Brand, logger *zap.Logger) *Runner {
	return &Runner{
		gw:          gw,
		collector:   collector,
		renderer:    renderer,
		pub:         pub,
		tickets:     tickets,
		dispatcher:  dispatcher,
		brand:       brand,
		logger:      logger,
		DeleteDelay: 3 * time.Second,
	}
}

// Run processes one close job.
func (r *Runner) Run(ctx context.Context, job domain.CloseJob) error {
	r.publish(ctx, events.Event{
		Type:      events.EventCloseStarted,
		ChannelID: job.ChannelID,
		ActorID:   job.RequestedBy,
		Timestamp: time.Now(),
	})

	url, err := r.Archive(ctx, job.ChannelID, job.ChannelName)
	if err != nil {
		// Closed without transcript; the channel still goes away.
		r.logger.Error("transcript generation failed", zap.String("channel", job.ChannelName), zap.Error(err))
		url = ""
	}

	r.publish(ctx, events.Event{
		Type:      events.EventTicketClosed,
		ChannelID: job.ChannelID,
		ActorID:   job.RequestedBy,
		Timestamp: time.Now(),
		Payload: events.TicketClosedPayload{
			ChannelName:   job.ChannelName,
			Reason:        job.Reason,
			TranscriptURL: url,
		},
	})

	r.notifyOpener(ctx, job, url)
	r.postFinalMessage(ctx, job, url)

	if r.DeleteDelay > 0 {
		select {
		case <-ctx.Done():
		case <-time.After(r.DeleteDelay):
		}
	}
	reason := fmt.Sprintf("ticket closed by %s: %s", job.RequestedBy, orDash(job.Reason))
	if err := r.gw.DeleteChannel(ctx, job.ChannelID, reason); err != nil {
		r.logger.Error("channel delete failed", zap.String("channel", job.ChannelName), zap.Error(err))
	}
	r.tickets.MarkDestroyed(job.ChannelID)
	return nil
}

// Archive collects the channel history, renders the archive document
// and publishes it, returning the public URL. An empty URL with a nil
// error never happens; callers treat an error as "no transcript".
func (r *Runner) Archive(ctx context.Context, channelID, channelName string) (string, error) {
	records, err := r.collector.Collect(ctx, channelID)
	if err != nil && len(records) == 0 {
		return "", err
	}
	if err != nil {
		r.logger.Warn("history walk incomplete, archiving partial transcript",
			zap.String("channel", channelName), zap.Error(err))
	}

	header := r.gw.GuildIconURL()
	doc := r.renderer.Render(ctx, channelName, records, header)

	tmp, err := os.CreateTemp("", "transcript_*.html")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(doc); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}

	name := publisher.ArchiveName(channelName, time.Now())
	return r.pub.Upload(ctx, tmp.Name(), name)
}

func (r *Runner) notifyOpener(ctx context.Context, job domain.CloseJob, url string) {
	ticket, ok := r.tickets.Lookup(job.ChannelID)
	if !ok || ticket.OpenerID == "" {
		return
	}
	emb := &chat.Embed{
		Title: "🧾 Ticket closed",
		Description: fmt.Sprintf("Your ticket **%s** was closed by <@%s>.\n**Reason:** `%s`",
			job.ChannelName, job.RequestedBy, orDash(job.Reason)),
		Color: chat.ColorRed,
	}
	out := chat.Outgoing{Embed: r.brand.Apply(emb)}
	if url != "" {
		out.Buttons = []chat.LinkButton{{Label: "📄 Open Transcript", URL: url}}
	}
	if err := r.gw.SendDM(ctx, ticket.OpenerID, out); err != nil {
		r.logger.Warn("opener DM failed", zap.String("opener", ticket.OpenerID), zap.Error(err))
	}
}

func (r *Runner) postFinalMessage(ctx context.Context, job domain.CloseJob, url string) {
	emb := &chat.Embed{
		Title: "✅ Ticket closed",
		Description: fmt.Sprintf("Closed by <@%s>.\n**Reason:** `%s`",
			job.RequestedBy, orDash(job.Reason)),
		Color: chat.ColorRed,
	}
	out := chat.Outgoing{Embed: r.brand.Apply(emb)}
	if url != "" {
		out.Buttons = []chat.LinkButton{{Label: "📄 Open Transcript", URL: url}}
	}
	if _, err := r.gw.Send(ctx, job.ChannelID, out); err != nil {
		r.logger.Warn("final channel message failed", zap.String("channel", job.ChannelName), zap.Error(err))
	}
}

func (r *Runner) publish(ctx context.Context, event events.Event) {
	if r.dispatcher != nil {
		_ = r.dispatcher.Publish(ctx, event)
	}
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}
