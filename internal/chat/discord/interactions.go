package discord

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/payments"
	"github.com/vhecode013/Bot-Atendimento/internal/ticket"
	"github.com/vhecode013/Bot-Atendimento/pkg/util"
)

const interactionTimeout = 60 * time.Second

// Archiver produces a transcript for a channel without closing it.
type Archiver interface {
	Archive(ctx context.Context, channelID, channelName string) (string, error)
}

// Router translates interactions into workflow calls. Every handler
// answers ephemerally; user-facing failures come from the error's
// user message, everything else gets a generic apology.
type Router struct {
	gw        *Gateway
	workflow  *ticket.Workflow
	payments  *payments.Service
	archiver  Archiver
	registrar *Registrar
	logger    *zap.Logger
}

// NewRouter wires the router and registers the interaction handler on
// the session.
func NewRouter(gw *Gateway, workflow *ticket.Workflow, pay *payments.Service, archiver Archiver, registrar *Registrar, logger *zap.Logger) *Router {
	r := &Router{gw: gw, workflow: workflow, payments: pay, archiver: archiver, registrar: registrar, logger: logger}
	gw.Session().AddHandler(r.handleInteraction)
	return r
}

func (r *Router) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()

	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		r.handleCommand(ctx, s, i)
	case discordgo.InteractionMessageComponent:
		r.handleComponent(ctx, s, i)
	case discordgo.InteractionModalSubmit:
		r.handleModal(ctx, s, i)
	}
}

func (r *Router) actor(i *discordgo.InteractionCreate) (chat.Member, bool) {
	if i.Member == nil || i.Member.User == nil {
		return chat.Member{}, false
	}
	return r.gw.convertMember(i.Member), true
}

func (r *Router) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, ok := r.actor(i)
	if !ok {
		r.replyEphemeral(s, i, "Commands only work inside the server.")
		return
	}
	data := i.ApplicationCommandData()
	channelID := i.ChannelID

	switch data.Name {
	case "add":
		userID := commandUserID(data)
		r.finish(s, i, r.workflow.AddMember(ctx, actor, channelID, userID), "Member added. ✅")

	case "remove":
		userID := commandUserID(data)
		r.finish(s, i, r.workflow.RemoveMember(ctx, actor, channelID, userID), "Member removed. ✅")

	case "notify":
		r.finish(s, i, r.workflow.NotifyOpener(ctx, actor, channelID), "Requester notified by DM. 📨")

	case "close":
		reason := commandStringOption(data, "reason")
		r.deferEphemeral(s, i)
		pos, err := r.workflow.RequestClose(ctx, actor, channelID, reason)
		if err != nil {
			r.followUp(s, i, userFacing(err))
			return
		}
		r.followUp(s, i, fmt.Sprintf("Close queued at position **%d**. The channel will be archived and deleted shortly. 🪄", pos))

	case "transcript":
		if !r.workflow.IsStaff(actor) {
			r.replyEphemeral(s, i, "Only staff can generate transcripts.")
			return
		}
		r.deferEphemeral(s, i)
		name, _ := r.gw.ChannelName(channelID)
		if name == "" {
			name = channelID
		}
		url, err := r.archiver.Archive(ctx, channelID, name)
		if err != nil {
			r.logger.Error("on-demand transcript failed", zap.String("channel", channelID), zap.Error(err))
			r.followUp(s, i, "Could not generate the transcript, check the logs.")
			return
		}
		r.followUp(s, i, "Transcript ready: "+url)

	case "payment":
		amount := commandStringOption(data, "amount")
		r.finish(s, i, r.payments.PublishPayment(ctx, actor, channelID, amount), "Payment instructions posted. 💳")

	case "paid":
		r.finish(s, i, r.payments.ConfirmPayment(ctx, actor, channelID), "Payment confirmed. ✅")

	case "prices":
		r.finish(s, i, r.payments.PriceTable(ctx, channelID), "Price list posted. 💲")

	case "order":
		r.finish(s, i, r.payments.OrderInstructions(ctx, channelID), "Order walkthrough posted. 🛒")

	case "syncadmin":
		if !r.workflow.IsStaff(actor) {
			r.replyEphemeral(s, i, "Only staff can resync commands.")
			return
		}
		r.deferEphemeral(s, i)
		if err := r.registrar.Register(ctx); err != nil {
			r.followUp(s, i, "Command sync failed, check the logs.")
			return
		}
		r.followUp(s, i, "Commands resynced. 🔁")

	default:
		r.replyEphemeral(s, i, "Unknown command.")
	}
}

func (r *Router) handleComponent(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, ok := r.actor(i)
	if !ok {
		r.replyEphemeral(s, i, "This only works inside the server.")
		return
	}
	data := i.MessageComponentData()

	switch data.CustomID {
	case customIDPanelSelect:
		if len(data.Values) == 0 {
			return
		}
		r.openSubjectModal(s, i, data.Values[0])

	case customIDActionsSelect:
		if len(data.Values) == 0 {
			return
		}
		r.handleTicketAction(ctx, s, i, actor, data.Values[0])

	case customIDTermsAccept:
		r.finish(s, i, r.workflow.AcceptTerms(ctx, actor, i.ChannelID), "Terms accepted, the channel is unlocked. ✅")

	case customIDTermsDeny:
		r.finish(s, i, r.workflow.DenyTerms(ctx, actor, i.ChannelID), "Terms declined, the ticket will be removed. ❌")
	}
}

func (r *Router) handleTicketAction(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, actor chat.Member, action string) {
	switch action {
	case actionAdd:
		r.openUserModal(s, i, modalIDAdd, "Add member", "User ID or @mention")
	case actionRemove:
		r.openUserModal(s, i, modalIDRemove, "Remove member", "User ID or @mention")
	case actionNotify:
		r.finish(s, i, r.workflow.NotifyOpener(ctx, actor, i.ChannelID), "Requester notified by DM. 📨")
	case actionPayment:
		r.finish(s, i, r.payments.PublishPayment(ctx, actor, i.ChannelID, ""), "Payment instructions posted. 💳")
	case actionClose:
		r.openCloseModal(s, i)
	}
}

func (r *Router) handleModal(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) {
	actor, ok := r.actor(i)
	if !ok {
		r.replyEphemeral(s, i, "This only works inside the server.")
		return
	}
	data := i.ModalSubmitData()
	value := modalValue(data)

	switch {
	case strings.HasPrefix(data.CustomID, modalIDSubjectPrefix):
		category := strings.TrimPrefix(data.CustomID, modalIDSubjectPrefix)
		r.deferEphemeral(s, i)
		channelID, err := r.workflow.OpenTicket(ctx, actor, category, value)
		if err != nil {
			r.followUp(s, i, userFacing(err))
			return
		}
		r.followUp(s, i, fmt.Sprintf("Your ticket is ready: <#%s> 🎟️", channelID))

	case data.CustomID == modalIDAdd:
		r.finish(s, i, r.workflow.AddMember(ctx, actor, i.ChannelID, value), "Member added. ✅")

	case data.CustomID == modalIDRemove:
		r.finish(s, i, r.workflow.RemoveMember(ctx, actor, i.ChannelID, value), "Member removed. ✅")

	case data.CustomID == modalIDClose:
		r.deferEphemeral(s, i)
		pos, err := r.workflow.RequestClose(ctx, actor, i.ChannelID, value)
		if err != nil {
			r.followUp(s, i, userFacing(err))
			return
		}
		r.followUp(s, i, fmt.Sprintf("Close queued at position **%d**. 🪄", pos))
	}
}

func (r *Router) openSubjectModal(s *discordgo.Session, i *discordgo.InteractionCreate, category string) {
	r.respondModal(s, i, modalIDSubjectPrefix+category, "Open a ticket", discordgo.TextInput{
		CustomID:    "value",
		Label:       "What do you need?",
		Style:       discordgo.TextInputShort,
		Placeholder: "Describe your request in a few words",
		Required:    true,
		MaxLength:   100,
	})
}

func (r *Router) openUserModal(s *discordgo.Session, i *discordgo.InteractionCreate, id, title, label string) {
	r.respondModal(s, i, id, title, discordgo.TextInput{
		CustomID:  "value",
		Label:     label,
		Style:     discordgo.TextInputShort,
		Required:  true,
		MaxLength: 40,
	})
}

func (r *Router) openCloseModal(s *discordgo.Session, i *discordgo.InteractionCreate) {
	r.respondModal(s, i, modalIDClose, "Close ticket", discordgo.TextInput{
		CustomID:    "value",
		Label:       "Reason",
		Style:       discordgo.TextInputParagraph,
		Placeholder: "Optional close reason",
		Required:    false,
		MaxLength:   300,
	})
}

func (r *Router) respondModal(s *discordgo.Session, i *discordgo.InteractionCreate, customID, title string, input discordgo.TextInput) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: customID,
			Title:    title,
			Components: []discordgo.MessageComponent{
				discordgo.ActionsRow{Components: []discordgo.MessageComponent{input}},
			},
		},
	})
	if err != nil {
		r.logger.Warn("modal open failed", zap.String("modal", customID), zap.Error(err))
	}
}

// finish answers an already-completed synchronous action.
func (r *Router) finish(s *discordgo.Session, i *discordgo.InteractionCreate, err error, okMsg string) {
	if err != nil {
		r.replyEphemeral(s, i, userFacing(err))
		return
	}
	r.replyEphemeral(s, i, okMsg)
}

func (r *Router) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		r.logger.Debug("interaction reply failed", zap.Error(err))
	}
}

func (r *Router) deferEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		r.logger.Debug("interaction defer failed", zap.Error(err))
	}
}

func (r *Router) followUp(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	_, err := s.FollowupMessageCreate(i.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Flags:   discordgo.MessageFlagsEphemeral,
	})
	if err != nil {
		r.logger.Debug("interaction followup failed", zap.Error(err))
	}
}

// userFacing maps an error to the message shown to the member.
func userFacing(err error) string {
	if msg := util.UserMessage(err); msg != "" {
		return "⚠️ " + msg
	}
	return "Something went wrong, try again in a moment."
}

func commandUserID(data discordgo.ApplicationCommandInteractionData) string {
	for _, opt := range data.Options {
		if opt.Name == "user" && opt.Type == discordgo.ApplicationCommandOptionUser {
			if u := opt.UserValue(nil); u != nil {
				return u.ID
			}
		}
	}
	return ""
}

func commandStringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, opt := range data.Options {
		if opt.Name == name && opt.Type == discordgo.ApplicationCommandOptionString {
			return opt.StringValue()
		}
	}
	return ""
}

func modalValue(data discordgo.ModalSubmitInteractionData) string {
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, ic := range row.Components {
			if input, ok := ic.(*discordgo.TextInput); ok {
				return strings.TrimSpace(input.Value)
			}
		}
	}
	return ""
}
