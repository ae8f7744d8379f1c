// Package ticket implements the ticket channel lifecycle: creation
// from the public panel, the terms gate, membership changes, and the
// queued close transition.
package ticket

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/closer"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
	"github.com/vhecode013/Bot-Atendimento/internal/domain"
	"github.com/vhecode013/Bot-Atendimento/internal/events"
	"github.com/vhecode013/Bot-Atendimento/pkg/util"
)

// CategoryOption describes one entry of the public panel menu.
type CategoryOption struct {
	Key         string
	Label       string
	Description string
}

// CategoryOptions lists the panel categories in display order.
func CategoryOptions() []CategoryOption {
	return []CategoryOption{
		{Key: "support", Label: "Support", Description: "General support and questions."},
		{Key: "clothing", Label: "Clothing", Description: "Custom clothing requests."},
		{Key: "accessories", Label: "Accessories", Description: "Chains and accessory orders."},
		{Key: "vehicles", Label: "Vehicles", Description: "Custom vehicle requests."},
		{Key: "design", Label: "Design", Description: "Art and visual identity."},
		{Key: "courses", Label: "Courses", Description: "Training and mentoring."},
	}
}

// Workflow coordinates the ticket state machine. All shared state
// lives in the registry; handlers re-check it after every network
// round trip instead of assuming it unchanged.
type Workflow struct {
	gw         chat.Gateway
	registry   *Registry
	queue      *closer.Queue
	dispatcher events.Dispatcher
	cfg        config.DiscordConfig
	brand      chat.Brand
	logger     *zap.Logger
}

// NewWorkflow wires the workflow.
func NewWorkflow(gw chat.Gateway, registry *Registry, queue *closer.Queue, dispatcher events.Dispatcher, cfg config.DiscordConfig, brand chat.Brand, logger *zap.Logger) *Workflow {
	return &Workflow{
		gw:         gw,
		registry:   registry,
		queue:      queue,
		dispatcher: dispatcher,
		cfg:        cfg,
		brand:      brand,
		logger:     logger,
	}
}

// Registry exposes the ticket registry for collaborators.
func (w *Workflow) Registry() *Registry {
	return w.registry
}

// IsStaff reports whether the member may use staff-only actions:
// either the platform administrator permission or one of the
// configured admin roles.
func (w *Workflow) IsStaff(m chat.Member) bool {
	if m.Administrator {
		return true
	}
	held := make(map[string]bool, len(m.RoleIDs))
	for _, id := range m.RoleIDs {
		held[id] = true
	}
	for _, id := range w.cfg.AdminRoleIDs {
		if held[id] {
			return true
		}
	}
	return false
}

// isOpenerOrStaff gates the opener-or-staff actions.
func (w *Workflow) isOpenerOrStaff(m chat.Member, t domain.Ticket) bool {
	return m.ID == t.OpenerID || w.IsStaff(m)
}

// OpenTicket creates a ticket channel for the member in the selected
// category and posts the opening panel plus the terms gate. Returns
// the new channel ID.
func (w *Workflow) OpenTicket(ctx context.Context, opener chat.Member, categoryKey, subject string) (string, error) {
	parentID := w.cfg.CategoryIDs[categoryKey]
	if parentID == "" {
		return "", util.NewUnavailable("this ticket category is not configured")
	}
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", util.NewValidationError("a subject is required to open a ticket")
	}

	t := domain.Ticket{
		OpenerID:  opener.ID,
		Category:  categoryKey,
		Subject:   subject,
		CreatedAt: time.Now(),
		State:     domain.TicketStateRestricted,
	}
	channelID, err := w.gw.CreateTicketChannel(ctx, chat.CreateChannelRequest{
		Name:         channelName(categoryKey, opener.Username),
		ParentID:     parentID,
		Topic:        t.Topic(),
		OpenerID:     opener.ID,
		OpenerPerms:  chat.RestrictedPermissions(),
		StaffRoleIDs: w.cfg.AdminRoleIDs,
	})
	if err != nil {
		w.logger.Error("ticket channel create failed", zap.String("opener", opener.ID), zap.Error(err))
		return "", util.NewUnavailable("could not create the ticket channel")
	}
	t.ChannelID = channelID
	w.registry.Put(t)

	w.postOpeningPanel(ctx, t, opener)
	w.postTermsGate(ctx, t)
	w.notifyStaffOfOpen(ctx, t, opener, channelID)
	w.dmOpenerOnOpen(ctx, t, opener, channelID)

	w.publish(ctx, events.Event{
		Type:      events.EventTicketOpened,
		ChannelID: channelID,
		ActorID:   opener.ID,
		Timestamp: time.Now(),
		Payload:   events.TicketOpenedPayload{OpenerID: opener.ID, Category: categoryKey, Subject: subject},
	})
	return channelID, nil
}

func (w *Workflow) postOpeningPanel(ctx context.Context, t domain.Ticket, opener chat.Member) {
	desc := fmt.Sprintf(
		"👤 **Author:** <@%s>\n📂 **Category:** `%s`\n🧾 **Subject:** `%s`\n⏰ **Opened:** <t:%d:f>\n\nWelcome! Use the menu below to **manage** this ticket.",
		opener.ID, t.Category, t.Subject, t.CreatedAt.Unix())
	emb := &chat.Embed{Title: "🎟️ Ticket Opened", Description: desc, Color: chat.ColorPurple}

	ping := "<@" + opener.ID + ">"
	for _, rid := range w.cfg.AdminRoleIDs {
		ping += " <@&" + rid + ">"
	}
	if _, err := w.gw.Send(ctx, t.ChannelID, chat.Outgoing{
		Content:  ping,
		Embed:    w.brand.Apply(emb),
		Controls: chat.ControlTicketActions,
	}); err != nil {
		w.logger.Warn("opening panel send failed", zap.String("channel", t.ChannelID), zap.Error(err))
	}
}

func (w *Workflow) postTermsGate(ctx context.Context, t domain.Ticket) {
	lines := []string{
		"By ordering here you agree to our rules and policies.",
		"• Delivery within 7 business days through the official channels.",
		"• Production starts after the payment receipt is sent.",
		"• Server-side installation is the customer's responsibility.",
		"• Reselling, editing, redistributing or removing the brand is forbidden.",
		"• Files are kept for 30 days after delivery.",
		"• Changes after delivery are billed separately.",
		"• Cancellations after production starts are not fully refunded.",
	}
	if w.cfg.TermsChannelID != "" {
		lines = append(lines, fmt.Sprintf("🔗 Read the full terms in <#%s>.", w.cfg.TermsChannelID))
	}
	emb := &chat.Embed{
		Title:       "📝 Terms of Service",
		Description: strings.Join(lines, "\n"),
		Color:       chat.ColorBlurple,
	}
	msgID, err := w.gw.Send(ctx, t.ChannelID, chat.Outgoing{
		Embed:    w.brand.Apply(emb),
		Controls: chat.ControlTerms,
	})
	if err != nil {
		w.logger.Warn("terms gate send failed", zap.String("channel", t.ChannelID), zap.Error(err))
		return
	}
	w.registry.SetTermsMessage(t.ChannelID, msgID)
}

// notifyStaffOfOpen DMs every admin-role member once about the new
// ticket. Best effort; DM blocks are expected.
func (w *Workflow) notifyStaffOfOpen(ctx context.Context, t domain.Ticket, opener chat.Member, channelID string) {
	emb := &chat.Embed{
		Title: "🎟️ New ticket opened",
		Description: fmt.Sprintf("**User:** <@%s>\n**Subject:** `%s`\n**Category:** `%s`\n**Channel:** <#%s>",
			opener.ID, t.Subject, t.Category, channelID),
		Color: chat.ColorBlurple,
	}
	out := chat.Outgoing{
		Embed:   w.brand.Apply(emb),
		Buttons: []chat.LinkButton{{Label: "Go to ticket", URL: w.gw.ChannelURL(channelID)}},
	}
	notified := make(map[string]bool)
	for _, rid := range w.cfg.AdminRoleIDs {
		for _, member := range w.gw.RoleMembers(rid) {
			if notified[member.ID] {
				continue
			}
			notified[member.ID] = true
			if err := w.gw.SendDM(ctx, member.ID, out); err != nil {
				w.logger.Debug("staff DM failed", zap.String("user", member.ID), zap.Error(err))
			}
		}
	}
}

func (w *Workflow) dmOpenerOnOpen(ctx context.Context, t domain.Ticket, opener chat.Member, channelID string) {
	emb := &chat.Embed{
		Title: "🎫 Your ticket is open",
		Description: fmt.Sprintf("**Category:** `%s`\n**Subject:** `%s`\n\nFollow along in <#%s>.",
			t.Category, t.Subject, channelID),
		Color: chat.ColorPurple,
	}
	out := chat.Outgoing{
		Embed:   w.brand.Apply(emb),
		Buttons: []chat.LinkButton{{Label: "Go to ticket", URL: w.gw.ChannelURL(channelID)}},
	}
	if err := w.gw.SendDM(ctx, opener.ID, out); err != nil {
		w.logger.Debug("opener DM failed", zap.String("user", opener.ID), zap.Error(err))
	}
}

// AcceptTerms flips the ticket to active: only the opener or staff
// may do it, and only while the ticket is still restricted.
func (w *Workflow) AcceptTerms(ctx context.Context, actor chat.Member, channelID string) error {
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return util.NewUnavailable("this channel is not a registered ticket")
	}
	if !w.isOpenerOrStaff(actor, t) {
		return util.NewUnauthorized("only the ticket author or staff can accept the terms")
	}
	if t.State != domain.TicketStateRestricted {
		return util.NewUnavailable("the terms were already resolved for this ticket")
	}

	if err := w.gw.SetMemberPermissions(ctx, channelID, t.OpenerID, chat.ActivePermissions()); err != nil {
		w.logger.Error("terms accept permission grant failed", zap.String("channel", channelID), zap.Error(err))
		return util.NewUnavailable("could not unlock the channel, try again")
	}

	// The permission call suspended us; re-check before committing.
	if cur, ok := w.registry.Lookup(channelID); !ok || cur.State != domain.TicketStateRestricted {
		return util.NewUnavailable("the terms were already resolved for this ticket")
	}
	w.registry.MarkTermsAccepted(channelID)

	if t.TermsMessageID != "" {
		if err := w.gw.DisableControls(ctx, channelID, t.TermsMessageID); err != nil {
			w.logger.Debug("terms controls disable failed", zap.Error(err))
		}
	}

	emb := &chat.Embed{
		Title:       "✅ Terms accepted",
		Description: fmt.Sprintf("<@%s> accepted the terms at <t:%d:f>.", t.OpenerID, time.Now().Unix()),
		Color:       chat.ColorGreen,
	}
	if _, err := w.gw.Send(ctx, channelID, chat.Outgoing{Embed: w.brand.Apply(emb)}); err != nil {
		w.logger.Warn("terms confirmation send failed", zap.Error(err))
	}

	dm := &chat.Embed{
		Title:       "📜 Terms accepted",
		Description: "Your terms of service were **accepted**. Enjoy the support! ✨",
		Color:       chat.ColorGreen,
	}
	if err := w.gw.SendDM(ctx, t.OpenerID, chat.Outgoing{Embed: w.brand.Apply(dm)}); err != nil {
		w.logger.Debug("terms DM failed", zap.Error(err))
	}

	w.publish(ctx, events.Event{
		Type:      events.EventTermsAccepted,
		ChannelID: channelID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload:   events.TermsPayload{OpenerID: t.OpenerID},
	})
	return nil
}

// DenyTerms destroys the ticket immediately: no conversation happened
// yet, so there is nothing to archive. Opener or staff may trigger it.
func (w *Workflow) DenyTerms(ctx context.Context, actor chat.Member, channelID string) error {
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return util.NewUnavailable("this channel is not a registered ticket")
	}
	if !w.isOpenerOrStaff(actor, t) {
		return util.NewUnauthorized("only the ticket author or staff can deny the terms")
	}
	if t.State != domain.TicketStateRestricted {
		return util.NewUnavailable("the terms were already resolved for this ticket")
	}

	w.publish(ctx, events.Event{
		Type:      events.EventTermsDenied,
		ChannelID: channelID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload:   events.TermsPayload{OpenerID: t.OpenerID},
	})

	dm := &chat.Embed{
		Title:       "❌ Ticket closed",
		Description: "Your ticket was closed because the **terms of service were declined**.",
		Color:       chat.ColorRed,
	}
	if err := w.gw.SendDM(ctx, t.OpenerID, chat.Outgoing{Embed: w.brand.Apply(dm)}); err != nil {
		w.logger.Debug("terms denial DM failed", zap.Error(err))
	}

	if err := w.gw.DeleteChannel(ctx, channelID, "terms of service declined"); err != nil {
		w.logger.Error("terms denial channel delete failed", zap.String("channel", channelID), zap.Error(err))
	}
	w.registry.MarkDestroyed(channelID)
	return nil
}

// AddMember grants a user full participation in the ticket channel.
// Allowed for the opener or staff at any state before destruction.
func (w *Workflow) AddMember(ctx context.Context, actor chat.Member, channelID, rawUser string) error {
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return util.NewUnavailable("this channel is not a registered ticket")
	}
	if !w.isOpenerOrStaff(actor, t) {
		return util.NewUnauthorized("only the ticket author or staff can add members")
	}
	member, err := w.resolveMemberRef(rawUser)
	if err != nil {
		return err
	}
	if err := w.gw.SetMemberPermissions(ctx, channelID, member.ID, chat.ActivePermissions()); err != nil {
		w.logger.Error("member add failed", zap.String("user", member.ID), zap.Error(err))
		return util.NewUnavailable("could not add that member to the ticket")
	}
	emb := &chat.Embed{
		Title:       "➕ Member added",
		Description: fmt.Sprintf("<@%s> added <@%s> to the ticket.", actor.ID, member.ID),
		Color:       chat.ColorGreen,
	}
	if _, err := w.gw.Send(ctx, channelID, chat.Outgoing{Embed: w.brand.Apply(emb)}); err != nil {
		w.logger.Warn("member add announcement failed", zap.Error(err))
	}
	return nil
}

// RemoveMember revokes a user's access to the ticket channel.
func (w *Workflow) RemoveMember(ctx context.Context, actor chat.Member, channelID, rawUser string) error {
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return util.NewUnavailable("this channel is not a registered ticket")
	}
	if !w.isOpenerOrStaff(actor, t) {
		return util.NewUnauthorized("only the ticket author or staff can remove members")
	}
	member, err := w.resolveMemberRef(rawUser)
	if err != nil {
		return err
	}
	if err := w.gw.ClearMemberPermissions(ctx, channelID, member.ID); err != nil {
		w.logger.Error("member remove failed", zap.String("user", member.ID), zap.Error(err))
		return util.NewUnavailable("could not remove that member from the ticket")
	}
	emb := &chat.Embed{
		Title:       "➖ Member removed",
		Description: fmt.Sprintf("<@%s> removed <@%s> from the ticket.", actor.ID, member.ID),
		Color:       chat.ColorOrange,
	}
	if _, err := w.gw.Send(ctx, channelID, chat.Outgoing{Embed: w.brand.Apply(emb)}); err != nil {
		w.logger.Warn("member remove announcement failed", zap.Error(err))
	}
	return nil
}

// NotifyOpener DMs the opener a status ping with a jump link. Staff
// only.
func (w *Workflow) NotifyOpener(ctx context.Context, actor chat.Member, channelID string) error {
	if !w.IsStaff(actor) {
		return util.NewUnauthorized("only staff can notify the requester")
	}
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return util.NewUnavailable("this channel is not a registered ticket")
	}
	if _, ok := w.gw.Member(t.OpenerID); !ok {
		return util.NewUnavailable("the requester is no longer in the server")
	}

	emb := &chat.Embed{
		Title: "🔔 Ticket update",
		Description: fmt.Sprintf("Your **%s** ticket is being handled.\n**Subject:** `%s`\nFollow along: %s",
			t.Category, t.Subject, w.gw.ChannelURL(channelID)),
		Color: chat.ColorBlurple,
	}
	out := chat.Outgoing{
		Embed:   w.brand.Apply(emb),
		Buttons: []chat.LinkButton{{Label: "Go to ticket", URL: w.gw.ChannelURL(channelID)}},
	}
	if err := w.gw.SendDM(ctx, t.OpenerID, out); err != nil {
		return util.NewUnavailable("could not send the DM (the user may block DMs)")
	}

	ok2 := &chat.Embed{
		Title:       "📨 Requester notified",
		Description: fmt.Sprintf("<@%s> notified <@%s> by DM.", actor.ID, t.OpenerID),
		Color:       chat.ColorGreen,
	}
	if _, err := w.gw.Send(ctx, channelID, chat.Outgoing{Embed: w.brand.Apply(ok2)}); err != nil {
		w.logger.Warn("notify announcement failed", zap.Error(err))
	}
	return nil
}

// RequestClose queues the close job for the channel and returns its
// 1-based queue position. Staff only; closing is always asynchronous.
func (w *Workflow) RequestClose(ctx context.Context, actor chat.Member, channelID, reason string) (int, error) {
	if !w.IsStaff(actor) {
		return 0, util.NewUnauthorized("only staff can close tickets")
	}
	t, ok := w.registry.Lookup(channelID)
	if !ok {
		return 0, util.NewUnavailable("this channel is not a registered ticket")
	}
	if t.State == domain.TicketStateClosing {
		return 0, util.NewUnavailable("this ticket is already queued for closing")
	}
	w.registry.SetState(channelID, domain.TicketStateClosing)

	name, _ := w.gw.ChannelName(channelID)
	if name == "" {
		name = channelID
	}
	job := domain.CloseJob{
		ID:          uuid.NewString(),
		ChannelID:   channelID,
		ChannelName: name,
		RequestedBy: actor.ID,
		Reason:      strings.TrimSpace(reason),
		EnqueuedAt:  time.Now(),
	}
	pos := w.queue.Enqueue(job)
	w.logger.Info("close job queued",
		zap.String("channel", name), zap.Int("position", pos), zap.String("requested_by", actor.ID))

	w.publish(ctx, events.Event{
		Type:      events.EventCloseQueued,
		ChannelID: channelID,
		ActorID:   actor.ID,
		Timestamp: time.Now(),
		Payload:   events.CloseQueuedPayload{Position: pos, Reason: job.Reason},
	})
	return pos, nil
}

// PostPanel publishes the public ticket panel in the configured
// channel, unless a recent bot panel is already present.
func (w *Workflow) PostPanel(ctx context.Context) error {
	if w.cfg.PanelChannelID == "" {
		w.logger.Info("panel channel not configured, skipping panel")
		return nil
	}
	recent, err := w.gw.Recent(ctx, w.cfg.PanelChannelID, 5)
	if err == nil {
		bot := w.gw.BotUser()
		for _, msg := range recent {
			if msg.Author.ID == bot.ID && len(msg.Embeds) > 0 {
				return nil
			}
		}
	}

	emb := &chat.Embed{
		Title:       "🎟️ Support Tickets",
		Description: "**Welcome!** 💫\n\nTo **request a quote** or **ask a question**, pick a category below and **open your ticket**.\n\nOur team will take it from there. 🪄",
		Color:       chat.ColorPurple,
	}
	if w.brand.FooterLogo != "" {
		emb.ThumbnailURL = w.brand.FooterLogo
	}
	if _, err := w.gw.Send(ctx, w.cfg.PanelChannelID, chat.Outgoing{
		Embed:    w.brand.Apply(emb),
		Controls: chat.ControlTicketPanel,
	}); err != nil {
		return err
	}
	w.logger.Info("ticket panel posted", zap.String("channel", w.cfg.PanelChannelID))
	return nil
}

// resolveMemberRef accepts a raw ID or a <@id> mention and resolves
// it to a current guild member.
func (w *Workflow) resolveMemberRef(raw string) (chat.Member, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "<@!")
	raw = strings.TrimPrefix(raw, "<@")
	raw = strings.TrimSuffix(raw, ">")
	if raw == "" || !isDigits(raw) {
		return chat.Member{}, util.NewValidationError("invalid user, pass an ID or a mention")
	}
	member, ok := w.gw.Member(raw)
	if !ok {
		return chat.Member{}, util.NewValidationError("that user is not in the server")
	}
	return member, nil
}

func (w *Workflow) publish(ctx context.Context, event events.Event) {
	if w.dispatcher != nil {
		_ = w.dispatcher.Publish(ctx, event)
	}
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// channelName builds the ticket channel name, bounded to the
// platform's limit.
func channelName(categoryKey, username string) string {
	safe := strings.ToLower(strings.ReplaceAll(username, " ", "-"))
	name := fmt.Sprintf("📩・%s-%s", categoryKey, safe)
	runes := []rune(name)
	if len(runes) > 95 {
		runes = runes[:95]
	}
	return string(runes)
}
