// Package discord adapts a discordgo session to the chat capability
// interfaces and hosts the interaction router, the gateway event
// wiring, and command registration.
package discord

import (
	"context"
	"fmt"
	"sort"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
)

// Gateway implements chat.Gateway over a single-guild discordgo
// session. Lookups prefer the state cache and fall back to the REST
// API.
type Gateway struct {
	s       *discordgo.Session
	guildID string
	logger  *zap.Logger
}

// NewGateway wraps the session for the configured guild.
func NewGateway(s *discordgo.Session, guildID string, logger *zap.Logger) *Gateway {
	return &Gateway{s: s, guildID: guildID, logger: logger}
}

// Session exposes the raw session for the event wiring.
func (g *Gateway) Session() *discordgo.Session {
	return g.s
}

func (g *Gateway) Member(userID string) (chat.Member, bool) {
	m, err := g.s.State.Member(g.guildID, userID)
	if err != nil {
		m, err = g.s.GuildMember(g.guildID, userID)
		if err != nil {
			return chat.Member{}, false
		}
	}
	return g.convertMember(m), true
}

func (g *Gateway) convertMember(m *discordgo.Member) chat.Member {
	out := chat.Member{
		User:     convertUser(m.User),
		RoleIDs:  m.Roles,
		JoinedAt: m.JoinedAt,
	}
	if m.Nick != "" {
		out.DisplayName = m.Nick
	}
	if ts, err := discordgo.SnowflakeTimestamp(m.User.ID); err == nil {
		out.CreatedAt = ts
	}
	out.Administrator = g.isAdministrator(m)
	return out
}

// isAdministrator checks guild ownership and the administrator bit on
// any held role.
func (g *Gateway) isAdministrator(m *discordgo.Member) bool {
	guild, err := g.s.State.Guild(g.guildID)
	if err != nil {
		return false
	}
	if m.User != nil && guild.OwnerID == m.User.ID {
		return true
	}
	for _, rid := range m.Roles {
		role, err := g.s.State.Role(g.guildID, rid)
		if err != nil {
			continue
		}
		if role.Permissions&discordgo.PermissionAdministrator != 0 {
			return true
		}
	}
	return false
}

func convertUser(u *discordgo.User) chat.User {
	if u == nil {
		return chat.User{}
	}
	return chat.User{
		ID:          u.ID,
		Username:    u.Username,
		DisplayName: u.GlobalName,
		AvatarURL:   u.AvatarURL(""),
		Bot:         u.Bot,
	}
}

func (g *Gateway) Role(roleID string) (chat.Role, bool) {
	role, err := g.s.State.Role(g.guildID, roleID)
	if err != nil {
		return chat.Role{}, false
	}
	return chat.Role{ID: role.ID, Name: role.Name, Position: role.Position, Color: role.Color}, true
}

func (g *Gateway) ChannelName(channelID string) (string, bool) {
	ch, err := g.s.State.Channel(channelID)
	if err != nil {
		ch, err = g.s.Channel(channelID)
		if err != nil {
			return "", false
		}
	}
	return ch.Name, true
}

func (g *Gateway) ChannelURL(channelID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s", g.guildID, channelID)
}

func (g *Gateway) RoleMembers(roleID string) []chat.Member {
	guild, err := g.s.State.Guild(g.guildID)
	if err != nil {
		return nil
	}
	var out []chat.Member
	for _, m := range guild.Members {
		for _, rid := range m.Roles {
			if rid == roleID {
				out = append(out, g.convertMember(m))
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (g *Gateway) GuildIconURL() string {
	guild, err := g.s.State.Guild(g.guildID)
	if err != nil || guild.Icon == "" {
		return ""
	}
	return guild.IconURL("")
}

func (g *Gateway) BotUser() chat.User {
	return convertUser(g.s.State.User)
}

func (g *Gateway) MemberCount() int {
	guild, err := g.s.State.Guild(g.guildID)
	if err != nil {
		return 0
	}
	return guild.MemberCount
}

// MessagesAfter pages history in chronological order. The API returns
// newest first, so each page is reversed.
func (g *Gateway) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]chat.Message, error) {
	msgs, err := g.s.ChannelMessages(channelID, limit, "", afterID, "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("channel messages: %w", err)
	}
	out := make([]chat.Message, 0, len(msgs))
	for i := len(msgs) - 1; i >= 0; i-- {
		out = append(out, convertMessage(msgs[i]))
	}
	return out, nil
}

func (g *Gateway) Recent(ctx context.Context, channelID string, limit int) ([]chat.Message, error) {
	msgs, err := g.s.ChannelMessages(channelID, limit, "", "", "", discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("channel messages: %w", err)
	}
	out := make([]chat.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, convertMessage(m))
	}
	return out, nil
}

func convertMessage(m *discordgo.Message) chat.Message {
	out := chat.Message{
		ID:          m.ID,
		ChannelID:   m.ChannelID,
		Author:      convertUser(m.Author),
		Content:     m.Content,
		Timestamp:   m.Timestamp,
		FromWebhook: m.WebhookID != "",
	}
	for _, a := range m.Attachments {
		out.Attachments = append(out.Attachments, chat.Attachment{
			ID:          a.ID,
			URL:         a.URL,
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
		})
	}
	for _, e := range m.Embeds {
		out.Embeds = append(out.Embeds, convertEmbedIn(e))
	}
	return out
}

func convertEmbedIn(e *discordgo.MessageEmbed) chat.Embed {
	out := chat.Embed{Title: e.Title, Description: e.Description, Color: e.Color}
	if e.Image != nil {
		out.ImageURL = e.Image.URL
	}
	if e.Thumbnail != nil {
		out.ThumbnailURL = e.Thumbnail.URL
	}
	if e.Footer != nil {
		out.FooterText = e.Footer.Text
		out.FooterIconURL = e.Footer.IconURL
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, chat.EmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

func (g *Gateway) Send(ctx context.Context, channelID string, out chat.Outgoing) (string, error) {
	send := &discordgo.MessageSend{Content: out.Content}
	if out.Embed != nil {
		send.Embeds = []*discordgo.MessageEmbed{convertEmbedOut(out.Embed)}
	}
	send.Components = buildComponents(out)
	msg, err := g.s.ChannelMessageSendComplex(channelID, send, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send message: %w", err)
	}
	return msg.ID, nil
}

func (g *Gateway) SendDM(ctx context.Context, userID string, out chat.Outgoing) error {
	dm, err := g.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("open dm: %w", err)
	}
	_, err = g.Send(ctx, dm.ID, out)
	return err
}

func (g *Gateway) EditEmbed(ctx context.Context, channelID, messageID string, embed *chat.Embed) error {
	embeds := []*discordgo.MessageEmbed{convertEmbedOut(embed)}
	_, err := g.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel: channelID,
		ID:      messageID,
		Embeds:  &embeds,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("edit message: %w", err)
	}
	return nil
}

func convertEmbedOut(e *chat.Embed) *discordgo.MessageEmbed {
	out := &discordgo.MessageEmbed{
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
	if e.ImageURL != "" {
		out.Image = &discordgo.MessageEmbedImage{URL: e.ImageURL}
	}
	if e.ThumbnailURL != "" {
		out.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: e.ThumbnailURL}
	}
	if e.FooterText != "" {
		out.Footer = &discordgo.MessageEmbedFooter{Text: e.FooterText, IconURL: e.FooterIconURL}
	}
	if !e.Timestamp.IsZero() {
		out.Timestamp = e.Timestamp.Format("2006-01-02T15:04:05Z07:00")
	}
	for _, f := range e.Fields {
		out.Fields = append(out.Fields, &discordgo.MessageEmbedField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return out
}

func (g *Gateway) AddRole(ctx context.Context, userID, roleID, reason string) error {
	err := g.s.GuildMemberRoleAdd(g.guildID, userID, roleID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("add role: %w", err)
	}
	return nil
}

func (g *Gateway) CreateTicketChannel(ctx context.Context, req chat.CreateChannelRequest) (string, error) {
	overwrites := []*discordgo.PermissionOverwrite{
		{
			// @everyone shares the guild ID.
			ID:   g.guildID,
			Type: discordgo.PermissionOverwriteTypeRole,
			Deny: discordgo.PermissionViewChannel,
		},
		{
			ID:    req.OpenerID,
			Type:  discordgo.PermissionOverwriteTypeMember,
			Allow: permissionBits(req.OpenerPerms),
			Deny:  deniedBits(req.OpenerPerms),
		},
	}
	staffBits := permissionBits(chat.ActivePermissions())
	for _, rid := range req.StaffRoleIDs {
		overwrites = append(overwrites, &discordgo.PermissionOverwrite{
			ID:    rid,
			Type:  discordgo.PermissionOverwriteTypeRole,
			Allow: staffBits,
		})
	}
	ch, err := g.s.GuildChannelCreateComplex(g.guildID, discordgo.GuildChannelCreateData{
		Name:                 req.Name,
		Type:                 discordgo.ChannelTypeGuildText,
		Topic:                req.Topic,
		ParentID:             req.ParentID,
		PermissionOverwrites: overwrites,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create channel: %w", err)
	}
	return ch.ID, nil
}

func (g *Gateway) SetMemberPermissions(ctx context.Context, channelID, userID string, perms chat.PermissionSet) error {
	err := g.s.ChannelPermissionSet(channelID, userID, discordgo.PermissionOverwriteTypeMember,
		permissionBits(perms), deniedBits(perms), discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("set permissions: %w", err)
	}
	return nil
}

func (g *Gateway) ClearMemberPermissions(ctx context.Context, channelID, userID string) error {
	if err := g.s.ChannelPermissionDelete(channelID, userID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("clear permissions: %w", err)
	}
	return nil
}

func (g *Gateway) DeleteChannel(ctx context.Context, channelID, reason string) error {
	_, err := g.s.ChannelDelete(channelID, discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	if err != nil {
		return fmt.Errorf("delete channel: %w", err)
	}
	return nil
}

// DisableControls fetches the message and re-sends its component tree
// with every control disabled.
func (g *Gateway) DisableControls(ctx context.Context, channelID, messageID string) error {
	msg, err := g.s.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("fetch message: %w", err)
	}
	disabled := disableComponents(msg.Components)
	_, err = g.s.ChannelMessageEditComplex(&discordgo.MessageEdit{
		Channel:    channelID,
		ID:         messageID,
		Components: &disabled,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("disable controls: %w", err)
	}
	return nil
}

func disableComponents(list []discordgo.MessageComponent) []discordgo.MessageComponent {
	out := make([]discordgo.MessageComponent, 0, len(list))
	for _, c := range list {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			out = append(out, c)
			continue
		}
		inner := make([]discordgo.MessageComponent, 0, len(row.Components))
		for _, ic := range row.Components {
			switch v := ic.(type) {
			case *discordgo.Button:
				b := *v
				b.Disabled = true
				inner = append(inner, b)
			case *discordgo.SelectMenu:
				m := *v
				m.Disabled = true
				inner = append(inner, m)
			default:
				inner = append(inner, ic)
			}
		}
		out = append(out, discordgo.ActionsRow{Components: inner})
	}
	return out
}

func permissionBits(p chat.PermissionSet) int64 {
	var bits int64
	if p.ViewChannel {
		bits |= discordgo.PermissionViewChannel
	}
	if p.SendMessages {
		bits |= discordgo.PermissionSendMessages
	}
	if p.AttachFiles {
		bits |= discordgo.PermissionAttachFiles
	}
	if p.EmbedLinks {
		bits |= discordgo.PermissionEmbedLinks
	}
	if p.ReadMessageHistory {
		bits |= discordgo.PermissionReadMessageHistory
	}
	return bits
}

// deniedBits denies whatever the set leaves out, so a later grant
// replaces a restriction instead of stacking with it.
func deniedBits(p chat.PermissionSet) int64 {
	all := permissionBits(chat.ActivePermissions())
	return all &^ permissionBits(p)
}
