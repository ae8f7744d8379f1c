// Package chat defines the capability boundary between the core and
// the platform SDK. The core depends only on these contracts; the
// real gateway objects are adapted to them in chat/discord.
package chat

import "context"

// Directory resolves guild entities by identifier. Lookups return
// false when the entity no longer exists; callers fall back to the
// raw identifier.
type Directory interface {
	Member(userID string) (Member, bool)
	Role(roleID string) (Role, bool)
	ChannelName(channelID string) (string, bool)
	// ChannelURL returns the jump link for a channel.
	ChannelURL(channelID string) string
	// RoleMembers lists the current members holding a role.
	RoleMembers(roleID string) []Member
	// GuildIconURL returns the community icon, or "" when unset.
	GuildIconURL() string
	// BotUser identifies the bot's own account.
	BotUser() User
	// MemberCount reports the guild's member total.
	MemberCount() int
}

// History reads a channel's message history.
type History interface {
	// MessagesAfter returns up to limit messages strictly after
	// afterID in chronological order. An empty afterID starts at the
	// beginning of the channel.
	MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]Message, error)
	// Recent returns up to limit of the channel's newest messages,
	// newest first.
	Recent(ctx context.Context, channelID string, limit int) ([]Message, error)
}

// Messenger sends messages on behalf of the bot. Sends are
// best-effort single attempts; callers decide whether a failure
// matters.
type Messenger interface {
	// Send posts to a channel and returns the new message's ID.
	Send(ctx context.Context, channelID string, out Outgoing) (string, error)
	SendDM(ctx context.Context, userID string, out Outgoing) error
	// EditEmbed replaces the embed of a previously sent message.
	EditEmbed(ctx context.Context, channelID, messageID string, embed *Embed) error
}

// RoleAssigner grants guild roles.
type RoleAssigner interface {
	AddRole(ctx context.Context, userID, roleID, reason string) error
}

// ChannelAdmin mutates ticket channels.
type ChannelAdmin interface {
	CreateTicketChannel(ctx context.Context, req CreateChannelRequest) (string, error)
	SetMemberPermissions(ctx context.Context, channelID, userID string, perms PermissionSet) error
	ClearMemberPermissions(ctx context.Context, channelID, userID string) error
	DeleteChannel(ctx context.Context, channelID, reason string) error
	// DisableControls greys out the interactive block on a previously
	// sent message (the terms buttons after resolution).
	DisableControls(ctx context.Context, channelID, messageID string) error
}

// Gateway bundles everything the ticket workflow needs from the
// platform connection.
type Gateway interface {
	Directory
	History
	Messenger
	ChannelAdmin
	RoleAssigner
}
