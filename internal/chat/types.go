package chat

import "time"

// User is the minimal identity the core needs from the platform.
type User struct {
	ID          string
	Username    string
	DisplayName string
	AvatarURL   string
	Bot         bool
}

// Member is a user inside the guild.
type Member struct {
	User
	RoleIDs       []string
	Administrator bool
	JoinedAt      time.Time
	CreatedAt     time.Time
}

// Role is a guild role, reduced to what badge rendering and
// authorization need.
type Role struct {
	ID       string
	Name     string
	Position int
	Color    int
}

// Attachment is a file attached to a message.
type Attachment struct {
	ID          string
	URL         string
	Filename    string
	ContentType string
	Size        int
}

// EmbedField is one field of a rich card.
type EmbedField struct {
	Name   string
	Value  string
	Inline bool
}

// Embed is a rich card, incoming or outgoing.
type Embed struct {
	Title         string
	Description   string
	Color         int
	ImageURL      string
	ThumbnailURL  string
	Fields        []EmbedField
	FooterText    string
	FooterIconURL string
	Timestamp     time.Time
}

// Message is one channel message as the core sees it.
type Message struct {
	ID          string
	ChannelID   string
	Author      User
	Content     string
	Timestamp   time.Time
	Attachments []Attachment
	Embeds      []Embed
	FromWebhook bool
}

// VoiceState is a member's voice status snapshot, used by the audit
// log to describe transitions.
type VoiceState struct {
	ChannelID string
	SelfMute  bool
	Mute      bool
	SelfDeaf  bool
	Deaf      bool
	Stream    bool
	Video     bool
}

// LinkButton is a plain URL button attached to an outgoing message.
type LinkButton struct {
	Label string
	URL   string
}

// ControlKind identifies an interactive control block the gateway
// attaches to an outgoing message. Rendering is platform-specific;
// the core only names the block.
type ControlKind int

const (
	ControlNone ControlKind = iota
	// ControlTicketPanel is the public category select menu.
	ControlTicketPanel
	// ControlTicketActions is the in-ticket action select menu.
	ControlTicketActions
	// ControlTerms is the accept/deny button pair.
	ControlTerms
)

// Outgoing is a message the core asks the gateway to send.
type Outgoing struct {
	Content  string
	Embed    *Embed
	Buttons  []LinkButton
	Controls ControlKind
}

// PermissionSet is the per-member capability grant the ticket
// workflow manages on a ticket channel.
type PermissionSet struct {
	ViewChannel        bool
	SendMessages       bool
	AttachFiles        bool
	EmbedLinks         bool
	ReadMessageHistory bool
}

// RestrictedPermissions lets the opener read the channel but not post
// until the terms are resolved.
func RestrictedPermissions() PermissionSet {
	return PermissionSet{ViewChannel: true, ReadMessageHistory: true}
}

// ActivePermissions grants the opener full participation after the
// terms are accepted.
func ActivePermissions() PermissionSet {
	return PermissionSet{
		ViewChannel:        true,
		SendMessages:       true,
		AttachFiles:        true,
		EmbedLinks:         true,
		ReadMessageHistory: true,
	}
}

// CreateChannelRequest describes a new ticket channel.
type CreateChannelRequest struct {
	Name         string
	ParentID     string
	Topic        string
	OpenerID     string
	OpenerPerms  PermissionSet
	StaffRoleIDs []string
}
