package domain

// RoleBadge is the styled label rendered next to an author's name,
// derived from the author's highest-positioned role.
type RoleBadge struct {
	Name string
	// Color is a "#rrggbb" string.
	Color string
}

// TranscriptAttachment is one attachment reference in a record.
// Rehosted is true when the file was copied to the remote store and
// URL points there; otherwise URL is the original, possibly
// ephemeral, platform link.
type TranscriptAttachment struct {
	URL      string
	Rehosted bool
}

// CardField is one field of a flattened rich card.
type CardField struct {
	Name   string
	Value  string
	Inline bool
}

// Card is a rich card (embed) flattened for rendering. Color is a
// "#rrggbb" string. Every field is independently optional.
type Card struct {
	Title        string
	Description  string
	Color        string
	ImageURL     string
	ThumbnailURL string
	Fields       []CardField
	FooterText   string
	FooterIcon   string
}

// TranscriptRecord is one normalized chat message, built once by the
// history collector and consumed once by the archive renderer.
type TranscriptRecord struct {
	Author      string
	Timestamp   string
	AvatarURL   string
	Badge       *RoleBadge
	Body        string
	Attachments []TranscriptAttachment
	Cards       []Card
}
