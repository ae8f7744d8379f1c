package transcript

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/domain"
	"github.com/vhecode013/Bot-Atendimento/internal/publisher"
)

const (
	historyPageSize = 100
	neutralBadge    = "#b9bbbe"
	defaultCardTint = "#5865F2"
	fallbackAvatar  = "https://cdn.discordapp.com/embed/avatars/0.png"
)

// Collector walks a channel's full message history oldest-first and
// projects every message into a TranscriptRecord. Per-element
// failures degrade that element, never the walk.
type Collector struct {
	history chat.History
	dir     chat.Directory
	pub     publisher.Publisher
	fetcher ImageFetcher
	logger  *zap.Logger

	// BatchPause is the pacing pause inserted after each history page
	// to avoid overwhelming the re-hosting step.
	BatchPause time.Duration
}

// NewCollector builds a collector. pub may be nil; attachments then
// keep their original links.
func NewCollector(history chat.History, dir chat.Directory, pub publisher.Publisher, fetcher ImageFetcher, logger *zap.Logger) *Collector {
	return &Collector{
		history:    history,
		dir:        dir,
		pub:        pub,
		fetcher:    fetcher,
		logger:     logger,
		BatchPause: 800 * time.Millisecond,
	}
}

// Collect reads the entire channel history in creation order and
// returns the normalized records, oldest first.
func (c *Collector) Collect(ctx context.Context, channelID string) ([]domain.TranscriptRecord, error) {
	var records []domain.TranscriptRecord
	avatarCache := make(map[string]string)

	afterID := ""
	for {
		page, err := c.history.MessagesAfter(ctx, channelID, afterID, historyPageSize)
		if err != nil {
			return records, err
		}
		if len(page) == 0 {
			break
		}
		for _, msg := range page {
			if isNoise(msg) {
				continue
			}
			records = append(records, c.normalize(ctx, msg, avatarCache))
		}
		afterID = page[len(page)-1].ID
		if len(page) < historyPageSize {
			break
		}
		if c.BatchPause > 0 {
			select {
			case <-ctx.Done():
				return records, ctx.Err()
			case <-time.After(c.BatchPause):
			}
		}
	}
	return records, nil
}

// isNoise suppresses bot-authored messages that carry no text, cards
// or attachments.
func isNoise(msg chat.Message) bool {
	return msg.Author.Bot && msg.Content == "" && len(msg.Embeds) == 0 && len(msg.Attachments) == 0
}

func (c *Collector) normalize(ctx context.Context, msg chat.Message, avatarCache map[string]string) domain.TranscriptRecord {
	avatar, ok := avatarCache[msg.Author.ID]
	if !ok {
		avatar = msg.Author.AvatarURL
		if avatar == "" {
			avatar = fallbackAvatar
		}
		avatarCache[msg.Author.ID] = avatar
	}

	author := msg.Author.DisplayName
	if author == "" {
		author = msg.Author.Username
	}

	rec := domain.TranscriptRecord{
		Author:    author,
		Timestamp: msg.Timestamp.Format(timeLayout),
		AvatarURL: avatar,
		Badge:     c.badge(msg.Author.ID),
		Body:      ResolveMentions(msg.Content, c.dir),
	}

	for _, att := range msg.Attachments {
		rec.Attachments = append(rec.Attachments, c.classifyAttachment(ctx, att))
	}
	for _, emb := range msg.Embeds {
		rec.Cards = append(rec.Cards, flattenCard(emb))
	}
	return rec
}

// badge picks the author's highest-positioned role and derives the
// badge color from it. Position ties break on role ID so the pick is
// deterministic.
func (c *Collector) badge(userID string) *domain.RoleBadge {
	member, ok := c.dir.Member(userID)
	if !ok {
		return nil
	}
	var top *chat.Role
	for _, rid := range member.RoleIDs {
		role, ok := c.dir.Role(rid)
		if !ok {
			continue
		}
		if top == nil || role.Position > top.Position ||
			(role.Position == top.Position && role.ID > top.ID) {
			r := role
			top = &r
		}
	}
	if top == nil {
		return nil
	}
	color := neutralBadge
	if top.Color != 0 {
		color = fmt.Sprintf("#%06x", top.Color)
	}
	return &domain.RoleBadge{Name: top.Name, Color: color}
}

// classifyAttachment re-hosts image attachments on the remote store
// and keeps original links for everything else. Any failure keeps the
// original link.
func (c *Collector) classifyAttachment(ctx context.Context, att chat.Attachment) domain.TranscriptAttachment {
	isImage := (att.ContentType != "" && len(att.ContentType) >= 5 && att.ContentType[:5] == "image") || IsImage(att.Filename)
	if !isImage || c.pub == nil {
		return domain.TranscriptAttachment{URL: att.URL}
	}

	url, err := c.mirror(ctx, att)
	if err != nil {
		c.logger.Warn("attachment mirror failed, keeping original link",
			zap.String("filename", att.Filename), zap.Error(err))
		return domain.TranscriptAttachment{URL: att.URL}
	}
	return domain.TranscriptAttachment{URL: url, Rehosted: true}
}

func (c *Collector) mirror(ctx context.Context, att chat.Attachment) (string, error) {
	data, err := c.fetcher.Fetch(ctx, att.URL)
	if err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp("", "att_*"+SafeImageExt(att.Filename))
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return c.pub.Upload(ctx, tmp.Name(), fmt.Sprintf("att_%s_%s", att.ID, att.Filename))
}

func flattenCard(emb chat.Embed) domain.Card {
	tint := defaultCardTint
	if emb.Color != 0 {
		tint = fmt.Sprintf("#%06x", emb.Color)
	}
	card := domain.Card{
		Title:        emb.Title,
		Description:  emb.Description,
		Color:        tint,
		ImageURL:     emb.ImageURL,
		ThumbnailURL: emb.ThumbnailURL,
		FooterText:   emb.FooterText,
		FooterIcon:   emb.FooterIconURL,
	}
	for _, f := range emb.Fields {
		card.Fields = append(card.Fields, domain.CardField{Name: f.Name, Value: f.Value, Inline: f.Inline})
	}
	return card
}
