package transcript

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
)

type fakeHistory struct {
	pages map[string][]chat.Message
}

func (h *fakeHistory) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]chat.Message, error) {
	return h.pages[afterID], nil
}

func (h *fakeHistory) Recent(ctx context.Context, channelID string, limit int) ([]chat.Message, error) {
	return nil, nil
}

type fakeFetcher struct {
	data map[string][]byte
}

func (f *fakeFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if d, ok := f.data[url]; ok {
		return d, nil
	}
	return nil, errors.New("not found")
}

type captureUploader struct {
	uploads []string
	err     error
}

func (u *captureUploader) Upload(ctx context.Context, localPath, remoteName string) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.uploads = append(u.uploads, remoteName)
	return "https://files.example.test/transcripts/" + remoteName, nil
}

func newTestCollector(h *fakeHistory, dir chat.Directory, pub *captureUploader, f *fakeFetcher) *Collector {
	var c *Collector
	if pub != nil {
		c = NewCollector(h, dir, pub, f, zap.NewNop())
	} else {
		c = NewCollector(h, dir, nil, f, zap.NewNop())
	}
	c.BatchPause = 0
	return c
}

func TestCollectSuppressesEmptyBotMessages(t *testing.T) {
	history := &fakeHistory{pages: map[string][]chat.Message{
		"": {
			{ID: "1", Author: chat.User{ID: "u1", Username: "alice"}, Content: "hello"},
			{ID: "2", Author: chat.User{ID: "bot", Username: "bot", Bot: true}},
			{ID: "3", Author: chat.User{ID: "bot", Username: "bot", Bot: true}, Embeds: []chat.Embed{{Title: "card"}}},
		},
	}}
	c := newTestCollector(history, &fakeDirectory{}, nil, &fakeFetcher{})

	records, err := c.Collect(context.Background(), "chan")
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records = %d, want 2 (empty bot message suppressed)", len(records))
	}
	if len(records[1].Cards) != 1 {
		t.Fatal("bot message with a card was dropped")
	}
}

func TestCollectBadgeSelection(t *testing.T) {
	dir := &fakeDirectory{
		members: map[string]chat.Member{
			"u1": {User: chat.User{ID: "u1", Username: "alice"}, RoleIDs: []string{"low", "high"}},
			"u2": {User: chat.User{ID: "u2", Username: "bob"}, RoleIDs: []string{"tie-a", "tie-b"}},
		},
		roles: map[string]chat.Role{
			"low":   {ID: "low", Name: "Member", Position: 1, Color: 0x00FF00},
			"high":  {ID: "high", Name: "Admin", Position: 5, Color: 0xFF0000},
			"tie-a": {ID: "tie-a", Name: "First", Position: 3},
			"tie-b": {ID: "tie-b", Name: "Second", Position: 3},
		},
	}
	history := &fakeHistory{pages: map[string][]chat.Message{
		"": {
			{ID: "1", Author: chat.User{ID: "u1", Username: "alice"}, Content: "hi"},
			{ID: "2", Author: chat.User{ID: "u2", Username: "bob"}, Content: "yo"},
			{ID: "3", Author: chat.User{ID: "unknown", Username: "ghost"}, Content: "boo"},
		},
	}}
	c := newTestCollector(history, dir, nil, &fakeFetcher{})

	records, err := c.Collect(context.Background(), "chan")
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}

	if records[0].Badge == nil || records[0].Badge.Name != "Admin" {
		t.Fatalf("badge for u1 = %+v, want the highest role Admin", records[0].Badge)
	}
	if records[0].Badge.Color != "#ff0000" {
		t.Fatalf("badge color = %q, want #ff0000", records[0].Badge.Color)
	}
	// Position tie resolves toward the greater role ID.
	if records[1].Badge == nil || records[1].Badge.Name != "Second" {
		t.Fatalf("badge for u2 = %+v, want Second on the tie-break", records[1].Badge)
	}
	if records[1].Badge.Color != "#b9bbbe" {
		t.Fatalf("colorless role badge = %q, want the neutral tone", records[1].Badge.Color)
	}
	if records[2].Badge != nil {
		t.Fatalf("badge for an unknown member = %+v, want nil", records[2].Badge)
	}
}

func TestCollectRehostsImages(t *testing.T) {
	fetcher := &fakeFetcher{data: map[string][]byte{
		"https://cdn.example.test/pic.png": []byte("png-bytes"),
	}}
	pub := &captureUploader{}
	history := &fakeHistory{pages: map[string][]chat.Message{
		"": {
			{ID: "1", Author: chat.User{ID: "u1", Username: "alice"}, Attachments: []chat.Attachment{
				{ID: "a1", URL: "https://cdn.example.test/pic.png", Filename: "pic.png", ContentType: "image/png"},
				{ID: "a2", URL: "https://cdn.example.test/notes.pdf", Filename: "notes.pdf", ContentType: "application/pdf"},
				{ID: "a3", URL: "https://cdn.example.test/gone.jpg", Filename: "gone.jpg", ContentType: "image/jpeg"},
			}},
		},
	}}
	c := newTestCollector(history, &fakeDirectory{}, pub, fetcher)

	records, err := c.Collect(context.Background(), "chan")
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	atts := records[0].Attachments
	if len(atts) != 3 {
		t.Fatalf("attachments = %d, want 3", len(atts))
	}

	if !atts[0].Rehosted {
		t.Fatal("image attachment was not re-hosted")
	}
	if len(pub.uploads) != 1 || pub.uploads[0] != "att_a1_pic.png" {
		t.Fatalf("uploads = %v, want [att_a1_pic.png]", pub.uploads)
	}
	if atts[1].Rehosted || atts[1].URL != "https://cdn.example.test/notes.pdf" {
		t.Fatalf("non-image attachment was altered: %+v", atts[1])
	}
	// Fetch failure keeps the original link.
	if atts[2].Rehosted || atts[2].URL != "https://cdn.example.test/gone.jpg" {
		t.Fatalf("failed mirror should keep original link, got %+v", atts[2])
	}
}

func TestCollectAuthorAndTimestamp(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	history := &fakeHistory{pages: map[string][]chat.Message{
		"": {
			{ID: "1", Author: chat.User{ID: "u1", Username: "alice", DisplayName: "Alice"}, Content: "hi", Timestamp: at},
			{ID: "2", Author: chat.User{ID: "u2", Username: "bob"}, Content: "yo", Timestamp: at},
		},
	}}
	c := newTestCollector(history, &fakeDirectory{}, nil, &fakeFetcher{})

	records, err := c.Collect(context.Background(), "chan")
	if err != nil {
		t.Fatalf("Collect returned error: %v", err)
	}
	if records[0].Author != "Alice" {
		t.Fatalf("Author = %q, want the display name", records[0].Author)
	}
	if records[1].Author != "bob" {
		t.Fatalf("Author = %q, want the username fallback", records[1].Author)
	}
	if records[0].Timestamp != "01/06/2025 12:30:45" {
		t.Fatalf("Timestamp = %q, want 01/06/2025 12:30:45", records[0].Timestamp)
	}
	if records[0].AvatarURL == "" {
		t.Fatal("AvatarURL is empty, want the fallback avatar")
	}
}
