package payments

import (
	"context"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
)

type fakeChannel struct {
	sent    []chat.Outgoing
	recent  []chat.Message
	edits   map[string]*chat.Embed
	editErr error
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{edits: make(map[string]*chat.Embed)}
}

func (g *fakeChannel) Member(userID string) (chat.Member, bool) { return chat.Member{}, false }

func (g *fakeChannel) Role(roleID string) (chat.Role, bool) { return chat.Role{}, false }

func (g *fakeChannel) ChannelName(channelID string) (string, bool) { return "", false }

func (g *fakeChannel) ChannelURL(channelID string) string { return "" }

func (g *fakeChannel) RoleMembers(roleID string) []chat.Member { return nil }

func (g *fakeChannel) GuildIconURL() string { return "" }

func (g *fakeChannel) BotUser() chat.User { return chat.User{ID: "bot", Bot: true} }

func (g *fakeChannel) MemberCount() int { return 0 }

func (g *fakeChannel) MessagesAfter(ctx context.Context, channelID, afterID string, limit int) ([]chat.Message, error) {
	return nil, nil
}

func (g *fakeChannel) Recent(ctx context.Context, channelID string, limit int) ([]chat.Message, error) {
	return g.recent, nil
}

func (g *fakeChannel) Send(ctx context.Context, channelID string, out chat.Outgoing) (string, error) {
	g.sent = append(g.sent, out)
	return "msg-1", nil
}

func (g *fakeChannel) SendDM(ctx context.Context, userID string, out chat.Outgoing) error { return nil }

func (g *fakeChannel) EditEmbed(ctx context.Context, channelID, messageID string, embed *chat.Embed) error {
	if g.editErr != nil {
		return g.editErr
	}
	g.edits[messageID] = embed
	return nil
}

func (g *fakeChannel) AddRole(ctx context.Context, userID, roleID, reason string) error { return nil }

func (g *fakeChannel) CreateTicketChannel(ctx context.Context, req chat.CreateChannelRequest) (string, error) {
	return "", nil
}

func (g *fakeChannel) SetMemberPermissions(ctx context.Context, channelID, userID string, perms chat.PermissionSet) error {
	return nil
}

func (g *fakeChannel) ClearMemberPermissions(ctx context.Context, channelID, userID string) error {
	return nil
}

func (g *fakeChannel) DeleteChannel(ctx context.Context, channelID, reason string) error { return nil }

func (g *fakeChannel) DisableControls(ctx context.Context, channelID, messageID string) error {
	return nil
}

type staffAll struct{ staff bool }

func (s staffAll) IsStaff(m chat.Member) bool { return s.staff }

func paymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		Key:           "payment-key-123",
		QRCodeURL:     "https://cdn.example.test/qr.png",
		DefaultAmount: "$50",
	}
}

func TestPublishPayment(t *testing.T) {
	gw := newFakeChannel()
	s := NewService(gw, paymentConfig(), staffAll{true}, chat.Brand{}, zap.NewNop())

	if err := s.PublishPayment(context.Background(), chat.Member{}, "chan", ""); err != nil {
		t.Fatalf("PublishPayment returned error: %v", err)
	}
	if len(gw.sent) != 1 {
		t.Fatalf("posts = %d, want 1", len(gw.sent))
	}
	emb := gw.sent[0].Embed
	if emb.ImageURL != "https://cdn.example.test/qr.png" {
		t.Errorf("ImageURL = %q, want the QR code", emb.ImageURL)
	}

	var key, amount, status bool
	for _, f := range emb.Fields {
		switch {
		case strings.Contains(f.Value, "payment-key-123"):
			key = true
		case strings.Contains(f.Value, "$50"):
			amount = true
		case f.Name == "Status":
			status = true
		}
	}
	if !key || !amount || !status {
		t.Errorf("fields missing data: key=%v amount=%v status=%v", key, amount, status)
	}
}

func TestPublishPaymentGates(t *testing.T) {
	gw := newFakeChannel()
	s := NewService(gw, paymentConfig(), staffAll{false}, chat.Brand{}, zap.NewNop())
	if err := s.PublishPayment(context.Background(), chat.Member{}, "chan", ""); err == nil {
		t.Fatal("non-staff posted payment instructions")
	}

	s = NewService(gw, config.PaymentConfig{}, staffAll{true}, chat.Brand{}, zap.NewNop())
	if err := s.PublishPayment(context.Background(), chat.Member{}, "chan", ""); err == nil {
		t.Fatal("payment posted without a configured key")
	}
}

func TestConfirmPayment(t *testing.T) {
	gw := newFakeChannel()
	gw.recent = []chat.Message{
		{ID: "m3", Author: chat.User{ID: "u1"}, Content: "thanks"},
		{ID: "m2", Author: chat.User{ID: "bot"}, Embeds: []chat.Embed{{
			Title:  paidMarker,
			Fields: []chat.EmbedField{{Name: "Status", Value: "⏳ Awaiting payment"}},
		}}},
	}
	s := NewService(gw, paymentConfig(), staffAll{true}, chat.Brand{}, zap.NewNop())

	if err := s.ConfirmPayment(context.Background(), chat.Member{User: chat.User{ID: "staff-1"}}, "chan"); err != nil {
		t.Fatalf("ConfirmPayment returned error: %v", err)
	}
	edited, ok := gw.edits["m2"]
	if !ok {
		t.Fatal("payment card was not edited")
	}
	if edited.Color != chat.ColorGreen {
		t.Errorf("edited color = %#x, want green", edited.Color)
	}
	if !strings.Contains(edited.Fields[0].Value, "Paid") {
		t.Errorf("status field = %q, want paid marker", edited.Fields[0].Value)
	}
}

func TestConfirmPaymentNoCard(t *testing.T) {
	gw := newFakeChannel()
	gw.recent = []chat.Message{{ID: "m1", Author: chat.User{ID: "u1"}, Content: "hello"}}
	s := NewService(gw, paymentConfig(), staffAll{true}, chat.Brand{}, zap.NewNop())
	if err := s.ConfirmPayment(context.Background(), chat.Member{}, "chan"); err == nil {
		t.Fatal("confirmation succeeded with no payment card in history")
	}
}
