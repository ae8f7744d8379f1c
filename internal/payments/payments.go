// Package payments posts payment instructions inside tickets and
// marks them as paid.
package payments

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/config"
	"github.com/vhecode013/Bot-Atendimento/pkg/util"
)

const paidMarker = "💳 Payment"

// StaffChecker gates the staff-only payment commands.
type StaffChecker interface {
	IsStaff(m chat.Member) bool
}

// Service posts and updates payment embeds.
type Service struct {
	gw     chat.Gateway
	cfg    config.PaymentConfig
	staff  StaffChecker
	brand  chat.Brand
	logger *zap.Logger
}

// NewService wires the payment service.
func NewService(gw chat.Gateway, cfg config.PaymentConfig, staff StaffChecker, brand chat.Brand, logger *zap.Logger) *Service {
	return &Service{gw: gw, cfg: cfg, staff: staff, brand: brand, logger: logger}
}

// PublishPayment posts the payment card with the configured key and
// QR code. Amount falls back to the configured default. Staff only.
func (s *Service) PublishPayment(ctx context.Context, actor chat.Member, channelID, amount string) error {
	if !s.staff.IsStaff(actor) {
		return util.NewUnauthorized("only staff can post payment instructions")
	}
	if s.cfg.Key == "" {
		return util.NewUnavailable("no payment key is configured")
	}
	amount = strings.TrimSpace(amount)
	if amount == "" {
		amount = s.cfg.DefaultAmount
	}

	emb := &chat.Embed{
		Title:       paidMarker,
		Description: "Pay using the key below and **send the receipt** in this channel.\nProduction starts after the receipt is confirmed.",
		Color:       chat.ColorBlurple,
		Fields: []chat.EmbedField{
			{Name: "🔑 Key", Value: "`" + s.cfg.Key + "`", Inline: true},
		},
	}
	if amount != "" {
		emb.Fields = append(emb.Fields, chat.EmbedField{Name: "💰 Amount", Value: "`" + amount + "`", Inline: true})
	}
	emb.Fields = append(emb.Fields, chat.EmbedField{Name: "Status", Value: "⏳ Awaiting payment"})
	if s.cfg.QRCodeURL != "" {
		emb.ImageURL = s.cfg.QRCodeURL
	}

	if _, err := s.gw.Send(ctx, channelID, chat.Outgoing{Embed: s.brand.Apply(emb)}); err != nil {
		s.logger.Error("payment post failed", zap.String("channel", channelID), zap.Error(err))
		return util.NewUnavailable("could not post the payment card")
	}
	return nil
}

// ConfirmPayment finds the most recent payment card in the channel
// and flips its status to paid. Staff only.
func (s *Service) ConfirmPayment(ctx context.Context, actor chat.Member, channelID string) error {
	if !s.staff.IsStaff(actor) {
		return util.NewUnauthorized("only staff can confirm payments")
	}
	recent, err := s.gw.Recent(ctx, channelID, 50)
	if err != nil {
		return util.NewUnavailable("could not read the channel history")
	}
	bot := s.gw.BotUser()
	for _, msg := range recent {
		if msg.Author.ID != bot.ID {
			continue
		}
		for i := range msg.Embeds {
			if msg.Embeds[i].Title != paidMarker {
				continue
			}
			updated := msg.Embeds[i]
			updated.Color = chat.ColorGreen
			for j := range updated.Fields {
				if updated.Fields[j].Name == "Status" {
					updated.Fields[j].Value = fmt.Sprintf("✅ Paid, confirmed by <@%s> at <t:%d:f>", actor.ID, time.Now().Unix())
				}
			}
			if err := s.gw.EditEmbed(ctx, channelID, msg.ID, &updated); err != nil {
				s.logger.Error("payment confirmation edit failed", zap.String("message", msg.ID), zap.Error(err))
				return util.NewUnavailable("could not update the payment card")
			}
			return nil
		}
	}
	return util.NewUnavailable("no payment card found in the recent history")
}

// PriceTable posts the standing price list.
func (s *Service) PriceTable(ctx context.Context, channelID string) error {
	emb := &chat.Embed{
		Title: "💲 Price list",
		Description: strings.Join([]string{
			"**Clothing:** from $15 per piece",
			"**Accessories:** from $10",
			"**Vehicles:** from $25",
			"**Design:** from $20",
			"**Courses:** ask inside a ticket",
			"",
			"Values vary with complexity; the final quote is given in the ticket.",
		}, "\n"),
		Color: chat.ColorPurple,
	}
	_, err := s.gw.Send(ctx, channelID, chat.Outgoing{Embed: s.brand.Apply(emb)})
	return err
}

// OrderInstructions posts the how-to-order walkthrough.
func (s *Service) OrderInstructions(ctx context.Context, channelID string) error {
	emb := &chat.Embed{
		Title: "🛒 How to order",
		Description: strings.Join([]string{
			"1️⃣ Open a ticket in the panel and pick a category.",
			"2️⃣ Accept the terms of service.",
			"3️⃣ Describe what you want, with references.",
			"4️⃣ Receive the quote and pay with the posted key.",
			"5️⃣ Send the receipt and wait for delivery.",
		}, "\n"),
		Color: chat.ColorPurple,
	}
	_, err := s.gw.Send(ctx, channelID, chat.Outgoing{Embed: s.brand.Apply(emb)})
	return err
}
