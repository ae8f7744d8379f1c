package discord

import (
	"github.com/bwmarrin/discordgo"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/ticket"
)

// Component custom IDs. The interaction router matches on these.
const (
	customIDPanelSelect   = "ticket_panel_select"
	customIDActionsSelect = "ticket_actions_select"
	customIDTermsAccept   = "terms_accept"
	customIDTermsDeny     = "terms_deny"

	modalIDSubjectPrefix = "ticket_subject:"
	modalIDAdd           = "ticket_add"
	modalIDRemove        = "ticket_remove"
	modalIDClose         = "ticket_close"
)

// Action menu values.
const (
	actionAdd     = "add"
	actionRemove  = "remove"
	actionNotify  = "notify"
	actionPayment = "payment"
	actionClose   = "close"
)

// buildComponents renders the outgoing message's link buttons and
// control block into component rows.
func buildComponents(out chat.Outgoing) []discordgo.MessageComponent {
	var rows []discordgo.MessageComponent
	if row := controlRow(out.Controls); row != nil {
		rows = append(rows, row)
	}
	if len(out.Buttons) > 0 {
		var buttons []discordgo.MessageComponent
		for _, b := range out.Buttons {
			buttons = append(buttons, discordgo.Button{
				Label: b.Label,
				Style: discordgo.LinkButton,
				URL:   b.URL,
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func controlRow(kind chat.ControlKind) discordgo.MessageComponent {
	switch kind {
	case chat.ControlTicketPanel:
		var options []discordgo.SelectMenuOption
		for _, opt := range ticket.CategoryOptions() {
			options = append(options, discordgo.SelectMenuOption{
				Label:       opt.Label,
				Value:       opt.Key,
				Description: opt.Description,
			})
		}
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customIDPanelSelect,
				Placeholder: "Pick a category to open a ticket",
				Options:     options,
			},
		}}

	case chat.ControlTicketActions:
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.SelectMenu{
				CustomID:    customIDActionsSelect,
				Placeholder: "Manage this ticket",
				Options: []discordgo.SelectMenuOption{
					{Label: "Add member", Value: actionAdd, Description: "Grant someone access to this ticket."},
					{Label: "Remove member", Value: actionRemove, Description: "Revoke someone's access."},
					{Label: "Notify requester", Value: actionNotify, Description: "DM the ticket author."},
					{Label: "Payment", Value: actionPayment, Description: "Post the payment instructions."},
					{Label: "Close ticket", Value: actionClose, Description: "Archive and delete this channel."},
				},
			},
		}}

	case chat.ControlTerms:
		return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: "Accept", Style: discordgo.SuccessButton, CustomID: customIDTermsAccept},
			discordgo.Button{Label: "Decline", Style: discordgo.DangerButton, CustomID: customIDTermsDeny},
		}}
	}
	return nil
}
