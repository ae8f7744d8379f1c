package discord

import (
	"testing"

	"github.com/bwmarrin/discordgo"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
	"github.com/vhecode013/Bot-Atendimento/internal/ticket"
)

func TestBuildComponentsPanel(t *testing.T) {
	rows := buildComponents(chat.Outgoing{Controls: chat.ControlTicketPanel})
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(rows))
	}
	row, ok := rows[0].(discordgo.ActionsRow)
	if !ok {
		t.Fatalf("row type = %T, want ActionsRow", rows[0])
	}
	menu, ok := row.Components[0].(discordgo.SelectMenu)
	if !ok {
		t.Fatalf("component type = %T, want SelectMenu", row.Components[0])
	}
	if menu.CustomID != customIDPanelSelect {
		t.Errorf("CustomID = %q, want %q", menu.CustomID, customIDPanelSelect)
	}
	if len(menu.Options) != len(ticket.CategoryOptions()) {
		t.Errorf("options = %d, want one per category", len(menu.Options))
	}
}

func TestBuildComponentsTermsAndButtons(t *testing.T) {
	rows := buildComponents(chat.Outgoing{
		Controls: chat.ControlTerms,
		Buttons:  []chat.LinkButton{{Label: "Open Transcript", URL: "https://example.test/t.html"}},
	})
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want control row plus button row", len(rows))
	}

	terms := rows[0].(discordgo.ActionsRow)
	if len(terms.Components) != 2 {
		t.Fatalf("terms buttons = %d, want accept and deny", len(terms.Components))
	}
	accept := terms.Components[0].(discordgo.Button)
	if accept.CustomID != customIDTermsAccept || accept.Style != discordgo.SuccessButton {
		t.Errorf("accept button = %+v, want success style with %q", accept, customIDTermsAccept)
	}

	links := rows[1].(discordgo.ActionsRow)
	link := links.Components[0].(discordgo.Button)
	if link.Style != discordgo.LinkButton || link.URL == "" {
		t.Errorf("link button = %+v, want link style with a URL", link)
	}
}

func TestBuildComponentsNone(t *testing.T) {
	if rows := buildComponents(chat.Outgoing{Content: "plain"}); len(rows) != 0 {
		t.Fatalf("rows = %d, want none for a plain message", len(rows))
	}
}

func TestDisableComponents(t *testing.T) {
	in := []discordgo.MessageComponent{
		&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			&discordgo.Button{Label: "Accept", CustomID: customIDTermsAccept},
			&discordgo.SelectMenu{CustomID: customIDActionsSelect},
		}},
	}
	out := disableComponents(in)

	row := out[0].(discordgo.ActionsRow)
	if b := row.Components[0].(discordgo.Button); !b.Disabled {
		t.Error("button not disabled")
	}
	if m := row.Components[1].(discordgo.SelectMenu); !m.Disabled {
		t.Error("select menu not disabled")
	}
	// The original tree is untouched.
	if in[0].(*discordgo.ActionsRow).Components[0].(*discordgo.Button).Disabled {
		t.Error("input component mutated")
	}
}
