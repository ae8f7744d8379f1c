package transcript

import (
	"testing"
	"time"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
)

type fakeDirectory struct {
	members  map[string]chat.Member
	roles    map[string]chat.Role
	channels map[string]string
}

func (d *fakeDirectory) Member(userID string) (chat.Member, bool) {
	m, ok := d.members[userID]
	return m, ok
}

func (d *fakeDirectory) Role(roleID string) (chat.Role, bool) {
	r, ok := d.roles[roleID]
	return r, ok
}

func (d *fakeDirectory) ChannelName(channelID string) (string, bool) {
	n, ok := d.channels[channelID]
	return n, ok
}

func (d *fakeDirectory) ChannelURL(channelID string) string { return "" }

func (d *fakeDirectory) RoleMembers(roleID string) []chat.Member { return nil }

func (d *fakeDirectory) GuildIconURL() string { return "" }

func (d *fakeDirectory) BotUser() chat.User { return chat.User{} }

func (d *fakeDirectory) MemberCount() int { return 0 }

func testDirectory() *fakeDirectory {
	return &fakeDirectory{
		members: map[string]chat.Member{
			"111": {User: chat.User{ID: "111", Username: "alice", DisplayName: "Alice"}},
		},
		roles: map[string]chat.Role{
			"222": {ID: "222", Name: "Staff"},
		},
		channels: map[string]string{
			"333": "general",
		},
	}
}

func TestResolveMentions(t *testing.T) {
	dir := testDirectory()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"user", "hi <@111>", "hi @Alice"},
		{"user nick form", "hi <@!111>", "hi @Alice"},
		{"role", "ping <@&222> please", "ping @Staff please"},
		{"channel", "see <#333>", "see #general"},
		{"mixed", "<@111> in <#333> for <@&222>", "@Alice in #general for @Staff"},
		{"plain text untouched", "no mentions here", "no mentions here"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResolveMentions(tt.in, dir); got != tt.want {
				t.Errorf("ResolveMentions(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolveMentionsFallsBackToIDs(t *testing.T) {
	dir := &fakeDirectory{}

	tests := []struct {
		in   string
		want string
	}{
		{"<@999>", "@999"},
		{"<@&999>", "@&999"},
		{"<#999>", "#999"},
	}
	for _, tt := range tests {
		if got := ResolveMentions(tt.in, dir); got != tt.want {
			t.Errorf("ResolveMentions(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestResolveMentionsTimestamps(t *testing.T) {
	dir := testDirectory()
	at := time.Date(2025, 3, 15, 18, 30, 0, 0, time.UTC)

	in := "<t:" + "1742063400" + ":f>"
	want := at.UTC().Format("02/01/2006 15:04:05")
	if got := ResolveMentions(in, dir); got != want {
		t.Errorf("ResolveMentions(%q) = %q, want %q", in, got, want)
	}
}
