package transcript

import (
	"regexp"
	"strconv"
	"time"

	"github.com/vhecode013/Bot-Atendimento/internal/chat"
)

var (
	userMentionRe    = regexp.MustCompile(`<@!?(\d+)>`)
	roleMentionRe    = regexp.MustCompile(`<@&(\d+)>`)
	channelMentionRe = regexp.MustCompile(`<#(\d+)>`)
	timestampRe      = regexp.MustCompile(`<t:(\d+):[a-zA-Z]>`)
)

const timeLayout = "02/01/2006 15:04:05"

// ResolveMentions converts encoded user/role/channel/timestamp
// placeholders to their human-readable form. A placeholder whose
// target no longer exists falls back to the raw numeric identifier.
func ResolveMentions(content string, dir chat.Directory) string {
	if content == "" {
		return ""
	}
	content = userMentionRe.ReplaceAllStringFunc(content, func(m string) string {
		id := userMentionRe.FindStringSubmatch(m)[1]
		if member, ok := dir.Member(id); ok {
			return "@" + member.DisplayName
		}
		return "@" + id
	})
	content = roleMentionRe.ReplaceAllStringFunc(content, func(m string) string {
		id := roleMentionRe.FindStringSubmatch(m)[1]
		if role, ok := dir.Role(id); ok {
			return "@" + role.Name
		}
		return "@&" + id
	})
	content = channelMentionRe.ReplaceAllStringFunc(content, func(m string) string {
		id := channelMentionRe.FindStringSubmatch(m)[1]
		if name, ok := dir.ChannelName(id); ok {
			return "#" + name
		}
		return "#" + id
	})
	content = timestampRe.ReplaceAllStringFunc(content, func(m string) string {
		raw := timestampRe.FindStringSubmatch(m)[1]
		unix, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return m
		}
		return time.Unix(unix, 0).UTC().Format(timeLayout)
	})
	return content
}
