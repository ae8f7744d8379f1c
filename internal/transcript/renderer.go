package transcript

import (
	"context"
	"encoding/base64"
	"fmt"
	"html"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/domain"
)

// Renderer turns an ordered list of TranscriptRecord into one
// self-contained HTML document. Stateless: the same records yield the
// same structural output, modulo the generation timestamp line.
type Renderer struct {
	fetcher ImageFetcher
	logger  *zap.Logger
}

// NewRenderer builds a renderer.
func NewRenderer(fetcher ImageFetcher, logger *zap.Logger) *Renderer {
	return &Renderer{fetcher: fetcher, logger: logger}
}

// Render produces the archive document. Every image reference is
// inlined as base64 data when it can be fetched; otherwise the
// original link is kept. Missing optional fields are skipped, never
// errors.
func (r *Renderer) Render(ctx context.Context, channelName string, records []domain.TranscriptRecord, headerImage string) string {
	generatedAt := time.Now().Format(timeLayout)
	headerSrc := r.inline(ctx, headerImage)

	var msgs strings.Builder
	for _, rec := range records {
		r.renderRecord(ctx, &msgs, rec)
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"UTF-8\" />\n")
	fmt.Fprintf(&b, "<title>Transcript — %s</title>\n", escape(channelName))
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width,initial-scale=1\" />\n")
	b.WriteString("<style>" + transcriptCSS + "</style>\n</head>\n<body>\n<header>\n")
	fmt.Fprintf(&b, "  <img src=\"%s\" alt=\"logo\">\n", headerSrc)
	fmt.Fprintf(&b, "  <h1>Transcript — 💬 • %s</h1>\n", escape(channelName))
	fmt.Fprintf(&b, "  <p>Generated at %s</p>\n", generatedAt)
	b.WriteString("</header>\n<div class=\"chatlog\">\n")
	b.WriteString(msgs.String())
	b.WriteString("</div>\n<footer>Automated transcript archive</footer>\n</body>\n</html>")
	return b.String()
}

func (r *Renderer) renderRecord(ctx context.Context, b *strings.Builder, rec domain.TranscriptRecord) {
	avatar := r.inline(ctx, rec.AvatarURL)

	b.WriteString("<div class=\"msg\">\n")
	fmt.Fprintf(b, "  <div class=\"avatar\"><img src=\"%s\" alt=\"avatar\"></div>\n", avatar)
	b.WriteString("  <div class=\"msg-body\">\n    <div class=\"msg-header\">\n")
	fmt.Fprintf(b, "      <span class=\"author\">%s</span>\n", escape(rec.Author))
	if rec.Badge != nil {
		fmt.Fprintf(b,
			"      <span class=\"role\" style=\"color:%[1]s;background-color:%[1]s22;border:1px solid %[1]s55;\">%[2]s</span>\n",
			rec.Badge.Color, escape(rec.Badge.Name))
	}
	fmt.Fprintf(b, "      <span class=\"timestamp\">%s</span>\n    </div>\n", escape(rec.Timestamp))

	if body := markupLite(rec.Body); body != "" {
		fmt.Fprintf(b, "    <div class=\"text\">%s</div>\n", body)
	}
	for _, card := range rec.Cards {
		r.renderCard(ctx, b, card)
	}
	for _, att := range rec.Attachments {
		r.renderAttachment(ctx, b, att)
	}
	b.WriteString("  </div>\n</div>\n")
}

func (r *Renderer) renderCard(ctx context.Context, b *strings.Builder, card domain.Card) {
	tint := card.Color
	if tint == "" {
		tint = defaultCardTint
	}
	fmt.Fprintf(b, "    <div class=\"embed\" style=\"border-left:4px solid %s;\">\n", tint)
	if card.Title != "" {
		fmt.Fprintf(b, "      <div class=\"emb-title\">%s</div>\n", markupLite(card.Title))
	}
	if card.Description != "" {
		fmt.Fprintf(b, "      <div class=\"emb-desc\">%s</div>\n", markupLite(card.Description))
	}
	if len(card.Fields) > 0 {
		b.WriteString("      <div class=\"emb-fields\">\n")
		for _, f := range card.Fields {
			class := "emb-field"
			if f.Inline {
				class += " inline"
			}
			fmt.Fprintf(b, "        <div class=\"%s\"><div class=\"f-name\">%s</div><div class=\"f-val\">%s</div></div>\n",
				class, markupLite(f.Name), markupLite(f.Value))
		}
		b.WriteString("      </div>\n")
	}
	if card.ThumbnailURL != "" {
		fmt.Fprintf(b, "      <img src=\"%s\" alt=\"thumb\" class=\"emb-thumb\">\n", escape(card.ThumbnailURL))
	}
	if card.ImageURL != "" && IsImage(card.ImageURL) {
		fmt.Fprintf(b, "      <img src=\"%s\" alt=\"embed image\" class=\"emb-image\">\n", r.inline(ctx, card.ImageURL))
	}
	if card.FooterText != "" || card.FooterIcon != "" {
		icon := ""
		if card.FooterIcon != "" && IsImage(card.FooterIcon) {
			icon = fmt.Sprintf("<img src=\"%s\" class=\"footer-icon\">", escape(card.FooterIcon))
		}
		fmt.Fprintf(b, "      <div class=\"emb-footer\">%s%s</div>\n", icon, escape(card.FooterText))
	}
	b.WriteString("    </div>\n")
}

func (r *Renderer) renderAttachment(ctx context.Context, b *strings.Builder, att domain.TranscriptAttachment) {
	switch {
	case IsImage(att.URL):
		fmt.Fprintf(b, "    <div class=\"att\"><img src=\"%s\" alt=\"image\" loading=\"lazy\"/></div>\n", r.inline(ctx, att.URL))
	case IsVideo(att.URL):
		fmt.Fprintf(b, "    <div class=\"att\"><video controls playsinline preload=\"metadata\"><source src=\"%s\" type=\"video/mp4\"></video></div>\n", escape(att.URL))
	case IsAudio(att.URL):
		fmt.Fprintf(b, "    <div class=\"att\"><audio controls src=\"%s\"></audio></div>\n", escape(att.URL))
	default:
		name := att.URL
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		fmt.Fprintf(b, "    <div class=\"file-card\"><div class=\"file-name\">%s</div><div class=\"file-btn\"><a href=\"%s\" target=\"_blank\" rel=\"noopener\">Download</a></div></div>\n",
			escape(name), escape(att.URL))
	}
}

// inline fetches an image and embeds it as a data URI; on any failure
// the original reference is kept as a plain link.
func (r *Renderer) inline(ctx context.Context, url string) string {
	if url == "" || !IsImage(url) {
		return escape(url)
	}
	data, err := r.fetcher.Fetch(ctx, url)
	if err != nil {
		r.logger.Warn("image inline failed, keeping link", zap.String("url", url), zap.Error(err))
		return escape(url)
	}
	mime := GuessMIME(url, "image/png")
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func escape(s string) string {
	return html.EscapeString(s)
}

// markupLite renders the fixed delimiter syntax: `code`, **bold**,
// *italic*, __underline__. Text is HTML-escaped before any span is
// introduced, so user text cannot inject structure.
func markupLite(text string) string {
	if text == "" {
		return ""
	}
	t := escape(text)
	t = wrapAlternate(t, "`", "<code>", "</code>")
	t = wrapAlternate(t, "**", "<strong>", "</strong>")
	t = wrapAlternate(t, "*", "<em>", "</em>")
	t = wrapAlternate(t, "__", "<u>", "</u>")
	return strings.ReplaceAll(t, "\n", "<br>")
}

// wrapAlternate treats delim as a toggle: odd segments between
// occurrences get wrapped.
func wrapAlternate(s, delim, open, close string) string {
	seg := strings.Split(s, delim)
	if len(seg) == 1 {
		return s
	}
	for i := 1; i < len(seg); i += 2 {
		seg[i] = open + seg[i] + close
	}
	return strings.Join(seg, "")
}

const transcriptCSS = `
:root {
  --bg:#2b2d31; --panel:#23272a; --card:#313338; --chip:#2f3136;
  --muted:#b5bac1; --text:#dbdee1; --title:#fff; --accent:#5865F2; --line:#202225;
}
*{box-sizing:border-box}
body{margin:0;padding:0;background:var(--bg);color:var(--text);
     font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,"Helvetica Neue",Ubuntu,Arial,"Noto Sans","Apple Color Emoji","Segoe UI Emoji";}
header{display:flex;flex-direction:column;align-items:center;gap:8px;padding:28px 16px;
       background:var(--panel);border-bottom:1px solid var(--line)}
header img{width:92px;height:92px;border-radius:50%;border:3px solid var(--accent);object-fit:cover}
header h1{margin:4px 0 0;color:var(--title);font-size:24px;font-weight:800}
header p{margin:0;color:var(--muted);font-size:13px}
.chatlog{width:92%;max-width:980px;margin:26px auto;display:flex;flex-direction:column;gap:14px}
.msg{display:flex;gap:12px;background:var(--card);border:1px solid #2b2d31;border-radius:12px;
     padding:12px 14px;box-shadow:0 6px 22px rgba(0,0,0,.25)}
.avatar img{width:42px;height:42px;border-radius:50%;border:2px solid var(--line);object-fit:cover}
.msg-body{flex:1;min-width:0}
.msg-header{display:flex;align-items:center;gap:10px;justify-content:space-between;flex-wrap:wrap}
.author{font-weight:700;color:#e6e6e6}
.timestamp{color:var(--muted);font-size:.9em}
.role{display:inline-block;font-size:12px;font-weight:600;padding:2px 6px;border-radius:5px;margin-left:6px}
.text{margin-top:6px;white-space:normal;word-break:break-word;overflow-wrap:anywhere}
.text code{background:#1f2124;border:1px solid #2a2d31;padding:2px 5px;border-radius:4px}
.embed{margin-top:8px;background:var(--chip);border:1px solid #2a2d31;border-left:4px solid var(--accent);
       border-radius:8px;padding:10px}
.emb-title{color:#fff;font-weight:700;margin-bottom:4px}
.emb-desc{color:#ddd}
.emb-fields{display:flex;flex-wrap:wrap;gap:8px;margin-top:6px}
.emb-field{flex:1 1 100%;min-width:220px;background:#2b2d31;border:1px solid #2a2d31;border-radius:6px;padding:8px}
.emb-field.inline{flex:1 1 calc(50% - 8px)}
.emb-thumb{width:120px;height:120px;object-fit:cover;border-radius:8px;border:1px solid #2a2d31}
.emb-image{max-width:100%;height:auto;border-radius:8px;border:1px solid #2a2d31;margin-top:8px}
.footer-icon{width:16px;height:16px;border-radius:4px;vertical-align:middle;margin-right:6px}
.emb-footer{margin-top:6px;color:#b9bbbe;display:flex;align-items:center;gap:6px}
.att img, .att video {max-width:500px;max-height:400px;width:auto;height:auto;
                      border-radius:8px;object-fit:contain;display:block;margin:6px auto;
                      box-shadow:0 0 8px rgba(0,0,0,0.4);}
.att video{border:1px solid #2a2d31}
.att audio{width:100%;margin-top:8px}
.file-card{background:#2b2d31;border:1px solid #2a2d31;border-radius:8px;padding:8px;
           display:flex;justify-content:space-between;align-items:center;margin-top:8px}
.file-name{color:#e8e8e8;font-size:14px;overflow:hidden;text-overflow:ellipsis;white-space:nowrap}
.file-btn a{color:#fff;background:#5865F2;padding:4px 10px;border-radius:6px;text-decoration:none;font-size:13px}
footer{text-align:center;color:var(--muted);font-size:12px;padding:20px}
`
