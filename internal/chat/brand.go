package chat

// Embed colors used across the bot's cards.
const (
	ColorPurple  = 0x9B59B6
	ColorBlurple = 0x5865F2
	ColorGreen   = 0x2ECC71
	ColorRed     = 0xE74C3C
	ColorOrange  = 0xE67E22
)

// Brand is the footer applied to every embed the bot sends.
type Brand struct {
	FooterName string
	FooterLogo string
}

// Apply stamps the brand footer onto an embed and returns it.
func (b Brand) Apply(e *Embed) *Embed {
	e.FooterText = b.FooterName
	e.FooterIconURL = b.FooterLogo
	return e
}
