package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config aggregates runtime configuration for the bot.
type Config struct {
	App      AppConfig
	Discord  DiscordConfig
	FTP      FTPConfig
	Payment  PaymentConfig
	AuditLog AuditLogConfig
	Closer   CloserConfig
	Logger   LoggerConfig
}

// AppConfig holds branding applied to every embed the bot sends.
type AppConfig struct {
	FooterName string
	FooterLogo string
}

// DiscordConfig holds the gateway token and every guild identifier the
// bot acts on. Any empty identifier disables the dependent feature.
type DiscordConfig struct {
	Token   string
	GuildID string

	AdminRoleIDs []string
	AutoRoleID   string

	PanelChannelID         string
	TermsChannelID         string
	TermsLogChannelID      string
	TranscriptLogChannelID string
	BotLogChannelID        string
	EntryChannelID         string
	ExitChannelID          string

	// CategoryIDs maps a ticket category key to the parent channel
	// the ticket channel is created under.
	CategoryIDs map[string]string
}

// FTPConfig holds remote file store credentials.
type FTPConfig struct {
	Host     string
	User     string
	Password string
	BaseURL  string
}

// PaymentConfig holds payment-instruction metadata.
type PaymentConfig struct {
	Key           string
	QRCodeURL     string
	DefaultAmount string
}

// AuditLogConfig tunes the audit-log cog.
type AuditLogConfig struct {
	IgnoreBots        bool
	IgnoreWebhooks    bool
	IgnoreChannelIDs  []string
	MaxEventsPerWin   int
	WindowSeconds     int
	VoiceCooldownMSec int
}

// CloserConfig tunes the close queue worker and the history walk.
type CloserConfig struct {
	WorkerPauseSeconds int
	BatchPauseMillis   int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
	File  string
}

// TicketCategories enumerates the supported ticket category keys, in
// the order the panel presents them.
var TicketCategories = []string{"support", "clothing", "accessories", "vehicles", "design", "courses"}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cats := map[string]string{
		"support":     os.Getenv("CATEGORY_SUPPORT"),
		"clothing":    os.Getenv("CATEGORY_CLOTHING"),
		"accessories": os.Getenv("CATEGORY_ACCESSORIES"),
		"vehicles":    os.Getenv("CATEGORY_VEHICLES"),
		"design":      os.Getenv("CATEGORY_DESIGN"),
		"courses":     os.Getenv("CATEGORY_COURSES"),
	}

	cfg := &Config{
		App: AppConfig{
			FooterName: getEnv("FOOTER_NAME", "Support Bot"),
			FooterLogo: os.Getenv("FOOTER_LOGO_URL"),
		},
		Discord: DiscordConfig{
			Token:                  os.Getenv("DISCORD_TOKEN"),
			GuildID:                os.Getenv("GUILD_ID"),
			AdminRoleIDs:           splitIDs(os.Getenv("ADMIN_ROLE_IDS")),
			AutoRoleID:             os.Getenv("AUTO_ROLE_ID"),
			PanelChannelID:         os.Getenv("TICKET_PANEL_CHANNEL_ID"),
			TermsChannelID:         os.Getenv("TERMS_CHANNEL_ID"),
			TermsLogChannelID:      os.Getenv("TERMS_LOG_CHANNEL_ID"),
			TranscriptLogChannelID: os.Getenv("TRANSCRIPT_LOG_CHANNEL_ID"),
			BotLogChannelID:        os.Getenv("BOT_LOG_CHANNEL_ID"),
			EntryChannelID:         os.Getenv("ENTRY_CHANNEL_ID"),
			ExitChannelID:          os.Getenv("EXIT_CHANNEL_ID"),
			CategoryIDs:            cats,
		},
		FTP: FTPConfig{
			Host:     os.Getenv("FTP_HOST"),
			User:     os.Getenv("FTP_USER"),
			Password: os.Getenv("FTP_PASSWORD"),
			BaseURL:  strings.TrimRight(os.Getenv("FTP_BASE_URL"), "/"),
		},
		Payment: PaymentConfig{
			Key:           os.Getenv("PAYMENT_KEY"),
			QRCodeURL:     os.Getenv("PAYMENT_QR_URL"),
			DefaultAmount: os.Getenv("PAYMENT_AMOUNT"),
		},
		AuditLog: AuditLogConfig{
			IgnoreBots:        getEnvAsBool("LOG_IGNORE_BOTS", true),
			IgnoreWebhooks:    getEnvAsBool("LOG_IGNORE_WEBHOOKS", true),
			IgnoreChannelIDs:  splitIDs(os.Getenv("LOG_IGNORE_CHANNELS")),
			MaxEventsPerWin:   getEnvAsInt("LOG_RATE_MAX_PER_WINDOW", 40),
			WindowSeconds:     getEnvAsInt("LOG_RATE_WINDOW_SECONDS", 60),
			VoiceCooldownMSec: getEnvAsInt("LOG_VOICE_COOLDOWN_MS", 1200),
		},
		Closer: CloserConfig{
			WorkerPauseSeconds: getEnvAsInt("CLOSE_WORKER_PAUSE_SECONDS", 3),
			BatchPauseMillis:   getEnvAsInt("CLOSE_BATCH_PAUSE_MS", 800),
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", "bot_debug.log"),
		},
	}

	return cfg, nil
}

// WorkerPause returns the pause between close jobs.
func (c CloserConfig) WorkerPause() time.Duration {
	if c.WorkerPauseSeconds <= 0 {
		return 0
	}
	return time.Duration(c.WorkerPauseSeconds) * time.Second
}

// BatchPause returns the pause inserted after each history batch.
func (c CloserConfig) BatchPause() time.Duration {
	if c.BatchPauseMillis <= 0 {
		return 0
	}
	return time.Duration(c.BatchPauseMillis) * time.Millisecond
}

// Window returns the rate-limit window duration.
func (a AuditLogConfig) Window() time.Duration {
	if a.WindowSeconds <= 0 {
		return time.Minute
	}
	return time.Duration(a.WindowSeconds) * time.Second
}

// VoiceCooldown returns the per-user voice event cooldown.
func (a AuditLogConfig) VoiceCooldown() time.Duration {
	return time.Duration(a.VoiceCooldownMSec) * time.Millisecond
}

func splitIDs(raw string) []string {
	raw = strings.ReplaceAll(raw, ";", ",")
	var out []string
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
