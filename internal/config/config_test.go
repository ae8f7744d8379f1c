package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want info", cfg.Logger.Level)
	}
	if cfg.Logger.File != "bot_debug.log" {
		t.Errorf("Logger.File = %q, want bot_debug.log", cfg.Logger.File)
	}
	if got := cfg.Closer.WorkerPause(); got != 3*time.Second {
		t.Errorf("WorkerPause = %v, want 3s", got)
	}
	if got := cfg.Closer.BatchPause(); got != 800*time.Millisecond {
		t.Errorf("BatchPause = %v, want 800ms", got)
	}
	if got := cfg.AuditLog.Window(); got != time.Minute {
		t.Errorf("Window = %v, want 1m", got)
	}
	if !cfg.AuditLog.IgnoreBots {
		t.Error("IgnoreBots default = false, want true")
	}
	for _, key := range TicketCategories {
		if _, ok := cfg.Discord.CategoryIDs[key]; !ok {
			t.Errorf("CategoryIDs is missing the %q key", key)
		}
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("DISCORD_TOKEN", "tok")
	t.Setenv("GUILD_ID", "g1")
	t.Setenv("ADMIN_ROLE_IDS", "1, 2 ;3")
	t.Setenv("CATEGORY_SUPPORT", "cat-1")
	t.Setenv("FTP_BASE_URL", "https://files.example.test/")
	t.Setenv("CLOSE_WORKER_PAUSE_SECONDS", "7")
	t.Setenv("LOG_RATE_MAX_PER_WINDOW", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Discord.Token != "tok" || cfg.Discord.GuildID != "g1" {
		t.Error("token/guild not read from environment")
	}
	if got := cfg.Discord.AdminRoleIDs; len(got) != 3 || got[0] != "1" || got[1] != "2" || got[2] != "3" {
		t.Errorf("AdminRoleIDs = %v, want [1 2 3]", got)
	}
	if cfg.Discord.CategoryIDs["support"] != "cat-1" {
		t.Errorf("CategoryIDs[support] = %q, want cat-1", cfg.Discord.CategoryIDs["support"])
	}
	// Trailing slash is stripped so URL joins stay clean.
	if cfg.FTP.BaseURL != "https://files.example.test" {
		t.Errorf("FTP.BaseURL = %q, want no trailing slash", cfg.FTP.BaseURL)
	}
	if got := cfg.Closer.WorkerPause(); got != 7*time.Second {
		t.Errorf("WorkerPause = %v, want 7s", got)
	}
	// Malformed numbers fall back to the default.
	if cfg.AuditLog.MaxEventsPerWin != 40 {
		t.Errorf("MaxEventsPerWin = %d, want the default 40", cfg.AuditLog.MaxEventsPerWin)
	}
}

func TestSplitIDs(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"1", 1},
		{"1,2,3", 3},
		{"1;2;3", 3},
		{" 1 , , 2 ", 2},
	}
	for _, tt := range tests {
		if got := splitIDs(tt.in); len(got) != tt.want {
			t.Errorf("splitIDs(%q) = %v, want %d entries", tt.in, got, tt.want)
		}
	}
}
