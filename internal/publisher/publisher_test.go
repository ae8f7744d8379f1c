package publisher

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/config"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ticket-alice", "ticket-alice"},
		{"📩・support-alice", "__support-alice"},
		{"has spaces here", "has_spaces_here"},
		{"UPPER_lower-123", "UPPER_lower-123"},
		{"", "transcript"},
		{"💬", "_"},
	}
	for _, tt := range tests {
		if got := SanitizeName(tt.in); got != tt.want {
			t.Errorf("SanitizeName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestCleanFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.html", "report.html"},
		{"dir/report.html", "report.html"},
		{"a/b/c/report.html", "report.html"},
		{`windows\style\report.html`, "report.html"},
		{"  padded.html  ", "padded.html"},
	}
	for _, tt := range tests {
		if got := CleanFilename(tt.in); got != tt.want {
			t.Errorf("CleanFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestArchiveName(t *testing.T) {
	at := time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	got := ArchiveName("📩・support-alice", at)
	want := "__support-alice_2025-06-01_12-30-45.html"
	if got != want {
		t.Errorf("ArchiveName = %q, want %q", got, want)
	}
}

func TestFTPPublisherRequiresConfiguration(t *testing.T) {
	p := NewFTPPublisher(config.FTPConfig{}, zap.NewNop())
	if _, err := p.Upload(context.Background(), "/tmp/x.html", "x.html"); err != ErrNotConfigured {
		t.Fatalf("Upload with empty config = %v, want ErrNotConfigured", err)
	}
}

func TestFTPPublicURL(t *testing.T) {
	p := NewFTPPublisher(config.FTPConfig{
		Host:     "ftp.example.test",
		User:     "u",
		Password: "p",
		BaseURL:  "https://files.example.test",
	}, zap.NewNop())
	got := p.PublicURL("archive.html")
	want := "https://files.example.test/transcripts/archive.html"
	if got != want {
		t.Errorf("PublicURL = %q, want %q", got, want)
	}
}
