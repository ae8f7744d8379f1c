package transcript

import "testing"

func TestMediaClassification(t *testing.T) {
	tests := []struct {
		url   string
		image bool
		video bool
		audio bool
	}{
		{"https://cdn.example.test/a.png", true, false, false},
		{"https://cdn.example.test/a.JPG", true, false, false},
		{"https://cdn.example.test/a.webp", true, false, false},
		{"https://cdn.example.test/a.gif?size=1024", true, false, false},
		{"https://cdn.example.test/a.mp4", false, true, false},
		{"https://cdn.example.test/a.mov", false, true, false},
		{"https://cdn.example.test/a.mp3", false, false, true},
		{"https://cdn.example.test/a.ogg", false, false, true},
		{"https://cdn.example.test/a.pdf", false, false, false},
		{"https://cdn.example.test/noext", false, false, false},
		{"", false, false, false},
	}
	for _, tt := range tests {
		if got := IsImage(tt.url); got != tt.image {
			t.Errorf("IsImage(%q) = %v, want %v", tt.url, got, tt.image)
		}
		if got := IsVideo(tt.url); got != tt.video {
			t.Errorf("IsVideo(%q) = %v, want %v", tt.url, got, tt.video)
		}
		if got := IsAudio(tt.url); got != tt.audio {
			t.Errorf("IsAudio(%q) = %v, want %v", tt.url, got, tt.audio)
		}
	}
}

func TestSafeImageExt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"pic.png", ".png"},
		{"pic.JPEG", ".jpeg"},
		{"archive.tar.gz", ".png"},
		{"noext", ".png"},
	}
	for _, tt := range tests {
		if got := SafeImageExt(tt.in); got != tt.want {
			t.Errorf("SafeImageExt(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGuessMIME(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a.png", "image/png"},
		{"a.jpg", "image/jpeg"},
		{"a.gif", "image/gif"},
		{"a.webp", "image/webp"},
		{"a.bin", "image/png"},
	}
	for _, tt := range tests {
		if got := GuessMIME(tt.in, "image/png"); got != tt.want {
			t.Errorf("GuessMIME(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
