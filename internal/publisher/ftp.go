package publisher

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/jlaffaye/ftp"
	"go.uber.org/zap"

	"github.com/vhecode013/Bot-Atendimento/internal/config"
)

// ErrNotConfigured is returned when the remote store credentials are
// absent; archival is disabled, not broken.
var ErrNotConfigured = errors.New("remote store credentials not configured")

// FTPPublisher uploads files to the remote store over FTP. The FTP
// account lands directly in the transcripts directory, so remote
// names carry no path.
type FTPPublisher struct {
	cfg    config.FTPConfig
	logger *zap.Logger
}

// NewFTPPublisher creates the publisher.
func NewFTPPublisher(cfg config.FTPConfig, logger *zap.Logger) *FTPPublisher {
	return &FTPPublisher{cfg: cfg, logger: logger}
}

// Upload stores the local file under remoteName and returns its
// public URL. One attempt; any failure returns an error.
func (p *FTPPublisher) Upload(ctx context.Context, localPath, remoteName string) (string, error) {
	if p.cfg.Host == "" || p.cfg.User == "" || p.cfg.Password == "" {
		return "", ErrNotConfigured
	}

	name := CleanFilename(remoteName)
	f, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	addr := p.cfg.Host
	if !strings.Contains(addr, ":") {
		addr += ":21"
	}
	conn, err := ftp.Dial(addr, ftp.DialWithContext(ctx), ftp.DialWithTimeout(30*time.Second))
	if err != nil {
		return "", err
	}
	defer conn.Quit()

	if err := conn.Login(p.cfg.User, p.cfg.Password); err != nil {
		return "", err
	}
	if err := conn.Stor(name, f); err != nil {
		return "", err
	}

	url := p.PublicURL(name)
	p.logger.Info("upload complete", zap.String("remote_name", name), zap.String("url", url))
	return url, nil
}

// PublicURL shapes the public link for an uploaded file.
func (p *FTPPublisher) PublicURL(name string) string {
	return p.cfg.BaseURL + "/transcripts/" + CleanFilename(name)
}
