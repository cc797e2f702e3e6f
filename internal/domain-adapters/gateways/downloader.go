package gateways

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
)

const defaultUserAgent = "setup-sonar-scanner/1.0"

// Downloader fetches archives over HTTP into a scratch directory
type Downloader struct {
	httpClient  *http.Client
	userAgent   string
	downloadDir string
	progress    io.Writer
	logger      interfaces.Logger
}

// DownloaderOption configures a Downloader
type DownloaderOption func(*Downloader)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) DownloaderOption {
	return func(d *Downloader) { d.httpClient = client }
}

// WithDownloadDir sets the directory under which per-download temp dirs are created
func WithDownloadDir(dir string) DownloaderOption {
	return func(d *Downloader) { d.downloadDir = dir }
}

// WithProgress renders a progress bar to w while downloading
func WithProgress(w io.Writer) DownloaderOption {
	return func(d *Downloader) { d.progress = w }
}

// WithDownloadLogger sets the logger used for download diagnostics
func WithDownloadLogger(logger interfaces.Logger) DownloaderOption {
	return func(d *Downloader) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDownloader creates a new downloader
func NewDownloader(opts ...DownloaderOption) *Downloader {
	d := &Downloader{
		httpClient: &http.Client{
			Timeout: 10 * time.Minute, // Runtime bundles are large
		},
		userAgent: defaultUserAgent,
		logger:    &interfaces.NoOpLogger{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Download fetches url into a fresh temporary directory and returns the local file path.
// It makes exactly one attempt.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	dir, err := os.MkdirTemp(d.downloadDir, "sonar-scanner-download-")
	if err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	dest := filepath.Join(dir, sanitizeFilename(rawURL))
	if err := d.downloadFile(ctx, rawURL, dest); err != nil {
		_ = os.RemoveAll(dir)
		return "", fmt.Errorf("download failed: %w", err)
	}

	return dest, nil
}

// downloadFile downloads a file from URL to destination
func (d *Downloader) downloadFile(ctx context.Context, rawURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	d.logger.Debug("downloading", interfaces.F("url", rawURL))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request failed: %w", err)
	}
	//nolint:errcheck // Defer close on HTTP response body
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, rawURL)
	}

	//nolint:gosec // G304: dest is built from a temp dir and a sanitized file name
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	var w io.Writer = out
	if d.progress != nil {
		w = io.MultiWriter(out, newProgressBar(d.progress, resp.ContentLength, filepath.Base(dest)))
	}

	written, err := io.Copy(w, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}

	d.logger.Info("downloaded archive",
		interfaces.F("file", filepath.Base(dest)),
		interfaces.F("bytes", written))

	return nil
}

func newProgressBar(w io.Writer, size int64, name string) *progressbar.ProgressBar {
	return progressbar.NewOptions64(
		size,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(name),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(15),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionOnCompletion(func() {
			_, _ = fmt.Fprint(w, "\n")
		}),
	)
}

// sanitizeFilename derives a safe local file name from the last path segment of a URL
func sanitizeFilename(rawURL string) string {
	const fallback = "download"

	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" || name == "" {
		return fallback
	}

	name = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', ':', '"', '/', '\\', '|', '?', '*':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, name)

	if strings.Trim(name, "._") == "" {
		return fallback
	}
	return name
}
