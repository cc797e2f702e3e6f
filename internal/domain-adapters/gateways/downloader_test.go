package gateways

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDownloader_Download(t *testing.T) {
	payload := []byte("PK fake archive body")
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	var progress bytes.Buffer
	d := NewDownloader(
		WithHTTPClient(srv.Client()),
		WithDownloadDir(t.TempDir()),
		WithProgress(&progress),
	)

	path, err := d.Download(context.Background(), srv.URL+"/Distribution/sonar-scanner-cli/sonar-scanner-cli-4.8.0.2856.zip")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}

	if filepath.Base(path) != "sonar-scanner-cli-4.8.0.2856.zip" {
		t.Errorf("Download() path = %s, want file named after URL", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("downloaded content = %q, want %q", data, payload)
	}
	if gotUA != defaultUserAgent {
		t.Errorf("User-Agent = %q, want %q", gotUA, defaultUserAgent)
	}
	if progress.Len() == 0 {
		t.Error("progress writer received no output")
	}
}

func TestDownloader_Download_NotFound(t *testing.T) {
	requests := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	downloadDir := t.TempDir()
	d := NewDownloader(WithHTTPClient(srv.Client()), WithDownloadDir(downloadDir))

	_, err := d.Download(context.Background(), srv.URL+"/sonar-scanner-cli-0.0.0.zip")
	if err == nil {
		t.Fatal("Download() should fail on 404")
	}
	if !strings.Contains(err.Error(), "HTTP 404") {
		t.Errorf("Download() error = %v, want HTTP 404", err)
	}
	if requests != 1 {
		t.Errorf("server saw %d requests, want exactly 1 (no retries)", requests)
	}

	entries, _ := os.ReadDir(downloadDir)
	if len(entries) != 0 {
		t.Errorf("failed download left %d entries behind", len(entries))
	}
}

func TestDownloader_Download_Unreachable(t *testing.T) {
	d := NewDownloader(WithDownloadDir(t.TempDir()))
	if _, err := d.Download(context.Background(), "http://127.0.0.1:1/file.zip"); err == nil {
		t.Error("Download() should fail for an unreachable host")
	}
}

func TestDownloader_Download_Cancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("data"))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d := NewDownloader(WithHTTPClient(srv.Client()), WithDownloadDir(t.TempDir()))
	if _, err := d.Download(ctx, srv.URL+"/file.zip"); err == nil {
		t.Error("Download() should fail with a cancelled context")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "URL with query parameters",
			input:    "https://download.example.org/?product=scanner&os=linux64",
			expected: "download",
		},
		{
			name:     "URL with filename and query params",
			input:    "https://example.com/file.zip?version=1.0&platform=linux",
			expected: "file.zip",
		},
		{
			name:     "Simple URL with filename",
			input:    "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli/sonar-scanner-cli-4.8.0.2856-linux.zip",
			expected: "sonar-scanner-cli-4.8.0.2856-linux.zip",
		},
		{
			name:     "Escaped characters in path",
			input:    "https://example.com/file%3Awith%2Ainvalid.zip",
			expected: "file_with_invalid.zip",
		},
		{
			name:     "Empty path",
			input:    "https://example.com/",
			expected: "download",
		},
		{
			name:     "Just a slash",
			input:    "/",
			expected: "download",
		},
		{
			name:     "Dot dot",
			input:    "https://example.com/..",
			expected: "download",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sanitizeFilename(tt.input); got != tt.expected {
				t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
