package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/entities"
)

func TestLocator_Suffix_WithoutRuntime(t *testing.T) {
	l := NewDefaultLocator()
	req := entities.InstallRequest{Version: "4.8.0.2856", IncludeRuntime: false}

	for _, p := range append(entities.Platforms(), entities.Platform(0), entities.Platform(42)) {
		got, err := l.Suffix(req, p)
		require.NoError(t, err, "platform %v", p)
		assert.Empty(t, got, "platform %v", p)
	}
}

func TestLocator_Suffix_WithRuntime(t *testing.T) {
	l := NewDefaultLocator()
	req := entities.InstallRequest{Version: "4.8.0.2856", IncludeRuntime: true}

	tests := map[entities.Platform]string{
		entities.PlatformLinux:   "-linux",
		entities.PlatformMacOS:   "-macosx",
		entities.PlatformWindows: "-windows",
	}
	for p, want := range tests {
		got, err := l.Suffix(req, p)
		require.NoError(t, err)
		assert.Equal(t, want, got, "platform %v", p)
	}
}

func TestLocator_Suffix_UnknownPlatform(t *testing.T) {
	l := NewDefaultLocator()
	_, err := l.Suffix(entities.InstallRequest{Version: "5.0.1.3006", IncludeRuntime: true}, entities.Platform(0))
	assert.ErrorIs(t, err, entities.ErrUnsupportedPlatform)
}

func TestLocator_DownloadURL(t *testing.T) {
	l := NewDefaultLocator()

	tests := []struct {
		name     string
		req      entities.InstallRequest
		platform entities.Platform
		want     string
	}{
		{
			name:     "linux without runtime",
			req:      entities.InstallRequest{Version: "4.8.0.2856"},
			platform: entities.PlatformLinux,
			want:     "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli/sonar-scanner-cli-4.8.0.2856.zip",
		},
		{
			name:     "macos with runtime",
			req:      entities.InstallRequest{Version: "4.8.0.2856", IncludeRuntime: true},
			platform: entities.PlatformMacOS,
			want:     "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli/sonar-scanner-cli-4.8.0.2856-macosx.zip",
		},
		{
			name:     "windows with runtime",
			req:      entities.InstallRequest{Version: "5.0.1.3006", IncludeRuntime: true},
			platform: entities.PlatformWindows,
			want:     "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli/sonar-scanner-cli-5.0.1.3006-windows.zip",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := l.DownloadURL(tt.req, tt.platform)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			again, err := l.DownloadURL(tt.req, tt.platform)
			require.NoError(t, err)
			assert.Equal(t, got, again)
			assert.True(t, strings.HasSuffix(got, ".zip"))
		})
	}
}

func TestLocator_SignatureURL(t *testing.T) {
	l := NewDefaultLocator()
	got, err := l.SignatureURL(entities.InstallRequest{Version: "4.8.0.2856"}, entities.PlatformLinux)
	require.NoError(t, err)
	assert.Equal(t, "https://binaries.sonarsource.com/Distribution/sonar-scanner-cli/sonar-scanner-cli-4.8.0.2856.zip.asc", got)
}

func TestLocator_InstallDirectory(t *testing.T) {
	l := NewDefaultLocator()

	tests := map[entities.Platform]string{
		entities.PlatformLinux:   LinuxInstallPath,
		entities.PlatformMacOS:   MacOSInstallPath,
		entities.PlatformWindows: WindowsInstallPath,
	}
	for p, want := range tests {
		got, err := l.InstallDirectory(p)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := l.InstallDirectory(entities.Platform(0))
	assert.ErrorIs(t, err, entities.ErrUnsupportedPlatform)
}

func TestLocator_Resolve(t *testing.T) {
	l := NewDefaultLocator()

	tests := []struct {
		name          string
		req           entities.InstallRequest
		platform      entities.Platform
		wantParent    string
		wantDirName   string
		wantExtracted string
	}{
		{
			name:          "linux",
			req:           entities.InstallRequest{Version: "4.8.0.2856", IncludeRuntime: true},
			platform:      entities.PlatformLinux,
			wantParent:    "/opt",
			wantDirName:   "sonar-scanner-4.8.0.2856-linux",
			wantExtracted: "/opt/sonar-scanner-4.8.0.2856-linux",
		},
		{
			name:          "macos",
			req:           entities.InstallRequest{Version: "4.8.0.2856"},
			platform:      entities.PlatformMacOS,
			wantParent:    "/Users/runner",
			wantDirName:   "sonar-scanner-4.8.0.2856",
			wantExtracted: "/Users/runner/sonar-scanner-4.8.0.2856",
		},
		{
			name:          "windows",
			req:           entities.InstallRequest{Version: "4.8.0.2856", IncludeRuntime: true},
			platform:      entities.PlatformWindows,
			wantParent:    `C:\`,
			wantDirName:   "sonar-scanner-4.8.0.2856-windows",
			wantExtracted: `C:\sonar-scanner-4.8.0.2856-windows`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			target, err := l.Resolve(tt.req, tt.platform)
			require.NoError(t, err)

			wantURL, _ := l.DownloadURL(tt.req, tt.platform)
			wantDir, _ := l.InstallDirectory(tt.platform)
			assert.Equal(t, wantURL, target.URL)
			assert.Equal(t, wantDir, target.FinalInstallPath)
			assert.Equal(t, tt.wantParent, target.ExtractionParentDir)
			assert.Equal(t, tt.wantDirName, target.ExpectedExtractedDirName)
			assert.Equal(t, tt.wantExtracted, target.ExtractedPath())
		})
	}
}

func TestLocator_InstallDirectoryIgnoresRequest(t *testing.T) {
	l := NewDefaultLocator()
	a, err := l.Resolve(entities.InstallRequest{Version: "4.8.0.2856"}, entities.PlatformMacOS)
	require.NoError(t, err)
	b, err := l.Resolve(entities.InstallRequest{Version: "5.0.1.3006", IncludeRuntime: true}, entities.PlatformMacOS)
	require.NoError(t, err)
	assert.Equal(t, a.FinalInstallPath, b.FinalInstallPath)
}

func TestParentDir(t *testing.T) {
	assert.Equal(t, "/opt", parentDir(entities.PlatformLinux, "/opt/sonar-scanner"))
	assert.Equal(t, "/", parentDir(entities.PlatformLinux, "/sonar-scanner"))
	assert.Equal(t, `C:\`, parentDir(entities.PlatformWindows, `C:\sonar-scanner`))
	assert.Equal(t, `D:\tools`, parentDir(entities.PlatformWindows, `D:\tools\sonar-scanner\`))
}
