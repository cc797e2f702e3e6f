package entities

import "strings"

// InstallRequest is the caller supplied description of what to install
type InstallRequest struct {
	Version        string
	IncludeRuntime bool
}

// ParseIncludeRuntime interprets a CI input value; only "true" (any case) enables the runtime bundle
func ParseIncludeRuntime(value string) bool {
	return strings.EqualFold(strings.TrimSpace(value), "true")
}

// DownloadTarget holds the resolved install coordinates for one request on one platform
type DownloadTarget struct {
	URL                      string
	FinalInstallPath         string
	ExtractionParentDir      string
	ExpectedExtractedDirName string
	Platform                 Platform
}

// ExtractedPath is the directory the archive unpacks to, before it is moved into place
func (t *DownloadTarget) ExtractedPath() string {
	sep := t.Platform.Separator()
	return strings.TrimSuffix(t.ExtractionParentDir, sep) + sep + t.ExpectedExtractedDirName
}
