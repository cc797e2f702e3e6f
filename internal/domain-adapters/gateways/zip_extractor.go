package gateways

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ochairo/setup-sonar-scanner/internal/domain/interfaces"
)

// maxEntrySize caps a single decompressed entry (decompression bomb guard)
const maxEntrySize = 1 << 30

// ZipExtractor unpacks zip archives with the current user's privileges
type ZipExtractor struct {
	logger interfaces.Logger
}

// NewZipExtractor creates a new zip extractor
func NewZipExtractor(logger interfaces.Logger) *ZipExtractor {
	if logger == nil {
		logger = &interfaces.NoOpLogger{}
	}
	return &ZipExtractor{logger: logger}
}

// ExtractZip extracts archivePath into destDir and returns destDir
func (e *ZipExtractor) ExtractZip(ctx context.Context, archivePath, destDir string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open zip: %w", err)
	}
	//nolint:errcheck // Defer close on read-only archive
	defer r.Close()

	if err := os.MkdirAll(destDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create destination directory: %w", err)
	}

	// Symlinks are created after regular files so their targets exist
	type symlinkInfo struct {
		target   string
		linkname string
	}
	var symlinks []symlinkInfo

	for _, f := range r.File {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		target, err := entryPath(destDir, f.Name)
		if err != nil {
			return "", err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0750); err != nil {
				return "", fmt.Errorf("failed to create directory: %w", err)
			}

		case mode&os.ModeSymlink != 0:
			linkname, err := readEntry(f, 4096)
			if err != nil {
				return "", err
			}
			symlinks = append(symlinks, symlinkInfo{target: target, linkname: string(linkname)})

		default:
			if err := writeEntry(f, target); err != nil {
				return "", err
			}
		}
	}

	for _, link := range symlinks {
		if err := os.MkdirAll(filepath.Dir(link.target), 0750); err != nil {
			return "", fmt.Errorf("failed to create directory for symlink: %w", err)
		}
		if err := os.Symlink(link.linkname, link.target); err != nil {
			e.logger.Warn("failed to create symlink",
				interfaces.F("path", link.target),
				interfaces.F("target", link.linkname),
				interfaces.F("error", err))
		}
	}

	e.logger.Debug("extracted archive",
		interfaces.F("archive", filepath.Base(archivePath)),
		interfaces.F("entries", len(r.File)),
		interfaces.F("destination", destDir))

	return destDir, nil
}

// entryPath joins an archive entry name onto destDir, rejecting names that escape it
func entryPath(destDir, name string) (string, error) {
	//nolint:gosec // G305: Path traversal validated below
	target := filepath.Join(destDir, name)
	rel, err := filepath.Rel(filepath.Clean(destDir), target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("invalid file path in archive: %s", name)
	}
	return target, nil
}

func writeEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	//nolint:errcheck // Defer close on archive entry
	defer rc.Close()

	perm := f.Mode().Perm() | 0600
	//nolint:gosec // G304: target validated by entryPath
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if _, err := io.Copy(out, io.LimitReader(rc, maxEntrySize)); err != nil {
		_ = out.Close()
		return fmt.Errorf("failed to write file: %w", err)
	}
	return out.Close()
}

func readEntry(f *zip.File, limit int64) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	//nolint:errcheck // Defer close on archive entry
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, limit))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return data, nil
}
