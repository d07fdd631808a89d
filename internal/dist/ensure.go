package dist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"javabox/internal/paths"
)

// Ensure makes sure the distribution described by e is unpacked and returns
// its home directory. An existing non-empty home directory is trusted as is.
func (m *Manager) Ensure(ctx context.Context, l Layout, e Entry, spec Spec) (string, error) {
	if paths.NonEmptyDir(e.HomeDir) {
		m.logger.Debugf("cache hit: %s", e.HomeDir)
		return e.HomeDir, nil
	}

	if err := os.MkdirAll(e.BaseDir, 0o755); err != nil {
		return "", fmt.Errorf("prepare cache dir: %w", err)
	}
	unlock, err := m.acquireLock(ctx, e.LockPath())
	if err != nil {
		return "", err
	}
	defer unlock()

	// Another process may have finished while we waited.
	if paths.NonEmptyDir(e.HomeDir) {
		return e.HomeDir, nil
	}

	exists, err := paths.FileExists(e.ArchivePath)
	if err != nil {
		return "", fmt.Errorf("stat archive: %w", err)
	}
	if !exists {
		if err := m.Download(ctx, e.URL, e.ArchivePath, m.verifierFor(spec, l)); err != nil {
			return "", err
		}
	}

	if err := m.unpack(e); err != nil {
		return "", err
	}
	return e.HomeDir, nil
}

// unpack extracts the archive into a hidden sibling and renames it onto the
// home directory, so a half-extracted tree is never mistaken for a cache hit.
func (m *Manager) unpack(e Entry) error {
	m.logger.Debugf("extracting %s to %s", e.ArchivePath, e.HomeDir)
	tmpDir, err := os.MkdirTemp(e.BaseDir, "."+e.DistStem+"-extract-")
	if err != nil {
		return fmt.Errorf("create extract dir: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.RemoveAll(tmpDir)
		}
	}()

	if err := extractArchive(e.format, e.ArchivePath, tmpDir); err != nil {
		return fmt.Errorf("extract %s: %w", e.ArchivePath, err)
	}
	if !paths.NonEmptyDir(tmpDir) {
		return fmt.Errorf("extract %s: archive is empty", e.ArchivePath)
	}
	if err := markExecutable(filepath.Join(tmpDir, "bin")); err != nil {
		return err
	}

	// An empty home dir left by an older tool would block the rename.
	if err := os.Remove(e.HomeDir); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("replace cache dir: %w", err)
	}
	if err := os.Rename(tmpDir, e.HomeDir); err != nil {
		return fmt.Errorf("commit cache dir: %w", err)
	}
	committed = true
	return nil
}

// DownloadOrReuse keeps a metadata file at dest fresh. A file younger than
// maxAge is reused without touching the network; an older one gets a single
// refresh attempt whose failure is logged and ignored. Only a missing file
// makes a download failure fatal. A download verify rejects counts as failed.
func (m *Manager) DownloadOrReuse(ctx context.Context, rawURL, dest string, maxAge time.Duration, verify Verifier) error {
	info, err := os.Stat(dest)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			m.logger.Warnf("stat %s: %v", dest, err)
		}
		return m.Download(ctx, rawURL, dest, verify)
	}

	age := m.now().Sub(info.ModTime())
	if age <= maxAge {
		m.logger.Debugf("reusing %s (age %s)", dest, age.Round(time.Second))
		return nil
	}

	m.logger.Debugf("refreshing %s (age %s)", dest, age.Round(time.Second))
	if err := m.Download(ctx, rawURL, dest, verify); err != nil {
		m.logger.Warnf("refresh of %s failed, using cached copy: %v", dest, err)
	}
	return nil
}
