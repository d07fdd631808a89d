package dist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
)

const lockPollInterval = 100 * time.Millisecond

// acquireLock takes an advisory lock file guarding one cache bucket. A lock
// older than stale is assumed to belong to a dead process and is broken.
func (m *Manager) acquireLock(ctx context.Context, lockPath string) (func(), error) {
	token := fmt.Sprintf("%s pid=%d", uuid.NewString(), os.Getpid())
	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()

	for {
		f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
		if err == nil {
			_, werr := f.WriteString(token)
			cerr := f.Close()
			if werr != nil || cerr != nil {
				_ = os.Remove(lockPath)
				return nil, fmt.Errorf("acquire lock: %w", errors.Join(werr, cerr))
			}
			stop := m.keepLockFresh(lockPath)
			return func() {
				stop()
				m.releaseLock(lockPath, token)
			}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}

		if info, statErr := os.Stat(lockPath); statErr == nil && m.now().Sub(info.ModTime()) > m.lockStale {
			m.logger.Warnf("breaking stale lock %s (age %s)", lockPath, m.now().Sub(info.ModTime()).Round(time.Second))
			_ = os.Remove(lockPath)
			continue
		}

		m.logger.Debugf("waiting for lock %s", lockPath)
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("acquire lock: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// keepLockFresh touches the lock file well inside the stale window until the
// returned stop function runs, so a long download is never mistaken for a
// dead holder.
func (m *Manager) keepLockFresh(lockPath string) func() {
	interval := m.lockStale / 3
	if interval < 10*time.Millisecond {
		interval = 10 * time.Millisecond
	}
	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				now := time.Now()
				if err := os.Chtimes(lockPath, now, now); err != nil {
					m.logger.Debugf("refresh lock %s: %v", lockPath, err)
				}
			}
		}
	}()
	return func() {
		close(done)
		<-stopped
	}
}

// releaseLock removes the lock only while it still carries our token, so a
// lock broken and re-taken by another process survives.
func (m *Manager) releaseLock(lockPath, token string) {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return
	}
	if strings.TrimSpace(string(data)) != token {
		m.logger.Warnf("lock %s was taken over by another process", lockPath)
		return
	}
	_ = os.Remove(lockPath)
}
