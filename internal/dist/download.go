package dist

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"javabox/internal/logx"
)

const (
	defaultDownloadTimeout = 10 * time.Minute
	defaultLockStale       = 10 * time.Minute
)

// ErrHTTPStatus marks a download answered with a non-2xx status.
var ErrHTTPStatus = errors.New("unexpected status")

// Options configures a Manager.
type Options struct {
	Client    *http.Client
	Logger    *logx.Logger
	Reporter  Reporter
	UserAgent string
	// VerifySidecar enables checking archives against the digest file
	// published next to them when no checksum was declared.
	VerifySidecar bool
	LockStale     time.Duration
}

// Manager downloads and unpacks distributions into the wrapper caches.
type Manager struct {
	client        *http.Client
	logger        *logx.Logger
	reporter      Reporter
	userAgent     string
	verifySidecar bool
	lockStale     time.Duration
	now           func() time.Time
}

// NewManager builds a Manager, filling unset options with defaults.
func NewManager(opts Options) *Manager {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: defaultDownloadTimeout}
	}
	reporter := opts.Reporter
	if reporter == nil {
		reporter = LogReporter{Logger: opts.Logger}
	}
	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = "javabox/dev"
	}
	lockStale := opts.LockStale
	if lockStale <= 0 {
		lockStale = defaultLockStale
	}
	return &Manager{
		client:        client,
		logger:        opts.Logger,
		reporter:      reporter,
		userAgent:     userAgent,
		verifySidecar: opts.VerifySidecar,
		lockStale:     lockStale,
		now:           time.Now,
	}
}

// partPath names the temporary sibling a download is written to. It carries
// the destination's current mtime so a refresh never collides with the file
// it is replacing.
func partPath(dest string) string {
	if info, err := os.Stat(dest); err == nil {
		return fmt.Sprintf("%s.%d.part", dest, info.ModTime().UnixNano())
	}
	return dest + ".new.part"
}

func (m *Manager) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", m.userAgent)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", rawURL, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, fmt.Errorf("download %s: %w %s", rawURL, ErrHTTPStatus, resp.Status)
	}
	return resp, nil
}

// Download fetches rawURL into dest. The body is written to a temporary
// sibling, verified, and only then renamed onto dest; on any failure dest is
// left exactly as it was.
func (m *Manager) Download(ctx context.Context, rawURL, dest string, verify Verifier) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("prepare download destination: %w", err)
	}

	m.logger.Infof("downloading %s from %s", dest, rawURL)
	resp, err := m.get(ctx, rawURL)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	name := filepath.Base(dest)
	m.reporter.Start(name, resp.ContentLength)
	err = m.writeAtomically(ctx, resp.Body, dest, name, verify)
	m.reporter.Done(name, err)
	return err
}

func (m *Manager) writeAtomically(ctx context.Context, body io.Reader, dest, name string, verify Verifier) error {
	tmpPath := partPath(dest)
	tmp, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmpPath)
		}
	}()

	w := &progressWriter{w: tmp, name: name, reporter: m.reporter}
	if _, err := io.Copy(w, body); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("flush temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if verify != nil {
		if err := verify.Verify(ctx, tmpPath); err != nil {
			return err
		}
	}

	if err := os.Rename(tmpPath, dest); err != nil {
		return fmt.Errorf("finalize download: %w", err)
	}
	committed = true
	return nil
}

type progressWriter struct {
	w        io.Writer
	name     string
	reporter Reporter
}

func (p *progressWriter) Write(b []byte) (int, error) {
	n, err := p.w.Write(b)
	if n > 0 {
		p.reporter.Advance(p.name, int64(n))
	}
	return n, err
}
