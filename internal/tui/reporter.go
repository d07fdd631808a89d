package tui

import (
	"io"

	"javabox/internal/dist"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// NewReporter picks the download reporter for mode: a live Progress in TUI
// mode and fallback otherwise. The closer must run before anything else
// writes to out.
func NewReporter(out io.Writer, mode OutputMode, title string, fallback dist.Reporter) (dist.Reporter, io.Closer) {
	if mode != ModeTUI {
		return fallback, nopCloser{}
	}
	p := NewProgress(out, title)
	return p, p
}

var _ dist.Reporter = (*Progress)(nil)
