package tui

import (
	"io"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// advanceInterval bounds how often byte counts are pushed to the renderer.
const advanceInterval = 80 * time.Millisecond

// Progress renders downloads as a bubbletea program. The program is started
// by the first download, so a run that finds everything cached never touches
// the terminal. Progress implements dist.Reporter.
type Progress struct {
	out   io.Writer
	title string

	mu       sync.Mutex
	send     func(tea.Msg)
	finished chan error
	quit     func()
	pending  map[string]int64
	lastSend time.Time
	now      func() time.Time
}

// NewProgress creates a reporter that draws to out.
func NewProgress(out io.Writer, title string) *Progress {
	return &Progress{
		out:     out,
		title:   title,
		pending: make(map[string]int64),
		now:     time.Now,
	}
}

func (p *Progress) ensureStarted() {
	if p.send != nil {
		return
	}
	program := tea.NewProgram(
		NewProgressModel(p.title),
		tea.WithOutput(p.out),
		tea.WithInput(nil),
		tea.WithoutSignalHandler(),
	)
	finished := make(chan error, 1)
	go func() {
		_, err := program.Run()
		finished <- err
	}()
	p.send = program.Send
	p.quit = func() { program.Send(WorkDoneMsg{}) }
	p.finished = finished
}

// Start implements dist.Reporter.
func (p *Progress) Start(name string, total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ensureStarted()
	delete(p.pending, name)
	p.send(DownloadStartMsg{Name: name, Total: total})
}

// Advance implements dist.Reporter. Counts are coalesced per name.
func (p *Progress) Advance(name string, n int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.send == nil {
		return
	}
	p.pending[name] += n
	if now := p.now(); now.Sub(p.lastSend) >= advanceInterval {
		p.flush()
		p.lastSend = now
	}
}

// Done implements dist.Reporter.
func (p *Progress) Done(name string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.send == nil {
		return
	}
	p.flush()
	p.send(DownloadDoneMsg{Name: name, Err: err})
}

func (p *Progress) flush() {
	for name, n := range p.pending {
		if n > 0 {
			p.send(DownloadProgressMsg{Name: name, Bytes: n})
		}
		delete(p.pending, name)
	}
}

// Close stops the program, if one was started, and waits for its final frame.
func (p *Progress) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.send == nil {
		return nil
	}
	p.flush()
	var err error
	if p.quit != nil {
		p.quit()
		err = <-p.finished
	}
	p.send, p.quit, p.finished = nil, nil, nil
	return err
}
