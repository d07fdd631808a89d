package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"
)

const (
	tickInterval = 150 * time.Millisecond
	marqueeGap   = "   "
	nameWidth    = 32
	statusWidth  = 11
	barWidth     = 30
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// tickMsg drives animation (spinner, marquee).
type tickMsg time.Time

// row tracks one file transfer.
type row struct {
	name   string
	status string
	total  int64
	done   int64
}

// ProgressModel is a bubbletea model that renders one progress bar per
// download.
type ProgressModel struct {
	title    string
	rows     []row
	rowIndex map[string]int
	bar      progress.Model
	done     bool

	// Animation state.
	tick int
}

// NewProgressModel creates an empty progress model with the given title.
func NewProgressModel(title string) ProgressModel {
	return ProgressModel{
		title:    title,
		rowIndex: make(map[string]int),
		bar: progress.New(
			progress.WithDefaultGradient(),
			progress.WithWidth(barWidth),
			progress.WithoutPercentage(),
		),
	}
}

func scheduleTick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Init satisfies the tea.Model interface.
func (m ProgressModel) Init() tea.Cmd {
	return scheduleTick()
}

// Update satisfies the tea.Model interface.
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.tick++
		if m.done {
			return m, nil
		}
		return m, scheduleTick()

	case DownloadStartMsg:
		r := row{name: msg.Name, status: "downloading", total: msg.Total}
		if idx, ok := m.rowIndex[msg.Name]; ok {
			m.rows[idx] = r
		} else {
			m.rowIndex[msg.Name] = len(m.rows)
			m.rows = append(m.rows, r)
		}
		return m, nil

	case DownloadProgressMsg:
		if idx, ok := m.rowIndex[msg.Name]; ok {
			m.rows[idx].done += msg.Bytes
		}
		return m, nil

	case DownloadDoneMsg:
		if idx, ok := m.rowIndex[msg.Name]; ok {
			m.rows[idx].status = "downloaded"
			if msg.Err != nil {
				m.rows[idx].status = "error"
			}
		}
		return m, nil

	case WorkDoneMsg:
		m.done = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.done = true
			return m, tea.Quit
		}
	}
	return m, nil
}

// View satisfies the tea.Model interface.
func (m ProgressModel) View() string {
	if len(m.rows) == 0 {
		return ""
	}

	var b strings.Builder
	if m.title != "" {
		b.WriteString(HeaderStyle.Render(m.title))
		b.WriteByte('\n')
	}

	for _, r := range m.rows {
		name := TruncateWithEllipsis(r.name, nameWidth)
		if !m.done && len(r.name) > nameWidth {
			name = marqueeText(r.name, nameWidth, m.tick)
		}
		b.WriteString(pad(name, nameWidth))
		b.WriteString("  ")
		b.WriteString(StatusStyle(r.status).Render(pad(r.status, statusWidth)))
		b.WriteString("  ")
		b.WriteString(m.barView(r))
		b.WriteByte('\n')
	}

	// Footer: spinner + counter while work is in progress.
	if !m.done {
		finished, total := m.progressCounts()
		spinner := spinnerFrames[m.tick%len(spinnerFrames)]
		fmt.Fprintf(&b, "\n%s Downloading %d/%d...\n", spinner, finished, total)
	}

	return b.String()
}

func (m ProgressModel) barView(r row) string {
	if r.total <= 0 {
		return SizeStyle.Render(humanize.Bytes(uint64(r.done)))
	}
	frac := float64(r.done) / float64(r.total)
	if frac > 1 {
		frac = 1
	}
	size := fmt.Sprintf("%s / %s", humanize.Bytes(uint64(r.done)), humanize.Bytes(uint64(r.total)))
	return m.bar.ViewAs(frac) + " " + SizeStyle.Render(size)
}

// progressCounts returns (finished, total) download counts.
func (m ProgressModel) progressCounts() (int, int) {
	finished := 0
	for _, r := range m.rows {
		if r.status != "downloading" {
			finished++
		}
	}
	return finished, len(m.rows)
}

// Done returns whether the model has finished.
func (m ProgressModel) Done() bool {
	return m.done
}


func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// marqueeText renders a scrolling window over text that exceeds the given width.
// The text slides left on each tick, with a gap between cycles.
func marqueeText(text string, width, tick int) string {
	text = strings.TrimSpace(text)
	if width <= 0 {
		return ""
	}
	if len(text) <= width {
		return text
	}
	cycle := text + marqueeGap
	cycleLen := len(cycle)
	offset := tick % cycleLen
	var result strings.Builder
	result.Grow(width)
	for i := 0; i < width; i++ {
		result.WriteByte(cycle[(offset+i)%cycleLen])
	}
	return result.String()
}

// TruncateWithEllipsis truncates a string and adds "..." if it exceeds max length.
func TruncateWithEllipsis(value string, max int) string {
	if max <= 0 {
		return ""
	}
	value = strings.TrimSpace(value)
	if len(value) <= max {
		return value
	}
	if max <= 3 {
		return value[:max]
	}
	return value[:max-3] + "..."
}
