package tui

// DownloadStartMsg adds or restarts a download row.
type DownloadStartMsg struct {
	Name string
	// Total is the expected size in bytes, or -1 when unknown.
	Total int64
}

// DownloadProgressMsg adds transferred bytes to a row.
type DownloadProgressMsg struct {
	Name  string
	Bytes int64
}

// DownloadDoneMsg marks a row finished.
type DownloadDoneMsg struct {
	Name string
	Err  error
}

// WorkDoneMsg signals that all background work has completed.
type WorkDoneMsg struct{}
