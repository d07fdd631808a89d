package dist

import "javabox/internal/logx"

// Reporter receives download progress. total is -1 when the size is unknown.
type Reporter interface {
	Start(name string, total int64)
	Advance(name string, n int64)
	Done(name string, err error)
}

// LogReporter reports start and completion through a logger.
type LogReporter struct {
	Logger *logx.Logger
}

func (r LogReporter) Start(name string, total int64) {
	if total > 0 {
		r.Logger.Infof("fetching %s (%d bytes)", name, total)
		return
	}
	r.Logger.Infof("fetching %s", name)
}

func (LogReporter) Advance(string, int64) {}

func (r LogReporter) Done(name string, err error) {
	if err != nil {
		r.Logger.Warnf("fetching %s failed: %v", name, err)
		return
	}
	r.Logger.Debugf("fetched %s", name)
}

var _ Reporter = LogReporter{}
