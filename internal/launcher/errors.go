package launcher

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"javabox/internal/dist"
	"javabox/internal/launch"
)

// Kind classifies launcher failures.
type Kind string

const (
	KindConfig     Kind = "CONFIG"     // unusable invocation or project layout
	KindResolution Kind = "RESOLUTION" // no distribution could be named
	KindNetwork    Kind = "NETWORK"    // feed or archive download failed
	KindCache      Kind = "CACHE"      // local cache could not be prepared
	KindDelegation Kind = "DELEGATION" // the tool could not be run
)

// Exit codes used when the tool itself did not produce one.
const (
	ExitFailure     = 125
	ExitInterrupted = 130
)

// Error is a structured launcher failure.
type Error struct {
	Kind Kind
	Op   string
	Path string
	URL  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Path != "" {
		fmt.Fprintf(&b, " %s", e.Path)
	}
	if e.URL != "" {
		fmt.Fprintf(&b, " (%s)", e.URL)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// IsKind reports whether err is a launcher Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var lErr *Error
	if errors.As(err, &lErr) {
		return lErr.Kind == kind
	}
	return false
}

// ExitCode maps an error returned by Run to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, launch.ErrInterrupted):
		return ExitInterrupted
	default:
		return ExitFailure
	}
}

// isNetwork reports whether err came from talking to a remote host.
func isNetwork(err error) bool {
	var urlErr *url.Error
	var netErr net.Error
	return errors.As(err, &urlErr) ||
		errors.As(err, &netErr) ||
		errors.Is(err, dist.ErrHTTPStatus) ||
		errors.Is(err, dist.ErrChecksumMismatch)
}

func classify(err error, fallback Kind) Kind {
	if isNetwork(err) {
		return KindNetwork
	}
	return fallback
}
