package identity

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// Identity is the tool family selected by the name the binary was invoked as.
type Identity int

const (
	Unknown Identity = iota
	// Admin is the javabox management CLI itself.
	Admin
	Maven
	Gradle
)

func (i Identity) String() string {
	switch i {
	case Admin:
		return "javabox"
	case Maven:
		return "maven"
	case Gradle:
		return "gradle"
	default:
		return "unknown"
	}
}

// ErrUnknownAlias reports an invocation name outside the alias table.
var ErrUnknownAlias = errors.New("unsupported alias name")

var aliases = map[string]Identity{
	"mvn":     Maven,
	"mvnw":    Maven,
	"gradle":  Gradle,
	"gradlew": Gradle,
	"javabox": Admin,
}

var windowsSuffixes = []string{".exe", ".cmd", ".bat"}

// Resolve maps argv[0] to an Identity using only its final path segment.
func Resolve(argv0 string) (Identity, error) {
	return resolve(argv0, runtime.GOOS == "windows")
}

func resolve(argv0 string, windows bool) (Identity, error) {
	name := baseName(argv0, windows)
	if id, ok := aliases[name]; ok {
		return id, nil
	}
	if windows {
		lower := strings.ToLower(name)
		for _, suffix := range windowsSuffixes {
			if trimmed, ok := strings.CutSuffix(lower, suffix); ok {
				if id, ok := aliases[trimmed]; ok {
					return id, nil
				}
			}
		}
	}
	return Unknown, fmt.Errorf("%w: %q", ErrUnknownAlias, name)
}

func baseName(argv0 string, windows bool) string {
	if windows {
		argv0 = strings.ReplaceAll(argv0, `\`, "/")
	}
	if idx := strings.LastIndexByte(argv0, '/'); idx >= 0 {
		return argv0[idx+1:]
	}
	return filepath.Base(argv0)
}

// Aliases lists every invocation name the launcher understands, sorted.
func Aliases() []string {
	names := make([]string, 0, len(aliases))
	for name := range aliases {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LauncherAliases lists the names that delegate to a build tool, excluding
// the management CLI.
func LauncherAliases() []string {
	var names []string
	for _, name := range Aliases() {
		if aliases[name] != Admin {
			names = append(names, name)
		}
	}
	return names
}
