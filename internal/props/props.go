// Package props reads the key=value files the Maven and Gradle wrappers keep
// next to their launcher scripts.
package props

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"javabox/internal/logx"
)

// Properties maps keys to unescaped values.
type Properties map[string]string

// Get returns the trimmed value for key and whether it was non-empty.
func (p Properties) Get(key string) (string, bool) {
	v, ok := p[key]
	v = strings.TrimSpace(v)
	return v, ok && v != ""
}

// Read parses the file at path. A missing file yields empty Properties.
func Read(path string, logger *logx.Logger) (Properties, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Properties{}, nil
		}
		return nil, fmt.Errorf("open properties: %w", err)
	}
	defer f.Close()

	p, err := Parse(f, logger)
	if err != nil {
		return nil, fmt.Errorf("read properties %s: %w", path, err)
	}
	return p, nil
}

// Parse reads key=value lines from r. Blank lines and comments are skipped;
// a line without '=' is logged and skipped.
func Parse(r io.Reader, logger *logx.Logger) (Properties, error) {
	p := Properties{}
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			logger.Warnf("bad properties line %d: %s", lineNo, line)
			continue
		}
		p[strings.TrimSpace(key)] = strings.ReplaceAll(strings.TrimSpace(value), `\:`, ":")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return p, nil
}
