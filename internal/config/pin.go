package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PinFileName is the per-project file that pins tool versions.
const PinFileName = "javabox.yaml"

// Pin records the distributions a project is pinned to.
type Pin struct {
	Maven  *ToolPin `yaml:"maven,omitempty"`
	Gradle *ToolPin `yaml:"gradle,omitempty"`
}

// ToolPin pins a single build tool. DownloadURL wins over Version.
type ToolPin struct {
	Version     string `yaml:"version,omitempty"`
	DownloadURL string `yaml:"download_url,omitempty"`
}

// IsZero reports whether the pin names neither a version nor a URL.
func (p *ToolPin) IsZero() bool {
	return p == nil || (strings.TrimSpace(p.Version) == "" && strings.TrimSpace(p.DownloadURL) == "")
}

// Tool returns the pin for the named tool ("maven" or "gradle").
func (p Pin) Tool(name string) *ToolPin {
	switch name {
	case "maven":
		return p.Maven
	case "gradle":
		return p.Gradle
	default:
		return nil
	}
}

// SetTool replaces the pin for the named tool.
func (p *Pin) SetTool(name string, tp *ToolPin) error {
	switch name {
	case "maven":
		p.Maven = tp
	case "gradle":
		p.Gradle = tp
	default:
		return fmt.Errorf("unknown tool %q", name)
	}
	return nil
}

// PinPath returns the pin file location inside dir.
func PinPath(dir string) string {
	return filepath.Join(dir, PinFileName)
}

// LoadPin reads the pin file from dir. A missing file yields an empty pin
// and found=false.
func LoadPin(dir string) (Pin, bool, error) {
	contents, err := os.ReadFile(PinPath(dir))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Pin{}, false, nil
		}
		return Pin{}, false, fmt.Errorf("read pin: %w", err)
	}

	var pin Pin
	if err := yaml.Unmarshal(contents, &pin); err != nil {
		return Pin{}, false, fmt.Errorf("unmarshal pin %s: %w", PinPath(dir), err)
	}
	return pin, true, nil
}

// SavePin writes the pin file into dir through a temporary file and rename.
func SavePin(dir string, pin Pin) error {
	if pin.Maven.IsZero() && pin.Gradle.IsZero() {
		return errors.New("refusing to save an empty pin")
	}
	buf, err := yaml.Marshal(&pin)
	if err != nil {
		return fmt.Errorf("marshal pin: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".javabox-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp pin: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf); err != nil {
		tmp.Close()
		return fmt.Errorf("write pin temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close pin temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), PinPath(dir)); err != nil {
		return fmt.Errorf("replace pin: %w", err)
	}
	return nil
}
