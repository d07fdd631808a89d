package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"javabox/internal/dist"
	"javabox/internal/resolve"
)

// sourceFlags let a command bypass project resolution.
type sourceFlags struct {
	version string
	url     string
}

func (s *sourceFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.version, "version", "", "Use this release instead of resolving one")
	fs.StringVar(&s.url, "url", "", "Use this distribution URL instead of resolving one")
}

// spec returns the explicitly requested distribution, if any.
func (s sourceFlags) spec(fam resolve.Family) (dist.Spec, bool, error) {
	version := strings.TrimSpace(s.version)
	rawURL := strings.TrimSpace(s.url)
	switch {
	case version != "" && rawURL != "":
		return dist.Spec{}, false, fmt.Errorf("--version and --url are mutually exclusive")
	case rawURL != "":
		return dist.Spec{Version: fam.VersionOf(rawURL), URL: rawURL, Source: dist.SourcePin}, true, nil
	case version != "":
		return dist.Spec{Version: version, URL: fam.VersionURL(version), Source: dist.SourcePin}, true, nil
	default:
		return dist.Spec{}, false, nil
	}
}

func toolNames() []string {
	names := []string{resolve.Maven.Name, resolve.Gradle.Name}
	sort.Strings(names)
	return names
}

// parseTool accepts a family name or one of its aliases.
func parseTool(arg string) (resolve.Family, error) {
	name := strings.ToLower(strings.TrimSpace(arg))
	switch name {
	case "mvn", "mvnw":
		name = resolve.Maven.Name
	case "gradlew":
		name = resolve.Gradle.Name
	}
	fam, ok := resolve.FamilyByName(name)
	if !ok {
		return resolve.Family{}, fmt.Errorf("unknown tool %q (want one of %s)", arg, strings.Join(toolNames(), ", "))
	}
	return fam, nil
}

// startDir is where project searches begin.
func startDir() (string, error) {
	if projectDir != "" {
		return filepath.Abs(projectDir)
	}
	return env.WorkDir, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func nonEmptyOrDash(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "-"
	}
	return value
}
