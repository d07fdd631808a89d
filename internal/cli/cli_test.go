package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"javabox/internal/config"
	"javabox/internal/identity"
	"javabox/internal/launcher"
	"javabox/internal/logx"
)

// withEnv points the package globals at a throwaway home and restores them
// after the test.
func withEnv(t *testing.T) *launcher.Env {
	t.Helper()
	home := t.TempDir()
	e := &launcher.Env{
		Settings: config.Default(),
		Logger:   logx.New(&bytes.Buffer{}, logx.LevelError),
		Home:     home,
		WorkDir:  home,
	}
	oldEnv, oldProject, oldJSON, oldBin, oldExe := env, projectDir, outputJSON, binDir, executablePath
	t.Cleanup(func() {
		env, projectDir, outputJSON, binDir, executablePath = oldEnv, oldProject, oldJSON, oldBin, oldExe
		resolveSource, fetchSource, installForce = sourceFlags{}, sourceFlags{}, false
	})
	return e
}

// execute runs the root command and returns what it wrote to stdout.
func execute(t *testing.T, e *launcher.Env, args ...string) (string, error) {
	t.Helper()
	stdout, _, err := executeStreams(t, e, args...)
	return stdout, err
}

func executeStreams(t *testing.T, e *launcher.Env, args ...string) (string, string, error) {
	t.Helper()
	env = e
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHashPrintsBothBuckets(t *testing.T) {
	e := withEnv(t)

	out, err := execute(t, e, "hash", "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/3.8.6/apache-maven-3.8.6-bin.zip")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.Contains(out, "67568434") {
		t.Fatalf("expected maven bucket, got %s", out)
	}
	if !strings.Contains(out, filepath.Join(".m2", "wrapper", "dists", "apache-maven-3.8.6-bin")) {
		t.Fatalf("expected maven dists path, got %s", out)
	}

	out, err = execute(t, e, "hash", "https://services.gradle.org/distributions/gradle-7.2-all.zip")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.Contains(out, "260hg96vuh6ex27h9vo47iv4d") {
		t.Fatalf("expected gradle bucket, got %s", out)
	}
}

func TestHashReportsBadURLInline(t *testing.T) {
	e := withEnv(t)
	out, err := execute(t, e, "hash", "https://example.com/")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if strings.Count(out, "error:") != 2 {
		t.Fatalf("expected an error row per layout, got %s", out)
	}
}

func TestResolveJSONFromWrapper(t *testing.T) {
	e := withEnv(t)
	project := filepath.Join(e.Home, "work", "app")
	writeFile(t, filepath.Join(project, "build.gradle"), "")
	writeFile(t, filepath.Join(project, "gradle", "wrapper", "gradle-wrapper.properties"),
		"distributionUrl=https\\://services.gradle.org/distributions/gradle-7.2-all.zip\n")

	out, err := execute(t, e, "--json", "--project", project, "resolve", "gradle")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var got resolution
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if got.Spec.Version != "7.2" || got.Spec.Source != "wrapper" {
		t.Fatalf("spec = %+v", got.Spec)
	}
	if got.ProjectDir != project || got.Cached {
		t.Fatalf("resolution = %+v", got)
	}
	if !strings.Contains(got.HomeDir, "260hg96vuh6ex27h9vo47iv4d") {
		t.Fatalf("home dir = %s", got.HomeDir)
	}
}

func TestResolveExplicitVersion(t *testing.T) {
	e := withEnv(t)
	out, err := execute(t, e, "resolve", "mvn", "--version", "3.9.6")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !strings.Contains(out, "apache-maven-3.9.6-bin.zip") {
		t.Fatalf("expected versioned url, got %s", out)
	}

	if _, err := execute(t, e, "resolve", "maven", "--version", "3.9.6", "--url", "https://x/y.zip"); err == nil {
		t.Fatal("expected conflicting flags to fail")
	}
}

func TestResolveUnknownTool(t *testing.T) {
	e := withEnv(t)
	_, err := execute(t, e, "resolve", "ant")
	if err == nil || !strings.Contains(err.Error(), "gradle, maven") {
		t.Fatalf("expected unknown tool error, got %v", err)
	}
}

func TestPinWritesProjectFile(t *testing.T) {
	e := withEnv(t)
	project := filepath.Join(e.Home, "svc")
	writeFile(t, filepath.Join(project, "pom.xml"), "<project/>")
	e.WorkDir = project

	if _, err := execute(t, e, "pin", "maven", "3.9.6"); err != nil {
		t.Fatalf("pin: %v", err)
	}
	if _, err := execute(t, e, "pin", "gradlew", "https://services.gradle.org/distributions/gradle-8.5-bin.zip"); err != nil {
		t.Fatalf("pin: %v", err)
	}

	pin, ok, err := config.LoadPin(project)
	if err != nil || !ok {
		t.Fatalf("LoadPin: ok=%v err=%v", ok, err)
	}
	if pin.Maven == nil || pin.Maven.Version != "3.9.6" {
		t.Fatalf("maven pin = %+v", pin.Maven)
	}
	if pin.Gradle == nil || pin.Gradle.Version != "8.5" || pin.Gradle.DownloadURL == "" {
		t.Fatalf("gradle pin = %+v", pin.Gradle)
	}
}

func TestListEmptyAndPopulated(t *testing.T) {
	e := withEnv(t)

	out, err := execute(t, e, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "no cached distributions") {
		t.Fatalf("expected empty message, got %s", out)
	}

	home := filepath.Join(e.Home, ".gradle", "wrapper", "dists", "gradle-8.5-bin", "abc123", "gradle-8.5")
	writeFile(t, filepath.Join(home, "bin", "gradle"), "#!/bin/sh\n")

	out, err = execute(t, e, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, "gradle-8.5-bin") || !strings.Contains(out, "abc123") {
		t.Fatalf("expected cached row, got %s", out)
	}
}

func TestInstallAndUninstallAliases(t *testing.T) {
	e := withEnv(t)
	exe := filepath.Join(e.Home, "javabox")
	writeFile(t, exe, "")
	executablePath = func() (string, error) { return exe, nil }
	dir := filepath.Join(e.Home, "bin")

	if _, err := execute(t, e, "install", "--bin-dir", dir); err != nil {
		t.Fatalf("install: %v", err)
	}
	for _, name := range identity.LauncherAliases() {
		if !pointsAt(filepath.Join(dir, name), exe) {
			t.Fatalf("%s not linked", name)
		}
	}

	out, err := execute(t, e, "install", "--bin-dir", dir)
	if err != nil {
		t.Fatalf("reinstall: %v", err)
	}
	if !strings.Contains(out, "unchanged") {
		t.Fatalf("expected unchanged links, got %s", out)
	}

	foreign := filepath.Join(dir, "mvn")
	if err := os.Remove(foreign); err != nil {
		t.Fatal(err)
	}
	writeFile(t, foreign, "#!/bin/sh\n")

	if _, err := execute(t, e, "uninstall", "--bin-dir", dir); err != nil {
		t.Fatalf("uninstall: %v", err)
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Fatalf("foreign file must survive uninstall: %v", err)
	}
	if _, err := os.Lstat(filepath.Join(dir, "gradle")); !os.IsNotExist(err) {
		t.Fatalf("gradle link should be gone: %v", err)
	}
}

func TestInstallRefusesToClobber(t *testing.T) {
	e := withEnv(t)
	exe := filepath.Join(e.Home, "javabox")
	writeFile(t, exe, "")
	executablePath = func() (string, error) { return exe, nil }
	dir := filepath.Join(e.Home, "bin")
	writeFile(t, filepath.Join(dir, "gradle"), "real gradle")

	if _, err := execute(t, e, "install", "--bin-dir", dir); err == nil {
		t.Fatal("expected install to refuse an existing file")
	}
	if _, err := execute(t, e, "install", "--bin-dir", dir, "--force"); err != nil {
		t.Fatalf("install --force: %v", err)
	}
	if !pointsAt(filepath.Join(dir, "gradle"), exe) {
		t.Fatal("gradle should be replaced with --force")
	}
}

func TestResultsGoToStdout(t *testing.T) {
	e := withEnv(t)
	project := filepath.Join(e.Home, "svc")
	writeFile(t, filepath.Join(project, "pom.xml"), "<project/>")

	tests := [][]string{
		{"--json", "hash", "https://services.gradle.org/distributions/gradle-7.2-all.zip"},
		{"--json", "version"},
		{"--json", "list"},
		{"--json", "--project", project, "resolve", "maven", "--version", "3.9.6"},
		{"--project", project, "pin", "maven", "3.9.6"},
		{"version"},
	}
	for _, args := range tests {
		stdout, stderr, err := executeStreams(t, e, args...)
		if err != nil {
			t.Fatalf("%v: %v", args, err)
		}
		if stdout == "" {
			t.Fatalf("%v: nothing on stdout", args)
		}
		if stderr != "" {
			t.Fatalf("%v: unexpected stderr %q", args, stderr)
		}
		if args[0] == "--json" && !json.Valid([]byte(stdout)) {
			t.Fatalf("%v: stdout is not json: %s", args, stdout)
		}
	}
}

func TestVersionJSON(t *testing.T) {
	e := withEnv(t)
	out, err := execute(t, e, "version", "--json")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, `"version": "dev"`) {
		t.Fatalf("unexpected output %s", out)
	}
}
