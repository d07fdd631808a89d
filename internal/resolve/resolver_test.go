package resolve

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"javabox/internal/config"
	"javabox/internal/dist"
	"javabox/internal/logx"
	"javabox/internal/paths"
)

type fakeFetcher struct {
	body  string
	err   error
	calls int
	urls  []string
}

func (f *fakeFetcher) DownloadOrReuse(_ context.Context, rawURL, dest string, _ time.Duration, _ dist.Verifier) error {
	f.calls++
	f.urls = append(f.urls, rawURL)
	if f.err != nil {
		return f.err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(f.body), 0o644)
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

func TestResolveWrapperEndToEnd(t *testing.T) {
	home := t.TempDir()
	repo := filepath.Join(home, "repo")
	mod := filepath.Join(repo, "mod")
	if err := os.MkdirAll(filepath.Join(repo, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, filepath.Join(repo, "gradlew"), "#!/bin/sh\n")
	writeFile(t, filepath.Join(repo, "gradle", "wrapper", "gradle-wrapper.properties"),
		"distributionBase=GRADLE_USER_HOME\ndistributionUrl=https\\://services.gradle.org/distributions/gradle-7.2-all.zip\n")
	writeFile(t, filepath.Join(mod, "build.gradle"), "")

	loc := paths.Locate(mod, home, Gradle.Markers)
	if loc.ModuleDir != mod || loc.ProjectDir != repo {
		t.Fatalf("module=%s project=%s", loc.ModuleDir, loc.ProjectDir)
	}

	fetcher := &fakeFetcher{}
	r := &Resolver{Family: Gradle, Fetcher: fetcher, Home: home}
	spec, err := r.Resolve(context.Background(), loc)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := dist.Spec{
		Version: "7.2",
		URL:     "https://services.gradle.org/distributions/gradle-7.2-all.zip",
		Source:  dist.SourceWrapper,
	}
	if spec != want {
		t.Fatalf("spec = %+v, want %+v", spec, want)
	}
	if fetcher.calls != 0 {
		t.Fatal("wrapper resolution must not touch the network")
	}
}

func TestResolveWrapperChecksumAndSuspiciousHost(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pom.xml"), "<project/>")
	writeFile(t, filepath.Join(dir, ".mvn", "wrapper", "maven-wrapper.properties"),
		"distributionUrl=https://mirror.example.com/maven/apache-maven-3.9.6-bin.zip\ndistributionSha256Sum=ABCDEF\n")

	var logs bytes.Buffer
	r := &Resolver{Family: Maven, Home: dir, Logger: logx.New(&logs, logx.LevelWarn)}
	spec, err := r.Resolve(context.Background(), paths.Locate(dir, dir, Maven.Markers))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Version != "3.9.6" {
		t.Fatalf("version = %q", spec.Version)
	}
	if spec.Checksum != (dist.Checksum{Algorithm: "sha256", Hex: "abcdef"}) {
		t.Fatalf("checksum = %+v", spec.Checksum)
	}
	if !strings.Contains(logs.String(), "suspicious distribution location") {
		t.Fatalf("expected warning, got %q", logs.String())
	}
}

func TestResolveWrapperWithoutURLFallsThrough(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "mvnw"), "")
	writeFile(t, filepath.Join(dir, ".mvn", "wrapper", "maven-wrapper.properties"), "wrapperVersion=3.3.2\n")
	if err := config.SavePin(dir, config.Pin{Maven: &config.ToolPin{Version: "3.8.8"}}); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{Family: Maven, Home: dir}
	spec, err := r.Resolve(context.Background(), paths.Locate(dir, dir, Maven.Markers))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Source != dist.SourcePin {
		t.Fatalf("source = %s", spec.Source)
	}
	if spec.URL != "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/3.8.8/apache-maven-3.8.8-bin.zip" {
		t.Fatalf("url = %s", spec.URL)
	}
}

func TestResolvePinDownloadURLWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "build.gradle.kts"), "")
	pin := config.Pin{Gradle: &config.ToolPin{
		Version:     "8.4",
		DownloadURL: "https://services.gradle.org/distributions/gradle-8.5-all.zip",
	}}
	if err := config.SavePin(dir, pin); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{Family: Gradle, Home: dir}
	spec, err := r.Resolve(context.Background(), paths.Locate(dir, dir, Gradle.Markers))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.URL != pin.Gradle.DownloadURL || spec.Version != "8.4" {
		t.Fatalf("spec = %+v", spec)
	}
}

func TestResolveLatestGradle(t *testing.T) {
	home := t.TempDir()
	fetcher := &fakeFetcher{body: `{"version":"8.5","current":true,"downloadUrl":"https://services.gradle.org/distributions/gradle-8.5-bin.zip","checksumUrl":"https://services.gradle.org/distributions/gradle-8.5-bin.zip.sha256"}`}
	r := &Resolver{Family: Gradle, Fetcher: fetcher, Home: home}

	spec, err := r.Resolve(context.Background(), paths.Locate(home, home, Gradle.Markers))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if spec.Version != "8.5" || spec.URL != "https://services.gradle.org/distributions/gradle-8.5-bin.zip" || spec.Source != dist.SourceLatest {
		t.Fatalf("spec = %+v", spec)
	}
	if fetcher.calls != 1 || fetcher.urls[0] != Gradle.FeedURL {
		t.Fatalf("fetcher calls = %d %v", fetcher.calls, fetcher.urls)
	}
	if _, err := os.Stat(filepath.Join(home, ".gradle", "wrapper", "dists", "current")); err != nil {
		t.Fatalf("feed not cached: %v", err)
	}
}

func TestResolveLatestKeepsStaleFeedWhenRefreshIsGarbage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html>captive portal</html>"))
	}))
	defer srv.Close()

	home := t.TempDir()
	fam := Gradle
	fam.FeedURL = srv.URL + "/versions/current"
	feed := fam.FeedPath(home)
	writeFile(t, feed, `{"version":"8.4","downloadUrl":"https://services.gradle.org/distributions/gradle-8.4-bin.zip"}`)
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(feed, old, old); err != nil {
		t.Fatal(err)
	}

	r := &Resolver{Family: fam, Fetcher: dist.NewManager(dist.Options{}), Home: home}
	spec, err := r.Latest(context.Background())
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if spec.Version != "8.4" {
		t.Fatalf("version = %q, want the cached 8.4", spec.Version)
	}
	data, err := os.ReadFile(feed)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(data), "captive") {
		t.Fatal("garbage refresh replaced the cached feed")
	}
}

func TestResolveLatestMaven(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		version string
	}{
		{
			name:    "latest",
			body:    `<metadata><groupId>org.apache.maven</groupId><artifactId>apache-maven</artifactId><versioning><latest>4.0.0</latest><release>3.9.6</release></versioning></metadata>`,
			version: "4.0.0",
		},
		{
			name:    "release fallback",
			body:    `<metadata><versioning><release>3.9.6</release></versioning></metadata>`,
			version: "3.9.6",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			home := t.TempDir()
			r := &Resolver{Family: Maven, Fetcher: &fakeFetcher{body: tc.body}, Home: home}
			spec, err := r.Latest(context.Background())
			if err != nil {
				t.Fatalf("Latest: %v", err)
			}
			if spec.Version != tc.version {
				t.Fatalf("version = %q, want %q", spec.Version, tc.version)
			}
			if spec.URL != Maven.VersionURL(tc.version) {
				t.Fatalf("url = %s", spec.URL)
			}
		})
	}
}

func TestResolveLatestFailures(t *testing.T) {
	home := t.TempDir()

	r := &Resolver{Family: Maven, Fetcher: &fakeFetcher{err: errors.New("offline")}, Home: home}
	if _, err := r.Latest(context.Background()); err == nil || !strings.Contains(err.Error(), "offline") {
		t.Fatalf("expected fetch error, got %v", err)
	}

	r = &Resolver{Family: Maven, Fetcher: &fakeFetcher{body: "<metadata><versioning/></metadata>"}, Home: home}
	if _, err := r.Latest(context.Background()); !errors.Is(err, ErrNoDistribution) {
		t.Fatalf("expected ErrNoDistribution, got %v", err)
	}

	r = &Resolver{Family: Gradle, Fetcher: &fakeFetcher{body: "not json"}, Home: home}
	if _, err := r.Latest(context.Background()); err == nil {
		t.Fatal("expected malformed feed error")
	}
}

func TestVersionOf(t *testing.T) {
	tests := []struct {
		family Family
		url    string
		want   string
	}{
		{Maven, "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/3.8.6/apache-maven-3.8.6-bin.zip", "3.8.6"},
		{Maven, "https://mirror.example.com/apache-maven-3.9.6-bin.tar.gz", "3.9.6"},
		{Gradle, "https://services.gradle.org/distributions/gradle-7.2-all.zip", "7.2"},
		{Gradle, "https://example.com/dists/gradle-8.5-bin.zip?token=x", "8.5"},
		{Gradle, "https://example.com/custom.zip", ""},
	}
	for _, tc := range tests {
		if got := tc.family.VersionOf(tc.url); got != tc.want {
			t.Errorf("%s VersionOf(%q) = %q, want %q", tc.family.Name, tc.url, got, tc.want)
		}
	}
}
