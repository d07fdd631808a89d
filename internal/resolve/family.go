package resolve

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"javabox/internal/dist"
	"javabox/internal/paths"
)

// Family bundles everything the resolver knows about one build tool.
type Family struct {
	Name    string
	Layout  dist.Layout
	Markers paths.Markers
	// DistBase is the official distribution location; wrapper URLs outside
	// it are reported as suspicious.
	DistBase string
	// FeedURL answers "what is the latest release".
	FeedURL string
	// FeedFile is the cache file name for the feed under the dists dir.
	FeedFile string
	// Product is the archive name prefix, e.g. "gradle" in gradle-8.5-bin.zip.
	Product string

	versionURL func(base, version string) string
	parseFeed  func(r io.Reader, f Family) (dist.Spec, error)
}

var (
	Maven = Family{
		Name:       "maven",
		Layout:     dist.MavenLayout,
		Markers:    paths.MavenMarkers,
		DistBase:   "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven",
		FeedURL:    "https://repo.maven.apache.org/maven2/org/apache/maven/apache-maven/maven-metadata.xml",
		FeedFile:   "maven-metadata.xml",
		Product:    "apache-maven",
		versionURL: mavenVersionURL,
		parseFeed:  parseMavenMetadata,
	}
	Gradle = Family{
		Name:       "gradle",
		Layout:     dist.GradleLayout,
		Markers:    paths.GradleMarkers,
		DistBase:   "https://services.gradle.org/distributions",
		FeedURL:    "https://services.gradle.org/versions/current",
		FeedFile:   "current",
		Product:    "gradle",
		versionURL: gradleVersionURL,
		parseFeed:  parseGradleCurrent,
	}
)

// FamilyByName returns the family registered under name.
func FamilyByName(name string) (Family, bool) {
	switch name {
	case Maven.Name:
		return Maven, true
	case Gradle.Name:
		return Gradle, true
	default:
		return Family{}, false
	}
}

// VersionURL expands a bare version into the official archive URL.
func (f Family) VersionURL(version string) string {
	return f.versionURL(f.DistBase, version)
}

// FeedPath is where the latest-release feed is cached under home.
func (f Family) FeedPath(home string) string {
	return filepath.Join(f.Layout.DistsDir(home), f.FeedFile)
}

// Official reports whether rawURL lives under the official distribution base.
func (f Family) Official(rawURL string) bool {
	return strings.HasPrefix(rawURL, f.DistBase)
}

// VersionOf derives the tool version from a distribution URL. Official Maven
// URLs carry it as the path segment after the base; everything else falls
// back to the archive name.
func (f Family) VersionOf(rawURL string) string {
	if rest, ok := strings.CutPrefix(rawURL, f.DistBase+"/"); ok {
		if segment, _, found := strings.Cut(rest, "/"); found && segment != "" {
			return segment
		}
	}
	archive := rawURL
	if i := strings.LastIndex(archive, "/"); i >= 0 {
		archive = archive[i+1:]
	}
	if i := strings.IndexAny(archive, "?#"); i >= 0 {
		archive = archive[:i]
	}
	stem := dist.ArchiveStem(archive)
	if !strings.HasPrefix(stem, f.Product+"-") {
		return ""
	}
	version := strings.TrimPrefix(stem, f.Product+"-")
	for _, suffix := range []string{"-bin", "-all", "-src"} {
		version = strings.TrimSuffix(version, suffix)
	}
	return version
}

func mavenVersionURL(base, version string) string {
	return fmt.Sprintf("%s/%s/apache-maven-%s-bin.zip", base, version, version)
}

func gradleVersionURL(base, version string) string {
	return fmt.Sprintf("%s/gradle-%s-bin.zip", base, version)
}

type mavenMetadata struct {
	XMLName    xml.Name `xml:"metadata"`
	GroupID    string   `xml:"groupId"`
	ArtifactID string   `xml:"artifactId"`
	Versioning struct {
		Latest  string `xml:"latest"`
		Release string `xml:"release"`
	} `xml:"versioning"`
}

func parseMavenMetadata(r io.Reader, f Family) (dist.Spec, error) {
	var meta mavenMetadata
	if err := xml.NewDecoder(r).Decode(&meta); err != nil {
		return dist.Spec{}, fmt.Errorf("decode maven metadata: %w", err)
	}
	version := strings.TrimSpace(meta.Versioning.Latest)
	if version == "" {
		version = strings.TrimSpace(meta.Versioning.Release)
	}
	if version == "" {
		return dist.Spec{}, fmt.Errorf("%w: maven metadata lists no latest version", ErrNoDistribution)
	}
	return dist.Spec{
		Version: version,
		URL:     f.VersionURL(version),
		Source:  dist.SourceLatest,
	}, nil
}

type gradleCurrent struct {
	Version     string `json:"version"`
	Current     bool   `json:"current"`
	DownloadURL string `json:"downloadUrl"`
	ChecksumURL string `json:"checksumUrl"`
}

func parseGradleCurrent(r io.Reader, f Family) (dist.Spec, error) {
	var cur gradleCurrent
	if err := json.NewDecoder(r).Decode(&cur); err != nil {
		return dist.Spec{}, fmt.Errorf("decode gradle current version: %w", err)
	}
	url := strings.TrimSpace(cur.DownloadURL)
	version := strings.TrimSpace(cur.Version)
	if url == "" && version != "" {
		url = f.VersionURL(version)
	}
	if url == "" {
		return dist.Spec{}, fmt.Errorf("%w: gradle feed has no download url", ErrNoDistribution)
	}
	if version == "" {
		version = f.VersionOf(url)
	}
	return dist.Spec{
		Version: version,
		URL:     url,
		Source:  dist.SourceLatest,
	}, nil
}
