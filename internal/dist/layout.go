package dist

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"javabox/internal/javahash"
	"javabox/internal/paths"
)

// Layout describes where one wrapper family keeps its distributions and how
// it names the per-URL cache bucket.
type Layout struct {
	Name string
	// VendorDir is the directory under the user home, e.g. ".m2".
	VendorDir string
	// Launcher is the path of the tool launcher inside an unpacked distribution.
	Launcher string
	// SidecarSuffix names the published digest file next to each archive.
	SidecarSuffix    string
	SidecarAlgorithm string
	hash             func(raw string, u *url.URL) (string, error)
}

var (
	MavenLayout = Layout{
		Name:             "maven",
		VendorDir:        ".m2",
		Launcher:         filepath.Join("bin", launcherName("mvn")),
		SidecarSuffix:    ".sha512",
		SidecarAlgorithm: "sha512",
		hash:             mavenBucket,
	}
	GradleLayout = Layout{
		Name:             "gradle",
		VendorDir:        ".gradle",
		Launcher:         filepath.Join("bin", launcherName("gradle")),
		SidecarSuffix:    ".sha256",
		SidecarAlgorithm: "sha256",
		hash:             gradleBucket,
	}
)

// mavenBucket matches the Maven wrapper: Integer.toHexString(URI.hashCode()).
func mavenBucket(raw string, _ *url.URL) (string, error) {
	h, err := javahash.URIHashString(raw)
	if err != nil {
		return "", err
	}
	return javahash.HexHash(h), nil
}

// gradleBucket matches the Gradle wrapper's PathAssembler, which hashes the
// URL exactly as written in the properties file.
func gradleBucket(raw string, _ *url.URL) (string, error) {
	return javahash.ArchiveHash(raw), nil
}

// Entry is the on-disk location of one distribution.
type Entry struct {
	URL         string `json:"url"`
	ArchiveName string `json:"archive_name"`
	Stem        string `json:"stem"`
	DistStem    string `json:"dist_stem"`
	Hash        string `json:"hash"`
	BaseDir     string `json:"base_dir"`
	HomeDir     string `json:"home_dir"`
	ArchivePath string `json:"archive_path"`
	Launcher    string `json:"launcher"`
	format      archiveFormat
}

// LockPath is the advisory lock guarding the bucket.
func (e Entry) LockPath() string {
	return filepath.Join(e.BaseDir, e.ArchiveName+".lock")
}

// DistsDir returns <home>/<vendor>/wrapper/dists.
func (l Layout) DistsDir(home string) string {
	return filepath.Join(home, l.VendorDir, "wrapper", "dists")
}

// Entry derives the cache entry for rawURL under the given user home.
func (l Layout) Entry(home, rawURL string) (Entry, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return Entry{}, fmt.Errorf("bad distribution url %q: %w", rawURL, err)
	}
	if u.Scheme == "" {
		return Entry{}, fmt.Errorf("bad distribution url %q: missing scheme", rawURL)
	}
	archive := path.Base(u.Path)
	if archive == "." || archive == "" || archive == "/" {
		return Entry{}, fmt.Errorf("infer archive name from url: %s", rawURL)
	}
	stem, format := archiveStem(archive)
	if format == "" {
		return Entry{}, fmt.Errorf("unsupported archive type: %s", archive)
	}
	hash, err := l.hash(rawURL, u)
	if err != nil {
		return Entry{}, fmt.Errorf("hash distribution url %s: %w", rawURL, err)
	}

	distStem := strings.TrimSuffix(stem, "-bin")
	base := filepath.Join(l.DistsDir(home), stem, hash)
	homeDir := filepath.Join(base, distStem)
	return Entry{
		URL:         rawURL,
		ArchiveName: archive,
		Stem:        stem,
		DistStem:    distStem,
		Hash:        hash,
		BaseDir:     base,
		HomeDir:     homeDir,
		ArchivePath: filepath.Join(base, archive),
		Launcher:    filepath.Join(homeDir, l.Launcher),
		format:      format,
	}, nil
}

// Cached describes a distribution already unpacked in the cache.
type Cached struct {
	Layout  string `json:"layout"`
	Stem    string `json:"stem"`
	Hash    string `json:"hash"`
	HomeDir string `json:"home_dir"`
}

// List enumerates unpacked distributions under home.
func (l Layout) List(home string) ([]Cached, error) {
	root := l.DistsDir(home)
	stems, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read dists dir: %w", err)
	}

	var out []Cached
	for _, stem := range stems {
		if !stem.IsDir() {
			continue
		}
		hashes, err := os.ReadDir(filepath.Join(root, stem.Name()))
		if err != nil {
			continue
		}
		for _, hash := range hashes {
			if !hash.IsDir() {
				continue
			}
			bucket := filepath.Join(root, stem.Name(), hash.Name())
			homes, err := os.ReadDir(bucket)
			if err != nil {
				continue
			}
			for _, h := range homes {
				dir := filepath.Join(bucket, h.Name())
				if !h.IsDir() || strings.HasPrefix(h.Name(), ".") || !paths.NonEmptyDir(dir) {
					continue
				}
				out = append(out, Cached{Layout: l.Name, Stem: stem.Name(), Hash: hash.Name(), HomeDir: dir})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].HomeDir < out[j].HomeDir })
	return out, nil
}
