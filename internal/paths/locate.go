package paths

import (
	"path/filepath"
)

// Markers names the files and directories that classify a directory for one
// build-tool family.
type Markers struct {
	// Modules are build descriptors; the nearest one marks the module.
	Modules []string
	// WrapperFiles and WrapperDirs mark a project that pins its own toolchain.
	WrapperFiles []string
	WrapperDirs  []string
	// Properties is the wrapper properties file, relative to the project dir.
	Properties string
}

// SCMMarkers identify the top of a source-control working copy.
var SCMMarkers = []string{".git", ".hg", ".svn", ".bzr", "_darcs", ".fslckout"}

var (
	MavenMarkers = Markers{
		Modules:      []string{"pom.xml"},
		WrapperFiles: []string{"mvnw", "mvnw.cmd"},
		WrapperDirs:  []string{filepath.Join(".mvn", "wrapper")},
		Properties:   filepath.Join(".mvn", "wrapper", "maven-wrapper.properties"),
	}
	GradleMarkers = Markers{
		Modules:      []string{"build.gradle", "build.gradle.kts"},
		WrapperFiles: []string{"gradlew", "gradlew.bat"},
		WrapperDirs:  []string{filepath.Join("gradle", "wrapper")},
		Properties:   filepath.Join("gradle", "wrapper", "gradle-wrapper.properties"),
	}
)

// Location is the outcome of an ancestor scan.
type Location struct {
	Start string
	// ModuleDir is the nearest directory with a build descriptor, or Start.
	ModuleDir   string
	ModuleFound bool
	// WrapperDir is the nearest directory with wrapper markers, if any.
	WrapperDir string
	// ProjectDir is WrapperDir when present, otherwise ModuleDir.
	ProjectDir string
	// RepoRoot is the nearest source-control root, if any.
	RepoRoot string
}

// PropertiesPath returns the wrapper properties file for the location, or ""
// when no wrapper was found.
func (l Location) PropertiesPath(m Markers) string {
	if l.WrapperDir == "" || m.Properties == "" {
		return ""
	}
	return filepath.Join(l.WrapperDir, m.Properties)
}

// Ancestors returns start followed by each of its parents up to the root.
func Ancestors(start string) []string {
	dir := filepath.Clean(start)
	var out []string
	for {
		out = append(out, dir)
		parent := filepath.Dir(dir)
		if parent == dir {
			return out
		}
		dir = parent
	}
}

type scanState struct {
	module  string
	wrapper string
	repo    string
}

func (s scanState) visit(dir string, m Markers) scanState {
	// Module and wrapper markers only count inside the working copy, and
	// modules only inside the wrapper.
	if s.repo == "" {
		if s.wrapper == "" && s.module == "" && hasAny(dir, m.Modules, isFile) {
			s.module = dir
		}
		if s.wrapper == "" && (hasAny(dir, m.WrapperFiles, isFile) || hasAny(dir, m.WrapperDirs, isDir)) {
			s.wrapper = dir
		}
		if hasAny(dir, SCMMarkers, exists) {
			s.repo = dir
		}
	}
	return s
}

func (s scanState) location(start string) Location {
	loc := Location{
		Start:      start,
		ModuleDir:  start,
		WrapperDir: s.wrapper,
		RepoRoot:   s.repo,
	}
	if s.module != "" {
		loc.ModuleDir = s.module
		loc.ModuleFound = true
	}
	loc.ProjectDir = loc.ModuleDir
	if s.wrapper != "" {
		loc.ProjectDir = s.wrapper
	}
	return loc
}

// Locate walks from start towards the filesystem root and classifies the
// module, project and repository directories. The walk never goes above
// home; pass "" to disable that bound.
func Locate(start, home string, m Markers) Location {
	start = filepath.Clean(start)
	var state scanState
	for _, dir := range Ancestors(start) {
		state = state.visit(dir, m)
		if home != "" && SamePath(dir, home) {
			break
		}
	}
	return state.location(start)
}

func hasAny(dir string, names []string, probe func(string) bool) bool {
	for _, name := range names {
		if probe(filepath.Join(dir, name)) {
			return true
		}
	}
	return false
}
