// Package launcher runs a build tool on behalf of a wrapper alias: it locates
// the project, resolves and caches the distribution, and hands over to it.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"time"

	"javabox/internal/dist"
	"javabox/internal/identity"
	"javabox/internal/launch"
	"javabox/internal/logx"
	"javabox/internal/paths"
	"javabox/internal/resolve"
)

// ErrNoModule means a Maven invocation found no pom.xml.
var ErrNoModule = errors.New("no pom.xml in this directory or any parent")

// Launcher runs one tool invocation.
type Launcher struct {
	// Home bounds the project search and holds the wrapper caches.
	Home    string
	WorkDir string
	// Feeds refreshes release feeds; Archives downloads distributions.
	Feeds    resolve.Fetcher
	Archives *dist.Manager
	Runner   launch.Runner
	MaxAge   time.Duration
	Logger   *logx.Logger
	// Prepared, when set, runs once the distribution is in place and before
	// the tool starts; progress output is torn down there.
	Prepared func()
}

func familyFor(id identity.Identity) (resolve.Family, error) {
	switch id {
	case identity.Maven:
		return resolve.Maven, nil
	case identity.Gradle:
		return resolve.Gradle, nil
	default:
		return resolve.Family{}, fmt.Errorf("%s does not launch a build tool", id)
	}
}

// Run resolves the tool for id and runs it with args, returning its exit code.
func (l *Launcher) Run(ctx context.Context, id identity.Identity, args []string) (int, error) {
	fam, err := familyFor(id)
	if err != nil {
		return 0, &Error{Kind: KindConfig, Op: "select tool", Err: err}
	}

	loc := paths.Locate(l.WorkDir, l.Home, fam.Markers)
	l.Logger.Debugf("module=%s project=%s wrapper=%q repo=%q", loc.ModuleDir, loc.ProjectDir, loc.WrapperDir, loc.RepoRoot)
	if fam.Name == resolve.Maven.Name && !loc.ModuleFound {
		return 0, &Error{Kind: KindConfig, Op: "locate maven project", Path: l.WorkDir, Err: ErrNoModule}
	}

	resolver := &resolve.Resolver{
		Family:  fam,
		Fetcher: l.Feeds,
		Home:    l.Home,
		MaxAge:  l.MaxAge,
		Logger:  l.Logger,
	}
	spec, err := resolver.Resolve(ctx, loc)
	if err != nil {
		return 0, &Error{Kind: classify(err, KindResolution), Op: "resolve " + fam.Name + " distribution", Path: loc.ProjectDir, Err: err}
	}

	entry, err := fam.Layout.Entry(l.Home, spec.URL)
	if err != nil {
		return 0, &Error{Kind: KindResolution, Op: "map distribution url", URL: spec.URL, Err: err}
	}
	if _, err := l.Archives.Ensure(ctx, fam.Layout, entry, spec); err != nil {
		return 0, &Error{Kind: classify(err, KindCache), Op: "install " + fam.Name + " " + spec.Version, Path: entry.BaseDir, URL: spec.URL, Err: err}
	}

	if l.Prepared != nil {
		l.Prepared()
	}
	l.Logger.Infof("running %s in %s", entry.Launcher, loc.ModuleDir)
	code, err := l.Runner.Run(ctx, launch.Command{Path: entry.Launcher, Args: args, Dir: loc.ModuleDir})
	if err != nil {
		return 0, &Error{Kind: KindDelegation, Op: "run", Path: entry.Launcher, Err: err}
	}
	return code, nil
}
