// Package resolve decides which distribution a project runs: the URL its
// wrapper declares, a version pinned in javabox.yaml, or the latest release.
package resolve

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"javabox/internal/config"
	"javabox/internal/dist"
	"javabox/internal/logx"
	"javabox/internal/paths"
	"javabox/internal/props"
)

// Wrapper property keys.
const (
	KeyDistributionURL    = "distributionUrl"
	KeyDistributionSHA256 = "distributionSha256Sum"
)

// DefaultMaxAge is how long a cached latest-release feed is trusted.
const DefaultMaxAge = 24 * time.Hour

// ErrNoDistribution means no source could name a distribution.
var ErrNoDistribution = errors.New("no distribution could be determined")

// Fetcher keeps a local copy of a remote file fresh. verify, when set, must
// accept a download before it replaces dest. *dist.Manager implements it.
type Fetcher interface {
	DownloadOrReuse(ctx context.Context, rawURL, dest string, maxAge time.Duration, verify dist.Verifier) error
}

// Resolver resolves the distribution for one family.
type Resolver struct {
	Family  Family
	Fetcher Fetcher
	// Home is the user home holding the wrapper caches.
	Home   string
	MaxAge time.Duration
	Logger *logx.Logger
}

// Resolve picks the distribution for loc: wrapper properties first, then the
// project pin, then the latest-release feed.
func (r *Resolver) Resolve(ctx context.Context, loc paths.Location) (dist.Spec, error) {
	spec, ok, err := r.fromWrapper(loc)
	if err != nil || ok {
		return spec, err
	}
	spec, ok, err = r.fromPin(loc)
	if err != nil || ok {
		return spec, err
	}
	return r.Latest(ctx)
}

func (r *Resolver) fromWrapper(loc paths.Location) (dist.Spec, bool, error) {
	propsPath := loc.PropertiesPath(r.Family.Markers)
	if propsPath == "" {
		return dist.Spec{}, false, nil
	}
	p, err := props.Read(propsPath, r.Logger)
	if err != nil {
		return dist.Spec{}, false, err
	}
	rawURL, ok := p.Get(KeyDistributionURL)
	if !ok {
		r.Logger.Debugf("%s has no %s", propsPath, KeyDistributionURL)
		return dist.Spec{}, false, nil
	}

	if !r.Family.Official(rawURL) {
		r.Logger.Warnf("suspicious distribution location %s (expected %s/...)", rawURL, r.Family.DistBase)
	}
	spec := dist.Spec{
		Version: r.Family.VersionOf(rawURL),
		URL:     rawURL,
		Source:  dist.SourceWrapper,
	}
	if sum, ok := p.Get(KeyDistributionSHA256); ok {
		spec.Checksum = dist.Checksum{Algorithm: "sha256", Hex: strings.ToLower(sum)}
	}
	r.Logger.Debugf("wrapper %s declares %s", propsPath, rawURL)
	return spec, true, nil
}

func (r *Resolver) fromPin(loc paths.Location) (dist.Spec, bool, error) {
	pin, found, err := config.LoadPin(loc.ProjectDir)
	if err != nil || !found {
		return dist.Spec{}, false, err
	}
	tp := pin.Tool(r.Family.Name)
	if tp.IsZero() {
		return dist.Spec{}, false, nil
	}

	spec := dist.Spec{Version: strings.TrimSpace(tp.Version), Source: dist.SourcePin}
	if u := strings.TrimSpace(tp.DownloadURL); u != "" {
		spec.URL = u
		if spec.Version == "" {
			spec.Version = r.Family.VersionOf(u)
		}
	} else {
		spec.URL = r.Family.VersionURL(spec.Version)
	}
	r.Logger.Debugf("pinned by %s: %s", config.PinPath(loc.ProjectDir), spec.URL)
	return spec, true, nil
}

// feedVerifier rejects a downloaded feed the family cannot parse, so an HTML
// error page answered with 200 never replaces a good cached copy.
func (r *Resolver) feedVerifier() dist.Verifier {
	return dist.VerifierFunc(func(_ context.Context, path string) error {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := r.Family.parseFeed(f, r.Family); err != nil {
			return fmt.Errorf("unusable %s release feed: %w", r.Family.Name, err)
		}
		return nil
	})
}

// Latest reads the family's release feed through the reuse policy.
func (r *Resolver) Latest(ctx context.Context) (dist.Spec, error) {
	if r.Fetcher == nil {
		return dist.Spec{}, fmt.Errorf("%w: no fetcher for the %s release feed", ErrNoDistribution, r.Family.Name)
	}
	maxAge := r.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	feed := r.Family.FeedPath(r.Home)
	if err := r.Fetcher.DownloadOrReuse(ctx, r.Family.FeedURL, feed, maxAge, r.feedVerifier()); err != nil {
		return dist.Spec{}, fmt.Errorf("fetch latest %s release: %w", r.Family.Name, err)
	}

	f, err := os.Open(feed)
	if err != nil {
		return dist.Spec{}, fmt.Errorf("open release feed: %w", err)
	}
	defer f.Close()

	spec, err := r.Family.parseFeed(f, r.Family)
	if err != nil {
		return dist.Spec{}, fmt.Errorf("read %s: %w", feed, err)
	}
	r.Logger.Debugf("latest %s release: %s (%s)", r.Family.Name, spec.Version, spec.URL)
	return spec, nil
}
