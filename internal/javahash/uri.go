package javahash

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// ErrUnsupportedURI is returned for URI shapes whose JVM hash is not
// reproduced: opaque URIs and hierarchical URIs without a host.
var ErrUnsupportedURI = errors.New("unsupported uri for hashing")

var opaqueSchemes = map[string]bool{
	"mailto": true,
	"news":   true,
	"urn":    true,
}

// URIHash computes java.net.URI#hashCode for u. Components are hashed in
// their escaped form, as the JVM keeps them. A url.URL cannot tell an empty
// fragment ("...zip#") from none; use URIHashString when the raw text is at
// hand.
func URIHash(u *url.URL) (int32, error) {
	return uriHash(u, false)
}

func uriHash(u *url.URL, emptyFragment bool) (int32, error) {
	if u == nil {
		return 0, fmt.Errorf("%w: nil url", ErrUnsupportedURI)
	}

	h := HashIgnoringCase(0, u.Scheme)
	if u.Fragment != "" || u.RawFragment != "" || emptyFragment {
		h = combine(h, u.EscapedFragment())
	}

	if u.Opaque != "" || opaqueSchemes[strings.ToLower(u.Scheme)] {
		return 0, fmt.Errorf("%w: opaque uri %q", ErrUnsupportedURI, u.String())
	}

	h = combine(h, u.EscapedPath())
	if u.RawQuery != "" || u.ForceQuery {
		h = combine(h, u.RawQuery)
	}

	host := u.Hostname()
	if host == "" {
		return 0, fmt.Errorf("%w: no host in %q", ErrUnsupportedURI, u.String())
	}
	if strings.Contains(host, ":") {
		// The JVM keeps the brackets around IPv6 literals.
		host = "[" + host + "]"
	}

	if u.User != nil {
		h = combine(h, u.User.String())
	}
	h = HashIgnoringCase(h, host)

	port := int32(-1)
	if p := u.Port(); p != "" {
		n, err := strconv.ParseInt(p, 10, 32)
		if err != nil {
			return 0, fmt.Errorf("parse port %q: %w", p, err)
		}
		port = int32(n)
	}
	h += port * 1949
	return h, nil
}

// URIHashString parses raw and returns its URIHash. A trailing '#' counts as
// an empty fragment, which the JVM folds into the hash.
func URIHashString(raw string) (int32, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return 0, fmt.Errorf("parse url %q: %w", raw, err)
	}
	emptyFragment := strings.HasSuffix(raw, "#") && strings.IndexByte(raw, '#') == len(raw)-1
	return uriHash(u, emptyFragment)
}
