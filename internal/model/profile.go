package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Profile errors.
var (
	// ErrEmptyProfile is returned when a profile reference is empty.
	ErrEmptyProfile = errors.New("profile reference cannot be empty")
	// ErrInvalidProfile is returned when a profile reference cannot be
	// turned into a profile of the target site.
	ErrInvalidProfile = errors.New("invalid profile reference")
	// ErrUnknownSite is returned when a site name is not supported.
	ErrUnknownSite = errors.New("unknown site")
)

// ProfileID is the normalized key of one profile in the graph.
// Two raw representations of the same profile always normalize to the same
// ProfileID, and normalizing a ProfileID again returns it unchanged. The
// at-most-once visit guarantee relies on both properties.
type ProfileID string

// String returns the profile key.
func (p ProfileID) String() string {
	return string(p)
}

// UnknownCount is the declared neighbor count stored when a profile does not
// show its connections.
const UnknownCount = -1

// Site identifies the social network being crawled. It owns the rules that
// turn raw URLs and handles into ProfileIDs.
type Site string

const (
	// SiteFacebook crawls friend lists.
	SiteFacebook Site = "facebook"
	// SiteInstagram crawls following lists.
	SiteInstagram Site = "instagram"
)

const (
	facebookHost  = "www.facebook.com"
	instagramHost = "www.instagram.com"

	facebookProfilePHP = "/profile.php"
)

// facebookHosts lists the host aliases that all serve the same profiles.
var facebookHosts = map[string]bool{
	"facebook.com":     true,
	"www.facebook.com": true,
	"m.facebook.com":   true,
	"web.facebook.com": true,
}

// instagramHosts lists the host aliases that all serve the same profiles.
var instagramHosts = map[string]bool{
	"instagram.com":     true,
	"www.instagram.com": true,
}

// Sites returns all supported sites.
func Sites() []Site {
	return []Site{SiteFacebook, SiteInstagram}
}

// ParseSite converts a site name into a Site.
func ParseSite(name string) (Site, error) {
	switch Site(strings.ToLower(strings.TrimSpace(name))) {
	case SiteFacebook:
		return SiteFacebook, nil
	case SiteInstagram:
		return SiteInstagram, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSite, name)
	}
}

// String returns the site name.
func (s Site) String() string {
	return string(s)
}

// BaseURL returns the scheme and host every profile of the site is rooted at.
func (s Site) BaseURL() string {
	switch s {
	case SiteFacebook:
		return "https://" + facebookHost
	case SiteInstagram:
		return "https://" + instagramHost
	default:
		return ""
	}
}

// Normalize turns a raw URL, path or handle into the site's canonical
// ProfileID.
//
// Facebook profiles keep no trailing slash and, for numeric profiles, only
// the id query parameter ("https://www.facebook.com/profile.php?id=4").
// Instagram profiles always end with a slash and never carry a query
// ("https://www.instagram.com/name/").
func (s Site) Normalize(raw string) (ProfileID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrEmptyProfile
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") && isSiteHost(firstSegment(raw)) {
		raw = "https://" + raw
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		handle := strings.TrimLeft(strings.TrimPrefix(raw, "@"), "/")
		if handle == "" {
			return "", fmt.Errorf("%w: %q", ErrInvalidProfile, raw)
		}
		raw = s.BaseURL() + "/" + handle
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %v", ErrInvalidProfile, raw, err)
	}

	switch s {
	case SiteFacebook:
		return normalizeFacebook(u, raw)
	case SiteInstagram:
		return normalizeInstagram(u, raw)
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownSite, string(s))
	}
}

// firstSegment returns raw up to the first "/", "?" or "#".
func firstSegment(raw string) string {
	if i := strings.IndexAny(raw, "/?#"); i >= 0 {
		return raw[:i]
	}
	return raw
}

// isSiteHost reports whether host names one of the supported sites, so a
// reference like "facebook.com/bob" is read as a URL without scheme.
func isSiteHost(host string) bool {
	host = strings.ToLower(host)
	return facebookHosts[host] || instagramHosts[host]
}

// normalizeFacebook applies the Facebook rules to a parsed URL.
func normalizeFacebook(u *url.URL, raw string) (ProfileID, error) {
	if !facebookHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: %q is not a facebook profile", ErrInvalidProfile, raw)
	}

	path := strings.ToLower(strings.TrimRight(u.Path, "/"))
	if path == "" {
		return "", fmt.Errorf("%w: %q has no profile path", ErrInvalidProfile, raw)
	}

	if path == facebookProfilePHP {
		id := u.Query().Get("id")
		if id == "" {
			return "", fmt.Errorf("%w: %q has no id parameter", ErrInvalidProfile, raw)
		}
		return ProfileID("https://" + facebookHost + facebookProfilePHP + "?id=" + url.QueryEscape(id)), nil
	}

	return ProfileID("https://" + facebookHost + path), nil
}

// normalizeInstagram applies the Instagram rules to a parsed URL.
func normalizeInstagram(u *url.URL, raw string) (ProfileID, error) {
	if !instagramHosts[strings.ToLower(u.Hostname())] {
		return "", fmt.Errorf("%w: %q is not an instagram profile", ErrInvalidProfile, raw)
	}

	path := strings.ToLower(strings.Trim(u.Path, "/"))
	if path == "" {
		return "", fmt.Errorf("%w: %q has no profile path", ErrInvalidProfile, raw)
	}

	return ProfileID("https://" + instagramHost + "/" + path + "/"), nil
}

// ConnectionsURL returns the page that lists the profile's connections.
// For Instagram this is the profile page itself; the following list opens
// in a modal.
func (s Site) ConnectionsURL(p ProfileID) string {
	switch s {
	case SiteFacebook:
		if strings.Contains(string(p), facebookProfilePHP) {
			return string(p) + "&sk=friends"
		}
		return string(p) + "/friends"
	default:
		return string(p)
	}
}

// Username returns the first path segment of a profile, which is the handle
// for vanity URLs. It returns an empty string if the profile has no path.
func Username(p ProfileID) string {
	u, err := url.Parse(string(p))
	if err != nil {
		return ""
	}
	path := strings.Trim(u.Path, "/")
	if path == "" {
		return ""
	}
	return strings.Split(path, "/")[0]
}
