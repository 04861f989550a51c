package browser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-rod/rod/lib/proto"
)

// StorageState is the subset of a browser storage-state file that egocrawl
// uses. The format is the one written by Playwright-compatible tools when a
// logged-in session is saved.
type StorageState struct {
	Cookies []Cookie `json:"cookies"`
}

// Cookie is one cookie of a storage-state file.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
	SameSite string  `json:"sameSite"`
}

// ParseStorageState decodes a storage-state document.
func ParseStorageState(r io.Reader) (*StorageState, error) {
	var state StorageState
	if err := json.NewDecoder(r).Decode(&state); err != nil {
		return nil, fmt.Errorf("failed to decode storage state: %w", err)
	}
	return &state, nil
}

// LoadStorageState reads a storage-state file.
func LoadStorageState(path string) (*StorageState, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided session path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open storage state: %w", err)
	}
	defer f.Close()

	return ParseStorageState(f)
}

// CookieParams converts the cookies into DevTools cookie parameters.
// Session cookies (expires <= 0) stay session cookies.
func (s *StorageState) CookieParams() []*proto.NetworkCookieParam {
	params := make([]*proto.NetworkCookieParam, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		if c.Name == "" {
			continue
		}
		p := &proto.NetworkCookieParam{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HTTPOnly: c.HTTPOnly,
			SameSite: sameSite(c.SameSite),
		}
		if p.Path == "" {
			p.Path = "/"
		}
		if c.Expires > 0 {
			p.Expires = proto.TimeSinceEpoch(c.Expires)
		}
		params = append(params, p)
	}
	return params
}

func sameSite(v string) proto.NetworkCookieSameSite {
	switch strings.ToLower(v) {
	case "strict":
		return proto.NetworkCookieSameSiteStrict
	case "lax":
		return proto.NetworkCookieSameSiteLax
	case "none":
		return proto.NetworkCookieSameSiteNone
	default:
		return ""
	}
}
