package model

import (
	"errors"
	"testing"
)

func TestSiteNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		site    Site
		raw     string
		want    ProfileID
		wantErr error
	}{
		{
			name: "facebook vanity url",
			site: SiteFacebook,
			raw:  "https://www.facebook.com/john.doe",
			want: "https://www.facebook.com/john.doe",
		},
		{
			name: "facebook trailing slash and tracking query are dropped",
			site: SiteFacebook,
			raw:  "https://www.facebook.com/john.doe/?__cft__=abc&__tn__=R",
			want: "https://www.facebook.com/john.doe",
		},
		{
			name: "facebook mobile host is canonicalized",
			site: SiteFacebook,
			raw:  "http://m.facebook.com/John.Doe",
			want: "https://www.facebook.com/john.doe",
		},
		{
			name: "facebook numeric profile keeps only id",
			site: SiteFacebook,
			raw:  "https://www.facebook.com/profile.php?id=1000123&sk=about",
			want: "https://www.facebook.com/profile.php?id=1000123",
		},
		{
			name: "facebook relative href",
			site: SiteFacebook,
			raw:  "/jane.roe",
			want: "https://www.facebook.com/jane.roe",
		},
		{
			name:    "facebook numeric profile without id",
			site:    SiteFacebook,
			raw:     "https://www.facebook.com/profile.php",
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "facebook foreign host",
			site:    SiteFacebook,
			raw:     "https://example.com/john.doe",
			wantErr: ErrInvalidProfile,
		},
		{
			name: "facebook url without scheme",
			site: SiteFacebook,
			raw:  "facebook.com/bob",
			want: "https://www.facebook.com/bob",
		},
		{
			name: "facebook numeric profile without scheme keeps id",
			site: SiteFacebook,
			raw:  "www.facebook.com/profile.php?id=4",
			want: "https://www.facebook.com/profile.php?id=4",
		},
		{
			name:    "facebook site given an instagram url without scheme",
			site:    SiteFacebook,
			raw:     "instagram.com/alice",
			wantErr: ErrInvalidProfile,
		},
		{
			name: "instagram url without scheme",
			site: SiteInstagram,
			raw:  "instagram.com/alice",
			want: "https://www.instagram.com/alice/",
		},
		{
			name: "instagram handle",
			site: SiteInstagram,
			raw:  "@some.user",
			want: "https://www.instagram.com/some.user/",
		},
		{
			name: "instagram url without slash",
			site: SiteInstagram,
			raw:  "https://instagram.com/Some.User?igsh=xyz",
			want: "https://www.instagram.com/some.user/",
		},
		{
			name: "instagram relative href",
			site: SiteInstagram,
			raw:  "/some.user/",
			want: "https://www.instagram.com/some.user/",
		},
		{
			name:    "empty reference",
			site:    SiteInstagram,
			raw:     "   ",
			wantErr: ErrEmptyProfile,
		},
		{
			name:    "bare root url",
			site:    SiteInstagram,
			raw:     "https://www.instagram.com/",
			wantErr: ErrInvalidProfile,
		},
		{
			name:    "unknown site",
			site:    Site("myspace"),
			raw:     "https://myspace.com/tom",
			wantErr: ErrUnknownSite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.site.Normalize(tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSiteNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	inputs := map[Site][]string{
		SiteFacebook: {
			"https://www.facebook.com/john.doe/",
			"https://web.facebook.com/profile.php?id=42&ref=x",
			"jane.roe",
			"facebook.com/bob",
			"www.facebook.com/profile.php?id=4",
		},
		SiteInstagram: {
			"@handle",
			"https://www.instagram.com/handle",
			"https://instagram.com/Handle/?hl=es",
			"instagram.com/alice",
		},
	}

	for site, raws := range inputs {
		for _, raw := range raws {
			first, err := site.Normalize(raw)
			if err != nil {
				t.Fatalf("%s: normalize %q: %v", site, raw, err)
			}
			second, err := site.Normalize(string(first))
			if err != nil {
				t.Fatalf("%s: renormalize %q: %v", site, first, err)
			}
			if first != second {
				t.Errorf("%s: normalization not idempotent: %q -> %q", site, first, second)
			}
		}
	}
}

func TestSiteNormalizeKeepsNumericProfilesApart(t *testing.T) {
	t.Parallel()

	a, err := SiteFacebook.Normalize("www.facebook.com/profile.php?id=4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := SiteFacebook.Normalize("www.facebook.com/profile.php?id=5")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a == b {
		t.Errorf("distinct numeric profiles collapsed to %q", a)
	}

	withScheme, err := SiteFacebook.Normalize("https://www.facebook.com/profile.php?id=4")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a != withScheme {
		t.Errorf("expected %q for both forms, got %q", withScheme, a)
	}
}

func TestSiteConnectionsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		site    Site
		profile ProfileID
		want    string
	}{
		{SiteFacebook, "https://www.facebook.com/john.doe", "https://www.facebook.com/john.doe/friends"},
		{SiteFacebook, "https://www.facebook.com/profile.php?id=7", "https://www.facebook.com/profile.php?id=7&sk=friends"},
		{SiteInstagram, "https://www.instagram.com/handle/", "https://www.instagram.com/handle/"},
	}

	for _, tt := range tests {
		if got := tt.site.ConnectionsURL(tt.profile); got != tt.want {
			t.Errorf("ConnectionsURL(%q) = %q, want %q", tt.profile, got, tt.want)
		}
	}
}

func TestParseSite(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"facebook", " Instagram "} {
		if _, err := ParseSite(name); err != nil {
			t.Errorf("ParseSite(%q) returned error: %v", name, err)
		}
	}

	if _, err := ParseSite("tiktok"); !errors.Is(err, ErrUnknownSite) {
		t.Errorf("expected ErrUnknownSite, got %v", err)
	}
}

func TestUsername(t *testing.T) {
	t.Parallel()

	if got := Username("https://www.instagram.com/handle/"); got != "handle" {
		t.Errorf("expected handle, got %q", got)
	}
	if got := Username("https://www.instagram.com/"); got != "" {
		t.Errorf("expected empty username, got %q", got)
	}
}
