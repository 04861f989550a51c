package model

import (
	"slices"
	"strings"
	"testing"
)

func TestLoadSeeds(t *testing.T) {
	t.Parallel()

	t.Run("normalizes deduplicates and sorts", func(t *testing.T) {
		t.Parallel()

		input := strings.Join([]string{
			"https://www.instagram.com/zeta/",
			"",
			"@alpha",
			"https://instagram.com/Alpha?x=1",
			"mid,extra,columns",
		}, "\n")

		seeds, err := LoadSeeds(strings.NewReader(input), SiteInstagram)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []ProfileID{
			"https://www.instagram.com/alpha/",
			"https://www.instagram.com/mid/",
			"https://www.instagram.com/zeta/",
		}
		if !slices.Equal(seeds, want) {
			t.Errorf("expected %v, got %v", want, seeds)
		}
	})

	t.Run("rejects rows from another site", func(t *testing.T) {
		t.Parallel()

		input := "https://www.facebook.com/john.doe\nhttps://example.com/nope\n"
		if _, err := LoadSeeds(strings.NewReader(input), SiteFacebook); err == nil {
			t.Error("expected error for foreign host")
		}
	})

	t.Run("empty input yields no seeds", func(t *testing.T) {
		t.Parallel()

		seeds, err := LoadSeeds(strings.NewReader(""), SiteFacebook)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(seeds) != 0 {
			t.Errorf("expected no seeds, got %v", seeds)
		}
	})
}

func TestStoreName(t *testing.T) {
	t.Parallel()

	t.Run("is stable and readable", func(t *testing.T) {
		t.Parallel()

		name := StoreName("https://www.facebook.com/john.doe")
		if name != StoreName("https://www.facebook.com/john.doe") {
			t.Error("expected stable store name")
		}
		if !strings.HasPrefix(name, "john.doe-") {
			t.Errorf("expected readable prefix, got %q", name)
		}
	})

	t.Run("keeps query of numeric profiles", func(t *testing.T) {
		t.Parallel()

		name := StoreName("https://www.facebook.com/profile.php?id=42")
		if !strings.HasPrefix(name, "profile.php_id_42-") {
			t.Errorf("unexpected store name %q", name)
		}
	})

	t.Run("distinguishes seeds that sanitize alike", func(t *testing.T) {
		t.Parallel()

		a := StoreName("https://www.instagram.com/a+b/")
		b := StoreName("https://www.instagram.com/a_b/")
		if a == b {
			t.Errorf("expected distinct store names, both were %q", a)
		}
	})

	t.Run("contains only safe characters", func(t *testing.T) {
		t.Parallel()

		name := StoreName("https://www.instagram.com/we!rd name/")
		if unsafeNameChars.MatchString(name) {
			t.Errorf("store name %q contains unsafe characters", name)
		}
	})
}
