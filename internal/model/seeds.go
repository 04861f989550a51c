package model

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"golang.org/x/crypto/sha3"
)

// LoadSeeds reads seed profiles from the first column of a CSV stream.
// Empty rows are skipped, every entry is normalized for site, and the result
// is deduplicated and sorted so that passes visit seeds in a stable order.
//
// A row that does not normalize is an error; seed lists carry no header.
func LoadSeeds(r io.Reader, site Site) ([]ProfileID, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	seen := make(map[ProfileID]bool)
	seeds := make([]ProfileID, 0)

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read seed list: %w", err)
		}

		if len(record) == 0 || strings.TrimSpace(record[0]) == "" {
			continue
		}

		id, err := site.Normalize(record[0])
		if err != nil {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("seed list line %d: %w", line, err)
		}

		if !seen[id] {
			seen[id] = true
			seeds = append(seeds, id)
		}
	}

	slices.Sort(seeds)
	return seeds, nil
}

// unsafeNameChars matches everything that should not appear in a file name.
var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]`)

// storeDigestBytes is how many bytes of the SHA3 digest end up in a store name.
const storeDigestBytes = 4

// StoreName returns the file name (without extension) of the store that
// holds the crawl of seed.
//
// The readable part is the profile path and query with unsafe characters
// replaced by underscores. Because that replacement can map two seeds onto
// the same text, a short SHA3-256 digest of the full ProfileID is appended so
// every seed keeps its own store.
func StoreName(seed ProfileID) string {
	ident := string(seed)
	if u, err := url.Parse(string(seed)); err == nil {
		ident = strings.Trim(u.Path, "/")
		if ident == "" {
			ident = u.Host
		}
		if u.RawQuery != "" {
			ident += "_" + u.RawQuery
		}
	}

	safe := unsafeNameChars.ReplaceAllString(ident, "_")
	if safe == "" {
		safe = "profile"
	}

	sum := sha3.Sum256([]byte(seed))
	return safe + "-" + hex.EncodeToString(sum[:storeDigestBytes])
}
