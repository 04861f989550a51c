// Package weight loads the interaction weights that rank a profile's
// connections before they are visited.
//
// Weights are keyed by display name, not by profile: the table usually comes
// from an export of interactions that only knows who interacted, by name.
// Joining a name against the names stored on edges is therefore a best-effort
// match. Both sides are trimmed and put in Unicode NFC form so that the same
// name typed with composed or decomposed accents still matches.
package weight

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column names expected in a weight CSV header.
const (
	NameColumn   = "alter"
	WeightColumn = "n_interactions"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("weight table is missing a required column")

// Table maps display names to numeric weights. It is read-only after
// construction and safe for concurrent use. A nil *Table behaves as an empty
// table.
type Table struct {
	weights map[string]float64
}

// New builds a table from a name to weight map. Names that collide after
// normalization have their weights summed.
func New(entries map[string]float64) *Table {
	t := &Table{weights: make(map[string]float64, len(entries))}
	for name, w := range entries {
		t.add(name, w)
	}
	return t
}

// add accumulates a weight under the normalized name.
func (t *Table) add(name string, w float64) {
	key := NormalizeName(name)
	if key == "" {
		return
	}
	if math.IsNaN(w) || math.IsInf(w, 0) {
		w = 0
	}
	t.weights[key] += w
}

// LoadCSV reads a table whose header contains the NameColumn and
// WeightColumn columns, in any position. Weights that are missing or not
// numeric count as 0. Repeated names are summed, since each row counts
// interactions.
func LoadCSV(r io.Reader) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty input", ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read weight header: %w", err)
	}

	nameIdx, weightIdx := -1, -1
	for i, col := range header {
		col = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
		switch col {
		case NameColumn:
			nameIdx = i
		case WeightColumn:
			weightIdx = i
		}
	}
	if nameIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, NameColumn)
	}
	if weightIdx < 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumn, WeightColumn)
	}

	t := &Table{weights: make(map[string]float64)}
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read weight row: %w", err)
		}
		if nameIdx >= len(record) {
			continue
		}

		w := 0.0
		if weightIdx < len(record) {
			w = parseWeight(record[weightIdx])
		}
		t.add(record[nameIdx], w)
	}

	return t, nil
}

// LoadFile reads a weight CSV from disk.
func LoadFile(path string) (*Table, error) {
	f, err := os.Open(path) //nolint:gosec // User-provided weight path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open weight table: %w", err)
	}
	defer f.Close()

	t, err := LoadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return t, nil
}

// parseWeight converts a cell to a weight, mapping anything unusable to 0.
func parseWeight(s string) float64 {
	w, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0
	}
	return w
}

// Weight returns the weight for a display name and whether the name is in
// the table.
func (t *Table) Weight(name string) (float64, bool) {
	if t == nil {
		return 0, false
	}
	w, ok := t.weights[NormalizeName(name)]
	return w, ok
}

// Len returns the number of distinct names in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.weights)
}

// NormalizeName returns the form of a display name used for lookups.
func NormalizeName(name string) string {
	return norm.NFC.String(strings.TrimSpace(name))
}
