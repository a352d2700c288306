package providers

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// csvTable is a decoded CSV payload with a case-insensitive header lookup.
type csvTable struct {
	header []string
	rows   [][]string
}

func readCSV(raw []byte) (*csvTable, error) {
	raw = bytes.TrimPrefix(raw, []byte("\ufeff"))
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	hdr, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyPayload
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range hdr {
		hdr[i] = strings.Trim(strings.TrimSpace(hdr[i]), `"`)
	}

	t := &csvTable{header: hdr}
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}

// col returns the index of the first header matching any name, or -1.
func (t *csvTable) col(names ...string) int {
	for _, name := range names {
		for i, h := range t.header {
			if strings.EqualFold(h, name) {
				return i
			}
		}
	}
	return -1
}

func (t *csvTable) require(names ...string) ([]int, error) {
	idx := make([]int, len(names))
	for i, n := range names {
		if idx[i] = t.col(n); idx[i] < 0 {
			return nil, fmt.Errorf("required column %q missing", n)
		}
	}
	return idx, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseFloat treats blank, unparsable and non-finite cells ("nan", "inf")
// as missing.
func parseFloat(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseIntID accepts "123" and "123.0" but nothing fractional.
func parseIntID(s string) (int, bool) {
	v, ok := parseFloat(s)
	if !ok || v != float64(int(v)) {
		return 0, false
	}
	return int(v), true
}
