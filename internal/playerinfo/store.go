package playerinfo

import (
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/stitts-dev/mlb-projections/internal/models"
)

const CacheFileName = "mlb_player_info.csv"

var csvHeader = []string{"mlbam_id", "birth_year", "birth_month", "birth_day", "mlb_position"}

// CSVStore keeps the cache as a single CSV file. Saves replace the whole
// file through a rename, so a crash mid-write leaves the previous state.
type CSVStore struct {
	Path string
}

func NewCSVStore(dir string) *CSVStore {
	return &CSVStore{Path: filepath.Join(dir, CacheFileName)}
}

func (s *CSVStore) Load() (*Cache, error) {
	cache := NewCache()

	f, err := os.Open(s.Path)
	if errors.Is(err, os.ErrNotExist) {
		return cache, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err == io.EOF {
		return cache, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s header: %w", s.Path, err)
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	idCol, ok := col["mlbam_id"]
	if !ok {
		return nil, fmt.Errorf("%s: missing mlbam_id column", s.Path)
	}

	field := func(rec []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", s.Path, err)
		}
		if idCol >= len(rec) {
			continue
		}
		id, ok := parseInt(rec[idCol])
		if !ok || !id.Valid {
			continue
		}
		year, _ := parseInt(field(rec, "birth_year"))
		month, _ := parseInt(field(rec, "birth_month"))
		day, _ := parseInt(field(rec, "birth_day"))
		cache.Add(models.PlayerInfo{
			TrackingID: int(id.Int64),
			BirthYear:  year,
			BirthMonth: month,
			BirthDay:   day,
			Position:   field(rec, "mlb_position"),
		})
	}
	return cache, nil
}

func (s *CSVStore) Save(c *Cache) error {
	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, CacheFileName+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	w := csv.NewWriter(tmp)
	if err := w.Write(csvHeader); err != nil {
		tmp.Close()
		return err
	}
	for _, row := range c.Rows() {
		rec := []string{
			strconv.Itoa(row.TrackingID),
			formatInt(row.BirthYear),
			formatInt(row.BirthMonth),
			formatInt(row.BirthDay),
			row.Position,
		}
		if err := w.Write(rec); err != nil {
			tmp.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.Path)
}

// parseInt reads "1996" or "1996.0"; blank yields an invalid value with ok=true.
func parseInt(raw string) (sql.NullInt64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return sql.NullInt64{}, true
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return models.SomeInt(n), true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return sql.NullInt64{}, false
	}
	return models.SomeInt(int64(f)), true
}

func formatInt(v sql.NullInt64) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}
