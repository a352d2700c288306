package projection

import (
	"database/sql"
	"math"
	"sort"
	"time"
)

const daysPerYear = 365.25

// AgeAt returns age in years, one decimal, at ref. ok is false when any
// birth field is missing or the date does not exist.
func AgeAt(year, month, day sql.NullInt64, ref time.Time) (float64, bool) {
	if !year.Valid || !month.Valid || !day.Valid {
		return 0, false
	}
	y, m, d := int(year.Int64), time.Month(month.Int64), int(day.Int64)
	born := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	if born.Year() != y || born.Month() != m || born.Day() != d {
		return 0, false
	}
	days := math.Floor(ref.Sub(born).Hours() / 24)
	return Round1(days / daysPerYear), true
}

// FillAges computes every row's age and imputes the cohort median for rows
// without a usable birth date. With no ages at all, fallback is used.
func FillAges(rows []*MasterRow, ref time.Time, fallback float64) (imputed int) {
	known := make([]float64, 0, len(rows))
	for _, r := range rows {
		if age, ok := AgeAt(r.BirthYear, r.BirthMonth, r.BirthDay, ref); ok {
			r.Age = age
			r.AgeImputed = false
			known = append(known, age)
			continue
		}
		r.AgeImputed = true
	}

	fill := fallback
	if len(known) > 0 {
		fill = median(known)
	}
	for _, r := range rows {
		if r.AgeImputed {
			r.Age = fill
			imputed++
		}
	}
	return imputed
}

func median(xs []float64) float64 {
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2]
	}
	return (s[n/2-1] + s[n/2]) / 2
}
