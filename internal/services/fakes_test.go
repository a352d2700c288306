package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/stitts-dev/mlb-projections/internal/providers"
)

// memCache is an in-memory RawCache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string][]byte)}
}

func (m *memCache) Name() string { return "memory" }

func (m *memCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.data[key]
	if !ok {
		return nil, ErrCacheMiss
	}
	return d, nil
}

func (m *memCache) Set(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = data
	m.sets++
	return nil
}

// fakeUpstream serves canned payloads for every source and counts calls.
type fakeUpstream struct {
	batting  map[int][]byte
	pitching map[int][]byte
	expected map[int][]byte
	speed    map[int][]byte
	steamer  map[string][]byte
	register []byte
	calls    int
}

func (f *fakeUpstream) serve(m map[int][]byte, year int) ([]byte, error) {
	f.calls++
	if d, ok := m[year]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("season %d: %w", year, providers.ErrNotFound)
}

func (f *fakeUpstream) BattingLeaderboard(_ context.Context, year, _ int) ([]byte, error) {
	return f.serve(f.batting, year)
}

func (f *fakeUpstream) PitchingLeaderboard(_ context.Context, year, _ int) ([]byte, error) {
	return f.serve(f.pitching, year)
}

func (f *fakeUpstream) SteamerProjections(_ context.Context, stats string) ([]byte, error) {
	f.calls++
	if d, ok := f.steamer[stats]; ok {
		return d, nil
	}
	return nil, fmt.Errorf("steamer %s: %w", stats, providers.ErrUnexpectedStatus)
}

func (f *fakeUpstream) ExpectedStats(_ context.Context, year, _ int) ([]byte, error) {
	return f.serve(f.expected, year)
}

func (f *fakeUpstream) SprintSpeed(_ context.Context, year int) ([]byte, error) {
	return f.serve(f.speed, year)
}

func (f *fakeUpstream) RegisterPart(_ context.Context, part string) ([]byte, error) {
	f.calls++
	if part == "0" && f.register != nil {
		return f.register, nil
	}
	return []byte("key_person,key_mlbam,key_fangraphs\n"), nil
}

// Three batters: 100 plays every season, 200 only the most recent two,
// 300 only the most recent.
func battingJSON(year int) []byte {
	rows := []string{
		`{"playerid":100,"PlayerName":"Veteran Bat","TeamNameAbb":"COL","G":150,"PA":640,"H":160,"2B":30,"3B":2,"HR":30,"R":90,"RBI":95,"SB":20,"BB":60,"SO":130,"wOBA":0.360}`,
	}
	if year >= 2024 {
		rows = append(rows, `{"playerid":200,"PlayerName":"Young Bat","TeamNameAbb":"SEA","G":140,"PA":600,"H":150,"2B":28,"3B":4,"HR":22,"R":80,"RBI":75,"SB":30,"BB":50,"SO":140,"wOBA":0.340}`)
	}
	if year >= 2025 {
		rows = append(rows, `{"playerid":300,"PlayerName":"Rookie Bat","TeamNameAbb":"MIA","G":60,"PA":240,"H":60,"2B":10,"3B":1,"HR":8,"R":30,"RBI":28,"SB":6,"BB":20,"SO":60,"wOBA":0.310}`)
	}
	return []byte(`{"data":[` + strings.Join(rows, ",") + `]}`)
}

func pitchingJSON() []byte {
	return []byte(`{"data":[
		{"playerid":900,"PlayerName":"Ace Arm","TeamNameAbb":"SF","G":32,"GS":32,"IP":200.1,"SO":220,"BB":45,"H":160,"ER":60,"W":15,"SV":0},
		{"playerid":901,"PlayerName":"Closer Arm","TeamNameAbb":"COL","G":65,"GS":0,"IP":62.2,"SO":80,"BB":20,"H":45,"ER":20,"W":4,"SV":35}
	]}`)
}

func expectedCSV() []byte {
	return []byte("player_id,woba,est_woba\n1100,.360,.380\n1200,.340,.330\n")
}

func speedCSV() []byte {
	return []byte("player_id,sprint_speed\n1100,26.5\n1200,29.5\n1300,27.0\n")
}

func registerCSV() []byte {
	return []byte("key_person,key_mlbam,key_fangraphs\na,1100,100\nb,1200,200\nc,1300,300\nd,1900,900\ne,1901,901\n")
}

func steamerJSON(field string, ids map[int]float64) []byte {
	var b strings.Builder
	b.WriteString("[")
	first := true
	write := func(id int, v float64) {
		if !first {
			b.WriteString(",")
		}
		first = false
		fmt.Fprintf(&b, `{"playerid":"%d","%s":%g}`, id, field, v)
	}
	for id, v := range ids {
		write(id, v)
	}
	for i := 0; i < providers.MinSteamerRows; i++ {
		write(50000+i, 100)
	}
	b.WriteString("]")
	return []byte(b.String())
}

func fullUpstream() *fakeUpstream {
	return &fakeUpstream{
		batting:  map[int][]byte{2025: battingJSON(2025), 2024: battingJSON(2024), 2023: battingJSON(2023)},
		pitching: map[int][]byte{2025: pitchingJSON(), 2024: pitchingJSON()},
		expected: map[int][]byte{2025: expectedCSV(), 2024: expectedCSV()},
		speed:    map[int][]byte{2025: speedCSV()},
		steamer: map[string][]byte{
			"bat": steamerJSON("PA", map[int]float64{100: 620, 200: 650}),
			"pit": steamerJSON("IP", map[int]float64{900: 190, 901: 65}),
		},
		register: registerCSV(),
	}
}
