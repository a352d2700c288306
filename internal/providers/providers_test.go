package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stitts-dev/mlb-projections/internal/projection"
	"github.com/stitts-dev/mlb-projections/pkg/logger"
)

func testClient(attempts int) *Client {
	return NewClient(ClientConfig{
		Timeout:       time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
		UserAgent:     "mlb-projections-test",
	}, logger.NewDiscard())
}

func TestClient_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "mlb-projections-test", r.Header.Get("User-Agent"))
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	body, err := testClient(3).Get(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_GivesUpAfterAttempts(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := testClient(3).Get(context.Background(), srv.URL)
	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestClient_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := testClient(3).Get(context.Background(), srv.URL)
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFangraphs_BattingLeaderboard(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/leaders/major-league/data", r.URL.Path)
		assert.Equal(t, "bat", r.URL.Query().Get("stats"))
		assert.Equal(t, "2025", r.URL.Query().Get("season"))
		assert.Equal(t, "200", r.URL.Query().Get("qual"))
		fmt.Fprint(w, `{"data":[
			{"playerid":15640,"PlayerName":"Aaron Judge","TeamNameAbb":"NYY","G":152,"PA":679,"H":179,"2B":30,"3B":2,"HR":53,"R":137,"RBI":114,"SB":12,"BB":124,"SO":160,"wOBA":0.476},
			{"playerid":"sa3011918","PlayerName":"Prospect","TeamNameAbb":"NYY"},
			{"playerid":"19755","PlayerName":"Shohei Ohtani","TeamNameAbb":"LAD","PA":727,"H":172,"wOBA":null}
		],"totalCount":3}`)
	}))
	defer srv.Close()

	fg := NewFangraphs(testClient(1), srv.URL)
	raw, err := fg.BattingLeaderboard(context.Background(), 2025, 200)
	require.NoError(t, err)

	rows, err := ParseBatting(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, 15640, rows[0].RosterID)
	assert.Equal(t, "NYY", rows[0].Team)
	assert.Equal(t, 53, rows[0].HomeRuns)
	assert.Equal(t, 679.0, rows[0].PA)
	assert.InDelta(t, 0.476, rows[0].WOBA.Float64, 1e-9)

	assert.Equal(t, 19755, rows[1].RosterID)
	assert.False(t, rows[1].WOBA.Valid)
	assert.Zero(t, rows[1].HomeRuns)
}

func TestParsePitching(t *testing.T) {
	raw := []byte(`{"data":[
		{"playerid":10954,"PlayerName":"Starter","TeamNameAbb":"SEA","G":32,"GS":32,"IP":190.2,"SO":220,"BB":45,"H":150,"ER":60,"W":14,"SV":0},
		{"playerid":20000,"PlayerName":"Swingman","Team":"MIA","G":40,"IP":70.1}
	]}`)

	rows, err := ParsePitching(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.True(t, rows[0].GamesStarted.Valid)
	assert.Equal(t, int64(32), rows[0].GamesStarted.Int64)
	assert.InDelta(t, 190+2.0/3, rows[0].InningsPitched, 1e-9)
	assert.False(t, rows[1].GamesStarted.Valid)
	assert.Equal(t, "MIA", rows[1].Team)
}

func TestInnings(t *testing.T) {
	assert.InDelta(t, 180.0, Innings(180.0), 1e-9)
	assert.InDelta(t, 180+1.0/3, Innings(180.1), 1e-9)
	assert.InDelta(t, 180+2.0/3, Innings(180.2), 1e-9)
	assert.InDelta(t, 180.5, Innings(180.5), 1e-9)
}

func TestParseSteamer(t *testing.T) {
	var b strings.Builder
	b.WriteString(`[{"playerid":"15640","PA":650.5,"IP":null},{"playerid":"15640","PA":1},{"playerid":"sa123","PA":400},{"playerid":"777","PA":null}`)
	for i := 0; i < MinSteamerRows; i++ {
		fmt.Fprintf(&b, `,{"playerid":"%d","PA":300,"IP":50}`, 1000+i)
	}
	b.WriteString("]")

	pa, err := ParseSteamer([]byte(b.String()), "PA")
	require.NoError(t, err)
	assert.Equal(t, 650.5, pa[15640])
	assert.Equal(t, 0.0, pa[777])
	assert.Len(t, pa, 2+MinSteamerRows)

	ip, err := ParseSteamer([]byte(b.String()), "IP")
	require.NoError(t, err)
	assert.Equal(t, 50.0, ip[1000])

	_, err = ParseSteamer([]byte(`[{"playerid":"1","PA":600}]`), "PA")
	assert.ErrorIs(t, err, ErrEmptyPayload)
}

func TestParseExpectedStats(t *testing.T) {
	raw := []byte("\ufeff\"last_name, first_name\",player_id,year,pa,woba,est_woba\n" +
		"\"Judge, Aaron\",592450,2025,679,.476,.460\n" +
		"\"Nobody, No\",,2025,30,.300,.310\n" +
		"\"Soto, Juan\",665742,2025,700,,.410\n")

	rows, err := ParseExpectedStats(raw)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, 592450, rows[0].TrackingID)
	assert.InDelta(t, 0.460, rows[0].XWOBA, 1e-9)
	assert.InDelta(t, 0.476, rows[0].WOBA.Float64, 1e-9)
	assert.False(t, rows[1].WOBA.Valid)

	_, err = ParseExpectedStats([]byte("player_id,woba\n1,.300\n"))
	assert.Error(t, err)
}

func TestParseSprintSpeed(t *testing.T) {
	raw := []byte("\"last_name, first_name\",player_id,team,sprint_speed\n" +
		"\"Ohtani, Shohei\",660271,LAD,28.1\n" +
		"\"Bad, Id\",abc,LAD,29.0\n")
	rows, err := ParseSprintSpeed(raw)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 660271, rows[0].TrackingID)
	assert.Equal(t, 28.1, rows[0].SprintSpeed)
}

func TestParse_NonFiniteCellsAreMissing(t *testing.T) {
	expected, err := ParseExpectedStats([]byte("player_id,woba,est_woba\n" +
		"1,nan,.320\n" +
		"2,.300,NaN\n" +
		"3,Inf,.310\n"))
	require.NoError(t, err)
	require.Len(t, expected, 2)
	assert.Equal(t, 1, expected[0].TrackingID)
	assert.False(t, expected[0].WOBA.Valid)
	assert.Equal(t, 3, expected[1].TrackingID)
	assert.False(t, expected[1].WOBA.Valid)

	speed, err := ParseSprintSpeed([]byte("player_id,sprint_speed\n" +
		"10,26.0\n11,nan\n12,29.0\n13,27.0\n"))
	require.NoError(t, err)
	ids := make([]int, 0, len(speed))
	for _, r := range speed {
		ids = append(ids, r.TrackingID)
	}
	assert.Equal(t, []int{10, 12, 13}, ids)

	table := projection.BuildSpeedTable(speed)
	assert.Equal(t, 33.3, projection.Round1(table[10].Pct))
	assert.Equal(t, 100.0, projection.Round1(table[12].Pct))
	assert.Equal(t, 66.7, projection.Round1(table[13].Pct))
	_, ok := table[11]
	assert.False(t, ok)
}

func TestChadwick_RegisterPart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/people-a.csv", r.URL.Path)
		fmt.Fprint(w, "key_person,key_mlbam,key_fangraphs,name_last\n"+
			"aaa,592450,15640,Judge\n"+
			"bbb,,1234,Old\n")
	}))
	defer srv.Close()

	raw, err := NewChadwick(testClient(1), srv.URL).RegisterPart(context.Background(), "a")
	require.NoError(t, err)

	recs, err := ParseRegister(raw)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "15640", recs[0].RosterID)
	assert.Equal(t, "592450", recs[0].TrackingID)
	assert.Equal(t, "", recs[1].TrackingID)
	assert.Len(t, ChadwickParts, 16)
}

func TestMLBStats_People(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/people", r.URL.Path)
		assert.Equal(t, "592450,660271", r.URL.Query().Get("personIds"))
		fmt.Fprint(w, `{"people":[
			{"id":592450,"birthDate":"1992-04-26","primaryPosition":{"abbreviation":"RF"}},
			{"id":660271,"birthDate":"","primaryPosition":{"abbreviation":"TWP"}}
		]}`)
	}))
	defer srv.Close()

	people, err := NewMLBStats(testClient(1), srv.URL).People(context.Background(), []int{592450, 660271})
	require.NoError(t, err)
	require.Len(t, people, 2)

	assert.Equal(t, int64(1992), people[0].BirthYear.Int64)
	assert.Equal(t, int64(4), people[0].BirthMonth.Int64)
	assert.Equal(t, int64(26), people[0].BirthDay.Int64)
	assert.Equal(t, "RF", people[0].Position)
	assert.False(t, people[1].BirthYear.Valid)
	assert.Equal(t, "TWP", people[1].Position)
}
