package projection

import (
	"strings"
)

// BattingWeights are fantasy points per counting stat for hitters.
type BattingWeights struct {
	Single     float64
	Double     float64
	Triple     float64
	HomeRun    float64
	RBI        float64
	Run        float64
	StolenBase float64
	Walk       float64
	Strikeout  float64
}

// PitchingWeights are fantasy points per counting stat for pitchers.
type PitchingWeights struct {
	Strikeout     float64
	InningPitched float64
	Walk          float64
	HitAllowed    float64
	EarnedRun     float64
	Win           float64
	Save          float64
}

// RoleSettings are the knobs that differ between batters and pitchers.
type RoleSettings struct {
	LeagueAverage      float64 // shrinkage target for single-season samples
	PlayingTimeBase    float64 // 600 PA / 180 IP
	PlayingTimeCap     float64 // fallback cap on last season's actual
	PlayingTimeModMax  float64 // zero means uncapped
	InvertPark         bool
	UseExpectedStats   bool
	UseSpeed           bool
	MissingAgeFallback float64
}

// Settings holds every scoring constant. It is a value: callers get their
// own copy from DefaultSettings and tests may substitute fields freely.
type Settings struct {
	Batting  BattingWeights
	Pitching PitchingWeights

	Batter  RoleSettings
	Pitcher RoleSettings

	// Baseline weighting
	ThreeYearWeights   [3]float64
	TwoYearWeights     [2]float64
	SingleSeasonWeight float64

	// Age curve
	PeakAge   float64
	AgeSlope  float64
	AgeModMin float64
	AgeModMax float64

	// Park effects, keyed by normalized team code
	ParkFactors map[string]float64
	TeamAliases map[string]string

	// Expected-performance adjustment
	ExpectedWeights [2]float64
	ExpectedScale   float64

	// Speed bonus
	NeutralSpeedPct       float64
	SpeedWeight           float64
	SpeedLeagueSBBaseline float64
	SpeedScale            float64
	QualifiedSBCoverage   float64
	FallbackLeagueSB      int

	// Pitcher role split
	StarterRatio float64
}

// DefaultSettings returns the league settings the projections are tuned for.
func DefaultSettings() Settings {
	return Settings{
		Batting: BattingWeights{
			Single:     1.0,
			Double:     2.0,
			Triple:     3.0,
			HomeRun:    4.0,
			RBI:        1.0,
			Run:        1.0,
			StolenBase: 2.0,
			Walk:       1.0,
			Strikeout:  -0.5,
		},
		Pitching: PitchingWeights{
			Strikeout:     2.0,
			InningPitched: 3.0,
			Walk:          -1.0,
			HitAllowed:    -1.0,
			EarnedRun:     -2.0,
			Win:           5.0,
			Save:          5.0,
		},
		Batter: RoleSettings{
			LeagueAverage:      260.0,
			PlayingTimeBase:    600.0,
			PlayingTimeCap:     700.0,
			UseExpectedStats:   true,
			UseSpeed:           true,
			MissingAgeFallback: 28.0,
		},
		Pitcher: RoleSettings{
			LeagueAverage:      280.0,
			PlayingTimeBase:    180.0,
			PlayingTimeCap:     250.0,
			PlayingTimeModMax:  1.6,
			InvertPark:         true,
			MissingAgeFallback: 28.0,
		},

		ThreeYearWeights:   [3]float64{0.50, 0.33, 0.17},
		TwoYearWeights:     [2]float64{0.60, 0.40},
		SingleSeasonWeight: 0.85,

		PeakAge:   28.0,
		AgeSlope:  0.006,
		AgeModMin: 0.90,
		AgeModMax: 1.10,

		// 5-year regressed run park factors, 1.00 = neutral.
		ParkFactors: map[string]float64{
			"COL": 1.15, "CIN": 1.08, "TEX": 1.05, "BOS": 1.04,
			"MIL": 1.03, "ARI": 1.03, "CHC": 1.02, "PHI": 1.02,
			"ATL": 1.01, "HOU": 1.01,
			"NYY": 1.00, "LAD": 1.00, "STL": 0.99, "TB": 0.98,
			"CLE": 0.98,
			"OAK": 0.97, "KC": 0.97, "DET": 0.97, "WSH": 0.97,
			"PIT": 0.97, "SD": 0.96, "LAA": 0.96, "MIN": 0.96,
			"SEA": 0.96, "TOR": 0.96, "BAL": 0.95, "NYM": 0.95,
			"CWS": 0.95, "SF": 0.94, "MIA": 0.93,
		},
		TeamAliases: map[string]string{
			"WSN": "WSH", "CHW": "CWS", "KCR": "KC", "SFG": "SF",
			"SDP": "SD", "TBR": "TB", "ANA": "LAA",
		},

		ExpectedWeights: [2]float64{0.6, 0.4},
		ExpectedScale:   150.0,

		NeutralSpeedPct:       neutralSpeedPct,
		SpeedWeight:           0.4,
		SpeedLeagueSBBaseline: 450.0,
		SpeedScale:            30.0,
		QualifiedSBCoverage:   0.72,
		FallbackLeagueSB:      3000,

		StarterRatio: 0.5,
	}
}

// Role returns the role-specific block.
func (s Settings) Role(pitcher bool) RoleSettings {
	if pitcher {
		return s.Pitcher
	}
	return s.Batter
}

// NormalizeTeam maps a raw team code onto the park factor keys.
func (s Settings) NormalizeTeam(raw string) string {
	t := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := s.TeamAliases[t]; ok {
		return alias
	}
	return t
}
