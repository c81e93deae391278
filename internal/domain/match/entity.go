package match

import "time"

// Phase is the lifecycle stage of a match, driving window sizing
type Phase string

const (
	PhasePre   Phase = "pre"
	PhaseLive  Phase = "live"
	PhasePost  Phase = "post"
	PhaseEnded Phase = "ended"
)

// Terminal reports whether the phase signals the tick generator to stop
func (p Phase) Terminal() bool {
	return p == PhaseEnded
}

// LiveBin is a fixed 15-minute partition of the live phase, index 0-based
// from kickoff. The final bin may be partial when the live phase ends
// before a full slice.
type LiveBin struct {
	Index       int   `json:"index"`
	StartMinute int   `json:"startMinute"`
	EndMinute   int   `json:"endMinute"`
	BinStartMs  int64 `json:"binStartMs"`
}

// Match describes the fixture the analytics run against
type Match struct {
	ID              string     `json:"id" db:"id"`
	HomeTeam        string     `json:"homeTeam" db:"home_team"`
	AwayTeam        string     `json:"awayTeam" db:"away_team"`
	KickoffISO      string     `json:"kickoffISO" db:"kickoff_iso"`
	FinalWhistleISO string     `json:"finalWhistleISO,omitempty" db:"final_whistle_iso"`
	LiveDurationMin int        `json:"liveDurationMin,omitempty" db:"live_duration_min"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       *time.Time `json:"updatedAt,omitempty" db:"updated_at"`
}
