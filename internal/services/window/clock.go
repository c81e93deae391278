package window

import (
	"time"

	"matchpulse/internal/domain/match"
)

// binMinutes is the fixed live-bin width
const binMinutes = 15

// Clock computes match phases and live bins from kickoff timestamps.
// All methods are pure time arithmetic; a missing or unparseable kickoff
// falls back to a default recent window instead of failing.
type Clock struct {
	liveDurationMin    int
	preWindowHours     int
	postWindowMin      int
	defaultLookbackMin int
}

// Config carries the window sizing defaults
type Config struct {
	LiveDurationMin    int
	PreWindowHours     int
	PostWindowMin      int
	DefaultLookbackMin int
}

// NewClock creates a window clock with the configured defaults
func NewClock(cfg Config) Clock {
	if cfg.LiveDurationMin <= 0 {
		cfg.LiveDurationMin = 120
	}
	if cfg.PreWindowHours <= 0 {
		cfg.PreWindowHours = 2
	}
	if cfg.PostWindowMin <= 0 {
		cfg.PostWindowMin = 45
	}
	if cfg.DefaultLookbackMin <= 0 {
		cfg.DefaultLookbackMin = 30
	}
	return Clock{
		liveDurationMin:    cfg.LiveDurationMin,
		preWindowHours:     cfg.PreWindowHours,
		postWindowMin:      cfg.PostWindowMin,
		defaultLookbackMin: cfg.DefaultLookbackMin,
	}
}

// parseISO accepts RFC3339 kickoff/final-whistle timestamps
func parseISO(iso string) (time.Time, bool) {
	if iso == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, iso)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// liveDuration resolves the per-match override against the default
func (c Clock) liveDuration(liveDurationMin int) time.Duration {
	if liveDurationMin <= 0 {
		liveDurationMin = c.liveDurationMin
	}
	return time.Duration(liveDurationMin) * time.Minute
}

// WindowState derives the match phase at now. An unparseable kickoff
// reports live so the stream keeps producing with the default lookback.
func (c Clock) WindowState(kickoffISO, finalWhistleISO string, liveDurationMin int, now time.Time) match.Phase {
	kickoff, ok := parseISO(kickoffISO)
	if !ok {
		return match.PhaseLive
	}

	if now.Before(kickoff) {
		return match.PhasePre
	}

	liveEnd := kickoff.Add(c.liveDuration(liveDurationMin))
	if whistle, ok := parseISO(finalWhistleISO); ok && whistle.Before(liveEnd) {
		liveEnd = whistle
	}
	if !now.After(liveEnd) {
		return match.PhaseLive
	}

	if now.Before(liveEnd.Add(time.Duration(c.postWindowMin) * time.Minute)) {
		return match.PhasePost
	}
	return match.PhaseEnded
}

// LiveBin returns the 15-minute live bin containing now, 0-indexed from
// kickoff. ok is false before kickoff or when kickoff cannot be parsed.
// The final bin is clamped to the live duration when it would be partial.
func (c Clock) LiveBin(kickoffISO string, liveDurationMin int, now time.Time) (match.LiveBin, bool) {
	kickoff, parsed := parseISO(kickoffISO)
	if !parsed || now.Before(kickoff) {
		return match.LiveBin{}, false
	}

	elapsedMin := int(now.Sub(kickoff) / time.Minute)
	index := elapsedMin / binMinutes
	start := index * binMinutes
	end := start + binMinutes

	if liveMin := int(c.liveDuration(liveDurationMin) / time.Minute); end > liveMin {
		end = liveMin
	}

	return match.LiveBin{
		Index:       index,
		StartMinute: start,
		EndMinute:   end,
		BinStartMs:  kickoff.UnixMilli() + int64(start)*60_000,
	}, true
}

// PreWindowStartMs is the fixed offset before kickoff where pre-match
// capture begins. Zero when kickoff cannot be parsed.
func (c Clock) PreWindowStartMs(kickoffISO string) int64 {
	kickoff, ok := parseISO(kickoffISO)
	if !ok {
		return 0
	}
	return kickoff.Add(-time.Duration(c.preWindowHours) * time.Hour).UnixMilli()
}

// PostWindowStartMs approximates the end of regulation, used as the start
// of the post-match capture window. The final whistle wins when known.
func (c Clock) PostWindowStartMs(kickoffISO, finalWhistleISO string, liveDurationMin int) int64 {
	if whistle, ok := parseISO(finalWhistleISO); ok {
		return whistle.UnixMilli()
	}
	kickoff, ok := parseISO(kickoffISO)
	if !ok {
		return 0
	}
	return kickoff.Add(c.liveDuration(liveDurationMin)).UnixMilli()
}

// Lookback sizes the post-fetch window for now's phase. Minimum of five
// minutes so a tick at a boundary still sees traffic.
func (c Clock) Lookback(kickoffISO, finalWhistleISO string, liveDurationMin int, now time.Time) time.Duration {
	const floor = 5 * time.Minute

	defaultLookback := time.Duration(c.defaultLookbackMin) * time.Minute
	kickoff, ok := parseISO(kickoffISO)
	if !ok {
		return defaultLookback
	}

	var since time.Time
	switch c.WindowState(kickoffISO, finalWhistleISO, liveDurationMin, now) {
	case match.PhasePre:
		since = time.UnixMilli(c.PreWindowStartMs(kickoffISO))
	case match.PhaseLive:
		if bin, binOK := c.LiveBin(kickoffISO, liveDurationMin, now); binOK {
			since = time.UnixMilli(bin.BinStartMs)
		} else {
			since = kickoff
		}
	case match.PhasePost, match.PhaseEnded:
		since = time.UnixMilli(c.PostWindowStartMs(kickoffISO, finalWhistleISO, liveDurationMin))
	}

	lookback := now.Sub(since)
	if lookback < floor {
		lookback = floor
	}
	return lookback
}
