package datasource

import (
	"sort"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

const (
	// MinPreparedBars is the shortest history considered usable.
	MinPreparedBars = 20
	// MaxMissingDays is how many trailing bars may be absent before data is stale.
	MaxMissingDays = 2
)

// Prepared is the cleaned bar table with the default indicator columns attached.
type Prepared struct {
	Frame *indicator.Frame
	// OK is false when the history is too short or the latest bars are incomplete.
	OK      bool
	Dropped int
}

// Clean sorts bars by date, keeps the last bar of each duplicated date and drops
// rows with non-finite or non-positive prices. It returns the cleaned bars and
// whether the trailing MaxMissingDays+1 input rows were all usable.
func Clean(bars []types.Bar) ([]types.Bar, bool) {
	sorted := make([]types.Bar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	tailOK := len(sorted) > MaxMissingDays
	for i := len(sorted) - 1; i >= 0 && i >= len(sorted)-MaxMissingDays-1; i-- {
		if !usable(sorted[i]) {
			tailOK = false
		}
	}

	out := make([]types.Bar, 0, len(sorted))

	for _, b := range sorted {
		if !usable(b) {
			continue
		}

		b.Time = types.DateOf(b.Time)

		if n := len(out); n > 0 && out[n-1].Time.Equal(b.Time) {
			out[n-1] = b

			continue
		}

		out = append(out, b)
	}

	return out, tailOK
}

func usable(b types.Bar) bool {
	return b.IsFinite() && b.Close > 0 && b.Open > 0 && b.High > 0 && b.Low > 0 && b.Volume >= 0
}

// Preprocess cleans bars and attaches the default indicator columns.
func Preprocess(bars []types.Bar) (Prepared, error) {
	cleaned, tailOK := Clean(bars)

	frame := indicator.NewFrame(cleaned)
	if err := indicator.NewColumnRegistry().Attach(frame, indicator.DefaultColumns()...); err != nil {
		return Prepared{}, err
	}

	return Prepared{
		Frame:   frame,
		OK:      tailOK && len(cleaned) >= MinPreparedBars,
		Dropped: len(bars) - len(cleaned),
	}, nil
}
