package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// Bar is one trading day. Close is the adjusted close.
type Bar struct {
	Time   time.Time `yaml:"time" json:"time"`
	Symbol string    `yaml:"symbol" json:"symbol"`
	Open   float64   `yaml:"open" json:"open"`
	High   float64   `yaml:"high" json:"high"`
	Low    float64   `yaml:"low" json:"low"`
	Close  float64   `yaml:"close" json:"close"`
	Volume float64   `yaml:"volume" json:"volume"`
}

// IsFinite reports whether every price and the volume are finite numbers.
func (b Bar) IsFinite() bool {
	for _, v := range [...]float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}

	return true
}

// ValidateBars checks that bars are strictly increasing by date with no duplicates.
// Dates are compared at day granularity in UTC.
func ValidateBars(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		prev := DateOf(bars[i-1].Time)
		cur := DateOf(bars[i].Time)

		if !cur.After(prev) {
			return errors.Newf(errors.ErrCodeInvalidBarSequence,
				"bar %d (%s) is not after bar %d (%s)", i, cur.Format(time.DateOnly), i-1, prev.Format(time.DateOnly))
		}
	}

	return nil
}

// DateOf truncates t to its calendar date in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()

	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Closes extracts the close column.
func Closes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Close
	}

	return out
}

// Highs extracts the high column.
func Highs(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.High
	}

	return out
}

// Lows extracts the low column.
func Lows(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Low
	}

	return out
}

// Volumes extracts the volume column.
func Volumes(bars []Bar) []float64 {
	out := make([]float64, len(bars))
	for i, b := range bars {
		out[i] = b.Volume
	}

	return out
}
