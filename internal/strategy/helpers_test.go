package strategy

import (
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
)

var testStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// frameOf builds daily bars from closes and attaches the given columns.
func frameOf(closes []float64, columns map[string]indicator.Series) *indicator.Frame {
	bars := make([]types.Bar, len(closes))
	for i, c := range closes {
		bars[i] = types.Bar{Time: testStart.AddDate(0, 0, i), Open: c, High: c * 1.01, Low: c * 0.99, Close: c, Volume: 1000}
	}

	f := indicator.NewFrame(bars)
	for name, s := range columns {
		if err := f.SetColumn(name, s); err != nil {
			panic(err)
		}
	}

	return f
}

func constant(n int, v float64) indicator.Series {
	out := make(indicator.Series, n)
	for i := range out {
		out[i] = v
	}

	return out
}

func ramp(n int, start, step float64) indicator.Series {
	out := make(indicator.Series, n)
	for i := range out {
		out[i] = start + step*float64(i)
	}

	return out
}

// withLast overrides the final values of s.
func withLast(s indicator.Series, values ...float64) indicator.Series {
	out := append(indicator.Series(nil), s...)
	copy(out[len(out)-len(values):], values)

	return out
}
