package indicator

import (
	"sort"

	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// Base column names present in every frame.
const (
	ColumnOpen   = "open"
	ColumnHigh   = "high"
	ColumnLow    = "low"
	ColumnClose  = "close"
	ColumnVolume = "volume"
)

// Frame is a bar sequence plus named indicator columns aligned with it.
// A frame produced by Window is a read-only prefix view.
type Frame struct {
	bars     []types.Bar
	columns  map[string]Series
	end      int
	readOnly bool
}

// NewFrame builds a frame with the OHLCV base columns.
func NewFrame(bars []types.Bar) *Frame {
	f := &Frame{
		bars:    bars,
		columns: make(map[string]Series, 8),
		end:     len(bars),
	}

	f.columns[ColumnOpen] = make(Series, len(bars))
	f.columns[ColumnHigh] = types.Highs(bars)
	f.columns[ColumnLow] = types.Lows(bars)
	f.columns[ColumnClose] = types.Closes(bars)
	f.columns[ColumnVolume] = types.Volumes(bars)

	for i, b := range bars {
		f.columns[ColumnOpen][i] = b.Open
	}

	return f
}

// Len is the number of visible bars.
func (f *Frame) Len() int {
	return f.end
}

// Bars returns the visible bars.
func (f *Frame) Bars() []types.Bar {
	return f.bars[:f.end:f.end]
}

// Last returns the most recent visible bar. It panics on an empty frame.
func (f *Frame) Last() types.Bar {
	return f.bars[f.end-1]
}

// Column returns the visible prefix of a column.
func (f *Frame) Column(name string) (Series, bool) {
	s, ok := f.columns[name]
	if !ok {
		return nil, false
	}

	return s[:f.end:f.end], true
}

// Value returns the column value at the last visible bar, NaN if missing.
func (f *Frame) Value(name string) float64 {
	s, ok := f.Column(name)
	if !ok {
		return Series(nil).Last()
	}

	return s.Last()
}

// Closes is shorthand for the close column.
func (f *Frame) Closes() Series {
	s, _ := f.Column(ColumnClose)

	return s
}

// Has reports whether every named column is present.
func (f *Frame) Has(names ...string) bool {
	for _, name := range names {
		if _, ok := f.columns[name]; !ok {
			return false
		}
	}

	return true
}

// Missing returns the names that are not columns of the frame.
func (f *Frame) Missing(names ...string) []string {
	var missing []string

	for _, name := range names {
		if _, ok := f.columns[name]; !ok {
			missing = append(missing, name)
		}
	}

	return missing
}

// ColumnNames lists the columns in sorted order.
func (f *Frame) ColumnNames() []string {
	names := make([]string, 0, len(f.columns))
	for name := range f.columns {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// SetColumn attaches a full-length column to a root frame.
func (f *Frame) SetColumn(name string, s Series) error {
	if f.readOnly {
		return errors.Newf(errors.ErrCodeInvalidParameter, "cannot set column %s on a window", name)
	}

	if len(s) != len(f.bars) {
		return errors.Newf(errors.ErrCodeIndicatorCalculation, "column %s has %d values, frame has %d bars", name, len(s), len(f.bars))
	}

	f.columns[name] = s

	return nil
}

// Window returns the read-only prefix ending at bar i inclusive.
func (f *Frame) Window(i int) *Frame {
	end := i + 1
	if end > f.end {
		end = f.end
	}

	if end < 0 {
		end = 0
	}

	return &Frame{
		bars:     f.bars,
		columns:  f.columns,
		end:      end,
		readOnly: true,
	}
}
