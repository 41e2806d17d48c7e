package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
	"github.com/rxtech-lab/ndx-rsi/internal/strategy"
	"github.com/rxtech-lab/ndx-rsi/internal/types"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

const (
	TimeseriesFile = "timeseries.json"
	SignalFile     = "signal.json"
)

// Timeseries is the close history published for a static dashboard. Each
// point is a [date, close] pair.
type Timeseries struct {
	Symbol string   `json:"symbol"`
	From   string   `json:"from"`
	To     string   `json:"to"`
	Series [][2]any `json:"series"`
}

// NewTimeseries covers the requested range from..to with the closes of bars.
func NewTimeseries(symbol string, from, to time.Time, bars []types.Bar) Timeseries {
	series := make([][2]any, 0, len(bars))
	for _, b := range bars {
		series = append(series, [2]any{b.Time.Format(time.DateOnly), types.Round4(b.Close)})
	}

	return Timeseries{
		Symbol: symbol,
		From:   from.Format(time.DateOnly),
		To:     to.Format(time.DateOnly),
		Series: series,
	}
}

// SignalPayload is the latest decision of a strategy in JSON form. Only Error
// is set when the history was too short.
type SignalPayload struct {
	Symbol     string              `json:"symbol,omitempty"`
	Strategy   string              `json:"strategy,omitempty"`
	Date       string              `json:"date,omitempty"`
	Close      float64             `json:"close,omitempty"`
	Indicators map[string]*float64 `json:"indicators,omitempty"`
	Signal     *types.Signal       `json:"signal,omitempty"`
	Risk       *types.RiskLevels   `json:"risk,omitempty"`
	Advice     string              `json:"advice,omitempty"`
	Derivation string              `json:"derivation,omitempty"`
	Error      string              `json:"error,omitempty"`
}

// NewSignalPayload mirrors SignalReport. Undefined indicator values are null.
func NewSignalPayload(s strategy.Strategy, symbol string, frame *indicator.Frame, sig types.Signal, levels types.RiskLevels) SignalPayload {
	if frame == nil || frame.Len() == 0 {
		return ErrorPayload(types.ErrInsufficientData)
	}

	last := frame.Last()
	values := make(map[string]*float64, len(s.Indicators()))

	for _, c := range s.Indicators() {
		v := frame.Value(c.Name())
		if !indicator.IsDefined(v) {
			values[c.Name()] = nil

			continue
		}

		rounded := types.Round4(v)
		values[c.Name()] = &rounded
	}

	return SignalPayload{
		Symbol:     symbol,
		Strategy:   s.Name(),
		Date:       last.Time.Format(time.DateOnly),
		Close:      types.Round4(last.Close),
		Indicators: values,
		Signal:     &sig,
		Risk:       &levels,
		Advice:     ActionFromPosition(sig.TargetPosition),
		Derivation: Derivation(sig.Reason),
	}
}

// ErrorPayload reports a signal that could not be computed.
func ErrorPayload(code string) SignalPayload {
	return SignalPayload{Error: code}
}

// WriteStatic writes timeseries.json and signal.json into dir and returns their paths.
func WriteStatic(dir string, series Timeseries, payload SignalPayload) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to create %s", dir)
	}

	files := []struct {
		name string
		data any
	}{
		{TimeseriesFile, series},
		{SignalFile, payload},
	}

	paths := make([]string, 0, len(files))

	for _, f := range files {
		data, err := json.MarshalIndent(f.data, "", "  ")
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to encode %s", f.name)
		}

		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeExportFailed, err, "failed to write %s", path)
		}

		paths = append(paths, path)
	}

	return paths, nil
}
