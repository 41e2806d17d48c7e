package regime

import (
	"github.com/rxtech-lab/ndx-rsi/internal/indicator"
)

// Trend is the short-horizon direction used by the RSI signal layer.
type Trend string

const (
	TrendUp   Trend = "up"
	TrendDown Trend = "down"
	TrendSide Trend = "side"
)

// VolumeType buckets a volume ratio.
type VolumeType string

const (
	VolumeHuge   VolumeType = "huge"
	VolumeUp     VolumeType = "up"
	VolumeNormal VolumeType = "normal"
	VolumeDown   VolumeType = "down"
	VolumeGround VolumeType = "ground"
)

const (
	// TrendLookback is the number of MA values fitted by ClassifyTrend.
	TrendLookback = 5
	// TrendSlope is the normalized slope needed to call a direction.
	TrendSlope = 0.0005

	trendTolerance = 1e-8
)

// ClassifyTrend is up when the MA slope over lookback bars is positive and the
// last two closes hold at or above the MA, down for the mirror case, else side.
func ClassifyTrend(close, ma50 []float64, lookback int) Trend {
	if lookback <= 0 {
		lookback = TrendLookback
	}

	if len(close) < lookback+2 || len(ma50) < lookback+2 {
		return TrendSide
	}

	ma := ma50[len(ma50)-lookback:]
	for _, v := range ma {
		if !indicator.IsDefined(v) {
			return TrendSide
		}
	}

	slopePct := NormalizedSlope(ma)
	c := close[len(close)-2:]
	m := ma50[len(ma50)-2:]

	if slopePct > TrendSlope && c[0] >= m[0]-trendTolerance && c[1] >= m[1]-trendTolerance {
		return TrendUp
	}

	if slopePct < -TrendSlope && c[0] <= m[0]+trendTolerance && c[1] <= m[1]+trendTolerance {
		return TrendDown
	}

	return TrendSide
}

// ClassifyVolume maps a volume ratio to huge (>=1.5), up (>=1.2), ground
// (<=0.5), down (<=0.8) or normal. An undefined ratio is normal.
func ClassifyVolume(ratio float64) VolumeType {
	switch {
	case !indicator.IsDefined(ratio):
		return VolumeNormal
	case ratio >= 1.5:
		return VolumeHuge
	case ratio >= 1.2:
		return VolumeUp
	case ratio <= 0.5:
		return VolumeGround
	case ratio <= 0.8:
		return VolumeDown
	default:
		return VolumeNormal
	}
}

// Expanding reports whether volume is above normal.
func (v VolumeType) Expanding() bool {
	return v == VolumeUp || v == VolumeHuge
}

// Contracting reports whether volume is below normal.
func (v VolumeType) Contracting() bool {
	return v == VolumeDown || v == VolumeGround
}
