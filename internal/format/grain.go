// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package format

import (
	"fmt"
	"math"
	"math/big"
	"math/bits"
	"time"
)

// Grain is the exact duration of one frame interval, Num/Den seconds.
type Grain struct {
	Num uint64
	Den uint64
}

// grainUnknown is the sentinel grain of unknown modes.
var grainUnknown = Grain{Num: 0, Den: 1}

// IsZero reports whether g describes no interval at all.
func (g Grain) IsZero() bool { return g.Num == 0 || g.Den == 0 }

// Rat returns g as an exact rational number of seconds.
func (g Grain) Rat() *big.Rat {
	if g.Den == 0 {
		return new(big.Rat)
	}
	return new(big.Rat).SetFrac(new(big.Int).SetUint64(g.Num), new(big.Int).SetUint64(g.Den))
}

// FrameRate returns the frame rate as a num/den pair (the reciprocal of g).
func (g Grain) FrameRate() (num, den uint64) {
	return g.Den, g.Num
}

// Elapsed returns the start offset of frame n, floor(n*Num/Den) seconds
// expressed in nanoseconds. The arithmetic is carried in 128 bits so that
// long-running cadences do not accumulate rounding drift. Offsets that do not
// fit a time.Duration saturate at math.MaxInt64.
func (g Grain) Elapsed(n uint64) time.Duration {
	if g.IsZero() || n == 0 {
		return 0
	}
	hi, lo := bits.Mul64(n, g.Num)
	if hi >= g.Den {
		return time.Duration(math.MaxInt64)
	}
	secs, rem := bits.Div64(hi, lo, g.Den)
	if secs > uint64(math.MaxInt64)/uint64(time.Second) {
		return time.Duration(math.MaxInt64)
	}
	// rem < Den, so the high word of rem*1e9 is always below Den.
	rhi, rlo := bits.Mul64(rem, uint64(time.Second))
	frac, _ := bits.Div64(rhi, rlo, g.Den)
	total := secs*uint64(time.Second) + frac
	if total > uint64(math.MaxInt64) {
		return time.Duration(math.MaxInt64)
	}
	return time.Duration(total)
}

// Duration is the length of a single interval, rounded down to nanoseconds.
func (g Grain) Duration() time.Duration { return g.Elapsed(1) }

func (g Grain) String() string {
	return fmt.Sprintf("%d/%d", g.Num, g.Den)
}
