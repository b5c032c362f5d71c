package audio

import (
	"math"
	"time"
)

// Chime pitches marking where a curve crosses an axis.
const (
	XChimeHz = 1200
	YChimeHz = 1500

	chimeLength  = 200 * time.Millisecond
	sketchLength = 3 * time.Second
)

// Sweep renders a mono sine glide between two frequencies. The pitch path is
// shaped by curve, which maps progress in [0,1] to a blend in [0,1] between
// from and to.
func Sweep(from, to float64, d time.Duration, rate int, amp float64, curve func(float64) float64) []int16 {
	n := int(d.Seconds() * float64(rate))
	if n <= 0 {
		return nil
	}

	if curve == nil {
		curve = func(t float64) float64 { return t }
	}

	out := make([]int16, n)
	phase := 0.0
	for i := range out {
		t := float64(i) / float64(n)
		freq := from + (to-from)*curve(t)
		phase += 2 * math.Pi * freq / float64(rate)
		out[i] = int16(amp * math.MaxInt16 * math.Sin(phase) * envelope(i, n, rate))
	}

	return out
}

// Tone renders a steady mono sine.
func Tone(freq float64, d time.Duration, rate int, amp float64) []int16 {
	return Sweep(freq, freq, d, rate, amp, nil)
}

// Mix adds src into dst starting at offset, clipping at the int16 range.
func Mix(dst, src []int16, offset int) {
	for i, s := range src {
		j := offset + i
		if j < 0 {
			continue
		}
		if j >= len(dst) {
			return
		}

		v := int32(dst[j]) + int32(s)
		dst[j] = int16(max(math.MinInt16, min(math.MaxInt16, v)))
	}
}

// Sketch renders an illustrative sonification for a trend label: rising
// pitch for "increasing", falling for "decreasing", a dip for "concave_up"
// and a hump for "concave_down". Axis crossings are marked with chimes near
// the start (y) and the middle (x).
func Sketch(trend string, crossesX, crossesY bool) Clip {
	rate := DefaultSampleRate
	low, high := 260.0, 780.0

	var from, to float64
	var curve func(float64) float64

	switch trend {
	case "increasing":
		from, to = low, high
	case "decreasing":
		from, to = high, low
	case "concave_up":
		from, to = high, low
		curve = func(t float64) float64 { return 1 - math.Abs(2*t-1) }
	case "concave_down":
		from, to = low, high
		curve = func(t float64) float64 { return 1 - math.Abs(2*t-1) }
	default:
		from, to = (low+high)/2, (low+high)/2
	}

	samples := Sweep(from, to, sketchLength, rate, 0.5, curve)

	if crossesY {
		Mix(samples, Tone(YChimeHz, chimeLength, rate, 0.4), len(samples)*5/100)
	}

	if crossesX {
		Mix(samples, Tone(XChimeHz, chimeLength, rate, 0.4), len(samples)*45/100)
	}

	return Clip{Samples: samples, SampleRate: rate, Channels: 1}
}

// envelope fades the first and last 10ms to avoid clicks.
func envelope(i, n, rate int) float64 {
	ramp := rate / 100
	if ramp <= 0 || n < 2*ramp {
		return 1
	}

	switch {
	case i < ramp:
		return float64(i) / float64(ramp)
	case i >= n-ramp:
		return float64(n-1-i) / float64(ramp)
	default:
		return 1
	}
}
