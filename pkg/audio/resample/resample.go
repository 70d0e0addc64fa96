// ABOUTME: Dynamic resampler contract and backend selection
// ABOUTME: Continuously adjustable playback rate for clock drift correction
package resample

import (
	"log"

	"github.com/chrisuthe/sendspin-player/internal/speexdsp"
)

// Ratio bounds for drift correction. ±4% is enough to close realistic
// network clock drift within a few seconds while staying below the
// threshold of audibility.
const (
	MinRatio = 0.96
	MaxRatio = 1.04
)

// ratioEpsilon is the smallest ratio change worth reconfiguring for.
const ratioEpsilon = 1e-4

// Quality selects the speed/fidelity trade-off of the native backend,
// 0 (fastest) through 10 (best). The linear fallback ignores it.
type Quality int

const (
	QualityFastest Quality = 0
	QualityDefault Quality = 5
	QualityBest    Quality = 10
)

func (q Quality) clamp() Quality {
	if q < QualityFastest {
		return QualityFastest
	}
	if q > QualityBest {
		return QualityBest
	}
	return q
}

// Resampler converts interleaved PCM to an adjustable effective sample
// rate while preserving waveform continuity across calls.
//
// A Resampler is owned by exactly one stream. SetRatio may be called
// concurrently with Process (control loop vs. pipeline); all other calls
// are expected from the pipeline only. Every operation after Close fails
// with ErrResamplerClosed.
type Resampler interface {
	// SetRatio sets the playback rate ratio, silently clamped to
	// [MinRatio, MaxRatio]. Ratio > 1.0 plays faster (catches up),
	// ratio < 1.0 plays slower. Changes below ~1e-4 are no-ops.
	// Continuity state is never cleared by SetRatio.
	SetRatio(ratio float64) error

	// Ratio returns the effective (clamped) ratio.
	Ratio() float64

	// Process consumes interleaved input samples and writes as many
	// resampled interleaved samples as fit in output, returning the
	// count written. Empty input yields 0. Input that does not fit in
	// output is discarded, not carried over to the next call, so
	// callers must size output with OutputCapacity and consume only
	// the returned count.
	Process(input, output []int16) (int, error)

	// Reset discards continuity state (filter history, fractional
	// position) as if freshly constructed at the current ratio.
	Reset() error

	// Close releases backend resources.
	Close() error
}

// New returns the best resampler available on this host: the speexdsp
// sinc implementation when the native library loads, otherwise the
// linear fallback. A failing native backend never prevents playback,
// it only degrades correction quality.
func New(sampleRate, channels int, quality Quality) (Resampler, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}
	if sampleRate < 1 {
		return nil, ErrInvalidSampleRate
	}

	if speexdsp.Available() {
		r, err := NewSpeex(sampleRate, channels, quality)
		if err == nil {
			return r, nil
		}
		log.Printf("speexdsp resampler init failed, using linear fallback: %v", err)
	}

	return NewLinear(sampleRate, channels)
}

// OutputCapacity returns a safe output length (in samples) for one
// Process call over inputLen input samples at any legal ratio.
func OutputCapacity(inputLen, channels int) int {
	if channels < 1 {
		return 0
	}
	frames := inputLen / channels
	outFrames := int(float64(frames)/MinRatio) + 1
	return outFrames * channels
}

func clampRatio(ratio float64) float64 {
	if ratio < MinRatio {
		return MinRatio
	}
	if ratio > MaxRatio {
		return MaxRatio
	}
	return ratio
}
