// ABOUTME: Sinc-based dynamic resampler backed by libspeexdsp
// ABOUTME: Fractional rate control pushed to the native backend per SetRatio
package resample

import (
	"fmt"
	"math"
	"sync"

	"github.com/chrisuthe/sendspin-player/internal/speexdsp"
)

const (
	maxSpeexChannels = 8

	// Denominator for the rational rate pair handed to the backend.
	// 1/65536 granularity comfortably exceeds the 1/10000 the drift
	// controller needs.
	ratioScale = 65536
)

// Speex wraps the speexdsp variable-rate resampler. Construction fails
// with ErrBackendUnavailable when the native library cannot be loaded and
// with a parameter error otherwise, so the selector can distinguish true
// unavailability from misuse.
type Speex struct {
	mu       sync.Mutex
	st       *speexdsp.State
	channels int
	rate     int
	ratio    float64
	closed   bool
}

// NewSpeex creates a sinc-based resampler at ratio 1.0. channels must be
// in [1, 8] and sampleRate positive.
func NewSpeex(sampleRate, channels int, quality Quality) (*Speex, error) {
	if channels < 1 || channels > maxSpeexChannels {
		return nil, ErrInvalidChannels
	}
	if sampleRate < 1 {
		return nil, ErrInvalidSampleRate
	}
	if !speexdsp.Available() {
		return nil, ErrBackendUnavailable
	}

	st, err := speexdsp.NewState(channels, sampleRate, sampleRate, int(quality.clamp()))
	if err != nil {
		return nil, fmt.Errorf("speexdsp init: %w", err)
	}

	return &Speex{
		st:       st,
		channels: channels,
		rate:     sampleRate,
		ratio:    1.0,
	}, nil
}

// SetRatio reconfigures the backend's fractional rate. A backend error
// here indicates a parameter bug, not unavailability, and is returned.
func (s *Speex) SetRatio(ratio float64) error {
	ratio = clampRatio(ratio)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrResamplerClosed
	}
	if math.Abs(ratio-s.ratio) < ratioEpsilon {
		return nil
	}

	// num/den is inputRate:outputRate. Faster playback consumes input
	// quicker than it emits output, so the output rate is rate/ratio.
	num := int(math.Round(ratio * ratioScale))
	outRate := int(math.Round(float64(s.rate) / ratio))
	if err := s.st.SetRateFrac(num, ratioScale, s.rate, outRate); err != nil {
		return fmt.Errorf("speexdsp set rate: %w", err)
	}

	s.ratio = ratio
	return nil
}

// Ratio returns the effective ratio.
func (s *Speex) Ratio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ratio
}

// Process resamples one chunk of interleaved samples. Mono audio uses the
// backend's per-channel entry point, multi-channel the interleaved one.
// The backend works in frames; the returned count is in samples.
//
// When output is the limiter the backend stops consuming and the
// remaining input is dropped. Size output with OutputCapacity to
// guarantee full consumption.
func (s *Speex) Process(input, output []int16) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrResamplerClosed
	}
	if len(input) < s.channels {
		return 0, nil
	}

	inFrames := len(input) / s.channels
	outFrames := len(output) / s.channels

	var writtenFrames int
	var err error
	if s.channels == 1 {
		_, writtenFrames, err = s.st.ProcessInt(0, input[:inFrames], output[:outFrames])
	} else {
		_, writtenFrames, err = s.st.ProcessInterleavedInt(
			input[:inFrames*s.channels], output[:outFrames*s.channels])
	}
	if err != nil {
		return 0, fmt.Errorf("speexdsp process: %w", err)
	}

	return writtenFrames * s.channels, nil
}

// Reset clears the backend's filter memory. The configured rate is kept.
func (s *Speex) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrResamplerClosed
	}
	s.st.Reset()
	return nil
}

// Close destroys the backend state.
func (s *Speex) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrResamplerClosed
	}
	s.closed = true
	s.st.Destroy()
	return nil
}
