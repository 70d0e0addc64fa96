// ABOUTME: Linear-interpolation fallback resampler
// ABOUTME: Always constructible; carries the last frame across chunk boundaries
package resample

import (
	"math"
	"sync"
)

// Linear is the fallback implementation. It interpolates between
// neighbouring frames and carries the previous chunk's last frame so that
// successive Process calls join without a discontinuity. Lower fidelity
// than the sinc backend (no band-limiting) but has no external dependency
// and never fails to construct for a valid channel count.
type Linear struct {
	mu       sync.Mutex
	channels int
	rate     int
	ratio    float64
	pos      float64 // fractional read position; index -1 addresses carry
	carry    []int16 // last frame of the previous chunk, one per channel
	closed   bool
}

// NewLinear creates a linear-interpolation resampler at ratio 1.0.
func NewLinear(sampleRate, channels int) (*Linear, error) {
	if channels < 1 {
		return nil, ErrInvalidChannels
	}
	if sampleRate < 1 {
		return nil, ErrInvalidSampleRate
	}

	return &Linear{
		channels: channels,
		rate:     sampleRate,
		ratio:    1.0,
		carry:    make([]int16, channels),
	}, nil
}

// SetRatio sets the playback ratio, clamped to [MinRatio, MaxRatio].
func (l *Linear) SetRatio(ratio float64) error {
	ratio = clampRatio(ratio)

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrResamplerClosed
	}
	if math.Abs(ratio-l.ratio) < ratioEpsilon {
		return nil
	}
	l.ratio = ratio
	return nil
}

// Ratio returns the effective ratio.
func (l *Linear) Ratio() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.ratio
}

// Process resamples one chunk of interleaved samples.
//
// The read position advances by ratio per output frame over an input
// extended by the carried frame at index -1. Interpolation is valid for
// positions in [-1, N-1]; once the position passes the last frame the
// chunk is exhausted, the last frame is carried over and the position is
// re-based by -N so the next chunk continues seamlessly.
func (l *Linear) Process(input, output []int16) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return 0, ErrResamplerClosed
	}
	if len(input) < l.channels {
		return 0, nil
	}

	inFrames := len(input) / l.channels
	outFrames := len(output) / l.channels

	written := 0
	for written < outFrames && l.pos <= float64(inFrames-1) {
		i := int(math.Floor(l.pos))
		frac := l.pos - float64(i)

		for ch := 0; ch < l.channels; ch++ {
			var s0 float64
			if i < 0 {
				s0 = float64(l.carry[ch])
			} else {
				s0 = float64(input[i*l.channels+ch])
			}

			v := s0
			if frac != 0 {
				s1 := float64(input[(i+1)*l.channels+ch])
				v = s0 + (s1-s0)*frac
			}
			output[written*l.channels+ch] = int16(math.Round(v))
		}

		written++
		l.pos += l.ratio
	}

	// Re-base against the next chunk: its frame 0 will sit where index
	// inFrames is now, and index -1 addresses the frame carried below.
	// An undersized output leaves the position short of the chunk end;
	// clamping to -1 drops the unconsumed input (see the Process
	// contract) and keeps the position inside [-1, N-1].
	l.pos -= float64(inFrames)
	if l.pos < -1 {
		l.pos = -1
	}
	copy(l.carry, input[(inFrames-1)*l.channels:inFrames*l.channels])

	return written * l.channels, nil
}

// Reset clears the fractional position and carried samples. The ratio is
// kept.
func (l *Linear) Reset() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrResamplerClosed
	}
	l.pos = 0
	for i := range l.carry {
		l.carry[i] = 0
	}
	return nil
}

// Close marks the resampler unusable.
func (l *Linear) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return ErrResamplerClosed
	}
	l.closed = true
	return nil
}
