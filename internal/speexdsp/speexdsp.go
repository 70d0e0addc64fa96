// ABOUTME: Runtime binding to the libspeexdsp variable-rate resampler
// ABOUTME: Library absence is reported through Available, never as a panic
package speexdsp

import (
	"errors"
	"fmt"
	"sync"
)

// speexdsp error codes (speex_resampler.h)
const (
	codeSuccess     = 0
	codeAllocFailed = 1
	codeBadState    = 2
	codeInvalidArg  = 3
	codePtrOverlap  = 4
)

// ErrUnavailable means the shared library could not be loaded on this host.
var ErrUnavailable = errors.New("speexdsp: library not available")

var (
	loadOnce sync.Once
	loadErr  error

	// Registered entry points. Nil until load succeeds.
	resamplerInit         func(channels, inRate, outRate uint32, quality int32, code *int32) uintptr
	setRateFrac           func(handle uintptr, num, den, inRate, outRate uint32) int32
	processInt            func(handle uintptr, channel uint32, in *int16, inLen *uint32, out *int16, outLen *uint32) int32
	processInterleavedInt func(handle uintptr, in *int16, inLen *uint32, out *int16, outLen *uint32) int32
	resetMem              func(handle uintptr) int32
	destroy               func(handle uintptr)
	strerror              func(code int32) string
)

// Available reports whether libspeexdsp is loadable. The first call loads
// the library and registers the entry points; the probe finishes with a
// harmless strerror call to prove the symbols are live.
func Available() bool {
	loadOnce.Do(load)
	if loadErr != nil {
		return false
	}
	return strerror(codeSuccess) != ""
}

// Strerror maps a speexdsp error code to its message.
func Strerror(code int) string {
	if strerror == nil {
		return fmt.Sprintf("speexdsp error %d", code)
	}
	return strerror(int32(code))
}

// State is one resampler instance owned by the backend.
type State struct {
	handle   uintptr
	channels int
}

// NewState allocates backend state for the given stream parameters.
// Returns ErrUnavailable (wrapped) when the library is missing and the
// backend's own error otherwise.
func NewState(channels, inRate, outRate, quality int) (*State, error) {
	loadOnce.Do(load)
	if loadErr != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, loadErr)
	}

	var code int32
	handle := resamplerInit(uint32(channels), uint32(inRate), uint32(outRate), int32(quality), &code)
	if handle == 0 || code != codeSuccess {
		return nil, fmt.Errorf("speexdsp: init failed: %s", Strerror(int(code)))
	}

	return &State{handle: handle, channels: channels}, nil
}

// SetRateFrac pushes an exact fractional rate (num/den = in:out) along
// with the rounded integer rates.
func (s *State) SetRateFrac(num, den, inRate, outRate int) error {
	if s.handle == 0 {
		return errors.New("speexdsp: state destroyed")
	}
	code := setRateFrac(s.handle, uint32(num), uint32(den), uint32(inRate), uint32(outRate))
	if code != codeSuccess {
		return fmt.Errorf("speexdsp: set_rate_frac: %s", Strerror(int(code)))
	}
	return nil
}

// ProcessInt resamples a single channel. Lengths are frames; the backend
// updates both counts in place to the frames actually consumed/produced.
// The backend borrows the buffers only for the duration of the call.
func (s *State) ProcessInt(channel int, in, out []int16) (consumed, produced int, err error) {
	if s.handle == 0 {
		return 0, 0, errors.New("speexdsp: state destroyed")
	}

	inLen := uint32(len(in))
	outLen := uint32(len(out))
	var inPtr, outPtr *int16
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}

	code := processInt(s.handle, uint32(channel), inPtr, &inLen, outPtr, &outLen)
	if code != codeSuccess {
		return 0, 0, fmt.Errorf("speexdsp: process_int: %s", Strerror(int(code)))
	}
	return int(inLen), int(outLen), nil
}

// ProcessInterleavedInt resamples all channels from one interleaved
// buffer. Slice lengths are samples; counts exchanged with the backend
// are frames.
func (s *State) ProcessInterleavedInt(in, out []int16) (consumedFrames, producedFrames int, err error) {
	if s.handle == 0 {
		return 0, 0, errors.New("speexdsp: state destroyed")
	}

	inLen := uint32(len(in) / s.channels)
	outLen := uint32(len(out) / s.channels)
	var inPtr, outPtr *int16
	if len(in) > 0 {
		inPtr = &in[0]
	}
	if len(out) > 0 {
		outPtr = &out[0]
	}

	code := processInterleavedInt(s.handle, inPtr, &inLen, outPtr, &outLen)
	if code != codeSuccess {
		return 0, 0, fmt.Errorf("speexdsp: process_interleaved_int: %s", Strerror(int(code)))
	}
	return int(inLen), int(outLen), nil
}

// Reset clears the backend's filter memory without touching the rate.
func (s *State) Reset() {
	if s.handle == 0 {
		return
	}
	resetMem(s.handle)
}

// Destroy releases the backend state. Further calls on s fail.
func (s *State) Destroy() {
	if s.handle == 0 {
		return
	}
	destroy(s.handle)
	s.handle = 0
}
