// ABOUTME: Sentinel errors for the resampler subsystem
// ABOUTME: Separates backend unavailability from parameter and usage errors
package resample

import "errors"

var (
	// ErrBackendUnavailable means libspeexdsp could not be loaded on this
	// host. The selector treats this as a silent fallback condition.
	ErrBackendUnavailable = errors.New("resample: native backend unavailable")

	// ErrResamplerClosed is returned by every operation after Close.
	ErrResamplerClosed = errors.New("resample: resampler closed")

	// ErrInvalidChannels is returned for a channel count the requested
	// implementation cannot handle.
	ErrInvalidChannels = errors.New("resample: invalid channel count")

	// ErrInvalidSampleRate is returned for a non-positive sample rate.
	ErrInvalidSampleRate = errors.New("resample: sample rate must be positive")
)
