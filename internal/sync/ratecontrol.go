// ABOUTME: Converts observed playback timing error into a playback-rate ratio
// ABOUTME: Drives the dynamic resampler's SetRatio from the control loop
package sync

import (
	"sync"

	"github.com/chrisuthe/sendspin-player/pkg/audio/resample"
)

const (
	// Weight given to each new error measurement.
	rateSmoothing = 0.1

	// Time over which a correction should absorb the current error.
	// Shorter converges faster but modulates the rate harder.
	correctionHorizonUs = 2_000_000.0
)

// RateController turns measured playback timing errors into a playback
// rate ratio for the stream's resampler. ReportError is called from the
// playback path as buffers are handed to the output; Ratio is read by the
// same path before each batch, so the resampler catches up or falls back
// gradually instead of dropping or inserting samples.
type RateController struct {
	mu    sync.Mutex
	errUs float64 // smoothed playback error; positive = playing late
	ratio float64
}

// NewRateController creates a controller at ratio 1.0 (no correction).
func NewRateController() *RateController {
	return &RateController{ratio: 1.0}
}

// ReportError feeds one measured playback error in microseconds.
// Positive means playback is behind the server clock and must speed up.
func (rc *RateController) ReportError(errorMicros int64) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	rc.errUs += rateSmoothing * (float64(errorMicros) - rc.errUs)

	ratio := 1.0 + rc.errUs/correctionHorizonUs
	if ratio < resample.MinRatio {
		ratio = resample.MinRatio
	} else if ratio > resample.MaxRatio {
		ratio = resample.MaxRatio
	}
	rc.ratio = ratio
}

// Ratio returns the current playback rate ratio.
func (rc *RateController) Ratio() float64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return rc.ratio
}

// Error returns the smoothed playback error in microseconds.
func (rc *RateController) Error() int64 {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return int64(rc.errUs)
}

// Reset clears the error history, e.g. when a new stream starts.
func (rc *RateController) Reset() {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	rc.errUs = 0
	rc.ratio = 1.0
}
