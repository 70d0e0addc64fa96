// ABOUTME: Dynamic resampling package for playback drift correction
// ABOUTME: Sinc-quality native backend with an always-available linear fallback
// Package resample adjusts an audio stream's effective sample rate in real
// time so playback can track a shared master clock.
//
// The drift-correction loop computes a rate ratio from the observed clock
// error and retunes the stream's resampler before each batch:
//
//	r, err := resample.New(48000, 2, resample.QualityDefault)
//	if err != nil {
//	    // invalid stream parameters
//	}
//	defer r.Close()
//
//	out := make([]int16, resample.OutputCapacity(len(in), 2))
//	r.SetRatio(1.002) // slightly behind the master clock, catch up
//	n, err := r.Process(in, out)
//	// play out[:n]
//
// New prefers the sinc-based speexdsp backend, loaded at runtime, and
// silently falls back to linear interpolation when the library is absent.
// Callers only ever hold the Resampler interface.
package resample
