//go:build darwin || freebsd || linux

// ABOUTME: Loads libspeexdsp via purego dlopen on unix-like systems
// ABOUTME: Registers the resampler entry points used by the binding
package speexdsp

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// Soname first: that is what distro speexdsp packages install without the
// -dev package present.
var libNames = []string{
	"libspeexdsp.so.1",
	"libspeexdsp.so",
	"libspeexdsp.1.dylib",
	"libspeexdsp.dylib",
}

func load() {
	var lib uintptr
	var err error
	for _, name := range libNames {
		lib, err = purego.Dlopen(name, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err == nil && lib != 0 {
			break
		}
	}
	if lib == 0 {
		loadErr = fmt.Errorf("dlopen libspeexdsp: %w", err)
		return
	}

	// RegisterLibFunc panics on a missing symbol; an incomplete build of
	// the library counts as unavailable.
	defer func() {
		if r := recover(); r != nil {
			loadErr = fmt.Errorf("libspeexdsp symbols: %v", r)
		}
	}()

	purego.RegisterLibFunc(&resamplerInit, lib, "speex_resampler_init")
	purego.RegisterLibFunc(&setRateFrac, lib, "speex_resampler_set_rate_frac")
	purego.RegisterLibFunc(&processInt, lib, "speex_resampler_process_int")
	purego.RegisterLibFunc(&processInterleavedInt, lib, "speex_resampler_process_interleaved_int")
	purego.RegisterLibFunc(&resetMem, lib, "speex_resampler_reset_mem")
	purego.RegisterLibFunc(&destroy, lib, "speex_resampler_destroy")
	purego.RegisterLibFunc(&strerror, lib, "speex_resampler_strerror")
}
