// ABOUTME: Tests for the speexdsp-backed resampler
// ABOUTME: Skipped when the native library is absent on the host
package resample

import (
	"math"
	"testing"

	"github.com/chrisuthe/sendspin-player/internal/speexdsp"
)

func requireSpeex(t *testing.T) {
	t.Helper()
	if !speexdsp.Available() {
		t.Skip("libspeexdsp not available on this host")
	}
}

func TestNewSpeexInvalidParams(t *testing.T) {
	// Parameter validation happens before the availability probe, so
	// these hold with or without the library installed.
	if _, err := NewSpeex(48000, 0, QualityDefault); err != ErrInvalidChannels {
		t.Errorf("expected ErrInvalidChannels for 0 channels, got %v", err)
	}
	if _, err := NewSpeex(48000, 9, QualityDefault); err != ErrInvalidChannels {
		t.Errorf("expected ErrInvalidChannels for 9 channels, got %v", err)
	}
	if _, err := NewSpeex(0, 2, QualityDefault); err != ErrInvalidSampleRate {
		t.Errorf("expected ErrInvalidSampleRate, got %v", err)
	}
}

func TestSpeexSetRatioRoundTrip(t *testing.T) {
	requireSpeex(t)

	r, err := NewSpeex(48000, 2, QualityDefault)
	if err != nil {
		t.Fatalf("expected native resampler: %v", err)
	}
	defer r.Close()

	for _, ratio := range []float64{0.96, 1.0, 1.02, 1.04} {
		if err := r.SetRatio(ratio); err != nil {
			t.Fatalf("SetRatio(%f) failed: %v", ratio, err)
		}
		if got := r.Ratio(); math.Abs(got-ratio) > 1e-9 {
			t.Errorf("expected ratio %f, got %f", ratio, got)
		}
	}

	if err := r.SetRatio(3.0); err != nil {
		t.Fatalf("out-of-range SetRatio must clamp, not fail: %v", err)
	}
	if got := r.Ratio(); got != MaxRatio {
		t.Errorf("expected clamp to %f, got %f", MaxRatio, got)
	}
}

func TestSpeexProcessNearIdentity(t *testing.T) {
	requireSpeex(t)

	r, err := NewSpeex(48000, 1, QualityDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	// Feed several chunks so the sinc filter's startup latency is
	// flushed, then check the output keeps up with the input length.
	input := sine(1000, 48000, 1, 480, 16000)
	totalIn, totalOut := 0, 0
	for i := 0; i < 20; i++ {
		output := make([]int16, OutputCapacity(len(input), 1))
		n, err := r.Process(input, output)
		if err != nil {
			t.Fatalf("Process failed: %v", err)
		}
		totalIn += len(input)
		totalOut += n
	}

	if diff := totalIn - totalOut; diff < 0 || diff > 1000 {
		t.Errorf("expected near-identity length at ratio 1.0: in=%d out=%d", totalIn, totalOut)
	}
}

func TestSpeexProcessEmptyInput(t *testing.T) {
	requireSpeex(t)

	r, err := NewSpeex(48000, 2, QualityDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	n, err := r.Process(nil, make([]int16, 64))
	if err != nil {
		t.Fatalf("Process on empty input failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 samples, got %d", n)
	}
}

func TestSpeexFrequencyTracksRatio(t *testing.T) {
	requireSpeex(t)

	const (
		rate      = 48000
		frames    = 4800
		freq      = 1000.0
		amplitude = 16000
	)

	r, err := NewSpeex(rate, 1, QualityDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	if err := r.SetRatio(1.04); err != nil {
		t.Fatal(err)
	}

	// Skip the first chunk (filter warm-up), measure the rest.
	phase := 0
	crossings, measuredSamples := 0, 0
	for chunk := 0; chunk < 10; chunk++ {
		input := make([]int16, frames)
		for i := range input {
			tSec := float64(phase+i) / rate
			input[i] = int16(amplitude * math.Sin(2*math.Pi*freq*tSec))
		}
		phase += frames

		output := make([]int16, OutputCapacity(len(input), 1))
		n, err := r.Process(input, output)
		if err != nil {
			t.Fatal(err)
		}
		if chunk == 0 {
			continue
		}
		for i := 1; i < n; i++ {
			if (output[i-1] < 0) != (output[i] < 0) {
				crossings++
			}
		}
		measuredSamples += n
	}

	measured := float64(crossings) / 2 * rate / float64(measuredSamples)
	want := freq * 1.04
	if math.Abs(measured-want)/want > 0.01 {
		t.Errorf("measured %.1fHz, want %.1fHz (±1%%)", measured, want)
	}
}

func TestSpeexReset(t *testing.T) {
	requireSpeex(t)

	r, err := NewSpeex(48000, 2, QualityDefault)
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()

	input := sine(440, 48000, 2, 480, 12000)
	out1 := make([]int16, OutputCapacity(len(input), 2))
	out2 := make([]int16, OutputCapacity(len(input), 2))

	n1, err := r.Process(input, out1)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Reset(); err != nil {
		t.Fatal(err)
	}
	n2, err := r.Process(input, out2)
	if err != nil {
		t.Fatal(err)
	}

	if n1 != n2 {
		t.Fatalf("expected identical lengths after Reset, got %d and %d", n1, n2)
	}
	for i := 0; i < n1; i++ {
		if out1[i] != out2[i] {
			t.Fatalf("sample %d differs after Reset: %d vs %d", i, out1[i], out2[i])
		}
	}
}

func TestSpeexOperationsAfterClose(t *testing.T) {
	requireSpeex(t)

	r, err := NewSpeex(48000, 2, QualityDefault)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.Close(); err != nil {
		t.Fatal(err)
	}

	if err := r.SetRatio(1.0); err != ErrResamplerClosed {
		t.Errorf("SetRatio after Close: expected ErrResamplerClosed, got %v", err)
	}
	if _, err := r.Process(make([]int16, 4), make([]int16, 8)); err != ErrResamplerClosed {
		t.Errorf("Process after Close: expected ErrResamplerClosed, got %v", err)
	}
	if err := r.Close(); err != ErrResamplerClosed {
		t.Errorf("second Close: expected ErrResamplerClosed, got %v", err)
	}
}
