// ABOUTME: Tests for player application setup
// ABOUTME: Covers construction, configuration validation, and stream swaps
package app

import (
	"testing"

	"github.com/chrisuthe/sendspin-player/internal/player"
	"github.com/chrisuthe/sendspin-player/pkg/audio"
	"github.com/chrisuthe/sendspin-player/pkg/audio/decode"
	"github.com/chrisuthe/sendspin-player/pkg/audio/resample"
)

func TestNewPlayer(t *testing.T) {
	p := New(Config{
		ServerAddr: "localhost:8927",
		Name:       "Test Player",
		BufferMs:   150,
		Quality:    5,
	})

	if p.clockSync == nil {
		t.Error("expected clock sync to be initialized")
	}
	if p.rate == nil {
		t.Error("expected rate controller to be initialized")
	}
	if p.output == nil {
		t.Error("expected output to be initialized")
	}

	p.Stop()
}

func TestStartRequiresServerAddr(t *testing.T) {
	p := New(Config{Name: "Test Player"})
	defer p.Stop()

	if err := p.Start(); err == nil {
		t.Error("expected error when no server address is configured")
	}
}

func TestStopBeforeConnect(t *testing.T) {
	p := New(Config{ServerAddr: "localhost:8927"})
	// Must not panic with nil client and no active stream.
	p.Stop()
}

type nullSink struct{}

func (nullSink) Write([]int16) error { return nil }

func TestStreamSwapClosesPrevious(t *testing.T) {
	p := New(Config{ServerAddr: "localhost:8927"})
	defer p.Stop()

	format := audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}
	newStream := func() *stream {
		dec, err := decode.New(format)
		if err != nil {
			t.Fatalf("failed to create decoder: %v", err)
		}
		pipe, err := player.NewPipeline(format, nullSink{}, p.rate, resample.QualityDefault)
		if err != nil {
			t.Fatalf("failed to create pipeline: %v", err)
		}
		return &stream{
			decoder:   dec,
			scheduler: player.NewScheduler(p.clockSync),
			pipeline:  pipe,
			format:    format,
		}
	}

	first := newStream()
	p.current.Store(first)

	second := newStream()
	if old := p.current.Swap(second); old != nil {
		old.close()
	}

	buf := audio.Buffer{Samples: make([]int32, 8), Format: format}
	if err := first.pipeline.Play(buf); err == nil {
		t.Error("expected swapped-out pipeline to reject playback")
	}
	if err := second.pipeline.Play(buf); err != nil {
		t.Errorf("active stream failed: %v", err)
	}
	if got := p.current.Load(); got != second {
		t.Error("expected second stream to be current")
	}
}
