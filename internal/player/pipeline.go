// ABOUTME: Per-stream processing path from decoded buffers to the output
// ABOUTME: Applies drift correction through the stream's dynamic resampler
package player

import (
	"fmt"

	internalsync "github.com/chrisuthe/sendspin-player/internal/sync"
	"github.com/chrisuthe/sendspin-player/pkg/audio"
	"github.com/chrisuthe/sendspin-player/pkg/audio/resample"
)

// SampleSink receives interleaved int16 PCM ready for the device.
// *Output implements it.
type SampleSink interface {
	Write(samples []int16) error
}

// Pipeline is the processing path of one audio stream. It owns the
// stream's resampler exclusively: a new stream (or a new output device
// format) gets a new pipeline, since ratio and continuity state carry no
// meaning across format changes.
type Pipeline struct {
	sink      SampleSink
	rate      *internalsync.RateController
	resampler resample.Resampler
	channels  int
	in        []int16
	out       []int16
}

// NewPipeline creates the processing path for one stream, selecting the
// best available resampler for its format.
func NewPipeline(format audio.Format, sink SampleSink, rate *internalsync.RateController, quality resample.Quality) (*Pipeline, error) {
	r, err := resample.New(format.SampleRate, format.Channels, quality)
	if err != nil {
		return nil, fmt.Errorf("failed to create resampler: %w", err)
	}

	return &Pipeline{
		sink:      sink,
		rate:      rate,
		resampler: r,
		channels:  format.Channels,
	}, nil
}

// Play drift-corrects one decoded buffer and hands it to the sink. The
// controller's current ratio is applied before the batch is processed.
func (p *Pipeline) Play(buf audio.Buffer) error {
	if len(buf.Samples) == 0 {
		return nil
	}

	if err := p.resampler.SetRatio(p.rate.Ratio()); err != nil {
		return fmt.Errorf("failed to set ratio: %w", err)
	}

	if cap(p.in) < len(buf.Samples) {
		p.in = make([]int16, len(buf.Samples))
	}
	in := p.in[:len(buf.Samples)]
	for i, s := range buf.Samples {
		in[i] = audio.SampleToInt16(s)
	}

	need := resample.OutputCapacity(len(in), p.channels)
	if cap(p.out) < need {
		p.out = make([]int16, need)
	}
	out := p.out[:need]

	n, err := p.resampler.Process(in, out)
	if err != nil {
		return fmt.Errorf("resample failed: %w", err)
	}
	if n == 0 {
		return nil
	}

	return p.sink.Write(out[:n])
}

// Ratio returns the resampler's effective ratio.
func (p *Pipeline) Ratio() float64 {
	return p.resampler.Ratio()
}

// Reset clears the resampler's continuity state, e.g. after a seek.
func (p *Pipeline) Reset() error {
	return p.resampler.Reset()
}

// Close disposes the stream's resampler. The pipeline is unusable after.
func (p *Pipeline) Close() error {
	return p.resampler.Close()
}
