// ABOUTME: Audio output using oto library
// ABOUTME: Continuous PCM playback with software volume control
package player

import (
	"encoding/binary"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/chrisuthe/sendspin-player/pkg/audio"
	"github.com/ebitengine/oto/v3"
)

// audioDevice abstracts the platform audio context so output logic is
// testable without hardware.
type audioDevice interface {
	NewPlayer(r io.Reader) devicePlayer
	Suspend() error
	Resume() error
}

// devicePlayer is the subset of *oto.Player the output uses.
type devicePlayer interface {
	Play()
	Close() error
}

type otoDevice struct {
	ctx *oto.Context
}

func (d *otoDevice) NewPlayer(r io.Reader) devicePlayer { return d.ctx.NewPlayer(r) }
func (d *otoDevice) Suspend() error                     { return d.ctx.Suspend() }
func (d *otoDevice) Resume() error                      { return d.ctx.Resume() }

// newDevice opens the platform audio context. oto allows exactly one
// context per process, so the device outlives individual streams and
// its format is fixed by the first initialization.
var newDevice = func(format audio.Format) (audioDevice, error) {
	op := &oto.NewContextOptions{
		SampleRate:   format.SampleRate,
		ChannelCount: format.Channels,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}
	<-readyChan

	return &otoDevice{ctx: ctx}, nil
}

// Output manages the platform audio device. One persistent player per
// stream drains an internal PCM queue so the resampled stream plays
// gaplessly; the queue feeds silence when it runs dry.
type Output struct {
	mu     sync.Mutex
	device audioDevice
	player devicePlayer
	queue  *pcmQueue
	format audio.Format
	volume int
	muted  bool
	ready  bool
}

// NewOutput creates an audio output
func NewOutput() *Output {
	return &Output{
		volume: 100,
	}
}

// Initialize prepares playback for a stream. The first call opens the
// device at the stream's format; later calls reuse the device and give
// the new stream a fresh player and queue. The device format cannot
// change after the first call — the handshake only advertises formats
// matching it.
func (o *Output) Initialize(format audio.Format) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.device != nil {
		if format.SampleRate != o.format.SampleRate || format.Channels != o.format.Channels {
			return fmt.Errorf("device is fixed at %dHz/%dch, cannot reinitialize to %dHz/%dch",
				o.format.SampleRate, o.format.Channels, format.SampleRate, format.Channels)
		}

		if o.player != nil {
			o.player.Close()
		}
		if err := o.device.Resume(); err != nil {
			return fmt.Errorf("failed to resume device: %w", err)
		}
	} else {
		device, err := newDevice(format)
		if err != nil {
			return err
		}
		o.device = device
	}

	o.queue = newPCMQueue()
	o.player = o.device.NewPlayer(o.queue)
	o.player.Play()
	o.format = format
	o.ready = true

	log.Printf("Audio output initialized: %dHz, %d channels",
		format.SampleRate, format.Channels)

	return nil
}

// Write queues interleaved int16 samples for playback.
func (o *Output) Write(samples []int16) error {
	o.mu.Lock()
	if !o.ready {
		o.mu.Unlock()
		return fmt.Errorf("output not initialized")
	}
	queue := o.queue
	multiplier := volumeMultiplier(o.volume, o.muted)
	o.mu.Unlock()

	buf := make([]byte, len(samples)*2)
	for i, sample := range samples {
		scaled := int16(float64(sample) * multiplier)
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(scaled))
	}

	queue.Push(buf)
	return nil
}

// SetVolume sets the volume (0-100)
func (o *Output) SetVolume(volume int) {
	if volume < 0 {
		volume = 0
	}
	if volume > 100 {
		volume = 100
	}

	o.mu.Lock()
	o.volume = volume
	o.mu.Unlock()
	log.Printf("Volume set to %d", volume)
}

// SetMuted sets mute state
func (o *Output) SetMuted(muted bool) {
	o.mu.Lock()
	o.muted = muted
	o.mu.Unlock()
	log.Printf("Muted: %v", muted)
}

// GetVolume returns current volume
func (o *Output) GetVolume() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.volume
}

// IsMuted returns mute state
func (o *Output) IsMuted() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.muted
}

// Buffered returns the number of queued bytes not yet read by the device.
func (o *Output) Buffered() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.queue == nil {
		return 0
	}
	return o.queue.Len()
}

// Close stops playback and suspends the device. The device itself is
// kept so a later Initialize can resume it.
func (o *Output) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.player != nil {
		o.player.Close()
		o.player = nil
	}
	if o.device != nil {
		o.device.Suspend()
	}
	o.ready = false
}

// volumeMultiplier calculates the software volume multiplier
func volumeMultiplier(volume int, muted bool) float64 {
	if muted {
		return 0.0
	}
	return float64(volume) / 100.0
}

// pcmQueue is the byte queue between Write and the oto player. Reads on
// an empty queue return silence so the device never starves.
type pcmQueue struct {
	mu  sync.Mutex
	buf []byte
}

func newPCMQueue() *pcmQueue {
	return &pcmQueue{}
}

// Push appends PCM bytes for playback.
func (q *pcmQueue) Push(data []byte) {
	q.mu.Lock()
	q.buf = append(q.buf, data...)
	q.mu.Unlock()
}

// Len returns the number of queued bytes.
func (q *pcmQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Read hands queued PCM to the player, padding with silence when the
// queue runs dry. Never returns io.EOF; the player stays open until the
// output is closed.
func (q *pcmQueue) Read(p []byte) (int, error) {
	q.mu.Lock()
	n := copy(p, q.buf)
	q.buf = q.buf[n:]
	q.mu.Unlock()

	for i := n; i < len(p); i++ {
		p[i] = 0
	}
	return len(p), nil
}
