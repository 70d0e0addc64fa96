// ABOUTME: Tests for audio output helpers
// ABOUTME: Covers volume math and the PCM queue feeding the device
package player

import (
	"io"
	"testing"

	"github.com/chrisuthe/sendspin-player/pkg/audio"
)

type fakePlayer struct {
	playing bool
	closed  bool
}

func (p *fakePlayer) Play()        { p.playing = true }
func (p *fakePlayer) Close() error { p.closed = true; return nil }

type fakeDevice struct {
	players   []*fakePlayer
	suspended bool
}

func (d *fakeDevice) NewPlayer(r io.Reader) devicePlayer {
	p := &fakePlayer{}
	d.players = append(d.players, p)
	return p
}

func (d *fakeDevice) Suspend() error { d.suspended = true; return nil }
func (d *fakeDevice) Resume() error  { d.suspended = false; return nil }

// useFakeDevice swaps the device constructor for the test's fake and
// counts how often it is invoked.
func useFakeDevice(t *testing.T) (*fakeDevice, *int) {
	t.Helper()
	device := &fakeDevice{}
	opens := 0

	orig := newDevice
	newDevice = func(format audio.Format) (audioDevice, error) {
		opens++
		return device, nil
	}
	t.Cleanup(func() { newDevice = orig })

	return device, &opens
}

func deviceFormat() audio.Format {
	return audio.Format{Codec: "pcm", SampleRate: 48000, Channels: 2, BitDepth: 16}
}

func TestInitializeSecondStreamReusesDevice(t *testing.T) {
	device, opens := useFakeDevice(t)
	o := NewOutput()

	if err := o.Initialize(deviceFormat()); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}
	if err := o.Write([]int16{1, 2, 3, 4}); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	if err := o.Initialize(deviceFormat()); err != nil {
		t.Fatalf("second Initialize failed: %v", err)
	}

	if *opens != 1 {
		t.Errorf("expected one device open, got %d", *opens)
	}
	if len(device.players) != 2 {
		t.Fatalf("expected a fresh player per stream, got %d", len(device.players))
	}
	if !device.players[0].closed {
		t.Error("expected first stream's player to be closed")
	}
	if !device.players[1].playing {
		t.Error("expected second stream's player to be playing")
	}
	if o.Buffered() != 0 {
		t.Errorf("expected fresh queue for second stream, got %d buffered bytes", o.Buffered())
	}
	if err := o.Write([]int16{5, 6}); err != nil {
		t.Errorf("Write after reinitialize failed: %v", err)
	}
}

func TestInitializeRejectsFormatChange(t *testing.T) {
	useFakeDevice(t)
	o := NewOutput()

	if err := o.Initialize(deviceFormat()); err != nil {
		t.Fatalf("first Initialize failed: %v", err)
	}

	other := deviceFormat()
	other.SampleRate = 44100
	if err := o.Initialize(other); err == nil {
		t.Fatal("expected error reinitializing with a different sample rate")
	}

	// The running stream must be untouched by the rejected call.
	if err := o.Write([]int16{1, 2}); err != nil {
		t.Errorf("Write after rejected Initialize failed: %v", err)
	}
}

func TestInitializeAfterCloseResumes(t *testing.T) {
	device, _ := useFakeDevice(t)
	o := NewOutput()

	if err := o.Initialize(deviceFormat()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	o.Close()
	if !device.suspended {
		t.Error("expected device suspended after Close")
	}
	if err := o.Write([]int16{1, 2}); err == nil {
		t.Error("expected error writing to closed output")
	}

	if err := o.Initialize(deviceFormat()); err != nil {
		t.Fatalf("Initialize after Close failed: %v", err)
	}
	if device.suspended {
		t.Error("expected device resumed")
	}
	if err := o.Write([]int16{3, 4}); err != nil {
		t.Errorf("Write after reinitialize failed: %v", err)
	}
}

func TestVolumeMultiplier(t *testing.T) {
	cases := []struct {
		volume int
		muted  bool
		want   float64
	}{
		{100, false, 1.0},
		{50, false, 0.5},
		{0, false, 0.0},
		{100, true, 0.0},
		{50, true, 0.0},
	}

	for _, c := range cases {
		if got := volumeMultiplier(c.volume, c.muted); got != c.want {
			t.Errorf("volumeMultiplier(%d, %v) = %f, want %f", c.volume, c.muted, got, c.want)
		}
	}
}

func TestSetVolumeClamps(t *testing.T) {
	o := NewOutput()

	o.SetVolume(150)
	if got := o.GetVolume(); got != 100 {
		t.Errorf("expected volume clamped to 100, got %d", got)
	}

	o.SetVolume(-10)
	if got := o.GetVolume(); got != 0 {
		t.Errorf("expected volume clamped to 0, got %d", got)
	}
}

func TestWriteBeforeInitialize(t *testing.T) {
	o := NewOutput()
	if err := o.Write([]int16{1, 2, 3, 4}); err == nil {
		t.Error("expected error writing to uninitialized output")
	}
}

func TestPCMQueueDrains(t *testing.T) {
	q := newPCMQueue()
	q.Push([]byte{1, 2, 3, 4})

	p := make([]byte, 4)
	n, err := q.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 bytes, got %d", n)
	}
	for i, b := range []byte{1, 2, 3, 4} {
		if p[i] != b {
			t.Errorf("byte %d: expected %d, got %d", i, b, p[i])
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue, got %d bytes", q.Len())
	}
}

func TestPCMQueuePadsSilence(t *testing.T) {
	q := newPCMQueue()
	q.Push([]byte{9, 9})

	// A short queue must still satisfy the full read with silence so the
	// device never starves.
	p := []byte{7, 7, 7, 7, 7, 7}
	n, err := q.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(p) {
		t.Fatalf("expected full read of %d bytes, got %d", len(p), n)
	}
	if p[0] != 9 || p[1] != 9 {
		t.Errorf("expected queued bytes first, got %v", p[:2])
	}
	for i := 2; i < len(p); i++ {
		if p[i] != 0 {
			t.Errorf("byte %d: expected silence, got %d", i, p[i])
		}
	}
}

func TestPCMQueueEmptyReadIsSilence(t *testing.T) {
	q := newPCMQueue()

	p := []byte{1, 2, 3, 4}
	n, err := q.Read(p)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if n != len(p) {
		t.Fatalf("expected %d bytes of silence, got %d", len(p), n)
	}
	for i := range p {
		if p[i] != 0 {
			t.Errorf("byte %d: expected 0, got %d", i, p[i])
		}
	}
}
