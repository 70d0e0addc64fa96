// ABOUTME: Main player application orchestration
// ABOUTME: Coordinates connection, clock sync, decoding, and playback
package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/chrisuthe/sendspin-player/internal/client"
	"github.com/chrisuthe/sendspin-player/internal/player"
	"github.com/chrisuthe/sendspin-player/internal/protocol"
	"github.com/chrisuthe/sendspin-player/internal/sync"
	"github.com/chrisuthe/sendspin-player/internal/version"
	"github.com/chrisuthe/sendspin-player/pkg/audio"
	"github.com/chrisuthe/sendspin-player/pkg/audio/decode"
	"github.com/chrisuthe/sendspin-player/pkg/audio/resample"
	"github.com/google/uuid"
)

// Config holds player configuration
type Config struct {
	ServerAddr string
	Name       string
	BufferMs   int // Extra client-side buffering on top of server lead time
	Quality    int // Resampler quality, 0-10
}

// stream bundles the per-stream components so they are swapped as a
// unit when a new stream starts.
type stream struct {
	decoder   decode.Decoder
	scheduler *player.Scheduler
	pipeline  *player.Pipeline
	format    audio.Format
}

func (s *stream) close() {
	s.scheduler.Stop()
	s.pipeline.Close()
	s.decoder.Close()
}

// Player is the main player application
type Player struct {
	config    Config
	client    *client.Client
	clockSync *sync.ClockSync
	rate      *sync.RateController
	output    *player.Output
	current   atomic.Pointer[stream]
	ctx       context.Context
	cancel    context.CancelFunc
}

// New creates a new player
func New(config Config) *Player {
	ctx, cancel := context.WithCancel(context.Background())

	return &Player{
		config:    config,
		clockSync: sync.NewClockSync(),
		rate:      sync.NewRateController(),
		output:    player.NewOutput(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start connects to the server and runs until Stop is called
func (p *Player) Start() error {
	if p.config.ServerAddr == "" {
		return fmt.Errorf("server address is required")
	}

	if err := p.connect(p.config.ServerAddr); err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}

	<-p.ctx.Done()

	return nil
}

// connect establishes the server connection and starts the worker goroutines
func (p *Player) connect(serverAddr string) error {
	clientID := uuid.New().String()

	clientConfig := client.Config{
		ServerAddr: serverAddr,
		ClientID:   clientID,
		Name:       p.config.Name,
		Version:    1,
		DeviceInfo: protocol.DeviceInfo{
			ProductName:     version.Product,
			Manufacturer:    version.Manufacturer,
			SoftwareVersion: version.Version,
		},
		PlayerSupport: protocol.PlayerSupport{
			SupportFormats: []protocol.AudioFormat{
				{Codec: "opus", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "flac", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "mp3", Channels: 2, SampleRate: 48000, BitDepth: 16},
				{Codec: "pcm", Channels: 2, SampleRate: 48000, BitDepth: 16},
			},
			BufferCapacity:    1048576,
			SupportedCommands: []string{"volume", "mute"},
		},
	}

	p.client = client.NewClient(clientConfig)

	if err := p.client.Connect(); err != nil {
		return err
	}

	log.Printf("Connected to server: %s", serverAddr)

	go p.handleAudioChunks()
	go p.handleControls()
	go p.handleStreamStart()
	go p.handleMetadata()
	go p.clockSyncLoop()

	return nil
}

// clockSyncLoop continuously exchanges timestamps with the server
func (p *Player) clockSyncLoop() {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			t1 := sync.ClientMicros()
			if err := p.client.SendTimeSync(t1); err != nil {
				log.Printf("Time sync send failed: %v", err)
				continue
			}

			select {
			case resp := <-p.client.TimeSyncResp:
				t4 := sync.ClientMicros()
				p.clockSync.ProcessSyncResponse(
					resp.ClientTransmitted, resp.ServerReceived, resp.ServerTransmitted, t4)

			case <-time.After(2 * time.Second):
				log.Printf("Time sync timeout")
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// handleStreamStart sets up the decoder, output, and playback pipeline
func (p *Player) handleStreamStart() {
	for {
		select {
		case start := <-p.client.StreamStart:
			log.Printf("Stream starting: %s %dHz %dch %dbit",
				start.Codec, start.SampleRate, start.Channels, start.BitDepth)

			var header []byte
			if start.CodecHeader != "" {
				decoded, err := base64.StdEncoding.DecodeString(start.CodecHeader)
				if err != nil {
					log.Printf("Failed to decode codec header: %v", err)
					continue
				}
				header = decoded
			}

			format := audio.Format{
				Codec:       start.Codec,
				SampleRate:  start.SampleRate,
				Channels:    start.Channels,
				BitDepth:    start.BitDepth,
				CodecHeader: header,
			}

			decoder, err := decode.New(format)
			if err != nil {
				log.Printf("Failed to create decoder: %v", err)
				continue
			}

			if err := p.output.Initialize(format); err != nil {
				log.Printf("Failed to initialize output: %v", err)
				continue
			}

			pipeline, err := player.NewPipeline(format, p.output, p.rate, resample.Quality(p.config.Quality))
			if err != nil {
				log.Printf("Failed to create pipeline: %v", err)
				continue
			}

			next := &stream{
				decoder:   decoder,
				scheduler: player.NewScheduler(p.clockSync),
				pipeline:  pipeline,
				format:    format,
			}

			p.rate.Reset()
			if old := p.current.Swap(next); old != nil {
				old.close()
			}

			go next.scheduler.Run()
			go p.handleScheduledAudio(next.scheduler, pipeline)

			p.client.SendState(protocol.ClientState{
				State:  "playing",
				Volume: p.output.GetVolume(),
				Muted:  p.output.IsMuted(),
			})

		case <-p.ctx.Done():
			return
		}
	}
}

// handleAudioChunks decodes incoming chunks and hands them to the scheduler
func (p *Player) handleAudioChunks() {
	for {
		select {
		case chunk := <-p.client.AudioChunks:
			st := p.current.Load()
			if st == nil {
				continue
			}

			pcm, err := st.decoder.Decode(chunk.Data)
			if err != nil {
				log.Printf("Decode error: %v", err)
				continue
			}

			// Extra buffering is applied on the server timeline so the
			// clock transform carries it into local play time.
			buf := audio.Buffer{
				Timestamp: chunk.Timestamp + int64(p.config.BufferMs)*1000,
				Samples:   pcm,
				Format:    st.format,
			}
			st.scheduler.Schedule(buf)

		case <-p.ctx.Done():
			return
		}
	}
}

// handleScheduledAudio plays due buffers and feeds the timing error
// back into the rate controller.
func (p *Player) handleScheduledAudio(s *player.Scheduler, pipe *player.Pipeline) {
	for {
		select {
		case buf := <-s.Output():
			p.rate.ReportError(time.Since(buf.PlayAt).Microseconds())
			if err := pipe.Play(buf); err != nil {
				log.Printf("Playback error: %v", err)
			}

		case <-p.ctx.Done():
			return
		}
	}
}

// handleControls processes server commands
func (p *Player) handleControls() {
	for {
		select {
		case cmd := <-p.client.ControlMsgs:
			switch cmd.Command {
			case "volume":
				p.output.SetVolume(cmd.Volume)
			case "mute":
				p.output.SetMuted(cmd.Mute)
			default:
				log.Printf("Unknown command: %s", cmd.Command)
				continue
			}

			p.client.SendState(protocol.ClientState{
				State:  "playing",
				Volume: p.output.GetVolume(),
				Muted:  p.output.IsMuted(),
			})

		case <-p.ctx.Done():
			return
		}
	}
}

// handleMetadata logs track info
func (p *Player) handleMetadata() {
	for {
		select {
		case meta := <-p.client.Metadata:
			log.Printf("Now playing: %s - %s (%s)", meta.Artist, meta.Title, meta.Album)

		case <-p.ctx.Done():
			return
		}
	}
}

// Stop stops the player
func (p *Player) Stop() {
	p.cancel()

	if p.client != nil {
		p.client.Close()
	}

	if st := p.current.Swap(nil); st != nil {
		st.close()
	}

	if p.output != nil {
		p.output.Close()
	}
}
