// ABOUTME: FLAC audio decoder
// ABOUTME: Decodes FLAC frames to int32 samples using the codec header for priming
package decode

import (
	"bytes"
	"fmt"
	"io"

	"github.com/chrisuthe/sendspin-player/pkg/audio"
	"github.com/mewkiz/flac"
)

// FLACDecoder decodes FLAC audio. The stream's codec header (fLaC marker
// plus STREAMINFO) arrives out of band; each Decode call carries whole
// FLAC frames which are parsed against that header.
type FLACDecoder struct {
	format audio.Format
	header []byte
}

// NewFLAC creates a new FLAC decoder
func NewFLAC(format audio.Format) (Decoder, error) {
	if format.Codec != "flac" {
		return nil, fmt.Errorf("invalid codec for FLAC decoder: %s", format.Codec)
	}
	if len(format.CodecHeader) == 0 {
		return nil, fmt.Errorf("flac decoder requires a codec header")
	}

	return &FLACDecoder{
		format: format,
		header: format.CodecHeader,
	}, nil
}

// Decode converts FLAC frame bytes to int32 samples
func (d *FLACDecoder) Decode(data []byte) ([]int32, error) {
	if len(data) == 0 {
		return nil, nil
	}

	primed := make([]byte, 0, len(d.header)+len(data))
	primed = append(primed, d.header...)
	primed = append(primed, data...)

	stream, err := flac.New(bytes.NewReader(primed))
	if err != nil {
		return nil, fmt.Errorf("failed to parse flac stream: %w", err)
	}
	defer stream.Close()

	var samples []int32
	for {
		fr, err := stream.ParseNext()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("flac frame decode failed: %w", err)
		}

		channels := len(fr.Subframes)
		if channels == 0 {
			continue
		}
		blockSize := len(fr.Subframes[0].Samples)

		// Left-justify in the 24-bit range regardless of source depth.
		shift := 24 - int(fr.BitsPerSample)
		if shift < 0 {
			shift = 0
		}

		out := make([]int32, blockSize*channels)
		for ch := 0; ch < channels; ch++ {
			sub := fr.Subframes[ch].Samples
			for i := 0; i < blockSize && i < len(sub); i++ {
				out[i*channels+ch] = sub[i] << shift
			}
		}
		samples = append(samples, out...)
	}

	return samples, nil
}

// Close releases decoder resources
func (d *FLACDecoder) Close() error {
	return nil
}
