// ABOUTME: Package documentation for audio decoders
// ABOUTME: Explains the codec registry and sample conventions

// Package decode provides audio decoders for the codecs a stream can
// carry: raw PCM (16-bit and 24-bit), MP3, Opus, and FLAC.
//
// All decoders emit interleaved int32 samples aligned to the 24-bit
// range used throughout pkg/audio, regardless of the source bit depth.
// Use New to construct the decoder matching a stream's Format:
//
//	dec, err := decode.New(format)
//	if err != nil {
//		return err
//	}
//	defer dec.Close()
//
//	samples, err := dec.Decode(chunk)
package decode
