// ABOUTME: Sendspin protocol message type definitions
// ABOUTME: JSON control messages plus the binary audio chunk framing
package protocol

import (
	"encoding/binary"
	"fmt"
)

// Message is the top-level wrapper for all JSON protocol messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// ClientHello is sent by clients to initiate the handshake
type ClientHello struct {
	ClientID       string         `json:"client_id"`
	Name           string         `json:"name"`
	Version        int            `json:"version"`
	SupportedRoles []string       `json:"supported_roles"`
	DeviceInfo     *DeviceInfo    `json:"device_info,omitempty"`
	PlayerSupport  *PlayerSupport `json:"player_support,omitempty"`
}

// DeviceInfo contains device identification
type DeviceInfo struct {
	ProductName     string `json:"product_name"`
	Manufacturer    string `json:"manufacturer"`
	SoftwareVersion string `json:"software_version"`
}

// PlayerSupport describes player capabilities
type PlayerSupport struct {
	SupportFormats    []AudioFormat `json:"support_formats,omitempty"`
	BufferCapacity    int           `json:"buffer_capacity,omitempty"`
	SupportedCommands []string      `json:"supported_commands,omitempty"`
}

// AudioFormat describes a supported audio format
type AudioFormat struct {
	Codec      string `json:"codec"`
	Channels   int    `json:"channels"`
	SampleRate int    `json:"sample_rate"`
	BitDepth   int    `json:"bit_depth"`
}

// ServerHello is the server's response to client/hello
type ServerHello struct {
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ClientState reports the player's current state (sent as player/update)
type ClientState struct {
	State  string `json:"state"`  // "playing" or "idle"
	Volume int    `json:"volume"` // 0-100
	Muted  bool   `json:"muted"`
}

// ServerCommand is a control message from the server
type ServerCommand struct {
	Command string `json:"command"`
	Volume  int    `json:"volume,omitempty"`
	Mute    bool   `json:"mute,omitempty"`
}

// StreamStart notifies the client of stream format
type StreamStart struct {
	Codec       string `json:"codec"`
	SampleRate  int    `json:"sample_rate"`
	Channels    int    `json:"channels"`
	BitDepth    int    `json:"bit_depth"`
	CodecHeader string `json:"codec_header,omitempty"` // Base64-encoded
}

// StreamMetadata contains track information
type StreamMetadata struct {
	Title      string `json:"title,omitempty"`
	Artist     string `json:"artist,omitempty"`
	Album      string `json:"album,omitempty"`
	ArtworkURL string `json:"artwork_url,omitempty"`
}

// ClientTime is sent for clock synchronization
type ClientTime struct {
	ClientTransmitted int64 `json:"client_transmitted"` // Client timestamp in microseconds
}

// ServerTime is the response to client/time
type ServerTime struct {
	ClientTransmitted int64 `json:"client_transmitted"` // Echoed client timestamp
	ServerReceived    int64 `json:"server_received"`    // Server receive timestamp
	ServerTransmitted int64 `json:"server_transmitted"` // Server send timestamp
}

// Binary websocket frames carry audio: one type byte, a big-endian
// uint64 server timestamp in microseconds, then the encoded payload.
const (
	BinaryTypeAudioChunk byte = 0

	binaryHeaderSize = 9
)

// AudioChunk is a parsed binary audio frame
type AudioChunk struct {
	Timestamp int64 // Server timestamp (microseconds)
	Data      []byte
}

// ParseAudioChunk decodes a binary websocket frame into an AudioChunk.
// The returned Data aliases the input.
func ParseAudioChunk(data []byte) (AudioChunk, error) {
	if len(data) < binaryHeaderSize {
		return AudioChunk{}, fmt.Errorf("binary frame too short: %d bytes", len(data))
	}
	if data[0] != BinaryTypeAudioChunk {
		return AudioChunk{}, fmt.Errorf("unknown binary frame type: %d", data[0])
	}

	return AudioChunk{
		Timestamp: int64(binary.BigEndian.Uint64(data[1:9])),
		Data:      data[binaryHeaderSize:],
	}, nil
}

// EncodeAudioChunk builds the binary frame for an audio chunk.
func EncodeAudioChunk(timestamp int64, payload []byte) []byte {
	frame := make([]byte, binaryHeaderSize+len(payload))
	frame[0] = BinaryTypeAudioChunk
	binary.BigEndian.PutUint64(frame[1:9], uint64(timestamp))
	copy(frame[binaryHeaderSize:], payload)
	return frame
}
