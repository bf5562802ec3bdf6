package player

import (
	"encoding/binary"
	"errors"

	"github.com/jfreymuth/vorbis"
	"github.com/jj11hh/opus"
)

// Opus always decodes at 48kHz regardless of the input rate in OpusHead.
const opusSampleRate = 48000

var (
	errUnknownOggCodec     = errors.New("ogg: unknown codec (not Opus or Vorbis)")
	errInvalidOpusHead     = errors.New("opus: invalid OpusHead packet")
	errUnsupportedOpus     = errors.New("opus: unsupported version")
	errInvalidVorbisHeader = errors.New("vorbis: invalid identification header")
	errVorbisNotReady      = errors.New("vorbis: decoder not initialized (headers incomplete)")
	errPCMBufferTooSmall   = errors.New("ogg: output buffer too small")
)

// OggCodec decodes the packets of one logical Ogg stream.
type OggCodec interface {
	Name() string
	SampleRate() int
	Channels() int
	// PreSkip returns samples to drop at stream start (0 for Vorbis).
	PreSkip() int
	// AddHeaderPacket feeds the header packets that follow the
	// identification packet. Returns true once decoding can start.
	AddHeaderPacket(packet []byte) (complete bool, err error)
	// Decode writes interleaved samples into pcm and returns the count
	// per channel.
	Decode(packet []byte, pcm []float32) (samplesPerChannel int, err error)
	// Reset clears inter-packet state after a seek.
	Reset() error
}

// detectOggCodec picks a codec from the identification packet.
func detectOggCodec(firstPacket []byte) (OggCodec, error) {
	if len(firstPacket) >= 8 && string(firstPacket[:8]) == "OpusHead" {
		return newOpusCodec(firstPacket)
	}
	if len(firstPacket) >= 7 && firstPacket[0] == 0x01 && string(firstPacket[1:7]) == "vorbis" {
		return newVorbisCodec(firstPacket)
	}
	return nil, errUnknownOggCodec
}

type opusCodec struct {
	decoder  *opus.Decoder
	channels int
	preSkip  int
}

// newOpusCodec parses an OpusHead packet:
// magic[0:8] version[8] channels[9] pre-skip[10:12] input rate[12:16].
func newOpusCodec(packet []byte) (*opusCodec, error) {
	if len(packet) < 19 {
		return nil, errInvalidOpusHead
	}
	if packet[8] != 1 {
		return nil, errUnsupportedOpus
	}
	channels := int(packet[9])
	decoder, err := opus.NewDecoder(opusSampleRate, channels)
	if err != nil {
		return nil, err
	}
	return &opusCodec{
		decoder:  decoder,
		channels: channels,
		preSkip:  int(binary.LittleEndian.Uint16(packet[10:12])),
	}, nil
}

func (c *opusCodec) Name() string    { return "OPUS" }
func (c *opusCodec) SampleRate() int { return opusSampleRate }
func (c *opusCodec) Channels() int   { return c.channels }
func (c *opusCodec) PreSkip() int    { return c.preSkip }

// AddHeaderPacket consumes the OpusTags packet.
func (c *opusCodec) AddHeaderPacket(_ []byte) (bool, error) {
	return true, nil
}

func (c *opusCodec) Decode(packet []byte, pcm []float32) (int, error) {
	return c.decoder.DecodeFloat32(packet, pcm)
}

// Reset is a no-op; the Opus decoder converges within a few packets.
func (c *opusCodec) Reset() error { return nil }

type vorbisCodec struct {
	decoder    *vorbis.Decoder
	channels   int
	sampleRate int
	headers    [][]byte
}

// newVorbisCodec parses a Vorbis identification header:
// type[0] "vorbis"[1:7] version[7:11] channels[11] rate[12:16].
func newVorbisCodec(packet []byte) (*vorbisCodec, error) {
	if len(packet) < 16 {
		return nil, errInvalidVorbisHeader
	}
	if binary.LittleEndian.Uint32(packet[7:11]) != 0 {
		return nil, errInvalidVorbisHeader
	}
	return &vorbisCodec{
		channels:   int(packet[11]),
		sampleRate: int(binary.LittleEndian.Uint32(packet[12:16])),
		headers:    [][]byte{append([]byte(nil), packet...)},
	}, nil
}

func (c *vorbisCodec) Name() string    { return "VORBIS" }
func (c *vorbisCodec) SampleRate() int { return c.sampleRate }
func (c *vorbisCodec) Channels() int   { return c.channels }
func (c *vorbisCodec) PreSkip() int    { return 0 }

// AddHeaderPacket collects the comment and setup headers, then builds the
// decoder from all three.
func (c *vorbisCodec) AddHeaderPacket(packet []byte) (bool, error) {
	if c.decoder != nil {
		return true, nil
	}
	c.headers = append(c.headers, append([]byte(nil), packet...))
	if len(c.headers) < 3 {
		return false, nil
	}

	decoder := &vorbis.Decoder{}
	for _, hdr := range c.headers {
		if err := decoder.ReadHeader(hdr); err != nil {
			return false, err
		}
	}
	c.decoder = decoder
	c.headers = nil
	return true, nil
}

func (c *vorbisCodec) Decode(packet []byte, pcm []float32) (int, error) {
	if c.decoder == nil {
		return 0, errVorbisNotReady
	}
	samples, err := c.decoder.Decode(packet)
	if err != nil {
		return 0, err
	}
	if len(pcm) < len(samples) {
		return 0, errPCMBufferTooSmall
	}
	n := copy(pcm, samples)
	return n / c.channels, nil
}

func (c *vorbisCodec) Reset() error {
	if c.decoder != nil {
		c.decoder.Clear()
	}
	return nil
}
