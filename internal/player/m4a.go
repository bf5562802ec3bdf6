package player

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/alac"
	"github.com/llehouerou/go-faad2"
	"github.com/llehouerou/go-m4a"
)

// ALAC frames are 4096 samples unless the encoder says otherwise.
const alacFrameSize = 4096

// sampleDecoder turns one container sample into stereo frames.
type sampleDecoder interface {
	decode(data []byte) ([][2]float64, error)
	close()
}

type aacSampleDecoder struct {
	dec      *faad2.Decoder
	channels int
}

func (d *aacSampleDecoder) decode(data []byte) ([][2]float64, error) {
	pcm, err := d.dec.Decode(context.Background(), data)
	if err != nil {
		return nil, err
	}
	frames := make([][2]float64, len(pcm)/d.channels)
	for i := range frames {
		l := pcm[i*d.channels]
		r := l
		if d.channels > 1 {
			r = pcm[i*d.channels+1]
		}
		frames[i] = [2]float64{float64(l) / 32768, float64(r) / 32768}
	}
	return frames, nil
}

func (d *aacSampleDecoder) close() { d.dec.Close(context.Background()) }

type alacSampleDecoder struct {
	dec        *alac.Alac
	channels   int
	sampleSize int // bits
}

func (d *alacSampleDecoder) decode(data []byte) ([][2]float64, error) {
	raw := d.dec.Decode(data)
	bytesPerSample := d.sampleSize / 8
	stride := bytesPerSample * d.channels
	if stride == 0 {
		return nil, errors.New("alac: invalid frame layout")
	}

	frames := make([][2]float64, len(raw)/stride)
	for i := range frames {
		off := i * stride
		l := readPCM(raw[off:], bytesPerSample)
		r := l
		if d.channels > 1 {
			r = readPCM(raw[off+bytesPerSample:], bytesPerSample)
		}
		frames[i] = [2]float64{l, r}
	}
	return frames, nil
}

func (d *alacSampleDecoder) close() {}

// readPCM reads one signed little-endian sample of 2 or 3 bytes as [-1, 1).
func readPCM(b []byte, size int) float64 {
	if size == 3 {
		v := int32(b[0]) | int32(b[1])<<8 | int32(b[2])<<16
		if v&0x800000 != 0 {
			v |= ^0xFFFFFF
		}
		return float64(v) / (1 << 23)
	}
	return float64(int16(uint16(b[0])|uint16(b[1])<<8)) / (1 << 15) //nolint:gosec // PCM sample
}

// m4aStreamer reads samples from an MP4 container and decodes them with
// faad2 (AAC) or alac (ALAC).
type m4aStreamer struct {
	container *m4a.Reader
	decoder   sampleDecoder
	closer    io.Closer
	rate      int
	totalLen  int

	sampleIdx int
	pending   [][2]float64
	err       error
}

func decodeM4A(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, string, error) {
	container, err := m4a.Open(rc)
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	rate := int(container.SampleRate())
	channels := int(container.Channels())
	if channels < 1 {
		return nil, beep.Format{}, "", errors.New("m4a: no audio channels")
	}

	precision := 2
	var dec sampleDecoder
	switch container.Codec() {
	case m4a.CodecAAC:
		ctx := context.Background()
		aac, err := faad2.NewDecoder(ctx)
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		if err := aac.Init(ctx, container.CodecConfig()); err != nil {
			aac.Close(ctx)
			return nil, beep.Format{}, "", err
		}
		dec = &aacSampleDecoder{dec: aac, channels: channels}
	case m4a.CodecALAC:
		size := int(container.SampleSize())
		a, err := alac.NewWithConfig(alac.Config{
			SampleRate:  rate,
			SampleSize:  size,
			NumChannels: channels,
			FrameSize:   alacFrameSize,
		})
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		if size == 24 {
			precision = 3
		}
		dec = &alacSampleDecoder{dec: a, channels: channels, sampleSize: size}
	default:
		return nil, beep.Format{}, "", fmt.Errorf("m4a: codec %s", container.Codec())
	}

	s := &m4aStreamer{
		container: container,
		decoder:   dec,
		closer:    rc,
		rate:      rate,
		totalLen:  int(container.Duration().Seconds() * float64(rate)),
	}
	format := beep.Format{
		SampleRate:  beep.SampleRate(rate),
		NumChannels: 2,
		Precision:   precision,
	}
	return s, format, container.Codec().String(), nil
}

func (s *m4aStreamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if len(s.pending) > 0 {
			c := copy(samples[n:], s.pending)
			s.pending = s.pending[c:]
			n += c
			continue
		}
		if s.sampleIdx >= s.container.SampleCount() {
			break
		}

		data, err := s.container.ReadSample(s.sampleIdx)
		if err != nil {
			s.err = err
			break
		}
		s.sampleIdx++

		frames, err := s.decoder.decode(data)
		if err != nil {
			s.err = err
			break
		}
		s.pending = frames
	}
	return n, n > 0
}

func (s *m4aStreamer) Err() error { return s.err }

func (s *m4aStreamer) Len() int { return s.totalLen }

func (s *m4aStreamer) Position() int {
	pos := s.container.SampleTime(s.sampleIdx).Seconds()*float64(s.rate) - float64(len(s.pending))
	return max(int(pos), 0)
}

func (s *m4aStreamer) Seek(p int) error {
	p = max(0, min(p, s.totalLen))
	at := time.Duration(float64(p) / float64(s.rate) * float64(time.Second))
	s.sampleIdx = s.container.SeekToTime(at)
	s.pending = nil
	s.err = nil
	return nil
}

func (s *m4aStreamer) Close() error {
	s.decoder.close()
	return s.closer.Close()
}
