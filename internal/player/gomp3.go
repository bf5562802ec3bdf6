package player

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
	"github.com/llehouerou/go-mp3"
)

// go-mp3 emits interleaved signed 16-bit little-endian stereo.
const mp3FrameBytes = 4

// mp3Streamer adapts llehouerou/go-mp3 to beep.StreamSeekCloser.
type mp3Streamer struct {
	decoder *mp3.Decoder
	closer  io.Closer
	buf     []byte
	err     error
}

func decodeGoMP3(rc io.ReadCloser) (beep.StreamSeekCloser, beep.Format, error) {
	decoder, err := mp3.NewDecoder(rc)
	if err != nil {
		return nil, beep.Format{}, err
	}
	if decoder.SampleRate() <= 0 {
		return nil, beep.Format{}, errors.New("mp3: invalid sample rate")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(decoder.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}
	return &mp3Streamer{decoder: decoder, closer: rc}, format, nil
}

func (s *mp3Streamer) Stream(samples [][2]float64) (n int, ok bool) {
	if s.err != nil {
		return 0, false
	}

	want := len(samples) * mp3FrameBytes
	if cap(s.buf) < want {
		s.buf = make([]byte, want)
	}
	buf := s.buf[:want]

	read, err := io.ReadFull(s.decoder, buf)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		s.err = err
	}

	n = read / mp3FrameBytes
	for i := range n {
		frame := buf[i*mp3FrameBytes:]
		samples[i][0] = float64(int16(binary.LittleEndian.Uint16(frame[0:]))) / 32768  //nolint:gosec // PCM sample
		samples[i][1] = float64(int16(binary.LittleEndian.Uint16(frame[2:]))) / 32768 //nolint:gosec // PCM sample
	}
	return n, n > 0
}

func (s *mp3Streamer) Err() error { return s.err }

func (s *mp3Streamer) Len() int {
	return int(max(s.decoder.SampleCount(), 0))
}

func (s *mp3Streamer) Position() int {
	return int(s.decoder.SamplePosition())
}

func (s *mp3Streamer) Seek(p int) error {
	p = max(0, min(p, s.Len()))
	if err := s.decoder.SeekToSample(int64(p)); err != nil {
		return err
	}
	s.err = nil
	return nil
}

func (s *mp3Streamer) Close() error {
	return s.closer.Close()
}
