package player

import (
	"errors"
	"io"

	"github.com/gopxl/beep/v2"
)

// decodeOgg decodes an Ogg stream (Opus or Vorbis) into a beep streamer.
func decodeOgg(rc io.ReadSeekCloser) (beep.StreamSeekCloser, beep.Format, string, error) {
	ogg := NewOggReader(rc)

	first, err := ogg.ReadPage()
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	codec, err := detectOggCodec(first.Packets[0])
	if err != nil {
		return nil, beep.Format{}, "", err
	}

	pending := first.Packets[1:]
	for complete := false; !complete; {
		for len(pending) == 0 {
			page, err := ogg.ReadPage()
			if err != nil {
				return nil, beep.Format{}, "", err
			}
			pending = page.Packets
		}
		complete, err = codec.AddHeaderPacket(pending[0])
		if err != nil {
			return nil, beep.Format{}, "", err
		}
		pending = pending[1:]
	}

	dataStart, err := ogg.Offset()
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	ogg.SetDataStart(dataStart)
	ogg.SetPreSkip(codec.PreSkip())
	if err := ogg.ScanLastGranule(); err != nil {
		return nil, beep.Format{}, "", err
	}

	channels := codec.Channels()
	if channels < 1 {
		return nil, beep.Format{}, "", errors.New("ogg: stream has no channels")
	}

	format := beep.Format{
		SampleRate:  beep.SampleRate(codec.SampleRate()),
		NumChannels: 2,
		Precision:   2,
	}

	d := &oggDecoder{
		ogg:       ogg,
		codec:     codec,
		closer:    rc,
		channels:  channels,
		pcmBuffer: make([]float32, 0, 8192*channels),
		totalLen:  ogg.Duration(),
		discard:   int64(codec.PreSkip()),
	}
	return d, format, codec.Name(), nil
}

// oggDecoder implements beep.StreamSeekCloser for Ogg streams.
type oggDecoder struct {
	ogg      *OggReader
	codec    OggCodec
	closer   io.Closer
	channels int

	page      *OggPage
	packetIdx int
	pcmBuffer []float32
	pcmPos    int
	discard   int64 // samples to drop before output resumes
	position  int64
	totalLen  int64
	err       error
}

// Stream reads audio samples into the provided buffer.
func (d *oggDecoder) Stream(samples [][2]float64) (n int, ok bool) {
	if d.err != nil {
		return 0, false
	}

	for n < len(samples) {
		if d.pcmPos < len(d.pcmBuffer) {
			frame := d.pcmBuffer[d.pcmPos : d.pcmPos+d.channels]
			d.pcmPos += d.channels
			if d.discard > 0 {
				d.discard--
				continue
			}
			samples[n][0] = float64(frame[0])
			samples[n][1] = float64(frame[min(1, d.channels-1)])
			n++
			d.position++
			continue
		}

		if d.page == nil || d.packetIdx >= len(d.page.Packets) {
			page, err := d.ogg.ReadPage()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					d.err = err
				}
				return n, n > 0
			}
			d.page = page
			d.packetIdx = 0
		}

		packet := d.page.Packets[d.packetIdx]
		d.packetIdx++
		perChannel, err := d.codec.Decode(packet, d.pcmBuffer[:cap(d.pcmBuffer)])
		if err != nil {
			continue // corrupt packet, keep going
		}
		d.pcmBuffer = d.pcmBuffer[:perChannel*d.channels]
		d.pcmPos = 0
	}

	return n, true
}

// Err returns any error that occurred during streaming.
func (d *oggDecoder) Err() error { return d.err }

// Len returns the total number of samples.
func (d *oggDecoder) Len() int { return int(d.totalLen) }

// Position returns the current sample position.
func (d *oggDecoder) Position() int { return int(d.position) }

// Seek moves to sample p. The page holding p is located by granule, then
// the samples before p on that page are decoded and dropped.
func (d *oggDecoder) Seek(p int) error {
	p = max(0, min(p, d.Len()))

	target := int64(p) + int64(d.ogg.PreSkip())
	resume, err := d.ogg.SeekToGranule(target)
	if err != nil {
		return err
	}

	d.page = nil
	d.packetIdx = 0
	d.pcmBuffer = d.pcmBuffer[:0]
	d.pcmPos = 0
	d.discard = max(target-resume, 0)
	d.position = int64(p)
	d.err = nil

	return d.codec.Reset()
}

// Close closes the underlying file.
func (d *oggDecoder) Close() error {
	return d.closer.Close()
}
