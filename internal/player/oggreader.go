package player

import (
	"encoding/binary"
	"errors"
	"io"
)

var (
	errInvalidOggMagic   = errors.New("ogg: invalid capture pattern")
	errInvalidOggVersion = errors.New("ogg: unsupported version")
)

// oggFlagContinued marks a page whose first packet started on the previous page.
const oggFlagContinued = 0x01

// oggPageHeader represents the header of an Ogg page.
type oggPageHeader struct {
	HeaderType   uint8
	GranulePos   int64
	SerialNumber uint32
	SequenceNum  uint32
	NumSegments  uint8
	SegmentTable []uint8
}

func (h *oggPageHeader) bodySize() int64 {
	var n int64
	for _, s := range h.SegmentTable {
		n += int64(s)
	}
	return n
}

// parseOggPageHeader reads and parses an Ogg page header from the reader.
func parseOggPageHeader(r io.Reader) (*oggPageHeader, error) {
	var buf [27]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	if string(buf[0:4]) != "OggS" {
		return nil, errInvalidOggMagic
	}
	if buf[4] != 0 {
		return nil, errInvalidOggVersion
	}

	hdr := &oggPageHeader{
		HeaderType:   buf[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(buf[6:14])), //nolint:gosec // granule is a signed field on the wire
		SerialNumber: binary.LittleEndian.Uint32(buf[14:18]),
		SequenceNum:  binary.LittleEndian.Uint32(buf[18:22]),
		// checksum at buf[22:26] is not verified
		NumSegments: buf[26],
	}

	if hdr.NumSegments > 0 {
		hdr.SegmentTable = make([]uint8, hdr.NumSegments)
		if _, err := io.ReadFull(r, hdr.SegmentTable); err != nil {
			return nil, err
		}
	}

	return hdr, nil
}

// readOggPageBody reads the page body and splits it into packets.
// A trailing run of 255-byte segments is a packet continuing on the next
// page and is returned as partial.
func readOggPageBody(r io.Reader, hdr *oggPageHeader) (packets [][]byte, partial []byte, err error) {
	body := make([]byte, hdr.bodySize())
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, nil, err
	}

	var start, pos int
	for _, seg := range hdr.SegmentTable {
		pos += int(seg)
		if seg < 255 {
			packets = append(packets, body[start:pos])
			start = pos
		}
	}
	if start < pos {
		partial = body[start:pos]
	}
	return packets, partial, nil
}

// OggPage is a decoded Ogg page with its complete packets.
type OggPage struct {
	GranulePos int64
	Packets    [][]byte
}

// OggReader walks the pages of a single logical Ogg stream, joining packets
// that span page boundaries.
type OggReader struct {
	r           io.ReadSeeker
	preSkip     int64
	dataStart   int64
	lastGranule int64
	partial     []byte
}

// NewOggReader creates a reader positioned at the current offset of r.
func NewOggReader(r io.ReadSeeker) *OggReader {
	return &OggReader{r: r}
}

// SetDataStart records the offset of the first audio page.
func (o *OggReader) SetDataStart(offset int64) { o.dataStart = offset }

// SetPreSkip sets the number of leading samples the codec discards.
func (o *OggReader) SetPreSkip(n int) { o.preSkip = int64(n) }

// PreSkip returns the codec pre-skip in samples.
func (o *OggReader) PreSkip() int { return int(o.preSkip) }

// Offset returns the current read offset.
func (o *OggReader) Offset() (int64, error) {
	return o.r.Seek(0, io.SeekCurrent)
}

// Reset rewinds to the first audio page.
func (o *OggReader) Reset() error {
	o.partial = nil
	_, err := o.r.Seek(o.dataStart, io.SeekStart)
	return err
}

// ScanLastGranule walks every page header from the data start and records
// the final granule position. The read offset is left at the data start.
func (o *OggReader) ScanLastGranule() error {
	if err := o.Reset(); err != nil {
		return err
	}
	for {
		hdr, err := parseOggPageHeader(o.r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return err
		}
		if hdr.GranulePos >= 0 {
			o.lastGranule = hdr.GranulePos
		}
		if _, err := o.r.Seek(hdr.bodySize(), io.SeekCurrent); err != nil {
			return err
		}
	}
	return o.Reset()
}

// Duration returns the stream length in samples, pre-skip excluded.
func (o *OggReader) Duration() int64 {
	return max(o.lastGranule-o.preSkip, 0)
}

// ReadPage returns the next page carrying at least one complete packet.
// Returns io.EOF after the last page.
func (o *OggReader) ReadPage() (*OggPage, error) {
	for {
		hdr, err := parseOggPageHeader(o.r)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}
		packets, partial, err := readOggPageBody(o.r, hdr)
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, io.EOF
			}
			return nil, err
		}

		if hdr.HeaderType&oggFlagContinued != 0 {
			switch {
			case o.partial != nil && len(packets) > 0:
				packets[0] = append(o.partial, packets[0]...)
			case o.partial != nil && partial != nil:
				partial = append(o.partial, partial...)
			case len(packets) > 0:
				// landed mid-packet after a seek; the head is gone
				packets = packets[1:]
			default:
				partial = nil
			}
		}
		o.partial = partial

		if len(packets) == 0 {
			continue
		}
		return &OggPage{GranulePos: hdr.GranulePos, Packets: packets}, nil
	}
}

// SeekToGranule positions the reader on the page containing target and
// returns the granule at which decoding will resume.
func (o *OggReader) SeekToGranule(target int64) (int64, error) {
	if err := o.Reset(); err != nil {
		return 0, err
	}

	var prev int64
	for {
		pageStart, err := o.Offset()
		if err != nil {
			return 0, err
		}
		hdr, err := parseOggPageHeader(o.r)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return prev, nil
			}
			return 0, err
		}
		if hdr.GranulePos >= 0 && hdr.GranulePos > target {
			_, err := o.r.Seek(pageStart, io.SeekStart)
			return prev, err
		}
		if hdr.GranulePos >= 0 {
			prev = hdr.GranulePos
		}
		if _, err := o.r.Seek(hdr.bodySize(), io.SeekCurrent); err != nil {
			return 0, err
		}
	}
}
