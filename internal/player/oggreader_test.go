package player

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"testing"
)

// writeOggPage appends one page to w. Packets that are a multiple of 255
// bytes get a terminating zero segment unless open is set, in which case the
// last packet continues on the next page.
func writeOggPage(w *bytes.Buffer, granule int64, flags byte, sequence uint32, packets [][]byte, open bool) {
	var segments []byte
	var body []byte
	for i, pkt := range packets {
		remaining := len(pkt)
		for remaining >= 255 {
			segments = append(segments, 255)
			remaining -= 255
		}
		if !(open && i == len(packets)-1 && remaining == 0) {
			segments = append(segments, byte(remaining))
		}
		body = append(body, pkt...)
	}

	w.WriteString("OggS")
	w.WriteByte(0)
	w.WriteByte(flags)
	_ = binary.Write(w, binary.LittleEndian, granule)
	_ = binary.Write(w, binary.LittleEndian, uint32(1))
	_ = binary.Write(w, binary.LittleEndian, sequence)
	_ = binary.Write(w, binary.LittleEndian, uint32(0))
	w.WriteByte(byte(len(segments)))
	w.Write(segments)
	w.Write(body)
}

func opusHead(preSkip uint16) []byte {
	head := []byte{'O', 'p', 'u', 's', 'H', 'e', 'a', 'd', 1, 2, 0, 0, 0x80, 0xBB, 0, 0, 0, 0, 0}
	binary.LittleEndian.PutUint16(head[10:12], preSkip)
	return head
}

var opusTags = []byte{'O', 'p', 'u', 's', 'T', 'a', 'g', 's', 0, 0, 0, 0, 0, 0, 0, 0}

// buildOpusStream writes two header pages and one audio page per second.
func buildOpusStream(seconds int, preSkip uint16) (data []byte, dataStart int64) {
	var buf bytes.Buffer
	writeOggPage(&buf, 0, 0x02, 0, [][]byte{opusHead(preSkip)}, false)
	writeOggPage(&buf, 0, 0, 1, [][]byte{opusTags}, false)
	dataStart = int64(buf.Len())
	for i := 1; i <= seconds; i++ {
		flags := byte(0)
		if i == seconds {
			flags = 0x04
		}
		writeOggPage(&buf, int64(i*48000)+int64(preSkip), flags, uint32(i+1), [][]byte{make([]byte, 300)}, false) //nolint:gosec // small test values
	}
	return buf.Bytes(), dataStart
}

func newTestOggReader(t *testing.T, data []byte, dataStart int64, preSkip int) *OggReader {
	t.Helper()
	ogr := NewOggReader(bytes.NewReader(data))
	ogr.SetDataStart(dataStart)
	ogr.SetPreSkip(preSkip)
	if err := ogr.ScanLastGranule(); err != nil {
		t.Fatalf("ScanLastGranule failed: %v", err)
	}
	return ogr
}

func TestParseOggPageHeader(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 48000, 0x01, 7, [][]byte{make([]byte, 10)}, false)

	hdr, err := parseOggPageHeader(&buf)
	if err != nil {
		t.Fatalf("parseOggPageHeader failed: %v", err)
	}
	if hdr.GranulePos != 48000 {
		t.Errorf("GranulePos = %d, want 48000", hdr.GranulePos)
	}
	if hdr.HeaderType != 0x01 {
		t.Errorf("HeaderType = %#x, want 0x01", hdr.HeaderType)
	}
	if hdr.SequenceNum != 7 {
		t.Errorf("SequenceNum = %d, want 7", hdr.SequenceNum)
	}
	if hdr.bodySize() != 10 {
		t.Errorf("bodySize = %d, want 10", hdr.bodySize())
	}
}

func TestParseOggPageHeader_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"bad magic", append([]byte("BadS"), make([]byte, 23)...), errInvalidOggMagic},
		{"bad version", append([]byte("OggS\x01"), make([]byte, 22)...), errInvalidOggVersion},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseOggPageHeader(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestReadOggPageBody(t *testing.T) {
	tests := []struct {
		name        string
		segments    []uint8
		wantPackets []int
		wantPartial int
	}{
		{"two packets", []uint8{100, 50}, []int{100, 50}, 0},
		{"spanning segments", []uint8{255, 255, 100}, []int{610}, 0},
		{"continues on next page", []uint8{255, 255}, nil, 510},
		{"complete then partial", []uint8{100, 255, 255}, []int{100}, 510},
		{"255 terminated by zero", []uint8{255, 0}, []int{255}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hdr := &oggPageHeader{NumSegments: uint8(len(tt.segments)), SegmentTable: tt.segments} //nolint:gosec // test data
			body := make([]byte, hdr.bodySize())
			packets, partial, err := readOggPageBody(bytes.NewReader(body), hdr)
			if err != nil {
				t.Fatalf("readOggPageBody failed: %v", err)
			}
			if len(packets) != len(tt.wantPackets) {
				t.Fatalf("got %d packets, want %d", len(packets), len(tt.wantPackets))
			}
			for i, n := range tt.wantPackets {
				if len(packets[i]) != n {
					t.Errorf("packet[%d] len = %d, want %d", i, len(packets[i]), n)
				}
			}
			if len(partial) != tt.wantPartial {
				t.Errorf("partial len = %d, want %d", len(partial), tt.wantPartial)
			}
		})
	}
}

func TestOggReader_JoinsPacketAcrossPages(t *testing.T) {
	big := bytes.Repeat([]byte{0xAB}, 1120)
	var buf bytes.Buffer
	writeOggPage(&buf, -1, 0, 0, [][]byte{big[:510]}, true)
	writeOggPage(&buf, -1, 0x01, 1, [][]byte{big[510:1020]}, true)
	writeOggPage(&buf, 960, 0x01, 2, [][]byte{big[1020:], {1, 2, 3}}, false)

	ogr := NewOggReader(bytes.NewReader(buf.Bytes()))
	page, err := ogr.ReadPage()
	if err != nil {
		t.Fatalf("ReadPage failed: %v", err)
	}
	if len(page.Packets) != 2 {
		t.Fatalf("got %d packets, want 2", len(page.Packets))
	}
	if !bytes.Equal(page.Packets[0], big) {
		t.Errorf("joined packet len = %d, want %d", len(page.Packets[0]), len(big))
	}
	if page.GranulePos != 960 {
		t.Errorf("GranulePos = %d, want 960", page.GranulePos)
	}

	if _, err := ogr.ReadPage(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestOggReader_DropsOrphanContinuation(t *testing.T) {
	var buf bytes.Buffer
	writeOggPage(&buf, 960, 0x01, 5, [][]byte{make([]byte, 40), {9, 9}}, false)

	ogr := NewOggReader(bytes.NewReader(buf.Bytes()))
	page, err := ogr.ReadPage()
	if err != nil {
		t.Fatalf("ReadPage failed: %v", err)
	}
	if len(page.Packets) != 1 || !bytes.Equal(page.Packets[0], []byte{9, 9}) {
		t.Errorf("packets = %v, want only the complete packet", page.Packets)
	}
}

func TestOggReader_Duration(t *testing.T) {
	data, start := buildOpusStream(5, 312)
	ogr := newTestOggReader(t, data, start, 312)

	if got := ogr.Duration(); got != 5*48000 {
		t.Errorf("Duration = %d, want %d", got, 5*48000)
	}
}

func TestOggReader_ReadPageAfterScan(t *testing.T) {
	data, start := buildOpusStream(2, 0)
	ogr := newTestOggReader(t, data, start, 0)

	page, err := ogr.ReadPage()
	if err != nil {
		t.Fatalf("ReadPage failed: %v", err)
	}
	if page.GranulePos != 48000 {
		t.Errorf("first audio page granule = %d, want 48000", page.GranulePos)
	}
}

func TestOggReader_SeekToGranule(t *testing.T) {
	data, start := buildOpusStream(5, 0)
	ogr := newTestOggReader(t, data, start, 0)

	tests := []struct {
		name        string
		target      int64
		wantResume  int64
		wantGranule int64 // end granule of the page read next
	}{
		{"start", 0, 0, 48000},
		{"inside first page", 1000, 0, 48000},
		{"page boundary", 96000, 96000, 144000},
		{"between pages", 120000, 96000, 144000},
		{"last page", 239999, 192000, 240000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume, err := ogr.SeekToGranule(tt.target)
			if err != nil {
				t.Fatalf("SeekToGranule(%d) failed: %v", tt.target, err)
			}
			if resume != tt.wantResume {
				t.Errorf("resume = %d, want %d", resume, tt.wantResume)
			}
			page, err := ogr.ReadPage()
			if err != nil {
				t.Fatalf("ReadPage after seek failed: %v", err)
			}
			if page.GranulePos != tt.wantGranule {
				t.Errorf("granule = %d, want %d", page.GranulePos, tt.wantGranule)
			}
		})
	}
}

func TestOggReader_SeekPastEnd(t *testing.T) {
	data, start := buildOpusStream(2, 0)
	ogr := newTestOggReader(t, data, start, 0)

	resume, err := ogr.SeekToGranule(1 << 40)
	if err != nil {
		t.Fatalf("SeekToGranule failed: %v", err)
	}
	if resume != 96000 {
		t.Errorf("resume = %d, want 96000", resume)
	}
	if _, err := ogr.ReadPage(); !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}
