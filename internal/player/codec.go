package player

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/flac"
	"github.com/gopxl/beep/v2/wav"
)

// ErrUnsupportedFormat is returned when no codec handles a file extension.
var ErrUnsupportedFormat = errors.New("unsupported audio format")

// decodeFunc turns an open file into a streamer. It takes ownership of f:
// closing the streamer closes f.
type decodeFunc func(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error)

// codecs maps a lower-cased extension to its decoder.
var codecs = map[string]decodeFunc{
	".mp3":  decodeMP3,
	".flac": decodeFLAC,
	".wav":  decodeWAV,
	".ogg":  decodeOggFile,
	".oga":  decodeOggFile,
	".opus": decodeOggFile,
	".m4a":  decodeM4AFile,
	".mp4":  decodeM4AFile,
}

// Supported reports whether path has an extension the player can decode.
func Supported(path string) bool {
	_, ok := codecs[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Extensions returns the supported extensions, dot included.
func Extensions() []string {
	exts := make([]string, 0, len(codecs))
	for ext := range codecs {
		exts = append(exts, ext)
	}
	return exts
}

// decodeFile opens path and picks a decoder by extension.
func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	decode, ok := codecs[ext]
	if !ok {
		return nil, beep.Format{}, "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, "", err
	}
	s, format, codec, err := decode(f)
	if err != nil {
		f.Close()
		return nil, beep.Format{}, "", fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	if format.SampleRate <= 0 {
		s.Close()
		return nil, beep.Format{}, "", fmt.Errorf("decode %s: invalid sample rate", filepath.Base(path))
	}
	return s, format, codec, nil
}

func decodeMP3(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	s, format, err := decodeGoMP3(f)
	return s, format, "MP3", err
}

func decodeFLAC(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	// some taggers prepend an ID3v2 block the FLAC decoder doesn't expect
	if err := skipID3v2(f); err != nil {
		return nil, beep.Format{}, "", err
	}
	s, format, err := flac.Decode(f)
	return s, format, "FLAC", err
}

func decodeWAV(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	s, format, err := wav.Decode(f)
	return s, format, "WAV", err
}

func decodeOggFile(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	return decodeOgg(f)
}

func decodeM4AFile(f *os.File) (beep.StreamSeekCloser, beep.Format, string, error) {
	return decodeM4A(f)
}

// skipID3v2 positions r after a leading ID3v2 tag, or at 0 if there is none.
func skipID3v2(r io.ReadSeeker) error {
	header := make([]byte, 10)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return err
	}
	if n < 10 || string(header[0:3]) != "ID3" {
		_, err = r.Seek(0, io.SeekStart)
		return err
	}

	// syncsafe size: 7 bits per byte
	size := int64(header[6])<<21 | int64(header[7])<<14 | int64(header[8])<<7 | int64(header[9])
	_, err = r.Seek(10+size, io.SeekStart)
	return err
}
