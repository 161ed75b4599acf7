package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// Sentinel errors for files that cannot be turned into a waveform.
var (
	ErrFileNotFound      = errors.New("file not found")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptedFile     = errors.New("file corrupted or unreadable")
)

// Format is a supported audio container.
type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatUnknown Format = "unknown"
)

// wavPCM is the WAVE_FORMAT_PCM tag; compressed and float WAVs are rejected.
const wavPCM = 1

// Load opens the file at path and decodes it into a mono waveform.
func Load(path string) (*Waveform, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("audio: %w: %s", ErrFileNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("audio: open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	return Decode(f, path)
}

// Decode reads a WAV or MP3 stream. name is only used as a format hint when
// the header is not recognized.
func Decode(r io.ReadSeeker, name string) (*Waveform, error) {
	header := make([]byte, 12)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, fmt.Errorf("audio: %w: could not read header", ErrCorruptedFile)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("audio: rewind: %w", err)
	}

	switch DetectFormat(header[:n], name) {
	case FormatWAV:
		return decodeWAV(r)
	case FormatMP3:
		return decodeMP3(r)
	default:
		return nil, fmt.Errorf("audio: %w: please provide a WAV or MP3 file", ErrUnsupportedFormat)
	}
}

// DetectFormat checks magic bytes, falling back to the file extension.
func DetectFormat(header []byte, name string) Format {
	if len(header) >= 12 && bytes.Equal(header[:4], []byte("RIFF")) && bytes.Equal(header[8:12], []byte("WAVE")) {
		return FormatWAV
	}
	if len(header) >= 3 && bytes.Equal(header[:3], []byte("ID3")) {
		return FormatMP3
	}
	// MPEG frame sync
	if len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0 {
		return FormatMP3
	}

	switch strings.ToLower(filepath.Ext(name)) {
	case ".wav":
		return FormatWAV
	case ".mp3":
		return FormatMP3
	}
	return FormatUnknown
}

func decodeWAV(r io.ReadSeeker) (*Waveform, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("audio: decode wav: %w", ErrCorruptedFile)
	}
	if dec.WavAudioFormat != wavPCM {
		return nil, fmt.Errorf("audio: decode wav: %w: audio format %d is not PCM", ErrUnsupportedFormat, dec.WavAudioFormat)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w: %v", ErrCorruptedFile, err)
	}

	bitDepth := buf.SourceBitDepth
	scale, err := pcmScale(bitDepth)
	if err != nil {
		return nil, fmt.Errorf("audio: decode wav: %w", err)
	}
	samples := make([]float32, len(buf.Data))
	for i, s := range buf.Data {
		// 8-bit WAV samples are unsigned
		if bitDepth == 8 {
			s -= 128
		}
		samples[i] = float32(float64(s) / scale)
	}

	return &Waveform{
		Samples:    Downmix(samples, buf.Format.NumChannels),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// pcmScale returns the full-scale value for integer PCM of the given depth.
func pcmScale(bitDepth int) (float64, error) {
	if bitDepth < 8 || bitDepth > 32 {
		return 0, fmt.Errorf("%w: %d-bit PCM", ErrUnsupportedFormat, bitDepth)
	}
	return float64(int64(1) << (bitDepth - 1)), nil
}

// decodeMP3 decodes the whole stream. go-mp3 always yields 16-bit
// little-endian stereo regardless of the source channel count.
func decodeMP3(r io.Reader) (*Waveform, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w: %v", ErrCorruptedFile, err)
	}

	data, err := io.ReadAll(dec)
	if err != nil {
		return nil, fmt.Errorf("audio: decode mp3: %w: %v", ErrCorruptedFile, err)
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2 : i*2+2]))
		samples[i] = float32(v) / 32768.0
	}

	return &Waveform{
		Samples:    Downmix(samples, 2),
		SampleRate: dec.SampleRate(),
	}, nil
}
