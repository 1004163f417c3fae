package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/skillsenselab/sonix/errors"
)

// wavHeader is the canonical 44-byte PCM WAV header.
type wavHeader struct {
	ChunkID       [4]byte // "RIFF"
	ChunkSize     uint32  // file size - 8 bytes
	Format        [4]byte // "WAVE"
	Subchunk1ID   [4]byte // "fmt "
	Subchunk1Size uint32  // 16 for PCM
	AudioFormat   uint16  // 1 for PCM
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32 // SampleRate * NumChannels * BitsPerSample / 8
	BlockAlign    uint16 // NumChannels * BitsPerSample / 8
	BitsPerSample uint16
	Subchunk2ID   [4]byte // "data"
	Subchunk2Size uint32  // number of bytes in the data
}

const wavHeaderSize = 44

// EncodeWAV encodes a waveform into mono 16-bit PCM WAV bytes. Samples are
// clamped to [-1, 1] before quantization.
func EncodeWAV(w Waveform) ([]byte, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	samples := make([]int16, len(w.Samples))
	for i, s := range w.Samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		samples[i] = int16(math.Round(s * 32767))
	}

	numChannels := uint16(1)
	bitsPerSample := uint16(16)
	dataSize := uint32(len(samples) * 2)

	header := wavHeader{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   1,
		NumChannels:   numChannels,
		SampleRate:    uint32(w.SampleRate),
		ByteRate:      uint32(w.SampleRate) * uint32(numChannels) * uint32(bitsPerSample) / 8,
		BlockAlign:    numChannels * bitsPerSample / 8,
		BitsPerSample: bitsPerSample,
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+len(samples)*2))
	if err := binary.Write(buf, binary.LittleEndian, header); err != nil {
		return nil, fmt.Errorf("write WAV header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, samples); err != nil {
		return nil, fmt.Errorf("write audio data: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeWAV decodes mono 16-bit PCM WAV bytes into a Waveform.
func DecodeWAV(data []byte) (Waveform, error) {
	if len(data) < wavHeaderSize {
		return Waveform{}, fmt.Errorf("WAV data too short: need at least %d bytes, got %d", wavHeaderSize, len(data))
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return Waveform{}, fmt.Errorf("read WAV header: %w", err)
	}

	if string(header.ChunkID[:]) != "RIFF" {
		return Waveform{}, fmt.Errorf("invalid WAV file: missing RIFF header")
	}
	if string(header.Format[:]) != "WAVE" {
		return Waveform{}, fmt.Errorf("invalid WAV file: missing WAVE format")
	}
	if string(header.Subchunk1ID[:]) != "fmt " {
		return Waveform{}, fmt.Errorf("invalid WAV file: missing fmt chunk")
	}
	if string(header.Subchunk2ID[:]) != "data" {
		return Waveform{}, fmt.Errorf("invalid WAV file: missing data chunk")
	}
	if header.AudioFormat != 1 {
		return Waveform{}, fmt.Errorf("unsupported audio format: %d (only PCM is supported)", header.AudioFormat)
	}
	if header.BitsPerSample != 16 {
		return Waveform{}, fmt.Errorf("unsupported bit depth: %d (only 16-bit is supported)", header.BitsPerSample)
	}
	if header.NumChannels != 1 {
		return Waveform{}, fmt.Errorf("unsupported channel count: %d (only mono is supported)", header.NumChannels)
	}
	if header.SampleRate == 0 {
		return Waveform{}, fmt.Errorf("invalid sample rate: 0")
	}

	numSamples := int(header.Subchunk2Size) / 2
	if numSamples <= 0 {
		return Waveform{}, fmt.Errorf("WAV data chunk is empty")
	}
	if wavHeaderSize+numSamples*2 > len(data) {
		numSamples = (len(data) - wavHeaderSize) / 2
	}

	pcm := make([]int16, numSamples)
	if err := binary.Read(bytes.NewReader(data[wavHeaderSize:]), binary.LittleEndian, &pcm); err != nil {
		return Waveform{}, fmt.Errorf("read audio data: %w", err)
	}

	samples := make([]float64, numSamples)
	for i, s := range pcm {
		samples[i] = float64(s) / 32767.0
	}
	return Waveform{Samples: samples, SampleRate: int(header.SampleRate)}, nil
}

// ReadFile loads a WAV file into a Waveform. Failures here are the fatal
// input-error class: the caller has no valid data to segment.
func ReadFile(path string) (Waveform, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Waveform{}, errors.DecodeFailed(path, err)
	}
	w, err := DecodeWAV(data)
	if err != nil {
		return Waveform{}, errors.DecodeFailed(path, err)
	}
	return w, nil
}

// WriteFile encodes a waveform and writes it as a WAV file.
func WriteFile(path string, w Waveform) error {
	data, err := EncodeWAV(w)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
