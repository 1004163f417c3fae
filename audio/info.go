package audio

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/skillsenselab/sonix/errors"
)

// FileInfo summarizes an audio file without decoding its samples.
type FileInfo struct {
	DurationSec float64 `json:"duration_sec"`
	SampleRate  int     `json:"sample_rate"`
	Channels    int     `json:"channels"`
	Frames      int     `json:"frames"`
	Codec       string  `json:"codec"`
}

// Info reads WAV metadata from a file header.
func Info(path string) (FileInfo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileInfo{}, errors.DecodeFailed(path, err)
	}
	if len(data) < wavHeaderSize {
		return FileInfo{}, errors.DecodeFailed(path, nil).WithDetail("reason", "file shorter than WAV header")
	}

	var header wavHeader
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, &header); err != nil {
		return FileInfo{}, errors.DecodeFailed(path, err)
	}
	if string(header.ChunkID[:]) != "RIFF" || string(header.Format[:]) != "WAVE" {
		return FileInfo{}, errors.DecodeFailed(path, nil).WithDetail("reason", "not a RIFF/WAVE file")
	}
	if header.SampleRate == 0 || header.BlockAlign == 0 {
		return FileInfo{}, errors.DecodeFailed(path, nil).WithDetail("reason", "corrupt format chunk")
	}

	frames := int(header.Subchunk2Size) / int(header.BlockAlign)
	return FileInfo{
		DurationSec: float64(frames) / float64(header.SampleRate),
		SampleRate:  int(header.SampleRate),
		Channels:    int(header.NumChannels),
		Frames:      frames,
		Codec:       codecName(header),
	}, nil
}

func codecName(h wavHeader) string {
	switch h.AudioFormat {
	case 1:
		switch h.BitsPerSample {
		case 8:
			return "WAV/PCM_U8"
		case 16:
			return "WAV/PCM_16"
		case 24:
			return "WAV/PCM_24"
		case 32:
			return "WAV/PCM_32"
		}
		return "WAV/PCM"
	case 3:
		return "WAV/FLOAT"
	}
	return "WAV/unknown"
}
