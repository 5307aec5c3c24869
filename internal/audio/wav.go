package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// wavHeaderSize is the fixed PCM WAV header emitted by EncodeWAV.
const wavHeaderSize = 44

// DecodeWAV parses a PCM 16-bit mono WAV stream into a Sample.
func DecodeWAV(r io.Reader) (Sample, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Sample{}, fmt.Errorf("read wav stream: %w", err)
	}
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return Sample{}, errors.New("not a RIFF/WAVE stream")
	}

	var (
		format   int
		channels int
		rate     int
		bits     int
		haveFmt  bool
		pcm      []byte
	)

	// Walk the chunks; converter output may carry LIST/INFO chunks ahead of data.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8
		if size < 0 || body+size > len(data) {
			return Sample{}, fmt.Errorf("truncated %q chunk", id)
		}

		switch id {
		case "fmt ":
			if size < 16 {
				return Sample{}, errors.New("fmt chunk too short")
			}
			chunk := data[body : body+size]
			format = int(binary.LittleEndian.Uint16(chunk[0:2]))
			channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			rate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			bits = int(binary.LittleEndian.Uint16(chunk[14:16]))
			haveFmt = true
		case "data":
			pcm = data[body : body+size]
		}

		// Chunks are word aligned
		offset = body + size + size%2
	}

	if !haveFmt {
		return Sample{}, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return Sample{}, errors.New("missing data chunk")
	}
	if format != 1 {
		return Sample{}, fmt.Errorf("unsupported audio format %d, want PCM", format)
	}
	if channels != 1 {
		return Sample{}, fmt.Errorf("unsupported channel count %d, want mono", channels)
	}
	if bits != 16 {
		return Sample{}, fmt.Errorf("unsupported bit depth %d, want 16", bits)
	}
	if len(pcm) < 2 {
		return Sample{}, errors.New("empty audio data")
	}

	samples := make([]float32, len(pcm)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(pcm[2*i:]))
		samples[i] = float32(v) / 32768
	}
	return Sample{Samples: samples, Rate: rate}, nil
}

// EncodePCM16 converts the sample buffer to raw little-endian 16-bit PCM.
// Values outside [-1, 1] are clipped.
func EncodePCM16(s Sample) []byte {
	out := make([]byte, 2*len(s.Samples))
	for i, v := range s.Samples {
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		binary.LittleEndian.PutUint16(out[2*i:], uint16(int16(v*32767)))
	}
	return out
}

// EncodeWAV wraps the sample in a 44-byte PCM WAV container.
func EncodeWAV(s Sample) []byte {
	pcm := EncodePCM16(s)
	byteRate := s.Rate * 2
	header := make([]byte, wavHeaderSize)

	// RIFF chunk descriptor
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+len(pcm)))
	copy(header[8:12], "WAVE")

	// fmt sub-chunk, PCM mono 16-bit
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1)
	binary.LittleEndian.PutUint16(header[22:24], 1)
	binary.LittleEndian.PutUint32(header[24:28], uint32(s.Rate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], 2)
	binary.LittleEndian.PutUint16(header[34:36], 16)

	// data sub-chunk
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(len(pcm)))

	return append(header, pcm...)
}
