package asr

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// decodeWav parses an in-memory 16-bit PCM WAV file into normalized float32
// samples. Multi-channel audio is downmixed by taking the first channel.
func decodeWav(data []byte) (samples []float32, sampleRate int, err error) {
	r := bytes.NewReader(data)

	riffHeader := make([]byte, 12)
	if _, err := io.ReadFull(r, riffHeader); err != nil {
		return nil, 0, fmt.Errorf("failed to read RIFF header: %w", err)
	}
	if string(riffHeader[0:4]) != "RIFF" || string(riffHeader[8:12]) != "WAVE" {
		return nil, 0, fmt.Errorf("not a valid WAV file")
	}

	var numChannels, bitsPerSample int
	var audio []byte
	var foundFmt, foundData bool

	for !foundData {
		chunkHeader := make([]byte, 8)
		if _, err := io.ReadFull(r, chunkHeader); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return nil, 0, fmt.Errorf("failed to read chunk header: %w", err)
		}

		chunkID := string(chunkHeader[0:4])
		chunkSize := int64(binary.LittleEndian.Uint32(chunkHeader[4:8]))

		switch chunkID {
		case "fmt ":
			fmtData := make([]byte, chunkSize)
			if _, err := io.ReadFull(r, fmtData); err != nil {
				return nil, 0, fmt.Errorf("failed to read fmt chunk: %w", err)
			}
			if len(fmtData) >= 16 {
				numChannels = int(binary.LittleEndian.Uint16(fmtData[2:4]))
				sampleRate = int(binary.LittleEndian.Uint32(fmtData[4:8]))
				bitsPerSample = int(binary.LittleEndian.Uint16(fmtData[14:16]))
			}
			foundFmt = true

		case "data":
			audio = make([]byte, chunkSize)
			n, err := io.ReadFull(r, audio)
			if err != nil && err != io.ErrUnexpectedEOF {
				return nil, 0, fmt.Errorf("failed to read data chunk: %w", err)
			}
			audio = audio[:n]
			foundData = true

		default:
			// skip LIST, INFO and other chunks, word-aligned
			skip := chunkSize
			if skip%2 != 0 {
				skip++
			}
			if _, err := r.Seek(skip, io.SeekCurrent); err != nil {
				return nil, 0, fmt.Errorf("failed to skip chunk %s: %w", chunkID, err)
			}
		}
	}

	if !foundFmt {
		return nil, 0, fmt.Errorf("fmt chunk not found")
	}
	if !foundData {
		return nil, 0, fmt.Errorf("data chunk not found")
	}
	if bitsPerSample != 16 {
		return nil, 0, fmt.Errorf("only 16-bit WAV files are supported, got %d-bit", bitsPerSample)
	}
	if numChannels <= 0 || sampleRate <= 0 {
		return nil, 0, fmt.Errorf("invalid WAV format: %d channels, %d Hz", numChannels, sampleRate)
	}

	bytesPerFrame := 2 * numChannels
	totalFrames := len(audio) / bytesPerFrame

	samples = make([]float32, 0, totalFrames)
	for i := 0; i < totalFrames; i++ {
		offset := i * bytesPerFrame
		sample := int16(binary.LittleEndian.Uint16(audio[offset : offset+2]))
		samples = append(samples, float32(sample)/32768.0)
	}

	return samples, sampleRate, nil
}
