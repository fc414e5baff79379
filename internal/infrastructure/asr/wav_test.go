package asr

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildWav assembles a minimal 16-bit PCM WAV file in memory.
func buildWav(sampleRate, channels int, samples []int16) []byte {
	var data bytes.Buffer
	for _, s := range samples {
		binary.Write(&data, binary.LittleEndian, s)
	}

	var buf bytes.Buffer
	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+data.Len()))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(channels*2))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(data.Len()))
	buf.Write(data.Bytes())

	return buf.Bytes()
}

func TestDecodeWavMono(t *testing.T) {
	wav := buildWav(16000, 1, []int16{0, 16384, -16384, 32767})

	samples, rate, err := decodeWav(wav)
	require.NoError(t, err)

	assert.Equal(t, 16000, rate)
	require.Len(t, samples, 4)
	assert.InDelta(t, 0.0, samples[0], 1e-6)
	assert.InDelta(t, 0.5, samples[1], 1e-6)
	assert.InDelta(t, -0.5, samples[2], 1e-6)
	assert.InDelta(t, 1.0, samples[3], 1e-4)
}

func TestDecodeWavStereoTakesFirstChannel(t *testing.T) {
	// interleaved L/R pairs, right channel is junk
	wav := buildWav(44100, 2, []int16{100, -9999, 200, -9999, 300, -9999})

	samples, rate, err := decodeWav(wav)
	require.NoError(t, err)

	assert.Equal(t, 44100, rate)
	require.Len(t, samples, 3)
	for i, want := range []int16{100, 200, 300} {
		assert.InDelta(t, float64(want)/32768.0, samples[i], 1e-6)
	}
}

func TestDecodeWavSampleRange(t *testing.T) {
	wav := buildWav(16000, 1, []int16{math.MinInt16, math.MaxInt16})

	samples, _, err := decodeWav(wav)
	require.NoError(t, err)

	for _, s := range samples {
		assert.GreaterOrEqual(t, s, float32(-1.0))
		assert.LessOrEqual(t, s, float32(1.0))
	}
}

func TestDecodeWavRejectsGarbage(t *testing.T) {
	_, _, err := decodeWav([]byte("definitely not a wav file"))
	assert.Error(t, err)
}

func TestDecodeWavRejectsTruncated(t *testing.T) {
	wav := buildWav(16000, 1, []int16{1, 2, 3})
	_, _, err := decodeWav(wav[:8])
	assert.Error(t, err)
}

func TestDecodeWavRejectsNonPCM16(t *testing.T) {
	wav := buildWav(16000, 1, []int16{1, 2, 3})
	// patch bits-per-sample in the fmt chunk to 8
	wav[34] = 8
	_, _, err := decodeWav(wav)
	assert.Error(t, err)
}

func TestDecodeWavSkipsUnknownChunks(t *testing.T) {
	wav := buildWav(16000, 1, []int16{512})

	// splice a LIST chunk between fmt and data
	var buf bytes.Buffer
	buf.Write(wav[:36])
	buf.WriteString("LIST")
	binary.Write(&buf, binary.LittleEndian, uint32(4))
	buf.WriteString("INFO")
	buf.Write(wav[36:])
	spliced := buf.Bytes()
	binary.LittleEndian.PutUint32(spliced[4:8], uint32(len(spliced)-8))

	samples, rate, err := decodeWav(spliced)
	require.NoError(t, err)
	assert.Equal(t, 16000, rate)
	require.Len(t, samples, 1)
}
