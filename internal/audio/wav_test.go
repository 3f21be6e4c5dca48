package audio

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ramp(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16((i*37)%65536 - 32768)
	}
	return out
}

func TestWAVRoundTrip(t *testing.T) {
	cases := []Clip{
		{SampleRate: 44100, Channels: 2, Samples: ramp(2 * 441)},
		{SampleRate: 16000, Channels: 1, Samples: ramp(1600)},
		{SampleRate: 8000, Channels: 2, Samples: []int16{-32768, 32767, 0, -1}},
	}
	for _, in := range cases {
		path := filepath.Join(t.TempDir(), "clip.wav")
		require.NoError(t, WriteFile(path, in))

		out, err := ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, in.SampleRate, out.SampleRate)
		assert.Equal(t, in.Channels, out.Channels)
		assert.Equal(t, in.Samples, out.Samples)
		assert.Equal(t, in.Frames(), out.Frames())
	}
}

func TestWAVHeader(t *testing.T) {
	in := Clip{SampleRate: 44100, Channels: 2, Samples: ramp(2 * 100)}
	path := filepath.Join(t.TempDir(), "output.wav")
	require.NoError(t, WriteFile(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Len(t, data, 44+len(in.Samples)*2)

	assert.Equal(t, "RIFF", string(data[0:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))
	assert.Equal(t, uint16(1), binary.LittleEndian.Uint16(data[20:22]))
	assert.Equal(t, uint16(2), binary.LittleEndian.Uint16(data[22:24]))
	assert.Equal(t, uint32(44100), binary.LittleEndian.Uint32(data[24:28]))
	assert.Equal(t, uint16(4), binary.LittleEndian.Uint16(data[32:34]))
	assert.Equal(t, uint16(16), binary.LittleEndian.Uint16(data[34:36]))
	assert.Equal(t, "data", string(data[36:40]))
	assert.Equal(t, uint32(len(in.Samples)*2), binary.LittleEndian.Uint32(data[40:44]))
}

func TestWriteFileLeavesNoTempOnFailure(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "output.wav")

	err := WriteFile(path, Clip{SampleRate: 8000, Channels: 2, Samples: []int16{1, 2, 3}})
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file........................"), 0o644))

	_, err := ReadFile(path)
	assert.Error(t, err)
}

func TestClipDuration(t *testing.T) {
	c := Clip{SampleRate: 44100, Channels: 2, Samples: make([]int16, 2*44100*3)}
	assert.Equal(t, 44100*3, c.Frames())
	assert.Equal(t, 3*time.Second, c.Duration())
}
