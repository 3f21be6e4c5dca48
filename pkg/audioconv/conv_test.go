package audioconv

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeStereoWAV(t *testing.T, path string, rate, frames int, left, right int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	data := make([]int, 0, frames*2)
	for i := 0; i < frames; i++ {
		data = append(data, left, right)
	}
	enc := wav.NewEncoder(f, rate, 16, 2, 1)
	require.NoError(t, enc.Write(&goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 2, SampleRate: rate},
		Data:           data,
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
}

func TestDecodeWAVDownmixesAndSpreads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeStereoWAV(t, path, 8000, 100, 1000, 3000)

	out, err := DecodeFile(context.Background(), path, Options{SampleRate: 8000, Channels: 2})
	require.NoError(t, err)
	require.Len(t, out, 200)
	for _, s := range out {
		assert.Equal(t, int16(2000), s)
	}
}

func TestDecodeWAVResamplesAndLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeStereoWAV(t, path, 8000, 100, 500, 500)

	out, err := DecodeFile(context.Background(), path, Options{SampleRate: 16000, Channels: 1})
	require.NoError(t, err)
	assert.Len(t, out, 200)

	out, err = DecodeFile(context.Background(), path, Options{SampleRate: 16000, Channels: 1, MaxFrames: 50})
	require.NoError(t, err)
	assert.Len(t, out, 50)
}

func TestDecodeSniffsContainer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.raw")
	writeStereoWAV(t, path, 8000, 10, 0, 0)

	out, err := DecodeFile(context.Background(), path, Options{Channels: 1})
	require.NoError(t, err)
	assert.Len(t, out, 10)
}

func TestDecodeRejectsUnknownFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("not audio at all"), 0o644))

	_, err := DecodeFile(context.Background(), path, Options{})
	assert.ErrorContains(t, err, "unsupported format")
}

func TestDecodeHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := DecodeFile(ctx, "whatever.wav", Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFloat32ToInt16Clamps(t *testing.T) {
	assert.Equal(t, int16(32767), float32ToInt16(2))
	assert.Equal(t, int16(-32768), float32ToInt16(-2))
	assert.Equal(t, int16(0), float32ToInt16(0))
	assert.Equal(t, int16(-1234), float32ToInt16(-1234.0/32768.0))
}
