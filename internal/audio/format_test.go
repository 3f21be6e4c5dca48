package audio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatFrames(t *testing.T) {
	assert.Equal(t, 20*44100, DefaultFormat.Frames())
	assert.Equal(t, 2*20*44100, DefaultFormat.Samples())

	f := Format{SampleRate: 16000, Channels: 1, Duration: 1500 * time.Millisecond}
	assert.Equal(t, 24000, f.Frames())
}

func TestFormatValidate(t *testing.T) {
	assert.NoError(t, DefaultFormat.Validate())

	bad := []Format{
		{SampleRate: 44100, Channels: 2, Duration: 0},
		{SampleRate: 0, Channels: 2, Duration: time.Second},
		{SampleRate: 44100, Channels: 3, Duration: time.Second},
		{SampleRate: 44100, Channels: 0, Duration: time.Second},
		{SampleRate: 8000, Channels: 1, Duration: time.Microsecond},
	}
	for _, f := range bad {
		assert.Error(t, f.Validate(), "%+v", f)
	}
}
