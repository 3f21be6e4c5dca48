package audio

import (
	"errors"
	"fmt"
	"time"
)

// BitDepth is the only sample width the recorder produces.
const BitDepth = 16

var ErrDevice = errors.New("audio device")

// Format describes a fixed-length capture request.
type Format struct {
	SampleRate int           `yaml:"sample_rate"`
	Channels   int           `yaml:"channels"`
	Duration   time.Duration `yaml:"duration"`
}

var DefaultFormat = Format{
	SampleRate: 44100,
	Channels:   2,
	Duration:   20 * time.Second,
}

// Frames is the number of frames in the capture window.
func (f Format) Frames() int {
	return int(int64(f.Duration) * int64(f.SampleRate) / int64(time.Second))
}

// Samples is the number of interleaved samples in the capture window.
func (f Format) Samples() int {
	return f.Frames() * f.Channels
}

func (f Format) Validate() error {
	if f.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %v", f.Duration)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", f.SampleRate)
	}
	if f.Channels != 1 && f.Channels != 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", f.Channels)
	}
	if f.Frames() == 0 {
		return fmt.Errorf("duration %v is shorter than one frame at %dHz", f.Duration, f.SampleRate)
	}
	return nil
}

func (f Format) String() string {
	return fmt.Sprintf("%v, %dHz, %d channels, %d-bit", f.Duration, f.SampleRate, f.Channels, BitDepth)
}
