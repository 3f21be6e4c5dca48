package audio

import (
	"context"
	"errors"
	"fmt"
	log "log/slog"

	"github.com/gordonklaus/portaudio"

	"fatigue/internal/fatigue"
)

// Source captures a fixed-length clip. Capture blocks until the whole
// window is available and returns exactly f.Samples() interleaved samples.
type Source interface {
	Capture(ctx context.Context, f Format) ([]int16, error)
}

// Recorder captures one clip from a Source and stores it as a WAV file.
type Recorder struct {
	Source Source
	Format Format
}

var _ fatigue.Recorder = (*Recorder)(nil)

func NewRecorder(src Source, f Format) *Recorder {
	return &Recorder{Source: src, Format: f}
}

// Record captures Format from Source and writes it to path. Nothing is
// written at path unless the capture completed.
func (r *Recorder) Record(ctx context.Context, path string) error {
	if err := r.Format.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrDevice, err)
	}

	samples, err := r.Source.Capture(ctx, r.Format)
	if err != nil {
		return err
	}
	if len(samples) != r.Format.Samples() {
		return fmt.Errorf("%w: captured %d samples, want %d", ErrDevice, len(samples), r.Format.Samples())
	}

	clip := Clip{
		SampleRate: r.Format.SampleRate,
		Channels:   r.Format.Channels,
		Samples:    samples,
	}
	if err := WriteFile(path, clip); err != nil {
		return err
	}

	log.Info("Audio saved", "path", path, "frames", clip.Frames())
	return nil
}

const defaultFramesPerBuffer = 1024

// Device captures from the default portaudio input device.
type Device struct {
	FramesPerBuffer int

	initialized bool
}

var _ Source = (*Device)(nil)

func NewDevice() *Device { return &Device{FramesPerBuffer: defaultFramesPerBuffer} }

func (d *Device) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize: %w", ErrDevice, err)
	}
	in, err := portaudio.DefaultInputDevice()
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: no default input: %w", ErrDevice, err)
	}
	d.initialized = true

	log.Debug("Input device", "name", in.Name, "max_channels", in.MaxInputChannels, "rate", in.DefaultSampleRate)
	return nil
}

func (d *Device) Close() {
	if !d.initialized {
		return
	}
	portaudio.Terminate()
	d.initialized = false
}

func (d *Device) Capture(ctx context.Context, f Format) ([]int16, error) {
	if !d.initialized {
		return nil, fmt.Errorf("%w: not initialized", ErrDevice)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	frames := d.FramesPerBuffer
	if frames <= 0 {
		frames = defaultFramesPerBuffer
	}
	buf := make([]int16, frames*f.Channels)

	stream, err := portaudio.OpenDefaultStream(f.Channels, 0, float64(f.SampleRate), frames, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: open stream (%s): %w", ErrDevice, f, err)
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return nil, fmt.Errorf("%w: start stream: %w", ErrDevice, err)
	}
	defer stream.Stop()

	total := f.Samples()
	out := make([]int16, 0, total+len(buf))

	for len(out) < total {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := stream.Read(); err != nil {
			if !errors.Is(err, portaudio.InputOverflowed) {
				return nil, fmt.Errorf("%w: read: %w", ErrDevice, err)
			}
			log.Debug("Input overflowed")
		}
		out = append(out, buf...)
	}

	return out[:total], nil
}
