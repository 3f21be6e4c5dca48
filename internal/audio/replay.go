package audio

import (
	"context"
	"fmt"
	log "log/slog"

	"fatigue/pkg/audioconv"
)

// Replay is a Source that plays back a prerecorded file instead of the
// microphone. The file is converted to the requested format and padded
// with silence or cut to the exact window length.
type Replay struct {
	Input string
}

var _ Source = (*Replay)(nil)

func (r *Replay) Capture(ctx context.Context, f Format) ([]int16, error) {
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDevice, err)
	}

	samples, err := audioconv.DecodeFile(ctx, r.Input, audioconv.Options{
		SampleRate: f.SampleRate,
		Channels:   f.Channels,
		MaxFrames:  f.Frames(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: replay: %w", ErrDevice, err)
	}

	if short := f.Samples() - len(samples); short > 0 {
		log.Debug("Padding replay with silence", "input", r.Input, "frames", short/f.Channels)
		samples = append(samples, make([]int16, short)...)
	}
	return samples, nil
}
