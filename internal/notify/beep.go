// Package notify plays an audible alert for fatigue verdicts.
package notify

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"

	"fatigue/internal/fatigue"
)

// Sound plays an mp3 when a verdict reaches MinLevel.
type Sound struct {
	Path     string
	MinLevel fatigue.Level
}

var _ fatigue.Notifier = (*Sound)(nil)

func (s *Sound) Notify(ctx context.Context, v fatigue.Verdict) error {
	if v.Level < s.MinLevel {
		return nil
	}
	return Play(ctx, s.Path)
}

const resampleQuality = 4

// The speaker owns a single output context for the process. It is opened at
// the rate of the first alert; later alerts are resampled to it.
var (
	speakerMu   sync.Mutex
	speakerRate beep.SampleRate
	speakerInit = func(rate beep.SampleRate) error {
		return speaker.Init(rate, rate.N(time.Second/10))
	}
)

func ensureSpeaker(rate beep.SampleRate) (beep.SampleRate, error) {
	speakerMu.Lock()
	defer speakerMu.Unlock()

	if speakerRate != 0 {
		return speakerRate, nil
	}
	if err := speakerInit(rate); err != nil {
		return 0, err
	}
	speakerRate = rate
	return rate, nil
}

// Play decodes the mp3 at path and blocks until playback ends or ctx is
// done.
func Play(ctx context.Context, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open alert: %w", err)
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		return fmt.Errorf("decode alert %s: %w", path, err)
	}
	defer streamer.Close()

	rate, err := ensureSpeaker(format.SampleRate)
	if err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}

	var out beep.Streamer = streamer
	if rate != format.SampleRate {
		out = beep.Resample(resampleQuality, format.SampleRate, rate, streamer)
	}

	done := make(chan struct{})
	speaker.Play(beep.Seq(out, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}
