// Package tts speaks verdicts through espeak-ng.
package tts

import (
	"context"

	"fatigue/internal/fatigue"
)

const DefaultLanguage = "en"

// Speaker announces every verdict label.
type Speaker struct {
	Language string
}

var _ fatigue.Notifier = (*Speaker)(nil)

func (s *Speaker) Notify(_ context.Context, v fatigue.Verdict) error {
	return Speak(v.Level.Label(), s.Language)
}
