//go:build !espeak

package tts

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"fatigue/internal/fatigue"
)

func TestSpeakerWithoutEspeak(t *testing.T) {
	assert.NoError(t, Speak("", ""))

	err := (&Speaker{}).Notify(context.Background(), fatigue.Verdict{Level: fatigue.High})
	assert.ErrorContains(t, err, "espeak")
}
