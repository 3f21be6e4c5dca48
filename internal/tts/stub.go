//go:build !espeak

package tts

import "errors"

// Speak is unavailable unless built with -tags espeak.
func Speak(text, lang string) error {
	if text == "" {
		return nil
	}
	return errors.New("speech not available: build with -tags espeak")
}
