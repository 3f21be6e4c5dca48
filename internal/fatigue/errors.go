package fatigue

import (
	"errors"
	"fmt"
)

var (
	ErrAudioDevice    = errors.New("audio device")
	ErrClassification = errors.New("classification")
	ErrActuation      = errors.New("actuation")
)

type Stage string

const (
	StageReset    Stage = "reset"
	StageRecord   Stage = "record"
	StageClassify Stage = "classify"
	StageActuate  Stage = "actuate"
)

// StageError is a fatal failure of one pipeline stage. It matches both the
// stage sentinel and the underlying cause with errors.Is.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.kind(), e.Err)
}

func (e *StageError) Unwrap() []error {
	return []error{e.kind(), e.Err}
}

func (e *StageError) kind() error {
	switch e.Stage {
	case StageRecord:
		return ErrAudioDevice
	case StageClassify:
		return ErrClassification
	default:
		return ErrActuation
	}
}

// Process exit codes.
const (
	ExitOK             = 0
	ExitFailure        = 1
	ExitAudioDevice    = 2
	ExitClassification = 3
	ExitActuation      = 4
)

// ExitCode maps a run error onto the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrAudioDevice):
		return ExitAudioDevice
	case errors.Is(err, ErrClassification):
		return ExitClassification
	case errors.Is(err, ErrActuation):
		return ExitActuation
	default:
		return ExitFailure
	}
}
