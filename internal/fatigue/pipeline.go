package fatigue

import (
	"context"
	"errors"
	log "log/slog"
	"time"
)

// Recorder captures one clip and stores it at path.
type Recorder interface {
	Record(ctx context.Context, path string) error
}

// Classifier hands a recorded clip to an external model.
type Classifier interface {
	Classify(ctx context.Context, modelPath, wavPath string) (Indicators, error)
}

// Actuator owns the three indicator lines.
type Actuator interface {
	Reset(ctx context.Context) error
	Apply(ctx context.Context, score int) (Level, error)
}

// Notifier is told about every verdict after the lines are set.
type Notifier interface {
	Notify(ctx context.Context, v Verdict) error
}

type Pipeline struct {
	Actuator   Actuator
	Recorder   Recorder
	Classifier Classifier
	ModelPath  string
	WavPath    string
	Notifiers  []Notifier

	now func() time.Time
}

func NewPipeline(act Actuator, rec Recorder, cls Classifier, modelPath, wavPath string) *Pipeline {
	return &Pipeline{
		Actuator:   act,
		Recorder:   rec,
		Classifier: cls,
		ModelPath:  modelPath,
		WavPath:    wavPath,
		now:        time.Now,
	}
}

// Run performs one full cycle: reset, record, classify, actuate. The first
// failing stage aborts the cycle and is returned as a *StageError.
func (p *Pipeline) Run(ctx context.Context) (Verdict, error) {
	if p.Actuator == nil || p.Recorder == nil || p.Classifier == nil {
		return Verdict{}, errors.New("pipeline is missing a stage")
	}

	log.Debug("Resetting lines")
	if err := p.Actuator.Reset(ctx); err != nil {
		return Verdict{}, &StageError{Stage: StageReset, Err: err}
	}

	log.Info("Recording", "path", p.WavPath)
	if err := p.Recorder.Record(ctx, p.WavPath); err != nil {
		return Verdict{}, &StageError{Stage: StageRecord, Err: err}
	}

	log.Info("Classifying", "model", p.ModelPath)
	ind, err := p.Classifier.Classify(ctx, p.ModelPath, p.WavPath)
	if err != nil {
		return Verdict{}, &StageError{Stage: StageClassify, Err: err}
	}

	score := ind.Score()
	log.Info("Classified", "indicators", ind.String(), "score", score)

	level, err := p.Actuator.Apply(ctx, score)
	if err != nil {
		return Verdict{}, &StageError{Stage: StageActuate, Err: err}
	}

	v := Verdict{
		Indicators: ind,
		Score:      score,
		Level:      level,
		At:         p.clock(),
	}
	log.Info("Verdict", "level", level.String(), "label", level.Label(), "score", score)

	for _, n := range p.Notifiers {
		if err := n.Notify(ctx, v); err != nil {
			log.Warn("Failed to notify", "err", err)
		}
	}

	return v, nil
}

func (p *Pipeline) clock() time.Time {
	if p.now == nil {
		return time.Now()
	}
	return p.now()
}
