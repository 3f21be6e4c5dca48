package classifier

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"os/exec"
	"strings"
	"time"

	"fatigue/internal/fatigue"
)

// DefaultArgs is the predictor argument template. {model} and {wav} are
// replaced with the model reference and the recorded clip.
var DefaultArgs = []string{"--model", "{model}", "--wav", "{wav}"}

// Command runs an external predictor once per clip and reads the indicator
// object it prints on stdout.
type Command struct {
	Path       string
	Args       []string
	ResultPath string
	// Timeout bounds one predictor run. Zero means no limit beyond ctx.
	Timeout time.Duration
}

var _ fatigue.Classifier = (*Command)(nil)

func (c *Command) Classify(ctx context.Context, modelPath, wavPath string) (fatigue.Indicators, error) {
	if c.Path == "" {
		return nil, errors.New("no predictor configured")
	}

	tmpl := c.Args
	if len(tmpl) == 0 {
		tmpl = DefaultArgs
	}
	args := make([]string, len(tmpl))
	r := strings.NewReplacer("{model}", modelPath, "{wav}", wavPath)
	for i, a := range tmpl {
		args[i] = r.Replace(a)
	}

	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	log.Debug("Running predictor", "cmd", c.Path, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.Path, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return nil, fmt.Errorf("predictor %s: %w", c.Path, err)
		}
		return nil, fmt.Errorf("predictor %s: %w: %s", c.Path, err, msg)
	}

	ind, err := ParseIndicators(lastJSON(stdout.Bytes()), c.ResultPath)
	if err != nil {
		return nil, fmt.Errorf("predictor %s: %w", c.Path, err)
	}
	return ind, nil
}
