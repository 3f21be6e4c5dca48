package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatigue/internal/fatigue"
)

func TestCommandClassify(t *testing.T) {
	c := &Command{
		Path: "sh",
		Args: []string{
			"-c",
			`[ "$0" = "models.pkl" ] && [ "$1" = "out.wav" ] || exit 9
echo "extracting features from $1"
echo '{"a":1,"b":1,"c":1}'`,
			"{model}",
			"{wav}",
		},
	}

	got, err := c.Classify(context.Background(), "models.pkl", "out.wav")
	require.NoError(t, err)
	assert.Equal(t, fatigue.Indicators{"a": 1, "b": 1, "c": 1}, got)
}

func TestCommandResultPath(t *testing.T) {
	c := &Command{
		Path:       "sh",
		Args:       []string{"-c", `echo '{"indicators":{"yawn":1}}'`},
		ResultPath: "indicators",
	}

	got, err := c.Classify(context.Background(), "m", "w")
	require.NoError(t, err)
	assert.Equal(t, 1, got.Score())
}

func TestCommandFailures(t *testing.T) {
	ctx := context.Background()

	_, err := (&Command{}).Classify(ctx, "m", "w")
	assert.Error(t, err)

	_, err = (&Command{Path: "sh", Args: []string{"-c", "echo model file missing >&2; exit 2"}}).Classify(ctx, "m", "w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model file missing")

	_, err = (&Command{Path: "sh", Args: []string{"-c", `echo '{"a":"tired"}'`}}).Classify(ctx, "m", "w")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `indicator "a"`)

	_, err = (&Command{Path: "fatigue-no-such-predictor"}).Classify(ctx, "m", "w")
	assert.Error(t, err)
}

func TestCommandTimeout(t *testing.T) {
	c := &Command{Path: "sh", Args: []string{"-c", "exec sleep 5"}, Timeout: 50 * time.Millisecond}

	start := time.Now()
	_, err := c.Classify(context.Background(), "m", "w")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}
