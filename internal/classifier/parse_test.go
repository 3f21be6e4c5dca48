package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatigue/internal/fatigue"
)

func TestParseIndicators(t *testing.T) {
	cases := []struct {
		name  string
		in    string
		path  string
		want  fatigue.Indicators
		score int
	}{
		{"scenario a", `{"a":0,"b":0,"c":1}`, "", fatigue.Indicators{"a": 0, "b": 0, "c": 1}, 1},
		{"scenario b", `{"a":1,"b":1,"c":1}`, "", fatigue.Indicators{"a": 1, "b": 1, "c": 1}, 3},
		{"scenario c", `{"a":1,"b":1,"c":1,"d":1}`, "", fatigue.Indicators{"a": 1, "b": 1, "c": 1, "d": 1}, 4},
		{"empty", `{}`, "", fatigue.Indicators{}, 0},
		{"integral floats", `{"yawn":1.0,"slur":0.0}`, "", fatigue.Indicators{"yawn": 1, "slur": 0}, 1},
		{"booleans", `{"yawn":true,"slur":false}`, "", fatigue.Indicators{"yawn": 1, "slur": 0}, 1},
		{"numeric strings", `{"yawn":"1"," slur":" 2 "}`, "", fatigue.Indicators{"yawn": 1, " slur": 2}, 3},
		{"above one", `{"pauses":3}`, "", fatigue.Indicators{"pauses": 3}, 3},
		{"nested", `{"status":"ok","result":{"x":1,"y":1}}`, "result", fatigue.Indicators{"x": 1, "y": 1}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseIndicators([]byte(tc.in), tc.path)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.score, got.Score())
		})
	}
}

func TestParseIndicatorsRejects(t *testing.T) {
	cases := map[string]string{
		"not json":       `model crashed`,
		"array":          `[1,0,1]`,
		"number":         `3`,
		"fraction":       `{"a":0.5}`,
		"negative":       `{"a":-1}`,
		"negative str":   `{"a":"-2"}`,
		"word":           `{"a":"yes"}`,
		"null":           `{"a":null}`,
		"nested object":  `{"a":{"b":1}}`,
		"truncated json": `{"a":1,`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseIndicators([]byte(in), "")
			assert.Error(t, err)
		})
	}

	_, err := ParseIndicators([]byte(`{"a":1}`), "result")
	assert.ErrorContains(t, err, `no "result"`)
}

func TestLastJSON(t *testing.T) {
	out := []byte("loading model\nfeatures: 42\n{\"a\":1}\n")
	assert.Equal(t, `{"a":1}`, string(lastJSON(out)))

	out = []byte("  {\"a\":1}\n")
	assert.Equal(t, `{"a":1}`, string(lastJSON(out)))

	out = []byte("no json here")
	assert.Equal(t, "no json here", string(lastJSON(out)))
}
