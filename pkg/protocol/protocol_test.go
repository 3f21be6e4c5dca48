package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fatigue/internal/fatigue"
)

func TestParse(t *testing.T) {
	msg, err := Parse("ALL:set:fatigue:HIGH:4:FATIGUE\n")
	require.NoError(t, err)
	assert.Equal(t, &Message{
		To:   "ALL",
		Verb: "SET",
		Noun: "FATIGUE",
		Args: []string{"HIGH", "4"},
		From: "FATIGUE",
	}, msg)
	assert.Equal(t, "ALL:SET:FATIGUE:HIGH:4:FATIGUE", msg.String())

	msg, err = Parse("VERTEX:ON:LAMP:1F")
	require.NoError(t, err)
	assert.Empty(t, msg.Args)
	assert.Equal(t, "1F", msg.From)
}

func TestParseRejects(t *testing.T) {
	for _, line := range []string{
		"",
		"ALL:SET:FATIGUE",
		"ALL:SET:FATIGUE:HIGH 4:X",
		"ALL:SET:FATIGUE:HI/GH:X",
		"A$L:SET:FATIGUE:X",
		"ALL:SET:FATIGUE:",
	} {
		_, err := Parse(line)
		assert.Error(t, err, "%q", line)
	}
}

func TestVerdictMessage(t *testing.T) {
	cases := []struct {
		v    fatigue.Verdict
		want string
	}{
		{fatigue.Verdict{Level: fatigue.Low, Score: 1}, "ALL:SET:FATIGUE:LOW:1:CABIN"},
		{fatigue.Verdict{Level: fatigue.Mid, Score: 3}, "ALL:SET:FATIGUE:MID:3:CABIN"},
		{fatigue.Verdict{Level: fatigue.High, Score: 4}, "ALL:SET:FATIGUE:HIGH:4:CABIN"},
	}
	for _, tc := range cases {
		msg := VerdictMessage("CABIN", tc.v)
		require.NoError(t, msg.Validate())
		assert.Equal(t, tc.want, msg.String())
	}
}
