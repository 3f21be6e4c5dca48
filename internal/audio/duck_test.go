package audio

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sinkInputs = `Sink Input #41
	Driver: protocol-native.c
	Volume: front-left: 65536 / 100% / 0.00 dB,   front-right: 65536 / 100% / 0.00 dB
	Properties:
		application.name = "Firefox"
Sink Input #42
	Volume: front-left: 52429 /  80% / -5.81 dB
	Properties:
		application.name = "fatigue"
Sink Input #x
	Volume: 10%
`

type fakePactl struct {
	list string
	sets []string
	err  error
}

func (p *fakePactl) run(_ context.Context, args ...string) ([]byte, error) {
	if p.err != nil {
		return nil, p.err
	}
	if args[0] == "list" {
		return []byte(p.list), nil
	}
	p.sets = append(p.sets, strings.Join(args[1:], " "))
	return nil, nil
}

func TestParseSinkInputs(t *testing.T) {
	got := parseSinkInputs(sinkInputs)
	assert.Equal(t, []streamInfo{
		{ID: 41, Volume: 100, AppName: "Firefox"},
		{ID: 42, Volume: 80, AppName: "fatigue"},
	}, got)
	assert.Nil(t, parseSinkInputs("no sinks"))
}

func TestDuckAndRestore(t *testing.T) {
	p := &fakePactl{list: sinkInputs}
	d := NewDucker([]string{"fatigue"}, 10)
	d.pactl = p.run
	ctx := context.Background()

	require.NoError(t, d.DuckOthers(ctx, 0.2, 0))
	assert.Equal(t, []string{"41 20%"}, p.sets)

	// Second duck is a no-op while active.
	require.NoError(t, d.DuckOthers(ctx, 0.2, 0))
	assert.Len(t, p.sets, 1)

	p.list = strings.Replace(sinkInputs, "100%", "20%", 1)
	require.NoError(t, d.UnduckOthers(ctx, 0))
	assert.Equal(t, []string{"41 20%", "41 100%"}, p.sets)
}

func TestDuckRespectsFloor(t *testing.T) {
	p := &fakePactl{list: sinkInputs}
	d := NewDucker(nil, 30)
	d.pactl = p.run

	require.NoError(t, d.DuckOthers(context.Background(), 0.1, 0))
	assert.Equal(t, []string{"41 30%", "42 30%"}, p.sets)
}

func TestDuckedSourceCapturesWhenDuckingFails(t *testing.T) {
	d := NewDucker(nil, 0)
	d.pactl = (&fakePactl{err: errors.New("pactl: not found")}).run

	src := &DuckedSource{Source: &fakeSource{}, Ducker: d, Factor: 0.3, Fade: time.Millisecond}
	f := Format{SampleRate: 8000, Channels: 1, Duration: 10 * time.Millisecond}

	out, err := src.Capture(context.Background(), f)
	require.NoError(t, err)
	assert.Len(t, out, f.Samples())
}
