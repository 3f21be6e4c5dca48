package fatigue

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// Breakpoints separating the severity tiers.
const (
	MildBreakpoint   = 2
	SevereBreakpoint = 3
)

// Indicators maps indicator names reported by the model to their values.
// Values are non-negative integers, usually 0 or 1.
type Indicators map[string]int

// Score sums every indicator value.
func (in Indicators) Score() int {
	var s int
	for _, v := range in {
		s += v
	}
	return s
}

func (in Indicators) String() string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]string, 0, len(keys))
	for _, k := range keys {
		kv = append(kv, fmt.Sprintf("%s=%d", k, in[k]))
	}
	return strings.Join(kv, " ")
}

type Level int

const (
	Reset Level = iota
	Low
	Mid
	High
)

var levelNames = map[Level]string{
	Reset: "reset",
	Low:   "low",
	Mid:   "mid",
	High:  "high",
}

var levelLabels = map[Level]string{
	Reset: "lines cleared",
	Low:   "not fatigued",
	Mid:   "mild fatigue",
	High:  "severe fatigue",
}

// Grade maps a fatigue score onto exactly one of Low, Mid and High.
func Grade(score int) Level {
	switch {
	case score <= MildBreakpoint:
		return Low
	case score <= SevereBreakpoint:
		return Mid
	default:
		return High
	}
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Label is the human readable verdict for the level.
func (l Level) Label() string {
	if s, ok := levelLabels[l]; ok {
		return s
	}
	return l.String()
}

func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return Reset, fmt.Errorf("unknown level %q", s)
}

// Verdict is the outcome of one cycle.
type Verdict struct {
	Indicators Indicators
	Score      int
	Level      Level
	At         time.Time
}

func (v Verdict) String() string {
	return fmt.Sprintf("%s (score %d)", v.Level.Label(), v.Score)
}
