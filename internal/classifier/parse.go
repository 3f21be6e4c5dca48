// Package classifier invokes the external fatigue model and turns its
// answer into indicator values.
package classifier

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"fatigue/internal/fatigue"
)

// ParseIndicators reads the indicator object from a model response. When
// path is set it selects the object inside the document (gjson syntax).
// Values may be integral numbers, booleans or numeric strings, and must not
// be negative.
func ParseIndicators(data []byte, path string) (fatigue.Indicators, error) {
	data = bytes.TrimSpace(data)
	if !gjson.ValidBytes(data) {
		return nil, errors.New("response is not valid json")
	}

	res := gjson.ParseBytes(data)
	if path != "" {
		res = res.Get(path)
		if !res.Exists() {
			return nil, fmt.Errorf("no %q in response", path)
		}
	}
	if !res.IsObject() {
		return nil, fmt.Errorf("indicators must be a json object, got %s", res.Type)
	}

	out := fatigue.Indicators{}
	var perr error
	res.ForEach(func(key, value gjson.Result) bool {
		n, err := indicatorValue(value)
		if err != nil {
			perr = fmt.Errorf("indicator %q: %w", key.String(), err)
			return false
		}
		out[key.String()] = n
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return out, nil
}

func indicatorValue(v gjson.Result) (int, error) {
	var n int
	switch v.Type {
	case gjson.True:
		return 1, nil
	case gjson.False:
		return 0, nil
	case gjson.Number:
		f := v.Float()
		if f != math.Trunc(f) || math.IsInf(f, 0) {
			return 0, fmt.Errorf("%s is not an integer", v.Raw)
		}
		if math.Abs(f) > math.MaxInt32 {
			return 0, fmt.Errorf("%s is out of range", v.Raw)
		}
		n = int(f)
	case gjson.String:
		i, err := strconv.Atoi(strings.TrimSpace(v.Str))
		if err != nil {
			return 0, fmt.Errorf("%q is not an integer", v.Str)
		}
		n = i
	default:
		return 0, fmt.Errorf("unsupported value %s", v.Raw)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative value %d", n)
	}
	return n, nil
}

// lastJSON returns the json document in out. Predictors often print
// progress before the result, so the last line holding valid json wins when
// the whole output is not json.
func lastJSON(out []byte) []byte {
	trimmed := bytes.TrimSpace(out)
	if gjson.ValidBytes(trimmed) {
		return trimmed
	}
	lines := bytes.Split(trimmed, []byte("\n"))
	for i := len(lines) - 1; i >= 0; i-- {
		line := bytes.TrimSpace(lines[i])
		if len(line) > 0 && line[0] == '{' && gjson.ValidBytes(line) {
			return line
		}
	}
	return trimmed
}
