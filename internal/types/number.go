package types

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a float64 that also accepts legacy string encodings ("12.50",
// "12,50") and null when decoded. Unparseable or non-finite input decodes
// to zero so arithmetic downstream never sees NaN.
type Number float64

// ParseNumber coerces a loosely typed value into a Number.
func ParseNumber(v any) Number {
	switch n := v.(type) {
	case nil:
		return 0
	case Number:
		return finite(float64(n))
	case float64:
		return finite(n)
	case float32:
		return finite(float64(n))
	case int:
		return Number(n)
	case int32:
		return Number(n)
	case int64:
		return Number(n)
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0
		}
		return finite(f)
	case []byte:
		return parseNumberString(string(n))
	case string:
		return parseNumberString(n)
	default:
		return 0
	}
}

func parseNumberString(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f, err = strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
		if err != nil {
			return 0
		}
	}
	return finite(f)
}

func finite(f float64) Number {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return Number(f)
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*n = parseNumberString(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		*n = 0
		return nil
	}
	*n = finite(f)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n Number) MarshalJSON() ([]byte, error) {
	return strconv.AppendFloat(nil, float64(finite(float64(n))), 'f', -1, 64), nil
}
