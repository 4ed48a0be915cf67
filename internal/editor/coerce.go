package editor

import (
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"

	"github.com/arcanaoficial/arcana-server/internal/domain"
)

var decimalRe = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?$`)

// CoerceValue turns a form field into a typed value, trying in order:
//
//  1. a JSON object or array literal ("{...}" or "[...]"); unparsable
//     literals stay strings
//  2. the literals true and false
//  3. a finite number
//  4. the string itself
func CoerceValue(raw string) domain.Value {
	s := strings.TrimSpace(raw)

	if (strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}")) ||
		(strings.HasPrefix(s, "[") && strings.HasSuffix(s, "]")) {
		if v, err := domain.ParseJSON([]byte(s)); err == nil {
			return v
		}
		return domain.NewString(s)
	}

	switch s {
	case "true":
		return domain.NewBool(true)
	case "false":
		return domain.NewBool(false)
	}

	if n, ok := parseNumber(s); ok {
		return domain.NewNumber(n)
	}
	return domain.NewString(s)
}

// parseNumber accepts the numeric literal forms a browser's Number()
// accepts, and rejects anything that is not finite.
func parseNumber(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			if s[2] == '+' || s[2] == '-' {
				return 0, false
			}
			i, ok := new(big.Int).SetString(s[2:], base)
			if !ok {
				return 0, false
			}
			f, _ := new(big.Float).SetInt(i).Float64()
			return f, !math.IsInf(f, 0)
		}
	}

	if !decimalRe.MatchString(s) {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
