package circuit

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// decimalRegex matches the numeric literals QASM allows: no nan, inf or hex.
var decimalRegex = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)(e[+-]?\d+)?$`)

// ParseAngle evaluates a QASM parameter expression.
//
// Supported forms are plain numbers and products/quotients of numbers and
// pi, with an optional leading sign: "0.5", "pi", "-pi/2", "3*pi/4",
// "2pi", "pi*0.25", "1e-3".
func ParseAngle(expr string) (float64, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return 0, fmt.Errorf("empty parameter")
	}
	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("parameter %q: missing operand", expr)
	}

	value := 1.0
	op := byte('*')
	for len(s) > 0 {
		end := strings.IndexAny(s, "*/")
		term := s
		if end >= 0 {
			term = s[:end]
		}
		v, err := parseTerm(term)
		if err != nil {
			return 0, fmt.Errorf("parameter %q: %w", expr, err)
		}
		if op == '*' {
			value *= v
		} else {
			if v == 0 {
				return 0, fmt.Errorf("parameter %q: division by zero", expr)
			}
			value /= v
		}
		if end < 0 {
			break
		}
		op = s[end]
		s = s[end+1:]
		if s == "" {
			return 0, fmt.Errorf("parameter %q: dangling operator", expr)
		}
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("parameter %q: not finite", expr)
	}
	return sign * value, nil
}

// parseTerm parses a number, "pi", or a number immediately followed by "pi".
func parseTerm(term string) (float64, error) {
	if term == "" {
		return 0, fmt.Errorf("missing operand")
	}
	coeff := 1.0
	if strings.HasSuffix(term, "pi") {
		prefix := strings.TrimSuffix(term, "pi")
		if prefix != "" {
			c, err := parseDecimal(prefix)
			if err != nil {
				return 0, fmt.Errorf("bad coefficient %q", prefix)
			}
			coeff = c
		}
		return coeff * math.Pi, nil
	}
	v, err := parseDecimal(term)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", term)
	}
	return v, nil
}

// parseDecimal parses a finite decimal literal.
func parseDecimal(s string) (float64, error) {
	if !decimalRegex.MatchString(s) {
		return 0, fmt.Errorf("not a decimal literal")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	return v, nil
}

// piFractions are the multiples of pi FormatAngle prints symbolically.
var piFractions = []struct {
	value   float64
	display string
}{
	{2 * math.Pi, "2*pi"},
	{3 * math.Pi / 2, "3*pi/2"},
	{math.Pi, "pi"},
	{3 * math.Pi / 4, "3*pi/4"},
	{2 * math.Pi / 3, "2*pi/3"},
	{math.Pi / 2, "pi/2"},
	{math.Pi / 3, "pi/3"},
	{math.Pi / 4, "pi/4"},
	{math.Pi / 6, "pi/6"},
	{math.Pi / 8, "pi/8"},
}

// FormatAngle prints an angle, preferring pi notation for common fractions.
func FormatAngle(v float64) string {
	for _, pf := range piFractions {
		switch {
		case math.Abs(v-pf.value) < 1e-10:
			return pf.display
		case math.Abs(v+pf.value) < 1e-10:
			return "-" + pf.display
		}
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
