package sweep

import (
	"regexp"
	"strconv"
)

var (
	finalGoalPattern = regexp.MustCompile(`(?i)Final goal function value:\s*([+-]?[0-9.eE+-]+)`)
	fallbackPattern  = regexp.MustCompile(`(?i)Goal function value[^:]*:\s*([+-]?[0-9.eE+-]+)`)
)

// ParseSweepLine extracts the solver's final function value from one log
// line, trying the primary "Final goal function value: <number>" pattern
// first and a looser "Goal function value ... : <number>" fallback second,
// both case-insensitive. Returns ok=false if neither pattern matches.
func ParseSweepLine(line string) (float64, bool) {
	if m := finalGoalPattern.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	if m := fallbackPattern.FindStringSubmatch(line); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
