package fitcommon

import (
	"fmt"
	"strconv"
	"strings"
)

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp maps t in [0, 1] onto [lo, hi].
func Lerp(t, lo, hi float64) float64 {
	return lo + t*(hi-lo)
}

// Norm maps v in [lo, hi] back onto [0, 1].
func Norm(v, lo, hi float64) float64 {
	if hi == lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// ParseWorkers parses a worker-count flag: a positive integer, or "auto"
// (returned as 0) to let the caller pick GOMAXPROCS.
func ParseWorkers(raw string) (int, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	if v == "" {
		return 0, fmt.Errorf("empty value (use integer >= 1 or 'auto')")
	}
	if v == "auto" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q (use integer >= 1 or 'auto')", raw)
	}
	if n < 1 {
		return 0, fmt.Errorf("%d (must be >= 1 or 'auto')", n)
	}
	return n, nil
}
