package workers

import (
	"os"
	"runtime"
	"strconv"
)

// Count returns a worker count of multiplier per usable CPU, at least one
// and at most limit (0 means no limit). GOMAXPROCS already reflects the
// container CPU quota.
//
// When envKey is non-empty and names a positive integer, that value is used
// instead of the computed count; the limit still applies.
func Count(multiplier float64, limit int, envKey string) int {
	if envKey != "" {
		if override := os.Getenv(envKey); override != "" {
			if count, err := strconv.Atoi(override); err == nil && count > 0 {
				return capAt(count, limit)
			}
		}
	}

	workers := int(float64(runtime.GOMAXPROCS(0)) * multiplier)
	if workers < 1 {
		workers = 1
	}
	return capAt(workers, limit)
}

func capAt(n, limit int) int {
	if limit > 0 && n > limit {
		return limit
	}
	return n
}

// ForCPU returns worker count for CPU-bound tasks (1 per CPU).
func ForCPU(limit int, envKey string) int {
	return Count(1.0, limit, envKey)
}

// ForIO returns worker count for I/O-bound tasks such as stat calls
// against network storage (2 per CPU).
func ForIO(limit int, envKey string) int {
	return Count(2.0, limit, envKey)
}
