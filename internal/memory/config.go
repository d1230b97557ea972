package memory

import (
	"math"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"media-catalog/internal/logging"
)

// DefaultRatio is the share of the container memory limit given to the Go
// heap. The rest covers goroutine stacks, the mongo driver's buffers and
// the kernel page cache used while streaming assets.
const DefaultRatio = 0.9

// cgroupMemoryMax is the cgroup v2 memory limit of the current container.
const cgroupMemoryMax = "/sys/fs/cgroup/memory.max"

// Source names where a memory limit came from.
type Source string

const (
	SourceGOMEMLIMIT Source = "GOMEMLIMIT"
	SourceEnv        Source = "MEMORY_LIMIT"
	SourceCgroup     Source = "cgroup"
	SourceNone       Source = "none"
)

// Result describes the outcome of ConfigureFromEnv.
type Result struct {
	Source Source
	// ContainerLimit is the container memory limit in bytes (0 if unknown)
	ContainerLimit int64
	// GoMemLimit is the soft heap limit in effect in bytes (0 if none)
	GoMemLimit int64
	// Ratio is the share of ContainerLimit applied (0 if not applicable)
	Ratio float64
}

// Configured reports whether a soft memory limit is in effect.
func (r Result) Configured() bool {
	return r.GoMemLimit > 0
}

// ConfigureFromEnv sets the Go soft memory limit. Call it first in main.
//
// Precedence:
//   - GOMEMLIMIT: honoured as set by the runtime, nothing is changed
//   - MEMORY_LIMIT: container limit in bytes (Kubernetes Downward API)
//   - the cgroup v2 memory.max of the container
//
// MEMORY_RATIO (0 < r <= 1, default 0.9) scales the container limit.
func ConfigureFromEnv() Result {
	return configure(os.Getenv, func() (int64, bool) {
		return readCgroupLimit(cgroupMemoryMax)
	}, debug.SetMemoryLimit)
}

func configure(getenv func(string) string, cgroup func() (int64, bool), setLimit func(int64) int64) Result {
	if v := getenv("GOMEMLIMIT"); v != "" {
		result := Result{Source: SourceGOMEMLIMIT}
		if limit := setLimit(-1); limit > 0 && limit < math.MaxInt64 {
			result.GoMemLimit = limit
		}
		logging.Info("GOMEMLIMIT set via environment: %s", v)
		return result
	}

	source := SourceEnv
	containerLimit, ok := envLimit(getenv("MEMORY_LIMIT"))
	if !ok {
		source = SourceCgroup
		containerLimit, ok = cgroup()
	}
	if !ok {
		logging.Debug("No container memory limit found, GOMEMLIMIT not configured")
		return Result{Source: SourceNone}
	}

	ratio := parseRatio(getenv("MEMORY_RATIO"))
	goMemLimit := int64(float64(containerLimit) * ratio)
	setLimit(goMemLimit)

	logging.Info("Configured GOMEMLIMIT: %s (%.0f%% of %s limit from %s)",
		formatBytes(goMemLimit), ratio*100, formatBytes(containerLimit), source)

	return Result{
		Source:         source,
		ContainerLimit: containerLimit,
		GoMemLimit:     goMemLimit,
		Ratio:          ratio,
	}
}

func envLimit(v string) (int64, bool) {
	if v == "" {
		return 0, false
	}
	limit, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil || limit <= 0 {
		logging.Warn("Ignoring MEMORY_LIMIT %q: not a positive byte count", v)
		return 0, false
	}
	return limit, true
}

func parseRatio(v string) float64 {
	if v == "" {
		return DefaultRatio
	}
	ratio, err := strconv.ParseFloat(v, 64)
	if err != nil || ratio <= 0 || ratio > 1 {
		logging.Warn("MEMORY_RATIO %q must be in (0, 1], using %.2f", v, DefaultRatio)
		return DefaultRatio
	}
	return ratio
}

// readCgroupLimit reads a cgroup v2 memory.max file. "max" means no limit.
func readCgroupLimit(path string) (int64, bool) {
	data, err := os.ReadFile(path) //nolint:gosec // fixed cgroup path
	if err != nil {
		return 0, false
	}
	v := strings.TrimSpace(string(data))
	if v == "max" {
		return 0, false
	}
	limit, err := strconv.ParseInt(v, 10, 64)
	if err != nil || limit <= 0 {
		return 0, false
	}
	return limit, true
}

// formatBytes formats bytes into a human-readable string
func formatBytes(b int64) string {
	const unit = 1024
	if b < unit {
		return strconv.FormatInt(b, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := b / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return strconv.FormatFloat(float64(b)/float64(div), 'f', 1, 64) + " " + string("KMGTPE"[exp]) + "iB"
}
