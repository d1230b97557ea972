// Package memory sets the Go soft memory limit (GOMEMLIMIT) from the
// container's memory limit.
//
// Without a soft limit the garbage collector only reacts to heap growth
// relative to the last collection, so a burst of concurrent downloads can
// push a container past its hard limit before the heap is collected. With
// the limit set to a share of the container limit, the collector runs
// harder as the process approaches it.
//
// The limit is taken from GOMEMLIMIT when set, then MEMORY_LIMIT, then the
// cgroup v2 memory.max file. MEMORY_RATIO scales the container limit.
package memory
