/*
Package workers sizes worker pools from the CPUs actually available to the
process.

runtime.NumCPU reports the host's CPUs, which overstates what a container
with a CPU quota may use. GOMAXPROCS follows the quota (Go 1.19+), so the
helpers here scale from it:

	n := workers.ForIO(16, "AUDIT_WORKERS") // 2 per CPU, at most 16

An operator can pin the count with the named environment variable; the
limit still caps it.
*/
package workers
