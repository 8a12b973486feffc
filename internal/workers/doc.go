/*
Package workers sizes worker pools in containerized environments.

runtime.NumCPU reports the host's CPUs even when a cgroup limits the
container to a few of them, while GOMAXPROCS follows the limit (Go 1.19+).
Count derives worker counts from GOMAXPROCS:

	// New files in a scan are probed by at most 4 workers.
	n := workers.ForMixed(4)

Set SCAN_WORKERS to a positive integer to fix the count, for example to 1
on a slow network share:

	SCAN_WORKERS=1 ./movie-catalog

The limit passed by the caller still applies to the override.
*/
package workers
