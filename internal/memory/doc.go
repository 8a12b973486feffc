// Package memory keeps the server inside its container memory limit.
//
// [ConfigureFromEnv] derives GOMEMLIMIT from MEMORY_LIMIT and MEMORY_RATIO
// (default 0.85) unless GOMEMLIMIT is already set. The remaining headroom is
// for the ffprobe and ffmpeg processes and for libvips.
//
// A [Monitor] samples heap usage and pauses scan derivation while usage is
// above its pause threshold, resuming once it drops below the resume
// threshold. It is handed to the catalog as its throttle:
//
//	monitor := memory.NewMonitor(memory.DefaultConfig())
//	monitor.Start()
//	defer monitor.Stop()
//
// In Kubernetes, pass the limit through the Downward API:
//
//	env:
//	- name: MEMORY_LIMIT
//	  valueFrom:
//	    resourceFieldRef:
//	      resource: limits.memory
package memory
