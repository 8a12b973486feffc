// Package logging provides the leveled logger used across the catalog
// service and the catalogctl tool.
//
// Levels, from most to least verbose:
//   - DEBUG: per-file scan decisions and external tool invocations
//   - INFO: lifecycle and scan summaries
//   - WARN: degraded assets and failed best-effort cleanup
//   - ERROR: failed operations
//   - FATAL: startup failures that terminate the process
//
// The level comes from DEBUG or LOG_LEVEL in the environment and can be
// overridden at startup with SetLevel once configuration is loaded.
package logging
