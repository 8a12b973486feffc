// Package probe reads duration and frame size from movie files with ffprobe.
//
// Failures never escape as anything but an error value next to a zero
// Result; the scanner records the error as a degraded asset and carries on
// with duration 0 and resolution "Unknown".
package probe
