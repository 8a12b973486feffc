// Package pathmatch turns filesystem paths into canonical comparison keys.
//
// Every equality check between a discovered file and a catalog entry goes
// through Policy.Key, never raw string comparison. The case-folding choice
// is explicit: HostPolicy folds on Windows and macOS, and the
// PATH_CASE_FOLD setting can force either behaviour.
package pathmatch
