// Package catalog keeps the movie catalog in step with a watched directory.
//
// A Service holds the ordered list of entries in memory and persists it
// through a Store after every change. Scan reconciles the catalog against
// the files on disk: entries whose file is still present are carried
// forward unchanged, new files are probed and given a preview image, and
// entries whose file disappeared are removed together with their preview.
//
// Files are matched by a canonical path key (see package pathmatch), so
// the same file spelled with different separators or, on case-insensitive
// hosts, different case is recognised as one file.
//
// Every destructive file operation runs only after the catalog change that
// made it necessary has been saved. Cleanup failures are logged and
// reported but never roll the catalog back.
//
// Service performs no locking. Callers that share one across goroutines
// must serialize access.
package catalog
