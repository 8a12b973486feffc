// Package mediatypes holds the file-type tables shared by the scanner, the
// ingest path and the HTTP layer.
//
// It has no dependencies beyond the standard library so any package can
// import it without creating cycles.
//
// # Extension Detection
//
// Extensions are compared case-insensitively:
//
//	if mediatypes.IsVideoFile(path) {
//	    // cataloged by the scanner
//	}
//
// VideoExtensions is the single source of truth for what counts as a movie:
// .mp4 .avi .mkv .mov .wmv .flv .webm .m4v .3gp. Files with any other
// extension are never matched and never reported as removed.
//
// # MIME Types
//
// Use GetMimeType when serving files:
//
//	mimeType := mediatypes.GetMimeType(mediatypes.Ext(name)) // e.g. "video/mp4"
package mediatypes
