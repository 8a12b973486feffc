package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the kind of file the catalog cares about.
type FileType string

const (
	// FileTypeVideo is a movie file that the scanner catalogs.
	FileTypeVideo FileType = "video"
	// FileTypeImage is an image accepted as a replacement preview.
	FileTypeImage FileType = "image"
	// FileTypeOther is anything the catalog ignores.
	FileTypeOther FileType = "other"
)

// VideoExtensions is the authoritative list of movie extensions, used for
// both scanning and ingest validation.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mkv":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".3gp":  true,
}

// ImageExtensions lists the formats a replacement preview may be decoded from.
var ImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".webp": true,
}

// MimeTypes maps file extensions to their MIME types.
var MimeTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",

	".mp4":  "video/mp4",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".wmv":  "video/x-ms-wmv",
	".flv":  "video/x-flv",
	".webm": "video/webm",
	".m4v":  "video/x-m4v",
	".3gp":  "video/3gpp",
}

// Ext returns the lower-cased extension of name, including the leading dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// GetFileType returns the FileType for a given file extension.
// The extension is matched case-insensitively and must include the leading dot.
func GetFileType(ext string) FileType {
	ext = strings.ToLower(ext)
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	if ImageExtensions[ext] {
		return FileTypeImage
	}
	return FileTypeOther
}

// GetMimeType returns the MIME type for a given file extension, or
// "application/octet-stream" when it is not recognized.
func GetMimeType(ext string) string {
	if mime, ok := MimeTypes[strings.ToLower(ext)]; ok {
		return mime
	}
	return "application/octet-stream"
}

// IsVideoFile reports whether name has a supported movie extension.
func IsVideoFile(name string) bool {
	return VideoExtensions[Ext(name)]
}

// IsImageFile reports whether name has an extension usable as a preview source.
func IsImageFile(name string) bool {
	return ImageExtensions[Ext(name)]
}
