// Package media renders catalog previews.
//
// PreviewGenerator produces JPEG previews no larger than 300x300 at
// quality 85:
//   - FromVideo extracts a frame with ffmpeg at 10% of the running time,
//     falling back to the first frame.
//   - FromImage decodes a user-supplied image, through libvips when it has
//     been initialized and through imaging otherwise.
package media
