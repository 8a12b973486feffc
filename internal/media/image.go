package media

import (
	"fmt"
	"image"
	"os"

	"movie-catalog/internal/logging"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	// MaxImageDimension is the largest edge decoded at full size.
	MaxImageDimension = 4096

	// MaxImagePixels caps the decoded pixel count (~80MB as RGBA).
	MaxImagePixels = 20_000_000
)

// ImageDimensions holds image width and height
type ImageDimensions struct {
	Width  int
	Height int
}

// GetImageDimensions reads the image header without decoding pixels.
func GetImageDimensions(path string) (*ImageDimensions, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	config, _, err := image.DecodeConfig(file)
	if err != nil {
		return nil, err
	}
	return &ImageDimensions{Width: config.Width, Height: config.Height}, nil
}

// constrainedSize scales width x height down to fit maxDimension and
// maxPixels, preserving aspect ratio.
func constrainedSize(width, height, maxDimension, maxPixels int) (int, int, bool) {
	if width <= maxDimension && height <= maxDimension && width*height <= maxPixels {
		return width, height, false
	}

	w, h := width, height
	if w > maxDimension || h > maxDimension {
		if w > h {
			w, h = maxDimension, height*maxDimension/width
		} else {
			w, h = width*maxDimension/height, maxDimension
		}
	}
	if w*h > maxPixels {
		scale := float64(maxPixels) / float64(w*h)
		w = int(float64(w) * scale)
		h = int(float64(h) * scale)
	}
	return max(w, 1), max(h, 1), true
}

// LoadImageConstrained decodes an image with EXIF orientation applied and
// downscales it when it exceeds the given limits.
func LoadImageConstrained(path string, maxDimension, maxPixels int) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}

	b := img.Bounds()
	w, h, constrained := constrainedSize(b.Dx(), b.Dy(), maxDimension, maxPixels)
	if !constrained {
		return img, nil
	}

	logging.Info("Constraining large image %s from %dx%d to %dx%d", path, b.Dx(), b.Dy(), w, h)
	return imaging.Resize(img, w, h, imaging.Lanczos), nil
}
