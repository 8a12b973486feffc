package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"movie-catalog/internal/filesystem"
	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"

	"github.com/disintegration/imaging"
)

const (
	// PreviewSize bounds both edges of a generated preview.
	PreviewSize = 300
	// PreviewQuality is the JPEG quality of generated previews.
	PreviewQuality = 85
	// PreviewExt is the extension of generated preview files.
	PreviewExt = ".jpg"

	// seekFraction positions the extracted frame within the movie.
	seekFraction = 0.1
)

// ErrNoFrame is returned when ffmpeg produced no image data.
var ErrNoFrame = errors.New("no frame extracted")

// PreviewGenerator renders bounded JPEG previews from movies and images.
type PreviewGenerator struct {
	ffmpegPath string
	useVips    bool
}

// NewPreviewGenerator creates a generator. ffmpegPath defaults to "ffmpeg"
// on PATH. useVips enables libvips decoding for image sources when it has
// been initialized with InitVips.
func NewPreviewGenerator(ffmpegPath string, useVips bool) *PreviewGenerator {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &PreviewGenerator{ffmpegPath: ffmpegPath, useVips: useVips}
}

// FFmpegAvailable reports whether the ffmpeg binary can be found.
func (g *PreviewGenerator) FFmpegAvailable() bool {
	_, err := exec.LookPath(g.ffmpegPath)
	return err == nil
}

// FromVideo writes a preview of the frame at 10% of durationSeconds to dst,
// falling back to the first frame when seeking fails or the duration is
// unknown.
func (g *PreviewGenerator) FromVideo(ctx context.Context, src, dst string, durationSeconds int64) (err error) {
	start := time.Now()
	defer func() { observePreview("video", start, err) }()

	img, err := g.extractFrame(ctx, src, seekOffset(durationSeconds))
	if err != nil {
		return err
	}
	return writePreview(img, dst)
}

// FromImage writes a preview of the image at src to dst.
func (g *PreviewGenerator) FromImage(_ context.Context, src, dst string) (err error) {
	start := time.Now()
	defer func() { observePreview("image", start, err) }()

	if _, err = GetImageDimensions(src); err != nil {
		return fmt.Errorf("read image header %s: %w", src, err)
	}

	var img image.Image
	if g.useVips && IsVipsAvailable() {
		img, err = LoadImageWithVips(src, PreviewSize, PreviewSize)
		if err != nil {
			logging.Debug("vips could not load %s, falling back: %v", filepath.Base(src), err)
		}
	}
	if img == nil {
		img, err = LoadImageConstrained(src, MaxImageDimension, MaxImagePixels)
		if err != nil {
			return fmt.Errorf("decode %s: %w", src, err)
		}
	}
	return writePreview(img, dst)
}

func (g *PreviewGenerator) extractFrame(ctx context.Context, src string, offset float64) (image.Image, error) {
	if offset > 0 {
		img, err := g.runFFmpeg(ctx, src, offset)
		if err == nil {
			return img, nil
		}
		logging.Debug("Frame at %.1fs failed for %s, using first frame: %v", offset, src, err)
	}
	return g.runFFmpeg(ctx, src, 0)
}

func (g *PreviewGenerator) runFFmpeg(ctx context.Context, src string, offset float64) (image.Image, error) {
	args := []string{"-v", "error"}
	if offset > 0 {
		args = append(args, "-ss", strconv.FormatFloat(offset, 'f', 3, 64))
	}
	args = append(args,
		"-i", src,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "png",
		"-",
	)

	cmd := exec.CommandContext(ctx, g.ffmpegPath, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg failed: %w, stderr: %s", err, stderr.String())
	}
	if stdout.Len() == 0 {
		return nil, fmt.Errorf("%w from %s", ErrNoFrame, src)
	}

	img, err := imaging.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("decode ffmpeg output: %w", err)
	}
	return img, nil
}

// seekOffset returns the frame position in seconds, or 0 for the first frame.
func seekOffset(durationSeconds int64) float64 {
	if durationSeconds <= 0 {
		return 0
	}
	return float64(durationSeconds) * seekFraction
}

// writePreview fits img inside PreviewSize x PreviewSize, preserving aspect
// ratio and never upscaling, and writes it as JPEG.
func writePreview(img image.Image, dst string) error {
	thumb := imaging.Fit(img, PreviewSize, PreviewSize, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(PreviewQuality)); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}
	if err := filesystem.WriteFileAtomic(dst, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write preview %s: %w", dst, err)
	}
	logging.Debug("Preview written: %s (%dx%d)", dst, thumb.Bounds().Dx(), thumb.Bounds().Dy())
	return nil
}

func observePreview(source string, start time.Time, err error) {
	metrics.PreviewGenerationDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PreviewGenerationsTotal.WithLabelValues(source, status).Inc()
}
