package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"movie-catalog/internal/logging"
	"movie-catalog/internal/metrics"
)

// Result holds the technical metadata the catalog records for a movie.
// The zero value is what callers fall back to when probing fails.
type Result struct {
	DurationSeconds int64
	Width           int
	Height          int
}

// Resolution formats the dimensions as "WxH", or "Unknown" when either is zero.
func (r Result) Resolution() string {
	if r.Width <= 0 || r.Height <= 0 {
		return "Unknown"
	}
	return fmt.Sprintf("%dx%d", r.Width, r.Height)
}

// Prober extracts duration and dimensions from a media file.
type Prober interface {
	Probe(ctx context.Context, path string) (Result, error)
}

// ErrNoVideoStream is returned when the file has no decodable video stream.
var ErrNoVideoStream = errors.New("no video stream")

// FFProbe runs the ffprobe binary.
type FFProbe struct {
	// Binary is the ffprobe executable; "ffprobe" is looked up on PATH when empty.
	Binary string
}

// NewFFProbe creates a prober using the given binary.
func NewFFProbe(binary string) *FFProbe {
	if binary == "" {
		binary = "ffprobe"
	}
	return &FFProbe{Binary: binary}
}

// Available reports whether the ffprobe binary can be found.
func (p *FFProbe) Available() bool {
	_, err := exec.LookPath(p.Binary)
	return err == nil
}

// Probe returns the first video stream's duration and dimensions. On any
// failure it returns the zero Result together with the reason.
func (p *FFProbe) Probe(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	res, err := p.run(ctx, path)
	metrics.ProbeDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProbeTotal.WithLabelValues("error").Inc()
		return Result{}, err
	}
	metrics.ProbeTotal.WithLabelValues("success").Inc()
	logging.Debug("Probed %s: %ds %s", path, res.DurationSeconds, res.Resolution())
	return res, nil
}

func (p *FFProbe) run(ctx context.Context, path string) (Result, error) {
	cmd := exec.CommandContext(ctx, p.Binary,
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=duration,width,height:format=duration",
		"-of", "json",
		path,
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return Result{}, fmt.Errorf("ffprobe not found (is FFmpeg installed and on PATH?): %w", err)
		}
		return Result{}, fmt.Errorf("ffprobe failed for %s: %w - %s", path, err, strings.TrimSpace(stderr.String()))
	}

	return parseOutput(stdout.Bytes())
}

type ffprobeOutput struct {
	Streams []struct {
		Duration string `json:"duration"`
		Width    int    `json:"width"`
		Height   int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// parseOutput decodes ffprobe JSON. Stream duration wins; the container
// duration is used when the stream carries none (common for Matroska).
func parseOutput(data []byte) (Result, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return Result{}, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return Result{}, ErrNoVideoStream
	}

	stream := out.Streams[0]
	res := Result{
		Width:  max(stream.Width, 0),
		Height: max(stream.Height, 0),
	}

	duration := parseSeconds(stream.Duration)
	if duration == 0 {
		duration = parseSeconds(out.Format.Duration)
	}
	res.DurationSeconds = duration
	return res, nil
}

// parseSeconds truncates a decimal seconds string; anything unparsable is 0.
func parseSeconds(s string) int64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return int64(f)
}
