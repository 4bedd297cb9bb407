package mediahost

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// Compressor shells out to ffmpeg/ffprobe to shrink videos before hosting.
// Target bitrate is a percentage of the source bitrate, split 75/25 between
// the video and audio streams, scaled to 720p.
type Compressor struct {
	FFmpegPath  string
	FFprobePath string
	Percent     int
}

func NewCompressor(ffmpegPath, ffprobePath string, percent int) *Compressor {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	if percent <= 0 || percent > 100 {
		percent = 60
	}
	return &Compressor{
		FFmpegPath:  ffmpegPath,
		FFprobePath: ffprobePath,
		Percent:     percent,
	}
}

// IsVideo reports whether a MIME type names a video. Non-video uploads skip
// compression entirely.
func IsVideo(contentType string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(contentType)), "video/")
}

// TargetBitrates computes the compressed video and audio bitrates from the
// source's total bitrate.
func (c *Compressor) TargetBitrates(totalBitrate int64) (videoBitrate, audioBitrate int64) {
	target := totalBitrate * int64(c.Percent) / 100
	videoBitrate = target * 75 / 100
	audioBitrate = target * 25 / 100
	return videoBitrate, audioBitrate
}

// probeBitrate reads the container bitrate in bits per second.
func (c *Compressor) probeBitrate(ctx context.Context, path string) (int64, error) {
	cmd := exec.CommandContext(ctx, c.FFprobePath,
		"-v", "error",
		"-show_entries", "format=bit_rate",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)

	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	bitrate, err := strconv.ParseInt(strings.TrimSpace(out.String()), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparseable bitrate %q", path, out.String())
	}
	return bitrate, nil
}

// Compress transcodes the input to an h264/aac mp4 next to the original and
// returns the output path.
func (c *Compressor) Compress(ctx context.Context, inputPath string) (string, error) {
	bitrate, err := c.probeBitrate(ctx, inputPath)
	if err != nil {
		return "", err
	}

	videoBitrate, audioBitrate := c.TargetBitrates(bitrate)

	ext := filepath.Ext(inputPath)
	outputPath := strings.TrimSuffix(inputPath, ext) + "-compressed.mp4"

	cmd := exec.CommandContext(ctx, c.FFmpegPath,
		"-i", inputPath,
		"-c:v", "libx264",
		"-b:v", fmt.Sprintf("%d", videoBitrate),
		"-c:a", "aac",
		"-b:a", fmt.Sprintf("%d", audioBitrate),
		"-vf", "scale=1280:720",
		"-y",
		outputPath,
	)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg %s: %w: %s", inputPath, err, stderr.String())
	}

	return outputPath, nil
}
