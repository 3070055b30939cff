package processor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type ffmpegExtractor struct {
	binPath string
}

func NewFFmpegExtractor(binPath string) ports.AudioExtractor {
	return &ffmpegExtractor{binPath: binPath}
}

// ExtractAudio strips the video stream and resamples the first audio stream
// to mono 16 kHz 16-bit PCM WAV, the input format the recognition model
// expects. The tool's diagnostic output becomes the error message on
// failure.
func (p *ffmpegExtractor) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	cmd := exec.CommandContext(ctx, p.binPath, buildExtractArgs(inputPath, outputPath)...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg error: %w: %s", err, lastLines(string(output), 5))
	}
	return nil
}

func buildExtractArgs(inputPath, outputPath string) []string {
	return []string{
		"-hide_banner",
		"-nostdin",
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-c:a", "pcm_s16le",
		outputPath,
	}
}

// lastLines keeps the tail of tool output, which is where ffmpeg puts the
// actual failure reason.
func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
