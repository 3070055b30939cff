package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/imdipper19-stack/vidlecta/internal/core/domain"
	"github.com/imdipper19-stack/vidlecta/internal/core/ports"
)

type whisperRecognizer struct {
	binPath   string
	modelPath string
}

// NewWhisperRecognizer wraps the whisper.cpp CLI. The model file is resolved
// once from the configured directory and size tier; loading it is the
// expensive part, which is why worker concurrency stays low.
func NewWhisperRecognizer(binPath, modelDir, modelSize string) ports.SpeechRecognizer {
	return &whisperRecognizer{
		binPath:   binPath,
		modelPath: filepath.Join(modelDir, "ggml-"+modelSize+".bin"),
	}
}

// Transcribe runs the model over a prepared 16 kHz mono WAV and parses the
// JSON transcript it emits.
func (r *whisperRecognizer) Transcribe(ctx context.Context, audioPath, language string) (*domain.RecognitionResult, error) {
	outBase := strings.TrimSuffix(audioPath, filepath.Ext(audioPath))
	args := buildWhisperArgs(r.modelPath, audioPath, outBase, language)

	cmd := exec.CommandContext(ctx, r.binPath, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper error: %w: %s", err, strings.TrimSpace(string(output)))
	}

	data, err := os.ReadFile(outBase + ".json")
	if err != nil {
		return nil, fmt.Errorf("whisper completed but transcript JSON is missing: %w", err)
	}
	result, err := parseWhisperOutput(data)
	if err != nil {
		return nil, err
	}
	if result.Language == "" {
		result.Language = normalizeLanguage(language)
	}
	return result, nil
}

func buildWhisperArgs(modelPath, audioPath, outBase, language string) []string {
	args := []string{
		"-m", modelPath,
		"-f", audioPath,
		"-of", outBase,
		"-oj",
		"-np",
	}
	if lang := normalizeLanguage(language); lang != "" {
		args = append(args, "-l", lang)
	} else {
		args = append(args, "-l", "auto")
	}
	return args
}

// normalizeLanguage maps "auto" and empty hints to engine detection.
func normalizeLanguage(raw string) string {
	lang := strings.TrimSpace(raw)
	if strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}

// whisperOutput matches the whisper.cpp -oj JSON layout; offsets are in
// milliseconds.
type whisperOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []struct {
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
		Text string `json:"text"`
	} `json:"transcription"`
}

func parseWhisperOutput(data []byte) (*domain.RecognitionResult, error) {
	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing whisper output: %w", err)
	}

	result := &domain.RecognitionResult{Language: out.Result.Language}
	var parts []string
	for _, seg := range out.Transcription {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		result.Segments = append(result.Segments, domain.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  text,
		})
		parts = append(parts, text)
	}
	result.Text = strings.Join(parts, " ")
	return result, nil
}
