package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

// WhisperXTranscriber implements Transcriber by shelling out to the whisperx
// CLI. whisperx writes a JSON result next to the input file; the transcriber
// reads it, joins the segment texts, and removes the result file.
type WhisperXTranscriber struct {
	bin string
}

// NewWhisperXTranscriber creates a transcriber that invokes the given
// whisperx executable.
func NewWhisperXTranscriber(bin string) *WhisperXTranscriber {
	if bin == "" {
		bin = "whisperx"
	}
	return &WhisperXTranscriber{bin: bin}
}

type whisperxResult struct {
	Segments []whisperxSegment `json:"segments"`
	Language string            `json:"language"`
}

type whisperxSegment struct {
	Text  string          `json:"text"`
	Start decimal.Decimal `json:"start"`
	End   decimal.Decimal `json:"end"`
}

// Transcribe runs whisperx on the audio file at path.
func (t *WhisperXTranscriber) Transcribe(ctx context.Context, path string) (*Transcription, error) {
	cmd := exec.CommandContext(ctx, t.bin, path, "--output_dir", filepath.Dir(path), "--output_format", "json")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, providerErr("whisperx", 0, fmt.Errorf("run %s: %w: %s", t.bin, err, firstLine(out)))
	}

	resultPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
	defer os.Remove(resultPath)

	data, err := os.ReadFile(resultPath)
	if err != nil {
		return nil, providerErr("whisperx", 0, fmt.Errorf("read result: %w", err))
	}

	var wr whisperxResult
	if err := json.Unmarshal(data, &wr); err != nil {
		return nil, providerErr("whisperx", 0, fmt.Errorf("decode result: %w", err))
	}

	var parts []string
	var end decimal.Decimal
	for _, seg := range wr.Segments {
		if s := strings.TrimSpace(seg.Text); s != "" {
			parts = append(parts, s)
		}
		if seg.End.GreaterThan(end) {
			end = seg.End
		}
	}
	duration, _ := end.Float64()

	return &Transcription{
		Text:     strings.Join(parts, " "),
		Language: wr.Language,
		Duration: duration,
	}, nil
}

func firstLine(b []byte) string {
	s := strings.TrimSpace(string(b))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return s
}
