package pipeline

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"strings"

	"lukechampine.com/blake3"

	"github.com/Kaliakbarb/persona/internal/model"
)

// AudioInsight runs the audio-insight flow: transcribe the audio file, bring
// the text into English when needed, extract structured insights, and persist
// one "insight" artifact.
//
// The pipeline takes ownership of the file at audioPath and removes it on
// every exit path. Transcription failure is fatal (there is no text to
// analyze); translation and insight-extraction failures degrade to an
// artifact that keeps the fixed shape and the raw transcription.
func (p *Pipelines) AudioInsight(ctx context.Context, subjectKey, audioPath string) (*model.Artifact, error) {
	defer os.Remove(audioPath)

	hash, err := hashFile(audioPath)
	if err != nil {
		return nil, &StepError{Step: "audio", Err: err}
	}

	tr, err := p.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, &StepError{Step: "transcribe", Err: err}
	}

	payload := InsightPayload{
		Transcription: tr.Text,
		Language:      tr.Language,
		AudioHash:     hash,
		Insights:      defaultInsightResult(),
	}

	text := tr.Text
	if tr.Language != "" && !strings.HasPrefix(strings.ToLower(tr.Language), "en") {
		translated, terr := p.gen.Generate(ctx, buildTranslatePrompt(truncateRunes(text, p.maxContext)))
		if terr != nil {
			slog.Warn("translation failed, analyzing original text", "subject", subjectKey, "error", terr)
		} else if s := strings.TrimSpace(translated); s != "" {
			text = s
			payload.Translated = true
		}
	}

	raw, err := p.gen.Generate(ctx, buildInsightPrompt(truncateRunes(text, p.maxContext)))
	if err != nil {
		slog.Warn("insight generation failed", "subject", subjectKey, "error", err)
		payload.Error = err.Error()
	} else {
		var result InsightResult
		if perr := parseModelJSON(raw, &result); perr != nil {
			slog.Warn("insight output unparsable", "subject", subjectKey, "error", perr)
			payload.ParseFailed = true
			payload.RawResponse = raw
		} else {
			fillInsightDefaults(&result)
			payload.Insights = result
		}
	}

	artifact, err := p.saveArtifact(ctx, subjectKey, model.KindInsight, payload)
	if err != nil {
		return nil, err
	}

	slog.Info("audio-insight complete",
		"subject", subjectKey,
		"language", payload.Language,
		"translated", payload.Translated,
		"parse_failed", payload.ParseFailed)
	return artifact, nil
}

// fillInsightDefaults replaces nil slices so the serialized payload always
// carries arrays, never null.
func fillInsightDefaults(r *InsightResult) {
	if r.Topics == nil {
		r.Topics = []string{}
	}
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	if r.NewInterests == nil {
		r.NewInterests = []string{}
	}
	if r.NotableQuotes == nil {
		r.NotableQuotes = []string{}
	}
}

// hashFile returns the blake3 hash of the file content, recorded on the
// artifact so a given upload can be traced after the transient file is gone.
func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := blake3.New(32, nil)
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
