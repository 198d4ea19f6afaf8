package pipeline

import (
	"context"
	"errors"
	"strings"

	"github.com/Kaliakbarb/persona/internal/model"
)

// Chat answers a question about a subject using their latest profile artifact
// (and latest insight artifact when one exists) as context. No artifact is
// persisted. Returns model.ErrNotFound when the subject has no profile yet.
func (p *Pipelines) Chat(ctx context.Context, subjectKey, message string) (string, error) {
	profile, err := p.store.GetLatestByKind(ctx, subjectKey, model.KindProfile)
	if err != nil {
		return "", err
	}

	insightJSON := ""
	if insight, err := p.store.GetLatestByKind(ctx, subjectKey, model.KindInsight); err == nil {
		insightJSON = insight.Payload
	} else if !errors.Is(err, model.ErrNotFound) {
		return "", &StepError{Step: "load", Err: err}
	}

	prompt := buildChatPrompt(displayName(subjectKey, ""), profile.Payload, insightJSON, message)
	reply, err := p.gen.Generate(ctx, truncateRunes(prompt, p.maxContext*2))
	if err != nil {
		return "", &StepError{Step: "generate", Err: err}
	}
	return strings.TrimSpace(reply), nil
}
