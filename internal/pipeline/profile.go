package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

// Profile runs the profile flow: gather search results for the subject
// (reusing the latest stored ones when available), optionally enrich the
// context with the top result's page content, and ask the generator for a
// structured profile.
//
// A generation-provider failure is fatal. Unparsable model output degrades:
// the artifact keeps its fixed shape with fallback values, parse_failed set,
// and the raw model text preserved.
func (p *Pipelines) Profile(ctx context.Context, subjectKey, fullName string) (*model.Artifact, error) {
	sp, err := p.searchContext(ctx, subjectKey, fullName)
	if err != nil {
		return nil, err
	}

	contextText := buildSearchContext(sp)
	if p.extractor != nil && len(sp.OrganicResults) > 0 {
		pageText, err := p.extractor.Extract(ctx, sp.OrganicResults[0].Link)
		if err != nil {
			slog.Warn("page enrichment failed", "subject", subjectKey, "url", sp.OrganicResults[0].Link, "error", err)
		} else {
			contextText += "\n\nTop result page content:\n" + pageText
		}
	}

	raw, err := p.gen.Generate(ctx, buildProfilePrompt(truncateRunes(contextText, p.maxContext)))
	if err != nil {
		return nil, &StepError{Step: "generate", Err: err}
	}

	payload := ProfilePayload{
		GeneratedAt:       time.Now().UTC().Format(time.RFC3339),
		Query:             sp.Query,
		Interests:         []string{},
		CommunicationTips: []string{},
	}

	var parsed struct {
		Introduction       string   `json:"introduction"`
		Interests          []string `json:"interests"`
		CommunicationStyle string   `json:"communication_style"`
		CommunicationTips  []string `json:"communication_tips"`
	}
	if perr := parseModelJSON(raw, &parsed); perr != nil {
		slog.Warn("profile output unparsable", "subject", subjectKey, "error", perr)
		payload.ParseFailed = true
		payload.RawResponse = raw
	} else {
		payload.Introduction = parsed.Introduction
		payload.CommunicationStyle = parsed.CommunicationStyle
		if parsed.Interests != nil {
			payload.Interests = parsed.Interests
		}
		if parsed.CommunicationTips != nil {
			payload.CommunicationTips = parsed.CommunicationTips
		}
	}

	artifact, err := p.saveArtifact(ctx, subjectKey, model.KindProfile, payload)
	if err != nil {
		return nil, err
	}

	slog.Info("profile complete", "subject", subjectKey, "parse_failed", payload.ParseFailed)
	return artifact, nil
}

// searchContext returns usable search results for the subject: the latest
// stored search payload when one exists, otherwise the output of a fresh
// profile-search run.
func (p *Pipelines) searchContext(ctx context.Context, subjectKey, fullName string) (*SearchPayload, error) {
	artifact, err := p.store.GetLatestByKind(ctx, subjectKey, model.KindSearch)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, &StepError{Step: "load", Err: err}
	}

	if artifact != nil {
		var sp SearchPayload
		// An error-only payload has no query; fall through to a fresh search.
		if uerr := json.Unmarshal([]byte(artifact.Payload), &sp); uerr == nil && sp.Query != "" {
			return &sp, nil
		}
	}

	fresh, err := p.ProfileSearch(ctx, subjectKey, fullName)
	if err != nil {
		return nil, err
	}
	var sp SearchPayload
	if uerr := json.Unmarshal([]byte(fresh.Payload), &sp); uerr != nil {
		return nil, &StepError{Step: "load", Err: uerr}
	}
	return &sp, nil
}
