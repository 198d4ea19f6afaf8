package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/Kaliakbarb/persona/internal/model"
)

// ProfileSearch runs the profile-search flow: query the search provider,
// classify social-platform results, and persist one "search" artifact.
//
// A search-provider failure is fatal to the flow: the persisted artifact
// contains only an error field (never partial raw results), and the returned
// error names the failing step.
func (p *Pipelines) ProfileSearch(ctx context.Context, subjectKey, fullName string) (*model.Artifact, error) {
	query := displayName(subjectKey, fullName)

	resp, err := p.search.Search(ctx, query)
	if err != nil {
		slog.Error("search failed", "subject", subjectKey, "error", err)
		artifact, saveErr := p.saveArtifact(ctx, subjectKey, model.KindSearch, ErrorPayload{Error: err.Error()})
		if saveErr != nil {
			return nil, saveErr
		}
		return artifact, &StepError{Step: "search", Err: err}
	}

	payload := SearchPayload{
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		Query:            resp.Query,
		OrganicResults:   resp.OrganicResults,
		KnowledgeGraph:   resp.KnowledgeGraph,
		RelatedSearches:  resp.RelatedSearches,
		RelatedQuestions: resp.RelatedQuestions,
		SocialProfiles:   ClassifySocialProfiles(resp.OrganicResults),
	}
	if payload.RelatedSearches == nil {
		payload.RelatedSearches = []string{}
	}
	if payload.RelatedQuestions == nil {
		payload.RelatedQuestions = []string{}
	}

	artifact, err := p.saveArtifact(ctx, subjectKey, model.KindSearch, payload)
	if err != nil {
		return nil, err
	}

	slog.Info("profile-search complete",
		"subject", subjectKey,
		"results", len(payload.OrganicResults),
		"social_profiles", len(payload.SocialProfiles))
	return artifact, nil
}
