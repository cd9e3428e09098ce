package llm

import (
	"context"

	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

// Tagger annotates a writeup with quality tags. Implementations are
// external collaborators and may fail or time out; callers must treat
// an error as "no tags" and let the affected claims degrade to
// unproven rather than failing the evaluation.
type Tagger interface {
	TagWriteup(ctx context.Context, writeup string, wantedTags []string) ([]proof.Tag, error)
}

// NopTagger is a Tagger that never produces tags. Used when no LLM
// collaborator is configured.
type NopTagger struct{}

func (NopTagger) TagWriteup(context.Context, string, []string) ([]proof.Tag, error) {
	return nil, nil
}
