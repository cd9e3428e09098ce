package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/proofdesk/services/evaluation/proof"
)

const (
	defaultTaggingModel   = "gpt-4o-mini"
	defaultTaggingTimeout = 20 * time.Second

	// defaultTaggingRate bounds requests per second to the API.
	defaultTaggingRate = 2
)

const taggingSystemPrompt = `You are an evaluator annotating a candidate's incident writeup.
For each requested tag that the writeup genuinely demonstrates, emit one JSON object:
{"tag": "<tag name>", "confidence": <0..1>, "evidence_quote": "<verbatim quote from the writeup, at least 10 characters>", "start_char": <offset>, "end_char": <offset>}
Only emit a tag when you can quote the exact supporting text. Respond with a JSON array and nothing else.`

// OpenAITagger tags writeups through the OpenAI chat API.
type OpenAITagger struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

// NewOpenAITagger reads OPENAI_API_KEY (or the mounted secret file)
// and OPENAI_MODEL, matching the conventions of the other OpenAI
// clients in this codebase.
func NewOpenAITagger() (*OpenAITagger, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_MODEL")
	if apiKey == "" {
		secretPath := "/run/secrets/openai_api_key"
		apiKeyBytes, err := os.ReadFile(secretPath)
		if err == nil {
			apiKey = strings.TrimSpace(string(apiKeyBytes))
			slog.Info("Read the OpenAI API Key from Podman Secrets")
		} else {
			slog.Error("OPENAI_API_KEY environment variable not set and secret not found", "path", secretPath)
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	}
	if model == "" {
		model = defaultTaggingModel
		slog.Warn("OPENAI_MODEL not set, defaulting to "+defaultTaggingModel)
	}
	slog.Info("Initializing OpenAI tagger", "model", model)
	return &OpenAITagger{
		client:  openai.NewClient(apiKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(defaultTaggingRate), 1),
		timeout: defaultTaggingTimeout,
	}, nil
}

// WithTimeout overrides the per-call timeout.
func (o *OpenAITagger) WithTimeout(d time.Duration) *OpenAITagger {
	o.timeout = d
	return o
}

// TagWriteup implements the Tagger interface. Every call carries an
// explicit timeout so a stalled API can never block an evaluation.
func (o *OpenAITagger) TagWriteup(ctx context.Context, writeup string, wantedTags []string) ([]proof.Tag, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	if err := o.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	prompt := fmt.Sprintf("Requested tags: %s\n\nWriteup:\n%s",
		strings.Join(wantedTags, ", "), writeup)

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: taggingSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		slog.Error("OpenAI tagging call failed", "error", err)
		return nil, fmt.Errorf("OpenAI tagging call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		slog.Warn("OpenAI returned no choices for tagging request")
		return nil, fmt.Errorf("OpenAI returned no choices")
	}

	tags, err := ParseTagResponse(resp.Choices[0].Message.Content)
	if err != nil {
		slog.Warn("Discarding unparseable tag response", "error", err)
		return nil, err
	}
	slog.Debug("Received tags from OpenAI", "count", len(tags))
	return tags, nil
}

// ParseTagResponse decodes the model's JSON array, tolerating a
// markdown code fence around it. Validity of individual tags is not
// checked here; the citation gate in the proof engine does that.
func ParseTagResponse(content string) ([]proof.Tag, error) {
	trimmed := strings.TrimSpace(content)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = strings.TrimPrefix(trimmed, "```json")
		trimmed = strings.TrimPrefix(trimmed, "```")
		trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
		trimmed = strings.TrimSpace(trimmed)
	}

	var tags []proof.Tag
	if err := json.Unmarshal([]byte(trimmed), &tags); err != nil {
		return nil, fmt.Errorf("decode tag response: %w", err)
	}
	return tags, nil
}
