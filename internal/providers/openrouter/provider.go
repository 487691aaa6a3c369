// internal/providers/openrouter/provider.go
// Package openrouter implements a CouncilProvider backed by an
// OpenRouter-compatible chat-completions API.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/councilchat/council/internal/appconfig"
	"github.com/councilchat/council/internal/council"
	"github.com/councilchat/council/internal/logging"
	"github.com/councilchat/council/internal/providers"
)

// Provider implements providers.CouncilProvider against an
// OpenRouter-compatible HTTP endpoint.
type Provider struct {
	client        *http.Client
	baseURL       string
	apiKey        string
	timeout       time.Duration
	councilModels []string
	chairman      string
}

// New constructs a Provider from the application configuration.
func New(cfg *appconfig.Config) *Provider {
	timeout := cfg.RequestTimeout()
	return &Provider{
		client: &http.Client{
			Timeout:   timeout,
			Transport: &http.Transport{ForceAttemptHTTP2: false},
		},
		baseURL:       cfg.Backend(),
		apiKey:        cfg.APIKey(),
		timeout:       timeout,
		councilModels: cfg.CouncilModels,
		chairman:      cfg.ChairmanModel,
	}
}

// Close releases idle connections held by the HTTP client.
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// chatRequest is the chat-completions payload sent per model.
type chatRequest struct {
	Model    string                  `json:"model"`
	Messages []providers.ChatMessage `json:"messages"`
}

// chatResponse is the subset of the chat-completions reply the provider
// consumes.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Deliberate runs the three council phases for the prompt ending
// req.History and reports each phase through cb.
func (p *Provider) Deliberate(ctx context.Context, req providers.Request, cb providers.Callbacks) error {
	prompt := lastUserPrompt(req.History)
	if strings.TrimSpace(prompt) == "" {
		return errors.New("openrouter: request history has no user prompt")
	}

	notifyLoading(cb, council.StageResponses)
	responses, err := p.collectResponses(ctx, req.History)
	if err != nil {
		return err
	}
	if cb.OnStage1 != nil {
		cb.OnStage1(responses)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	notifyLoading(cb, council.StageRankings)
	labels := council.AssignLabels(responses)
	rankings, err := p.collectRankings(ctx, prompt, responses)
	if err != nil {
		return err
	}
	meta := council.Metadata{
		LabelToModel:      labels,
		AggregateRankings: council.Aggregate(rankings, labels),
	}
	if cb.OnStage2 != nil {
		cb.OnStage2(rankings, meta)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	notifyLoading(cb, council.StageSynthesis)
	final, err := p.synthesize(ctx, prompt, responses, rankings, labels)
	if err != nil {
		return err
	}
	if cb.OnStage3 != nil {
		cb.OnStage3(final)
	}
	return nil
}

// notifyLoading reports a stage transition if the callback is set.
func notifyLoading(cb providers.Callbacks, stage council.Stage) {
	if cb.OnStageLoading != nil {
		cb.OnStageLoading(stage)
	}
}

// lastUserPrompt returns the content of the most recent user message.
func lastUserPrompt(history []providers.ChatMessage) string {
	for i := len(history) - 1; i >= 0; i-- {
		if strings.EqualFold(history[i].Role, "user") {
			return history[i].Content
		}
	}
	return ""
}

// collectResponses queries every council model in parallel with the full
// conversation history. Models that fail are dropped; the phase fails only
// when no model answers.
func (p *Provider) collectResponses(ctx context.Context, history []providers.ChatMessage) ([]council.Stage1Response, error) {
	results := make([]council.Stage1Response, len(p.councilModels))
	errs := make([]error, len(p.councilModels))

	var wg sync.WaitGroup
	for i, model := range p.councilModels {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()
			content, err := p.complete(ctx, model, council.StageResponses.String(), history)
			if err != nil {
				errs[i] = fmt.Errorf("%s: %w", model, err)
				return
			}
			results[i] = council.Stage1Response{Model: model, Response: content}
		}(i, model)
	}
	wg.Wait()

	var responses []council.Stage1Response
	for _, r := range results {
		if r.Model != "" {
			responses = append(responses, r)
		}
	}
	if len(responses) == 0 {
		return nil, fmt.Errorf("openrouter: all council models failed: %w", errors.Join(errs...))
	}
	for _, err := range errs {
		if err != nil {
			logging.LogEvent("council model dropped from turn: %v", err)
		}
	}
	return responses, nil
}

// collectRankings asks every council model to rank the anonymized
// responses. A model whose ranking request fails or cannot be parsed is
// skipped; an empty ranking set is a valid (if unhelpful) phase result.
func (p *Provider) collectRankings(ctx context.Context, prompt string, responses []council.Stage1Response) ([]council.Stage2Ranking, error) {
	rankingPrompt := buildRankingPrompt(prompt, responses)
	messages := []providers.ChatMessage{{Role: "user", Content: rankingPrompt}}

	results := make([]council.Stage2Ranking, len(p.councilModels))
	var wg sync.WaitGroup
	for i, model := range p.councilModels {
		wg.Add(1)
		go func(i int, model string) {
			defer wg.Done()
			content, err := p.complete(ctx, model, council.StageRankings.String(), messages)
			if err != nil {
				logging.LogEvent("ranking request failed for %s: %v", model, err)
				return
			}
			results[i] = council.Stage2Ranking{
				Model:         model,
				Ranking:       content,
				ParsedRanking: council.ParseRanking(content),
			}
		}(i, model)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var rankings []council.Stage2Ranking
	for _, r := range results {
		if r.Model != "" {
			rankings = append(rankings, r)
		}
	}
	return rankings, nil
}

// synthesize asks the chairman model for the final answer.
func (p *Provider) synthesize(ctx context.Context, prompt string, responses []council.Stage1Response, rankings []council.Stage2Ranking, labels map[string]string) (council.Stage3Response, error) {
	chairmanPrompt := buildChairmanPrompt(prompt, responses, rankings, labels)
	messages := []providers.ChatMessage{{Role: "user", Content: chairmanPrompt}}

	content, err := p.complete(ctx, p.chairman, council.StageSynthesis.String(), messages)
	if err != nil {
		return council.Stage3Response{}, fmt.Errorf("chairman %s: %w", p.chairman, err)
	}
	return council.Stage3Response{Model: p.chairman, Response: content}, nil
}

// complete issues a single chat-completions request and returns the first
// choice's content.
func (p *Provider) complete(ctx context.Context, model, stage string, messages []providers.ChatMessage) (string, error) {
	payload := chatRequest{Model: model, Messages: messages}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	logging.LogRequest("council->llm", model, stage, body)

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	endpoint := p.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	logging.LogRequest("llm->council", model, stage, respBody)

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat/completions returned %s: %s", resp.Status, strings.TrimSpace(string(respBody)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", err
	}
	if parsed.Error != nil {
		return "", fmt.Errorf("backend error: %s", parsed.Error.Message)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("backend returned no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
