package adk

import (
	"context"
	"iter"

	"google.golang.org/adk/model"
	"google.golang.org/adk/model/gemini"
	"google.golang.org/genai"

	"stockadvisor/internal/adapters/config"
	"stockadvisor/pkg/errors"
	"stockadvisor/pkg/logger"
)

// NewModel returns the Gemini model named in cfg. Without an API key it
// returns an UnavailableModel so agents still run and fail as text.
func NewModel(ctx context.Context, cfg config.LLMConfig) (model.LLM, error) {
	log := logger.Get().With("component", "model", "model", cfg.Model)

	if !cfg.HasCredentials() {
		log.Warn("GOOGLE_API_KEY not found in environment variables; model calls will fail")
		return NewUnavailableModel(cfg.Model), nil
	}

	m, err := gemini.NewModel(ctx, cfg.Model, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to create gemini model")
	}

	log.Infof("Using Google model: %s", cfg.Model)
	return m, nil
}

// UnavailableModel satisfies model.LLM but refuses every request.
type UnavailableModel struct {
	modelName string
}

// NewUnavailableModel creates a model that always reports ErrModelUnavailable.
func NewUnavailableModel(modelName string) *UnavailableModel {
	return &UnavailableModel{modelName: modelName}
}

// Name returns the configured model name.
func (m *UnavailableModel) Name() string {
	return m.modelName
}

// GenerateContent implements the ADK model.LLM interface.
func (m *UnavailableModel) GenerateContent(
	_ context.Context,
	_ *model.LLMRequest,
	_ bool,
) iter.Seq2[*model.LLMResponse, error] {
	return func(yield func(*model.LLMResponse, error) bool) {
		yield(nil, errors.Wrap(errors.ErrModelUnavailable, "GOOGLE_API_KEY is not set"))
	}
}

var _ model.LLM = (*UnavailableModel)(nil)
