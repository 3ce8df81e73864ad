package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	DefaultGeminiModel    = "gemini-2.5-flash"
	DefaultEmbeddingModel = "text-embedding-004"

	// Category labels and aliases are short; anything longer is noise.
	maxEmbeddingRunes = 256
)

var errEmptyEmbeddingInput = errors.New("embedding input is empty")

// TextGenerator produces free text from a prompt.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
}

// Embedder turns text into a vector.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

type GeminiService interface {
	TextGenerator
	Embedder
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(ctx context.Context, apiKey, model, embedModel string) (GeminiService, error) {
	if apiKey == "" {
		return nil, newError(KindExternalCapabilityUnavailable, fmt.Errorf("gemini api key is not set"))
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	if embedModel == "" {
		embedModel = DefaultEmbeddingModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	log.Printf("✅ Gemini client ready (model %s)", model)

	return &geminiService{
		client:     client,
		modelName:  model,
		embedModel: embedModel,
	}, nil
}

// GenerateEmbedding implements Embedder.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	label, err := embeddingLabel(text)
	if err != nil {
		return nil, err
	}

	dims := int32(defaultVectorSize)
	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(label), &genai.EmbedContentConfig{
		TaskType:             "SEMANTIC_SIMILARITY",
		OutputDimensionality: &dims,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to embed %q: %w", label, err)
	}
	if result == nil || len(result.Embeddings) == 0 || len(result.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("no embedding returned for %q", label)
	}
	return result.Embeddings[0].Values, nil
}

// embeddingLabel folds whitespace and caps a category label at
// maxEmbeddingRunes.
func embeddingLabel(text string) (string, error) {
	label := strings.Join(strings.Fields(text), " ")
	if label == "" {
		return "", errEmptyEmbeddingInput
	}
	if runes := []rune(label); len(runes) > maxEmbeddingRunes {
		label = string(runes[:maxEmbeddingRunes])
	}
	return label, nil
}

// GenerateText implements TextGenerator.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  1024,
		ResponseMIMEType: "application/json",
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// retry calls fn up to attempts times, waiting a linearly growing backoff
// between failures. It stops early when ctx is done.
func retry[T any](ctx context.Context, attempts int, backoff time.Duration, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error
	attempts = max(attempts, 1)

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		log.Printf("⚠️ Attempt %d failed: %v. Retrying...", attempt, err)

		select {
		case <-ctx.Done():
			return zero, fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(backoff * time.Duration(attempt)):
		}
	}

	return zero, fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
