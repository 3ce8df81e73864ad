// Package bootstrap wires the analysis pipeline from configuration.
package bootstrap

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

type Components struct {
	Analyzer services.Analyzer
	Catalog  *services.Catalog
}

// Build assembles the analyzer. Gemini and Qdrant are only contacted when
// generation or semantic category lookup is enabled.
func Build(ctx context.Context, cfg *config.Config) (*Components, error) {
	var gemini services.GeminiService
	if cfg.Generation.Enabled || cfg.Catalog.SemanticLookup {
		g, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize gemini: %w", err)
		}
		gemini = g
	}

	var opts []services.CatalogOption
	if cfg.Catalog.SemanticLookup {
		index, err := services.NewQdrantCategoryIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, gemini)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize qdrant: %w", err)
		}
		opts = append(opts, services.WithCategoryLookup(index, cfg.Catalog.SemanticMinScore))
		log.Println("✅ Semantic category lookup enabled")
	}

	spec, err := LoadCatalogSpec(ctx, cfg)
	if err != nil {
		return nil, err
	}

	catalog, err := services.NewCatalog(spec, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build catalog: %w", err)
	}
	log.Printf("✅ Catalog loaded from %s with %d categories", cfg.Catalog.Source, len(catalog.Profiles()))

	summary := services.NewTemplateSummary()
	if cfg.Generation.Enabled {
		summary, err = services.NewGeneratedSummary(gemini, services.GeneratedSummaryOptions{
			Timeout:     cfg.Generation.Timeout,
			MaxRetries:  cfg.Generation.MaxRetries,
			Backoff:     cfg.Generation.Backoff,
			Temperature: cfg.Generation.Temperature,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize summary generation: %w", err)
		}
		log.Println("✅ Generated summaries enabled")
	}

	synthesizer := services.NewFeedbackSynthesizer(summary, services.SynthesizerOptions{
		MaxSuggestions:     cfg.Analyzer.MaxSuggestions,
		HighScoreThreshold: cfg.Analyzer.HighScoreThreshold,
	})

	analyzer := services.NewAnalyzer(
		services.NewDocumentExtractor(cfg.Analyzer.MaxFileSize, cfg.Analyzer.SupportedMediaTypes),
		catalog,
		services.NewKeywordMatcher(),
		services.NewScorer(),
		synthesizer,
		services.NewLimiter(cfg.Analyzer.Concurrency, cfg.Analyzer.QueueWait),
		services.AnalyzerOptions{Timeout: cfg.Analyzer.RequestTimeout},
	)

	return &Components{Analyzer: analyzer, Catalog: catalog}, nil
}

// LoadCatalogSpec reads the catalog from the configured source.
func LoadCatalogSpec(ctx context.Context, cfg *config.Config) (services.CatalogSpec, error) {
	switch cfg.Catalog.Source {
	case config.CatalogFile:
		spec, err := services.LoadCatalogFile(cfg.Catalog.Path)
		if err != nil {
			return services.CatalogSpec{}, fmt.Errorf("failed to load catalog file: %w", err)
		}
		return spec, nil

	case config.CatalogPostgres:
		db, err := config.InitDatabase(cfg)
		if err != nil {
			return services.CatalogSpec{}, err
		}
		categories, err := repositories.NewCategoryRepository(db).FindAll(ctx)
		if err != nil {
			return services.CatalogSpec{}, err
		}
		if len(categories) == 0 {
			return services.CatalogSpec{}, fmt.Errorf("catalog tables are empty, run the seed script first")
		}
		return services.CatalogSpecFromModels(categories, services.DefaultGenericProfile()), nil

	default:
		spec, err := services.EmbeddedCatalog()
		if err != nil {
			return services.CatalogSpec{}, fmt.Errorf("failed to load embedded catalog: %w", err)
		}
		return spec, nil
	}
}
