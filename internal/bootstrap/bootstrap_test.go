package bootstrap

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/services"
)

func testConfig() *config.Config {
	return &config.Config{
		Analyzer: config.AnalyzerConfig{
			MaxFileSize:        1 << 20,
			RequestTimeout:     5 * time.Second,
			Concurrency:        2,
			MaxSuggestions:     8,
			HighScoreThreshold: 85,
		},
		Catalog: config.CatalogConfig{Source: config.CatalogEmbedded},
	}
}

func TestBuild_EmbeddedCatalog(t *testing.T) {
	components, err := Build(context.Background(), testConfig())
	require.NoError(t, err)
	assert.NotEmpty(t, components.Catalog.Profiles())

	text := "Jane Doe\nBuilt Go services with gRPC and PostgreSQL on Kubernetes."
	result, err := components.Analyzer.Analyze(context.Background(), services.AnalysisRequest{
		Document: services.ResumeDocument{Data: []byte(text), MediaType: services.MediaTypeText, Size: int64(len(text))},
		Category: "Golang Developer",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "Go Developer")
	assert.Contains(t, result.Strengths, "Demonstrated experience with Go")
}

func TestBuild_GenerationRequiresKey(t *testing.T) {
	cfg := testConfig()
	cfg.Generation.Enabled = true

	_, err := Build(context.Background(), cfg)
	require.Error(t, err)
	assert.Equal(t, services.KindExternalCapabilityUnavailable, services.KindOf(err))
}

func TestLoadCatalogSpec_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
categories:
  - name: Rust Developer
    aliases: [rustacean]
    keywords:
      - term: Rust
        weight: 3
      - term: Tokio
`), 0o600))

	cfg := testConfig()
	cfg.Catalog.Source = config.CatalogFile
	cfg.Catalog.Path = path

	spec, err := LoadCatalogSpec(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, spec.Categories, 1)
	assert.Equal(t, "Rust Developer", spec.Categories[0].Name)

	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = LoadCatalogSpec(context.Background(), cfg)
	assert.Error(t, err)
}
