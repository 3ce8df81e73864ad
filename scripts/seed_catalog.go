package main

import (
	"context"
	"log"
	"os"
	"strings"

	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/repositories"
	"alfredoptarigan/resume-analyzer/internal/services"
)

// Seeds the category catalog into Postgres and, when a Gemini key is set,
// indexes category names and aliases in Qdrant.
func main() {
	log.Println("🚀 Starting catalog seeding...")

	cfg := config.Load()
	ctx := context.Background()

	var spec services.CatalogSpec
	var err error
	if cfg.Catalog.Path != "" {
		log.Printf("📄 Reading catalog from %s", cfg.Catalog.Path)
		spec, err = services.LoadCatalogFile(cfg.Catalog.Path)
	} else {
		log.Println("📄 Using embedded catalog")
		spec, err = services.EmbeddedCatalog()
	}
	if err != nil {
		log.Fatalf("❌ Failed to load catalog: %v", err)
	}

	// Validates the same way the analyzer will.
	catalog, err := services.NewCatalog(spec)
	if err != nil {
		log.Fatalf("❌ Invalid catalog: %v", err)
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	categories := services.ModelsFromCatalogSpec(spec)
	if err := repositories.NewCategoryRepository(db).ReplaceAll(ctx, categories); err != nil {
		log.Fatalf("❌ Failed to store catalog: %v", err)
	}
	log.Printf("✅ Stored %d categories in Postgres", len(categories))

	if cfg.Gemini.APIKey == "" {
		log.Println("⚠️  GEMINI_API_KEY not set, skipping semantic index")
		return
	}

	gemini, err := services.NewGeminiService(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, cfg.Gemini.EmbeddingModel)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	index, err := services.NewQdrantCategoryIndex(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, gemini)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}
	if err := index.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	successCount, failCount := 0, 0
	for _, profile := range catalog.Profiles() {
		points, err := index.IndexCategory(ctx, profile)
		if err != nil {
			log.Printf("   ❌ Failed to index %s: %v", profile.Name, err)
			failCount++
			continue
		}
		log.Printf("   ✅ Indexed %s (%d aliases)", profile.Name, points)
		successCount++
	}

	log.Println(strings.Repeat("=", 60))
	log.Printf("📊 Seeding Summary:")
	log.Printf("   ✅ Indexed: %d categories", successCount)
	log.Printf("   ❌ Failed: %d categories", failCount)
	log.Println(strings.Repeat("=", 60))

	if failCount > 0 {
		os.Exit(1)
	}

	log.Println("✅ Catalog seeded successfully!")
}
