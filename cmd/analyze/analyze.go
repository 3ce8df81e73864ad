package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"alfredoptarigan/resume-analyzer/internal/bootstrap"
	"alfredoptarigan/resume-analyzer/internal/config"
	"alfredoptarigan/resume-analyzer/internal/services"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a resume file",
	Long:  "Analyzes a local resume file against a job category and prints the result as JSON.",
	RunE:  runAnalyze,
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the known job categories",
	RunE:  runCategories,
}

var (
	analyzeFile     string
	analyzeCategory string
	analyzeCatalog  string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "Path to the resume file (required)")
	analyzeCmd.Flags().StringVarP(&analyzeCategory, "category", "c", "React Developer", "Target job category")
	rootCmd.PersistentFlags().StringVar(&analyzeCatalog, "catalog", "", "Path to a YAML catalog (defaults to the configured source)")

	if err := analyzeCmd.MarkFlagRequired("file"); err != nil {
		panic(fmt.Sprintf("failed to mark file flag as required: %v", err))
	}

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(categoriesCmd)
}

func loadConfig() *config.Config {
	cfg := config.Load()
	if analyzeCatalog != "" {
		cfg.Catalog.Source = config.CatalogFile
		cfg.Catalog.Path = analyzeCatalog
	}
	return cfg
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()
	if err := cfg.Validate(); err != nil {
		return err
	}

	data, err := os.ReadFile(analyzeFile)
	if err != nil {
		return fmt.Errorf("failed to read resume file %s: %w", analyzeFile, err)
	}

	components, err := bootstrap.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	result, err := components.Analyzer.Analyze(cmd.Context(), services.AnalysisRequest{
		Document: services.ResumeDocument{
			Data:      data,
			MediaType: services.ResolveMediaType("", analyzeFile),
			Size:      int64(len(data)),
		},
		Category: analyzeCategory,
	})
	if err != nil {
		return fmt.Errorf("%s: %s", services.KindOf(err), services.SafeMessage(err))
	}

	output, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result to JSON: %w", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(output))
	return err
}

func runCategories(cmd *cobra.Command, _ []string) error {
	cfg := loadConfig()

	spec, err := bootstrap.LoadCatalogSpec(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	catalog, err := services.NewCatalog(spec)
	if err != nil {
		return err
	}

	for _, profile := range catalog.Profiles() {
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%d keywords)\n", profile.Name, len(profile.Keywords))
	}
	return nil
}
