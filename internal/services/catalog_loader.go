package services

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"alfredoptarigan/resume-analyzer/internal/models"
)

//go:embed data/catalog.yaml
var embeddedCatalog []byte

var catalogValidator = validator.New()

// EmbeddedCatalog returns the catalog compiled into the binary.
func EmbeddedCatalog() (CatalogSpec, error) {
	return ParseCatalogYAML(embeddedCatalog)
}

// LoadCatalogFile reads a YAML catalog from disk.
func LoadCatalogFile(path string) (CatalogSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CatalogSpec{}, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return ParseCatalogYAML(data)
}

// ParseCatalogYAML decodes and validates a YAML catalog. Unknown fields are
// rejected.
func ParseCatalogYAML(data []byte) (CatalogSpec, error) {
	var spec CatalogSpec

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil && !errors.Is(err, io.EOF) {
		return CatalogSpec{}, fmt.Errorf("failed to parse catalog: %w", err)
	}

	if err := catalogValidator.Struct(spec); err != nil {
		return CatalogSpec{}, fmt.Errorf("invalid catalog: %w", err)
	}
	if len(spec.Categories) == 0 {
		return CatalogSpec{}, errors.New("invalid catalog: no categories defined")
	}

	return spec, nil
}

// CatalogSpecFromModels converts stored categories into a catalog spec. The
// stored generic category, if any, replaces fallbackGeneric.
func CatalogSpecFromModels(categories []models.Category, fallbackGeneric CategoryProfile) CatalogSpec {
	spec := CatalogSpec{Generic: fallbackGeneric}

	for _, category := range categories {
		profile := CategoryProfile{
			Name:    category.Name,
			Aliases: []string(category.Aliases),
		}
		for _, kw := range category.Keywords {
			profile.Keywords = append(profile.Keywords, Keyword{
				Term:     kw.Term,
				Weight:   kw.Weight,
				Synonyms: []string(kw.Synonyms),
				Related:  []string(kw.Related),
			})
		}

		if category.Generic {
			spec.Generic = profile
			continue
		}
		spec.Categories = append(spec.Categories, profile)
	}

	return spec
}

// ModelsFromCatalogSpec converts a catalog spec into rows for storage. The
// generic profile comes last.
func ModelsFromCatalogSpec(spec CatalogSpec) []models.Category {
	profiles := append([]CategoryProfile(nil), spec.Categories...)
	categories := make([]models.Category, 0, len(profiles)+1)

	toModel := func(profile CategoryProfile, generic bool) models.Category {
		category := models.Category{
			Name:    profile.Name,
			Aliases: append([]string{}, profile.Aliases...),
			Generic: generic,
		}
		for _, kw := range profile.Keywords {
			category.Keywords = append(category.Keywords, models.CategoryKeyword{
				Term:     kw.Term,
				Weight:   kw.Weight,
				Synonyms: append([]string{}, kw.Synonyms...),
				Related:  append([]string{}, kw.Related...),
			})
		}
		return category
	}

	for _, profile := range profiles {
		categories = append(categories, toModel(profile, false))
	}
	if len(spec.Generic.Keywords) > 0 {
		categories = append(categories, toModel(spec.Generic, true))
	}

	return categories
}
