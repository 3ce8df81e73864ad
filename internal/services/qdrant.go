package services

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

const defaultVectorSize = 768

// CategoryIndex stores embeddings of category names and aliases so labels
// that match no alias textually can still be resolved.
type CategoryIndex interface {
	CategoryLookup
	InitCollection(ctx context.Context) error
	IndexCategory(ctx context.Context, profile CategoryProfile) (int, error)
}

type qdrantCategoryIndex struct {
	client         *qdrant.Client
	embedder       Embedder
	collectionName string
	vectorSize     uint64
}

const defaultQdrantGRPCPort = 6334

// qdrantConfig turns a Qdrant URL such as https://qdrant.internal:6334 into
// client settings. The go client speaks gRPC, so a URL without a port gets
// the gRPC port rather than the REST one.
func qdrantConfig(rawURL, apiKey string) (*qdrant.Config, error) {
	endpoint, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}
	if endpoint.Hostname() == "" {
		return nil, fmt.Errorf("invalid Qdrant URL %q: missing host", rawURL)
	}

	cfg := &qdrant.Config{
		Host:   endpoint.Hostname(),
		Port:   defaultQdrantGRPCPort,
		APIKey: apiKey,
		UseTLS: endpoint.Scheme == "https",
	}
	if p := endpoint.Port(); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid Qdrant port %q: %w", p, err)
		}
		cfg.Port = port
	}
	return cfg, nil
}

func NewQdrantCategoryIndex(urlStr, apiKey, collectionName string, embedder Embedder) (CategoryIndex, error) {
	cfg, err := qdrantConfig(urlStr, apiKey)
	if err != nil {
		return nil, err
	}

	client, err := qdrant.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create qdrant client: %w", err)
	}

	return &qdrantCategoryIndex{
		client:         client,
		embedder:       embedder,
		collectionName: collectionName,
		vectorSize:     defaultVectorSize,
	}, nil
}

// InitCollection implements CategoryIndex.
func (q *qdrantCategoryIndex) InitCollection(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if exists {
		log.Printf("✅ Qdrant collection '%s' already exists", q.collectionName)
		return nil
	}

	err = q.client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: q.collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     q.vectorSize,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	log.Printf("✅ Qdrant collection '%s' created successfully", q.collectionName)
	return nil
}

// IndexCategory implements CategoryIndex. Each name and alias becomes one
// point; point IDs are derived from the alias so re-indexing overwrites.
func (q *qdrantCategoryIndex) IndexCategory(ctx context.Context, profile CategoryProfile) (int, error) {
	var points []*qdrant.PointStruct
	for _, alias := range append([]string{profile.Name}, profile.Aliases...) {
		embedding, err := q.embedder.GenerateEmbedding(ctx, alias)
		if err != nil {
			return 0, fmt.Errorf("failed to embed alias %q: %w", alias, err)
		}

		pointID := aliasPointID(q.collectionName, alias)
		points = append(points, &qdrant.PointStruct{
			Id:      qdrant.NewID(pointID.String()),
			Vectors: qdrant.NewVectors(embedding...),
			Payload: qdrant.NewValueMap(map[string]any{
				"category": profile.Name,
				"alias":    alias,
			}),
		})
	}

	if len(points) == 0 {
		return 0, nil
	}

	_, err := q.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: q.collectionName,
		Points:         points,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to upsert points: %w", err)
	}

	return len(points), nil
}

// NearestCategory implements CategoryLookup.
func (q *qdrantCategoryIndex) NearestCategory(ctx context.Context, label string) (string, float32, error) {
	embedding, err := q.embedder.GenerateEmbedding(ctx, label)
	if err != nil {
		return "", 0, fmt.Errorf("failed to embed label: %w", err)
	}

	points, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collectionName,
		Query:          qdrant.NewQuery(embedding...),
		Limit:          qdrant.PtrOf(uint64(1)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return "", 0, fmt.Errorf("failed to search: %w", err)
	}

	if len(points) == 0 {
		return "", 0, nil
	}

	category, ok := points[0].Payload["category"]
	if !ok {
		return "", 0, fmt.Errorf("point has no category payload")
	}
	val, ok := category.GetKind().(*qdrant.Value_StringValue)
	if !ok {
		return "", 0, fmt.Errorf("category payload is not a string")
	}

	return val.StringValue, points[0].Score, nil
}

func aliasPointID(collection, alias string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(collection+"/"+alias))
}
