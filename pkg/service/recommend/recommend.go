package recommend

import (
	"context"

	"github.com/m-mizutani/libris/pkg/repository"
)

// DefaultTopN is the result count used when the caller does not override it.
const DefaultTopN = 5

// Encoder maps free text into the catalog's embedding vector space. The
// production implementation is the shared Gemini embedding model; tests
// substitute deterministic fakes.
type Encoder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Recommender bundles the five retrieval functions over the immutable
// catalog, the interaction log, and the shared text encoder. All methods are
// stateless per call and safe for concurrent use.
type Recommender struct {
	catalog      *repository.Catalog
	interactions *repository.Interactions
	encoder      Encoder
}

func New(catalog *repository.Catalog, interactions *repository.Interactions, encoder Encoder) *Recommender {
	return &Recommender{
		catalog:      catalog,
		interactions: interactions,
		encoder:      encoder,
	}
}

func normalizeTopN(topN int) int {
	if topN <= 0 {
		return DefaultTopN
	}
	return topN
}
