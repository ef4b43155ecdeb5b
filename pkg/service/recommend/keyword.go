package recommend

import (
	"context"

	"github.com/m-mizutani/libris/pkg/utils/logging"
)

// ByKeyword ranks the whole catalog against a free-text query encoded into
// the catalog's vector space. Nothing is excluded since the query is not a
// catalog row. Encoder faults are downgraded to an error result.
func (x *Recommender) ByKeyword(ctx context.Context, keywords string, topN int) *Result {
	topN = normalizeTopN(topN)

	if x.catalog.Dimension() == 0 {
		return internalError("embedding matrix is not loaded")
	}

	if x.encoder == nil {
		return internalError("text encoder is not available")
	}

	query, err := x.encoder.Embed(ctx, keywords)
	if err != nil {
		logging.From(ctx).Warn("failed to encode keyword query", "keywords", keywords, "error", err)
		return internalError("failed to encode query")
	}

	if len(query) != x.catalog.Dimension() {
		logging.From(ctx).Warn("query embedding dimension mismatch",
			"got", len(query), "want", x.catalog.Dimension())
		return internalError("query embedding does not match catalog dimension")
	}

	return found(x.rankBySimilarity(query, topN))
}
