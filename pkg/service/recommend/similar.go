package recommend

import (
	"context"
	"fmt"
	"sort"

	"github.com/m-mizutani/libris/pkg/utils/logging"
)

// SimilarByTitle finds catalog entries whose embeddings are closest to the
// book resolved from the given title. The resolved book itself is excluded
// from the results. An unresolvable title is a not-found outcome; any
// internal fault is downgraded to an error result so that one bad lookup
// does not break the surrounding conversation.
func (x *Recommender) SimilarByTitle(ctx context.Context, title string, topN int) *Result {
	topN = normalizeTopN(topN)

	row := x.catalog.ResolveTitle(title)
	if row < 0 {
		return notFound(fmt.Sprintf("No book found with title '%s'.", title))
	}

	if x.catalog.Dimension() == 0 {
		logging.From(ctx).Warn("similarity search without embedding matrix", "title", title)
		return internalError("embedding matrix is not loaded")
	}

	matches := x.rankBySimilarity(x.catalog.Embedding(row), topN, row)
	return found(matches)
}

// rankBySimilarity scores every catalog row against the query vector and
// returns the topN best matches in descending score order. Rows listed in
// exclude are skipped. Ties break on ascending ISBN for determinism.
func (x *Recommender) rankBySimilarity(query []float32, topN int, exclude ...int) []Match {
	excluded := make(map[int]bool, len(exclude))
	for _, row := range exclude {
		excluded[row] = true
	}

	matches := make([]Match, 0, x.catalog.Size())
	for row := 0; row < x.catalog.Size(); row++ {
		if excluded[row] {
			continue
		}
		matches = append(matches, Match{
			Book:       x.catalog.Book(row),
			Similarity: cosineSimilarity(query, x.catalog.Embedding(row)),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Similarity != matches[j].Similarity {
			return matches[i].Similarity > matches[j].Similarity
		}
		return matches[i].Book.ISBN < matches[j].Book.ISBN
	})

	if len(matches) > topN {
		matches = matches[:topN]
	}
	return matches
}
