package recommend

import (
	"fmt"
	"sort"

	"github.com/m-mizutani/libris/pkg/model"
)

// BySharedReads recommends books read by the same users as the given book.
// The ISBN arrives as text from the reasoning agent and is coerced to its
// canonical integer form. No co-reads is an expected empty state, not an
// error. Equal co-read counts break on ascending ISBN so the ranking is
// deterministic.
func (x *Recommender) BySharedReads(isbn string, topN int) *Result {
	topN = normalizeTopN(topN)

	target, err := model.ParseISBN(isbn)
	if err != nil {
		return invalidInput(fmt.Sprintf("Invalid ISBN '%s'.", isbn))
	}

	if x.interactions == nil {
		return internalError("interaction log is not loaded")
	}

	counts := make(map[model.ISBN]int)
	for _, user := range x.interactions.ReadersOf(target) {
		for _, b := range user.Books {
			if b != target {
				counts[b]++
			}
		}
	}

	if len(counts) == 0 {
		return &Result{Kind: KindNoCoReads, Message: "No co-reads found."}
	}

	ranked := make([]Match, 0, len(counts))
	for isbn, count := range counts {
		book, ok := x.catalog.ByISBN(isbn)
		if !ok {
			// Interaction records are filtered at load time, so this only
			// happens if the catalog and log went out of sync.
			continue
		}
		ranked = append(ranked, Match{Book: book, CoReadCount: count})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].CoReadCount != ranked[j].CoReadCount {
			return ranked[i].CoReadCount > ranked[j].CoReadCount
		}
		return ranked[i].Book.ISBN < ranked[j].Book.ISBN
	})

	if len(ranked) > topN {
		ranked = ranked[:topN]
	}

	return found(ranked)
}
