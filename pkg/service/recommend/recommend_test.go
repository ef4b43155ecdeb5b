package recommend_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/repository"
	"github.com/m-mizutani/libris/pkg/service/recommend"
)

// fakeEncoder returns a fixed vector for every query
type fakeEncoder struct {
	vec []float32
	err error
}

func (x *fakeEncoder) Embed(ctx context.Context, text string) ([]float32, error) {
	if x.err != nil {
		return nil, x.err
	}
	return x.vec, nil
}

func testCatalog(t *testing.T) *repository.Catalog {
	t.Helper()

	books := []*model.Book{
		{MediumID: 1, ISBN: 9780441013593, Title: "Dune", Authors: []string{"Frank Herbert"}, Description: "Desert planet epic", Category: "Science Fiction"},
		{MediumID: 2, ISBN: 9780441172696, Title: "Dune Messiah", Authors: []string{"Frank Herbert"}},
		{MediumID: 3, ISBN: 9780553293357, Title: "Foundation", Authors: []string{"Isaac Asimov"}},
	}
	// Dune and Dune Messiah are close; Foundation points elsewhere
	embeddings := [][]float32{
		{1, 0},
		{0.9, 0.1},
		{0, 1},
	}

	catalog, err := repository.NewCatalogFromData(books, embeddings)
	gt.NoError(t, err)
	return catalog
}

func testInteractions() *repository.Interactions {
	return repository.NewInteractionsFromData([]*model.UserReads{
		{UserID: "u1", Books: []model.ISBN{9780441013593, 9780441172696}},
		{UserID: "u2", Books: []model.ISBN{9780441013593, 9780441172696, 9780553293357}},
		{UserID: "u3", Books: []model.ISBN{9780441172696, 9780553293357}},
	})
}

func TestSimilarByTitle(t *testing.T) {
	ctx := context.Background()
	rec := recommend.New(testCatalog(t), nil, nil)

	t.Run("closest book first, query excluded", func(t *testing.T) {
		result := rec.SimilarByTitle(ctx, "Dune", 1)
		gt.Equal(t, result.Kind, recommend.KindFound)
		gt.A(t, result.Matches).Length(1)
		gt.Equal(t, result.Matches[0].Book.Title, "Dune Messiah")
	})

	t.Run("never includes the resolved book itself", func(t *testing.T) {
		for _, title := range []string{"Dune", "Dune Messiah", "Foundation"} {
			result := rec.SimilarByTitle(ctx, title, 10)
			gt.Equal(t, result.Kind, recommend.KindFound)
			for _, m := range result.Matches {
				gt.NotEqual(t, m.Book.Title, title)
			}
		}
	})

	t.Run("top_n beyond catalog size is clipped", func(t *testing.T) {
		result := rec.SimilarByTitle(ctx, "Dune", 100)
		gt.A(t, result.Matches).Length(2)
	})

	t.Run("scores are descending", func(t *testing.T) {
		result := rec.SimilarByTitle(ctx, "Dune", 3)
		for i := 1; i < len(result.Matches); i++ {
			gt.True(t, result.Matches[i-1].Similarity >= result.Matches[i].Similarity)
		}
	})

	t.Run("unresolved title", func(t *testing.T) {
		result := rec.SimilarByTitle(ctx, "Neuromancer", 5)
		gt.Equal(t, result.Kind, recommend.KindNotFound)
		gt.S(t, result.Message).Contains("Neuromancer")
	})
}

func TestByKeyword(t *testing.T) {
	ctx := context.Background()
	catalog := testCatalog(t)

	t.Run("ranks by encoder output", func(t *testing.T) {
		rec := recommend.New(catalog, nil, &fakeEncoder{vec: []float32{0, 1}})
		result := rec.ByKeyword(ctx, "galactic empires", 1)
		gt.Equal(t, result.Kind, recommend.KindFound)
		gt.A(t, result.Matches).Length(1)
		gt.Equal(t, result.Matches[0].Book.Title, "Foundation")
	})

	t.Run("nothing is excluded", func(t *testing.T) {
		rec := recommend.New(catalog, nil, &fakeEncoder{vec: []float32{1, 0}})
		result := rec.ByKeyword(ctx, "sand worms", 10)
		gt.A(t, result.Matches).Length(3)
	})

	t.Run("encoder fault downgrades to error result", func(t *testing.T) {
		rec := recommend.New(catalog, nil, &fakeEncoder{err: errors.New("quota exceeded")})
		result := rec.ByKeyword(ctx, "anything", 5)
		gt.Equal(t, result.Kind, recommend.KindError)
		gt.A(t, result.Matches).Length(0)
	})

	t.Run("dimension mismatch downgrades to error result", func(t *testing.T) {
		rec := recommend.New(catalog, nil, &fakeEncoder{vec: []float32{1, 0, 0, 0}})
		result := rec.ByKeyword(ctx, "anything", 5)
		gt.Equal(t, result.Kind, recommend.KindError)
	})
}

func TestBySharedReads(t *testing.T) {
	rec := recommend.New(testCatalog(t), testInteractions(), nil)

	t.Run("counts co-occurrences and sorts descending", func(t *testing.T) {
		result := rec.BySharedReads("9780441013593", 5)
		gt.Equal(t, result.Kind, recommend.KindFound)
		gt.A(t, result.Matches).Length(2)

		// Dune Messiah is co-read twice, Foundation once
		gt.Equal(t, result.Matches[0].Book.Title, "Dune Messiah")
		gt.Equal(t, result.Matches[0].CoReadCount, 2)
		gt.Equal(t, result.Matches[1].Book.Title, "Foundation")
		gt.Equal(t, result.Matches[1].CoReadCount, 1)

		for i := 1; i < len(result.Matches); i++ {
			gt.True(t, result.Matches[i-1].CoReadCount >= result.Matches[i].CoReadCount)
		}
	})

	t.Run("query book never appears in its own results", func(t *testing.T) {
		result := rec.BySharedReads("9780441172696", 5)
		gt.Equal(t, result.Kind, recommend.KindFound)
		for _, m := range result.Matches {
			gt.NotEqual(t, m.Book.ISBN, model.ISBN(9780441172696))
		}
	})

	t.Run("equal counts break on ascending ISBN", func(t *testing.T) {
		// Dune and Foundation are each co-read twice with Dune Messiah
		result := rec.BySharedReads("9780441172696", 5)
		gt.A(t, result.Matches).Length(2)
		gt.Equal(t, result.Matches[0].CoReadCount, result.Matches[1].CoReadCount)
		gt.True(t, result.Matches[0].Book.ISBN < result.Matches[1].Book.ISBN)
	})

	t.Run("accepts float formatted ISBN text", func(t *testing.T) {
		result := rec.BySharedReads("9780441013593.0", 5)
		gt.Equal(t, result.Kind, recommend.KindFound)
	})

	t.Run("no co-reads is an informational result", func(t *testing.T) {
		result := rec.BySharedReads("999", 5)
		gt.Equal(t, result.Kind, recommend.KindNoCoReads)
		gt.S(t, result.Message).Contains("No co-reads")
	})

	t.Run("malformed ISBN", func(t *testing.T) {
		result := rec.BySharedReads("not-a-number", 5)
		gt.Equal(t, result.Kind, recommend.KindInvalidInput)
	})
}

func TestByAuthor(t *testing.T) {
	rec := recommend.New(testCatalog(t), nil, nil)

	t.Run("both tokens must match, order free", func(t *testing.T) {
		result := rec.ByAuthor("Herbert Frank", 5)
		gt.Equal(t, result.Kind, recommend.KindFound)
		gt.A(t, result.Matches).Length(2)
		gt.Equal(t, result.Matches[0].Book.Title, "Dune")
	})

	t.Run("limit applies in catalog order", func(t *testing.T) {
		result := rec.ByAuthor("Frank Herbert", 1)
		gt.A(t, result.Matches).Length(1)
		gt.Equal(t, result.Matches[0].Book.Title, "Dune")
	})

	t.Run("single token is invalid input, not an error", func(t *testing.T) {
		result := rec.ByAuthor("Only-One-Word", 5)
		gt.Equal(t, result.Kind, recommend.KindInvalidInput)
	})

	t.Run("unknown author", func(t *testing.T) {
		result := rec.ByAuthor("Ursula LeGuin", 5)
		gt.Equal(t, result.Kind, recommend.KindNotFound)
	})
}

func TestInLibrary(t *testing.T) {
	rec := recommend.New(testCatalog(t), nil, nil)

	t.Run("exhaustive match list", func(t *testing.T) {
		check := rec.InLibrary("dune")
		gt.True(t, check.Exists)
		gt.A(t, check.Matches).Length(2)
	})

	t.Run("no match", func(t *testing.T) {
		check := rec.InLibrary("Neuromancer")
		gt.False(t, check.Exists)
		gt.A(t, check.Matches).Length(0)
	})
}
