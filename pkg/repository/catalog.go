package repository

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/model"
)

// Catalog is the immutable in-memory book table plus its embedding matrix.
// Loaded once at startup; safe for unlimited concurrent reads afterwards.
type Catalog struct {
	books      []*model.Book
	embeddings [][]float32

	// Key-to-row indexes built once at load time. All lookups go through
	// these; book/embedding alignment never relies on positional coincidence
	// after load.
	rowByISBN   map[model.ISBN]int
	rowByMedium map[model.MediumID]int
}

// NewCatalog loads the book table from CSV and the embedding matrix from a
// .npy file. It fails fast on missing files, malformed rows, or a row-count
// mismatch between the two sources.
func NewCatalog(booksPath, embeddingsPath string) (*Catalog, error) {
	books, err := loadBooks(booksPath)
	if err != nil {
		return nil, err
	}

	embeddings, err := ReadNPYMatrix(embeddingsPath)
	if err != nil {
		return nil, err
	}

	if len(embeddings) != len(books) {
		return nil, goerr.New("embedding matrix does not align with catalog",
			goerr.V("books", len(books)), goerr.V("embeddings", len(embeddings)))
	}

	return newCatalog(books, embeddings)
}

// NewCatalogFromData builds a catalog from already-loaded entries. The
// embedding matrix may be nil when similarity ranking is not needed.
func NewCatalogFromData(books []*model.Book, embeddings [][]float32) (*Catalog, error) {
	if embeddings != nil && len(embeddings) != len(books) {
		return nil, goerr.New("embedding matrix does not align with catalog",
			goerr.V("books", len(books)), goerr.V("embeddings", len(embeddings)))
	}
	return newCatalog(books, embeddings)
}

// NewCatalogWithoutEmbeddings loads only the book table. Similarity ranking
// is unavailable; used by the offline embedding generator.
func NewCatalogWithoutEmbeddings(booksPath string) (*Catalog, error) {
	books, err := loadBooks(booksPath)
	if err != nil {
		return nil, err
	}
	return newCatalog(books, nil)
}

func newCatalog(books []*model.Book, embeddings [][]float32) (*Catalog, error) {
	c := &Catalog{
		books:       books,
		embeddings:  embeddings,
		rowByISBN:   make(map[model.ISBN]int, len(books)),
		rowByMedium: make(map[model.MediumID]int, len(books)),
	}

	for row, book := range books {
		if _, exists := c.rowByISBN[book.ISBN]; exists {
			return nil, goerr.New("duplicated ISBN in catalog", goerr.V("isbn", book.ISBN))
		}
		c.rowByISBN[book.ISBN] = row
		c.rowByMedium[book.MediumID] = row
	}

	return c, nil
}

func loadBooks(path string) ([]*model.Book, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open catalog file", goerr.V("path", path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog header")
	}

	col := map[string]int{}
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"medium_id", "isbn13", "title", "author_list"} {
		if _, ok := col[required]; !ok {
			return nil, goerr.New("catalog is missing a required column", goerr.V("column", required))
		}
	}

	field := func(record []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var books []*model.Book
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read catalog row", goerr.V("row", len(books)+1))
		}

		mediumID, err := strconv.ParseInt(field(record, "medium_id"), 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid medium_id", goerr.V("row", len(books)+1))
		}

		isbn, err := model.ParseISBN(field(record, "isbn13"))
		if err != nil {
			return nil, goerr.Wrap(err, "invalid isbn13", goerr.V("row", len(books)+1))
		}

		books = append(books, &model.Book{
			MediumID:    model.MediumID(mediumID),
			ISBN:        isbn,
			Title:       field(record, "title"),
			Authors:     parseListLiteral(field(record, "author_list")),
			Description: field(record, "description"),
			ImageLink:   field(record, "bildlink"),
			Category:    field(record, "categories"),
		})
	}

	if len(books) == 0 {
		return nil, goerr.New("catalog is empty", goerr.V("path", path))
	}

	return books, nil
}

// Size returns the number of catalog entries.
func (c *Catalog) Size() int {
	return len(c.books)
}

// Dimension returns the embedding vector length, or 0 when no matrix is loaded.
func (c *Catalog) Dimension() int {
	if len(c.embeddings) == 0 {
		return 0
	}
	return len(c.embeddings[0])
}

// Book returns the catalog entry at the given row.
func (c *Catalog) Book(row int) *model.Book {
	return c.books[row]
}

// Books returns all catalog entries in catalog order. Callers must not mutate.
func (c *Catalog) Books() []*model.Book {
	return c.books
}

// Embedding returns the embedding vector of the given row. Callers must not mutate.
func (c *Catalog) Embedding(row int) []float32 {
	return c.embeddings[row]
}

// ByISBN resolves a catalog entry by its ISBN-13.
func (c *Catalog) ByISBN(isbn model.ISBN) (*model.Book, bool) {
	row, ok := c.rowByISBN[isbn]
	if !ok {
		return nil, false
	}
	return c.books[row], true
}

// ByMediumID resolves a catalog entry by the library system identifier.
func (c *Catalog) ByMediumID(id model.MediumID) (*model.Book, bool) {
	row, ok := c.rowByMedium[id]
	if !ok {
		return nil, false
	}
	return c.books[row], true
}

// HasISBN reports whether the ISBN belongs to the catalog.
func (c *Catalog) HasISBN(isbn model.ISBN) bool {
	_, ok := c.rowByISBN[isbn]
	return ok
}

// ResolveTitle finds the catalog row for a free-text title. Tier 1 is exact
// case-insensitive equality, tier 2 is case-insensitive containment. Within a
// tier the first row in catalog order wins; this is a known simplification,
// not a relevance ranking. Returns -1 when nothing matches.
func (c *Catalog) ResolveTitle(title string) int {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return -1
	}

	for row, book := range c.books {
		if strings.ToLower(book.Title) == needle {
			return row
		}
	}

	for row, book := range c.books {
		if strings.Contains(strings.ToLower(book.Title), needle) {
			return row
		}
	}

	return -1
}

// FindByTitleSubstring returns every catalog entry whose title contains the
// query case-insensitively, in catalog order. Exhaustive on purpose so that
// series and multi-edition cases surface all volumes.
func (c *Catalog) FindByTitleSubstring(title string) []*model.Book {
	needle := strings.ToLower(strings.TrimSpace(title))
	if needle == "" {
		return nil
	}

	var matches []*model.Book
	for _, book := range c.books {
		if strings.Contains(strings.ToLower(book.Title), needle) {
			matches = append(matches, book)
		}
	}
	return matches
}

// parseListLiteral parses a Python-style list literal of strings or numbers,
// e.g. `['J.K. Rowling', "Mary GrandPré"]`. The catalog export writes author
// lists and read lists in this form.
func parseListLiteral(s string) []string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	if strings.TrimSpace(s) == "" {
		return nil
	}

	var items []string
	var current strings.Builder
	var quote rune

	flush := func() {
		item := strings.TrimSpace(current.String())
		item = strings.Trim(item, `'"`)
		if item != "" {
			items = append(items, item)
		}
		current.Reset()
	}

	for _, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
		case r == ',':
			flush()
		default:
			current.WriteRune(r)
		}
	}
	flush()

	return items
}
