package repository

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/libris/pkg/model"
)

// Interactions is the per-user read log used for collaborative filtering.
// Records are filtered to catalog members at load time; stale or foreign
// identifiers are dropped silently.
type Interactions struct {
	users []*model.UserReads
}

// NewInteractions loads the synthetic user read log. Each row carries a user
// identifier and a Python-style list literal of ISBN-13 values.
func NewInteractions(path string, catalog *Catalog) (*Interactions, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open interaction file", goerr.V("path", path))
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read interaction header")
	}

	userCol, booksCol := -1, -1
	for i, name := range header {
		switch strings.TrimSpace(name) {
		case "user_id":
			userCol = i
		case "books":
			booksCol = i
		}
	}
	if userCol < 0 || booksCol < 0 {
		return nil, goerr.New("interaction file is missing required columns",
			goerr.V("header", header))
	}

	var users []*model.UserReads
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read interaction row", goerr.V("row", len(users)+1))
		}
		if booksCol >= len(record) || userCol >= len(record) {
			continue
		}

		var books []model.ISBN
		for _, raw := range parseListLiteral(record[booksCol]) {
			isbn, err := model.ParseISBN(raw)
			if err != nil {
				continue
			}
			if !catalog.HasISBN(isbn) {
				continue
			}
			books = append(books, isbn)
		}

		users = append(users, &model.UserReads{
			UserID: strings.TrimSpace(record[userCol]),
			Books:  books,
		})
	}

	return &Interactions{users: users}, nil
}

// NewInteractionsFromData builds an interaction log from already-filtered
// records.
func NewInteractionsFromData(users []*model.UserReads) *Interactions {
	return &Interactions{users: users}
}

// Users returns all interaction records. Callers must not mutate.
func (x *Interactions) Users() []*model.UserReads {
	return x.users
}

// ReadersOf returns the interaction records that contain the given ISBN.
func (x *Interactions) ReadersOf(isbn model.ISBN) []*model.UserReads {
	var readers []*model.UserReads
	for _, user := range x.users {
		for _, b := range user.Books {
			if b == isbn {
				readers = append(readers, user)
				break
			}
		}
	}
	return readers
}
