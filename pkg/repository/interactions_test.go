package repository_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/libris/pkg/model"
	"github.com/m-mizutani/libris/pkg/repository"
)

const testUsersCSV = `user_id,books
u1,"['9780441013593.0', '9780441172696.0']"
u2,"['9780441013593.0', '9780553293357.0', '9999999999999.0']"
u3,"[]"
`

func TestNewInteractions(t *testing.T) {
	booksPath := writeBooksCSV(t, testBooksCSV)
	catalog, err := repository.NewCatalogWithoutEmbeddings(booksPath)
	gt.NoError(t, err)

	usersPath := filepath.Join(t.TempDir(), "users.csv")
	gt.NoError(t, os.WriteFile(usersPath, []byte(testUsersCSV), 0600))

	interactions, err := repository.NewInteractions(usersPath, catalog)
	gt.NoError(t, err)
	gt.Equal(t, len(interactions.Users()), 3)

	t.Run("stale ISBNs are dropped", func(t *testing.T) {
		var u2 *model.UserReads
		for _, u := range interactions.Users() {
			if u.UserID == "u2" {
				u2 = u
			}
		}
		gt.V(t, u2).NotNil()
		gt.A(t, u2.Books).Length(2)
	})

	t.Run("empty history survives loading", func(t *testing.T) {
		var u3 *model.UserReads
		for _, u := range interactions.Users() {
			if u.UserID == "u3" {
				u3 = u
			}
		}
		gt.V(t, u3).NotNil()
		gt.A(t, u3.Books).Length(0)
	})
}

func TestReadersOf(t *testing.T) {
	interactions := repository.NewInteractionsFromData([]*model.UserReads{
		{UserID: "u1", Books: []model.ISBN{9780441013593, 9780441172696}},
		{UserID: "u2", Books: []model.ISBN{9780441013593}},
		{UserID: "u3", Books: []model.ISBN{9780553293357}},
	})

	gt.A(t, interactions.ReadersOf(9780441013593)).Length(2)
	gt.A(t, interactions.ReadersOf(9780553293357)).Length(1)
	gt.A(t, interactions.ReadersOf(42)).Length(0)
}

func TestNewInteractionsBadFiles(t *testing.T) {
	booksPath := writeBooksCSV(t, testBooksCSV)
	catalog, err := repository.NewCatalogWithoutEmbeddings(booksPath)
	gt.NoError(t, err)

	t.Run("missing file", func(t *testing.T) {
		_, err := repository.NewInteractions(filepath.Join(t.TempDir(), "nope.csv"), catalog)
		gt.Error(t, err)
	})

	t.Run("missing required column", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "users.csv")
		gt.NoError(t, os.WriteFile(path, []byte("user_id\nu1\n"), 0600))
		_, err := repository.NewInteractions(path, catalog)
		gt.Error(t, err)
	})
}
