package model

import (
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

// ISBN is an ISBN-13 normalized to its integer form.
type ISBN int64

// ParseISBN coerces a textual ISBN-13 into its canonical integer form.
// Inputs like "9780439064873.0" (float formatted export artifacts) are accepted.
func ParseISBN(s string) (ISBN, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, goerr.New("empty ISBN")
	}

	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return ISBN(v), nil
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid ISBN", goerr.V("isbn", s))
	}
	return ISBN(int64(f)), nil
}

func (x ISBN) String() string {
	return strconv.FormatInt(int64(x), 10)
}

// MediumID is the library system's internal identifier of a catalog entry.
type MediumID int64

func (x MediumID) String() string {
	return strconv.FormatInt(int64(x), 10)
}

// Book is one immutable catalog entry. The embedding vector is held by the
// catalog repository, keyed by the same row the book was loaded from.
type Book struct {
	MediumID    MediumID `json:"medium_id"`
	ISBN        ISBN     `json:"isbn13"`
	Title       string   `json:"title"`
	Authors     []string `json:"authors"`
	Description string   `json:"description,omitempty"`
	ImageLink   string   `json:"image_link,omitempty"`
	Category    string   `json:"category,omitempty"`
}

// AuthorLine renders the author list as a single comparable string.
func (x *Book) AuthorLine() string {
	return strings.Join(x.Authors, ", ")
}

// UserReads is one synthetic user's interaction record: the books the user
// has engaged with, already filtered to catalog members.
type UserReads struct {
	UserID string
	Books  []ISBN
}
