package recommend

import (
	"fmt"
	"strings"
)

// ByAuthor finds books whose author field contains both the first and the
// last token of the given name, case-insensitively and in any order. Fewer
// than two tokens is malformed input. No fuzzy matching.
func (x *Recommender) ByAuthor(author string, topN int) *Result {
	topN = normalizeTopN(topN)

	parts := strings.Fields(strings.ToLower(author))
	if len(parts) < 2 {
		return invalidInput("Invalid author name: first and last name are required.")
	}

	firstName, lastName := parts[0], parts[1]

	var matches []Match
	for _, book := range x.catalog.Books() {
		line := strings.ToLower(book.AuthorLine())
		if strings.Contains(line, firstName) && strings.Contains(line, lastName) {
			matches = append(matches, Match{Book: book})
			if len(matches) >= topN {
				break
			}
		}
	}

	if len(matches) == 0 {
		return notFound(fmt.Sprintf("No match for author '%s'.", author))
	}

	return found(matches)
}
