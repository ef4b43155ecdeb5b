package recommend

import "github.com/m-mizutani/libris/pkg/model"

// Kind tags the outcome of a retrieval function so that callers can match
// exhaustively instead of probing loose key-value payloads.
type Kind string

const (
	// KindFound carries one or more matches.
	KindFound Kind = "found"
	// KindNotFound means resolution yielded no match (title, author).
	KindNotFound Kind = "not_found"
	// KindInvalidInput means the input was malformed (e.g. one-word author name).
	KindInvalidInput Kind = "invalid_input"
	// KindNoCoReads is the expected empty state of collaborative filtering.
	KindNoCoReads Kind = "no_co_reads"
	// KindError is an internal fault downgraded to a data value; the
	// surrounding conversation continues.
	KindError Kind = "error"
)

// Match is one recommended catalog entry with the score that ranked it.
type Match struct {
	Book *model.Book `json:"book"`
	// Similarity is the cosine similarity to the query, where applicable.
	Similarity float64 `json:"similarity,omitempty"`
	// CoReadCount is the co-occurrence frequency from shared-reads ranking.
	CoReadCount int `json:"co_read_count,omitempty"`
}

// Result is the tagged outcome of one retrieval function call. Matches is
// populated for KindFound only; Message explains every other kind.
type Result struct {
	Kind    Kind    `json:"kind"`
	Message string  `json:"message,omitempty"`
	Matches []Match `json:"matches,omitempty"`
}

func found(matches []Match) *Result {
	return &Result{Kind: KindFound, Matches: matches}
}

func notFound(msg string) *Result {
	return &Result{Kind: KindNotFound, Message: msg}
}

func invalidInput(msg string) *Result {
	return &Result{Kind: KindInvalidInput, Message: msg}
}

func internalError(msg string) *Result {
	return &Result{Kind: KindError, Message: msg}
}
