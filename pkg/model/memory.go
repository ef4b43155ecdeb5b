package model

import (
	"github.com/google/uuid"
	"google.golang.org/genai"
)

type SessionID string

// NewSessionID generates a new unique SessionID
func NewSessionID() SessionID {
	return SessionID(uuid.New().String())
}

// Memory holds the mutable state of a single chat session. It is owned by
// exactly one session and mutated only by the dispatch loop driver.
type Memory struct {
	ID SessionID

	// Contents is the ordered message history: user messages, assistant
	// responses and tool results, in the order they occurred.
	Contents []*genai.Content

	// LastBook is the most recently resolved catalog entry, set after a
	// library lookup reports a match. Nil until then.
	LastBook *Book

	// LastTool is the name of the most recently executed retrieval function.
	LastTool string
}

func NewMemory() *Memory {
	return &Memory{ID: NewSessionID()}
}
