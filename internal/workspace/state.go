package workspace

import (
	"github.com/contextiq/contextiq-cli/internal/api"
	"github.com/contextiq/contextiq-cli/internal/session"
)

// CollectionStatus is the lifecycle of the document list.
type CollectionStatus int

const (
	CollectionIdle CollectionStatus = iota
	CollectionLoading
	CollectionReady
	CollectionError
)

func (s CollectionStatus) String() string {
	switch s {
	case CollectionLoading:
		return "loading"
	case CollectionReady:
		return "ready"
	case CollectionError:
		return "error"
	}
	return "idle"
}

// Collection is the cached, server-ordered document list. Documents keeps
// the last successful contents while Loading or Error.
type Collection struct {
	Status    CollectionStatus
	Documents []api.Document
	Query     string
	Err       error
}

// Index returns the position of id in the collection, or -1.
func (c Collection) Index(id string) int {
	for i, d := range c.Documents {
		if d.ID == id {
			return i
		}
	}
	return -1
}

// ConversationStatus is the lifecycle of the active conversation.
type ConversationStatus int

const (
	ConversationEmpty ConversationStatus = iota
	ConversationPending
	ConversationReady
	ConversationError
)

func (s ConversationStatus) String() string {
	switch s {
	case ConversationPending:
		return "pending"
	case ConversationReady:
		return "ready"
	case ConversationError:
		return "error"
	}
	return "empty"
}

// Turn is one question and the chunks returned for it. Chunks is empty,
// not nil, when nothing relevant was found.
type Turn struct {
	Question string
	Chunks   []api.AnswerChunk
}

// Conversation is scoped to exactly one selected document.
type Conversation struct {
	Status  ConversationStatus
	Turns   []Turn
	Pending string
	Err     error
}

// Snapshot is a consistent copy of the whole workspace.
type Snapshot struct {
	Session      *session.Session
	Collection   Collection
	Selection    *api.Document
	Conversation Conversation
}

func (c Collection) clone() Collection {
	out := c
	out.Documents = append([]api.Document(nil), c.Documents...)
	return out
}

func (c Conversation) clone() Conversation {
	out := c
	out.Turns = make([]Turn, len(c.Turns))
	for i, t := range c.Turns {
		out.Turns[i] = Turn{Question: t.Question, Chunks: append([]api.AnswerChunk{}, t.Chunks...)}
	}
	return out
}

// dedupe keeps the first occurrence of each id, preserving order.
func dedupe(docs []api.Document) []api.Document {
	seen := make(map[string]struct{}, len(docs))
	out := make([]api.Document, 0, len(docs))
	for _, d := range docs {
		if _, ok := seen[d.ID]; ok {
			continue
		}
		seen[d.ID] = struct{}{}
		out = append(out, d)
	}
	return out
}
