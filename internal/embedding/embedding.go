// Package embedding provides the text embedding collaborator used for
// semantic content comparison and post-mutation embedding refresh.
package embedding

import "context"

// Mode selects the embedding task type.
type Mode string

// Embedding modes. Documents are indexed content; queries are compared
// against indexed content.
const (
	ModeDocument Mode = "document"
	ModeQuery    Mode = "query"
)

// Embedder generates a fixed-length embedding vector for a text.
//
// A nil vector with a nil error is the soft-failure signal: the caller must
// keep its data mutation and leave the stale embedding in place rather than
// abort the enclosing operation.
type Embedder interface {
	EmbedText(ctx context.Context, text string, mode Mode) ([]float32, error)
}
