// Package chunker turns markdown documents into header-prefixed chunks sized
// for embedding.
//
// A document is normalized, split into "## " sections and each section body
// is packed into chunks of at most a configured number of characters. The
// package holds no state and does no I/O; a Chunker is safe for concurrent use.
package chunker

import (
	"errors"
	"fmt"
)

// Version identifies the chunking rules. Bump it when output for the same
// input changes.
const Version = "sections-v1"

// DefaultMaxChars is the chunk budget used when none is configured.
const DefaultMaxChars = 1400

// ErrInvalidMaxChars is returned when the chunk budget is not positive.
var ErrInvalidMaxChars = errors.New("max chars must be greater than 0")

// Chunker chunks whole documents with a fixed budget.
type Chunker struct {
	maxChars int
}

// New creates a Chunker that targets maxChars characters per chunk.
func New(maxChars int) (*Chunker, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMaxChars, maxChars)
	}
	return &Chunker{maxChars: maxChars}, nil
}

// MaxChars returns the configured budget.
func (c *Chunker) MaxChars() int {
	return c.maxChars
}

// Chunk returns the chunks of raw in document order.
// Documents without "## " sections produce no chunks.
func (c *Chunker) Chunk(raw string) []Chunk {
	var chunks []Chunk
	for _, section := range Sections(Normalize(raw)) {
		for chunk := range Pack(section, c.maxChars) {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// Texts is Chunk reduced to the chunk texts.
func (c *Chunker) Texts(raw string) []string {
	chunks := c.Chunk(raw)
	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}
	return texts
}

// ChunkDocument chunks raw with a one-off budget.
func ChunkDocument(raw string, maxChars int) ([]Chunk, error) {
	c, err := New(maxChars)
	if err != nil {
		return nil, err
	}
	return c.Chunk(raw), nil
}
