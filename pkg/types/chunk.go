package types

import (
	"crypto/sha256"
	"errors"
)

// Chunk represents one unit of chunker output: a trimmed, non-empty span of
// source text measured at or under the token budget it was produced with,
// unless OverBudget is set.
type Chunk struct {
	// Identification
	ID         int64
	DocumentID int64

	// Content
	Content     string
	ContentHash [32]byte // SHA-256 hash for change detection
	TokenCount  int      // Oracle-measured token count

	// Position
	Seq int // Zero-based position within the source document

	// OverBudget marks a floor-case chunk: a minimal slice that could not be
	// reduced below the budget even one rune at a time. Downstream consumers
	// (e.g. an embedding model that truncates) should log or re-route these
	// rather than silently truncate.
	OverBudget bool
}

// ValidateContent checks if the chunk content is valid
func (c *Chunk) ValidateContent() error {
	if c.Content == "" {
		return ErrEmptyContent
	}

	if c.Seq < 0 {
		return ErrInvalidSeq
	}

	if c.TokenCount < 0 {
		return errors.New("token count must be non-negative")
	}

	return nil
}

// ComputeContentHash computes the SHA-256 hash of the chunk content
func (c *Chunk) ComputeContentHash() {
	c.ContentHash = sha256.Sum256([]byte(c.Content))
}

// Validate performs comprehensive validation of the chunk
func (c *Chunk) Validate() error {
	if err := c.ValidateContent(); err != nil {
		return err
	}

	// Verify content hash is computed
	var zeroHash [32]byte
	if c.ContentHash == zeroHash {
		return errors.New("content hash must be computed")
	}

	return nil
}
