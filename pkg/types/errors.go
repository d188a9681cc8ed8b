package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidChunkID = errors.New("invalid chunk ID")
	ErrInvalidSeq     = errors.New("sequence must be >= 0")
	ErrEmptyContent   = errors.New("content cannot be empty")
)
