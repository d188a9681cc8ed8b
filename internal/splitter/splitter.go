package splitter

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/aeon-neo/vocal-ai-sub001/pkg/types"
)

// Common errors
var (
	ErrInvalidBudget = errors.New("max tokens must be positive")
	ErrNilCounter    = errors.New("token counter is required")
	ErrCounterFailed = errors.New("token counter failed")
)

const (
	// paragraphSep rejoins paragraphs packed into the same chunk
	paragraphSep = "\n\n"

	// sentenceSep rejoins sentences packed into the same chunk
	sentenceSep = " "

	// floorRuneCount is the minimal prefix taken when even a single rune
	// exceeds the budget. Guarantees forward progress on degenerate
	// budget/counter combinations.
	floorRuneCount = 4
)

// TokenCounter measures the token count of a text. It is the splitter's only
// external dependency and may be backed by a remote model, so it takes a
// context. Implementations must return the same count for the same text
// within one Split call.
type TokenCounter interface {
	Count(ctx context.Context, text string) (int, error)
}

// TokenCounterFunc adapts a plain function to the TokenCounter interface
type TokenCounterFunc func(ctx context.Context, text string) (int, error)

// Count implements TokenCounter
func (f TokenCounterFunc) Count(ctx context.Context, text string) (int, error) {
	return f(ctx, text)
}

// Result contains the ordered chunks from one Split call
type Result struct {
	Chunks []types.Chunk

	// OverBudget counts chunks whose token count exceeds the budget. Only
	// floor-case chunks can be over budget; a non-zero value means the
	// caller should inspect the flagged chunks before embedding them.
	OverBudget int
}

// Contents returns just the chunk text, in order
func (r *Result) Contents() []string {
	out := make([]string, len(r.Chunks))
	for i := range r.Chunks {
		out[i] = r.Chunks[i].Content
	}
	return out
}

// Splitter divides text into chunks that stay within a token budget,
// preferring paragraph boundaries, then sentence boundaries, then raw rune
// spans. It is stateless between calls and safe to reuse.
type Splitter struct {
	maxTokens int
	counter   TokenCounter
}

// New creates a Splitter for the given budget and token counter
func New(maxTokens int, counter TokenCounter) (*Splitter, error) {
	if maxTokens <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidBudget, maxTokens)
	}
	if counter == nil {
		return nil, ErrNilCounter
	}
	return &Splitter{
		maxTokens: maxTokens,
		counter:   counter,
	}, nil
}

// MaxTokens returns the configured token budget
func (s *Splitter) MaxTokens() int {
	return s.maxTokens
}

// Split chunks text into ordered, budget-bounded chunks. Empty or
// whitespace-only input yields an empty result without querying the counter.
// A counter error aborts the whole call; no partial result is returned.
func (s *Splitter) Split(ctx context.Context, text string) (*Result, error) {
	result := &Result{}

	paragraphs := Paragraphs(text)
	if len(paragraphs) == 0 {
		return result, nil
	}

	chunks, err := s.packUnits(ctx, paragraphs, paragraphSep, s.splitParagraph)
	if err != nil {
		return nil, err
	}

	for i := range chunks {
		chunks[i].Seq = i
		chunks[i].ComputeContentHash()
		if chunks[i].OverBudget {
			result.OverBudget++
		}
	}
	result.Chunks = chunks
	return result, nil
}

// Split is a convenience wrapper for one-off use: it chunks text with an ad
// hoc Splitter and returns only the chunk contents.
func Split(ctx context.Context, text string, maxTokens int, counter TokenCounter) ([]string, error) {
	s, err := New(maxTokens, counter)
	if err != nil {
		return nil, err
	}
	result, err := s.Split(ctx, text)
	if err != nil {
		return nil, err
	}
	return result.Contents(), nil
}

// count queries the token counter, wrapping failures
func (s *Splitter) count(ctx context.Context, text string) (int, error) {
	n, err := s.counter.Count(ctx, text)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrCounterFailed, err)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative count %d", ErrCounterFailed, n)
	}
	return n, nil
}

// packUnits greedily accumulates units (paragraphs or sentences) into chunks,
// joining with sep, flushing when the next unit would overflow the budget.
// A unit that alone exceeds the budget is delegated whole to overflow and its
// sub-chunks are appended in place; they are never merged with neighbors.
// This one routine serves both the paragraph and the sentence tier.
func (s *Splitter) packUnits(ctx context.Context, units []string, sep string, overflow func(context.Context, string) ([]types.Chunk, error)) ([]types.Chunk, error) {
	var (
		out       []types.Chunk
		acc       string
		accTokens int
	)

	flush := func() {
		if acc == "" {
			return
		}
		out = append(out, types.Chunk{Content: acc, TokenCount: accTokens})
		acc, accTokens = "", 0
	}

	for _, unit := range units {
		n, err := s.count(ctx, unit)
		if err != nil {
			return nil, err
		}

		if n > s.maxTokens {
			flush()
			sub, err := overflow(ctx, unit)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
			continue
		}

		candidate := unit
		if acc != "" {
			candidate = acc + sep + unit
		}
		candidateTokens, err := s.count(ctx, candidate)
		if err != nil {
			return nil, err
		}

		if candidateTokens > s.maxTokens && acc != "" {
			flush()
			acc, accTokens = unit, n
		} else {
			acc, accTokens = candidate, candidateTokens
		}
	}

	// Re-measure the trailing accumulator. A counter that is not stable
	// across repeated queries could leave it over budget; the rune tier is
	// the last-resort safety net for that case.
	if acc != "" {
		n, err := s.count(ctx, acc)
		if err != nil {
			return nil, err
		}
		if n > s.maxTokens {
			sub, err := s.splitByRunes(ctx, acc)
			if err != nil {
				return nil, err
			}
			out = append(out, sub...)
		} else {
			out = append(out, types.Chunk{Content: acc, TokenCount: n})
		}
	}

	return out, nil
}

// splitParagraph re-packs an oversized paragraph sentence by sentence. A
// single sentence that still exceeds the budget falls through to the rune
// tier.
func (s *Splitter) splitParagraph(ctx context.Context, paragraph string) ([]types.Chunk, error) {
	sentences := Sentences(paragraph)
	if len(sentences) == 0 {
		return s.splitByRunes(ctx, paragraph)
	}
	return s.packUnits(ctx, sentences, sentenceSep, s.splitByRunes)
}

// splitByRunes binary-searches rune offsets for the longest prefix within
// budget, emits it, and repeats on the remainder. Searching rune offsets
// rather than byte offsets means a cut can never land inside a multi-byte
// code point. Token counts are treated as monotonic in prefix length, so the
// search needs O(log n) counter queries per emitted chunk.
func (s *Splitter) splitByRunes(ctx context.Context, text string) ([]types.Chunk, error) {
	var out []types.Chunk

	remaining := []rune(strings.TrimSpace(text))
	for len(remaining) > 0 {
		total, err := s.count(ctx, string(remaining))
		if err != nil {
			return nil, err
		}
		if total <= s.maxTokens {
			out = append(out, types.Chunk{Content: string(remaining), TokenCount: total})
			break
		}

		// Invariant: remaining[:lo] is confirmed within budget,
		// remaining[:hi] is not. The empty prefix is trivially valid.
		lo, hi := 0, len(remaining)
		loTokens := 0
		for hi-lo > 1 {
			mid := lo + (hi-lo)/2
			n, err := s.count(ctx, string(remaining[:mid]))
			if err != nil {
				return nil, err
			}
			if n <= s.maxTokens {
				lo, loTokens = mid, n
			} else {
				hi = mid
			}
		}

		cut := lo
		cutTokens := loTokens
		overBudget := false
		if cut == 0 {
			// Floor case: even one rune exceeds the budget. Take a minimal
			// prefix anyway and flag it, so the loop always terminates and
			// the violation is visible to the caller.
			cut = floorRuneCount
			if cut > len(remaining) {
				cut = len(remaining)
			}
			overBudget = true
			cutTokens, err = s.count(ctx, string(remaining[:cut]))
			if err != nil {
				return nil, err
			}
		}

		prefix := strings.TrimSpace(string(remaining[:cut]))
		if prefix != "" {
			out = append(out, types.Chunk{
				Content:    prefix,
				TokenCount: cutTokens,
				OverBudget: overBudget,
			})
		}
		remaining = trimLeadingSpace(remaining[cut:])
	}

	return out, nil
}

// trimLeadingSpace drops leading whitespace runes
func trimLeadingSpace(runes []rune) []rune {
	i := 0
	for i < len(runes) && unicode.IsSpace(runes[i]) {
		i++
	}
	return runes[i:]
}
