// Package splitter divides long-form text into ordered chunks that stay
// within a caller-supplied token budget, preserving as much semantic
// structure as the budget allows.
//
// # Strategy
//
// Three tiers are applied in strict priority order:
//
//  1. Paragraphs: whole paragraphs (blank-line delimited) are greedily
//     packed into a chunk until the next one would overflow the budget.
//  2. Sentences: a paragraph that alone exceeds the budget is re-packed
//     sentence by sentence (terminal '.', '!', '?').
//  3. Runes: a sentence that alone exceeds the budget is cut by a binary
//     search over rune offsets for the longest prefix within budget,
//     repeated until the remainder is exhausted.
//
// Both greedy tiers are the same packing routine parameterized by join
// separator and overflow handler. Chunks come out in source order with no
// overlap, and no chunk is empty after trimming.
//
// # Token counting
//
// The splitter never counts tokens itself. Every sizing decision queries the
// injected TokenCounter, which may be a remote model service; calls are
// strictly sequential because each packing decision depends on the previous
// one. The binary search bounds the number of counter queries, not their
// latency: a chunk cut from a run-on span costs O(log n) queries.
//
// # Budget violations
//
// When even a single rune measures over the budget, the rune tier takes a
// fixed minimal prefix anyway to guarantee progress, and flags the chunk
// OverBudget. Result.OverBudget reports how many such chunks were emitted;
// every other chunk is guaranteed within budget.
//
// # Basic Usage
//
//	s, err := splitter.New(512, counter)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := s.Split(ctx, document)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, chunk := range result.Chunks {
//	    fmt.Printf("chunk %d: %d tokens\n", chunk.Seq, chunk.TokenCount)
//	}
package splitter
