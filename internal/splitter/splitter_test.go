package splitter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingCounter wraps a counting function and records how often it is called
type countingCounter struct {
	calls int
	fn    func(text string) int
}

func (c *countingCounter) Count(_ context.Context, text string) (int, error) {
	c.calls++
	return c.fn(text), nil
}

func wordCounter() *countingCounter {
	return &countingCounter{fn: func(text string) int {
		return len(strings.Fields(text))
	}}
}

func runeCounter() *countingCounter {
	return &countingCounter{fn: func(text string) int {
		return utf8.RuneCountInString(text)
	}}
}

func stripWhitespace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestNew(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s, err := New(100, wordCounter())
		require.NoError(t, err)
		assert.NotNil(t, s)
		assert.Equal(t, 100, s.MaxTokens())
	})

	t.Run("zero budget", func(t *testing.T) {
		_, err := New(0, wordCounter())
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("negative budget", func(t *testing.T) {
		_, err := New(-5, wordCounter())
		assert.ErrorIs(t, err, ErrInvalidBudget)
	})

	t.Run("nil counter", func(t *testing.T) {
		_, err := New(100, nil)
		assert.ErrorIs(t, err, ErrNilCounter)
	})
}

func TestSplit_TwoSmallParagraphs(t *testing.T) {
	// Both paragraphs fit the budget together: expect one chunk joined by
	// the paragraph separator.
	text := "First paragraph here.\n\nSecond paragraph here."

	s, err := New(50, wordCounter())
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, result.Chunks, 1)
	assert.Equal(t, text, result.Chunks[0].Content)
	assert.Equal(t, 0, result.Chunks[0].Seq)
	assert.Zero(t, result.OverBudget)
}

func TestSplit_OversizedParagraphFittingSentences(t *testing.T) {
	// The paragraph exceeds the budget but each sentence fits: expect one
	// chunk per sentence, in original order.
	text := "alpha beta gamma delta. epsilon zeta eta theta."

	s, err := New(4, wordCounter())
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	require.Len(t, result.Chunks, 2)
	assert.Equal(t, "alpha beta gamma delta.", result.Chunks[0].Content)
	assert.Equal(t, "epsilon zeta eta theta.", result.Chunks[1].Content)
	assert.Zero(t, result.OverBudget)
}

func TestSplit_RunOnSentence(t *testing.T) {
	// A single unpunctuated span far over budget forces the rune tier.
	text := strings.TrimSpace(strings.Repeat("token ", 50))
	budget := 5

	counter := wordCounter()
	s, err := New(budget, counter)
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	// 50 tokens with a budget of 5 needs at least 10 chunks.
	assert.GreaterOrEqual(t, len(result.Chunks), 10)
	assert.Zero(t, result.OverBudget)

	var rebuilt strings.Builder
	for _, chunk := range result.Chunks {
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
		assert.LessOrEqual(t, len(strings.Fields(chunk.Content)), budget)
		rebuilt.WriteString(chunk.Content)
		rebuilt.WriteString(" ")
	}
	assert.Equal(t, stripWhitespace(text), stripWhitespace(rebuilt.String()))
}

func TestSplit_FloorCase(t *testing.T) {
	// Every single rune measures over the budget: the floor path must take a
	// minimal prefix each round, flag it, and terminate.
	counter := &countingCounter{fn: func(text string) int {
		return utf8.RuneCountInString(text) * 10
	}}

	s, err := New(1, counter)
	require.NoError(t, err)

	text := "abcdefghij"
	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	require.NotEmpty(t, result.Chunks)
	assert.Equal(t, len(result.Chunks), result.OverBudget)

	var rebuilt strings.Builder
	for _, chunk := range result.Chunks {
		assert.True(t, chunk.OverBudget)
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), floorRuneCount)
		rebuilt.WriteString(chunk.Content)
	}
	assert.Equal(t, text, rebuilt.String())
}

func TestSplit_EmptyInput(t *testing.T) {
	counter := wordCounter()
	s, err := New(10, counter)
	require.NoError(t, err)

	for _, text := range []string{"", "   ", "\n\n\t\n"} {
		result, err := s.Split(context.Background(), text)
		require.NoError(t, err)
		assert.Empty(t, result.Chunks)
	}

	// Empty input must not query the counter at all.
	assert.Zero(t, counter.calls)
}

func TestSplit_BudgetRespected(t *testing.T) {
	text := "The quick brown fox jumps over the lazy dog. " +
		"Pack my box with five dozen liquor jugs! " +
		"How vexingly quick daft zebras jump?\n\n" +
		"Sphinx of black quartz judge my vow. " +
		"The five boxing wizards jump quickly."

	for _, budget := range []int{2, 3, 5, 8, 20} {
		s, err := New(budget, wordCounter())
		require.NoError(t, err)

		result, err := s.Split(context.Background(), text)
		require.NoError(t, err)

		for _, chunk := range result.Chunks {
			if !chunk.OverBudget {
				assert.LessOrEqual(t, len(strings.Fields(chunk.Content)), budget,
					"budget %d, chunk %q", budget, chunk.Content)
			}
		}
	}
}

func TestSplit_OrderAndLosslessness(t *testing.T) {
	text := "One two three four. Five six seven eight!\n\n" +
		"Nine ten eleven twelve thirteen fourteen fifteen sixteen seventeen?\n\n" +
		"Eighteen nineteen twenty."

	s, err := New(4, wordCounter())
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	var rebuilt strings.Builder
	for i, chunk := range result.Chunks {
		assert.Equal(t, i, chunk.Seq)
		assert.NotEmpty(t, strings.TrimSpace(chunk.Content))
		rebuilt.WriteString(chunk.Content)
		rebuilt.WriteString(" ")
	}
	assert.Equal(t, stripWhitespace(text), stripWhitespace(rebuilt.String()))

	// Source word order survives chunking.
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(result.Contents(), " ")))
}

func TestSplit_MonotonicBudgetEffect(t *testing.T) {
	text := "One two three. Four five six. Seven eight nine!\n\n" +
		"Ten eleven twelve thirteen. Fourteen fifteen?\n\n" +
		"Sixteen seventeen eighteen nineteen twenty."

	prev := -1
	for _, budget := range []int{2, 3, 5, 8, 13, 100} {
		s, err := New(budget, wordCounter())
		require.NoError(t, err)

		result, err := s.Split(context.Background(), text)
		require.NoError(t, err)

		if prev >= 0 {
			assert.LessOrEqual(t, len(result.Chunks), prev,
				"budget %d produced more chunks than a smaller budget", budget)
		}
		prev = len(result.Chunks)
	}
}

func TestSplit_RechunkingIsStable(t *testing.T) {
	text := "Alpha beta gamma delta epsilon. Zeta eta theta iota kappa!\n\n" +
		"Lambda mu nu xi omicron pi rho sigma."

	s, err := New(5, wordCounter())
	require.NoError(t, err)

	first, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	rejoined := strings.Join(first.Contents(), "\n\n")
	second, err := s.Split(context.Background(), rejoined)
	require.NoError(t, err)

	assert.Equal(t, stripWhitespace(text), stripWhitespace(strings.Join(second.Contents(), "")))
}

func TestSplit_MultiByteSafety(t *testing.T) {
	// No terminators and no spaces: the rune tier must cut without ever
	// landing inside a multi-byte code point.
	text := strings.Repeat("日本語のテキスト", 10)
	budget := 7

	s, err := New(budget, runeCounter())
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)
	require.NotEmpty(t, result.Chunks)

	var rebuilt strings.Builder
	for _, chunk := range result.Chunks {
		assert.True(t, utf8.ValidString(chunk.Content))
		assert.LessOrEqual(t, utf8.RuneCountInString(chunk.Content), budget)
		rebuilt.WriteString(chunk.Content)
	}
	assert.Equal(t, text, rebuilt.String())
	assert.Zero(t, result.OverBudget)
}

func TestSplit_CounterErrorAborts(t *testing.T) {
	boom := errors.New("tokenizer unavailable")
	counter := TokenCounterFunc(func(_ context.Context, _ string) (int, error) {
		return 0, boom
	})

	s, err := New(10, counter)
	require.NoError(t, err)

	result, err := s.Split(context.Background(), "Some text that would need counting.")
	assert.Nil(t, result)
	assert.ErrorIs(t, err, ErrCounterFailed)
}

func TestSplit_NegativeCountRejected(t *testing.T) {
	counter := TokenCounterFunc(func(_ context.Context, _ string) (int, error) {
		return -1, nil
	})

	s, err := New(10, counter)
	require.NoError(t, err)

	_, err = s.Split(context.Background(), "Some text.")
	assert.ErrorIs(t, err, ErrCounterFailed)
}

func TestSplit_ChunksValidate(t *testing.T) {
	text := "First sentence here. Second sentence there.\n\nAnother paragraph."

	s, err := New(4, wordCounter())
	require.NoError(t, err)

	result, err := s.Split(context.Background(), text)
	require.NoError(t, err)

	for _, chunk := range result.Chunks {
		assert.NoError(t, chunk.Validate())
		assert.Greater(t, chunk.TokenCount, 0)
	}
}

func TestSplitFunc(t *testing.T) {
	chunks, err := Split(context.Background(), "Hello there. General greeting!", 3, wordCounter())
	require.NoError(t, err)
	assert.Equal(t, []string{"Hello there.", "General greeting!"}, chunks)

	_, err = Split(context.Background(), "text", 0, wordCounter())
	assert.ErrorIs(t, err, ErrInvalidBudget)
}
