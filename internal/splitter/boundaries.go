package splitter

import "strings"

// Paragraphs splits text into paragraphs at blank-line boundaries. A blank
// line is any line containing only whitespace. Each paragraph is trimmed;
// empty results are dropped.
func Paragraphs(text string) []string {
	var (
		paras []string
		cur   []string
	)

	flush := func() {
		if len(cur) == 0 {
			return
		}
		p := strings.TrimSpace(strings.Join(cur, "\n"))
		if p != "" {
			paras = append(paras, p)
		}
		cur = cur[:0]
	}

	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		cur = append(cur, line)
	}
	flush()

	return paras
}

// Sentences splits a paragraph into sentences at terminal punctuation
// boundaries ('.', '!', '?', runs of them stay attached to their sentence).
// Text after the last terminator is returned as a final sentence. Each
// sentence is trimmed; empty results are dropped.
func Sentences(text string) []string {
	var sentences []string

	appendSpan := func(span string) {
		s := strings.TrimSpace(span)
		if s != "" {
			sentences = append(sentences, s)
		}
	}

	start := 0
	inTerminator := false
	for i, r := range text {
		switch r {
		case '.', '!', '?':
			inTerminator = true
		default:
			if inTerminator {
				appendSpan(text[start:i])
				start = i
				inTerminator = false
			}
		}
	}
	appendSpan(text[start:])

	return sentences
}
