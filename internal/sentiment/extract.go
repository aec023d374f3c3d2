package sentiment

import (
	"regexp"
	"strings"
)

// Sentence boundaries: western punctuation plus the devanagari danda
var sentenceSplit = regexp.MustCompile(`[.!?।]`)

// ExtractRelevantSentences returns the sentence containing the keyword
// together with window sentences on each side, joined with spaces. Only the
// first match counts; "" means the keyword does not appear.
func ExtractRelevantSentences(text, keyword string, window int) string {
	sentences := sentenceSplit.Split(text, -1)

	for i, sentence := range sentences {
		if !strings.Contains(sentence, keyword) {
			continue
		}
		start := i - window
		if start < 0 {
			start = 0
		}
		end := i + window + 1
		if end > len(sentences) {
			end = len(sentences)
		}
		return strings.TrimSpace(strings.Join(sentences[start:end], " "))
	}
	return ""
}

// KeywordChunks splits text into overlapping fixed-size rune windows and
// keeps only the chunks that contain the keyword. Overlap must be smaller
// than size.
func KeywordChunks(text, keyword string, size, overlap int) []string {
	if size <= 0 || overlap >= size {
		return nil
	}

	runes := []rune(text)
	step := size - overlap
	var chunks []string

	for start := 0; start < len(runes); start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunk := string(runes[start:end])
		if strings.Contains(chunk, keyword) {
			chunks = append(chunks, chunk)
		}
		if end == len(runes) {
			break
		}
	}
	return chunks
}
