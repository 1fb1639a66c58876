package splitters

import (
	"unicode/utf8"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
)

const (
	DefaultChunkSize = 800
	DefaultMinLength = 50
)

// FixedSplitter cuts text into consecutive, non-overlapping windows of Size
// characters and keeps only those longer than MinLength. Lengths are counted in
// runes so Serbian letters such as "č" or "đ" are never split.
type FixedSplitter struct {
	Size      int
	MinLength int
}

// NewFixedSplitter creates a splitter, using the defaults for non-positive values.
func NewFixedSplitter(size, minLength int) *FixedSplitter {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if minLength < 0 {
		minLength = DefaultMinLength
	}
	return &FixedSplitter{Size: size, MinLength: minLength}
}

// Split returns the retained segments in document order.
func (s *FixedSplitter) Split(text string) []string {
	var out []string
	for len(text) > 0 {
		end, n := 0, 0
		for end < len(text) && n < s.Size {
			_, w := utf8.DecodeRuneInString(text[end:])
			end += w
			n++
		}
		if n > s.MinLength {
			out = append(out, text[:end])
		}
		text = text[end:]
	}
	return out
}

var _ interfaces.Splitter = (*FixedSplitter)(nil)
