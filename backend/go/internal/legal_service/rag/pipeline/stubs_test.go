package pipeline

import (
	"context"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
)

type stubLoader struct {
	pages []schema.Page
	err   error
}

func (l *stubLoader) Load(context.Context, string) ([]schema.Page, error) {
	return l.pages, l.err
}

// stubIndex records upserts and answers queries with a fixed ranking.
type stubIndex struct {
	upserts   [][]schema.Segment
	matches   []schema.Match
	upsertErr error
	queryErr  error
	panicOn   string
	lastTopK  int
}

func (s *stubIndex) Upsert(_ context.Context, segs []schema.Segment) error {
	if s.upsertErr != nil {
		return s.upsertErr
	}
	s.upserts = append(s.upserts, segs)
	return nil
}

func (s *stubIndex) Query(_ context.Context, _ string, topK int) ([]schema.Match, error) {
	if s.panicOn == "query" {
		panic("index exploded")
	}
	s.lastTopK = topK
	return s.matches, s.queryErr
}

func (s *stubIndex) Count(context.Context) (int, error) {
	n := 0
	for _, u := range s.upserts {
		n += len(u)
	}
	return n, nil
}

func (s *stubIndex) Delete(context.Context, []string) error { return nil }

type stubLLM struct {
	answer  string
	err     error
	panics  bool
	prompts []string
}

func (l *stubLLM) Generate(_ context.Context, prompt string) (string, error) {
	if l.panics {
		panic("model exploded")
	}
	l.prompts = append(l.prompts, prompt)
	return l.answer, l.err
}

// distinctText returns n characters of non-repeating content.
func distinctText(n int) string {
	var sb strings.Builder
	for i := 0; sb.Len() < n; i++ {
		sb.WriteByte(byte('a' + i%26))
	}
	return sb.String()
}
