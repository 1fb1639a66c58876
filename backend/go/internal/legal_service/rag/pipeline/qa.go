package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/interfaces"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/legal_service/rag/schema"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/llm"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/models"
	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/logger"
)

const (
	// NoInfoMessage is returned when retrieval finds nothing.
	NoInfoMessage = "Žao mi je, ne mogu da pronađem relevantne informacije u bazi zakona."
	// FallbackMessage is returned for every failure while answering.
	FallbackMessage = "Došlo je do greške prilikom generisanja odgovora. Proverite API ključ ili status modela."
)

// Outcome is the terminal state of one Run.
type Outcome string

const (
	OutcomeAnswered  Outcome = "answered"
	OutcomeNoContext Outcome = "no_context"
	OutcomeFailed    Outcome = "failed"
)

// FailureKind tells which dependency broke a failed Run.
type FailureKind string

const (
	FailureIndex         FailureKind = "index"
	FailureModel         FailureKind = "model"
	FailureEmptyResponse FailureKind = "empty_response"
)

// Result is the structured outcome of answering one question.
type Result struct {
	Answer      string // model text, set only for OutcomeAnswered
	Outcome     Outcome
	FailureKind FailureKind
	Sources     []string // segment ids the answer was grounded on
	Err         error
}

// Text is what the end user sees: the model answer, the no-information message
// or the fallback message.
func (r Result) Text() string {
	switch r.Outcome {
	case OutcomeAnswered:
		return r.Answer
	case OutcomeNoContext:
		return NoInfoMessage
	default:
		return FallbackMessage
	}
}

// Engine answers questions from the shared vector index. One Engine is built at
// startup and used by every request; it keeps no per-call state.
type Engine struct {
	retrieval *RetrievalPipeline
	llm       interfaces.LLM
	log       *logger.Logger
}

// NewEngine creates an Engine that grounds each answer on the topK best segments.
func NewEngine(index interfaces.VectorIndex, model interfaces.LLM, topK int, log *logger.Logger) *Engine {
	return &Engine{
		retrieval: NewRetrievalPipeline(index, topK, log),
		llm:       model,
		log:       log,
	}
}

// Answer returns the user-facing text for question. It never fails.
func (e *Engine) Answer(ctx context.Context, question string) string {
	return e.Run(ctx, question).Text()
}

// Run retrieves context, builds the prompt and calls the model once. Every failure,
// a panic in a dependency included, ends in OutcomeFailed; nothing is retried.
func (e *Engine) Run(ctx context.Context, question string) (res Result) {
	stage := FailureIndex
	defer func() {
		if r := recover(); r != nil {
			res = e.fail(stage, fmt.Errorf("panic: %v", r))
		}
	}()

	matches, err := e.retrieval.Run(ctx, question)
	if err != nil {
		return e.fail(FailureIndex, err)
	}
	if len(matches) == 0 {
		e.log.Info("no relevant segments found for question")
		return Result{Outcome: OutcomeNoContext}
	}

	sources := make([]string, len(matches))
	for i, m := range matches {
		sources[i] = m.ID
	}

	stage = FailureModel
	answer, err := e.llm.Generate(ctx, BuildPrompt(question, matches))
	if err != nil {
		kind := FailureModel
		if errors.Is(err, llm.ErrEmptyResponse) {
			kind = FailureEmptyResponse
		}
		res = e.fail(kind, err)
		res.Sources = sources
		return res
	}
	if strings.TrimSpace(answer) == "" {
		res = e.fail(FailureEmptyResponse, llm.ErrEmptyResponse)
		res.Sources = sources
		return res
	}

	return Result{Answer: answer, Outcome: OutcomeAnswered, Sources: sources}
}

func (e *Engine) fail(kind FailureKind, err error) Result {
	e.log.WithError(models.NewErrorInfo(string(kind)+"_error", err)).Error("failed to answer question")
	return Result{Outcome: OutcomeFailed, FailureKind: kind, Err: err}
}

// BuildPrompt assembles the grounded prompt. Segment texts are joined with a single
// space in rank order.
func BuildPrompt(question string, matches []schema.Match) string {
	texts := make([]string, len(matches))
	for i, m := range matches {
		texts[i] = m.Text
	}

	var sb strings.Builder
	sb.WriteString("Ti si stručni pravni asistent za građanska prava u Srbiji.\n")
	sb.WriteString("Koristi isključivo sledeći kontekst da odgovoriš na pitanje.\n")
	sb.WriteString("Odgovori moraju biti profesionalni, tačni i zasnovani samo na dostavljenom tekstu.\n")
	sb.WriteString("Ako u kontekstu nema odgovora, reci da na osnovu trenutne baze ne možeš dati precizan odgovor.\n")
	sb.WriteString("Svaki član zakona mora biti referenciran u skladu sa kontekstom, i potrebno je pružiti linkove ka svim zakonima koji se koriste iz konteksta.\n\n")
	sb.WriteString("KONTEKST: ")
	sb.WriteString(strings.Join(texts, " "))
	sb.WriteString("\nPITANJE: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	return sb.String()
}
