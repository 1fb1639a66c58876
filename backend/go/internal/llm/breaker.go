package llm

import (
	"context"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/pkg/circuitbreaker"
)

// guarded routes every Generate call through a circuit breaker. While the breaker
// is open calls fail immediately with circuitbreaker.ErrCircuitOpen.
type guarded struct {
	LLM
	breaker circuitbreaker.CircuitBreaker
}

// WithBreaker wraps l with cb. A nil cb returns l unchanged.
func WithBreaker(l LLM, cb circuitbreaker.CircuitBreaker) LLM {
	if cb == nil {
		return l
	}
	return &guarded{LLM: l, breaker: cb}
}

func (g *guarded) Generate(ctx context.Context, prompt string) (string, error) {
	res, err := g.breaker.Execute(func() (interface{}, error) {
		return g.LLM.Generate(ctx, prompt)
	})
	if err != nil {
		return "", err
	}
	return res.(string), nil
}
