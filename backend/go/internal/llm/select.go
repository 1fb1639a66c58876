package llm

import (
	"context"
	"errors"
	"fmt"
)

// Selection records which model Select settled on.
type Selection struct {
	Model    string   `json:"model"`
	Fallback bool     `json:"fallback"` // true when an earlier candidate was skipped
	Skipped  []string `json:"skipped,omitempty"`
	Reasons  []string `json:"reasons,omitempty"`
}

// Select tries candidates in order and returns the first one that can be built
// and, unless skipProbe is set, passes its availability probe.
// It is called once per process; the chosen client is shared by all requests.
func Select(ctx context.Context, candidates []string, factory Factory, skipProbe bool) (LLM, Selection, error) {
	var sel Selection
	var errs []error

	for _, name := range candidates {
		client, err := factory(ctx, name)
		if err == nil && !skipProbe {
			if p, ok := client.(Prober); ok {
				err = p.Probe(ctx)
			}
		}
		if err != nil {
			sel.Skipped = append(sel.Skipped, name)
			sel.Reasons = append(sel.Reasons, err.Error())
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		sel.Model = name
		sel.Fallback = len(sel.Skipped) > 0
		return client, sel, nil
	}

	if len(candidates) == 0 {
		return nil, sel, fmt.Errorf("%w: no candidates configured", ErrNoModelAvailable)
	}
	return nil, sel, fmt.Errorf("%w: %w", ErrNoModelAvailable, errors.Join(errs...))
}
