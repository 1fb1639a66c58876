package service

import (
	"context"
	"sync"
	"time"

	"github.com/elab-development/internet-tehnologije-2025-aiasistentzagradjanskaprava-2022-0096/backend/go/internal/llm"
	"golang.org/x/sync/errgroup"
)

const healthTimeout = 5 * time.Second

// HealthReport is the body of the health endpoint.
type HealthReport struct {
	Status   string            `json:"status"` // "ok" or "degraded"
	Checks   map[string]string `json:"checks"`
	Segments int               `json:"segments"`
	Model    llm.Selection     `json:"model"`
}

// Health checks the database, the vector index and the blob storage concurrently.
// The returned error is the first failing check, if any.
func (s *Service) Health(ctx context.Context) (HealthReport, error) {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	report := HealthReport{Status: "ok", Checks: map[string]string{}, Model: s.selection}
	var mu sync.Mutex
	record := func(name string, err error) error {
		mu.Lock()
		defer mu.Unlock()
		if err != nil {
			report.Checks[name] = err.Error()
			return err
		}
		report.Checks[name] = "ok"
		return nil
	}

	var g errgroup.Group
	g.Go(func() error { return record("database", s.store.Ping(ctx)) })
	g.Go(func() error {
		n, err := s.index.Count(ctx)
		if err == nil {
			mu.Lock()
			report.Segments = n
			mu.Unlock()
		}
		return record("vector_index", err)
	})
	g.Go(func() error { return record("storage", s.blobs.Ping(ctx)) })

	err := g.Wait()
	if err != nil {
		report.Status = "degraded"
	}
	return report, err
}
