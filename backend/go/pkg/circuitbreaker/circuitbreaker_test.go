package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var errBoom = errors.New("boom")

func fail() (interface{}, error) { return nil, errBoom }
func ok() (interface{}, error)   { return "ok", nil }

func TestBreaker_TripsAfterThreshold(t *testing.T) {
	cb := New(3, 1, time.Minute)

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(fail)
		assert.ErrorIs(t, err, errBoom)
	}
	assert.Equal(t, Open, cb.State())

	called := false
	_, err := cb.Execute(func() (interface{}, error) {
		called = true
		return nil, nil
	})
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, called)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := New(2, 1, time.Minute)

	_, _ = cb.Execute(fail)
	_, _ = cb.Execute(ok)
	_, _ = cb.Execute(fail)
	assert.Equal(t, Closed, cb.State())
}

func TestBreaker_HalfOpenRecovery(t *testing.T) {
	now := time.Now()
	var transitions []string
	cb := New(1, 2, 10*time.Second,
		WithClock(func() time.Time { return now }),
		WithStateChange(func(from, to State) { transitions = append(transitions, from.String()+">"+to.String()) }),
	)

	_, _ = cb.Execute(fail)
	assert.Equal(t, Open, cb.State())

	now = now.Add(11 * time.Second)
	assert.Equal(t, HalfOpen, cb.State())

	res, err := cb.Execute(ok)
	assert.NoError(t, err)
	assert.Equal(t, "ok", res)
	assert.Equal(t, HalfOpen, cb.State())

	_, _ = cb.Execute(ok)
	assert.Equal(t, Closed, cb.State())
	assert.Equal(t, []string{"Closed>Open", "Open>Half-Open", "Half-Open>Closed"}, transitions)
}

func TestBreaker_HalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	cb := New(1, 1, time.Second, WithClock(func() time.Time { return now }))

	_, _ = cb.Execute(fail)
	now = now.Add(2 * time.Second)
	_, err := cb.Execute(fail)
	assert.ErrorIs(t, err, errBoom)
	assert.Equal(t, Open, cb.State())
}
