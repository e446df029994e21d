package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCircuitBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "closed", cb.State())
	assert.ErrorIs(t, cb.Execute(func() error { return boom }), boom)
	assert.Equal(t, "open", cb.State())

	called := false
	err := cb.Execute(func() error { called = true; return nil })
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
}

func TestCircuitBreaker_SuccessResetsCount(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxFailures: 2, Timeout: time.Minute})
	boom := errors.New("boom")

	_ = cb.Execute(func() error { return boom })
	assert.NoError(t, cb.Execute(func() error { return nil }))
	_ = cb.Execute(func() error { return boom })

	assert.Equal(t, "closed", cb.State())
}

func TestCircuitBreaker_ReportsStateChange(t *testing.T) {
	var changes []string
	cb := NewCircuitBreaker(Settings{
		Name:        "test",
		MaxFailures: 1,
		Timeout:     time.Minute,
		OnStateChange: func(name, from, to string) {
			changes = append(changes, name+":"+from+"->"+to)
		},
	})

	_ = cb.Execute(func() error { return errors.New("boom") })

	assert.Equal(t, []string{"test:closed->open"}, changes)
}
