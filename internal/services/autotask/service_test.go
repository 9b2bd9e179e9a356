package autotask

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/xelth-com/brokerledger/internal/logger"
)

type countingReconciler struct {
	calls atomic.Int32
	err   error
}

func (c *countingReconciler) Reconcile(ctx context.Context) (int, error) {
	c.calls.Add(1)
	return 3, c.err
}

func TestServiceRunsImmediatelyAndOnTick(t *testing.T) {
	r := &countingReconciler{}
	s := NewService(r, 10*time.Millisecond, logger.NewNop())
	s.Start()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 3 }, 2*time.Second, 5*time.Millisecond)
	s.Stop()

	after := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, r.calls.Load())
}

func TestServiceKeepsRunningOnFailure(t *testing.T) {
	r := &countingReconciler{err: errors.New("db down")}
	s := NewService(r, 10*time.Millisecond, logger.NewNop())
	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 2*time.Second, 5*time.Millisecond)
}

func TestServiceDisabled(t *testing.T) {
	r := &countingReconciler{}
	s := NewService(r, 0, logger.NewNop())
	s.Start()
	s.Stop()
	assert.Zero(t, r.calls.Load())
}
