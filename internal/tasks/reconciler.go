package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/xelth-com/brokerledger/internal/logger"
	"github.com/xelth-com/brokerledger/internal/metrics"
	"github.com/xelth-com/brokerledger/internal/models"
)

// Store is the slice of the record store the reconciler reads and writes.
type Store interface {
	ListVisibleProperties(ctx context.Context) ([]models.Property, error)
	ListAllPhotos(ctx context.Context) ([]models.Photo, error)
	ListAllViewings(ctx context.Context) ([]models.Viewing, error)
	UpsertTaskByKey(ctx context.Context, up models.TaskUpsert) (*models.Task, error)
	ListAutoTasks(ctx context.Context, includeDone bool) ([]models.Task, error)
	SetTaskStatus(ctx context.Context, id uint, status string) error
}

// Reconciler converges the persisted auto tasks onto the desired set.
type Reconciler struct {
	store    Store
	eval     *Evaluator
	log      *logger.Logger
	now      func() time.Time
	listener func(open int)

	mu sync.Mutex
}

func NewReconciler(store Store, eval *Evaluator, log *logger.Logger) *Reconciler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Reconciler{
		store: store,
		eval:  eval,
		log:   log,
		now:   time.Now,
	}
}

// OnReconciled registers fn to be called with the open count after every
// pass that reached the final count.
func (r *Reconciler) OnReconciled(fn func(open int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listener = fn
}

// Reconcile upserts every desired task as OPEN, resolves open auto tasks
// that are no longer desired and returns the open auto-task count.
//
// A failed load aborts the pass. Failed writes do not: the remaining
// tasks are still processed and the failures are returned joined together
// with the count.
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	started := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(started).Seconds()) }()

	open, writeErrs, err := r.reconcile(ctx)
	switch {
	case err != nil:
		metrics.ReconcileRuns.WithLabelValues(metrics.ResultError).Inc()
		r.log.Error("task reconciliation failed", "error", err)
		return 0, err
	case len(writeErrs) > 0:
		metrics.ReconcileRuns.WithLabelValues(metrics.ResultPartial).Inc()
		r.log.Warn("task reconciliation finished with failures", "open", open, "failures", len(writeErrs))
	default:
		metrics.ReconcileRuns.WithLabelValues(metrics.ResultOK).Inc()
		r.log.Debug("task reconciliation finished", "open", open)
	}

	metrics.OpenAutoTasks.Set(float64(open))
	if r.listener != nil {
		r.listener(open)
	}
	return open, errors.Join(writeErrs...)
}

func (r *Reconciler) reconcile(ctx context.Context) (int, []error, error) {
	properties, err := r.store.ListVisibleProperties(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("load properties: %w", err)
	}
	photos, err := r.store.ListAllPhotos(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("load photos: %w", err)
	}
	viewings, err := r.store.ListAllViewings(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("load viewings: %w", err)
	}
	existing, err := r.store.ListAutoTasks(ctx, true)
	if err != nil {
		return 0, nil, fmt.Errorf("load auto tasks: %w", err)
	}

	desired := r.eval.Compute(properties, photos, viewings, r.now())

	var writeErrs []error
	for _, key := range desired.Keys() {
		up := desired[key]
		up.Status = models.TaskOpen
		if _, err := r.store.UpsertTaskByKey(ctx, up); err != nil {
			metrics.TaskWriteFailures.WithLabelValues("upsert").Inc()
			writeErrs = append(writeErrs, fmt.Errorf("upsert %s: %w", key, err))
		}
	}

	for _, t := range existing {
		if t.UniqueKey == nil || *t.UniqueKey == "" || t.Status != models.TaskOpen {
			continue
		}
		if _, ok := desired[*t.UniqueKey]; ok {
			continue
		}
		if err := r.store.SetTaskStatus(ctx, t.ID, models.TaskDone); err != nil {
			metrics.TaskWriteFailures.WithLabelValues("resolve").Inc()
			writeErrs = append(writeErrs, fmt.Errorf("resolve %s: %w", *t.UniqueKey, err))
		}
	}

	openTasks, err := r.store.ListAutoTasks(ctx, false)
	if err != nil {
		return 0, writeErrs, fmt.Errorf("count open auto tasks: %w", errors.Join(append(writeErrs, err)...))
	}
	return len(openTasks), writeErrs, nil
}
