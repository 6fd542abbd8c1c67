package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/yungbote/journey-backend/internal/data/aggregates"
	"github.com/yungbote/journey-backend/internal/platform/dbctx"
)

// HooksRecorder captures aggregate hook signals in tests.
type HooksRecorder struct {
	mu sync.Mutex

	Operations []OperationEvent
	Conflicts  []string
	Retries    []string
}

type OperationEvent struct {
	Name     string
	Status   string
	Duration time.Duration
}

var _ aggregates.Hooks = (*HooksRecorder)(nil)

func (h *HooksRecorder) ObserveOperation(name, status string, dur time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Operations = append(h.Operations, OperationEvent{Name: name, Status: status, Duration: dur})
}

func (h *HooksRecorder) IncConflict(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Conflicts = append(h.Conflicts, name)
}

func (h *HooksRecorder) IncRetryable(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Retries = append(h.Retries, name)
}

// Statuses returns the recorded statuses of op, in order.
func (h *HooksRecorder) Statuses(op string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []string
	for _, ev := range h.Operations {
		if ev.Name == op {
			out = append(out, ev.Status)
		}
	}
	return out
}

// FailingTxRunner refuses to begin a transaction, returning Err without
// running the body.
type FailingTxRunner struct {
	Err error

	mu    sync.Mutex
	Calls int
}

var _ aggregates.TxRunner = (*FailingTxRunner)(nil)

func (r *FailingTxRunner) InTx(_ context.Context, _ func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.Calls++
	r.mu.Unlock()
	return r.Err
}
