package testutil

import (
	"context"
	"testing"
)

// THelper ties component lifecycles to a test.
type THelper struct {
	t   testing.TB
	ctx context.Context
}

// T wraps t:
//
//	disk := testutil.NewDisk("local")
//	testutil.T(t).Setup(disk)
func T(t testing.TB) *THelper {
	return &THelper{t: t, ctx: context.Background()}
}

// WithContext sets the context used for lifecycle calls.
func (h *THelper) WithContext(ctx context.Context) *THelper {
	h.ctx = ctx
	return h
}

// Setup starts c and stops it when the test ends.
func (h *THelper) Setup(c TestComponent) {
	h.t.Helper()
	if err := c.Start(h.ctx); err != nil {
		h.t.Fatalf("failed to start component %s: %v", c.Name(), err)
	}
	h.t.Cleanup(func() {
		if err := c.Stop(h.ctx); err != nil {
			h.t.Errorf("failed to stop component %s: %v", c.Name(), err)
		}
	})
}

// Reset resets c.
func (h *THelper) Reset(c TestComponent) {
	h.t.Helper()
	if err := c.Reset(h.ctx); err != nil {
		h.t.Fatalf("failed to reset component %s: %v", c.Name(), err)
	}
}

// Snapshot captures c's state.
func (h *THelper) Snapshot(c TestComponent) interface{} {
	h.t.Helper()
	snap, err := c.Snapshot(h.ctx)
	if err != nil {
		h.t.Fatalf("failed to snapshot component %s: %v", c.Name(), err)
	}
	return snap
}

// Restore returns c to snap.
func (h *THelper) Restore(c TestComponent, snap interface{}) {
	h.t.Helper()
	if err := c.Restore(h.ctx, snap); err != nil {
		h.t.Fatalf("failed to restore component %s: %v", c.Name(), err)
	}
}
