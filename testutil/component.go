package testutil

import (
	"context"

	"github.com/kbukum/filekit/component"
)

// TestComponent extends component.Component with state control for test
// isolation.
type TestComponent interface {
	component.Component

	// Reset restores the component to its initial state.
	Reset(ctx context.Context) error

	// Snapshot captures the current state. The value is opaque and only
	// meaningful to Restore of the same component.
	Snapshot(ctx context.Context) (interface{}, error)

	// Restore returns the component to a captured state.
	Restore(ctx context.Context, snapshot interface{}) error
}
