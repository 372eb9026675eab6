package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/kbukum/filekit/component"
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/memory"
	"github.com/kbukum/filekit/logger"
)

var _ TestComponent = (*Disk)(nil)

// Disk is a Storage bound to an in-memory disk, for tests of code that
// takes a *filesystem.Storage.
type Disk struct {
	name   string
	stores *memory.Stores

	mu      sync.RWMutex
	storage *filesystem.Storage
}

// NewDisk creates a disk component named name. Call Start before use.
func NewDisk(name string) *Disk {
	return &Disk{name: name, stores: memory.NewStores()}
}

// Name returns "disk-<name>".
func (d *Disk) Name() string { return "disk-" + d.name }

// Storage returns the Storage, or nil before Start.
func (d *Disk) Storage() *filesystem.Storage {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.storage
}

// Store returns the backing store.
func (d *Disk) Store() *memory.Store { return d.stores.Get(d.name) }

func (d *Disk) Start(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.storage != nil {
		return fmt.Errorf("disk %s already started", d.name)
	}

	registry := filesystem.NewRegistry().MustRegister(memory.DriverName, memory.NewFactory(d.stores))
	source := filesystem.StaticSource{
		Default: d.name,
		Disks:   map[string]map[string]any{d.name: {"driver": memory.DriverName}},
	}
	s, err := filesystem.New(source,
		filesystem.WithRegistry(registry),
		filesystem.WithTempProvider(filesystem.NewMemoryTempProvider()),
		filesystem.WithLogger(logger.Nop()),
	)
	if err != nil {
		return err
	}
	d.storage = s
	return nil
}

func (d *Disk) Stop(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.storage == nil {
		return nil
	}
	err := d.storage.Close()
	d.storage = nil
	return err
}

func (d *Disk) Health(_ context.Context) component.Health {
	if d.Storage() == nil {
		return component.Health{Name: d.Name(), Status: component.StatusUnhealthy, Message: "not started"}
	}
	return component.Health{
		Name:    d.Name(),
		Status:  component.StatusHealthy,
		Details: map[string]string{"objects": fmt.Sprint(d.Store().Len())},
	}
}

// Reset removes every object.
func (d *Disk) Reset(_ context.Context) error {
	d.Store().Reset()
	return nil
}

// Snapshot copies the disk content.
func (d *Disk) Snapshot(_ context.Context) (interface{}, error) {
	return d.Store().Snapshot(), nil
}

// Restore replaces the disk content with snap.
func (d *Disk) Restore(_ context.Context, snap interface{}) error {
	return d.Store().Restore(snap)
}
