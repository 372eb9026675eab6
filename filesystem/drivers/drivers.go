// Package drivers assembles the registry of built-in drivers.
package drivers

import (
	"github.com/kbukum/filekit/filesystem"
	"github.com/kbukum/filekit/filesystem/gcs"
	"github.com/kbukum/filekit/filesystem/local"
	"github.com/kbukum/filekit/filesystem/memory"
	"github.com/kbukum/filekit/filesystem/s3"
)

// NewRegistry returns a registry holding local, s3, gcs and memory, in
// that order. Memory disks in this registry share stores.
func NewRegistry(stores *memory.Stores) *filesystem.Registry {
	if stores == nil {
		stores = memory.NewStores()
	}
	return filesystem.NewRegistry().
		MustRegister(local.DriverName, local.NewFactory()).
		MustRegister(s3.DriverName, s3.NewFactory()).
		MustRegister(gcs.DriverName, gcs.NewFactory()).
		MustRegister(memory.DriverName, memory.NewFactory(stores))
}
