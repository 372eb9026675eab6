package filesystem

import (
	"github.com/kbukum/filekit/config"
)

// Configuration keys read by SettingsSource.
const (
	KeyDefaultDisk = "filesystem.default"
	KeyDisks       = "filesystem.disks"

	// DefaultDiskName is used when filesystem.default is unset.
	DefaultDiskName = "local"
)

// DiskConfig is one entry of filesystem.disks.
type DiskConfig struct {
	Name   string
	Driver string
	Values map[string]any
}

// ConfigSource supplies disk configuration. Implementations are read on
// every disk switch, so edits to the underlying source are picked up by
// the next Disk call.
type ConfigSource interface {
	DefaultDisk() string
	Disk(name string) (DiskConfig, bool)
}

// SettingsSource reads disks from a loaded configuration tree.
type SettingsSource struct {
	settings *config.Settings
}

// NewSettingsSource wraps settings.
func NewSettingsSource(settings *config.Settings) *SettingsSource {
	return &SettingsSource{settings: settings}
}

// DefaultDisk returns filesystem.default, or "local".
func (s *SettingsSource) DefaultDisk() string {
	if name := s.settings.String(KeyDefaultDisk); name != "" {
		return name
	}
	return DefaultDiskName
}

// Disk returns filesystem.disks.<name>.
func (s *SettingsSource) Disk(name string) (DiskConfig, bool) {
	values := s.settings.Map(KeyDisks + "." + name)
	if values == nil {
		return DiskConfig{}, false
	}
	return newDiskConfig(name, values), true
}

// Disks returns the configured disk names.
func (s *SettingsSource) Disks() []string {
	return s.settings.Keys(KeyDisks)
}

// StaticSource is an in-memory ConfigSource.
type StaticSource struct {
	Default string
	Disks   map[string]map[string]any
}

// DefaultDisk returns s.Default, or "local".
func (s StaticSource) DefaultDisk() string {
	if s.Default != "" {
		return s.Default
	}
	return DefaultDiskName
}

// Disk returns a copy of the named disk's values.
func (s StaticSource) Disk(name string) (DiskConfig, bool) {
	values, ok := s.Disks[name]
	if !ok {
		return DiskConfig{}, false
	}
	return newDiskConfig(name, MergeOptions(values)), true
}

func newDiskConfig(name string, values map[string]any) DiskConfig {
	driver, _ := values["driver"].(string)
	return DiskConfig{Name: name, Driver: driver, Values: values}
}
