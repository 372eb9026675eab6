// Package filesystem is a storage façade over interchangeable backends.
//
// A Storage is bound to exactly one disk at a time. A disk is a named entry
// under filesystem.disks whose driver key selects a factory from the
// Registry. The factory receives the disk's static configuration merged
// with the Storage's runtime configuration:
//
//	runtime override > disk configuration > driver default
//
// Switching disks or editing the runtime configuration builds a new driver
// and replaces the binding; a live driver is never mutated. If the new
// driver cannot be built the previous binding stays in place.
//
// # Usage
//
//	fs, err := filesystem.New(filesystem.NewSettingsSource(settings),
//	    filesystem.WithRegistry(drivers.NewRegistry()))
//	err = fs.Put(ctx, "avatars/1.png", data)
//
//	s3, err := fs.WithDisk("s3")   // scoped session, fs is unchanged
//	url, err := s3.TemporaryURL(ctx, "avatars/1.png", 0)
//
// Every operation rejects absolute paths with errors.ErrInvalidPath before
// touching a backend.
//
// # Concurrency
//
// Each call snapshots the active driver when it starts, so a concurrent
// Disk or AddConfig never tears a call in half. Which disk such a call
// lands on is still a race; use WithDisk for isolated sessions.
package filesystem
