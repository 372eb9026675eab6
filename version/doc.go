// Package version reports the build of the filekit binary.
//
// Version and commit are set at link time:
//
//	go build -ldflags "-X github.com/kbukum/filekit/version.Version=1.0.0" ./cmd/filekit
//
// Missing values are filled from the module's embedded VCS build info.
package version
