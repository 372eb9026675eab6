package filesystem

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

// TempArtifact is a staged Artifact that must be removed after use.
type TempArtifact interface {
	Artifact
	Remove() error
}

// TempProvider stages PutFile content. Names are random so concurrent
// stages never collide.
type TempProvider interface {
	Stage(ctx context.Context, content []byte, extension string) (TempArtifact, error)
}

// NormalizeExtension returns ext with a single leading dot, or "".
func NormalizeExtension(ext string) string {
	ext = strings.TrimSpace(ext)
	if ext == "" {
		return ""
	}
	return "." + strings.TrimLeft(ext, ".")
}

func randomName(ext string) string {
	return uuid.NewString() + NormalizeExtension(ext)
}

// OSTempProvider stages content in a private directory under Dir
// (os.TempDir when empty).
type OSTempProvider struct {
	Dir string
}

// Stage writes content to a fresh directory and returns the file.
func (p OSTempProvider) Stage(_ context.Context, content []byte, extension string) (TempArtifact, error) {
	dir, err := os.MkdirTemp(p.Dir, "filekit-")
	if err != nil {
		return nil, err
	}
	name := randomName(extension)
	full := filepath.Join(dir, name)
	if err := os.WriteFile(full, content, 0o600); err != nil {
		_ = os.RemoveAll(dir)
		return nil, err
	}
	return &fileArtifact{dir: dir, path: full, name: name, size: int64(len(content))}, nil
}

type fileArtifact struct {
	dir  string
	path string
	name string
	size int64
}

func (a *fileArtifact) Name() string      { return a.name }
func (a *fileArtifact) Extension() string { return filepath.Ext(a.name) }
func (a *fileArtifact) Size() int64       { return a.size }

// Path is the staged file's location on disk.
func (a *fileArtifact) Path() string { return a.path }

func (a *fileArtifact) Open() (io.ReadCloser, error) { return os.Open(a.path) }

func (a *fileArtifact) Remove() error { return os.RemoveAll(a.dir) }

// FileArtifact is implemented by artifacts backed by a real file, letting
// the local driver rename instead of copying.
type FileArtifact interface {
	Artifact
	Path() string
}

// MemoryTempProvider stages content in memory and counts live artifacts.
type MemoryTempProvider struct {
	live atomic.Int64
}

// NewMemoryTempProvider returns an empty provider.
func NewMemoryTempProvider() *MemoryTempProvider {
	return &MemoryTempProvider{}
}

// Stage returns an in-memory artifact.
func (p *MemoryTempProvider) Stage(_ context.Context, content []byte, extension string) (TempArtifact, error) {
	p.live.Inc()
	data := make([]byte, len(content))
	copy(data, content)
	return &memArtifact{name: randomName(extension), data: data, provider: p}, nil
}

// Live returns the number of staged artifacts not yet removed.
func (p *MemoryTempProvider) Live() int64 { return p.live.Load() }

type memArtifact struct {
	name     string
	data     []byte
	provider *MemoryTempProvider
	once     sync.Once
}

func (a *memArtifact) Name() string      { return a.name }
func (a *memArtifact) Extension() string { return filepath.Ext(a.name) }
func (a *memArtifact) Size() int64       { return int64(len(a.data)) }

func (a *memArtifact) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(a.data)), nil
}

func (a *memArtifact) Remove() error {
	a.once.Do(func() { a.provider.live.Dec() })
	return nil
}

// NewArtifact wraps content as an Artifact named name. Drivers' tests use it
// to call PutFile directly.
func NewArtifact(name string, content []byte) Artifact {
	return &memArtifact{name: name, data: content, provider: &MemoryTempProvider{}}
}
