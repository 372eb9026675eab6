package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return p
}

const diskYAML = `
name: filekit
environment: staging
filesystem:
  default: public
  disks:
    local:
      driver: local
      root: /srv/storage/app
    public:
      driver: local
      root: /srv/storage/public
      url: http://localhost:8080/files/public
`

func TestServiceConfigApplyDefaults(t *testing.T) {
	cfg := ServiceConfig{}
	cfg.ApplyDefaults()
	if cfg.Name != "filekit" {
		t.Errorf("expected default name filekit, got %q", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("expected development, got %q", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("expected debug on in development")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected logging defaults applied, got %q", cfg.Logging.Level)
	}
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		cfg    ServiceConfig
		errMsg string
	}{
		{"missing name", ServiceConfig{Environment: "production"}, "config.name is required"},
		{"bad env", ServiceConfig{Name: "x", Environment: "qa"}, "config.environment"},
		{"bad logging", ServiceConfig{Name: "x", Environment: "test"}, "config.logging"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.errMsg) {
				t.Errorf("expected error containing %q, got %v", tc.errMsg, err)
			}
		})
	}

	ok := ServiceConfig{Name: "x"}
	ok.ApplyDefaults()
	if err := ok.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadSettingsFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", diskYAML)

	s, err := Load("filekit", WithConfigFile(path), WithEnvFile(filepath.Join(dir, "none.env")))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.String("filesystem.default"); got != "public" {
		t.Errorf("expected default disk public, got %q", got)
	}
	disk := s.Map("filesystem.disks.public")
	if disk["driver"] != "local" || disk["url"] != "http://localhost:8080/files/public" {
		t.Errorf("unexpected disk map %v", disk)
	}
	if s.Map("filesystem.disks.missing") != nil {
		t.Error("expected nil for a missing disk")
	}
	if s.Map("filesystem.default") != nil {
		t.Error("expected nil for a scalar key")
	}
}

func TestLoadEnvOverridesKeepSiblings(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", diskYAML)
	t.Setenv("FILESYSTEM_DISKS_LOCAL_ROOT", "/tmp/override")

	s, err := Load("filekit", WithConfigFile(path))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	disk := s.Map("filesystem.disks.local")
	if disk["root"] != "/tmp/override" {
		t.Errorf("expected env override, got %v", disk["root"])
	}
	if disk["driver"] != "local" {
		t.Errorf("override must not shadow sibling keys, got %v", disk)
	}
}

func TestLoadEnvAliasAndDefault(t *testing.T) {
	s, err := Load("filekit",
		WithConfigFile("/nonexistent/config.yml"),
		WithDefault("filesystem.default", "local"),
		WithEnvAlias("filesystem.default", "FILESYSTEM_DISK"),
	)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.String("filesystem.default"); got != "local" {
		t.Errorf("expected default local, got %q", got)
	}

	t.Setenv("FILESYSTEM_DISK", "s3")
	if got := s.String("filesystem.default"); got != "s3" {
		t.Errorf("expected alias to win over default, got %q", got)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "FILEKIT_DOTENV_PROBE=loaded\n")
	t.Cleanup(func() { os.Unsetenv("FILEKIT_DOTENV_PROBE") })

	s, err := Load("filekit", WithConfigFile("/nonexistent/config.yml"), WithEnvFile(envPath))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.String("filekit.dotenv.probe"); got != "loaded" {
		t.Errorf("expected .env value bound to nested key, got %q", got)
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", "filesystem: [unclosed\n")
	if _, err := Load("filekit", WithConfigFile(path)); err == nil {
		t.Error("expected error for malformed config file")
	}
}

func TestLoadConfigIntoStruct(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yml", diskYAML)

	type fileConfig struct {
		ServiceConfig `yaml:",inline" mapstructure:",squash"`
	}
	var cfg fileConfig
	if err := LoadConfig("filekit", &cfg, WithConfigFile(path)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "filekit" || cfg.Environment != "staging" {
		t.Errorf("unexpected service config %+v", cfg.ServiceConfig)
	}
}

func TestFromMap(t *testing.T) {
	s := FromMap(map[string]any{
		"filesystem.default": "memory",
		"filesystem.disks": map[string]any{
			"memory": map[string]any{"driver": "memory"},
		},
	})
	if s.String("filesystem.default") != "memory" {
		t.Error("expected default from map")
	}
	if s.Map("filesystem.disks.memory")["driver"] != "memory" {
		t.Error("expected nested disk map")
	}
	if len(s.Keys("filesystem.disks")) != 1 {
		t.Errorf("expected one disk key, got %v", s.Keys("filesystem.disks"))
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/filekit/config.yml": true,
		".env":                     true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("filekit", LoaderConfig{})
	if files.ConfigFile != "./cmd/filekit/config.yml" {
		t.Errorf("expected config file at ./cmd/filekit/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != ".env" {
		t.Errorf("expected .env, got %q", files.EnvFile)
	}

	explicit := resolver.ResolveFiles("filekit", LoaderConfig{ConfigFile: "custom.yml"})
	if explicit.ConfigFile != "custom.yml" {
		t.Errorf("explicit config file should win, got %q", explicit.ConfigFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool  { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }
func (m *mockFS) Getwd() (string, error)    { return "/mock", nil }

func TestGenerateEnvKeyVariants(t *testing.T) {
	variants := generateEnvKeyVariants("FILESYSTEM_DISKS_LOCAL_ROOT")
	want := "filesystem.disks.local.root"
	found := false
	for _, v := range variants {
		if v == want {
			found = true
		}
	}
	if !found {
		t.Errorf("expected %q among %v", want, variants)
	}
	if got := generateEnvKeyVariants("HOME"); len(got) != 1 || got[0] != "home" {
		t.Errorf("single part key should map to itself, got %v", got)
	}
}
